package job

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"strings"

	"github.com/artemshloyda/imagetoolbox/internal/codec"
	"github.com/artemshloyda/imagetoolbox/internal/format"
	"github.com/artemshloyda/imagetoolbox/internal/geometry"
)

// StitchQuality - фиксированное качество сохранения склейки.
const StitchQuality = 95

// StitchParams - параметры склейки.
type StitchParams struct {
	Direction geometry.Direction
	Align     geometry.AlignMode

	// Scale - предварительное масштабирование в процентах; 0 или 100 отключают его.
	Scale int

	// OutputDir - папка результата; по умолчанию папка первого файла.
	OutputDir string

	// OutputName - имя файла без расширения; по умолчанию {first}_stitched_{timestamp}.
	OutputName string

	// OutputFormat - явный формат; по умолчанию общий формат входов или JPEG.
	OutputFormat format.Format
}

type stitchTask struct {
	files  []string
	params StitchParams
}

// NewStitchJob создаёт задачу склейки файлов в одно изображение.
func NewStitchJob(files []string, p StitchParams, opts Options) (*Job, error) {
	if len(files) == 0 {
		return nil, ErrNoInputs
	}
	if !p.Align.Valid() {
		return nil, fmt.Errorf("неизвестный режим выравнивания %q", p.Align)
	}
	if p.Scale < 0 || p.Scale > 100 {
		return nil, fmt.Errorf("%w, получено: %d", ErrInvalidScale, p.Scale)
	}

	t := &stitchTask{files: append([]string(nil), files...), params: p}
	return newJob(OpStitch, t, opts), nil
}

// stitchFormat выбирает формат склейки и необходимость прозрачного холста.
// Прозрачный холст возможен только при одинаковом формате всех входов,
// наличии прозрачности хотя бы у одного и итоговом PNG.
func stitchFormat(formats []format.Format, transparent bool, requested format.Format) (format.Format, bool) {
	same := true
	for _, f := range formats[1:] {
		if f != formats[0] {
			same = false
			break
		}
	}

	out := format.Default
	if same {
		out = format.ResolveOutputFormat(formats[0], format.Keep)
	}
	if requested != format.Keep {
		out = format.ResolveOutputFormat(out, requested)
	}
	if out != format.PNG && out != format.WEBP {
		out = format.JPEG
	}
	return out, same && transparent && out == format.PNG
}

func (t *stitchTask) run(ctx context.Context, x *executor) error {
	p := t.params

	x.status("Загрузка изображений...")
	x.progress(10)

	images := make([]image.Image, 0, len(t.files))
	formats := make([]format.Format, 0, len(t.files))
	sizes := make([]geometry.Size, 0, len(t.files))
	transparent := false
	for _, path := range t.files {
		if err := x.checkCanceled(ctx); err != nil {
			return err
		}
		img, d, err := codec.Open(x.fs, path)
		if err != nil {
			return err
		}
		images = append(images, img)
		formats = append(formats, d.Format)
		sizes = append(sizes, geometry.Size{Width: d.Width, Height: d.Height})
		transparent = transparent || codec.HasTransparency(img)
	}
	x.progress(30)

	x.status("Расчёт размеров холста...")
	layout, err := geometry.Compute(sizes, geometry.Options{
		Direction:    p.Direction,
		Align:        p.Align,
		ScalePercent: p.Scale,
	})
	if err != nil {
		return err
	}
	outFormat, keepAlpha := stitchFormat(formats, transparent, p.OutputFormat)
	x.log.Debug().
		Str("canvas", layout.Canvas.String()).
		Str("format", string(outFormat)).
		Bool("alpha", keepAlpha).
		Msg("холст рассчитан")
	x.progress(50)

	x.status("Склейка изображений...")
	canvas := newCanvas(layout.Canvas, keepAlpha)
	total := len(images)
	for i, img := range images {
		pl := layout.Placements[i]
		src := codec.Resize(img, pl.Size.Width, pl.Size.Height)
		op := draw.Over
		if keepAlpha {
			op = draw.Src
		}
		draw.Draw(canvas, pl.Rect(), src, src.Bounds().Min, op)
		x.status("Склейка %d/%d...", i+1, total)
		x.progress(50 + (i+1)*30/total)
	}

	x.status("Сохранение файла...")
	x.progress(90)

	dir := x.outputDir(p.OutputDir, t.files[0])
	if err := x.ensureDir(dir); err != nil {
		return err
	}
	ext := format.ExtensionFor(outFormat)
	name := strings.TrimSuffix(p.OutputName, filepath.Ext(p.OutputName))
	if name == "" {
		name = x.fileName(baseName(t.files[0]), OpStitch, "")
	}
	dst := filepath.Join(dir, name+ext)

	written, size, err := x.write(ctx, dst, canvas, outFormat, StitchQuality)
	if err != nil {
		return err
	}
	if written {
		x.outputPath = dst
		x.addResult(Result{
			InputPath:  t.files[0],
			OutputPath: dst,
			Width:      layout.Canvas.Width,
			Height:     layout.Canvas.Height,
			FileBytes:  size,
		})
	}

	x.progress(100)
	return nil
}

// newCanvas создаёт прозрачный NRGBA холст или непрозрачный белый RGBA.
// На белый холст изображения рисуются поверх (draw.Over), поэтому
// прозрачные области оказываются наложены на белый фон.
func newCanvas(s geometry.Size, transparent bool) draw.Image {
	rect := image.Rect(0, 0, s.Width, s.Height)
	if transparent {
		return image.NewNRGBA(rect)
	}
	c := image.NewRGBA(rect)
	draw.Draw(c, rect, image.NewUniform(color.White), image.Point{}, draw.Src)
	return c
}
