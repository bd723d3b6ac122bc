package job

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/artemshloyda/imagetoolbox/internal/codec"
	"github.com/artemshloyda/imagetoolbox/internal/format"
	"github.com/artemshloyda/imagetoolbox/internal/geometry"
)

// ResizeMode - способ выбора общего размера.
type ResizeMode string

const (
	// ResizeMax - максимальная ширина и максимальная высота среди файлов.
	ResizeMax ResizeMode = "max"
	// ResizeMin - минимальная ширина и минимальная высота среди файлов.
	ResizeMin ResizeMode = "min"
	// ResizeCustom - явно заданный размер.
	ResizeCustom ResizeMode = "custom"
)

// Размер по умолчанию для ResizeCustom, если ширина или высота не заданы.
const (
	DefaultCustomWidth  = 800
	DefaultCustomHeight = 600
)

// ErrInvalidResizeMode - неизвестный режим приведения размера.
var ErrInvalidResizeMode = errors.New("режим должен быть max, min или custom")

// ResizeParams - параметры приведения к одному размеру.
type ResizeParams struct {
	Mode ResizeMode

	// Width, Height - размер для ResizeCustom; 0 заменяется на 800x600.
	Width  int
	Height int

	Quality      int
	OutputDir    string
	OutputFormat format.Format
}

type resizeTask struct {
	files  []string
	params ResizeParams
}

// NewResizeJob создаёт задачу приведения всех файлов к одному размеру.
func NewResizeJob(files []string, p ResizeParams, opts Options) (*Job, error) {
	if len(files) == 0 {
		return nil, ErrNoInputs
	}
	if err := validQuality(p.Quality); err != nil {
		return nil, err
	}
	switch p.Mode {
	case ResizeMax, ResizeMin:
	case ResizeCustom:
		if p.Width < 0 || p.Height < 0 {
			return nil, fmt.Errorf("%w: %dx%d", geometry.ErrInvalidSize, p.Width, p.Height)
		}
		if p.Width == 0 {
			p.Width = DefaultCustomWidth
		}
		if p.Height == 0 {
			p.Height = DefaultCustomHeight
		}
	default:
		return nil, fmt.Errorf("%w, получено: %q", ErrInvalidResizeMode, p.Mode)
	}

	t := &resizeTask{files: append([]string(nil), files...), params: p}
	return newJob(OpResize, t, opts), nil
}

// TargetSize вычисляет общий размер для набора размеров.
func TargetSize(sizes []geometry.Size, p ResizeParams) geometry.Size {
	if p.Mode == ResizeCustom {
		return geometry.Size{Width: p.Width, Height: p.Height}
	}

	target := sizes[0]
	for _, s := range sizes[1:] {
		if p.Mode == ResizeMin {
			target.Width = min(target.Width, s.Width)
			target.Height = min(target.Height, s.Height)
		} else {
			target.Width = max(target.Width, s.Width)
			target.Height = max(target.Height, s.Height)
		}
	}
	return target
}

func (t *resizeTask) run(ctx context.Context, x *executor) error {
	p := t.params

	x.status("Анализ размеров изображений...")
	sizes := make([]geometry.Size, 0, len(t.files))
	for _, path := range t.files {
		d, err := codec.Probe(x.fs, path)
		if err != nil {
			return err
		}
		sizes = append(sizes, geometry.Size{Width: d.Width, Height: d.Height})
	}
	target := TargetSize(sizes, p)
	x.log.Debug().Str("target", target.String()).Str("mode", string(p.Mode)).Msg("общий размер рассчитан")
	x.progress(10)

	dir := x.outputDir(p.OutputDir, t.files[0])
	if err := x.ensureDir(dir); err != nil {
		return err
	}

	total := len(t.files)
	for i, path := range t.files {
		if err := x.checkCanceled(ctx); err != nil {
			return err
		}
		x.status("Обработка %d/%d: %s", i+1, total, filepath.Base(path))

		img, d, err := codec.Open(x.fs, path)
		if err != nil {
			return err
		}
		resized := codec.Resize(img, target.Width, target.Height)

		f, ext := outputFormat(d.Format, p.OutputFormat)
		dst := filepath.Join(dir, x.fileName(baseName(path), OpResize, ext))

		written, size, err := x.write(ctx, dst, resized, f, p.Quality)
		if err != nil {
			return err
		}
		if written {
			x.addResult(Result{
				InputPath:          path,
				OutputPath:         dst,
				OriginalDimensions: geometry.Size{Width: d.Width, Height: d.Height}.String(),
				NewDimensions:      target.String(),
				Width:              target.Width,
				Height:             target.Height,
				FileBytes:          size,
			})
		}

		x.progress(10 + (i+1)*90/total)
	}
	return nil
}
