package job

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strconv"

	"github.com/artemshloyda/imagetoolbox/internal/codec"
	"github.com/artemshloyda/imagetoolbox/internal/format"
	"github.com/artemshloyda/imagetoolbox/internal/geometry"
)

var (
	// ErrNoRegions - не задано ни одной области.
	ErrNoRegions = errors.New("не задано ни одной области")

	// ErrEmptyRegion - область после пересечения с изображением пуста.
	ErrEmptyRegion = errors.New("область не пересекается с изображением")
)

// GridSplitParams - параметры разбиения сеткой.
type GridSplitParams struct {
	XSplits int
	YSplits int

	Quality      int
	OutputDir    string
	OutputFormat format.Format
}

// RegionSplitParams - параметры вырезания областей.
type RegionSplitParams struct {
	// Regions - области в нормализованных координатах [0, 1].
	Regions []geometry.Region

	Quality      int
	OutputDir    string
	OutputFormat format.Format
}

type gridTask struct {
	file   string
	params GridSplitParams
}

type regionTask struct {
	file   string
	params RegionSplitParams
}

// NewGridSplitJob создаёт задачу разбиения файла на XSplits x YSplits частей.
func NewGridSplitJob(file string, p GridSplitParams, opts Options) (*Job, error) {
	if file == "" {
		return nil, ErrNoInputs
	}
	if err := validQuality(p.Quality); err != nil {
		return nil, err
	}
	if p.XSplits < 1 || p.XSplits > geometry.MaxSplits || p.YSplits < 1 || p.YSplits > geometry.MaxSplits {
		return nil, fmt.Errorf("%w: %dx%d", geometry.ErrInvalidSplit, p.XSplits, p.YSplits)
	}
	return newJob(OpGrid, &gridTask{file: file, params: p}, opts), nil
}

// NewRegionSplitJob создаёт задачу вырезания областей из файла.
func NewRegionSplitJob(file string, p RegionSplitParams, opts Options) (*Job, error) {
	if file == "" {
		return nil, ErrNoInputs
	}
	if err := validQuality(p.Quality); err != nil {
		return nil, err
	}
	if len(p.Regions) == 0 {
		return nil, ErrNoRegions
	}
	p.Regions = append([]geometry.Region(nil), p.Regions...)
	return newJob(OpRegion, &regionTask{file: file, params: p}, opts), nil
}

// piece - одна вырезаемая часть изображения.
type piece struct {
	rect   image.Rectangle
	suffix []string
	result Result
}

// writePieces вырезает части и пишет их в folder; прогресс идёт от 20 до 90.
func (x *executor) writePieces(ctx context.Context, src string, img image.Image, d codec.Descriptor,
	folder string, op Operation, pieces []piece, quality int, requested format.Format) error {
	if err := x.ensureDir(folder); err != nil {
		return err
	}

	f, ext := outputFormat(d.Format, requested)
	base := baseName(src)
	total := len(pieces)
	for i, pc := range pieces {
		if err := x.checkCanceled(ctx); err != nil {
			return err
		}
		x.status("Обработка части %d/%d...", i+1, total)

		part := codec.Crop(img, pc.rect)
		dst := filepath.Join(folder, x.fileName(base, op, ext, pc.suffix...))

		written, size, err := x.write(ctx, dst, part, f, quality)
		if err != nil {
			return err
		}
		if written {
			r := pc.result
			r.InputPath = src
			r.OutputPath = dst
			r.OutputFolder = folder
			r.Width = part.Bounds().Dx()
			r.Height = part.Bounds().Dy()
			r.FileBytes = size
			x.addResult(r)
		}

		x.progress(20 + (i+1)*70/total)
	}
	return nil
}

func (t *gridTask) run(ctx context.Context, x *executor) error {
	p := t.params

	x.status("Загрузка изображения...")
	x.progress(10)
	img, d, err := codec.Open(x.fs, t.file)
	if err != nil {
		return err
	}

	cells, err := geometry.GridCells(d.Width, d.Height, p.XSplits, p.YSplits)
	if err != nil {
		return err
	}
	x.status("Разбиение %dx%d = %d частей...", p.XSplits, p.YSplits, len(cells))
	x.progress(20)

	pieces := make([]piece, 0, len(cells))
	for _, c := range cells {
		pieces = append(pieces, piece{
			rect:   c.Rect,
			suffix: []string{strconv.Itoa(c.Row), strconv.Itoa(c.Col)},
			result: Result{
				Row:   c.Row,
				Col:   c.Col,
				Label: fmt.Sprintf("строка %d, колонка %d", c.Row, c.Col),
			},
		})
	}

	dir := x.outputDir(p.OutputDir, t.file)
	folder := filepath.Join(dir, fmt.Sprintf("%s_%s_%dx%d", baseName(t.file), OpGrid, p.XSplits, p.YSplits))
	if err := x.writePieces(ctx, t.file, img, d, folder, OpGrid, pieces, p.Quality, p.OutputFormat); err != nil {
		return err
	}

	x.progress(100)
	return nil
}

func (t *regionTask) run(ctx context.Context, x *executor) error {
	p := t.params

	x.status("Загрузка изображения...")
	x.progress(10)
	img, d, err := codec.Open(x.fs, t.file)
	if err != nil {
		return err
	}

	bounds := image.Rect(0, 0, d.Width, d.Height)
	pieces := make([]piece, 0, len(p.Regions))
	for i, r := range p.Regions {
		rect := r.Rect(d.Width, d.Height).Intersect(bounds)
		if rect.Empty() {
			return fmt.Errorf("область %d (%.3f, %.3f, %.3f, %.3f): %w",
				i+1, r.X, r.Y, r.Width, r.Height, ErrEmptyRegion)
		}
		pieces = append(pieces, piece{
			rect:   rect,
			suffix: []string{strconv.Itoa(i + 1)},
			result: Result{
				Region: i + 1,
				Label:  fmt.Sprintf("область %d", i+1),
			},
		})
	}
	x.status("Вырезание %d областей...", len(pieces))
	x.progress(20)

	dir := x.outputDir(p.OutputDir, t.file)
	folder := filepath.Join(dir, fmt.Sprintf("%s_%s_%d_regions", baseName(t.file), OpRegion, len(pieces)))
	if err := x.writePieces(ctx, t.file, img, d, folder, OpRegion, pieces, p.Quality, p.OutputFormat); err != nil {
		return err
	}

	x.progress(100)
	return nil
}
