package job

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/artemshloyda/imagetoolbox/internal/codec"
	"github.com/artemshloyda/imagetoolbox/internal/format"
)

// CompressParams - параметры сжатия.
type CompressParams struct {
	Quality int

	// Scale - масштаб в процентах (1-100); 100 сохраняет размер.
	Scale int

	OutputDir    string
	OutputFormat format.Format
}

type compressTask struct {
	files  []string
	params CompressParams
}

// NewCompressJob создаёт задачу пересжатия файлов с опциональным уменьшением.
func NewCompressJob(files []string, p CompressParams, opts Options) (*Job, error) {
	if len(files) == 0 {
		return nil, ErrNoInputs
	}
	if err := validQuality(p.Quality); err != nil {
		return nil, err
	}
	if p.Scale < 1 || p.Scale > 100 {
		return nil, fmt.Errorf("%w, получено: %d", ErrInvalidScale, p.Scale)
	}

	t := &compressTask{files: append([]string(nil), files...), params: p}
	return newJob(OpCompress, t, opts), nil
}

// CompressionRatio возвращает долю сокращения размера файла.
// Для пустого исходного файла возвращает 0.
func CompressionRatio(originalBytes, newBytes int64) float64 {
	if originalBytes <= 0 {
		return 0
	}
	return 1 - float64(newBytes)/float64(originalBytes)
}

// scaled возвращает v*percent/100 с округлением вниз, но не меньше 1.
func scaled(v, percent int) int {
	return max(v*percent/100, 1)
}

func (t *compressTask) run(ctx context.Context, x *executor) error {
	p := t.params

	dir := x.outputDir(p.OutputDir, t.files[0])
	if err := x.ensureDir(dir); err != nil {
		return err
	}

	total := len(t.files)
	for i, path := range t.files {
		if err := x.checkCanceled(ctx); err != nil {
			return err
		}
		x.status("Сжатие %d/%d: %s", i+1, total, filepath.Base(path))

		originalBytes, err := codec.FileSize(x.fs, path)
		if err != nil {
			return err
		}
		img, d, err := codec.Open(x.fs, path)
		if err != nil {
			return err
		}

		width, height := d.Width, d.Height
		if p.Scale < 100 {
			width, height = scaled(width, p.Scale), scaled(height, p.Scale)
			img = codec.Resize(img, width, height)
		}

		f, ext := outputFormat(d.Format, p.OutputFormat)
		dst := filepath.Join(dir, x.fileName(baseName(path), OpCompress, ext))

		written, size, err := x.write(ctx, dst, img, f, p.Quality)
		if err != nil {
			return err
		}
		if written {
			x.addResult(Result{
				InputPath:     path,
				OutputPath:    dst,
				Width:         width,
				Height:        height,
				OriginalBytes: originalBytes,
				FileBytes:     size,
				Ratio:         CompressionRatio(originalBytes, size),
			})
		}

		x.progress((i + 1) * 100 / total)
	}
	return nil
}
