// Package codec содержит чтение и запись изображений: декодирование JPEG/PNG/WEBP/BMP,
// кодирование с параметрами качества и атомарную запись файлов.
package codec

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	"github.com/spf13/afero"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/artemshloyda/imagetoolbox/internal/format"
)

// DefaultQuality - качество по умолчанию для lossy форматов.
const DefaultQuality = 95

// Descriptor описывает исходный файл изображения.
type Descriptor struct {
	// Path - путь к файлу.
	Path string

	// Width, Height - размеры в пикселях.
	Width  int
	Height int

	// Format - формат, определённый декодером.
	Format format.Format
}

// Probe читает только заголовок файла и возвращает размеры и формат.
func Probe(fs afero.Fs, path string) (Descriptor, error) {
	f, err := fs.Open(path)
	if err != nil {
		return Descriptor{}, fmt.Errorf("не удалось открыть %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	cfg, name, err := image.DecodeConfig(f)
	if err != nil {
		return Descriptor{}, fmt.Errorf("не удалось прочитать изображение %s: %w", path, err)
	}

	return Descriptor{
		Path:   path,
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: detectedFormat(name, path),
	}, nil
}

// Open полностью декодирует файл изображения.
func Open(fs afero.Fs, path string) (image.Image, Descriptor, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, Descriptor{}, fmt.Errorf("не удалось открыть %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	img, name, err := image.Decode(f)
	if err != nil {
		return nil, Descriptor{}, fmt.Errorf("не удалось декодировать %s: %w", path, err)
	}

	b := img.Bounds()
	return img, Descriptor{
		Path:   path,
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: detectedFormat(name, path),
	}, nil
}

// detectedFormat возвращает формат декодера, а без него - формат по расширению.
func detectedFormat(decoderName, path string) format.Format {
	if decoderName != "" {
		return format.FromDecoderName(decoderName)
	}
	return format.FromPath(path)
}

// HasTransparency сообщает, несёт ли изображение альфа-канал.
// NRGBA и палитры с прозрачными цветами считаются прозрачными всегда,
// остальные модели - только если есть непрозрачные не полностью пиксели.
func HasTransparency(img image.Image) bool {
	switch m := img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.Alpha, *image.Alpha16:
		return true
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
		return false
	case *image.Gray, *image.Gray16, *image.YCbCr, *image.CMYK:
		return false
	}
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}
	return false
}

// Flatten накладывает изображение на белый фон и возвращает непрозрачный RGBA.
func Flatten(img image.Image) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}

// Resize масштабирует изображение до точного размера фильтром Lanczos.
func Resize(img image.Image, width, height int) image.Image {
	b := img.Bounds()
	if b.Dx() == width && b.Dy() == height {
		return img
	}
	return imaging.Resize(img, width, height, imaging.Lanczos)
}

// Crop вырезает прямоугольник; части за пределами изображения отбрасываются.
func Crop(img image.Image, rect image.Rectangle) image.Image {
	b := img.Bounds()
	return imaging.Crop(img, rect.Add(b.Min))
}

// Encode кодирует изображение в указанный формат.
// JPEG накладывается на белый фон; PNG пишется с максимальным сжатием и игнорирует качество;
// WEBP использует lossy-кодирование с заданным качеством. Прочие форматы
// записываются как JPEG, что соответствует расширению ".jpg" из format.ExtensionFor.
func Encode(w io.Writer, img image.Image, f format.Format, quality int) error {
	quality = clampQuality(quality)

	switch f {
	case format.PNG:
		if err := imaging.Encode(w, img, imaging.PNG, imaging.PNGCompressionLevel(png.BestCompression)); err != nil {
			return fmt.Errorf("ошибка кодирования PNG: %w", err)
		}
	case format.WEBP:
		opts, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(quality))
		if err != nil {
			return fmt.Errorf("некорректные параметры WEBP: %w", err)
		}
		if err := webp.Encode(w, img, opts); err != nil {
			return fmt.Errorf("ошибка кодирования WEBP: %w", err)
		}
	default:
		if err := imaging.Encode(w, Flatten(img), imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return fmt.Errorf("ошибка кодирования JPEG: %w", err)
		}
	}
	return nil
}

// WriteFile кодирует изображение и атомарно записывает его в dstPath.
// Данные сначала пишутся во временный файл рядом с целевым, затем он переименовывается.
// Возвращает размер записанного файла в байтах.
func WriteFile(fs afero.Fs, dstPath string, img image.Image, f format.Format, quality int) (int64, error) {
	dstDir := filepath.Dir(dstPath)
	if err := fs.MkdirAll(dstDir, 0755); err != nil {
		return 0, fmt.Errorf("не удалось создать директорию %s: %w", dstDir, err)
	}

	dstExt := filepath.Ext(dstPath)
	tmpPath := strings.TrimSuffix(dstPath, dstExt) + ".converting" + dstExt

	out, err := fs.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать файл %s: %w", tmpPath, err)
	}

	if err := Encode(out, img, f, quality); err != nil {
		_ = out.Close()
		_ = fs.Remove(tmpPath)
		return 0, err
	}
	if err := out.Close(); err != nil {
		_ = fs.Remove(tmpPath)
		return 0, fmt.Errorf("не удалось записать %s: %w", tmpPath, err)
	}

	if err := fs.Rename(tmpPath, dstPath); err != nil {
		_ = fs.Remove(tmpPath)
		return 0, fmt.Errorf("не удалось переименовать %s -> %s: %w", tmpPath, dstPath, err)
	}

	info, err := fs.Stat(dstPath)
	if err != nil {
		return 0, fmt.Errorf("не удалось получить размер %s: %w", dstPath, err)
	}
	return info.Size(), nil
}

// FileSize возвращает размер файла в байтах.
func FileSize(fs afero.Fs, path string) (int64, error) {
	info, err := fs.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("не удалось получить размер %s: %w", path, err)
	}
	return info.Size(), nil
}

// Exists проверяет существование файла.
func Exists(fs afero.Fs, path string) (bool, error) {
	return afero.Exists(fs, path)
}

func clampQuality(q int) int {
	if q <= 0 {
		return DefaultQuality
	}
	if q > 100 {
		return 100
	}
	return q
}

/*
Возможные расширения:
- Добавить lossless режим для WEBP
- Добавить progressive JPEG
- Добавить сохранение EXIF и ICC профилей
*/
