// Package format определяет выходной формат изображений и расширения файлов.
package format

import (
	"path/filepath"
	"strings"
)

// Format - имя контейнера изображения в верхнем регистре (JPEG, PNG, WEBP, BMP).
type Format string

const (
	// Keep - сохранить исходный формат (пустое значение).
	Keep Format = ""
	JPEG Format = "JPEG"
	PNG  Format = "PNG"
	WEBP Format = "WEBP"
	BMP  Format = "BMP"
)

// jpgAlias - неформальное имя JPEG, встречающееся в расширениях файлов.
const jpgAlias Format = "JPG"

// Default - формат по умолчанию, если ни исходный, ни запрошенный не известны.
const Default = JPEG

// ResolveOutputFormat возвращает итоговый формат для записи.
// Запрошенный формат имеет приоритет, затем исходный, затем JPEG.
// Алиас "JPG" нормализуется в "JPEG".
func ResolveOutputFormat(original, requested Format) Format {
	original = normalize(original)
	requested = normalize(requested)

	if requested != Keep {
		return requested
	}
	if original != Keep {
		return original
	}
	return Default
}

// ExtensionFor возвращает расширение файла для формата.
// Неизвестные форматы получают ".jpg".
func ExtensionFor(f Format) string {
	switch f {
	case JPEG:
		return ".jpg"
	case PNG:
		return ".png"
	case WEBP:
		return ".webp"
	default:
		return ".jpg"
	}
}

// Parse разбирает пользовательское имя формата ("jpg", "png", "keep", ...).
// Возвращает false для неизвестных значений.
func Parse(s string) (Format, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "KEEP", "ORIGINAL":
		return Keep, true
	case "JPG", "JPEG":
		return JPEG, true
	case "PNG":
		return PNG, true
	case "WEBP":
		return WEBP, true
	default:
		return Keep, false
	}
}

// FromDecoderName переводит имя формата из image.Decode ("jpeg", "png", ...) в Format.
func FromDecoderName(name string) Format {
	return normalize(Format(strings.ToUpper(name)))
}

// FromPath определяет формат по расширению файла. Для неизвестных расширений
// возвращает расширение в верхнем регистре без точки.
func FromPath(path string) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return normalize(Format(strings.ToUpper(ext)))
}

// SupportedExtensions возвращает расширения входных файлов (без точки, lowercase).
func SupportedExtensions() []string {
	return []string{"png", "jpg", "jpeg", "bmp", "webp"}
}

// normalize приводит алиас JPG к JPEG.
func normalize(f Format) Format {
	if f == jpgAlias {
		return JPEG
	}
	return f
}
