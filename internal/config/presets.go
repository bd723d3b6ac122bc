// Package config содержит конфигурацию приложения.
package config

import "github.com/artemshloyda/imagetoolbox/internal/format"

// Preset определяет профиль качества.
type Preset string

const (
	// PresetWeb - оптимизация для веба: webp, качество 75, масштаб 80%.
	PresetWeb Preset = "web"
	// PresetPrint - высокое качество для печати: jpeg, качество 95, без уменьшения.
	PresetPrint Preset = "print"
	// PresetArchive - архивное качество: PNG без потерь, без уменьшения.
	PresetArchive Preset = "archive"
	// PresetThumbnail - превью: jpeg, качество 60, масштаб 25%.
	PresetThumbnail Preset = "thumbnail"
)

// PresetConfig содержит настройки для пресета.
type PresetConfig struct {
	// Format - выходной формат.
	Format format.Format
	// Quality - качество (1-100).
	Quality int
	// Scale - масштаб сжатия в процентах.
	Scale int
}

// Presets содержит все доступные пресеты.
var Presets = map[Preset]PresetConfig{
	PresetWeb: {
		Format:  format.WEBP,
		Quality: 75,
		Scale:   80,
	},
	PresetPrint: {
		Format:  format.JPEG,
		Quality: 95,
		Scale:   100,
	},
	PresetArchive: {
		Format:  format.PNG,
		Quality: 100,
		Scale:   100,
	},
	PresetThumbnail: {
		Format:  format.JPEG,
		Quality: 60,
		Scale:   25,
	},
}

// ApplyPreset применяет пресет к конфигурации.
// Возвращает true, если пресет был применён.
func (c *Config) ApplyPreset(preset string) bool {
	p, ok := Presets[Preset(preset)]
	if !ok {
		return false
	}

	c.OutputFormat = p.Format
	c.Quality = p.Quality
	c.Scale = p.Scale
	c.Preset = preset

	return true
}

// ValidPresets возвращает список доступных пресетов.
func ValidPresets() []string {
	return []string{
		string(PresetWeb),
		string(PresetPrint),
		string(PresetArchive),
		string(PresetThumbnail),
	}
}
