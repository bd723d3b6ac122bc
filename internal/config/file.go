// Package config содержит конфигурацию приложения.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/artemshloyda/imagetoolbox/internal/format"
	"github.com/artemshloyda/imagetoolbox/internal/geometry"
)

// FileConfig представляет структуру конфигурационного файла YAML.
// Все поля опциональны - если не указаны, используются значения по умолчанию.
type FileConfig struct {
	// Output - настройки выходных данных.
	Output *OutputConfig `yaml:"output,omitempty"`

	// Compress - настройки сжатия.
	Compress *CompressConfig `yaml:"compress,omitempty"`

	// Resize - настройки приведения к общему размеру.
	Resize *ResizeConfig `yaml:"resize,omitempty"`

	// Stitch - настройки склейки.
	Stitch *StitchConfig `yaml:"stitch,omitempty"`

	// Split - настройки разбиения сеткой.
	Split *SplitConfig `yaml:"split,omitempty"`

	// Processing - общие настройки обработки.
	Processing *ProcessingConfig `yaml:"processing,omitempty"`

	// Paths - настройки путей.
	Paths *PathsConfig `yaml:"paths,omitempty"`
}

// OutputConfig содержит настройки выходных данных.
type OutputConfig struct {
	// Dir - директория для сохранения результатов.
	Dir string `yaml:"dir,omitempty"`

	// Format - выходной формат (keep, jpg, png, webp).
	Format string `yaml:"format,omitempty"`

	// Quality - качество для lossy форматов (1-100).
	Quality int `yaml:"quality,omitempty"`

	// Overwrite - политика перезаписи (ask, always, never).
	Overwrite string `yaml:"overwrite,omitempty"`
}

// CompressConfig содержит настройки сжатия.
type CompressConfig struct {
	// Scale - масштаб в процентах (1-100).
	Scale int `yaml:"scale,omitempty"`
}

// ResizeConfig содержит настройки приведения к общему размеру.
type ResizeConfig struct {
	// Mode - max, min или custom.
	Mode string `yaml:"mode,omitempty"`

	// Width, Height - размер для custom.
	Width  int `yaml:"width,omitempty"`
	Height int `yaml:"height,omitempty"`
}

// StitchConfig содержит настройки склейки.
type StitchConfig struct {
	// Align - center, start, end, scale-up, scale-down.
	Align string `yaml:"align,omitempty"`

	// Vertical - склеивать сверху вниз.
	Vertical *bool `yaml:"vertical,omitempty"`

	// Scale - предварительное масштабирование (0 = выключено).
	Scale int `yaml:"scale,omitempty"`
}

// SplitConfig содержит настройки разбиения сеткой.
type SplitConfig struct {
	X int `yaml:"x,omitempty"`
	Y int `yaml:"y,omitempty"`
}

// ProcessingConfig содержит общие настройки обработки.
type ProcessingConfig struct {
	// Verbose - подробный вывод.
	Verbose bool `yaml:"verbose,omitempty"`

	// NoProgress - отключить прогресс-бар.
	NoProgress bool `yaml:"no_progress,omitempty"`

	// NoHistory - не записывать историю.
	NoHistory bool `yaml:"no_history,omitempty"`
}

// PathsConfig содержит настройки путей.
type PathsConfig struct {
	// DB - путь к SQLite базе истории.
	DB string `yaml:"db,omitempty"`
}

// DefaultConfigPaths возвращает список путей для поиска конфигурационного файла.
// Поиск выполняется в следующем порядке:
// 1. ./imagetoolbox.yaml (текущая директория)
// 2. ./imagetoolbox.yml
// 3. ~/.config/imagetoolbox/config.yaml
// 4. ~/.config/imagetoolbox/config.yml
func DefaultConfigPaths() []string {
	paths := []string{
		"imagetoolbox.yaml",
		"imagetoolbox.yml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "imagetoolbox", "config.yaml"),
			filepath.Join(home, ".config", "imagetoolbox", "config.yml"),
		)
	}

	return paths
}

// LoadFromFile загружает конфигурацию из указанного файла.
// Возвращает nil, nil если файл не существует.
func LoadFromFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML в %s: %w", path, err)
	}

	return &fc, nil
}

// SaveToFile записывает конфигурацию в YAML файл.
func (fc *FileConfig) SaveToFile(path string) error {
	data, err := yaml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("ошибка сериализации YAML: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("не удалось создать директорию для %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("не удалось записать %s: %w", path, err)
	}
	return nil
}

// FindAndLoadConfig ищет и загружает конфигурационный файл из стандартных путей.
// Если configPath указан явно, использует только его.
// Возвращает nil, nil если файл не найден.
func FindAndLoadConfig(configPath string) (*FileConfig, string, error) {
	if configPath != "" {
		fc, err := LoadFromFile(configPath)
		if err != nil {
			return nil, "", err
		}
		if fc == nil {
			return nil, "", fmt.Errorf("файл конфигурации не найден: %s", configPath)
		}
		return fc, configPath, nil
	}

	for _, path := range DefaultConfigPaths() {
		fc, err := LoadFromFile(path)
		if err != nil {
			return nil, "", err
		}
		if fc != nil {
			return fc, path, nil
		}
	}

	return nil, "", nil
}

// ApplyToConfig применяет настройки из файла к основной конфигурации.
// CLI флаги имеют приоритет над файлом конфигурации, поэтому
// эта функция должна вызываться до применения CLI флагов.
func (fc *FileConfig) ApplyToConfig(cfg *Config) error {
	if fc == nil {
		return nil
	}

	if fc.Output != nil {
		if fc.Output.Dir != "" {
			cfg.OutputDir = fc.Output.Dir
		}
		if fc.Output.Format != "" {
			f, ok := format.Parse(fc.Output.Format)
			if !ok {
				return fmt.Errorf("неизвестный формат в конфигурации: %s", fc.Output.Format)
			}
			cfg.OutputFormat = f
		}
		if fc.Output.Quality > 0 {
			cfg.Quality = fc.Output.Quality
		}
		if fc.Output.Overwrite != "" {
			cfg.Overwrite = OverwritePolicy(fc.Output.Overwrite)
		}
	}

	if fc.Compress != nil && fc.Compress.Scale > 0 {
		cfg.Scale = fc.Compress.Scale
	}

	if fc.Resize != nil {
		if fc.Resize.Mode != "" {
			cfg.ResizeMode = fc.Resize.Mode
		}
		if fc.Resize.Width > 0 {
			cfg.Width = fc.Resize.Width
		}
		if fc.Resize.Height > 0 {
			cfg.Height = fc.Resize.Height
		}
	}

	if fc.Stitch != nil {
		if fc.Stitch.Align != "" {
			cfg.Align = geometry.AlignMode(fc.Stitch.Align)
		}
		if fc.Stitch.Vertical != nil {
			cfg.Vertical = *fc.Stitch.Vertical
		}
		if fc.Stitch.Scale > 0 {
			cfg.StitchScale = fc.Stitch.Scale
		}
	}

	if fc.Split != nil {
		if fc.Split.X > 0 {
			cfg.XSplits = fc.Split.X
		}
		if fc.Split.Y > 0 {
			cfg.YSplits = fc.Split.Y
		}
	}

	if fc.Processing != nil {
		if fc.Processing.Verbose {
			cfg.Verbose = true
		}
		if fc.Processing.NoProgress {
			cfg.NoProgress = true
		}
		if fc.Processing.NoHistory {
			cfg.NoHistory = true
		}
	}

	if fc.Paths != nil && fc.Paths.DB != "" {
		cfg.DBPath = fc.Paths.DB
	}

	return nil
}

// FromConfig строит файловую конфигурацию из текущих настроек.
// Используется для сохранения именованных пресетов.
func FromConfig(cfg *Config) *FileConfig {
	vertical := cfg.Vertical
	return &FileConfig{
		Output: &OutputConfig{
			Dir:       cfg.OutputDir,
			Format:    formatName(cfg.OutputFormat),
			Quality:   cfg.Quality,
			Overwrite: string(cfg.Overwrite),
		},
		Compress: &CompressConfig{Scale: cfg.Scale},
		Resize: &ResizeConfig{
			Mode:   cfg.ResizeMode,
			Width:  cfg.Width,
			Height: cfg.Height,
		},
		Stitch: &StitchConfig{
			Align:    string(cfg.Align),
			Vertical: &vertical,
			Scale:    cfg.StitchScale,
		},
		Split: &SplitConfig{X: cfg.XSplits, Y: cfg.YSplits},
	}
}

func formatName(f format.Format) string {
	if f == format.Keep {
		return "keep"
	}
	return strings.ToLower(string(f))
}

// GenerateExampleConfig генерирует пример конфигурационного файла.
func GenerateExampleConfig() string {
	return `# ImageToolbox Configuration File
# Все параметры опциональны - если не указаны, используются значения по умолчанию.
# CLI флаги имеют приоритет над этим файлом.

output:
  # Директория для результатов (по умолчанию папка первого входного файла)
  dir: "./processed"
  # Выходной формат: keep, jpg, png, webp
  format: keep
  # Качество для lossy форматов (1-100)
  quality: 95
  # Перезапись существующих файлов: ask, always, never
  overwrite: ask

compress:
  # Масштаб при сжатии в процентах (1-100)
  scale: 80

resize:
  # Режим: max, min, custom
  mode: max
  # Размер для custom
  width: 800
  height: 600

stitch:
  # Выравнивание: center, start, end, scale-up, scale-down
  align: center
  # Склеивать сверху вниз
  vertical: false
  # Предварительное масштабирование в процентах (0 = выключено)
  scale: 0

split:
  # Количество частей сетки
  x: 2
  y: 2

processing:
  # Подробный вывод
  verbose: false
  # Отключить прогресс-бар
  no_progress: false
  # Не записывать историю запусков
  no_history: false

paths:
  # Путь к SQLite базе истории
  db: ""
`
}

/*
Возможные расширения:
- Добавить поддержку TOML формата
- Добавить поддержку переменных окружения в конфиге
*/
