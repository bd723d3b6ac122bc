// Package config содержит конфигурацию приложения.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/artemshloyda/imagetoolbox/internal/format"
	"github.com/artemshloyda/imagetoolbox/internal/geometry"
)

// OverwritePolicy определяет ответ на запрос перезаписи существующего файла.
type OverwritePolicy string

const (
	// OverwriteAsk - спрашивать в терминале.
	OverwriteAsk OverwritePolicy = "ask"
	// OverwriteAlways - всегда перезаписывать.
	OverwriteAlways OverwritePolicy = "always"
	// OverwriteNever - всегда пропускать.
	OverwriteNever OverwritePolicy = "never"
)

// Режимы приведения к общему размеру.
const (
	ResizeMax    = "max"
	ResizeMin    = "min"
	ResizeCustom = "custom"
)

// Config содержит все настройки обработки.
type Config struct {
	// OutputDir - директория для результатов (пусто = папка первого входного файла).
	OutputDir string

	// OutputFormat - формат выходных файлов (пусто = как у исходного).
	OutputFormat format.Format

	// Quality - качество для lossy форматов (1-100).
	Quality int

	// Scale - масштаб при сжатии в процентах (1-100).
	Scale int

	// ResizeMode - режим приведения к общему размеру (max, min, custom).
	ResizeMode string

	// Width, Height - размер для режима custom.
	Width  int
	Height int

	// XSplits, YSplits - количество частей сетки по горизонтали и вертикали.
	XSplits int
	YSplits int

	// Align - выравнивание при склейке.
	Align geometry.AlignMode

	// Vertical - склеивать сверху вниз.
	Vertical bool

	// StitchScale - предварительное масштабирование склейки (0 = выключено).
	StitchScale int

	// Overwrite - политика перезаписи существующих файлов.
	Overwrite OverwritePolicy

	// DBPath - путь к SQLite базе истории.
	DBPath string

	// NoHistory - не записывать историю запусков.
	NoHistory bool

	// Verbose - подробный вывод.
	Verbose bool

	// NoProgress - отключить прогресс-бар.
	NoProgress bool

	// Preset - профиль качества (web, print, archive, thumbnail).
	Preset string
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() *Config {
	return &Config{
		OutputFormat: format.Keep,
		Quality:      95,
		Scale:        80,
		ResizeMode:   ResizeMax,
		Width:        800,
		Height:       600,
		XSplits:      2,
		YSplits:      2,
		Align:        geometry.AlignCenter,
		Overwrite:    OverwriteAsk,
	}
}

// Validate проверяет корректность конфигурации.
func (c *Config) Validate() error {
	if c.Quality < 1 || c.Quality > 100 {
		return fmt.Errorf("качество должно быть от 1 до 100, получено: %d", c.Quality)
	}
	if c.Scale < 1 || c.Scale > 100 {
		return fmt.Errorf("масштаб должен быть от 1 до 100, получено: %d", c.Scale)
	}
	if c.StitchScale < 0 || c.StitchScale > 100 {
		return fmt.Errorf("масштаб склейки должен быть от 0 до 100, получено: %d", c.StitchScale)
	}
	if c.XSplits < 1 || c.XSplits > geometry.MaxSplits || c.YSplits < 1 || c.YSplits > geometry.MaxSplits {
		return fmt.Errorf("количество частей должно быть от 1 до %d, получено: %dx%d",
			geometry.MaxSplits, c.XSplits, c.YSplits)
	}
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("размер не может быть отрицательным: %dx%d", c.Width, c.Height)
	}

	switch c.OutputFormat {
	case format.Keep, format.JPEG, format.PNG, format.WEBP:
	default:
		return fmt.Errorf("неизвестный формат: %s (доступны: keep, jpg, png, webp)", c.OutputFormat)
	}
	switch c.ResizeMode {
	case ResizeMax, ResizeMin, ResizeCustom:
	default:
		return fmt.Errorf("неизвестный режим: %s (доступны: max, min, custom)", c.ResizeMode)
	}
	if !c.Align.Valid() {
		return fmt.Errorf("неизвестное выравнивание: %s (доступны: %s)",
			c.Align, strings.Join(geometry.ValidAlignModes(), ", "))
	}
	switch c.Overwrite {
	case OverwriteAsk, OverwriteAlways, OverwriteNever:
	default:
		return fmt.Errorf("неизвестная политика перезаписи: %s (доступны: ask, always, never)", c.Overwrite)
	}

	// Устанавливаем путь к БД по умолчанию
	if c.DBPath == "" {
		c.DBPath = DefaultDBPath()
	}

	return nil
}

// DefaultDBPath возвращает путь к базе истории в домашней директории.
func DefaultDBPath() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "imagetoolbox", "history.sqlite")
	}
	return filepath.Join(".imagetoolbox", "history.sqlite")
}

// Direction возвращает направление склейки.
func (c *Config) Direction() geometry.Direction {
	if c.Vertical {
		return geometry.Vertical
	}
	return geometry.Horizontal
}

// OutputParams возвращает параметры выхода в виде JSON для истории запусков.
func (c *Config) OutputParams() string {
	params := map[string]interface{}{
		"format":  c.OutputFormat,
		"quality": c.Quality,
		"scale":   c.Scale,
	}
	b, _ := json.Marshal(params)
	return string(b)
}

/*
Возможные расширения:
- Добавить параметры водяного знака
- Добавить параметры сохранения метаданных
*/
