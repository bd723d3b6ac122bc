// Package cli содержит CLI интерфейс приложения.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/imagetoolbox/internal/config"
	"github.com/artemshloyda/imagetoolbox/internal/format"
	"github.com/artemshloyda/imagetoolbox/internal/geometry"
)

var (
	// Version будет установлена при сборке.
	Version = "dev"

	// BuildTime будет установлена при сборке.
	BuildTime = "unknown"
)

// rootFlags - значения глобальных флагов до слияния с файлом конфигурации.
type rootFlags struct {
	// parsed заполняется cobra; из него берутся только явно указанные флаги.
	parsed *config.Config

	configPath string
	outFormat  string
	align      string
	preset     string
	loadPreset string
	savePreset string
	yes        bool
	no         bool
}

// NewRootCmd создаёт корневую команду CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(newApp())
}

func newRootCmd(a *app) *cobra.Command {
	rf := &rootFlags{parsed: config.DefaultConfig()}

	rootCmd := &cobra.Command{
		Use:   "imagetoolbox",
		Short: "Набор инструментов для пакетной обработки изображений",
		Long: `ImageToolbox - CLI утилита для пакетной обработки изображений.

Приводит набор изображений к одному размеру, пересжимает, склеивает в одно
изображение, режет на сетку и вырезает области. Если выходной файл уже
существует, утилита спрашивает разрешение на перезапись.

Примеры:
  # Сжать все JPEG в папке до 50% с качеством 80
  imagetoolbox compress ./photos --scale 50 --quality 80

  # Привести изображения к максимальному размеру
  imagetoolbox resize a.jpg b.png --mode max

  # Склеить три изображения по горизонтали с выравниванием по центру
  imagetoolbox stitch a.png b.png c.png --align center

  # Разрезать изображение на сетку 3x2
  imagetoolbox grid photo.jpg --x 3 --y 2

  # Вырезать левую верхнюю четверть
  imagetoolbox crop photo.jpg --rect 0,0,0.5,0.5`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rf.resolve(cmd)
			if err != nil {
				return err
			}
			return a.init(cmd, cfg)
		},
	}

	flags := rootCmd.PersistentFlags()
	p := rf.parsed

	// Файлы конфигурации
	flags.StringVar(&rf.configPath, "config", "", "Путь к файлу конфигурации (по умолчанию imagetoolbox.yaml)")
	flags.StringVar(&rf.preset, "preset", "", "Профиль качества: web, print, archive, thumbnail")
	flags.StringVar(&rf.loadPreset, "load-preset", "", "Загрузить именованный пресет")
	flags.StringVar(&rf.savePreset, "save-preset", "", "Сохранить итоговые настройки как именованный пресет")

	// Выходные параметры
	flags.StringVarP(&p.OutputDir, "out", "o", p.OutputDir, "Директория для результатов (по умолчанию папка первого файла)")
	flags.StringVar(&rf.outFormat, "out-format", "keep", "Выходной формат: keep, jpg, png, webp")
	flags.IntVarP(&p.Quality, "quality", "q", p.Quality, "Качество для lossy форматов (1-100)")

	// Перезапись
	flags.BoolVarP(&rf.yes, "yes", "y", false, "Перезаписывать существующие файлы без вопроса")
	flags.BoolVar(&rf.no, "no", false, "Пропускать существующие файлы без вопроса")

	// История
	flags.StringVar(&p.DBPath, "db", p.DBPath, "Путь к SQLite базе истории")
	flags.BoolVar(&p.NoHistory, "no-history", p.NoHistory, "Не записывать историю запусков")

	// Вывод
	flags.BoolVarP(&p.Verbose, "verbose", "v", p.Verbose, "Подробный вывод")
	flags.BoolVar(&p.NoProgress, "no-progress", p.NoProgress, "Отключить прогресс-бар")

	// Параметры операций, общие для файла конфигурации
	flags.IntVar(&p.Scale, "scale", p.Scale, "Масштаб сжатия в процентах (1-100)")
	flags.StringVar(&rf.align, "align", string(p.Align),
		"Выравнивание склейки: center, start, end, scale-up, scale-down")

	rootCmd.AddCommand(newResizeCmd(a, p))
	rootCmd.AddCommand(newCompressCmd(a))
	rootCmd.AddCommand(newStitchCmd(a, p))
	rootCmd.AddCommand(newGridCmd(a, p))
	rootCmd.AddCommand(newCropCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newHistoryCmd(a))
	rootCmd.AddCommand(newStatsCmd(a))
	rootCmd.AddCommand(newPresetsCmd(a))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// resolve собирает конфигурацию: значения по умолчанию, файл, пресеты, затем явные флаги.
func (rf *rootFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	fc, path, err := config.FindAndLoadConfig(rf.configPath)
	if err != nil {
		return nil, err
	}
	if err := fc.ApplyToConfig(cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if rf.loadPreset != "" {
		store, err := config.DefaultPresetStore()
		if err != nil {
			return nil, err
		}
		pfc, _, err := store.Load(rf.loadPreset)
		if err != nil {
			return nil, err
		}
		if err := pfc.ApplyToConfig(cfg); err != nil {
			return nil, fmt.Errorf("пресет '%s': %w", rf.loadPreset, err)
		}
	}

	if rf.preset != "" && !cfg.ApplyPreset(rf.preset) {
		return nil, fmt.Errorf("неизвестный пресет: %s (доступны: web, print, archive, thumbnail)", rf.preset)
	}

	if err := rf.mergeChanged(cmd, cfg); err != nil {
		return nil, err
	}

	if rf.yes && rf.no {
		return nil, fmt.Errorf("флаги --yes и --no взаимоисключающие")
	}
	if rf.yes {
		cfg.Overwrite = config.OverwriteAlways
	}
	if rf.no {
		cfg.Overwrite = config.OverwriteNever
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ошибка конфигурации: %w", err)
	}

	if rf.savePreset != "" {
		store, err := config.DefaultPresetStore()
		if err != nil {
			return nil, err
		}
		saved, err := store.Save(rf.savePreset, cfg)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "💾 Пресет '%s' сохранён: %s\n", rf.savePreset, saved)
	}

	return cfg, nil
}

// mergeChanged переносит в cfg только флаги, указанные явно.
func (rf *rootFlags) mergeChanged(cmd *cobra.Command, cfg *config.Config) error {
	changed := cmd.Flags().Changed
	p := rf.parsed

	if changed("out") {
		cfg.OutputDir = p.OutputDir
	}
	if changed("out-format") {
		f, ok := format.Parse(rf.outFormat)
		if !ok {
			return fmt.Errorf("неизвестный формат: %s (доступны: keep, jpg, png, webp)", rf.outFormat)
		}
		cfg.OutputFormat = f
	}
	if changed("quality") {
		cfg.Quality = p.Quality
	}
	if changed("db") {
		cfg.DBPath = p.DBPath
	}
	if changed("no-history") {
		cfg.NoHistory = p.NoHistory
	}
	if changed("verbose") {
		cfg.Verbose = p.Verbose
	}
	if changed("no-progress") {
		cfg.NoProgress = p.NoProgress
	}
	if changed("scale") {
		cfg.Scale = p.Scale
	}
	if changed("prescale") {
		cfg.StitchScale = p.StitchScale
	}
	if changed("align") {
		cfg.Align = geometry.AlignMode(rf.align)
	}

	// Флаги подкоманд
	if changed("mode") {
		cfg.ResizeMode = p.ResizeMode
	}
	if changed("width") {
		cfg.Width = p.Width
	}
	if changed("height") {
		cfg.Height = p.Height
	}
	if changed("vertical") {
		cfg.Vertical = p.Vertical
	}
	if changed("x") {
		cfg.XSplits = p.XSplits
	}
	if changed("y") {
		cfg.YSplits = p.YSplits
	}
	return nil
}

// newVersionCmd создаёт команду version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию",
		// version не требует конфигурации
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "imagetoolbox %s (built %s)\n", Version, BuildTime)
		},
	}
}

// Execute запускает CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		// Не выводим ошибку, cobra уже вывела
		os.Exit(1)
	}
}

/*
Возможные расширения:
- Добавить команду clean для очистки истории
- Добавить вывод результатов в JSON
*/
