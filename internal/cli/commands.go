package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/imagetoolbox/internal/config"
	"github.com/artemshloyda/imagetoolbox/internal/job"
	"github.com/artemshloyda/imagetoolbox/internal/watcher"
)

// newResizeCmd создаёт команду resize.
func newResizeCmd(a *app, p *config.Config) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "resize [files или директории...]",
		Short: "Привести изображения к одному размеру",
		Long: `Приводит все изображения к одному размеру.

Режимы:
  max     - наибольшие ширина и высота среди изображений
  min     - наименьшие ширина и высота среди изображений
  custom  - размер из --width и --height (по умолчанию 800x600)`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := a.collect(args, recursive)
			if err != nil {
				return err
			}

			j, err := job.NewResizeJob(files, job.ResizeParams{
				Mode:         job.ResizeMode(a.cfg.ResizeMode),
				Width:        a.cfg.Width,
				Height:       a.cfg.Height,
				Quality:      a.cfg.Quality,
				OutputDir:    a.cfg.OutputDir,
				OutputFormat: a.cfg.OutputFormat,
			}, a.jobOptions())
			if err != nil {
				return err
			}

			ctx, cancel := a.signalContext(cmd.Context())
			defer cancel()

			fmt.Fprintf(a.out, "🚀 Изменение размера %d изображений (режим %s)\n", len(files), a.cfg.ResizeMode)
			results, err := a.runJob(ctx, j, len(files), "Изменение размера")
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "\n📊 Результаты:\n")
			for _, r := range results {
				fmt.Fprintf(a.out, "   ✅ %s: %s → %s\n", filepath.Base(r.InputPath), r.OriginalDimensions, r.NewDimensions)
			}
			a.printSummary(len(files), results)
			return nil
		},
	}

	cmd.Flags().StringVar(&p.ResizeMode, "mode", p.ResizeMode, "Режим: max, min, custom")
	cmd.Flags().IntVar(&p.Width, "width", p.Width, "Ширина для режима custom")
	cmd.Flags().IntVar(&p.Height, "height", p.Height, "Высота для режима custom")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Обходить поддиректории")

	return cmd
}

// newCompressCmd создаёт команду compress.
func newCompressCmd(a *app) *cobra.Command {
	var recursive bool

	cmd := &cobra.Command{
		Use:   "compress [files или директории...]",
		Short: "Пересжать изображения с качеством и масштабом",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := a.collect(args, recursive)
			if err != nil {
				return err
			}

			ctx, cancel := a.signalContext(cmd.Context())
			defer cancel()

			fmt.Fprintf(a.out, "🚀 Сжатие %d изображений (качество %d, масштаб %d%%)\n",
				len(files), a.cfg.Quality, a.cfg.Scale)
			results, err := a.compress(ctx, files)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "\n📊 Результаты:\n")
			for _, r := range results {
				fmt.Fprintf(a.out, "   ✅ %s: %s → %s (%.1f%%)\n",
					filepath.Base(r.InputPath), formatBytes(r.OriginalBytes), formatBytes(r.FileBytes), r.Ratio*100)
			}
			a.printSummary(len(files), results)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Обходить поддиректории")

	return cmd
}

// newStitchCmd создаёт команду stitch.
func newStitchCmd(a *app, p *config.Config) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "stitch [files...]",
		Short: "Склеить изображения в одно",
		Long: `Склеивает изображения в одно по горизонтали или вертикали.

Выравнивание (--align):
  center      - по центру
  start       - по левому/верхнему краю
  end         - по правому/нижнему краю
  scale-up    - увеличить до наибольшего размера
  scale-down  - уменьшить до наименьшего размера

Прозрачность сохраняется, только если все изображения PNG.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := a.collect(args, false)
			if err != nil {
				return err
			}

			j, err := job.NewStitchJob(files, job.StitchParams{
				Direction:    a.cfg.Direction(),
				Align:        a.cfg.Align,
				Scale:        a.cfg.StitchScale,
				OutputDir:    a.cfg.OutputDir,
				OutputName:   name,
				OutputFormat: a.cfg.OutputFormat,
			}, a.jobOptions())
			if err != nil {
				return err
			}

			ctx, cancel := a.signalContext(cmd.Context())
			defer cancel()

			fmt.Fprintf(a.out, "🚀 Склейка %d изображений (%s, %s)\n", len(files), a.cfg.Direction(), a.cfg.Align)
			results, err := a.runJob(ctx, j, len(files), "Склейка")
			if err != nil {
				return err
			}

			if len(results) == 0 {
				fmt.Fprintln(a.out, "⏭️  Результат не сохранён")
				return nil
			}
			r := results[0]
			fmt.Fprintf(a.out, "\n✅ Склеено: %s\n", r.OutputPath)
			fmt.Fprintf(a.out, "   Размер: %dx%d, %s\n", r.Width, r.Height, formatBytes(r.FileBytes))
			return nil
		},
	}

	cmd.Flags().BoolVar(&p.Vertical, "vertical", p.Vertical, "Склеивать по вертикали")
	cmd.Flags().IntVar(&p.StitchScale, "prescale", p.StitchScale, "Предварительное масштабирование в процентах (0 = выключено)")
	cmd.Flags().StringVar(&name, "name", "", "Имя результата без расширения")

	return cmd
}

// newGridCmd создаёт команду grid.
func newGridCmd(a *app, p *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid [file]",
		Short: "Разрезать изображение на сетку",
		Long: `Разрезает изображение на сетку из --x колонок и --y строк (1-20).

Части сохраняются в папку {имя}_split_{x}x{y} рядом с результатами.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.cfg.XSplits == 1 && a.cfg.YSplits == 1 {
				return fmt.Errorf("сетка 1x1 не делит изображение: увеличьте --x или --y")
			}

			files, err := a.collect(args, false)
			if err != nil {
				return err
			}

			j, err := job.NewGridSplitJob(files[0], job.GridSplitParams{
				XSplits:      a.cfg.XSplits,
				YSplits:      a.cfg.YSplits,
				Quality:      a.cfg.Quality,
				OutputDir:    a.cfg.OutputDir,
				OutputFormat: a.cfg.OutputFormat,
			}, a.jobOptions())
			if err != nil {
				return err
			}

			ctx, cancel := a.signalContext(cmd.Context())
			defer cancel()

			fmt.Fprintf(a.out, "🚀 Разрезка %s на сетку %dx%d\n", filepath.Base(files[0]), a.cfg.XSplits, a.cfg.YSplits)
			results, err := a.runJob(ctx, j, 1, "Разрезка")
			if err != nil {
				return err
			}

			a.printPieces(results)
			return nil
		},
	}

	cmd.Flags().IntVar(&p.XSplits, "x", p.XSplits, "Количество колонок (1-20)")
	cmd.Flags().IntVar(&p.YSplits, "y", p.YSplits, "Количество строк (1-20)")

	return cmd
}

// newCropCmd создаёт команду crop.
func newCropCmd(a *app) *cobra.Command {
	var rects, ellipses, polygons []string

	cmd := &cobra.Command{
		Use:   "crop [file]",
		Short: "Вырезать области из изображения",
		Long: `Вырезает области из изображения. Координаты нормированы к [0, 1].

Области:
  --rect x,y,w,h             прямоугольник
  --ellipse cx,cy,rx,ry      эллипс (режется по ограничивающему прямоугольнику)
  --polygon x1,y1,x2,y2,...  многоугольник (режется по ограничивающему прямоугольнику)

Флаги можно повторять. Части сохраняются в папку {имя}_crop_{n}_regions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			regions, err := parseRegions(rects, ellipses, polygons)
			if err != nil {
				return err
			}

			files, err := a.collect(args, false)
			if err != nil {
				return err
			}

			j, err := job.NewRegionSplitJob(files[0], job.RegionSplitParams{
				Regions:      regions,
				Quality:      a.cfg.Quality,
				OutputDir:    a.cfg.OutputDir,
				OutputFormat: a.cfg.OutputFormat,
			}, a.jobOptions())
			if err != nil {
				return err
			}

			ctx, cancel := a.signalContext(cmd.Context())
			defer cancel()

			fmt.Fprintf(a.out, "🚀 Вырезание %d областей из %s\n", len(regions), filepath.Base(files[0]))
			results, err := a.runJob(ctx, j, 1, "Вырезание")
			if err != nil {
				return err
			}

			a.printPieces(results)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&rects, "rect", nil, "Прямоугольник x,y,w,h")
	cmd.Flags().StringArrayVar(&ellipses, "ellipse", nil, "Эллипс cx,cy,rx,ry")
	cmd.Flags().StringArrayVar(&polygons, "polygon", nil, "Многоугольник x1,y1,x2,y2,...")

	return cmd
}

// newWatchCmd создаёт команду watch.
func newWatchCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Следить за директорией и сжимать новые изображения",
		Long: `Следит за директорией и запускает сжатие для каждого нового изображения.

Собственные результаты (файлы с _compressed_ в имени) не обрабатываются.
Для остановки нажмите Ctrl+C.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]

			w, err := watcher.New(dir, &a.log)
			if err != nil {
				return err
			}
			w.SetIgnore(isOwnOutput)

			ctx, cancel := a.signalContext(cmd.Context())
			defer cancel()

			files, err := w.Watch(ctx)
			if err != nil {
				_ = w.Close()
				return err
			}

			fmt.Fprintf(a.out, "👀 Слежение за %s (качество %d, масштаб %d%%)\n", dir, a.cfg.Quality, a.cfg.Scale)

			processed := 0
			for path := range files {
				results, err := a.compress(ctx, []string{path})
				if err != nil {
					if ctx.Err() != nil {
						break
					}
					fmt.Fprintf(a.out, "❌ %s: %v\n", filepath.Base(path), err)
					continue
				}
				for _, r := range results {
					processed++
					fmt.Fprintf(a.out, "✅ %s → %s (%.1f%%)\n", filepath.Base(r.InputPath), filepath.Base(r.OutputPath), r.Ratio*100)
				}
			}

			fmt.Fprintf(a.out, "\n📊 Обработано файлов: %d\n", processed)
			return nil
		},
	}

	return cmd
}

// compress запускает задачу сжатия с текущими настройками.
func (a *app) compress(ctx context.Context, files []string) ([]job.Result, error) {
	j, err := job.NewCompressJob(files, job.CompressParams{
		Quality:      a.cfg.Quality,
		Scale:        a.cfg.Scale,
		OutputDir:    a.cfg.OutputDir,
		OutputFormat: a.cfg.OutputFormat,
	}, a.jobOptions())
	if err != nil {
		return nil, err
	}
	return a.runJob(ctx, j, len(files), "Сжатие")
}

// isOwnOutput сообщает, является ли файл результатом сжатия.
func isOwnOutput(path string) bool {
	return strings.Contains(filepath.Base(path), "_"+string(job.OpCompress)+"_")
}

// printPieces выводит результаты разрезки.
func (a *app) printPieces(results []job.Result) {
	if len(results) == 0 {
		fmt.Fprintln(a.out, "⏭️  Ни одна часть не сохранена")
		return
	}

	fmt.Fprintf(a.out, "\n📁 Папка: %s\n", results[0].OutputFolder)
	for _, r := range results {
		fmt.Fprintf(a.out, "   ✅ %s: %s (%dx%d)\n", r.Label, filepath.Base(r.OutputPath), r.Width, r.Height)
	}
	fmt.Fprintf(a.out, "\n📊 Сохранено частей: %d\n", len(results))
}

// printSummary выводит итог пакетной обработки.
func (a *app) printSummary(inputs int, results []job.Result) {
	var written int64
	for _, r := range results {
		written += r.FileBytes
	}
	fmt.Fprintf(a.out, "\n   Обработано: %d из %d\n", len(results), inputs)
	if skipped := inputs - len(results); skipped > 0 {
		fmt.Fprintf(a.out, "   Пропущено: %d\n", skipped)
	}
	fmt.Fprintf(a.out, "   Записано: %s\n", formatBytes(written))
}
