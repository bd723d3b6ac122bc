package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/imagetoolbox/internal/config"
)

// newPresetsCmd создаёт команду для управления пресетами.
func newPresetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Управление именованными пресетами конфигурации",
		Long: `Управление именованными пресетами конфигурации.

Пресеты хранятся в ~/.config/imagetoolbox/presets/ и позволяют
сохранять и загружать настройки для разных задач.

Примеры:
  # Сохранить текущие настройки как пресет
  imagetoolbox presets list --preset web --out-format webp --save-preset site

  # Сжать фотографии с настройками пресета
  imagetoolbox compress ./photos --load-preset site

  # Удалить пресет
  imagetoolbox presets delete site`,
	}

	cmd.AddCommand(newPresetsListCmd(a))
	cmd.AddCommand(newPresetsDeleteCmd(a))
	cmd.AddCommand(newPresetsShowCmd(a))

	return cmd
}

// newPresetsListCmd создаёт команду для списка пресетов.
func newPresetsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Показать список сохранённых пресетов",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := config.DefaultPresetStore()
			if err != nil {
				return err
			}
			presets, err := store.List()
			if err != nil {
				return fmt.Errorf("ошибка получения списка пресетов: %w", err)
			}

			if len(presets) == 0 {
				fmt.Fprintln(a.out, "Пресеты не найдены.")
				fmt.Fprintln(a.out)
				fmt.Fprintln(a.out, "Сохраните пресет флагом --save-preset:")
				fmt.Fprintln(a.out, "  imagetoolbox presets list --preset web --save-preset my-project")
				return nil
			}

			fmt.Fprintf(a.out, "📦 Сохранённые пресеты (%d):\n\n", len(presets))

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ИМЯ\tФОРМАТ\tКАЧЕСТВО\tПУТЬ")
			fmt.Fprintln(w, "---\t------\t--------\t----")

			for _, p := range presets {
				outFormat := "-"
				quality := "-"
				if p.Config != nil && p.Config.Output != nil {
					if p.Config.Output.Format != "" {
						outFormat = p.Config.Output.Format
					}
					if p.Config.Output.Quality > 0 {
						quality = fmt.Sprintf("%d", p.Config.Output.Quality)
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, outFormat, quality, p.Path)
			}
			return w.Flush()
		},
	}
}

// newPresetsDeleteCmd создаёт команду для удаления пресета.
func newPresetsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Удалить пресет",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			store, err := config.DefaultPresetStore()
			if err != nil {
				return err
			}
			if !store.Exists(name) {
				return fmt.Errorf("пресет '%s' не найден", name)
			}
			if err := store.Delete(name); err != nil {
				return fmt.Errorf("ошибка удаления пресета: %w", err)
			}

			fmt.Fprintf(a.out, "✅ Пресет '%s' удалён\n", name)
			return nil
		},
	}
}

// newPresetsShowCmd создаёт команду для отображения пресета.
func newPresetsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Показать содержимое пресета",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			store, err := config.DefaultPresetStore()
			if err != nil {
				return err
			}
			fc, path, err := store.Load(name)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "📦 Пресет: %s\n", name)
			fmt.Fprintf(a.out, "📁 Путь: %s\n\n", path)

			if o := fc.Output; o != nil {
				fmt.Fprintln(a.out, "Output:")
				if o.Dir != "" {
					fmt.Fprintf(a.out, "  dir: %s\n", o.Dir)
				}
				if o.Format != "" {
					fmt.Fprintf(a.out, "  format: %s\n", o.Format)
				}
				if o.Quality > 0 {
					fmt.Fprintf(a.out, "  quality: %d\n", o.Quality)
				}
				if o.Overwrite != "" {
					fmt.Fprintf(a.out, "  overwrite: %s\n", o.Overwrite)
				}
			}

			if c := fc.Compress; c != nil && c.Scale > 0 {
				fmt.Fprintln(a.out, "Compress:")
				fmt.Fprintf(a.out, "  scale: %d\n", c.Scale)
			}

			if r := fc.Resize; r != nil {
				fmt.Fprintln(a.out, "Resize:")
				if r.Mode != "" {
					fmt.Fprintf(a.out, "  mode: %s\n", r.Mode)
				}
				if r.Width > 0 || r.Height > 0 {
					fmt.Fprintf(a.out, "  size: %dx%d\n", r.Width, r.Height)
				}
			}

			if s := fc.Stitch; s != nil {
				fmt.Fprintln(a.out, "Stitch:")
				if s.Align != "" {
					fmt.Fprintf(a.out, "  align: %s\n", s.Align)
				}
				if s.Vertical != nil {
					fmt.Fprintf(a.out, "  vertical: %t\n", *s.Vertical)
				}
				if s.Scale > 0 {
					fmt.Fprintf(a.out, "  scale: %d\n", s.Scale)
				}
			}

			if s := fc.Split; s != nil && (s.X > 0 || s.Y > 0) {
				fmt.Fprintln(a.out, "Split:")
				fmt.Fprintf(a.out, "  grid: %dx%d\n", s.X, s.Y)
			}

			return nil
		},
	}
}

/*
Возможные расширения:
- Добавить команду 'presets export' для экспорта в файл
- Добавить команду 'presets copy' для копирования пресета
*/
