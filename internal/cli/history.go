package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/artemshloyda/imagetoolbox/internal/config"
	"github.com/artemshloyda/imagetoolbox/internal/storage"
)

// openStore открывает базу истории для команд просмотра.
func (a *app) openStore() (*storage.Storage, error) {
	store, err := storage.New(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия БД: %w", err)
	}
	return store, nil
}

// newHistoryCmd создаёт команду history.
func newHistoryCmd(a *app) *cobra.Command {
	var (
		limit int
		runID string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Показать историю запусков",
		Long: `Показывает последние запуски из базы истории.

С флагом --run выводит файлы, созданные конкретным запуском.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if runID != "" {
				return a.printRunOutputs(store, runID)
			}

			runs, err := store.ListRuns(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(a.out, "История пуста.")
				return nil
			}

			fmt.Fprintf(a.out, "📜 Последние запуски (%d):\n\n", len(runs))

			w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tОПЕРАЦИЯ\tСТАТУС\tФАЙЛОВ\tНАЧАЛО")
			fmt.Fprintln(w, "--\t--------\t------\t------\t------")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d/%d\t%s\n",
					r.ID, r.Operation, statusLabel(r), r.OutputCount, r.InputCount, formatTime(r.StartedAt))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Количество запусков")
	cmd.Flags().StringVar(&runID, "run", "", "ID запуска для вывода файлов")

	return cmd
}

// printRunOutputs выводит файлы одного запуска.
func (a *app) printRunOutputs(store *storage.Storage, runID string) error {
	outputs, err := store.RunOutputs(runID)
	if err != nil {
		return err
	}
	if len(outputs) == 0 {
		fmt.Fprintf(a.out, "У запуска %s нет сохранённых файлов.\n", runID)
		return nil
	}

	fmt.Fprintf(a.out, "📁 Файлы запуска %s (%d):\n\n", runID, len(outputs))

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ИСХОДНИК\tРЕЗУЛЬТАТ\tРАЗМЕР\tБАЙТ")
	fmt.Fprintln(w, "--------\t---------\t------\t----")
	for _, o := range outputs {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%s\n", o.InputPath, o.OutputPath, o.Width, o.Height, formatBytes(o.FileBytes))
	}
	return w.Flush()
}

// statusLabel возвращает статус запуска с эмодзи.
func statusLabel(r storage.Run) string {
	switch r.Status {
	case storage.StatusOK:
		return "✅ ok"
	case storage.StatusFailed:
		return "❌ failed"
	default:
		return "⏳ " + string(r.Status)
	}
}

// newStatsCmd создаёт команду stats.
func newStatsCmd(a *app) *cobra.Command {
	var cleanup bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Показать статистику из базы данных",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if cleanup {
				n, err := store.CleanupInProgress()
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "🧹 Незавершённых запусков помечено как failed: %d\n\n", n)
			}

			st, err := store.GetStats()
			if err != nil {
				return err
			}

			fmt.Fprintf(a.out, "📊 Статистика базы данных:\n")
			fmt.Fprintf(a.out, "   Всего запусков: %d\n", st.Runs)
			fmt.Fprintf(a.out, "   Успешно: %d\n", st.OK)
			fmt.Fprintf(a.out, "   Ошибок: %d\n", st.Failed)
			fmt.Fprintf(a.out, "   В процессе: %d\n", st.InProgress)
			fmt.Fprintf(a.out, "   Создано файлов: %d\n", st.Outputs)
			fmt.Fprintf(a.out, "   Записано: %s\n", formatBytes(st.BytesWritten))
			fmt.Fprintf(a.out, "   Сэкономлено: %s\n", formatBytes(st.BytesSaved))

			return nil
		},
	}

	cmd.Flags().BoolVar(&cleanup, "cleanup", false, "Пометить незавершённые запуски как failed")

	return cmd
}

// newConfigCmd создаёт команду config.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Работа с файлом конфигурации",
		// config init не зависит от текущей конфигурации
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	}

	var path string
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Вывести пример файла конфигурации",
		Long: `Выводит пример файла конфигурации.

С флагом --write сохраняет его по указанному пути.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			example := config.GenerateExampleConfig()
			if path == "" {
				fmt.Fprint(cmd.OutOrStdout(), example)
				return nil
			}

			if err := os.WriteFile(path, []byte(example), 0644); err != nil {
				return fmt.Errorf("ошибка записи конфигурации: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Конфигурация сохранена: %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&path, "write", "", "Сохранить пример в файл")

	cmd.AddCommand(initCmd)
	return cmd
}
