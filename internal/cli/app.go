package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/artemshloyda/imagetoolbox/internal/config"
	"github.com/artemshloyda/imagetoolbox/internal/job"
	"github.com/artemshloyda/imagetoolbox/internal/progress"
	"github.com/artemshloyda/imagetoolbox/internal/scanner"
	"github.com/artemshloyda/imagetoolbox/internal/storage"
)

// app хранит общее состояние команд: конфигурацию, логгер и ввод-вывод.
type app struct {
	cfg *config.Config
	log zerolog.Logger
	fs  afero.Fs

	out    io.Writer
	errOut io.Writer

	prompt *prompter
}

func newApp() *app {
	return &app{
		cfg: config.DefaultConfig(),
		log: zerolog.Nop(),
		fs:  afero.NewOsFs(),
	}
}

// init вызывается после разбора флагов и слияния конфигурации.
func (a *app) init(cmd *cobra.Command, cfg *config.Config) error {
	a.cfg = cfg
	a.out = cmd.OutOrStdout()
	a.errOut = cmd.ErrOrStderr()
	a.log = newLogger(a.errOut, cfg.Verbose)
	a.prompt = newPrompter(cmd.InOrStdin(), a.out, cfg.Overwrite)
	return nil
}

// newLogger создаёт консольный логгер; в подробном режиме выводятся debug сообщения.
func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// jobOptions возвращает опции для фоновых задач.
func (a *app) jobOptions() job.Options {
	return job.Options{Fs: a.fs, Logger: &a.log}
}

// collect разворачивает аргументы командной строки в список изображений.
func (a *app) collect(args []string, recursive bool) ([]string, error) {
	s := scanner.New(a.fs, &a.log)
	s.Recursive = recursive

	files, err := s.Collect(args)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("не найдено изображений для обработки")
	}
	a.log.Debug().Int("files", len(files)).Msg("найдены изображения")
	return files, nil
}

// signalContext возвращает контекст, отменяемый по Ctrl+C.
func (a *app) signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(a.errOut, "\n⚠️  Получен сигнал прерывания, завершаем...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// openHistory открывает базу истории; ошибка открытия не прерывает обработку.
func (a *app) openHistory() *storage.Storage {
	if a.cfg.NoHistory {
		return nil
	}
	store, err := storage.New(a.cfg.DBPath)
	if err != nil {
		a.log.Warn().Err(err).Str("db", a.cfg.DBPath).Msg("история недоступна")
		return nil
	}
	return store
}

// runJob запускает задачу и обслуживает её события до завершения.
// Запрос на перезапись решается через prompter, ход задачи выводится в прогресс-бар.
func (a *app) runJob(ctx context.Context, j *job.Job, inputCount int, description string) ([]job.Result, error) {
	store := a.openHistory()
	if store != nil {
		defer store.Close()
	}

	var runID string
	if store != nil {
		id, err := store.StartRun(string(j.Operation()), a.cfg.OutputParams(), inputCount)
		if err != nil {
			a.log.Warn().Err(err).Msg("не удалось записать запуск в историю")
		}
		runID = id
	}

	bar := progress.New(progress.Options{
		Description: description,
		Disabled:    a.cfg.NoProgress,
		Writer:      a.errOut,
	})

	if err := j.Start(ctx); err != nil {
		if runID != "" {
			a.recordRun(store, runID, nil, err)
		}
		return nil, err
	}

	for ev := range j.Events() {
		switch ev.Kind {
		case job.EventProgress:
			bar.SetProgress(ev.Progress)
		case job.EventStatus:
			bar.SetStatus(ev.Message)
			a.log.Debug().Str("op", string(j.Operation())).Msg(ev.Message)
		case job.EventOverwriteRequest:
			bar.Clear()
			allowed := a.prompt.Ask(ev.Path)
			if err := j.ResolveOverwrite(allowed); err != nil {
				a.log.Warn().Err(err).Msg("ответ на запрос перезаписи не принят")
			}
		case job.EventFinished:
			bar.Finish()
		case job.EventError:
			bar.Clear()
		}
	}

	results, err := j.Wait()
	if runID != "" {
		a.recordRun(store, runID, results, err)
	}

	a.log.Debug().
		Str("op", string(j.Operation())).
		Dur("duration", bar.Duration()).
		Int("outputs", len(results)).
		Msg("задача завершена")

	return results, err
}

// recordRun сохраняет результаты задачи в историю.
func (a *app) recordRun(store *storage.Storage, runID string, results []job.Result, runErr error) {
	outputs := make([]storage.Output, 0, len(results))
	for _, r := range results {
		outputs = append(outputs, storage.Output{
			InputPath:     r.InputPath,
			OutputPath:    r.OutputPath,
			Width:         r.Width,
			Height:        r.Height,
			OriginalBytes: r.OriginalBytes,
			FileBytes:     r.FileBytes,
		})
	}
	if err := store.RecordOutputs(runID, outputs); err != nil {
		a.log.Warn().Err(err).Msg("не удалось сохранить результаты в историю")
	}

	var err error
	if runErr != nil {
		err = store.FinishRunFailed(runID, runErr.Error())
	} else {
		err = store.FinishRunOK(runID)
	}
	if err != nil {
		a.log.Warn().Err(err).Msg("не удалось завершить запись в истории")
	}
}

// prompter отвечает на запросы перезаписи по политике или спрашивая пользователя.
type prompter struct {
	in     *bufio.Reader
	out    io.Writer
	policy config.OverwritePolicy
}

func newPrompter(in io.Reader, out io.Writer, policy config.OverwritePolicy) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out, policy: policy}
}

// Ask возвращает true, если файл path можно перезаписать.
// Конец ввода считается отказом.
func (p *prompter) Ask(path string) bool {
	switch p.policy {
	case config.OverwriteAlways:
		return true
	case config.OverwriteNever:
		fmt.Fprintf(p.out, "⏭️  Пропущен существующий файл: %s\n", path)
		return false
	}

	fmt.Fprintf(p.out, "⚠️  Файл %s уже существует. Перезаписать? [y/N]: ", path)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(p.out)
		return false
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes", "д", "да":
		return true
	default:
		return false
	}
}

// formatBytes форматирует размер в человекочитаемом виде.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatTime форматирует время для таблиц истории.
func formatTime(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
