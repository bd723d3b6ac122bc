package job

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/artemshloyda/imagetoolbox/internal/codec"
	"github.com/artemshloyda/imagetoolbox/internal/format"
)

// executor - общая часть всех задач: события, прогресс, имена файлов,
// согласование перезаписи и запись результатов.
type executor struct {
	job *Job
	fs  afero.Fs
	log *zerolog.Logger

	// timestamp фиксируется при старте и одинаков для всех файлов задачи.
	timestamp string

	lastProgress int
	results      []Result
	outputPath   string
}

func newExecutor(j *Job) *executor {
	return &executor{
		job:       j,
		fs:        j.opts.Fs,
		log:       j.opts.Logger,
		timestamp: j.opts.Now().Format(TimestampLayout),
	}
}

func (x *executor) emit(ev Event) {
	x.job.box.send(ev)
}

// progress публикует прогресс; значения ограничены 0-100 и не убывают.
func (x *executor) progress(p int) {
	if p > 100 {
		p = 100
	}
	if p < x.lastProgress {
		p = x.lastProgress
	}
	x.lastProgress = p
	x.emit(Event{Kind: EventProgress, Progress: p})
}

func (x *executor) status(msg string, args ...any) {
	x.emit(Event{Kind: EventStatus, Message: fmt.Sprintf(msg, args...)})
}

// outputDir возвращает dir или папку первого входного файла.
func (x *executor) outputDir(dir, firstInput string) string {
	if dir != "" {
		return dir
	}
	return filepath.Dir(firstInput)
}

// ensureDir создаёт выходную папку.
func (x *executor) ensureDir(dir string) error {
	if err := x.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("не удалось создать папку %s: %w", dir, err)
	}
	return nil
}

// checkCanceled возвращает ошибку контекста между шагами обработки.
func (x *executor) checkCanceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("обработка прервана: %w", err)
	}
	return nil
}

// baseName возвращает имя файла без папки и расширения.
func baseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// fileName собирает имя {base}_{tag}_{timestamp}[_{suffix...}]{ext}.
func (x *executor) fileName(base string, op Operation, ext string, suffix ...string) string {
	parts := append([]string{base, string(op), x.timestamp}, suffix...)
	return strings.Join(parts, "_") + ext
}

// write записывает изображение в path, запрашивая разрешение при существующем файле.
// Возвращает false без ошибки, если перезапись отклонена.
func (x *executor) write(ctx context.Context, path string, img image.Image, f format.Format, quality int) (bool, int64, error) {
	exists, err := codec.Exists(x.fs, path)
	if err != nil {
		return false, 0, fmt.Errorf("не удалось проверить %s: %w", path, err)
	}

	if exists {
		allowed, err := x.job.arb.request(ctx, path, x.emit)
		if err != nil {
			return false, 0, fmt.Errorf("ожидание ответа на перезапись %s: %w", path, err)
		}
		if !allowed {
			x.log.Debug().Str("path", path).Msg("перезапись отклонена, файл пропущен")
			return false, 0, nil
		}
	}

	size, err := codec.WriteFile(x.fs, path, img, f, quality)
	if err != nil {
		return false, 0, err
	}

	x.log.Debug().
		Str("path", path).
		Str("format", string(f)).
		Int64("bytes", size).
		Msg("файл записан")
	return true, size, nil
}

func (x *executor) addResult(r Result) {
	x.results = append(x.results, r)
}

// outputFormat выбирает итоговый формат и расширение для файла.
func outputFormat(original, requested format.Format) (format.Format, string) {
	f := format.ResolveOutputFormat(original, requested)
	return f, format.ExtensionFor(f)
}
