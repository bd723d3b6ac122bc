// Package progress предоставляет прогресс-бар для отображения хода фоновой задачи.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Bar представляет прогресс-бар задачи в процентах (0-100).
type Bar struct {
	// bar - внутренний progressbar.
	bar *progressbar.ProgressBar

	// mu защищает доступ к bar.
	mu sync.Mutex

	// disabled - флаг отключения прогресс-бара.
	disabled bool

	// percent - последнее показанное значение.
	percent int

	// status - последнее описание шага.
	status string

	// startTime - время начала обработки.
	startTime time.Time

	// writer - куда выводить (по умолчанию os.Stderr).
	writer io.Writer
}

// Options содержит настройки для прогресс-бара.
type Options struct {
	// Description - начальное описание задачи.
	Description string

	// Disabled - отключить прогресс-бар (только текстовый вывод).
	Disabled bool

	// Writer - куда выводить (по умолчанию os.Stderr).
	Writer io.Writer
}

// New создаёт новый прогресс-бар.
func New(opts Options) *Bar {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	description := opts.Description
	if description == "" {
		description = "Обработка"
	}

	b := &Bar{
		disabled:  opts.Disabled,
		status:    description,
		startTime: time.Now(),
		writer:    writer,
	}

	if !opts.Disabled {
		b.bar = progressbar.NewOptions(
			100,
			progressbar.OptionSetWriter(writer),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]█[reset]",
				SaucerHead:    "[green]▓[reset]",
				SaucerPadding: "░",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(writer)
			}),
			progressbar.OptionSetPredictTime(false),
		)
	}

	return b
}

// SetProgress устанавливает процент выполнения; уменьшение игнорируется.
func (b *Bar) SetProgress(percent int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if percent > 100 {
		percent = 100
	}
	if percent <= b.percent {
		return
	}
	b.percent = percent

	if b.bar != nil {
		_ = b.bar.Set(percent)
	}
}

// SetStatus обновляет описание текущего шага.
func (b *Bar) SetStatus(status string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.status = status
	if b.bar != nil {
		b.bar.Describe(status)
	}
}

// Percent возвращает последнее значение прогресса.
func (b *Bar) Percent() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.percent
}

// Status возвращает последнее описание шага.
func (b *Bar) Status() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// Finish завершает прогресс-бар.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Finish()
	}
}

// Clear очищает прогресс-бар (для вывода сообщений).
func (b *Bar) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Clear()
	}
}

// Duration возвращает время с начала обработки.
func (b *Bar) Duration() time.Duration {
	return time.Since(b.startTime)
}

// IsDisabled возвращает true, если прогресс-бар отключён.
func (b *Bar) IsDisabled() bool {
	return b.disabled
}

// WriteMessage выводит сообщение, временно скрывая прогресс-бар.
func (b *Bar) WriteMessage(format string, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Clear()
	}

	fmt.Fprintf(b.writer, format, args...)

	if b.bar != nil {
		_ = b.bar.RenderBlank()
	}
}

/*
Возможные расширения:
- Добавить поддержку нескольких прогресс-баров (для параллельных задач)
- Добавить вывод в файл лога параллельно с прогресс-баром
*/
