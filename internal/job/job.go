// Package job содержит фоновые задачи пакетной обработки изображений:
// приведение к одному размеру, сжатие, склейку, разбиение сеткой и по областям.
//
// Задача запускается один раз через Start, сообщает о ходе работы событиями из Events
// и при совпадении выходного пути с существующим файлом ждёт ответа ResolveOverwrite.
package job

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

var (
	// ErrAlreadyStarted - задача уже запускалась; повторный запуск не поддерживается.
	ErrAlreadyStarted = errors.New("задача уже запущена")

	// ErrNoInputs - не передано ни одного входного файла.
	ErrNoInputs = errors.New("нет входных файлов")

	// ErrInvalidQuality - качество вне диапазона 1-100.
	ErrInvalidQuality = errors.New("качество должно быть от 1 до 100")

	// ErrInvalidScale - масштаб вне диапазона 1-100.
	ErrInvalidScale = errors.New("масштаб должен быть от 1 до 100")
)

// State - состояние задачи.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Operation - тег операции, встраиваемый в имена выходных файлов.
type Operation string

const (
	OpResize   Operation = "resized"
	OpCompress Operation = "compressed"
	OpStitch   Operation = "stitched"
	OpGrid     Operation = "split"
	OpRegion   Operation = "crop"
)

// TimestampLayout - формат метки времени в именах файлов (YYYYMMDDHHMMSS).
const TimestampLayout = "20060102150405"

// Options - общие зависимости задач.
type Options struct {
	// Fs - файловая система (по умолчанию ОС).
	Fs afero.Fs

	// Logger - логгер (по умолчанию отключён).
	Logger *zerolog.Logger

	// Now - источник времени для меток в именах файлов.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Logger == nil {
		nop := zerolog.Nop()
		o.Logger = &nop
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Result описывает один записанный файл.
type Result struct {
	// InputPath - исходный файл.
	InputPath string `json:"input"`

	// OutputPath - записанный файл.
	OutputPath string `json:"output"`

	// OutputFolder - подпапка для сетки и областей.
	OutputFolder string `json:"output_folder,omitempty"`

	// OriginalDimensions, NewDimensions - размеры "WxH" до и после (для resize).
	OriginalDimensions string `json:"original_dimensions,omitempty"`
	NewDimensions      string `json:"new_dimensions,omitempty"`

	// Width, Height - размеры записанного изображения.
	Width  int `json:"width"`
	Height int `json:"height"`

	// OriginalBytes - размер исходного файла (для compress).
	OriginalBytes int64 `json:"original_bytes,omitempty"`

	// FileBytes - размер записанного файла.
	FileBytes int64 `json:"file_bytes"`

	// Ratio - доля сокращения размера: 1 - new/original (для compress).
	Ratio float64 `json:"ratio,omitempty"`

	// Row, Col - позиция ячейки сетки, начиная с 1.
	Row int `json:"row,omitempty"`
	Col int `json:"col,omitempty"`

	// Region - номер области, начиная с 1.
	Region int `json:"region,omitempty"`

	// Label - человекочитаемая позиция ("строка 1, колонка 2", "область 3").
	Label string `json:"label,omitempty"`
}

// task - алгоритм конкретной операции.
type task interface {
	run(ctx context.Context, x *executor) error
}

// Job - одноразовая фоновая задача обработки.
type Job struct {
	op   Operation
	opts Options
	task task

	arb     *arbiter
	box     *mailbox
	started atomic.Bool
	done    chan struct{}

	mu         sync.Mutex
	state      State
	results    []Result
	outputPath string
	err        error
}

func newJob(op Operation, t task, opts Options) *Job {
	return &Job{
		op:    op,
		opts:  opts.withDefaults(),
		task:  t,
		arb:   newArbiter(),
		box:   newMailbox(),
		done:  make(chan struct{}),
		state: StateIdle,
	}
}

// Operation возвращает тег операции.
func (j *Job) Operation() Operation {
	return j.op
}

// Start запускает задачу в отдельной горутине.
// Контекст прерывает ожидание ответа на запрос перезаписи и проверяется между файлами.
func (j *Job) Start(ctx context.Context) error {
	if !j.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}
	j.setState(StateRunning)
	j.box.start()
	go j.run(ctx)
	return nil
}

// Events возвращает канал событий. Канал закрывается после Finished или Error.
// Канал нужно вычитывать до закрытия: запрос перезаписи приходит только через него,
// а горутина доставки живёт, пока в очереди есть события.
func (j *Job) Events() <-chan Event {
	return j.box.out
}

// ResolveOverwrite отвечает на текущий запрос перезаписи.
// Возвращает ErrNoPendingRequest, если задача ничего не ждёт.
func (j *Job) ResolveOverwrite(allowed bool) error {
	return j.arb.resolve(allowed)
}

// State возвращает текущее состояние.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Wait блокирует до завершения задачи и возвращает результаты или ошибку.
func (j *Job) Wait() ([]Result, error) {
	<-j.done
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Result(nil), j.results...), j.err
}

// OutputPath возвращает путь единственного результата (для склейки).
func (j *Job) OutputPath() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.outputPath
}

// Done закрывается по завершении задачи.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

func (j *Job) setState(s State) {
	j.mu.Lock()
	j.state = s
	j.mu.Unlock()
}

// run выполняет задачу и переводит её в конечное состояние.
func (j *Job) run(ctx context.Context) {
	x := newExecutor(j)
	start := time.Now()

	err := j.safeRun(ctx, x)

	j.mu.Lock()
	j.results = x.results
	j.outputPath = x.outputPath
	if err != nil {
		j.state = StateFailed
		j.err = err
	} else {
		j.state = StateCompleted
	}
	results := append([]Result(nil), j.results...)
	j.mu.Unlock()

	log := j.opts.Logger
	if err != nil {
		log.Error().Err(err).Str("op", string(j.op)).Msg("задача завершилась с ошибкой")
		j.box.send(Event{Kind: EventError, Err: err, Message: err.Error()})
	} else {
		log.Debug().Str("op", string(j.op)).
			Int("outputs", len(results)).
			Dur("duration", time.Since(start)).
			Msg("задача завершена")
		j.box.send(Event{Kind: EventFinished, Results: results, Path: x.outputPath})
	}

	close(j.done)
	j.box.close()
}

// safeRun превращает панику алгоритма в ошибку задачи.
func (j *Job) safeRun(ctx context.Context, x *executor) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("паника при обработке: %v", r)
		}
	}()
	return j.task.run(ctx, x)
}

func validQuality(q int) error {
	if q < 1 || q > 100 {
		return fmt.Errorf("%w, получено: %d", ErrInvalidQuality, q)
	}
	return nil
}

/*
Возможные расширения:
- Добавить отмену задачи с удалением частичных результатов
- Добавить параллельную обработку файлов внутри одной задачи
- Добавить троттлинг событий прогресса
*/
