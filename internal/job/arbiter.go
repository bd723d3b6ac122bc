package job

import (
	"context"
	"errors"
	"sync"
)

// ErrNoPendingRequest - ответ на перезапись без активного запроса.
var ErrNoPendingRequest = errors.New("нет активного запроса на перезапись")

// arbiter согласует перезапись существующего файла между фоновой задачей и
// управляющим кодом. Одновременно активен не более одного запроса.
type arbiter struct {
	mu       sync.Mutex
	awaiting bool

	// answers - одноместный канал для ответа.
	answers chan bool
}

func newArbiter() *arbiter {
	return &arbiter{answers: make(chan bool, 1)}
}

// request публикует запрос через emit и блокирует до ответа или отмены контекста.
// Таймаута нет: без ответа задача ждёт бесконечно.
func (a *arbiter) request(ctx context.Context, path string, emit func(Event)) (bool, error) {
	a.mu.Lock()
	a.awaiting = true
	a.mu.Unlock()

	emit(Event{Kind: EventOverwriteRequest, Path: path})

	select {
	case allowed := <-a.answers:
		return allowed, nil
	case <-ctx.Done():
		a.mu.Lock()
		a.awaiting = false
		a.mu.Unlock()
		return false, ctx.Err()
	}
}

// resolve передаёт ответ ожидающей задаче.
func (a *arbiter) resolve(allowed bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.awaiting {
		return ErrNoPendingRequest
	}
	a.awaiting = false
	a.answers <- allowed
	return nil
}

