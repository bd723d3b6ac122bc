// Package watcher предоставляет функциональность слежения за директорией.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/artemshloyda/imagetoolbox/internal/scanner"
)

// Watcher следит за директорией и отправляет новые изображения в канал.
type Watcher struct {
	dir string
	log *zerolog.Logger

	// watcher - fsnotify watcher.
	watcher *fsnotify.Watcher

	// debounceTime - время ожидания перед обработкой файла.
	// Нужно для того, чтобы файл успел полностью записаться.
	debounceTime time.Duration

	// ignore отбрасывает пути, например собственные результаты обработки.
	ignore func(path string) bool

	// pending - файлы, ожидающие обработки (для debounce).
	pending map[string]time.Time
}

// New создаёт новый Watcher для директории dir.
func New(dir string, log *zerolog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("не удалось создать watcher: %w", err)
	}
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}

	return &Watcher{
		dir:          dir,
		log:          log,
		watcher:      w,
		debounceTime: 500 * time.Millisecond,
		ignore:       func(string) bool { return false },
		pending:      make(map[string]time.Time),
	}, nil
}

// SetDebounceTime устанавливает время debounce.
func (w *Watcher) SetDebounceTime(d time.Duration) {
	w.debounceTime = d
}

// SetIgnore задаёт фильтр путей, которые не нужно обрабатывать.
func (w *Watcher) SetIgnore(fn func(path string) bool) {
	w.ignore = fn
}

// Watch запускает слежение и возвращает канал путей к новым изображениям.
// Канал закрывается при отмене контекста.
func (w *Watcher) Watch(ctx context.Context) (<-chan string, error) {
	if err := w.addRecursive(w.dir); err != nil {
		return nil, err
	}

	files := make(chan string, 100)
	go w.loop(ctx, files)
	return files, nil
}

// addRecursive добавляет директорию и все поддиректории в watcher.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir && strings.HasPrefix(info.Name(), ".") {
				return filepath.SkipDir
			}
			if err := w.watcher.Add(path); err != nil {
				return fmt.Errorf("не удалось добавить директорию %s: %w", path, err)
			}
		}
		return nil
	})
}

// loop обрабатывает события fsnotify и отправляет файлы после debounce.
func (w *Watcher) loop(ctx context.Context, files chan<- string) {
	defer close(files)
	defer func() { _ = w.watcher.Close() }()

	ticker := time.NewTicker(max(w.debounceTime/5, 10*time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("ошибка watcher")

		case <-ticker.C:
			for _, path := range w.ready(time.Now()) {
				select {
				case files <- path:
				case <-ctx.Done():
					return
				}
			}
		}
	}
}

// handle учитывает событие создания или записи файла.
func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		return
	}

	if info.IsDir() {
		// Новая директория - добавляем в watcher
		if event.Op&fsnotify.Create != 0 {
			_ = w.watcher.Add(event.Name)
		}
		return
	}

	name := info.Name()
	if strings.HasPrefix(name, ".") || strings.Contains(name, ".converting.") {
		return
	}
	if !scanner.IsSupported(event.Name) || w.ignore(event.Name) {
		return
	}

	w.pending[event.Name] = time.Now()
}

// ready возвращает файлы, не менявшиеся дольше debounceTime, отсортированные по пути.
func (w *Watcher) ready(now time.Time) []string {
	var paths []string
	for path, addedAt := range w.pending {
		if now.Sub(addedAt) < w.debounceTime {
			continue
		}
		delete(w.pending, path)
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// Close закрывает watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

/*
Возможные расширения:
- Добавить фильтрацию по паттерну (glob)
- Добавить обработку переименования файлов
*/
