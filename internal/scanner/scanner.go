// Package scanner отвечает за сбор входных изображений из аргументов командной строки.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/artemshloyda/imagetoolbox/internal/format"
)

// Scanner раскрывает файлы и директории в упорядоченный список изображений.
type Scanner struct {
	fs  afero.Fs
	log *zerolog.Logger

	// Recursive - обходить поддиректории.
	Recursive bool
}

// New создаёт новый Scanner.
func New(fs afero.Fs, log *zerolog.Logger) *Scanner {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &Scanner{fs: fs, log: log}
}

// IsSupported проверяет расширение файла.
func IsSupported(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	for _, e := range format.SupportedExtensions() {
		if e == ext {
			return true
		}
	}
	return false
}

// Collect возвращает изображения в порядке аргументов. Явно указанные файлы
// сохраняют свою позицию, содержимое директорий сортируется по пути.
// Повторяющиеся пути возвращаются один раз.
func (s *Scanner) Collect(args []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, arg := range args {
		info, err := s.fs.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("не удалось открыть %s: %w", arg, err)
		}

		if !info.IsDir() {
			if !IsSupported(arg) {
				return nil, fmt.Errorf("неподдерживаемый формат файла: %s", arg)
			}
			add(arg)
			continue
		}

		found, err := s.scanDir(arg)
		if err != nil {
			return nil, err
		}
		for _, f := range found {
			add(f)
		}
	}

	return files, nil
}

func (s *Scanner) scanDir(root string) ([]string, error) {
	var found []string

	err := afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			// Логируем ошибку, но продолжаем
			s.log.Warn().Err(err).Str("path", path).Msg("не удалось прочитать")
			return nil
		}

		name := info.Name()
		if info.IsDir() {
			if path == root {
				return nil
			}
			// Пропускаем скрытые директории
			if strings.HasPrefix(name, ".") || !s.Recursive {
				return filepath.SkipDir
			}
			return nil
		}

		// Пропускаем macOS metadata файлы (._*) и временные файлы записи
		if strings.HasPrefix(name, "._") || strings.Contains(name, ".converting.") {
			return nil
		}
		if IsSupported(path) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка обхода %s: %w", root, err)
	}

	sort.Strings(found)
	return found, nil
}

/*
Возможные расширения:
- Добавить поддержку glob-паттернов для фильтрации
- Добавить сортировку по дате и размеру
*/
