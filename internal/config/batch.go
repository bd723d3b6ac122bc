// Package config содержит конфигурацию приложения.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// NamedPreset представляет сохранённый пользователем пресет конфигурации.
type NamedPreset struct {
	// Name - имя пресета.
	Name string
	// Path - путь к файлу пресета.
	Path string
	// Config - конфигурация пресета (nil, если файл не разобрался).
	Config *FileConfig
}

// PresetStore хранит именованные пресеты YAML файлами в одной директории.
type PresetStore struct {
	Dir string
}

// DefaultPresetStore возвращает хранилище в ~/.config/imagetoolbox/presets.
func DefaultPresetStore() (*PresetStore, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("не удалось получить домашнюю директорию: %w", err)
	}
	return &PresetStore{Dir: filepath.Join(homeDir, ".config", "imagetoolbox", "presets")}, nil
}

// Path возвращает путь к файлу пресета по имени.
func (s *PresetStore) Path(name string) (string, error) {
	safeName := sanitizePresetName(name)
	if safeName == "" {
		return "", fmt.Errorf("некорректное имя пресета: %s", name)
	}
	return filepath.Join(s.Dir, safeName+".yaml"), nil
}

// sanitizePresetName оставляет только буквы, цифры, дефисы и подчёркивания.
func sanitizePresetName(name string) string {
	var result strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Save сохраняет конфигурацию как именованный пресет.
func (s *PresetStore) Save(name string, cfg *Config) (string, error) {
	presetPath, err := s.Path(name)
	if err != nil {
		return "", err
	}

	if err := FromConfig(cfg).SaveToFile(presetPath); err != nil {
		return "", fmt.Errorf("не удалось сохранить пресет: %w", err)
	}
	return presetPath, nil
}

// Load загружает именованный пресет.
func (s *PresetStore) Load(name string) (*FileConfig, string, error) {
	presetPath, err := s.Path(name)
	if err != nil {
		return nil, "", err
	}

	fc, err := LoadFromFile(presetPath)
	if err != nil {
		return nil, "", fmt.Errorf("не удалось загрузить пресет '%s': %w", name, err)
	}
	if fc == nil {
		return nil, "", fmt.Errorf("пресет '%s' не найден", name)
	}
	return fc, presetPath, nil
}

// List возвращает все сохранённые пресеты, отсортированные по имени.
func (s *PresetStore) List() ([]NamedPreset, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return []NamedPreset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать директорию пресетов: %w", err)
	}

	presets := []NamedPreset{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		presetPath := filepath.Join(s.Dir, name)
		fc, _ := LoadFromFile(presetPath)

		presets = append(presets, NamedPreset{
			Name:   strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml"),
			Path:   presetPath,
			Config: fc,
		})
	}

	sort.Slice(presets, func(i, j int) bool {
		return presets[i].Name < presets[j].Name
	})
	return presets, nil
}

// Delete удаляет именованный пресет.
func (s *PresetStore) Delete(name string) error {
	presetPath, err := s.Path(name)
	if err != nil {
		return err
	}

	if err := os.Remove(presetPath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("пресет '%s' не найден", name)
		}
		return fmt.Errorf("не удалось удалить пресет: %w", err)
	}
	return nil
}

// Exists проверяет существование пресета.
func (s *PresetStore) Exists(name string) bool {
	presetPath, err := s.Path(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(presetPath)
	return err == nil
}

/*
Возможные расширения:
- Добавить описание к пресетам
- Добавить импорт/экспорт пресетов
*/
