// Package storage содержит модели и логику работы с SQLite базой данных.
package storage

import "time"

// RunStatus определяет статус запуска.
type RunStatus string

const (
	// StatusInProgress - запуск выполняется.
	StatusInProgress RunStatus = "in_progress"
	// StatusOK - запуск успешно завершён.
	StatusOK RunStatus = "ok"
	// StatusFailed - запуск завершился с ошибкой.
	StatusFailed RunStatus = "failed"
)

// Run представляет один запуск операции.
type Run struct {
	// ID - uuid запуска.
	ID string

	// Operation - тег операции (resized, compressed, stitched, split, crop).
	Operation string

	// Params - JSON с параметрами выхода.
	Params string

	// InputCount - количество входных файлов.
	InputCount int

	// OutputCount - количество записанных файлов.
	OutputCount int

	// Status - статус запуска.
	Status RunStatus

	// Error - сообщение об ошибке (если есть).
	Error *string

	// StartedAt - время начала.
	StartedAt time.Time

	// FinishedAt - время завершения.
	FinishedAt *time.Time
}

// Output представляет один записанный файл.
type Output struct {
	// RunID - uuid запуска.
	RunID string

	// InputPath - исходный файл.
	InputPath string

	// OutputPath - записанный файл.
	OutputPath string

	// Width, Height - размеры результата.
	Width  int
	Height int

	// OriginalBytes - размер исходного файла (0, если не измерялся).
	OriginalBytes int64

	// FileBytes - размер записанного файла.
	FileBytes int64
}

// Stats содержит сводную статистику по истории.
type Stats struct {
	Runs       int64
	OK         int64
	Failed     int64
	InProgress int64

	// Outputs - всего записанных файлов.
	Outputs int64

	// BytesWritten - суммарный размер записанных файлов.
	BytesWritten int64

	// BytesSaved - суммарная экономия по файлам с известным исходным размером.
	BytesSaved int64
}
