// Package storage содержит миграции SQLite базы данных.
package storage

// migrations содержит SQL-миграции в порядке выполнения.
var migrations = []string{
	// Миграция 1: таблица запусков
	`CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		operation TEXT NOT NULL,
		params TEXT NOT NULL,
		input_count INTEGER NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		started_at INTEGER NOT NULL,
		finished_at INTEGER
	);`,

	// Миграция 2: таблица записанных файлов
	`CREATE TABLE IF NOT EXISTS outputs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		input_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		original_bytes INTEGER NOT NULL DEFAULT 0,
		file_bytes INTEGER NOT NULL
	);`,

	// Миграция 3: индексы
	`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);`,
	`CREATE INDEX IF NOT EXISTS idx_outputs_run ON outputs(run_id);`,
}

// GetMigrations возвращает список миграций.
func GetMigrations() []string {
	return migrations
}
