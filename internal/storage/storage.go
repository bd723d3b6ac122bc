// Package storage содержит логику работы с SQLite базой данных истории запусков.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Storage предоставляет методы для работы с историей запусков.
type Storage struct {
	db *sql.DB

	// now - источник времени.
	now func() time.Time
}

// New создаёт новое подключение к SQLite и выполняет миграции.
func New(dbPath string) (*Storage, error) {
	// Создаём директорию для БД, если не существует
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию для БД: %w", err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_foreign_keys=on", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть БД: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite не поддерживает concurrent writes
	db.SetMaxIdleConns(1)

	s := &Storage{db: db, now: time.Now}

	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("не удалось выполнить миграции: %w", err)
	}

	return s, nil
}

// migrate выполняет все SQL-миграции.
func (s *Storage) migrate() error {
	for i, m := range GetMigrations() {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("миграция %d: %w", i+1, err)
		}
	}
	return nil
}

// Close закрывает подключение к БД.
func (s *Storage) Close() error {
	return s.db.Close()
}

// StartRun регистрирует новый запуск и возвращает его uuid.
func (s *Storage) StartRun(operation, params string, inputCount int) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(
		`INSERT INTO runs (id, operation, params, input_count, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, operation, params, inputCount, StatusInProgress, s.now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("не удалось создать запуск: %w", err)
	}
	return id, nil
}

// RecordOutputs сохраняет записанные файлы запуска.
func (s *Storage) RecordOutputs(runID string, outputs []Output) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("не удалось начать транзакцию: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(
		`INSERT INTO outputs (run_id, input_path, output_path, width, height, original_bytes, file_bytes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("не удалось подготовить запрос: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, o := range outputs {
		if _, err := stmt.Exec(runID, o.InputPath, o.OutputPath, o.Width, o.Height, o.OriginalBytes, o.FileBytes); err != nil {
			return fmt.Errorf("не удалось сохранить %s: %w", o.OutputPath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("не удалось сохранить результаты: %w", err)
	}
	return nil
}

// FinishRunOK помечает запуск как успешно завершённый.
func (s *Storage) FinishRunOK(runID string) error {
	return s.finishRun(runID, StatusOK, nil)
}

// FinishRunFailed помечает запуск как завершённый с ошибкой.
func (s *Storage) FinishRunFailed(runID, errMsg string) error {
	return s.finishRun(runID, StatusFailed, &errMsg)
}

func (s *Storage) finishRun(runID string, status RunStatus, errMsg *string) error {
	res, err := s.db.Exec(
		"UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?",
		status, errMsg, s.now().Unix(), runID,
	)
	if err != nil {
		return fmt.Errorf("не удалось обновить статус запуска: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("запуск %s не найден", runID)
	}
	return nil
}

// ListRuns возвращает последние запуски, новые первыми.
func (s *Storage) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT r.id, r.operation, r.params, r.input_count, r.status, r.error, r.started_at, r.finished_at,
		       (SELECT COUNT(*) FROM outputs o WHERE o.run_id = r.id)
		FROM runs r
		ORDER BY r.started_at DESC, r.rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить историю: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var (
			r        Run
			started  int64
			finished sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.Operation, &r.Params, &r.InputCount, &r.Status, &r.Error,
			&started, &finished, &r.OutputCount); err != nil {
			return nil, fmt.Errorf("не удалось прочитать запуск: %w", err)
		}
		r.StartedAt = time.Unix(started, 0)
		if finished.Valid {
			t := time.Unix(finished.Int64, 0)
			r.FinishedAt = &t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunOutputs возвращает файлы, записанные запуском.
func (s *Storage) RunOutputs(runID string) ([]Output, error) {
	rows, err := s.db.Query(`
		SELECT run_id, input_path, output_path, width, height, original_bytes, file_bytes
		FROM outputs WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить результаты: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var outputs []Output
	for rows.Next() {
		var o Output
		if err := rows.Scan(&o.RunID, &o.InputPath, &o.OutputPath, &o.Width, &o.Height,
			&o.OriginalBytes, &o.FileBytes); err != nil {
			return nil, fmt.Errorf("не удалось прочитать результат: %w", err)
		}
		outputs = append(outputs, o)
	}
	return outputs, rows.Err()
}

// GetStats возвращает сводную статистику.
func (s *Storage) GetStats() (Stats, error) {
	var st Stats
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(status = ?), 0),
		       COALESCE(SUM(status = ?), 0),
		       COALESCE(SUM(status = ?), 0)
		FROM runs`, StatusOK, StatusFailed, StatusInProgress).
		Scan(&st.Runs, &st.OK, &st.Failed, &st.InProgress)
	if err != nil {
		return st, fmt.Errorf("не удалось получить статистику запусков: %w", err)
	}

	err = s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(file_bytes), 0),
		       COALESCE(SUM(CASE WHEN original_bytes > 0 THEN original_bytes - file_bytes ELSE 0 END), 0)
		FROM outputs`).
		Scan(&st.Outputs, &st.BytesWritten, &st.BytesSaved)
	if err != nil {
		return st, fmt.Errorf("не удалось получить статистику файлов: %w", err)
	}
	return st, nil
}

// CleanupInProgress сбрасывает запуски со статусом in_progress в failed.
// Вызывается при старте для очистки после аварийного завершения.
func (s *Storage) CleanupInProgress() (int64, error) {
	result, err := s.db.Exec(
		"UPDATE runs SET status = ?, error = ? WHERE status = ?",
		StatusFailed, "прервано при предыдущем запуске", StatusInProgress,
	)
	if err != nil {
		return 0, fmt.Errorf("не удалось очистить in_progress: %w", err)
	}
	return result.RowsAffected()
}

/*
Возможные расширения:
- Добавить экспорт истории в JSON
- Добавить очистку старых записей
*/
