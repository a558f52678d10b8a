// Package storage содержит логику работы с SQLite базой данных истории
// конвертаций.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Storage предоставляет методы для работы с историей конвертаций.
type Storage struct {
	db *sql.DB
}

// New создаёт новое подключение к SQLite и выполняет миграции.
func New(dbPath string) (*Storage, error) {
	// Создаём директорию для БД, если не существует
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию для БД: %w", err)
	}

	// Открываем/создаём БД с параметрами для concurrent доступа
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть БД: %w", err)
	}

	// Проверяем подключение
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}

	// Настраиваем пул соединений
	db.SetMaxOpenConns(1) // SQLite не поддерживает concurrent writes
	db.SetMaxIdleConns(1)

	s := &Storage{db: db}

	// Выполняем миграции
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("не удалось выполнить миграции: %w", err)
	}

	return s, nil
}

// DefaultPath возвращает путь к БД истории по умолчанию:
// ~/.imgpilot/history.db.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".imgpilot", "history.db")
	}
	return filepath.Join(home, ".imgpilot", "history.db")
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

// RecordStart создаёт запись о начатой конвертации и возвращает её ID.
// srcHash может быть пустым - тогда в БД пишется NULL.
func (s *Storage) RecordStart(key FileKey, srcHash, format string, quality int, paramsHash string) (int64, error) {
	now := time.Now().Unix()

	var hash *string
	if srcHash != "" {
		hash = &srcHash
	}

	result, err := s.db.Exec(`
		INSERT INTO conversions (src_path, src_size, src_mtime, src_hash,
		                         format, quality, params_hash, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key.Path, key.Size, key.Mtime, hash,
		format, quality, paramsHash, StatusInProgress, now,
	)
	if err != nil {
		return 0, fmt.Errorf("не удалось создать запись истории: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("не удалось получить ID записи: %w", err)
	}
	return id, nil
}

// FinalizeOK помечает запись успешно завершённой и сохраняет статистику.
func (s *Storage) FinalizeOK(id int64, dstPath string, originalBytes, resultBytes int64, savedPercent float64, duration time.Duration) error {
	now := time.Now().Unix()
	_, err := s.db.Exec(`
		UPDATE conversions
		SET status = ?, dst_path = ?, original_bytes = ?, result_bytes = ?,
		    saved_percent = ?, duration_ms = ?, finished_at = ?
		WHERE id = ?`,
		StatusOK, dstPath, originalBytes, resultBytes,
		savedPercent, duration.Milliseconds(), now, id,
	)
	if err != nil {
		return fmt.Errorf("не удалось обновить запись истории: %w", err)
	}
	return nil
}

// FinalizeFailed помечает запись завершённой с ошибкой.
func (s *Storage) FinalizeFailed(id int64, errMsg string) error {
	now := time.Now().Unix()
	_, err := s.db.Exec(
		"UPDATE conversions SET status = ?, error = ?, finished_at = ? WHERE id = ?",
		StatusFailed, errMsg, now, id,
	)
	if err != nil {
		return fmt.Errorf("не удалось обновить запись истории: %w", err)
	}
	return nil
}

// WasConverted проверяет, была ли эта версия файла уже успешно
// сконвертирована с теми же параметрами. Возвращает путь к прежнему
// результату.
func (s *Storage) WasConverted(key FileKey, format, paramsHash string) (string, bool, error) {
	var dstPath *string
	err := s.db.QueryRow(`
		SELECT dst_path FROM conversions
		WHERE src_path = ? AND src_size = ? AND src_mtime = ?
		  AND format = ? AND params_hash = ? AND status = 'ok'
		ORDER BY id DESC LIMIT 1`,
		key.Path, key.Size, key.Mtime, format, paramsHash,
	).Scan(&dstPath)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("не удалось проверить историю: %w", err)
	}
	if dstPath == nil {
		return "", true, nil
	}
	return *dstPath, true, nil
}

// FindByHash ищет успешную конвертацию файла с тем же содержимым и
// параметрами (дедупликация при переименованных копиях).
func (s *Storage) FindByHash(srcHash, format, paramsHash string) (string, bool, error) {
	if srcHash == "" {
		return "", false, nil
	}

	var dstPath *string
	err := s.db.QueryRow(`
		SELECT dst_path FROM conversions
		WHERE src_hash = ? AND format = ? AND params_hash = ? AND status = 'ok'
		ORDER BY id DESC LIMIT 1`,
		srcHash, format, paramsHash,
	).Scan(&dstPath)

	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("не удалось проверить историю: %w", err)
	}
	if dstPath == nil {
		return "", true, nil
	}
	return *dstPath, true, nil
}

// GetTotals возвращает агрегаты истории.
func (s *Storage) GetTotals() (Totals, error) {
	var t Totals

	if err := s.db.QueryRow("SELECT COUNT(*) FROM conversions").Scan(&t.Total); err != nil {
		return t, fmt.Errorf("не удалось прочитать историю: %w", err)
	}
	_ = s.db.QueryRow("SELECT COUNT(*) FROM conversions WHERE status = ?", StatusOK).Scan(&t.OK)
	_ = s.db.QueryRow("SELECT COUNT(*) FROM conversions WHERE status = ?", StatusFailed).Scan(&t.Failed)
	_ = s.db.QueryRow("SELECT COUNT(*) FROM conversions WHERE status = ?", StatusInProgress).Scan(&t.InProgress)
	_ = s.db.QueryRow(`
		SELECT COALESCE(SUM(original_bytes), 0), COALESCE(SUM(result_bytes), 0)
		FROM conversions WHERE status = ?`, StatusOK,
	).Scan(&t.OriginalBytes, &t.ResultBytes)

	return t, nil
}

// Recent возвращает последние записи истории, новые первыми.
func (s *Storage) Recent(limit int) ([]Conversion, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, src_path, src_size, src_mtime, src_hash, dst_path,
		       format, quality, params_hash, original_bytes, result_bytes,
		       saved_percent, status, error, duration_ms, created_at, finished_at
		FROM conversions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать историю: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Conversion
	for rows.Next() {
		var c Conversion
		if err := rows.Scan(
			&c.ID, &c.SrcPath, &c.SrcSize, &c.SrcMtime, &c.SrcHash, &c.DstPath,
			&c.Format, &c.Quality, &c.ParamsHash, &c.OriginalBytes, &c.ResultBytes,
			&c.SavedPercent, &c.Status, &c.Error, &c.DurationMs, &c.CreatedAt, &c.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("не удалось прочитать запись истории: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CleanupInProgress переводит записи, оставшиеся в in_progress после
// аварийного завершения, в failed. Вызывается при старте.
func (s *Storage) CleanupInProgress() (int64, error) {
	result, err := s.db.Exec(
		"UPDATE conversions SET status = ?, error = ? WHERE status = ?",
		StatusFailed, "прервано при предыдущем запуске", StatusInProgress,
	)
	if err != nil {
		return 0, fmt.Errorf("не удалось очистить in_progress: %w", err)
	}
	return result.RowsAffected()
}

/*
Возможные расширения:
- Добавить метод для экспорта статистики в JSON
- Добавить очистку старых записей по возрасту
- Добавить поддержку транзакций для batch-операций
*/
