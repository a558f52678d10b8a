// Package storage содержит миграции SQLite базы данных.
package storage

// migrations содержит SQL-миграции в порядке выполнения.
var migrations = []string{
	// Миграция 1: Таблица истории конвертаций
	`CREATE TABLE IF NOT EXISTS conversions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		src_path TEXT NOT NULL,
		src_size INTEGER NOT NULL,
		src_mtime INTEGER NOT NULL,
		src_hash TEXT,
		dst_path TEXT,
		format TEXT NOT NULL,
		quality INTEGER NOT NULL,
		params_hash TEXT NOT NULL,
		original_bytes INTEGER,
		result_bytes INTEGER,
		saved_percent REAL,
		status TEXT NOT NULL,
		error TEXT,
		duration_ms INTEGER,
		created_at INTEGER NOT NULL,
		finished_at INTEGER
	);`,

	// Миграция 2: Индекс для проверки "уже сконвертирован" в режиме resume
	`CREATE INDEX IF NOT EXISTS ix_conversions_src
	ON conversions (src_path, src_size, src_mtime, format, params_hash);`,

	// Миграция 3: Индекс для быстрого поиска по статусу
	`CREATE INDEX IF NOT EXISTS ix_conversions_status ON conversions (status);`,

	// Миграция 4: Индекс для дедупликации по содержимому
	`CREATE INDEX IF NOT EXISTS ix_conversions_hash
	ON conversions (src_hash, format, params_hash)
	WHERE src_hash IS NOT NULL;`,

	// Миграция 5: Таблица метаданных для версионирования схемы
	`CREATE TABLE IF NOT EXISTS schema_info (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`,

	// Миграция 6: Запись версии схемы
	`INSERT OR REPLACE INTO schema_info (key, value) VALUES ('version', '1');`,
}

// GetMigrations возвращает список SQL-миграций.
func GetMigrations() []string {
	return migrations
}

/*
Возможные расширения:
- Добавить поддержку отката миграций (down migrations)
- Добавить таблицу ошибок отдельно от истории
*/
