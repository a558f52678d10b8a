// Package storage содержит модели и логику работы с SQLite базой данных.
package storage

// Status определяет статус записи истории конвертации.
type Status string

const (
	// StatusInProgress - конвертация выполняется.
	StatusInProgress Status = "in_progress"
	// StatusOK - конвертация успешно завершена.
	StatusOK Status = "ok"
	// StatusFailed - конвертация завершилась с ошибкой.
	StatusFailed Status = "failed"
)

// Conversion представляет одну запись истории конвертации.
type Conversion struct {
	// ID - уникальный идентификатор записи.
	ID int64 `db:"id"`

	// SrcPath - абсолютный путь к исходному файлу.
	SrcPath string `db:"src_path"`

	// SrcSize - размер исходного файла в байтах.
	SrcSize int64 `db:"src_size"`

	// SrcMtime - время модификации исходного файла (unix timestamp).
	SrcMtime int64 `db:"src_mtime"`

	// SrcHash - sha256 содержимого исходника (nullable, заполняется
	// в режиме resume).
	SrcHash *string `db:"src_hash"`

	// DstPath - путь к выходному файлу (nullable до завершения).
	DstPath *string `db:"dst_path"`

	// Format - выходной формат (webp, avif, ...).
	Format string `db:"format"`

	// Quality - качество кодирования.
	Quality int `db:"quality"`

	// ParamsHash - sha256 канонической строки всех параметров
	// конвертации (качество, размеры, флаги).
	ParamsHash string `db:"params_hash"`

	// OriginalBytes - размер исходника (nullable до завершения).
	OriginalBytes *int64 `db:"original_bytes"`

	// ResultBytes - размер результата (nullable до завершения).
	ResultBytes *int64 `db:"result_bytes"`

	// SavedPercent - экономия в процентах (nullable до завершения).
	SavedPercent *float64 `db:"saved_percent"`

	// Status - статус записи.
	Status Status `db:"status"`

	// Error - сообщение об ошибке (если есть).
	Error *string `db:"error"`

	// DurationMs - длительность конвертации в миллисекундах.
	DurationMs *int64 `db:"duration_ms"`

	// CreatedAt - время начала (unix timestamp).
	CreatedAt int64 `db:"created_at"`

	// FinishedAt - время завершения (unix timestamp, nullable).
	FinishedAt *int64 `db:"finished_at"`
}

// FileKey идентифицирует версию исходного файла без чтения содержимого.
type FileKey struct {
	// Path - абсолютный путь к файлу.
	Path string

	// Size - размер файла в байтах.
	Size int64

	// Mtime - время модификации (unix timestamp).
	Mtime int64
}

// Totals содержит агрегаты истории для команды stats.
type Totals struct {
	// Total - всего записей.
	Total int64

	// OK - успешных конвертаций.
	OK int64

	// Failed - неудачных конвертаций.
	Failed int64

	// InProgress - записей, оставшихся в статусе in_progress.
	InProgress int64

	// OriginalBytes - суммарный размер исходников успешных конвертаций.
	OriginalBytes int64

	// ResultBytes - суммарный размер результатов успешных конвертаций.
	ResultBytes int64
}

// SavedPercent возвращает общий процент экономии по успешным
// конвертациям.
func (t Totals) SavedPercent() float64 {
	if t.OriginalBytes == 0 {
		return 0
	}
	return float64(t.OriginalBytes-t.ResultBytes) * 100 / float64(t.OriginalBytes)
}

/*
Возможные расширения:
- Добавить теги/категории для группировки записей
- Хранить параметры конвертации в явном JSON рядом с хэшем
*/
