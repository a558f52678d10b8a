// Package stats содержит статистику сжатия: по одному файлу и сводную.
package stats

import (
	"fmt"
	"os"
	"time"
)

// Stat содержит результат одной конвертации.
type Stat struct {
	// SrcPath - путь к исходному файлу.
	SrcPath string

	// DstPath - путь к выходному файлу.
	DstPath string

	// OriginalBytes - размер исходного файла в байтах.
	OriginalBytes int64

	// ResultBytes - размер выходного файла в байтах.
	ResultBytes int64

	// Duration - время конвертации.
	Duration time.Duration
}

// SavedBytes возвращает количество сэкономленных байт.
// Значение отрицательно, когда результат больше исходника.
func (s Stat) SavedBytes() int64 {
	return s.OriginalBytes - s.ResultBytes
}

// SavedPercent возвращает процент экономии от исходного размера.
// Для пустого исходника всегда 0, деления на ноль не происходит.
func (s Stat) SavedPercent() float64 {
	if s.OriginalBytes == 0 {
		return 0
	}
	return float64(s.SavedBytes()) / float64(s.OriginalBytes) * 100
}

// FromFiles вычисляет статистику сжатия по размерам двух файлов.
// Ничего не кэширует: размеры читаются заново при каждом вызове.
func FromFiles(srcPath, dstPath string) (Stat, error) {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return Stat{}, fmt.Errorf("не удалось прочитать размер %s: %w", srcPath, err)
	}
	dstInfo, err := os.Stat(dstPath)
	if err != nil {
		return Stat{}, fmt.Errorf("не удалось прочитать размер %s: %w", dstPath, err)
	}

	return Stat{
		SrcPath:       srcPath,
		DstPath:       dstPath,
		OriginalBytes: srcInfo.Size(),
		ResultBytes:   dstInfo.Size(),
	}, nil
}

// Summary содержит сводную статистику пакетной обработки.
// Размеры суммируются только по успешным конвертациям, поэтому общий
// процент экономии считается из сумм, а не усреднением процентов.
type Summary struct {
	// Processed - количество успешно сконвертированных файлов.
	Processed int64

	// Skipped - количество пропущенных файлов.
	Skipped int64

	// Failed - количество файлов с ошибками.
	Failed int64

	// Total - общее количество задач.
	Total int64

	// OriginalBytes - суммарный размер исходников успешных задач.
	OriginalBytes int64

	// ResultBytes - суммарный размер результатов успешных задач.
	ResultBytes int64

	// Duration - общее время пакета.
	Duration time.Duration
}

// Add учитывает одну успешную конвертацию.
func (s *Summary) Add(st Stat) {
	s.Processed++
	s.OriginalBytes += st.OriginalBytes
	s.ResultBytes += st.ResultBytes
}

// SavedBytes возвращает суммарную экономию в байтах.
func (s *Summary) SavedBytes() int64 {
	return s.OriginalBytes - s.ResultBytes
}

// SavedPercent возвращает общий процент экономии.
func (s *Summary) SavedPercent() float64 {
	if s.OriginalBytes == 0 {
		return 0
	}
	return float64(s.SavedBytes()) / float64(s.OriginalBytes) * 100
}

// FormatBytes форматирует байты в человекочитаемый формат.
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

/*
Возможные расширения:
- Разбивка сводки по выходным форматам
- Медианное и максимальное время конвертации
*/
