// Package metadata содержит извлечение EXIF из исходников и перенос
// его в выходные файлы.
//
// Перенос метаданных всегда best-effort: конвертация не должна
// падать из-за повреждённого или отсутствующего EXIF, поэтому
// вызывающая сторона трактует ошибки этого пакета как предупреждения.
package metadata

import (
	"errors"
	"fmt"
	"os"

	exif "github.com/dsoprea/go-exif/v3"
)

// Tag - одна запись EXIF для отчётов.
type Tag struct {
	// IfdPath - путь IFD записи (например, "IFD/Exif").
	IfdPath string

	// Name - имя тега.
	Name string

	// Value - отформатированное значение.
	Value string
}

// Extract возвращает сырой блок EXIF (структуру TIFF) из файла.
// Отсутствие метаданных не считается ошибкой: возвращается (nil, nil).
func Extract(path string) ([]byte, error) {
	rawExif, err := exif.SearchFileAndExtractExif(path)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return nil, nil
		}
		return nil, fmt.Errorf("не удалось извлечь EXIF из %s: %w", path, err)
	}
	return rawExif, nil
}

// Inspect возвращает плоский список тегов EXIF файла.
func Inspect(path string) ([]Tag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть файл: %w", err)
	}
	defer f.Close()

	entries, _, err := exif.GetFlatExifDataUniversalSearchWithReadSeeker(f, nil, true)
	if err != nil {
		if errors.Is(err, exif.ErrNoExif) {
			return nil, nil
		}
		return nil, fmt.Errorf("не удалось разобрать EXIF: %w", err)
	}

	tags := make([]Tag, 0, len(entries))
	for _, entry := range entries {
		tags = append(tags, Tag{
			IfdPath: entry.IfdPath,
			Name:    entry.TagName,
			Value:   entry.FormattedFirst,
		})
	}
	return tags, nil
}

/*
Возможные расширения:
- Перенос XMP и ICC-профилей
- Коррекция тега Orientation после изменения размеров
*/
