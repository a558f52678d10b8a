// Package imageio содержит форматы изображений, их распознавание
// и загрузку входных файлов с полной валидацией.
package imageio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat возвращается при неизвестном имени формата
// или при попытке конвертации в формат вне поддерживаемого набора.
var ErrUnsupportedFormat = errors.New("неподдерживаемый формат")

// ErrInvalidImage возвращается, когда входной файл не является
// корректным изображением (повреждён, усечён или пуст).
var ErrInvalidImage = errors.New("некорректное изображение")

// Format определяет выходной формат конвертации. Набор закрыт:
// новый формат добавляется только новой константой и ветками во всех
// switch по Format, default-ветки допустимы лишь в точках разбора
// пользовательского ввода. Нулевое значение не является форматом.
type Format int

const (
	// FormatWebP - WebP с сохранением альфа-канала.
	FormatWebP Format = iota + 1
	// FormatAVIF - AVIF, кодируется внешним avifenc.
	FormatAVIF
	// FormatPNG - PNG, всегда lossless, качество игнорируется.
	FormatPNG
	// FormatJPEG - JPEG, альфа-канал сводится на белый фон.
	FormatJPEG
	// FormatICO - многоразмерная иконка Windows (16/32/48/256).
	FormatICO
	// FormatSVG - векторная трассировка контуров в SVG.
	FormatSVG
)

// String возвращает каноническое имя формата.
func (f Format) String() string {
	switch f {
	case FormatWebP:
		return "webp"
	case FormatAVIF:
		return "avif"
	case FormatPNG:
		return "png"
	case FormatJPEG:
		return "jpeg"
	case FormatICO:
		return "ico"
	case FormatSVG:
		return "svg"
	}
	return "unknown"
}

// Ext возвращает расширение выходного файла для формата (с точкой).
func (f Format) Ext() string {
	switch f {
	case FormatWebP:
		return ".webp"
	case FormatAVIF:
		return ".avif"
	case FormatPNG:
		return ".png"
	case FormatJPEG:
		return ".jpg"
	case FormatICO:
		return ".ico"
	case FormatSVG:
		return ".svg"
	}
	return ""
}

// AllFormats возвращает все выходные форматы в каноническом порядке.
func AllFormats() []Format {
	return []Format{FormatWebP, FormatAVIF, FormatPNG, FormatJPEG, FormatICO, FormatSVG}
}

// ParseFormat разбирает имя формата из CLI или конфигурации.
// Принимает имена без учёта регистра, с точкой или без ("jpg" и "jpeg"
// равнозначны). Неизвестное имя - ошибка ErrUnsupportedFormat.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), ".")) {
	case "webp":
		return FormatWebP, nil
	case "avif":
		return FormatAVIF, nil
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "ico":
		return FormatICO, nil
	case "svg":
		return FormatSVG, nil
	default:
		return 0, fmt.Errorf("%w: %q (доступны: webp, avif, png, jpeg, ico, svg)", ErrUnsupportedFormat, name)
	}
}

// ParseFormats разбирает список имён форматов, убирая дубликаты
// и сохраняя порядок первого упоминания.
func ParseFormats(names []string) ([]Format, error) {
	var formats []Format
	seen := make(map[Format]bool)

	for _, name := range names {
		for _, part := range strings.Split(name, ",") {
			if strings.TrimSpace(part) == "" {
				continue
			}
			f, err := ParseFormat(part)
			if err != nil {
				return nil, err
			}
			if !seen[f] {
				seen[f] = true
				formats = append(formats, f)
			}
		}
	}

	if len(formats) == 0 {
		return nil, fmt.Errorf("%w: список форматов пуст", ErrUnsupportedFormat)
	}
	return formats, nil
}

// inputExtensions - расширения входных файлов (lowercase, без точки).
var inputExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"bmp":  true,
	"tiff": true,
	"tif":  true,
	"webp": true,
	"avif": true,
	"ico":  true,
}

// IsInputPath проверяет по расширению, принимается ли файл на вход.
func IsInputPath(path string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	return inputExtensions[ext]
}

// InputExtensions возвращает список входных расширений (без точки).
func InputExtensions() []string {
	return []string{"jpg", "jpeg", "png", "bmp", "tiff", "tif", "webp", "avif", "ico"}
}

// IsTempArtifact сообщает, что файл является промежуточным артефактом
// конвертации (незавершённая запись) и не должен попадать на вход.
func IsTempArtifact(path string) bool {
	base := filepath.Base(path)
	return strings.Contains(base, ".converting") ||
		strings.Contains(base, ".exiftmp") ||
		strings.HasPrefix(base, ".avifsrc-")
}

/*
Возможные расширения:
- Добавить HEIC/HEIF на вход при появлении стабильного декодера
- Добавить JPEG XL по мере поддержки в экосистеме
*/
