// Package output содержит построение имён выходных файлов:
// санитизацию, разрешение коллизий и служебные суффиксы.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ErickHdzV/ImgPilot/internal/imageio"
)

// forbiddenChars - символы, недопустимые в именах файлов Windows,
// и разделители путей. Каждый заменяется на подчёркивание.
const forbiddenChars = `<>:"/\|?*`

// Sanitize приводит имя файла (без расширения) к безопасному виду:
// запрещённые символы заменяются на "_", пробелы и точки по краям
// отбрасываются. Пустой после очистки результат заменяется на "image".
func Sanitize(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(forbiddenChars, r) {
			b.WriteRune('_')
			continue
		}
		b.WriteRune(r)
	}

	clean := strings.Trim(b.String(), " .")
	if clean == "" {
		return "image"
	}
	return clean
}

// Resolve возвращает свободный путь в dir для имени base с расширением
// ext. При коллизии перебираются суффиксы _1, _2, ... до первого
// свободного. Состояние не хранится: занятость проверяется по файловой
// системе при каждом вызове.
func Resolve(dir, base, ext string) string {
	path := filepath.Join(dir, base+ext)
	if !exists(path) {
		return path
	}

	for i := 1; ; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, i, ext))
		if !exists(candidate) {
			return candidate
		}
	}
}

// BuildDstPath строит итоговый путь выходного файла для конвертации.
// customName заменяет имя исходника; при конвертации в несколько
// форматов к нему добавляется суффикс _<формат>, чтобы результаты
// разных форматов не забирали имена друг у друга.
func BuildDstPath(srcPath, dir string, format imageio.Format, customName string, multiFormat bool) string {
	base := customName
	if base == "" {
		base = strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	} else if multiFormat {
		base = base + "_" + format.String()
	}

	return Resolve(dir, Sanitize(base), format.Ext())
}

// NoBackgroundPath строит путь для результата удаления фона:
// суффикс _no_bg и всегда расширение .png (фон заменяется прозрачностью).
func NoBackgroundPath(srcPath, dir string) string {
	base := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	return Resolve(dir, Sanitize(base)+"_no_bg", ".png")
}

// EnsureDir создаёт директорию вместе с родителями.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("не удалось создать директорию %s: %w", dir, err)
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

/*
Возможные расширения:
- Шаблоны имён ({name}_{date}_{quality})
- Сохранение структуры поддиректорий при рекурсивном обходе
*/
