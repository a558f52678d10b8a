// Package config содержит конфигурацию приложения.
package config

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/ErickHdzV/ImgPilot/internal/imageio"
	"github.com/ErickHdzV/ImgPilot/internal/resize"
	"github.com/ErickHdzV/ImgPilot/internal/storage"
)

// Config содержит все настройки конвертации.
type Config struct {
	// Inputs - входные файлы и директории.
	Inputs []string

	// OutputDir - директория результатов ("" = рядом с исходником).
	OutputDir string

	// Formats - целевые форматы.
	Formats []imageio.Format

	// Quality - качество для lossy форматов (0-100).
	Quality int

	// ResizeWidth - целевая ширина (0 = не задана).
	ResizeWidth int

	// ResizeHeight - целевая высота (0 = не задана).
	ResizeHeight int

	// KeepAspect - сохранять пропорции при изменении размера.
	KeepAspect bool

	// ResizeFilter - фильтр ресемплинга (lanczos, bicubic, bilinear, nearest).
	ResizeFilter string

	// CustomName - имя результата вместо имени исходника.
	CustomName string

	// KeepMetadata - переносить EXIF исходника в результат.
	KeepMetadata bool

	// RemoveBackground - удалять фон перед конвертацией.
	RemoveBackground bool

	// Workers - количество параллельных воркеров.
	Workers int

	// Recursive - обходить директории рекурсивно.
	Recursive bool

	// DryRun - показать план без конвертации.
	DryRun bool

	// Verbose - подробный вывод.
	Verbose bool

	// NoProgress - отключить прогресс-бар.
	NoProgress bool

	// TargetSize - целевой размер файла ("500K", "2M"; "" = выключено).
	TargetSize string

	// SVGMaxPaths - предел контуров при трассировке SVG (0 = по умолчанию).
	SVGMaxPaths int

	// HistoryEnabled - вести историю конвертаций в SQLite.
	HistoryEnabled bool

	// DBPath - путь к БД истории ("" = ~/.imgpilot/history.db).
	DBPath string

	// Resume - пропускать файлы, уже сконвертированные по истории.
	Resume bool

	// CacheEnabled - кэшировать результаты конвертации.
	CacheEnabled bool

	// CacheDir - директория кэша ("" = ~/.imgpilot/cache).
	CacheDir string

	// MaxMemoryMB - лимит памяти пула в мегабайтах (0 = без лимита).
	MaxMemoryMB int

	// AvifencPath - путь к avifenc (опционально).
	AvifencPath string

	// RembgPath - путь к rembg (опционально).
	RembgPath string

	// Preset - встроенный или именованный пресет.
	Preset string
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() *Config {
	return &Config{
		Formats:        []imageio.Format{imageio.FormatWebP},
		Quality:        80,
		KeepAspect:     true,
		ResizeFilter:   "lanczos",
		Workers:        runtime.NumCPU(),
		HistoryEnabled: true,
	}
}

// Validate проверяет корректность конфигурации.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return fmt.Errorf("не указаны входные файлы или директории")
	}
	if len(c.Formats) == 0 {
		return fmt.Errorf("не указан выходной формат (--format)")
	}
	if c.Quality < 0 || c.Quality > 100 {
		return fmt.Errorf("%w: качество должно быть от 0 до 100, получено: %d",
			resize.ErrInvalidOptions, c.Quality)
	}
	if c.Workers < 1 {
		return fmt.Errorf("количество воркеров должно быть >= 1, получено: %d", c.Workers)
	}
	if c.ResizeWidth < 0 || c.ResizeHeight < 0 {
		return fmt.Errorf("%w: размеры должны быть неотрицательными, получено: %dx%d",
			resize.ErrInvalidOptions, c.ResizeWidth, c.ResizeHeight)
	}
	if c.MaxMemoryMB < 0 {
		return fmt.Errorf("лимит памяти должен быть неотрицательным, получено: %d", c.MaxMemoryMB)
	}

	// Устанавливаем путь к БД по умолчанию
	if c.HistoryEnabled && c.DBPath == "" {
		c.DBPath = storage.DefaultPath()
	}

	return nil
}

// ResizeOptions строит параметры изменения размера из конфигурации.
func (c *Config) ResizeOptions() *resize.Options {
	return &resize.Options{
		Width:      c.ResizeWidth,
		Height:     c.ResizeHeight,
		KeepAspect: c.KeepAspect,
		Filter:     c.ResizeFilter,
	}
}

// Params возвращает параметры конвертации в виде канонического JSON.
// Формат в параметры не входит: история и кэш хранят его отдельно.
func (c *Config) Params() string {
	params := map[string]interface{}{
		"quality":       c.Quality,
		"width":         c.ResizeWidth,
		"height":        c.ResizeHeight,
		"keep_aspect":   c.KeepAspect,
		"filter":        c.ResizeFilter,
		"keep_metadata": c.KeepMetadata,
		"remove_bg":     c.RemoveBackground,
		"target_size":   c.TargetSize,
	}
	b, _ := json.Marshal(params)
	return string(b)
}

// ParamsHash возвращает sha256 хэш параметров конвертации.
func (c *Config) ParamsHash() string {
	h := sha256.Sum256([]byte(c.Params()))
	return hex.EncodeToString(h[:])
}

/*
Возможные расширения:
- Добавить interlace/progressive для JPEG
- Добавить водяные знаки
- Добавить сортировку файлов перед обработкой
*/
