// Package cache реализует кэш результатов конвертации, ключированный
// содержимым исходника и параметрами. Повторная конвертация того же
// файла с теми же параметрами берёт результат из кэша без кодирования.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Cache управляет кэшированными результатами конвертации.
type Cache struct {
	// dir - директория для кэша.
	dir string

	// enabled - включён ли кэш.
	enabled bool
}

// New создаёт новый Cache. При dir == "" используется DefaultDir.
func New(dir string, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	if dir == "" {
		dir = DefaultDir()
	}

	// Создаём директорию кэша
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию кэша: %w", err)
	}

	return &Cache{
		dir:     dir,
		enabled: true,
	}, nil
}

// DefaultDir возвращает директорию кэша по умолчанию:
// ~/.imgpilot/cache.
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".imgpilot", "cache")
	}
	return filepath.Join(home, ".imgpilot", "cache")
}

// IsEnabled возвращает true если кэш включён.
func (c *Cache) IsEnabled() bool {
	return c.enabled
}

// Key генерирует ключ кэша из содержимого исходника и хэша параметров
// конвертации. Одинаковые файлы под разными именами делят запись.
func (c *Cache) Key(srcPath, paramsHash string) (string, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("не удалось открыть файл для хэширования: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("не удалось прочитать файл для хэширования: %w", err)
	}
	h.Write([]byte(paramsHash))

	return hex.EncodeToString(h.Sum(nil))[:32], nil
}

// Get возвращает путь к кэшированному результату для ключа и
// расширения. Второе значение false, если записи нет.
func (c *Cache) Get(key, ext string) (string, bool) {
	if !c.enabled {
		return "", false
	}

	cachePath := filepath.Join(c.dir, key+ext)
	if _, err := os.Stat(cachePath); err == nil {
		return cachePath, true
	}
	return "", false
}

// Put сохраняет готовый результат в кэш. Расширение берётся из
// convertedPath.
func (c *Cache) Put(key, convertedPath string) error {
	if !c.enabled {
		return nil
	}

	ext := filepath.Ext(convertedPath)
	cachePath := filepath.Join(c.dir, key+ext)

	return copyFile(convertedPath, cachePath)
}

// Restore копирует результат из кэша в целевой путь.
func (c *Cache) Restore(cachePath, dstPath string) error {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return err
	}
	return copyFile(cachePath, dstPath)
}

// Clear очищает весь кэш.
func (c *Cache) Clear() error {
	if !c.enabled || c.dir == "" {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// Size возвращает общий размер кэша в байтах.
func (c *Cache) Size() (int64, error) {
	if !c.enabled || c.dir == "" {
		return 0, nil
	}

	var size int64
	err := filepath.WalkDir(c.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			size += info.Size()
		}
		return nil
	})

	return size, err
}

// copyFile копирует файл из src в dst.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer dstFile.Close()

	_, err = io.Copy(dstFile, srcFile)
	return err
}

/*
Возможные расширения:
- LRU eviction при превышении лимита размера
- TTL для записей кэша
- Сжатие кэшированных файлов
*/
