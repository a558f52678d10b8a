// Package scanner отвечает за поиск изображений среди входных путей:
// отдельных файлов и директорий, при необходимости рекурсивно.
package scanner

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ErickHdzV/ImgPilot/internal/imageio"
)

// File представляет найденное изображение.
type File struct {
	// Path - абсолютный путь к файлу.
	Path string

	// RelPath - путь относительно входной директории; для файла,
	// указанного явно, просто его имя.
	RelPath string

	// Size - размер файла в байтах.
	Size int64

	// Mtime - время модификации (unix).
	Mtime int64
}

// Scanner находит изображения среди входных путей.
type Scanner struct {
	inputs    []string
	recursive bool
}

// New создаёт Scanner для списка входных путей. При recursive
// директории обходятся вглубь, иначе берётся только верхний уровень.
func New(inputs []string, recursive bool) *Scanner {
	return &Scanner{inputs: inputs, recursive: recursive}
}

// Scan запускает поиск и отправляет найденные файлы в канал.
// Файл, указанный явно, проходит без фильтра по расширению - ошибку
// о неподдерживаемом формате сообщит конвейер. Содержимое директорий
// фильтруется по набору входных расширений. Канал закрывается после
// завершения обхода.
func (s *Scanner) Scan(ctx context.Context) (<-chan File, <-chan error) {
	files := make(chan File, 100) // Буферизированный канал
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(errs)

		for _, input := range s.inputs {
			info, err := os.Stat(input)
			if err != nil {
				errs <- fmt.Errorf("не удалось прочитать %s: %w", input, err)
				return
			}

			if !info.IsDir() {
				if err := emit(ctx, files, input, filepath.Base(input), info); err != nil {
					errs <- err
					return
				}
				continue
			}

			if err := s.scanDir(ctx, files, input); err != nil {
				errs <- err
				return
			}
		}
	}()

	return files, errs
}

// scanDir обходит одну директорию с учётом режима recursive.
func (s *Scanner) scanDir(ctx context.Context, files chan<- File, dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		// Проверяем контекст
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			// Логируем ошибку, но продолжаем
			fmt.Fprintf(os.Stderr, "Предупреждение: не удалось прочитать %s: %v\n", path, err)
			return nil
		}

		if d.IsDir() {
			if path == dir {
				return nil
			}
			// Скрытые директории и служебная директория истории
			name := d.Name()
			if name == ".imgpilot" || (len(name) > 0 && name[0] == '.') {
				return filepath.SkipDir
			}
			if !s.recursive {
				return filepath.SkipDir
			}
			return nil
		}

		if !accepts(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Предупреждение: не удалось получить info %s: %v\n", path, err)
			return nil
		}

		relPath, rerr := filepath.Rel(dir, path)
		if rerr != nil {
			relPath = filepath.Base(path)
		}

		if err := emit(ctx, files, path, relPath, info); err != nil {
			return err
		}
		return nil
	})
}

// accepts отбирает файл директории: поддерживаемое расширение, не
// временный артефакт, не метаданные macOS (._*).
func accepts(path string) bool {
	base := filepath.Base(path)
	if len(base) >= 2 && base[0] == '.' && base[1] == '_' {
		return false
	}
	if imageio.IsTempArtifact(path) {
		return false
	}
	return imageio.IsInputPath(path)
}

// emit отправляет файл в канал с учётом отмены контекста.
func emit(ctx context.Context, files chan<- File, path, relPath string, info os.FileInfo) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	f := File{
		Path:    absPath,
		RelPath: relPath,
		Size:    info.Size(),
		Mtime:   info.ModTime().Unix(),
	}

	select {
	case files <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// CountFiles возвращает количество файлов для обработки (для progress bar).
func (s *Scanner) CountFiles() (int64, error) {
	var count int64

	for _, input := range s.inputs {
		info, err := os.Stat(input)
		if err != nil {
			return 0, fmt.Errorf("не удалось прочитать %s: %w", input, err)
		}

		if !info.IsDir() {
			count++
			continue
		}

		dir := input
		err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil // Игнорируем ошибки
			}

			if d.IsDir() {
				if path == dir {
					return nil
				}
				name := d.Name()
				if name == ".imgpilot" || (len(name) > 0 && name[0] == '.') {
					return filepath.SkipDir
				}
				if !s.recursive {
					return filepath.SkipDir
				}
				return nil
			}

			if accepts(path) {
				count++
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	return count, nil
}

// ComputeSHA256 вычисляет sha256 хэш файла.
func ComputeSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("не удалось открыть файл: %w", err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("не удалось прочитать файл: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

/*
Возможные расширения:
- Добавить поддержку glob-паттернов для фильтрации
- Добавить поддержку exclude-паттернов
- Добавить поддержку symlinks
*/
