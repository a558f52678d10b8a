// Package watcher предоставляет слежение за горячей директорией:
// новые изображения отправляются в канал после паузы debounce, чтобы
// файл успел записаться целиком.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ErickHdzV/ImgPilot/internal/imageio"
	"github.com/ErickHdzV/ImgPilot/internal/scanner"
)

// Watcher следит за директорией и отправляет новые файлы в канал.
type Watcher struct {
	// dir - наблюдаемая директория.
	dir string

	// watcher - fsnotify watcher.
	watcher *fsnotify.Watcher

	// debounceTime - время ожидания перед обработкой файла.
	// Нужно для того, чтобы файл успел полностью записаться.
	debounceTime time.Duration

	// pending - файлы, ожидающие обработки (для debounce).
	pending map[string]pendingFile
	mu      sync.Mutex

	// evDone закрывается, когда поток событий иссяк (Close или отмена
	// контекста); сигнал для финальной выгрузки pending.
	evDone chan struct{}
}

// pendingFile - файл в ожидании с размером на момент последнего
// события. Файл считается дописанным, когда размер не менялся в
// течение debounce.
type pendingFile struct {
	seenAt time.Time
	size   int64
}

// New создаёт Watcher для директории.
func New(dir string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("не удалось создать watcher: %w", err)
	}

	return &Watcher{
		dir:          dir,
		watcher:      w,
		debounceTime: 500 * time.Millisecond,
		pending:      make(map[string]pendingFile),
		evDone:       make(chan struct{}),
	}, nil
}

// SetDebounceTime устанавливает время debounce.
func (w *Watcher) SetDebounceTime(d time.Duration) {
	w.debounceTime = d
}

// Watch запускает слежение за директорией и возвращает канал с файлами.
// Канал закрывается после отмены контекста или Close, когда обе
// горутины завершились, поэтому отправка в закрытый канал исключена.
func (w *Watcher) Watch(ctx context.Context) (<-chan scanner.File, error) {
	// Добавляем директорию и все поддиректории
	if err := w.addRecursive(w.dir); err != nil {
		return nil, err
	}

	files := make(chan scanner.File, 100)

	var wg sync.WaitGroup
	wg.Add(2)

	// Горутина для обработки событий
	go func() {
		defer wg.Done()
		w.processEvents(ctx, files)
	}()

	// Горутина для debounce
	go func() {
		defer wg.Done()
		w.processPending(ctx, files)
	}()

	go func() {
		wg.Wait()
		close(files)
	}()

	return files, nil
}

// addRecursive добавляет директорию и все поддиректории в watcher,
// пропуская скрытые.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		name := filepath.Base(path)
		if path != dir && len(name) > 0 && name[0] == '.' {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("не удалось добавить директорию %s: %w", path, err)
		}
		return nil
	})
}

// processEvents обрабатывает события от fsnotify.
func (w *Watcher) processEvents(ctx context.Context, files chan<- scanner.File) {
	defer close(w.evDone)
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			// Обрабатываем только создание и запись файлов
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			// Проверяем, что это файл (не директория)
			info, err := os.Stat(event.Name)
			if err != nil {
				continue
			}

			if info.IsDir() {
				// Новая директория - добавляем в watcher
				if event.Op&fsnotify.Create != 0 {
					_ = w.watcher.Add(event.Name)
				}
				continue
			}

			if !accepts(event.Name) {
				continue
			}

			// Добавляем в pending для debounce; повторное событие
			// сдвигает отсчёт заново
			w.mu.Lock()
			w.pending[event.Name] = pendingFile{seenAt: time.Now(), size: info.Size()}
			w.mu.Unlock()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			fmt.Fprintf(os.Stderr, "Ошибка watcher: %v\n", err)
		}
	}
}

// accepts отбирает файл: поддерживаемое расширение, не временный
// артефакт конвертации, не метаданные macOS.
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

// processPending обрабатывает файлы из pending после debounce.
func (w *Watcher) processPending(ctx context.Context, files chan<- scanner.File) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.evDone:
			// События закончились - выгружаем остаток без ожидания
			w.flushPending(files)
			return
		case <-ticker.C:
			w.checkPending(files)
		}
	}
}

// flushPending отправляет все ожидающие файлы, не дожидаясь debounce.
func (w *Watcher) flushPending(files chan<- scanner.File) {
	w.mu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]pendingFile)
	w.mu.Unlock()

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		relPath, rerr := filepath.Rel(w.dir, path)
		if rerr != nil {
			relPath = filepath.Base(path)
		}
		files <- scanner.File{
			Path:    path,
			RelPath: relPath,
			Size:    info.Size(),
			Mtime:   info.ModTime().Unix(),
		}
	}
}

// checkPending проверяет pending файлы и отправляет готовые. Файл с
// изменившимся размером ещё дописывается - отсчёт начинается заново.
func (w *Watcher) checkPending(files chan<- scanner.File) {
	now := time.Now()

	w.mu.Lock()
	var ready []scanner.File
	for path, pf := range w.pending {
		if now.Sub(pf.seenAt) < w.debounceTime {
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			// Файл исчез за время ожидания
			delete(w.pending, path)
			continue
		}

		if info.Size() != pf.size {
			w.pending[path] = pendingFile{seenAt: now, size: info.Size()}
			continue
		}

		delete(w.pending, path)

		relPath, rerr := filepath.Rel(w.dir, path)
		if rerr != nil {
			relPath = filepath.Base(path)
		}

		ready = append(ready, scanner.File{
			Path:    path,
			RelPath: relPath,
			Size:    info.Size(),
			Mtime:   info.ModTime().Unix(),
		})
	}
	w.mu.Unlock()

	// Отправка вне блокировки, чтобы не задерживать приём событий
	for _, f := range ready {
		files <- f
	}
}

// Close закрывает watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

/*
Возможные расширения:
- Добавить фильтрацию по паттерну (glob)
- Добавить обработку переименования файлов
- Добавить rate limiting для большого количества файлов
*/
