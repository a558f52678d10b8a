// Package worker содержит пул воркеров для параллельной конвертации.
package worker

import (
	"context"
	"image"
	"os"
	"runtime"
	"sync"
	"time"
)

// MemoryLimiter ограничивает пиковое использование памяти пулом.
// Перед декодированием воркер резервирует оценку задачи и освобождает
// её после записи результата.
type MemoryLimiter struct {
	// maxMemoryBytes - максимальное использование памяти в байтах.
	maxMemoryBytes uint64

	// mu защищает доступ к текущему использованию.
	mu sync.Mutex

	// currentUsage - текущее зарезервированное использование памяти.
	currentUsage uint64

	// enabled - включено ли ограничение.
	enabled bool
}

// NewMemoryLimiter создаёт новый MemoryLimiter.
// maxMemoryMB - ограничение в мегабайтах (0 = без ограничения).
func NewMemoryLimiter(maxMemoryMB int) *MemoryLimiter {
	if maxMemoryMB <= 0 {
		return &MemoryLimiter{enabled: false}
	}

	return &MemoryLimiter{
		maxMemoryBytes: uint64(maxMemoryMB) * 1024 * 1024,
		enabled:        true,
	}
}

// EstimateTask оценивает память одной задачи. Оценка строится по
// размерам изображения из заголовка (DecodeConfig, без полного
// декодирования): 4 байта на пиксель и тройной запас на копии при
// изменении размера и кодировании. Если заголовок прочитать не
// удалось, берётся тройной размер файла.
func EstimateTask(path string, fileSize int64) int64 {
	f, err := os.Open(path)
	if err != nil {
		return fileSize * 3
	}
	defer func() { _ = f.Close() }()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return fileSize * 3
	}
	return int64(cfg.Width) * int64(cfg.Height) * 4 * 3
}

// Acquire резервирует память для задачи. Блокирует выполнение, пока
// не будет достаточно памяти. Возвращает функцию освобождения.
func (ml *MemoryLimiter) Acquire(ctx context.Context, estimatedBytes int64) (release func(), err error) {
	if !ml.enabled {
		return func() {}, nil
	}

	estimate := uint64(estimatedBytes)

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		ml.mu.Lock()
		// Проверяем текущее использование памяти системой
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)
		currentAlloc := memStats.Alloc

		// Если есть место, резервируем
		if ml.currentUsage+estimate <= ml.maxMemoryBytes &&
			currentAlloc+estimate <= ml.maxMemoryBytes {
			ml.currentUsage += estimate
			ml.mu.Unlock()

			return func() {
				ml.mu.Lock()
				ml.currentUsage -= estimate
				ml.mu.Unlock()
			}, nil
		}
		ml.mu.Unlock()

		// Ждём и пробуем снова
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(100 * time.Millisecond):
			// Пробуем освободить память
			runtime.GC()
		}
	}
}

// IsEnabled возвращает true если ограничение включено.
func (ml *MemoryLimiter) IsEnabled() bool {
	return ml.enabled
}

// CurrentUsage возвращает текущее зарезервированное использование памяти.
func (ml *MemoryLimiter) CurrentUsage() uint64 {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return ml.currentUsage
}

// MaxMemory возвращает максимальное ограничение памяти.
func (ml *MemoryLimiter) MaxMemory() uint64 {
	return ml.maxMemoryBytes
}

/*
Возможные расширения:
- Добавить адаптивное ограничение на основе доступной памяти системы
- Добавить метрики использования памяти
*/
