// Package queue реализует очередь задач режима наблюдения: FIFO в
// памяти с повторными попытками и защитой от дублей.
package queue

import (
	"context"
	"sync"
	"sync/atomic"
)

// DefaultMaxAttempts - число попыток обработки одного файла по
// умолчанию.
const DefaultMaxAttempts = 3

// Item представляет файл в очереди.
type Item struct {
	// Path - путь к файлу.
	Path string

	// Attempt - номер текущей попытки, начиная с 1.
	Attempt int
}

// Stats содержит счётчики очереди.
type Stats struct {
	// Pending - задач в очереди сейчас.
	Pending int64

	// Retried - повторных постановок.
	Retried int64

	// Dropped - задач, отброшенных после исчерпания попыток.
	Dropped int64
}

// Queue - потокобезопасная FIFO-очередь путей.
type Queue struct {
	items       chan Item
	maxAttempts int

	mu     sync.Mutex
	queued map[string]bool
	closed bool

	retried int64
	dropped int64
}

// New создаёт очередь с заданным размером буфера. maxAttempts <= 0
// заменяется на DefaultMaxAttempts.
func New(bufferSize, maxAttempts int) *Queue {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Queue{
		items:       make(chan Item, bufferSize),
		maxAttempts: maxAttempts,
		queued:      make(map[string]bool),
	}
}

// Push добавляет путь в очередь. Путь, уже ожидающий обработки,
// повторно не ставится; после Close пути молча отбрасываются.
func (q *Queue) Push(ctx context.Context, path string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || q.queued[path] {
		return nil
	}

	select {
	case q.items <- Item{Path: path, Attempt: 1}:
		q.queued[path] = true
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pop извлекает следующую задачу, блокируясь до появления задачи или
// отмены контекста.
func (q *Queue) Pop(ctx context.Context) (Item, error) {
	select {
	case item, ok := <-q.items:
		if !ok {
			return Item{}, context.Canceled
		}
		q.unmark(item.Path)
		return item, nil
	case <-ctx.Done():
		return Item{}, ctx.Err()
	}
}

// Retry возвращает неудавшуюся задачу в очередь. Возвращает false,
// когда задача отброшена: попытки исчерпаны либо очередь уже закрыта
// и дорабатывается остаток.
func (q *Queue) Retry(ctx context.Context, item Item) (bool, error) {
	if item.Attempt >= q.maxAttempts {
		atomic.AddInt64(&q.dropped, 1)
		return false, nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		atomic.AddInt64(&q.dropped, 1)
		return false, nil
	}

	select {
	case q.items <- Item{Path: item.Path, Attempt: item.Attempt + 1}:
		q.queued[item.Path] = true
		atomic.AddInt64(&q.retried, 1)
		return true, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Len возвращает текущую длину очереди.
func (q *Queue) Len() int {
	return len(q.items)
}

// Stats возвращает счётчики очереди.
func (q *Queue) Stats() Stats {
	return Stats{
		Pending: int64(len(q.items)),
		Retried: atomic.LoadInt64(&q.retried),
		Dropped: atomic.LoadInt64(&q.dropped),
	}
}

// Close закрывает приём. Буфер дорабатывается через Pop, а Push и
// Retry после закрытия отбрасывают задачи, не трогая канал. Повторный
// Close безопасен.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.items)
}

func (q *Queue) unmark(path string) {
	q.mu.Lock()
	delete(q.queued, path)
	q.mu.Unlock()
}

/*
Возможные расширения:
- Задержка перед повторной попыткой (backoff)
- Приоритеты задач
*/
