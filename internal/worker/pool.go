// Package worker содержит пул воркеров для параллельной конвертации.
package worker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ErickHdzV/ImgPilot/internal/cache"
	"github.com/ErickHdzV/ImgPilot/internal/imageio"
	"github.com/ErickHdzV/ImgPilot/internal/output"
	"github.com/ErickHdzV/ImgPilot/internal/pipeline"
	"github.com/ErickHdzV/ImgPilot/internal/progress"
	"github.com/ErickHdzV/ImgPilot/internal/scanner"
	"github.com/ErickHdzV/ImgPilot/internal/stats"
	"github.com/ErickHdzV/ImgPilot/internal/storage"
)

// Outcome - исход одной задачи с учётом пропуска и кэша.
type Outcome struct {
	// Result - результат конвейера (или синтетический при пропуске).
	Result pipeline.Result

	// Skipped - задача пропущена без конвертации.
	Skipped bool

	// SkipReason - причина пропуска.
	SkipReason string

	// FromCache - результат восстановлен из кэша без кодирования.
	FromCache bool
}

// Failure описывает неудавшуюся задачу для итогового отчёта.
type Failure struct {
	// SrcPath - исходный файл.
	SrcPath string

	// Format - целевой формат.
	Format imageio.Format

	// Err - ошибка задачи.
	Err error
}

// Options содержит настройки пула.
type Options struct {
	// Workers - число воркеров (минимум 1).
	Workers int

	// MaxMemoryMB - лимит памяти в мегабайтах (0 = без лимита).
	MaxMemoryMB int

	// Progress - прогресс-бар (nil = без бара).
	Progress *progress.Bar

	// Store - история конвертаций (nil = история выключена).
	Store *storage.Storage

	// Cache - кэш результатов (nil = кэш выключен).
	Cache *cache.Cache

	// Resume - пропускать уже сконвертированные версии файлов по
	// истории.
	Resume bool

	// ParamsHash - хэш параметров конвертации для истории и кэша.
	ParamsHash string

	// Verbose - печатать строку на каждую задачу.
	Verbose bool
}

// Pool управляет пулом воркеров. Воркеры выполняют задачи, единственный
// сборщик агрегирует результаты и двигает прогресс-бар, поэтому
// статистика не требует блокировок.
type Pool struct {
	pipe       *pipeline.Pipeline
	workers    int
	limiter    *MemoryLimiter
	progress   *progress.Bar
	store      *storage.Storage
	cache      *cache.Cache
	resume     bool
	paramsHash string
	verbose    bool
}

// New создаёт пул воркеров поверх конвейера.
func New(pipe *pipeline.Pipeline, opts Options) *Pool {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		pipe:       pipe,
		workers:    workers,
		limiter:    NewMemoryLimiter(opts.MaxMemoryMB),
		progress:   opts.Progress,
		store:      opts.Store,
		cache:      opts.Cache,
		resume:     opts.Resume,
		paramsHash: opts.ParamsHash,
		verbose:    opts.Verbose,
	}
}

// Process выполняет задачи из канала и возвращает сводку со списком
// ошибок. Ошибка одной задачи не останавливает пакет; отмена контекста
// останавливает воркеров на границе задач.
func (p *Pool) Process(ctx context.Context, tasks <-chan pipeline.Task) (stats.Summary, []Failure) {
	start := time.Now()
	results := make(chan Outcome, p.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case task, ok := <-tasks:
					if !ok {
						return
					}
					results <- p.run(ctx, task)
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	// Единственный сборщик: агрегация без блокировок
	var summary stats.Summary
	var failures []Failure

	for out := range results {
		summary.Total++

		switch {
		case out.Skipped:
			summary.Skipped++
			if p.verbose {
				p.note("⏭️  Пропущен: %s (%s)\n", out.Result.Task.SrcPath, out.SkipReason)
			}
		case out.Result.Err != nil:
			summary.Failed++
			failures = append(failures, Failure{
				SrcPath: out.Result.Task.SrcPath,
				Format:  out.Result.Task.Format,
				Err:     out.Result.Err,
			})
			p.alert("❌ %s: %v\n", out.Result.Task.SrcPath, out.Result.Err)
		default:
			summary.Add(out.Result.Stat)
			if out.Result.Warning != "" {
				p.alert("⚠️  %s: %s\n", out.Result.Task.SrcPath, out.Result.Warning)
			}
			if p.verbose {
				suffix := ""
				if out.Result.Task.TargetBytes > 0 {
					suffix = fmt.Sprintf(" [качество %d]", out.Result.Quality)
				}
				if out.FromCache {
					suffix += " [кэш]"
				}
				p.note("✅ %s -> %s (%s -> %s, %.1f%%)%s\n",
					out.Result.Task.SrcPath, out.Result.DstPath,
					stats.FormatBytes(out.Result.Stat.OriginalBytes),
					stats.FormatBytes(out.Result.Stat.ResultBytes),
					out.Result.Stat.SavedPercent(), suffix)
			}
		}

		if p.progress != nil {
			p.progress.Increment()
		}
	}

	summary.Duration = time.Since(start)
	return summary, failures
}

// run выполняет одну задачу: история, лимит памяти, кэш, конвейер.
func (p *Pool) run(ctx context.Context, task pipeline.Task) Outcome {
	var out Outcome
	out.Result.Task = task

	// Ключ версии файла для истории
	var key storage.FileKey
	haveKey := false
	var srcSize int64
	if info, err := os.Stat(task.SrcPath); err == nil {
		srcSize = info.Size()
		key = storage.FileKey{Path: task.SrcPath, Size: info.Size(), Mtime: info.ModTime().Unix()}
		haveKey = true
	}

	formatName := task.Format.String()
	if task.RemovalOnly() {
		formatName = "no_bg"
	}

	// Режим resume: пропускаем уже сделанную работу
	var srcHash string
	if p.resume && p.store != nil && haveKey {
		if dst, done, err := p.store.WasConverted(key, formatName, p.paramsHash); err == nil && done {
			out.Skipped = true
			out.SkipReason = "уже сконвертирован: " + dst
			return out
		}

		hash, err := scanner.ComputeSHA256(task.SrcPath)
		if err == nil {
			srcHash = hash
			if dst, done, derr := p.store.FindByHash(srcHash, formatName, p.paramsHash); derr == nil && done {
				out.Skipped = true
				out.SkipReason = "дубликат по содержимому: " + dst
				return out
			}
		}
	}

	// Запись истории; её ошибка не отменяет конвертацию
	var recID int64
	if p.store != nil && haveKey {
		id, err := p.store.RecordStart(key, srcHash, formatName, task.Quality, p.paramsHash)
		if err != nil {
			p.alert("⚠️  история: %v\n", err)
		} else {
			recID = id
		}
	}

	// Лимит памяти: резервируем оценку задачи
	if p.limiter.IsEnabled() {
		release, err := p.limiter.Acquire(ctx, EstimateTask(task.SrcPath, srcSize))
		if err != nil {
			out.Result.Err = err
			p.finalize(recID, out)
			return out
		}
		defer release()
	}

	// Кэш: готовый результат восстанавливается без кодирования.
	// Удаление фона без конвертации не кэшируется.
	var cacheKey string
	if p.cache != nil && p.cache.IsEnabled() && !task.RemovalOnly() {
		if k, err := p.cache.Key(task.SrcPath, p.paramsHash); err == nil {
			cacheKey = k
			if cachePath, ok := p.cache.Get(cacheKey, task.Format.Ext()); ok {
				out.Result = p.restore(task, cachePath)
				out.FromCache = out.Result.Err == nil
				p.finalize(recID, out)
				return out
			}
		}
	}

	if task.RemovalOnly() {
		out.Result = p.pipe.RemoveBackground(ctx, task.SrcPath, task.OutputDir)
	} else {
		out.Result = p.pipe.Process(ctx, task)
	}

	if cacheKey != "" && out.Result.Err == nil {
		if err := p.cache.Put(cacheKey, out.Result.DstPath); err != nil {
			p.alert("⚠️  кэш: %v\n", err)
		}
	}

	p.finalize(recID, out)
	return out
}

// restore воспроизводит результат из кэша, повторяя схему именования
// конвейера.
func (p *Pool) restore(task pipeline.Task, cachePath string) pipeline.Result {
	start := time.Now()
	res := pipeline.Result{Task: task}

	outDir := task.OutputDir
	if outDir == "" {
		outDir = filepath.Dir(task.SrcPath)
	}
	if err := output.EnsureDir(outDir); err != nil {
		res.Err = err
		return res
	}
	dstPath := output.BuildDstPath(task.SrcPath, outDir, task.Format, task.CustomName, task.MultiFormat)

	if err := p.cache.Restore(cachePath, dstPath); err != nil {
		res.Err = fmt.Errorf("не удалось восстановить из кэша: %w", err)
		return res
	}

	st, err := stats.FromFiles(task.SrcPath, dstPath)
	if err != nil {
		res.Warning = fmt.Sprintf("статистика не собрана: %v", err)
	}
	st.Duration = time.Since(start)

	res.DstPath = dstPath
	res.Stat = st
	return res
}

// finalize записывает итог задачи в историю.
func (p *Pool) finalize(recID int64, out Outcome) {
	if p.store == nil || recID == 0 {
		return
	}

	if out.Result.Err != nil {
		if err := p.store.FinalizeFailed(recID, out.Result.Err.Error()); err != nil {
			p.alert("⚠️  история: %v\n", err)
		}
		return
	}

	st := out.Result.Stat
	if err := p.store.FinalizeOK(recID, out.Result.DstPath,
		st.OriginalBytes, st.ResultBytes, st.SavedPercent(), st.Duration); err != nil {
		p.alert("⚠️  история: %v\n", err)
	}
}

// note печатает информационное сообщение поверх прогресс-бара.
func (p *Pool) note(format string, args ...interface{}) {
	if p.progress != nil && !p.progress.IsDisabled() {
		p.progress.WriteMessage(format, args...)
		return
	}
	fmt.Printf(format, args...)
}

// alert печатает предупреждение или ошибку поверх прогресс-бара.
func (p *Pool) alert(format string, args ...interface{}) {
	if p.progress != nil && !p.progress.IsDisabled() {
		p.progress.WriteMessage(format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

/*
Возможные расширения:
- Добавить rate limiting
- Добавить graceful shutdown с сохранением состояния очереди
*/
