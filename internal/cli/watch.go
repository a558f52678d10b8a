package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ErickHdzV/ImgPilot/internal/cache"
	"github.com/ErickHdzV/ImgPilot/internal/capability"
	"github.com/ErickHdzV/ImgPilot/internal/imageio"
	"github.com/ErickHdzV/ImgPilot/internal/optimize"
	"github.com/ErickHdzV/ImgPilot/internal/pipeline"
	"github.com/ErickHdzV/ImgPilot/internal/queue"
	"github.com/ErickHdzV/ImgPilot/internal/stats"
	"github.com/ErickHdzV/ImgPilot/internal/storage"
	"github.com/ErickHdzV/ImgPilot/internal/watcher"
	"github.com/ErickHdzV/ImgPilot/internal/worker"
)

// newWatchCmd создаёт команду watch.
func newWatchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [директория]",
		Short: "Следить за директорией и конвертировать новые файлы",
		Long: `Следить за директорией и конвертировать появляющиеся изображения.

Новый файл попадает в очередь после паузы debounce, когда его размер
перестал меняться. Неудачные задачи повторяются до трёх раз. Ctrl-C
останавливает приём, доделывает очередь и выходит.

Директория результатов (--output) обязательна и должна быть вне
наблюдаемой директории, иначе готовые файлы зациклят конвертацию.

Примеры:
  # Конвертировать всё новое из ~/inbox в WebP
  imgpilot watch ~/inbox -o ~/converted

  # AVIF с качеством 85 и паузой в одну секунду
  imgpilot watch ./drop -o ./out -f avif -q 85 --debounce 1s`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, debounce)
		},
	}

	addConvertFlags(cmd.Flags())
	cmd.Flags().DurationVar(&debounce, "debounce", 500*time.Millisecond,
		"Пауза после последнего изменения файла перед конвертацией")

	return cmd
}

// runWatch выполняет режим наблюдения.
func runWatch(cmd *cobra.Command, args []string, debounce time.Duration) error {
	cfg, formatsExplicit, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("директория недоступна: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s не является директорией", dir)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}
	if err := checkWatchOutput(dir, cfg.OutputDir); err != nil {
		return err
	}

	removalOnly := cfg.RemoveBackground && !formatsExplicit

	var targetBytes int64
	if cfg.TargetSize != "" && !removalOnly {
		targetBytes, err = optimize.ParseTargetSize(cfg.TargetSize)
		if err != nil {
			return err
		}
		for _, f := range cfg.Formats {
			if f != imageio.FormatJPEG && f != imageio.FormatWebP {
				return fmt.Errorf("%w: --target-size работает только с jpeg и webp, запрошен %s",
					optimize.ErrFormatNotTunable, f)
			}
		}
	}

	// Возможности проверяются до старта наблюдения
	reg := capability.Detect(cfg.AvifencPath, cfg.RembgPath)
	if !removalOnly {
		for _, f := range cfg.Formats {
			switch f {
			case imageio.FormatAVIF:
				if err := reg.Require(capability.CapAVIFEncode); err != nil {
					return err
				}
			case imageio.FormatSVG:
				if err := reg.Require(capability.CapSVGTrace); err != nil {
					return err
				}
			}
		}
	}
	if cfg.RemoveBackground {
		if err := reg.Require(capability.CapBackgroundRemoval); err != nil {
			return err
		}
	}

	// История
	var store *storage.Storage
	if cfg.HistoryEnabled {
		store, err = storage.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("не удалось инициализировать БД: %w", err)
		}
		defer func() { _ = store.Close() }()

		cleaned, cerr := store.CleanupInProgress()
		if cerr != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Не удалось очистить in_progress: %v\n", cerr)
		} else if cleaned > 0 {
			fmt.Printf("🧹 Очищено %d прерванных записей\n", cleaned)
		}
	}

	// Кэш
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = cache.DefaultDir()
	}
	resultCache, err := cache.New(cacheDir, cfg.CacheEnabled)
	if err != nil {
		return fmt.Errorf("не удалось инициализировать кэш: %w", err)
	}

	// Наблюдение
	w, err := watcher.New(dir)
	if err != nil {
		return err
	}
	w.SetDebounceTime(debounce)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	files, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	q := queue.New(256, queue.DefaultMaxAttempts)

	// Первый сигнал останавливает приём; очередь дорабатывается
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n⚠️  Останавливаем приём, доделываем очередь...")
		_ = w.Close()
	}()

	// Файлы из watcher перекладываются в очередь
	go func() {
		defer q.Close()
		for f := range files {
			if err := q.Push(ctx, f.Path); err != nil {
				return
			}
		}
	}()

	pool := worker.New(pipeline.New(reg), worker.Options{
		Workers:     cfg.Workers,
		MaxMemoryMB: cfg.MaxMemoryMB,
		Store:       store,
		Cache:       resultCache,
		Resume:      cfg.Resume,
		ParamsHash:  cfg.ParamsHash(),
		// Наблюдение живёт логом, а не прогресс-баром
		Verbose: true,
	})

	fmt.Printf("👀 Наблюдение за %s", dir)
	if removalOnly {
		fmt.Printf(" (удаление фона)")
	} else {
		fmt.Printf(" (форматы: %s)", formatList(cfg.Formats))
	}
	fmt.Printf(", результаты в %s. Ctrl-C для выхода.\n", cfg.OutputDir)

	// Очередь дорабатывается и после остановки приёма, поэтому Pop
	// получает фоновый контекст
	var totals stats.Summary
	start := time.Now()
	for {
		item, perr := q.Pop(context.Background())
		if perr != nil {
			break
		}

		tasks := buildTasks(cfg, item.Path, removalOnly, targetBytes)
		ch := make(chan pipeline.Task, len(tasks))
		for _, t := range tasks {
			ch <- t
		}
		close(ch)

		summary, failures := pool.Process(ctx, ch)
		totals.Processed += summary.Processed
		totals.Skipped += summary.Skipped
		totals.Failed += summary.Failed
		totals.Total += summary.Total
		totals.OriginalBytes += summary.OriginalBytes
		totals.ResultBytes += summary.ResultBytes

		if len(failures) > 0 {
			requeued, rerr := q.Retry(context.Background(), item)
			if rerr != nil {
				break
			}
			if requeued {
				fmt.Printf("🔄 Повторная попытка %d/%d: %s\n",
					item.Attempt+1, queue.DefaultMaxAttempts, item.Path)
			} else {
				fmt.Fprintf(os.Stderr, "❌ Брошено после %d попыток: %s\n",
					item.Attempt, item.Path)
			}
		}
	}

	totals.Duration = time.Since(start)
	qs := q.Stats()

	fmt.Println()
	fmt.Printf("📊 Итог наблюдения:\n")
	fmt.Printf("   Всего задач: %d\n", totals.Total)
	fmt.Printf("   Успешно: %d\n", totals.Processed)
	fmt.Printf("   Пропущено: %d\n", totals.Skipped)
	fmt.Printf("   Ошибок: %d\n", totals.Failed)
	if qs.Retried > 0 || qs.Dropped > 0 {
		fmt.Printf("   Повторов: %d, брошено: %d\n", qs.Retried, qs.Dropped)
	}
	if totals.OriginalBytes > 0 {
		fmt.Printf("   Размер: %s -> %s (экономия %.1f%%)\n",
			stats.FormatBytes(totals.OriginalBytes),
			stats.FormatBytes(totals.ResultBytes),
			totals.SavedPercent())
	}
	fmt.Printf("   Время: %s\n", totals.Duration.Round(time.Millisecond))

	return nil
}

// checkWatchOutput требует директорию результатов вне наблюдаемой,
// иначе каждый готовый файл порождал бы новую задачу.
func checkWatchOutput(watchDir, outputDir string) error {
	if outputDir == "" {
		return fmt.Errorf("в режиме watch обязательна директория результатов (--output)")
	}

	absWatch, err := filepath.Abs(watchDir)
	if err != nil {
		return err
	}
	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return err
	}

	rel, err := filepath.Rel(absWatch, absOut)
	if err == nil && (rel == "." || !strings.HasPrefix(rel, "..")) {
		return fmt.Errorf("директория результатов %s находится внутри наблюдаемой %s",
			outputDir, watchDir)
	}
	return nil
}

/*
Возможные расширения:
- Пауза перед повторной попыткой (backoff) при нестабильных файлах
- Параллельная обработка нескольких файлов очереди
*/
