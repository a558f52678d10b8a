package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ErickHdzV/ImgPilot/internal/cache"
	"github.com/ErickHdzV/ImgPilot/internal/stats"
	"github.com/ErickHdzV/ImgPilot/internal/storage"
)

// newStatsCmd создаёт команду stats.
func newStatsCmd() *cobra.Command {
	var (
		dbPath     string
		limit      int
		cacheDir   string
		clearCache bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Статистика истории конвертаций и кэша",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Обслуживание кэша
			dir := cacheDir
			if dir == "" {
				dir = cache.DefaultDir()
			}
			resultCache, err := cache.New(dir, true)
			if err != nil {
				return fmt.Errorf("не удалось открыть кэш: %w", err)
			}

			if clearCache {
				if err := resultCache.Clear(); err != nil {
					return fmt.Errorf("не удалось очистить кэш: %w", err)
				}
				fmt.Printf("🧹 Кэш очищен: %s\n", dir)
			}

			// История
			path := dbPath
			if path == "" {
				path = storage.DefaultPath()
			}

			if _, err := os.Stat(path); os.IsNotExist(err) {
				fmt.Printf("История пуста: базы %s ещё нет.\n", path)
				return printCacheSize(resultCache, dir)
			}

			store, err := storage.New(path)
			if err != nil {
				return fmt.Errorf("не удалось открыть БД: %w", err)
			}
			defer func() { _ = store.Close() }()

			totals, err := store.GetTotals()
			if err != nil {
				return fmt.Errorf("не удалось получить статистику: %w", err)
			}

			fmt.Printf("📊 История конвертаций (%s):\n", path)
			fmt.Printf("   Всего записей: %d\n", totals.Total)
			fmt.Printf("   Успешно: %d\n", totals.OK)
			fmt.Printf("   Ошибок: %d\n", totals.Failed)
			fmt.Printf("   В процессе: %d\n", totals.InProgress)
			if totals.OriginalBytes > 0 {
				fmt.Printf("   Размер: %s -> %s (экономия %.1f%%)\n",
					stats.FormatBytes(totals.OriginalBytes),
					stats.FormatBytes(totals.ResultBytes),
					totals.SavedPercent())
			}

			if limit > 0 {
				recent, rerr := store.Recent(limit)
				if rerr != nil {
					return fmt.Errorf("не удалось получить последние записи: %w", rerr)
				}
				if len(recent) > 0 {
					fmt.Printf("\nПоследние %d:\n\n", len(recent))
					printRecent(recent)
				}
			}

			fmt.Println()
			return printCacheSize(resultCache, dir)
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "Путь к SQLite базе истории")
	cmd.Flags().IntVar(&limit, "limit", 10, "Сколько последних записей показать (0 = не показывать)")
	cmd.Flags().StringVar(&cacheDir, "cache-dir", "", "Директория кэша")
	cmd.Flags().BoolVar(&clearCache, "clear-cache", false, "Очистить кэш результатов")

	return cmd
}

// printRecent выводит таблицу последних конвертаций.
func printRecent(recent []storage.Conversion) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ВРЕМЯ\tФАЙЛ\tФОРМАТ\tСТАТУС\tЭКОНОМИЯ")
	fmt.Fprintln(w, "-----\t----\t------\t------\t--------")

	for _, c := range recent {
		ts := time.Unix(c.CreatedAt, 0).Format("2006-01-02 15:04")

		status := c.Status
		switch c.Status {
		case storage.StatusOK:
			status = "✅ ok"
		case storage.StatusFailed:
			status = "❌ failed"
		case storage.StatusInProgress:
			status = "🔄 in_progress"
		}

		saved := "-"
		if c.SavedPercent != nil {
			saved = fmt.Sprintf("%.1f%%", *c.SavedPercent)
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			ts, filepath.Base(c.SrcPath), c.Format, status, saved)
	}
	w.Flush()
}

// printCacheSize выводит размер кэша, если он не пуст.
func printCacheSize(c *cache.Cache, dir string) error {
	size, err := c.Size()
	if err != nil || size == 0 {
		return nil
	}
	fmt.Printf("💾 Кэш (%s): %s\n", dir, stats.FormatBytes(size))
	return nil
}

/*
Возможные расширения:
- Фильтр по формату и статусу
- Экспорт истории в JSON/CSV
*/
