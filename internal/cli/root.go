// Package cli содержит CLI интерфейс приложения.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ErickHdzV/ImgPilot/internal/cache"
	"github.com/ErickHdzV/ImgPilot/internal/capability"
	"github.com/ErickHdzV/ImgPilot/internal/config"
	"github.com/ErickHdzV/ImgPilot/internal/imageio"
	"github.com/ErickHdzV/ImgPilot/internal/optimize"
	"github.com/ErickHdzV/ImgPilot/internal/output"
	"github.com/ErickHdzV/ImgPilot/internal/pipeline"
	"github.com/ErickHdzV/ImgPilot/internal/progress"
	"github.com/ErickHdzV/ImgPilot/internal/resize"
	"github.com/ErickHdzV/ImgPilot/internal/scanner"
	"github.com/ErickHdzV/ImgPilot/internal/stats"
	"github.com/ErickHdzV/ImgPilot/internal/storage"
	"github.com/ErickHdzV/ImgPilot/internal/worker"
)

var (
	// Version будет установлена при сборке.
	Version = "dev"

	// BuildTime будет установлена при сборке.
	BuildTime = "unknown"
)

// flagCfg принимает значения флагов. Итоговая конфигурация собирается
// в buildConfig с приоритетом: флаги > пресет > файл > умолчания.
var flagCfg = config.DefaultConfig()

var (
	flagFormats    []string
	flagResize     string
	flagNoAspect   bool
	flagNoHistory  bool
	flagConfigPath string
	flagSavePreset string
)

// NewRootCmd создаёт корневую команду CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "imgpilot [файлы или директории...]",
		Short: "Утилита для массовой конвертации и оптимизации изображений",
		Long: `ImgPilot - CLI утилита для массовой конвертации и оптимизации изображений.

Конвертирует в WebP, AVIF, PNG, JPEG, ICO и SVG, умеет менять размер,
переносить EXIF, подбирать качество под целевой размер файла, удалять
фон и вести историю конвертаций.

Примеры:
  # Конвертировать фото в WebP рядом с исходником
  imgpilot photo.jpg

  # Директорию рекурсивно в AVIF и WebP с качеством 85
  imgpilot ./photos -r -f avif,webp -q 85 -o ./converted

  # Вписать в 1920x1080 с сохранением пропорций
  imgpilot ./photos --resize 1920x1080 -o ./web

  # Подобрать качество под размер не больше 500 КБ
  imgpilot photo.jpg -f jpeg --target-size 500K

  # Встроенный пресет для веба
  imgpilot ./photos --preset web -o ./site/assets

  # Удалить фон (требует rembg)
  imgpilot photo.jpg --remove-bg`,
		Args: cobra.ArbitraryArgs,
		RunE: runConvert,
	}

	addConvertFlags(rootCmd.Flags())

	flags := rootCmd.Flags()
	flags.StringVar(&flagCfg.CustomName, "name", "", "Имя результата вместо имени исходника")
	flags.BoolVar(&flagCfg.DryRun, "dry-run", false, "Показать план без конвертации")
	flags.StringVar(&flagSavePreset, "save-preset", "",
		"Сохранить текущие настройки как именованный пресет")
	flags.BoolVar(&flagCfg.Resume, "resume", false,
		"Пропускать файлы, уже сконвертированные по истории")
	flags.BoolVarP(&flagCfg.Recursive, "recursive", "r", false, "Обходить директории рекурсивно")

	// Подкоманды
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newPresetsCmd())
	rootCmd.AddCommand(newCapabilitiesCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// addConvertFlags регистрирует флаги конвертации, общие для корневой
// команды и команды watch.
func addConvertFlags(flags *pflag.FlagSet) {
	// Выходные параметры
	flags.StringVarP(&flagCfg.OutputDir, "output", "o", "",
		"Директория результатов (по умолчанию рядом с исходником)")
	flags.StringSliceVarP(&flagFormats, "format", "f", []string{"webp"},
		"Выходные форматы через запятую: webp, avif, png, jpeg, ico, svg")
	flags.IntVarP(&flagCfg.Quality, "quality", "q", flagCfg.Quality,
		"Качество для lossy форматов (0-100)")
	flags.BoolVar(&flagCfg.KeepMetadata, "keep-metadata", false, "Перенести EXIF в результат")
	flags.StringVar(&flagCfg.TargetSize, "target-size", "",
		"Целевой размер файла: 500K, 2M (только jpeg и webp)")

	// Изменение размера
	flags.StringVar(&flagResize, "resize", "", "Целевые размеры WxH: 800x600, 800x, x600")
	flags.StringVar(&flagCfg.ResizeFilter, "filter", flagCfg.ResizeFilter,
		"Фильтр ресемплинга: lanczos, bicubic, bilinear, nearest")
	flags.BoolVar(&flagNoAspect, "no-aspect", false, "Не сохранять пропорции при изменении размера")

	// Обработка
	flags.BoolVar(&flagCfg.RemoveBackground, "remove-bg", false, "Удалить фон (требует rembg)")
	flags.IntVarP(&flagCfg.Workers, "workers", "w", flagCfg.Workers,
		"Количество параллельных воркеров")
	flags.IntVar(&flagCfg.MaxMemoryMB, "max-memory", 0, "Лимит памяти в МБ (0 = без лимита)")
	flags.IntVar(&flagCfg.SVGMaxPaths, "svg-max-paths", 0,
		"Предел контуров при трассировке SVG (0 = по умолчанию)")

	// Пресеты и конфигурация
	flags.StringVar(&flagCfg.Preset, "preset", "", "Встроенный или именованный пресет")
	flags.StringVar(&flagConfigPath, "config", "", "Путь к файлу конфигурации YAML")

	// История и кэш
	flags.StringVar(&flagCfg.DBPath, "db", "", "Путь к SQLite базе истории")
	flags.BoolVar(&flagNoHistory, "no-history", false, "Не вести историю конвертаций")
	flags.BoolVar(&flagCfg.CacheEnabled, "cache", false, "Кэшировать результаты конвертации")
	flags.StringVar(&flagCfg.CacheDir, "cache-dir", "", "Директория кэша")

	// Внешние инструменты
	flags.StringVar(&flagCfg.AvifencPath, "avifenc", "", "Путь к бинарнику avifenc")
	flags.StringVar(&flagCfg.RembgPath, "rembg", "", "Путь к бинарнику rembg")

	// Вывод
	flags.BoolVarP(&flagCfg.Verbose, "verbose", "v", false, "Подробный вывод")
	flags.BoolVar(&flagCfg.NoProgress, "no-progress", false, "Отключить прогресс-бар")
}

// buildConfig собирает итоговую конфигурацию. Приоритет источников:
// флаги > пресет > файл конфигурации > умолчания. Возвращает также
// признак того, что выходные форматы были заданы явно - без него
// --remove-bg означает только удаление фона.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, bool, error) {
	cfg := config.DefaultConfig()
	formatsExplicit := false

	// Файл конфигурации поверх умолчаний
	fc, path, err := config.FindAndLoadConfig(flagConfigPath)
	if err != nil {
		return nil, false, err
	}
	if fc != nil {
		if err := fc.ApplyToConfig(cfg); err != nil {
			return nil, false, err
		}
		if fc.Output != nil && len(fc.Output.Formats) > 0 {
			formatsExplicit = true
		}
		if flagCfg.Verbose {
			fmt.Printf("📄 Конфигурация: %s\n", path)
		}
	}

	// Пресет поверх файла: сначала встроенные, затем пользовательские
	if flagCfg.Preset != "" {
		if cfg.ApplyPreset(flagCfg.Preset) {
			formatsExplicit = true
		} else {
			pfc, _, perr := config.LoadPreset(flagCfg.Preset)
			if perr != nil {
				return nil, false, perr
			}
			if pfc == nil {
				return nil, false, fmt.Errorf("пресет %q не найден (встроенные: %s)",
					flagCfg.Preset, strings.Join(config.ValidPresets(), ", "))
			}
			if err := pfc.ApplyToConfig(cfg); err != nil {
				return nil, false, err
			}
			if pfc.Output != nil && len(pfc.Output.Formats) > 0 {
				formatsExplicit = true
			}
			cfg.Preset = flagCfg.Preset
		}
	}

	// Явно заданные флаги поверх всего
	applyChangedFlags(cmd, cfg)

	if cmd.Flags().Changed("format") {
		formats, err := imageio.ParseFormats(flagFormats)
		if err != nil {
			return nil, false, err
		}
		cfg.Formats = formats
		formatsExplicit = true
	}
	if flagResize != "" {
		w, h, err := parseResize(flagResize)
		if err != nil {
			return nil, false, err
		}
		cfg.ResizeWidth = w
		cfg.ResizeHeight = h
	}
	if flagNoAspect {
		cfg.KeepAspect = false
	}
	if flagNoHistory {
		cfg.HistoryEnabled = false
	}

	cfg.Inputs = args
	return cfg, formatsExplicit, nil
}

// applyChangedFlags переносит в конфигурацию только те флаги, которые
// пользователь задал явно, чтобы не затирать значения из файла и
// пресета умолчаниями.
func applyChangedFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()

	if f.Changed("output") {
		cfg.OutputDir = flagCfg.OutputDir
	}
	if f.Changed("quality") {
		cfg.Quality = flagCfg.Quality
	}
	if f.Changed("name") {
		cfg.CustomName = flagCfg.CustomName
	}
	if f.Changed("keep-metadata") {
		cfg.KeepMetadata = flagCfg.KeepMetadata
	}
	if f.Changed("target-size") {
		cfg.TargetSize = flagCfg.TargetSize
	}
	if f.Changed("filter") {
		cfg.ResizeFilter = flagCfg.ResizeFilter
	}
	if f.Changed("remove-bg") {
		cfg.RemoveBackground = flagCfg.RemoveBackground
	}
	if f.Changed("workers") {
		cfg.Workers = flagCfg.Workers
	}
	if f.Changed("recursive") {
		cfg.Recursive = flagCfg.Recursive
	}
	if f.Changed("dry-run") {
		cfg.DryRun = flagCfg.DryRun
	}
	if f.Changed("max-memory") {
		cfg.MaxMemoryMB = flagCfg.MaxMemoryMB
	}
	if f.Changed("svg-max-paths") {
		cfg.SVGMaxPaths = flagCfg.SVGMaxPaths
	}
	if f.Changed("db") {
		cfg.DBPath = flagCfg.DBPath
	}
	if f.Changed("resume") {
		cfg.Resume = flagCfg.Resume
	}
	if f.Changed("cache") {
		cfg.CacheEnabled = flagCfg.CacheEnabled
	}
	if f.Changed("cache-dir") {
		cfg.CacheDir = flagCfg.CacheDir
	}
	if f.Changed("avifenc") {
		cfg.AvifencPath = flagCfg.AvifencPath
	}
	if f.Changed("rembg") {
		cfg.RembgPath = flagCfg.RembgPath
	}
	cfg.Verbose = flagCfg.Verbose
	cfg.NoProgress = flagCfg.NoProgress
}

// parseResize разбирает строку вида "800x600", "800x" или "x600".
func parseResize(spec string) (width, height int, err error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(spec)), "x", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: ожидается WxH, получено %q", resize.ErrInvalidOptions, spec)
	}

	parse := func(s string) (int, error) {
		if s == "" {
			return 0, nil
		}
		n, perr := strconv.Atoi(s)
		if perr != nil || n <= 0 {
			return 0, fmt.Errorf("%w: некорректный размер %q", resize.ErrInvalidOptions, s)
		}
		return n, nil
	}

	if width, err = parse(parts[0]); err != nil {
		return 0, 0, err
	}
	if height, err = parse(parts[1]); err != nil {
		return 0, 0, err
	}
	if width == 0 && height == 0 {
		return 0, 0, fmt.Errorf("%w: хотя бы один из размеров должен быть задан", resize.ErrInvalidOptions)
	}
	return width, height, nil
}

// runConvert выполняет основную логику конвертации.
func runConvert(cmd *cobra.Command, args []string) error {
	startTime := time.Now()

	cfg, formatsExplicit, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Сохранение пресета работает и без входных файлов
	if flagSavePreset != "" {
		path, serr := config.SavePreset(flagSavePreset, cfg)
		if serr != nil {
			return serr
		}
		fmt.Printf("✅ Пресет '%s' сохранён: %s\n", flagSavePreset, path)
		if len(args) == 0 {
			return nil
		}
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("ошибка конфигурации: %w", err)
	}

	// Только удаление фона: форматы не запрашивались явно
	removalOnly := cfg.RemoveBackground && !formatsExplicit

	// Целевой размер разбирается заранее
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

	// Создаём контекст с обработкой сигналов
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Обработка сигналов завершения
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\n⚠️  Получен сигнал завершения, останавливаем...")
		cancel()
	}()

	// Проверяем возможности до начала работы
	reg := capability.Detect(cfg.AvifencPath, cfg.RembgPath)
	if cfg.Verbose {
		for _, e := range reg.All() {
			if e.Status.Available && e.Status.Path != "" {
				fmt.Printf("📦 Найден %s: %s (версия %s)\n",
					e.Capability, e.Status.Path, e.Status.Version)
			}
		}
	}
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

	// Считаем файлы для прогресса и плана
	scan := scanner.New(cfg.Inputs, cfg.Recursive)
	count, err := scan.CountFiles()
	if err != nil {
		return err
	}
	if count == 0 {
		fmt.Println("Файлы для обработки не найдены.")
		return nil
	}

	perFile := int64(len(cfg.Formats))
	if removalOnly {
		perFile = 1
	}
	total := count * perFile

	if cfg.DryRun {
		return runDryRun(ctx, cfg, scan, removalOnly)
	}

	// Инициализируем историю
	var store *storage.Storage
	if cfg.HistoryEnabled {
		store, err = storage.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("не удалось инициализировать БД: %w", err)
		}
		defer func() { _ = store.Close() }()

		// Очищаем прерванные записи
		cleaned, cerr := store.CleanupInProgress()
		if cerr != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Не удалось очистить in_progress: %v\n", cerr)
		} else if cleaned > 0 {
			fmt.Printf("🧹 Очищено %d прерванных записей\n", cleaned)
		}
	} else if cfg.Resume {
		return fmt.Errorf("--resume требует включённой истории (уберите --no-history)")
	}

	// Кэш результатов
	cacheDir := cfg.CacheDir
	if cacheDir == "" {
		cacheDir = cache.DefaultDir()
	}
	resultCache, err := cache.New(cacheDir, cfg.CacheEnabled)
	if err != nil {
		return fmt.Errorf("не удалось инициализировать кэш: %w", err)
	}

	pipe := pipeline.New(reg)
	bar := progress.New(progress.Options{Total: total, Disabled: cfg.NoProgress})

	// Выводим параметры
	fmt.Printf("🚀 Запуск конвертации:\n")
	fmt.Printf("   Вход: %s\n", strings.Join(cfg.Inputs, ", "))
	outDesc := cfg.OutputDir
	if outDesc == "" {
		outDesc = "рядом с исходниками"
	}
	fmt.Printf("   Выход: %s\n", outDesc)
	if removalOnly {
		fmt.Printf("   Операция: удаление фона\n")
	} else {
		fmt.Printf("   Форматы: %s (качество: %d)\n", formatList(cfg.Formats), cfg.Quality)
	}
	if cfg.ResizeWidth > 0 || cfg.ResizeHeight > 0 {
		fmt.Printf("   Размер: %s\n", resizeDesc(cfg))
	}
	if targetBytes > 0 {
		fmt.Printf("   Целевой размер: %s\n", stats.FormatBytes(targetBytes))
	}
	if cfg.Preset != "" {
		fmt.Printf("   Пресет: %s\n", cfg.Preset)
	}
	fmt.Printf("   Файлов: %d, воркеров: %d\n", count, cfg.Workers)
	fmt.Println()

	// Запускаем сканирование и раздачу задач
	files, errCh := scan.Scan(ctx)
	go func() {
		for werr := range errCh {
			bar.WriteMessage("⚠️  %v\n", werr)
		}
	}()

	tasks := make(chan pipeline.Task)
	go func() {
		defer close(tasks)
		for file := range files {
			for _, task := range buildTasks(cfg, file.Path, removalOnly, targetBytes) {
				select {
				case tasks <- task:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	pool := worker.New(pipe, worker.Options{
		Workers:     cfg.Workers,
		MaxMemoryMB: cfg.MaxMemoryMB,
		Progress:    bar,
		Store:       store,
		Cache:       resultCache,
		Resume:      cfg.Resume,
		ParamsHash:  cfg.ParamsHash(),
		Verbose:     cfg.Verbose,
	})

	summary, failures := pool.Process(ctx, tasks)
	bar.Finish()

	// Выводим результаты
	fmt.Println()
	fmt.Printf("📊 Результаты:\n")
	fmt.Printf("   Всего задач: %d\n", summary.Total)
	fmt.Printf("   Успешно: %d\n", summary.Processed)
	fmt.Printf("   Пропущено: %d\n", summary.Skipped)
	fmt.Printf("   Ошибок: %d\n", summary.Failed)
	if summary.OriginalBytes > 0 {
		fmt.Printf("   Размер: %s -> %s (экономия %.1f%%)\n",
			stats.FormatBytes(summary.OriginalBytes),
			stats.FormatBytes(summary.ResultBytes),
			summary.SavedPercent())
	}
	fmt.Printf("   Время: %s\n", time.Since(startTime).Round(time.Millisecond))

	if ctx.Err() != nil {
		return fmt.Errorf("конвертация прервана")
	}
	if summary.Failed > 0 {
		// Ошибка возможностей поднимается классом выше, чтобы код
		// завершения отличал её от прочих
		for _, f := range failures {
			if errors.Is(f.Err, capability.ErrMissingCapability) {
				return fmt.Errorf("завершено с %d ошибками: %w", summary.Failed, f.Err)
			}
		}
		return fmt.Errorf("завершено с %d ошибками", summary.Failed)
	}

	return nil
}

// buildTasks строит задачи для одного файла: по одной на формат либо
// одну задачу удаления фона.
func buildTasks(cfg *config.Config, srcPath string, removalOnly bool, targetBytes int64) []pipeline.Task {
	if removalOnly {
		return []pipeline.Task{{
			SrcPath:          srcPath,
			OutputDir:        cfg.OutputDir,
			RemoveBackground: true,
		}}
	}

	multi := len(cfg.Formats) > 1
	tasks := make([]pipeline.Task, 0, len(cfg.Formats))
	for _, f := range cfg.Formats {
		tasks = append(tasks, pipeline.Task{
			SrcPath:          srcPath,
			OutputDir:        cfg.OutputDir,
			Format:           f,
			Quality:          cfg.Quality,
			Resize:           cfg.ResizeOptions(),
			CustomName:       cfg.CustomName,
			MultiFormat:      multi,
			KeepMetadata:     cfg.KeepMetadata,
			MaxPaths:         cfg.SVGMaxPaths,
			RemoveBackground: cfg.RemoveBackground,
			TargetBytes:      targetBytes,
		})
	}
	return tasks
}

// runDryRun печатает план без записи файлов.
func runDryRun(ctx context.Context, cfg *config.Config, scan *scanner.Scanner, removalOnly bool) error {
	fmt.Println("📋 План конвертации (dry-run, файлы не записываются):")

	files, errCh := scan.Scan(ctx)
	go func() {
		for werr := range errCh {
			fmt.Fprintf(os.Stderr, "⚠️  %v\n", werr)
		}
	}()

	planned := 0
	for file := range files {
		outDir := cfg.OutputDir
		if outDir == "" {
			outDir = filepath.Dir(file.Path)
		}
		if removalOnly {
			fmt.Printf("   %s -> %s\n", file.Path, output.NoBackgroundPath(file.Path, outDir))
			planned++
			continue
		}
		multi := len(cfg.Formats) > 1
		for _, f := range cfg.Formats {
			dst := output.BuildDstPath(file.Path, outDir, f, cfg.CustomName, multi)
			fmt.Printf("   %s -> %s\n", file.Path, dst)
			planned++
		}
	}

	fmt.Printf("\n📋 Запланировано задач: %d\n", planned)
	return ctx.Err()
}

// formatList возвращает имена форматов через запятую.
func formatList(formats []imageio.Format) string {
	names := make([]string, 0, len(formats))
	for _, f := range formats {
		names = append(names, f.String())
	}
	return strings.Join(names, ", ")
}

// resizeDesc описывает параметры изменения размера для вывода.
func resizeDesc(cfg *config.Config) string {
	w, h := "auto", "auto"
	if cfg.ResizeWidth > 0 {
		w = strconv.Itoa(cfg.ResizeWidth)
	}
	if cfg.ResizeHeight > 0 {
		h = strconv.Itoa(cfg.ResizeHeight)
	}
	desc := w + "x" + h
	if !cfg.KeepAspect {
		desc += " (без сохранения пропорций)"
	}
	return desc
}

// newVersionCmd создаёт команду version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("imgpilot %s (built %s)\n", Version, BuildTime)
		},
	}
}

// newConfigCmd создаёт команду config.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Работа с файлом конфигурации",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "example",
		Short: "Вывести пример конфигурационного файла",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Print(config.GenerateExampleConfig())
		},
	})

	return cmd
}

// exitCode сопоставляет класс ошибки коду завершения процесса:
// 2 - некорректные входные данные, 3 - недоступная возможность,
// 1 - всё остальное.
func exitCode(err error) int {
	switch {
	case errors.Is(err, capability.ErrMissingCapability):
		return 3
	case errors.Is(err, imageio.ErrUnsupportedFormat),
		errors.Is(err, imageio.ErrInvalidImage),
		errors.Is(err, resize.ErrInvalidOptions),
		errors.Is(err, optimize.ErrInvalidTarget),
		errors.Is(err, optimize.ErrFormatNotTunable):
		return 2
	}
	return 1
}

// Execute запускает CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		// Не выводим ошибку, cobra уже вывела
		os.Exit(exitCode(err))
	}
}

/*
Возможные расширения:
- Добавить команду retry для повторной обработки failed из истории
- Добавить экспорт итоговой статистики в JSON
- Добавить фильтр по минимальному размеру исходника
*/
