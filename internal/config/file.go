package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ErickHdzV/ImgPilot/internal/imageio"
)

// FileConfig представляет структуру конфигурационного файла YAML.
// Все поля опциональны - если не указаны, используются значения по умолчанию.
type FileConfig struct {
	// Output - настройки выходных данных.
	Output *OutputConfig `yaml:"output,omitempty"`

	// Resize - настройки изменения размера.
	Resize *ResizeConfig `yaml:"resize,omitempty"`

	// Processing - настройки обработки.
	Processing *ProcessingConfig `yaml:"processing,omitempty"`

	// Paths - настройки путей.
	Paths *PathsConfig `yaml:"paths,omitempty"`
}

// OutputConfig содержит настройки выходных данных.
type OutputConfig struct {
	// Dir - директория для сохранения результатов.
	Dir string `yaml:"dir,omitempty"`

	// Formats - выходные форматы (webp, avif, png, jpeg, ico, svg).
	Formats []string `yaml:"formats,omitempty"`

	// Quality - качество для lossy форматов (0-100).
	Quality int `yaml:"quality,omitempty"`

	// KeepMetadata - переносить EXIF в результат.
	KeepMetadata bool `yaml:"keep_metadata,omitempty"`

	// TargetSize - целевой размер файла ("500K", "2M").
	TargetSize string `yaml:"target_size,omitempty"`
}

// ResizeConfig содержит настройки изменения размера.
type ResizeConfig struct {
	// Width - целевая ширина (0 = не менять).
	Width int `yaml:"width,omitempty"`

	// Height - целевая высота (0 = не менять).
	Height int `yaml:"height,omitempty"`

	// KeepAspect - сохранять пропорции.
	KeepAspect *bool `yaml:"keep_aspect,omitempty"`

	// Filter - фильтр ресемплинга (lanczos, bicubic, bilinear, nearest).
	Filter string `yaml:"filter,omitempty"`
}

// ProcessingConfig содержит настройки обработки.
type ProcessingConfig struct {
	// Workers - количество параллельных воркеров.
	Workers int `yaml:"workers,omitempty"`

	// Recursive - обходить директории рекурсивно.
	Recursive bool `yaml:"recursive,omitempty"`

	// RemoveBackground - удалять фон перед конвертацией.
	RemoveBackground bool `yaml:"remove_background,omitempty"`

	// DryRun - режим симуляции.
	DryRun bool `yaml:"dry_run,omitempty"`

	// Verbose - подробный вывод.
	Verbose bool `yaml:"verbose,omitempty"`

	// NoProgress - отключить прогресс-бар.
	NoProgress bool `yaml:"no_progress,omitempty"`

	// MaxMemoryMB - лимит памяти пула в мегабайтах.
	MaxMemoryMB int `yaml:"max_memory_mb,omitempty"`

	// Cache - кэшировать результаты конвертации.
	Cache bool `yaml:"cache,omitempty"`

	// Resume - пропускать уже сконвертированные файлы.
	Resume bool `yaml:"resume,omitempty"`

	// History - вести историю конвертаций.
	History *bool `yaml:"history,omitempty"`
}

// PathsConfig содержит настройки путей.
type PathsConfig struct {
	// DB - путь к SQLite базе истории.
	DB string `yaml:"db,omitempty"`

	// CacheDir - директория кэша результатов.
	CacheDir string `yaml:"cache_dir,omitempty"`

	// Avifenc - путь к бинарнику avifenc.
	Avifenc string `yaml:"avifenc,omitempty"`

	// Rembg - путь к бинарнику rembg.
	Rembg string `yaml:"rembg,omitempty"`
}

// DefaultConfigPaths возвращает список путей для поиска конфигурационного файла.
// Поиск выполняется в следующем порядке:
// 1. ./imgpilot.yaml (текущая директория)
// 2. ./imgpilot.yml
// 3. ~/.config/imgpilot/config.yaml
// 4. ~/.config/imgpilot/config.yml
func DefaultConfigPaths() []string {
	paths := []string{
		"imgpilot.yaml",
		"imgpilot.yml",
	}

	// Добавляем путь в домашней директории
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "imgpilot", "config.yaml"),
			filepath.Join(home, ".config", "imgpilot", "config.yml"),
		)
	}

	return paths
}

// LoadFromFile загружает конфигурацию из указанного файла.
// Возвращает nil, nil если файл не существует.
func LoadFromFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML в %s: %w", path, err)
	}

	return &fc, nil
}

// SaveToFile сохраняет конфигурацию в YAML файл.
func (fc *FileConfig) SaveToFile(path string) error {
	data, err := yaml.Marshal(fc)
	if err != nil {
		return fmt.Errorf("не удалось сериализовать конфигурацию: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("не удалось записать файл %s: %w", path, err)
	}

	return nil
}

// FindAndLoadConfig ищет и загружает конфигурационный файл из стандартных путей.
// Если configPath указан явно, использует только его.
// Возвращает nil, nil если файл не найден.
func FindAndLoadConfig(configPath string) (*FileConfig, string, error) {
	// Если путь указан явно
	if configPath != "" {
		fc, err := LoadFromFile(configPath)
		if err != nil {
			return nil, "", err
		}
		if fc == nil {
			return nil, "", fmt.Errorf("файл конфигурации не найден: %s", configPath)
		}
		return fc, configPath, nil
	}

	// Ищем в стандартных путях
	for _, path := range DefaultConfigPaths() {
		fc, err := LoadFromFile(path)
		if err != nil {
			return nil, "", err
		}
		if fc != nil {
			return fc, path, nil
		}
	}

	return nil, "", nil
}

// ApplyToConfig применяет настройки из файла к основной конфигурации.
// CLI флаги имеют приоритет над файлом конфигурации, поэтому
// эта функция должна вызываться до парсинга CLI флагов.
func (fc *FileConfig) ApplyToConfig(cfg *Config) error {
	if fc == nil {
		return nil
	}

	// Output
	if fc.Output != nil {
		if fc.Output.Dir != "" {
			cfg.OutputDir = fc.Output.Dir
		}
		if len(fc.Output.Formats) > 0 {
			formats, err := imageio.ParseFormats(fc.Output.Formats)
			if err != nil {
				return fmt.Errorf("недопустимый формат в конфигурации: %w", err)
			}
			cfg.Formats = formats
		}
		if fc.Output.Quality > 0 {
			cfg.Quality = fc.Output.Quality
		}
		if fc.Output.KeepMetadata {
			cfg.KeepMetadata = true
		}
		if fc.Output.TargetSize != "" {
			cfg.TargetSize = fc.Output.TargetSize
		}
	}

	// Resize
	if fc.Resize != nil {
		if fc.Resize.Width > 0 {
			cfg.ResizeWidth = fc.Resize.Width
		}
		if fc.Resize.Height > 0 {
			cfg.ResizeHeight = fc.Resize.Height
		}
		if fc.Resize.KeepAspect != nil {
			cfg.KeepAspect = *fc.Resize.KeepAspect
		}
		if fc.Resize.Filter != "" {
			cfg.ResizeFilter = fc.Resize.Filter
		}
	}

	// Processing
	if fc.Processing != nil {
		if fc.Processing.Workers > 0 {
			cfg.Workers = fc.Processing.Workers
		}
		if fc.Processing.Recursive {
			cfg.Recursive = true
		}
		if fc.Processing.RemoveBackground {
			cfg.RemoveBackground = true
		}
		if fc.Processing.DryRun {
			cfg.DryRun = true
		}
		if fc.Processing.Verbose {
			cfg.Verbose = true
		}
		if fc.Processing.NoProgress {
			cfg.NoProgress = true
		}
		if fc.Processing.MaxMemoryMB > 0 {
			cfg.MaxMemoryMB = fc.Processing.MaxMemoryMB
		}
		if fc.Processing.Cache {
			cfg.CacheEnabled = true
		}
		if fc.Processing.Resume {
			cfg.Resume = true
		}
		if fc.Processing.History != nil {
			cfg.HistoryEnabled = *fc.Processing.History
		}
	}

	// Paths
	if fc.Paths != nil {
		if fc.Paths.DB != "" {
			cfg.DBPath = fc.Paths.DB
		}
		if fc.Paths.CacheDir != "" {
			cfg.CacheDir = fc.Paths.CacheDir
		}
		if fc.Paths.Avifenc != "" {
			cfg.AvifencPath = fc.Paths.Avifenc
		}
		if fc.Paths.Rembg != "" {
			cfg.RembgPath = fc.Paths.Rembg
		}
	}

	return nil
}

// FromConfig строит файловое представление из основной конфигурации.
// Используется при сохранении пользовательских пресетов.
func FromConfig(cfg *Config) *FileConfig {
	formats := make([]string, 0, len(cfg.Formats))
	for _, f := range cfg.Formats {
		formats = append(formats, f.String())
	}

	keepAspect := cfg.KeepAspect
	history := cfg.HistoryEnabled

	return &FileConfig{
		Output: &OutputConfig{
			Dir:          cfg.OutputDir,
			Formats:      formats,
			Quality:      cfg.Quality,
			KeepMetadata: cfg.KeepMetadata,
			TargetSize:   cfg.TargetSize,
		},
		Resize: &ResizeConfig{
			Width:      cfg.ResizeWidth,
			Height:     cfg.ResizeHeight,
			KeepAspect: &keepAspect,
			Filter:     cfg.ResizeFilter,
		},
		Processing: &ProcessingConfig{
			Workers:          cfg.Workers,
			Recursive:        cfg.Recursive,
			RemoveBackground: cfg.RemoveBackground,
			MaxMemoryMB:      cfg.MaxMemoryMB,
			Cache:            cfg.CacheEnabled,
			Resume:           cfg.Resume,
			History:          &history,
		},
		Paths: &PathsConfig{
			DB:       cfg.DBPath,
			CacheDir: cfg.CacheDir,
			Avifenc:  cfg.AvifencPath,
			Rembg:    cfg.RembgPath,
		},
	}
}

// GenerateExampleConfig генерирует пример конфигурационного файла.
func GenerateExampleConfig() string {
	return `# ImgPilot Configuration File
# Все параметры опциональны - если не указаны, используются значения по умолчанию.
# CLI флаги имеют приоритет над этим файлом.

output:
  # Директория для результатов (по умолчанию - рядом с исходником)
  dir: "./converted"
  # Выходные форматы: webp, avif, png, jpeg, ico, svg
  formats:
    - webp
  # Качество для lossy форматов (0-100)
  quality: 80
  # Переносить EXIF в результат
  keep_metadata: false
  # Целевой размер файла: "500K", "2M" (пусто = выключено)
  target_size: ""

resize:
  # Целевые размеры (0 = не менять)
  width: 0
  height: 0
  # Сохранять пропорции
  keep_aspect: true
  # Фильтр ресемплинга: lanczos, bicubic, bilinear, nearest
  filter: lanczos

processing:
  # Количество параллельных воркеров (по умолчанию = CPU cores)
  workers: 8
  # Обходить директории рекурсивно
  recursive: false
  # Удалять фон перед конвертацией (требует rembg)
  remove_background: false
  # Симуляция без реальной конвертации
  dry_run: false
  # Подробный вывод
  verbose: false
  # Отключить прогресс-бар
  no_progress: false
  # Лимит памяти в мегабайтах (0 = без лимита)
  max_memory_mb: 0
  # Кэшировать результаты конвертации
  cache: false
  # Пропускать уже сконвертированные файлы
  resume: false
  # Вести историю конвертаций
  history: true

paths:
  # Путь к SQLite базе истории (по умолчанию ~/.imgpilot/history.db)
  db: ""
  # Директория кэша (по умолчанию ~/.imgpilot/cache)
  cache_dir: ""
  # Путь к бинарнику avifenc (по умолчанию автопоиск)
  avifenc: ""
  # Путь к бинарнику rembg (по умолчанию автопоиск)
  rembg: ""
`
}

/*
Возможные расширения:
- Добавить поддержку TOML формата
- Добавить команду 'config init' для генерации конфига
- Добавить поддержку переменных окружения в конфиге
*/
