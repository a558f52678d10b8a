// Package binfinder отвечает за поиск внешних инструментов в системе.
package binfinder

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Tool описывает искомый внешний инструмент.
type Tool struct {
	// Name - имя бинарника без расширения (например, "avifenc").
	Name string

	// CustomPath - пользовательский путь из флага или конфигурации.
	CustomPath string

	// EnvVar - имя переменной окружения с путём к бинарнику.
	EnvVar string

	// VersionArg - аргумент для проверки работоспособности.
	VersionArg string

	// Hint - подсказка по установке для сообщения об ошибке.
	Hint string
}

// Info содержит информацию о найденном инструменте.
type Info struct {
	// Path - абсолютный путь к бинарнику.
	Path string

	// Version - версия из вывода проверочной команды.
	Version string
}

// Avifenc возвращает описание кодировщика AVIF из libavif.
func Avifenc(customPath string) *Tool {
	return &Tool{
		Name:       "avifenc",
		CustomPath: customPath,
		EnvVar:     "IMGPILOT_AVIFENC",
		VersionArg: "--version",
		Hint:       "установите libavif (apt install libavif-bin / brew install libavif)",
	}
}

// Rembg возвращает описание инструмента удаления фона rembg.
func Rembg(customPath string) *Tool {
	return &Tool{
		Name:       "rembg",
		CustomPath: customPath,
		EnvVar:     "IMGPILOT_REMBG",
		VersionArg: "--version",
		Hint:       `установите rembg (pip install "rembg[cli]")`,
	}
}

// Find ищет инструмент в следующем порядке:
// 1. CustomPath (если задан)
// 2. Переменная окружения EnvVar
// 3. PATH
// 4. Рядом с исполняемым файлом в ./bin/<os-arch>/
func (t *Tool) Find() (*Info, error) {
	var candidates []string

	// 1. Пользовательский путь
	if t.CustomPath != "" {
		candidates = append(candidates, t.CustomPath)
	}

	// 2. Переменная окружения
	if envPath := os.Getenv(t.EnvVar); envPath != "" {
		candidates = append(candidates, envPath)
	}

	// 3. PATH
	if pathBin, err := exec.LookPath(t.Name); err == nil {
		candidates = append(candidates, pathBin)
	}

	// 4. Рядом с бинарником
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		platformDir := fmt.Sprintf("%s-%s", runtime.GOOS, runtime.GOARCH)

		localPaths := []string{
			filepath.Join(execDir, "bin", platformDir, t.binaryName()),
			filepath.Join(execDir, "bin", t.binaryName()),
			filepath.Join(execDir, t.binaryName()),
		}
		candidates = append(candidates, localPaths...)
	}

	for _, path := range candidates {
		if info, err := t.check(path); err == nil {
			return info, nil
		}
	}

	return nil, fmt.Errorf("%s не найден. Проверьте:\n"+
		"  1. Установлен ли инструмент в системе (%s)\n"+
		"  2. Установлена ли переменная окружения %s\n"+
		"  3. Находится ли %s рядом с утилитой в ./bin/<os-arch>/",
		t.Name, t.Hint, t.EnvVar, t.Name)
}

// check проверяет, является ли путь рабочим инструментом.
func (t *Tool) check(path string) (*Info, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("файл не найден: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить абсолютный путь: %w", err)
	}

	// Пробуем получить версию
	cmd := exec.Command(absPath, t.VersionArg)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("не удалось выполнить %s %s: %w", t.Name, t.VersionArg, err)
	}

	return &Info{
		Path:    absPath,
		Version: parseVersion(t.Name, string(output)),
	}, nil
}

// parseVersion извлекает версию из первой строки вывода инструмента.
// Примеры: "avifenc 1.0.1", "rembg, version 2.0.57".
func parseVersion(name, output string) string {
	line := output
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)

	for _, prefix := range []string{name + ", version ", name + "-", name + " "} {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimPrefix(line, prefix)
		}
	}

	return line
}

// binaryName возвращает имя бинарника для текущей ОС.
func (t *Tool) binaryName() string {
	if runtime.GOOS == "windows" {
		return t.Name + ".exe"
	}
	return t.Name
}

/*
Возможные расширения:
- Кэширование результата поиска между запусками
- Проверка минимальной версии инструмента
- Автоматическое скачивание portable сборок
*/
