// Package capability содержит реестр опциональных возможностей.
//
// Часть форматов и операций зависит от внешних инструментов, которых
// может не быть в системе. Реестр собирается один раз при старте и
// передаётся явно: пакетного глобального состояния нет, проверок при
// импорте не выполняется, а запрос недоступной возможности даёт
// понятную ошибку до любых операций с файлами.
package capability

import (
	"errors"
	"fmt"

	"github.com/ErickHdzV/ImgPilot/internal/binfinder"
)

// ErrMissingCapability возвращается, когда операция требует
// недоступной в этой системе возможности.
var ErrMissingCapability = errors.New("возможность недоступна")

// Capability определяет опциональную возможность. Набор закрыт:
// новая возможность добавляется константой и веткой в Detect.
type Capability int

const (
	// CapAVIFEncode - кодирование AVIF через внешний avifenc.
	CapAVIFEncode Capability = iota
	// CapBackgroundRemoval - удаление фона через внешний rembg.
	CapBackgroundRemoval
	// CapSVGTrace - векторная трассировка в SVG (встроенная).
	CapSVGTrace
)

// String возвращает каноническое имя возможности.
func (c Capability) String() string {
	switch c {
	case CapAVIFEncode:
		return "avif-encode"
	case CapBackgroundRemoval:
		return "background-removal"
	case CapSVGTrace:
		return "svg-trace"
	}
	return "unknown"
}

// Status содержит результат проверки одной возможности.
type Status struct {
	// Available - доступна ли возможность.
	Available bool

	// Path - абсолютный путь к внешнему инструменту (если есть).
	Path string

	// Version - версия инструмента или "builtin".
	Version string

	// Reason - причина недоступности с подсказкой по установке.
	Reason string
}

// Entry - пара возможность/статус для отчётов.
type Entry struct {
	// Capability - сама возможность.
	Capability Capability

	// Status - её статус.
	Status Status
}

// Registry хранит статусы всех возможностей.
type Registry struct {
	statuses map[Capability]Status
}

// NewRegistry создаёт реестр из готовых статусов. Используется в
// тестах и окружениях, где автоматическое обнаружение нежелательно.
func NewRegistry(statuses map[Capability]Status) *Registry {
	copied := make(map[Capability]Status, len(statuses))
	for c, s := range statuses {
		copied[c] = s
	}
	return &Registry{statuses: copied}
}

// Detect проверяет доступность всех возможностей.
// avifencPath и rembgPath - пользовательские пути к инструментам из
// конфигурации; пустая строка включает автоматический поиск.
func Detect(avifencPath, rembgPath string) *Registry {
	statuses := make(map[Capability]Status)

	if info, err := binfinder.Avifenc(avifencPath).Find(); err == nil {
		statuses[CapAVIFEncode] = Status{Available: true, Path: info.Path, Version: info.Version}
	} else {
		statuses[CapAVIFEncode] = Status{Reason: err.Error()}
	}

	if info, err := binfinder.Rembg(rembgPath).Find(); err == nil {
		statuses[CapBackgroundRemoval] = Status{Available: true, Path: info.Path, Version: info.Version}
	} else {
		statuses[CapBackgroundRemoval] = Status{Reason: err.Error()}
	}

	// Трассировка SVG встроена и внешних инструментов не требует.
	statuses[CapSVGTrace] = Status{Available: true, Version: "builtin"}

	return &Registry{statuses: statuses}
}

// Has сообщает, доступна ли возможность.
func (r *Registry) Has(c Capability) bool {
	return r.statuses[c].Available
}

// Get возвращает статус возможности.
func (r *Registry) Get(c Capability) Status {
	return r.statuses[c]
}

// Require возвращает ошибку ErrMissingCapability, если возможность
// недоступна. Вызывается до открытия входных файлов.
func (r *Registry) Require(c Capability) error {
	st, ok := r.statuses[c]
	if ok && st.Available {
		return nil
	}

	reason := st.Reason
	if reason == "" {
		reason = "возможность не проверялась"
	}
	return fmt.Errorf("%w: %s. %s", ErrMissingCapability, c, reason)
}

// All возвращает статусы всех возможностей в каноническом порядке.
func (r *Registry) All() []Entry {
	order := []Capability{CapAVIFEncode, CapBackgroundRemoval, CapSVGTrace}

	entries := make([]Entry, 0, len(order))
	for _, c := range order {
		entries = append(entries, Entry{Capability: c, Status: r.statuses[c]})
	}
	return entries
}

/*
Возможные расширения:
- Повторная проверка по требованию без перезапуска
- Возможности для HEIC/JXL при появлении кодировщиков
*/
