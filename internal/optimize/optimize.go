// Package optimize подбирает качество кодирования под целевой размер
// файла двоичным поиском. Поиск работает через функцию измерения,
// поэтому ядро не зависит от конкретных кодеков.
package optimize

import (
	"errors"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/ErickHdzV/ImgPilot/internal/convert"
	"github.com/ErickHdzV/ImgPilot/internal/imageio"
)

var (
	// ErrInvalidTarget - целевой размер отсутствует или не положителен.
	ErrInvalidTarget = errors.New("некорректный целевой размер")

	// ErrFormatNotTunable - размер результата в этом формате не
	// управляется параметром качества.
	ErrFormatNotTunable = errors.New("формат не поддерживает подбор качества")
)

const (
	// MinQuality - нижняя граница поиска.
	MinQuality = 1
	// MaxQuality - верхняя граница поиска.
	MaxQuality = 100
)

// MeasureFunc возвращает размер результата в байтах при заданном
// качестве.
type MeasureFunc func(quality int) (int64, error)

// Choice - итог подбора качества.
type Choice struct {
	// Quality - выбранное качество.
	Quality int

	// Bytes - размер результата при этом качестве.
	Bytes int64

	// Fits - размер уложился в целевой. false означает, что даже
	// минимальное качество даёт файл больше целевого.
	Fits bool
}

// Search подбирает максимальное качество, при котором размер результата
// не превышает target. Классический двоичный поиск по диапазону 1-100,
// не более семи измерений. Если даже минимальное качество не
// укладывается в target, возвращается качество 1 с Fits=false -
// вызывающий решает, принимать ли результат.
func Search(target int64, measure MeasureFunc) (Choice, error) {
	if target <= 0 {
		return Choice{}, fmt.Errorf("%w: %d", ErrInvalidTarget, target)
	}

	lo, hi := MinQuality, MaxQuality
	best := Choice{Quality: -1}
	var lowest Choice

	for lo <= hi {
		mid := (lo + hi) / 2
		size, err := measure(mid)
		if err != nil {
			return Choice{}, fmt.Errorf("не удалось измерить размер при качестве %d: %w", mid, err)
		}
		if size <= target {
			best = Choice{Quality: mid, Bytes: size, Fits: true}
			lo = mid + 1
		} else {
			lowest = Choice{Quality: mid, Bytes: size}
			hi = mid - 1
		}
	}

	if best.Quality < 0 {
		// Ни одно качество не прошло; последнее измерение было при
		// минимальном качестве
		return lowest, nil
	}
	return best, nil
}

// MeasureEncoded возвращает функцию измерения для изображения и
// формата. Форматы без управляемого качества отклоняются до запуска
// поиска.
func MeasureEncoded(img image.Image, format imageio.Format) (MeasureFunc, error) {
	switch format {
	case imageio.FormatJPEG, imageio.FormatWebP:
		return func(q int) (int64, error) {
			return convert.EncodedSize(img, format, q)
		}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrFormatNotTunable, format)
	}
}

// ParseTargetSize разбирает размер вида "500K", "2M", "1G", "200KB"
// или просто число байт. Суффиксы двоичные (K = 1024).
func ParseTargetSize(s string) (int64, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	if v == "" {
		return 0, fmt.Errorf("%w: пустая строка", ErrInvalidTarget)
	}
	v = strings.TrimSuffix(v, "B")

	mult := int64(1)
	switch {
	case strings.HasSuffix(v, "K"):
		mult = 1 << 10
		v = strings.TrimSuffix(v, "K")
	case strings.HasSuffix(v, "M"):
		mult = 1 << 20
		v = strings.TrimSuffix(v, "M")
	case strings.HasSuffix(v, "G"):
		mult = 1 << 30
		v = strings.TrimSuffix(v, "G")
	}

	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTarget, s)
	}
	return n * mult, nil
}
