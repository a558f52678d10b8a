// Package resize содержит изменение размеров изображений.
package resize

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrInvalidOptions возвращается при некорректных параметрах обработки.
var ErrInvalidOptions = errors.New("некорректные параметры")

// Options задаёт параметры изменения размера. Нулевая ширина или
// высота означает "не задано"; если не заданы обе, изменение размера
// не выполняется.
type Options struct {
	// Width - целевая ширина в пикселях (0 = не задана).
	Width int

	// Height - целевая высота в пикселях (0 = не задана).
	Height int

	// Filter - фильтр ресемплинга (lanczos, bicubic, bilinear, nearest).
	Filter string

	// KeepAspect - сохранять пропорции исходного изображения.
	KeepAspect bool
}

// Requested сообщает, запрошено ли изменение размера вообще.
func (o *Options) Requested() bool {
	return o != nil && (o.Width != 0 || o.Height != 0)
}

// Target возвращает итоговые размеры для исходника srcW x srcH.
//
// С сохранением пропорций: при двух заданных размерах берётся меньший
// из коэффициентов масштабирования и обе стороны округляются вниз,
// поэтому результат целиком помещается в рамку; при одном заданном
// размере вторая сторона масштабируется тем же коэффициентом с
// обычным округлением. Без сохранения пропорций заданные размеры
// берутся как есть, незаданные наследуются от исходника.
//
// Вычисленный неположительный размер - ошибка ErrInvalidOptions.
func (o *Options) Target(srcW, srcH int) (int, int, error) {
	if !o.Requested() {
		return srcW, srcH, nil
	}

	var w, h int
	switch {
	case !o.KeepAspect:
		w, h = o.Width, o.Height
		if w == 0 {
			w = srcW
		}
		if h == 0 {
			h = srcH
		}

	case o.Width != 0 && o.Height != 0:
		widthRatio := float64(o.Width) / float64(srcW)
		heightRatio := float64(o.Height) / float64(srcH)
		ratio := widthRatio
		if heightRatio < ratio {
			ratio = heightRatio
		}
		w = int(float64(srcW) * ratio)
		h = int(float64(srcH) * ratio)

	case o.Width != 0:
		ratio := float64(o.Width) / float64(srcW)
		w = o.Width
		h = int(math.Round(float64(srcH) * ratio))

	default:
		ratio := float64(o.Height) / float64(srcH)
		h = o.Height
		w = int(math.Round(float64(srcW) * ratio))
	}

	if w <= 0 || h <= 0 {
		return 0, 0, fmt.Errorf("%w: вычисленный размер %dx%d должен быть положительным",
			ErrInvalidOptions, w, h)
	}
	return w, h, nil
}

// Apply изменяет размер изображения согласно параметрам.
// Если изменение не запрошено или целевые размеры совпадают с
// исходными, изображение возвращается как есть, без копирования.
func Apply(img image.Image, opts *Options) (image.Image, error) {
	if !opts.Requested() {
		return img, nil
	}

	bounds := img.Bounds()
	w, h, err := opts.Target(bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, err
	}
	if w == bounds.Dx() && h == bounds.Dy() {
		return img, nil
	}

	return imaging.Resize(img, w, h, FilterByName(opts.Filter)), nil
}

// FilterByName возвращает фильтр ресемплинга по имени.
// Неизвестное имя не считается ошибкой: берётся Lanczos
// как фильтр наилучшего качества.
func FilterByName(name string) imaging.ResampleFilter {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "nearest":
		return imaging.NearestNeighbor
	case "bilinear":
		return imaging.Linear
	case "bicubic":
		return imaging.CatmullRom
	default:
		return imaging.Lanczos
	}
}

// FilterNames возвращает имена поддерживаемых фильтров.
func FilterNames() []string {
	return []string{"lanczos", "bicubic", "bilinear", "nearest"}
}

/*
Возможные расширения:
- Масштабирование в процентах от исходного размера
- Умная обрезка (crop по центру внимания)
- Запрет увеличения (only-shrink режим)
*/
