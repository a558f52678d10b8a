package convert

import (
	"fmt"
	"image"
	"io"

	"github.com/ErickHdzV/ImgPilot/internal/vectorize"
)

// Пороги детектора границ Канни для трассировки.
const (
	svgEdgeLow  = 50
	svgEdgeHigh = 150
)

// encodeSVG трассирует растровое изображение в векторные контуры.
// Качество отображается в допуск упрощения обратно: чем оно ниже,
// тем грубее аппроксимируются контуры и тем меньше итоговый файл.
func encodeSVG(w io.Writer, img image.Image, opts Options) error {
	// tolerance = (100 - quality) / 50, в пределах [0.5, 2.0]
	tolerance := float64(100-clampQuality(opts.Quality)) / 50.0
	if tolerance < 0.5 {
		tolerance = 0.5
	}
	if tolerance > 2.0 {
		tolerance = 2.0
	}

	traceOpts := vectorize.Options{
		Simplify:  true,
		Tolerance: tolerance,
		EdgeLow:   svgEdgeLow,
		EdgeHigh:  svgEdgeHigh,
		MaxPaths:  opts.MaxPaths,
	}

	if err := vectorize.Trace(w, img, traceOpts); err != nil {
		return fmt.Errorf("%w: svg: %v", ErrEncode, err)
	}
	return nil
}

/*
Возможные расширения:
- Пороги Канни из конфигурации
- Режим встраивания растра в SVG через base64 без трассировки
*/
