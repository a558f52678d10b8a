// Package vectorize содержит трассировку растровых изображений в SVG.
//
// Изображение переводится в оттенки серого, размывается, по карте
// границ Канни находятся внешние контуры связных компонент, каждый
// контур упрощается алгоритмом Дугласа-Пекера и записывается в SVG
// замкнутым чёрным путём на белом фоне. Результат детерминирован для
// одинаковых входа и параметров.
package vectorize

import (
	"fmt"
	"image"
	"io"
	"math"
	"strings"

	svg "github.com/ajstarks/svgo"
)

// DefaultMaxPaths ограничивает число контуров в выходном файле,
// когда предел не задан явно.
const DefaultMaxPaths = 1000

// Options задаёт параметры трассировки.
type Options struct {
	// Simplify - упрощать контуры перед записью.
	Simplify bool

	// Tolerance - допуск упрощения: эпсилон Дугласа-Пекера равен
	// Tolerance, умноженному на длину контура.
	Tolerance float64

	// EdgeLow и EdgeHigh - нижний и верхний пороги детектора Канни.
	EdgeLow, EdgeHigh int

	// MaxPaths - максимальное число контуров (0 = DefaultMaxPaths).
	MaxPaths int
}

// Point - точка контура в пиксельных координатах.
type Point struct {
	X, Y int
}

// Trace трассирует изображение и записывает SVG в w.
// Размеры документа совпадают с размерами исходника; обработка
// останавливается, как только набрано MaxPaths контуров.
func Trace(w io.Writer, img image.Image, opts Options) error {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return fmt.Errorf("пустое изображение %dx%d", width, height)
	}

	maxPaths := opts.MaxPaths
	if maxPaths <= 0 {
		maxPaths = DefaultMaxPaths
	}

	edges := cannyEdges(img, opts.EdgeLow, opts.EdgeHigh)
	contours := findContours(edges, maxPaths)

	canvas := svg.New(w)
	canvas.Start(width, height)
	canvas.Rect(0, 0, width, height, "fill:white")

	for _, contour := range contours {
		if opts.Simplify {
			epsilon := opts.Tolerance * arcLength(contour)
			if epsilon > 0 {
				contour = simplifyPath(contour, epsilon)
			}
		}
		if len(contour) < 2 {
			continue
		}
		canvas.Path(pathData(contour), "fill:black;stroke:none")
	}

	canvas.End()
	return nil
}

// arcLength возвращает длину ломаной по точкам контура (незамкнутой).
func arcLength(points []Point) float64 {
	var length float64
	for i := 1; i < len(points); i++ {
		dx := float64(points[i].X - points[i-1].X)
		dy := float64(points[i].Y - points[i-1].Y)
		length += math.Hypot(dx, dy)
	}
	return length
}

// pathData собирает атрибут d замкнутого пути из точек контура.
func pathData(points []Point) string {
	var b strings.Builder
	for i, p := range points {
		if i == 0 {
			fmt.Fprintf(&b, "M %d %d", p.X, p.Y)
		} else {
			fmt.Fprintf(&b, " L %d %d", p.X, p.Y)
		}
	}
	b.WriteString(" Z")
	return b.String()
}

/*
Возможные расширения:
- Цветная трассировка с квантизацией палитры
- Кривые Безье вместо ломаных
- Трассировка внутренних контуров (отверстий)
*/
