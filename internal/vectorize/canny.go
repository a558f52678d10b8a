package vectorize

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// blurSigma соответствует гауссову ядру 5x5 с автоматической сигмой.
const blurSigma = 1.1

// edgeMap - бинарная карта границ изображения.
type edgeMap struct {
	w, h int
	pix  []bool
}

// at возвращает значение пикселя; точки вне карты считаются фоном.
func (m *edgeMap) at(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	return m.pix[y*m.w+x]
}

// cannyEdges строит карту границ алгоритмом Канни: оттенки серого,
// гауссово размытие, градиенты Собеля, подавление не-максимумов и
// гистерезис по двум порогам.
func cannyEdges(img image.Image, low, high int) *edgeMap {
	gray := imaging.Blur(imaging.Grayscale(img), blurSigma)

	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	lum := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			// После Grayscale каналы равны, достаточно красного
			lum[y*w+x] = float64(gray.Pix[y*gray.Stride+x*4])
		}
	}

	at := func(x, y int) float64 {
		if x < 0 {
			x = 0
		}
		if y < 0 {
			y = 0
		}
		if x >= w {
			x = w - 1
		}
		if y >= h {
			y = h - 1
		}
		return lum[y*w+x]
	}

	// Градиенты Собеля с квантованием направления на четыре сектора
	mag := make([]float64, w*h)
	dir := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) -
				2*at(x-1, y) + 2*at(x+1, y) -
				at(x-1, y+1) + at(x+1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)

			mag[y*w+x] = math.Hypot(gx, gy)

			angle := math.Atan2(gy, gx) * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}
			switch {
			case angle < 22.5 || angle >= 157.5:
				dir[y*w+x] = 0
			case angle < 67.5:
				dir[y*w+x] = 45
			case angle < 112.5:
				dir[y*w+x] = 90
			default:
				dir[y*w+x] = 135
			}
		}
	}

	magAt := func(x, y int) float64 {
		if x < 0 || y < 0 || x >= w || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	// Подавление не-максимумов вдоль направления градиента
	suppressed := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			m := mag[y*w+x]

			var n1, n2 float64
			switch dir[y*w+x] {
			case 0:
				n1, n2 = magAt(x-1, y), magAt(x+1, y)
			case 45:
				n1, n2 = magAt(x+1, y-1), magAt(x-1, y+1)
			case 90:
				n1, n2 = magAt(x, y-1), magAt(x, y+1)
			default:
				n1, n2 = magAt(x-1, y-1), magAt(x+1, y+1)
			}

			if m >= n1 && m >= n2 {
				suppressed[y*w+x] = m
			}
		}
	}

	// Гистерезис: сильные пиксели становятся границей сразу, слабые -
	// только если связаны с сильными через соседей
	edges := &edgeMap{w: w, h: h, pix: make([]bool, w*h)}
	lowT, highT := float64(low), float64(high)

	var stack []Point
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if suppressed[y*w+x] < highT || edges.pix[y*w+x] {
				continue
			}

			edges.pix[y*w+x] = true
			stack = append(stack[:0], Point{x, y})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						nx, ny := p.X+dx, p.Y+dy
						if nx < 0 || ny < 0 || nx >= w || ny >= h {
							continue
						}
						idx := ny*w + nx
						if edges.pix[idx] || suppressed[idx] < lowT {
							continue
						}
						edges.pix[idx] = true
						stack = append(stack, Point{nx, ny})
					}
				}
			}
		}
	}

	return edges
}

/*
Возможные расширения:
- Настраиваемая сигма размытия
- Раздельные ядра Собеля большего размера для шумных исходников
*/
