package vectorize

import "math"

// mooreOffsets - соседи пикселя по часовой стрелке, начиная с запада.
var mooreOffsets = [8][2]int{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

// findContours возвращает внешние контуры связных компонент карты
// границ в порядке обнаружения. Внутренние границы не трассируются:
// после обхода компонента помечается пройденной целиком. Поиск
// останавливается, как только набрано maxPaths контуров.
func findContours(edges *edgeMap, maxPaths int) [][]Point {
	visited := make([]bool, len(edges.pix))
	var contours [][]Point

	for y := 0; y < edges.h; y++ {
		for x := 0; x < edges.w; x++ {
			if !edges.at(x, y) || visited[y*edges.w+x] {
				continue
			}

			contour := traceBoundary(edges, x, y)
			markComponent(edges, visited, x, y)

			if len(contour) >= 2 {
				contours = append(contours, contour)
				if len(contours) >= maxPaths {
					return contours
				}
			}
		}
	}
	return contours
}

// traceBoundary обходит внешнюю границу компоненты по Муру, двигаясь
// по часовой стрелке. Стартовый пиксель найден построчным
// сканированием, поэтому его западный сосед гарантированно фон.
func traceBoundary(edges *edgeMap, startX, startY int) []Point {
	start := Point{startX, startY}
	contour := []Point{start}
	cur := start

	// Осмотр начинается сразу после направления возврата (запад)
	searchDir := 1

	// Граница компоненты не длиннее четырёх обходов всех пикселей
	limit := 4 * edges.w * edges.h
	for step := 0; step < limit; step++ {
		found := -1
		for i := 0; i < 8; i++ {
			d := (searchDir + i) % 8
			nx := cur.X + mooreOffsets[d][0]
			ny := cur.Y + mooreOffsets[d][1]
			if edges.at(nx, ny) {
				cur = Point{nx, ny}
				found = d
				break
			}
		}

		if found < 0 {
			break // изолированный пиксель
		}
		if cur == start {
			break
		}

		contour = append(contour, cur)
		// Следующий осмотр начинается за пикселем возврата
		searchDir = (found + 5) % 8
	}

	return contour
}

// markComponent помечает все пиксели связной компоненты пройденными.
func markComponent(edges *edgeMap, visited []bool, x, y int) {
	stack := []Point{{x, y}}
	visited[y*edges.w+x] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := p.X+dx, p.Y+dy
				if !edges.at(nx, ny) {
					continue
				}
				idx := ny*edges.w + nx
				if visited[idx] {
					continue
				}
				visited[idx] = true
				stack = append(stack, Point{nx, ny})
			}
		}
	}
}

// simplifyPath упрощает ломаную алгоритмом Дугласа-Пекера: точки,
// отклоняющиеся от хорды меньше чем на epsilon, отбрасываются.
func simplifyPath(points []Point, epsilon float64) []Point {
	if len(points) < 3 {
		return points
	}

	first, last := points[0], points[len(points)-1]
	maxDist := 0.0
	index := 0
	for i := 1; i < len(points)-1; i++ {
		if d := pointLineDistance(points[i], first, last); d > maxDist {
			maxDist = d
			index = i
		}
	}

	if maxDist <= epsilon {
		return []Point{first, last}
	}

	left := simplifyPath(points[:index+1], epsilon)
	right := simplifyPath(points[index:], epsilon)

	result := make([]Point, 0, len(left)+len(right)-1)
	result = append(result, left[:len(left)-1]...)
	return append(result, right...)
}

// pointLineDistance возвращает расстояние от точки до прямой ab.
func pointLineDistance(p, a, b Point) float64 {
	dx := float64(b.X - a.X)
	dy := float64(b.Y - a.Y)

	if dx == 0 && dy == 0 {
		return math.Hypot(float64(p.X-a.X), float64(p.Y-a.Y))
	}

	num := math.Abs(dy*float64(p.X) - dx*float64(p.Y) +
		float64(b.X)*float64(a.Y) - float64(b.Y)*float64(a.X))
	return num / math.Hypot(dx, dy)
}

/*
Возможные расширения:
- Критерий остановки Джейкоба для самопересекающихся контуров
- Отбрасывание контуров короче настраиваемого минимума
*/
