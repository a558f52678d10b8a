package vectorize

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"
)

// squareImage returns a white canvas with a centered black square.
func squareImage(size, margin int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.RGBA{255, 255, 255, 255}
			if x >= margin && x < size-margin && y >= margin && y < size-margin {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func TestTraceSquare(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Simplify: true, Tolerance: 0.02, EdgeLow: 50, EdgeHigh: 150}

	if err := Trace(&buf, squareImage(64, 16), opts); err != nil {
		t.Fatalf("Trace() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, `width="64"`) || !strings.Contains(out, `height="64"`) {
		t.Error("SVG document size does not match the source image")
	}
	if !strings.Contains(out, "fill:white") {
		t.Error("missing white background rect")
	}
	if !strings.Contains(out, "<path") {
		t.Error("square edges produced no paths")
	}
	if !strings.Contains(out, "Z") {
		t.Error("contour paths are not closed")
	}
}

func TestTraceDeterministic(t *testing.T) {
	img := squareImage(48, 12)
	opts := Options{Simplify: true, Tolerance: 0.05, EdgeLow: 50, EdgeHigh: 150}

	var first, second bytes.Buffer
	if err := Trace(&first, img, opts); err != nil {
		t.Fatal(err)
	}
	if err := Trace(&second, img, opts); err != nil {
		t.Fatal(err)
	}
	if first.String() != second.String() {
		t.Error("Trace() output differs between identical runs")
	}
}

func TestTraceMaxPaths(t *testing.T) {
	// several separate squares produce several contours
	img := image.NewRGBA(image.Rect(0, 0, 96, 32))
	for y := 0; y < 32; y++ {
		for x := 0; x < 96; x++ {
			img.Set(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	for _, offset := range []int{8, 40, 72} {
		for y := 8; y < 24; y++ {
			for x := offset; x < offset+16; x++ {
				img.Set(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}

	var unlimited, limited bytes.Buffer
	opts := Options{EdgeLow: 50, EdgeHigh: 150}
	if err := Trace(&unlimited, img, opts); err != nil {
		t.Fatal(err)
	}
	opts.MaxPaths = 1
	if err := Trace(&limited, img, opts); err != nil {
		t.Fatal(err)
	}

	if n := strings.Count(limited.String(), "<path"); n > 1 {
		t.Errorf("MaxPaths=1 emitted %d paths", n)
	}
	if strings.Count(unlimited.String(), "<path") <= strings.Count(limited.String(), "<path") {
		t.Error("path limit did not reduce the output")
	}
}

func TestTraceEmptyImage(t *testing.T) {
	var buf bytes.Buffer
	if err := Trace(&buf, image.NewRGBA(image.Rect(0, 0, 0, 0)), Options{}); err == nil {
		t.Error("Trace() on an empty image should fail")
	}
}

func TestSimplifyPathStraightLine(t *testing.T) {
	points := make([]Point, 11)
	for i := range points {
		points[i] = Point{X: i * 10, Y: 0}
	}

	got := simplifyPath(points, 1.0)
	if len(got) != 2 {
		t.Errorf("simplifyPath(straight line) kept %d points, want 2", len(got))
	}
	if got[0] != points[0] || got[len(got)-1] != points[len(points)-1] {
		t.Error("simplifyPath() must keep the endpoints")
	}
}

func TestSimplifyPathKeepsCorners(t *testing.T) {
	// L-shape: the corner point is essential
	points := []Point{{0, 0}, {50, 0}, {100, 0}, {100, 50}, {100, 100}}

	got := simplifyPath(points, 2.0)
	var hasCorner bool
	for _, p := range got {
		if p == (Point{100, 0}) {
			hasCorner = true
		}
	}
	if !hasCorner {
		t.Errorf("simplifyPath() dropped the corner point: %v", got)
	}
}

func TestArcLength(t *testing.T) {
	points := []Point{{0, 0}, {3, 4}, {3, 14}}
	if got := arcLength(points); got != 15 {
		t.Errorf("arcLength() = %v, want 15", got)
	}
	if got := arcLength([]Point{{5, 5}}); got != 0 {
		t.Errorf("arcLength(single point) = %v, want 0", got)
	}
}

func TestPathData(t *testing.T) {
	got := pathData([]Point{{1, 2}, {3, 4}})
	want := "M 1 2 L 3 4 Z"
	if got != want {
		t.Errorf("pathData() = %q, want %q", got, want)
	}
}
