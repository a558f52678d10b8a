package optimize

import (
	"errors"
	"image"
	"testing"

	"github.com/ErickHdzV/ImgPilot/internal/imageio"
)

// linearMeasure returns a monotonic measure function: size = quality * step.
func linearMeasure(step int64) MeasureFunc {
	return func(quality int) (int64, error) {
		return int64(quality) * step, nil
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name     string
		target   int64
		measure  MeasureFunc
		wantQual int
		wantFits bool
	}{
		{
			name:     "exact boundary",
			target:   500,
			measure:  linearMeasure(10),
			wantQual: 50,
			wantFits: true,
		},
		{
			name:     "everything fits picks max quality",
			target:   10000,
			measure:  linearMeasure(10),
			wantQual: 100,
			wantFits: true,
		},
		{
			name:     "nothing fits falls back to min quality",
			target:   5,
			measure:  linearMeasure(10),
			wantQual: 1,
			wantFits: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			choice, err := Search(tt.target, tt.measure)
			if err != nil {
				t.Fatalf("Search() error = %v", err)
			}
			if choice.Quality != tt.wantQual {
				t.Errorf("Search() quality = %d, want %d", choice.Quality, tt.wantQual)
			}
			if choice.Fits != tt.wantFits {
				t.Errorf("Search() fits = %v, want %v", choice.Fits, tt.wantFits)
			}
		})
	}
}

func TestSearchInvalidTarget(t *testing.T) {
	if _, err := Search(0, linearMeasure(10)); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("Search(0) error = %v, want ErrInvalidTarget", err)
	}
	if _, err := Search(-100, linearMeasure(10)); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("Search(-100) error = %v, want ErrInvalidTarget", err)
	}
}

func TestSearchMeasureCount(t *testing.T) {
	var calls int
	measure := func(quality int) (int64, error) {
		calls++
		return int64(quality) * 10, nil
	}

	if _, err := Search(333, measure); err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	// log2(100) rounds up to 7 probes
	if calls > 7 {
		t.Errorf("Search() made %d measurements, want at most 7", calls)
	}
}

func TestMeasureEncoded(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))

	if _, err := MeasureEncoded(img, imageio.FormatJPEG); err != nil {
		t.Errorf("MeasureEncoded(jpeg) error = %v", err)
	}
	if _, err := MeasureEncoded(img, imageio.FormatPNG); !errors.Is(err, ErrFormatNotTunable) {
		t.Errorf("MeasureEncoded(png) error = %v, want ErrFormatNotTunable", err)
	}
	if _, err := MeasureEncoded(img, imageio.FormatICO); !errors.Is(err, ErrFormatNotTunable) {
		t.Errorf("MeasureEncoded(ico) error = %v, want ErrFormatNotTunable", err)
	}
}

func TestParseTargetSize(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"100", 100, false},
		{"500K", 500 * 1024, false},
		{"500KB", 500 * 1024, false},
		{"2M", 2 * 1024 * 1024, false},
		{"2mb", 2 * 1024 * 1024, false},
		{"1G", 1 << 30, false},
		{" 42 ", 42, false},
		{"", 0, true},
		{"0", 0, true},
		{"-5K", 0, true},
		{"12X", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseTargetSize(tt.in)

		if tt.wantErr {
			if !errors.Is(err, ErrInvalidTarget) {
				t.Errorf("ParseTargetSize(%q) error = %v, want ErrInvalidTarget", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTargetSize(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTargetSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
