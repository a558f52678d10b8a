package resize

import (
	"errors"
	"image"
	"testing"

	"github.com/disintegration/imaging"
)

func TestTarget(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		srcW    int
		srcH    int
		wantW   int
		wantH   int
		wantErr bool
	}{
		{
			name:  "fit into box uses smaller ratio",
			opts:  Options{Width: 200, Height: 200, KeepAspect: true},
			srcW:  1000, srcH: 500,
			wantW: 200, wantH: 100,
		},
		{
			name:  "fit into box portrait source",
			opts:  Options{Width: 200, Height: 200, KeepAspect: true},
			srcW:  500, srcH: 1000,
			wantW: 100, wantH: 200,
		},
		{
			name:  "width only keeps aspect",
			opts:  Options{Width: 200, KeepAspect: true},
			srcW:  1000, srcH: 500,
			wantW: 200, wantH: 100,
		},
		{
			name:  "height only keeps aspect",
			opts:  Options{Height: 100, KeepAspect: true},
			srcW:  1000, srcH: 500,
			wantW: 200, wantH: 100,
		},
		{
			name:  "no aspect uses dimensions verbatim",
			opts:  Options{Width: 300, Height: 700},
			srcW:  1000, srcH: 500,
			wantW: 300, wantH: 700,
		},
		{
			name:  "no aspect missing height falls back to source",
			opts:  Options{Width: 300},
			srcW:  1000, srcH: 500,
			wantW: 300, wantH: 500,
		},
		{
			name:  "no resize requested returns source size",
			opts:  Options{},
			srcW:  1000, srcH: 500,
			wantW: 1000, wantH: 500,
		},
		{
			name:    "negative width is rejected",
			opts:    Options{Width: -10},
			srcW:    1000, srcH: 500,
			wantErr: true,
		},
		{
			name:    "box smaller than one pixel is rejected",
			opts:    Options{Width: 1, Height: 1, KeepAspect: true},
			srcW:    10000, srcH: 5,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h, err := tt.opts.Target(tt.srcW, tt.srcH)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("Target() = %dx%d, want error", w, h)
				}
				if !errors.Is(err, ErrInvalidOptions) {
					t.Errorf("Target() error = %v, want ErrInvalidOptions", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Target() error = %v", err)
			}
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("Target() = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestTargetFitNeverExceedsBox(t *testing.T) {
	opts := Options{Width: 333, Height: 217, KeepAspect: true}

	for _, src := range [][2]int{{1920, 1080}, {1080, 1920}, {500, 500}, {3, 9999}} {
		w, h, err := opts.Target(src[0], src[1])
		if err != nil {
			t.Fatalf("Target(%dx%d) error = %v", src[0], src[1], err)
		}
		if w > opts.Width || h > opts.Height {
			t.Errorf("Target(%dx%d) = %dx%d exceeds box %dx%d",
				src[0], src[1], w, h, opts.Width, opts.Height)
		}
	}
}

func TestApplyIdentity(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))

	got, err := Apply(img, nil)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got != image.Image(img) {
		t.Error("Apply() with nil options should return the image unchanged")
	}

	got, err = Apply(img, &Options{Width: 100, Height: 50})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got != image.Image(img) {
		t.Error("Apply() with matching target size should not copy the image")
	}
}

func TestApplyResizes(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 50))

	got, err := Apply(img, &Options{Width: 40, KeepAspect: true})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	bounds := got.Bounds()
	if bounds.Dx() != 40 || bounds.Dy() != 20 {
		t.Errorf("Apply() = %dx%d, want 40x20", bounds.Dx(), bounds.Dy())
	}
}

func TestFilterByName(t *testing.T) {
	tests := []struct {
		name string
		want imaging.ResampleFilter
	}{
		{"lanczos", imaging.Lanczos},
		{"Bicubic", imaging.CatmullRom},
		{"BILINEAR", imaging.Linear},
		{"nearest", imaging.NearestNeighbor},
		{"", imaging.Lanczos},
		{"something-unknown", imaging.Lanczos},
	}

	for _, tt := range tests {
		got := FilterByName(tt.name)
		if got.Support != tt.want.Support {
			t.Errorf("FilterByName(%q) returned unexpected filter", tt.name)
		}
	}
}
