package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ErickHdzV/ImgPilot/internal/imageio"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"clean name untouched", "photo_01", "photo_01"},
		{"forbidden characters replaced", `a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"surrounding spaces and dots trimmed", " ..draft.. ", "draft"},
		{"empty becomes fallback", "", "image"},
		{"only forbidden becomes underscores", "???", "___"},
		{"unicode preserved", "фото-котика", "фото-котика"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.in); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveStable(t *testing.T) {
	dir := t.TempDir()

	first := Resolve(dir, "photo", ".webp")
	second := Resolve(dir, "photo", ".webp")

	if first != second {
		t.Errorf("Resolve() is not stable without file writes: %q != %q", first, second)
	}
	if first != filepath.Join(dir, "photo.webp") {
		t.Errorf("Resolve() = %q, want %q", first, filepath.Join(dir, "photo.webp"))
	}
}

func TestResolveCollisions(t *testing.T) {
	dir := t.TempDir()

	touch := func(name string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	touch("photo.webp")
	if got := Resolve(dir, "photo", ".webp"); got != filepath.Join(dir, "photo_1.webp") {
		t.Errorf("Resolve() after one collision = %q, want photo_1.webp", got)
	}

	touch("photo_1.webp")
	touch("photo_2.webp")
	if got := Resolve(dir, "photo", ".webp"); got != filepath.Join(dir, "photo_3.webp") {
		t.Errorf("Resolve() after three collisions = %q, want photo_3.webp", got)
	}
}

func TestBuildDstPath(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name        string
		src         string
		format      imageio.Format
		customName  string
		multiFormat bool
		want        string
	}{
		{
			name:   "stem from source file",
			src:    "/photos/vacation.jpg",
			format: imageio.FormatWebP,
			want:   "vacation.webp",
		},
		{
			name:       "custom name replaces stem",
			src:        "/photos/vacation.jpg",
			format:     imageio.FormatPNG,
			customName: "cover",
			want:       "cover.png",
		},
		{
			name:        "custom name gets format suffix in multi-format run",
			src:         "/photos/vacation.jpg",
			format:      imageio.FormatWebP,
			customName:  "cover",
			multiFormat: true,
			want:        "cover_webp.webp",
		},
		{
			name:       "custom name is sanitized",
			src:        "/photos/vacation.jpg",
			format:     imageio.FormatJPEG,
			customName: `co:ver?`,
			want:       "co_ver_.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildDstPath(tt.src, dir, tt.format, tt.customName, tt.multiFormat)
			if got != filepath.Join(dir, tt.want) {
				t.Errorf("BuildDstPath() = %q, want %q", got, filepath.Join(dir, tt.want))
			}
		})
	}
}

func TestNoBackgroundPath(t *testing.T) {
	dir := t.TempDir()

	got := NoBackgroundPath("/photos/cat.jpg", dir)
	if got != filepath.Join(dir, "cat_no_bg.png") {
		t.Errorf("NoBackgroundPath() = %q, want cat_no_bg.png", got)
	}

	// Output is PNG regardless of the source extension.
	got = NoBackgroundPath("/photos/cat.webp", dir)
	if filepath.Ext(got) != ".png" {
		t.Errorf("NoBackgroundPath() extension = %q, want .png", filepath.Ext(got))
	}
}
