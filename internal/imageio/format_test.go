package imageio

import (
	"errors"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Format
		wantErr bool
	}{
		{"webp", "webp", FormatWebP, false},
		{"uppercase", "WEBP", FormatWebP, false},
		{"with dot", ".png", FormatPNG, false},
		{"jpg alias", "jpg", FormatJPEG, false},
		{"jpeg canonical", "jpeg", FormatJPEG, false},
		{"avif", "avif", FormatAVIF, false},
		{"ico", "ico", FormatICO, false},
		{"svg", "svg", FormatSVG, false},
		{"padded", "  gif  ", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.in)

			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("ParseFormat(%q) error = %v, want ErrUnsupportedFormat", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats([]string{"webp,png", "jpg", "webp"})
	if err != nil {
		t.Fatalf("ParseFormats() error = %v", err)
	}

	want := []Format{FormatWebP, FormatPNG, FormatJPEG}
	if len(got) != len(want) {
		t.Fatalf("ParseFormats() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ParseFormats()[%d] = %v, want %v (order of first mention)", i, got[i], want[i])
		}
	}

	if _, err := ParseFormats(nil); err == nil {
		t.Error("ParseFormats(nil) should fail")
	}
	if _, err := ParseFormats([]string{"webp", "bad"}); err == nil {
		t.Error("ParseFormats() with unknown format should fail")
	}
}

func TestFormatStringExt(t *testing.T) {
	for _, f := range AllFormats() {
		if f.String() == "unknown" {
			t.Errorf("Format %d has no name", f)
		}
		if f.Ext() == "" {
			t.Errorf("Format %s has no extension", f)
		}
	}
	if FormatJPEG.Ext() != ".jpg" {
		t.Errorf("FormatJPEG.Ext() = %q, want .jpg", FormatJPEG.Ext())
	}
	if Format(0).String() != "unknown" {
		t.Errorf("zero Format should stringify as unknown")
	}
}

func TestDetectHeader(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   string
	}{
		{"jpeg", []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0, 0, 0, 0, 0, 0, 0}, "jpeg"},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}, "png"},
		{"bmp", []byte("BM0000000000"), "bmp"},
		{"tiff little endian", []byte{0x49, 0x49, 0x2a, 0x00, 0, 0, 0, 0, 0, 0, 0, 0}, "tiff"},
		{"tiff big endian", []byte{0x4d, 0x4d, 0x00, 0x2a, 0, 0, 0, 0, 0, 0, 0, 0}, "tiff"},
		{"ico", []byte{0x00, 0x00, 0x01, 0x00, 0x04, 0x00, 0, 0, 0, 0, 0, 0}, "ico"},
		{"webp", []byte("RIFF\x10\x00\x00\x00WEBPVP8 "), "webp"},
		{"avif", []byte("\x00\x00\x00\x20ftypavif\x00\x00\x00\x00"), "avif"},
		{"avif sequence", []byte("\x00\x00\x00\x20ftypavis\x00\x00\x00\x00"), "avif"},
		{"riff but not webp", []byte("RIFF\x10\x00\x00\x00WAVEfmt "), ""},
		{"garbage", []byte("hello world!"), ""},
		{"short", []byte{0xff}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectHeader(tt.header); got != tt.want {
				t.Errorf("DetectHeader() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsInputPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"photo.jpg", true},
		{"photo.JPEG", true},
		{"dir/photo.png", true},
		{"scan.tif", true},
		{"scan.tiff", true},
		{"anim.webp", true},
		{"modern.avif", true},
		{"favicon.ico", true},
		{"photo.bmp", true},
		{"vector.svg", false},
		{"doc.pdf", false},
		{"noext", false},
	}

	for _, tt := range tests {
		if got := IsInputPath(tt.path); got != tt.want {
			t.Errorf("IsInputPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestIsTempArtifact(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"photo.converting.webp", true},
		{"dir/photo.exiftmp", true},
		{"dir/.avifsrc-12345.png", true},
		{"photo.webp", false},
		{"converting_notes.png", false},
	}

	for _, tt := range tests {
		if got := IsTempArtifact(tt.path); got != tt.want {
			t.Errorf("IsTempArtifact(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
