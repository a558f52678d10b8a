package convert

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ErickHdzV/ImgPilot/internal/capability"
	"github.com/ErickHdzV/ImgPilot/internal/imageio"
)

// testImage returns a deterministic noisy RGBA image so that lossy
// encoders produce quality-dependent sizes.
func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	seed := uint32(1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			seed = seed*1664525 + 1013904223
			img.Set(x, y, color.RGBA{
				R: uint8(seed >> 24),
				G: uint8(seed >> 16),
				B: uint8(seed >> 8),
				A: 255,
			})
		}
	}
	return img
}

func testRegistry() *capability.Registry {
	return capability.NewRegistry(map[capability.Capability]capability.Status{
		capability.CapSVGTrace: {Available: true, Version: "builtin"},
	})
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestEncodePNG(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.png")

	err := Encode(context.Background(), testRegistry(), testImage(32, 24), imageio.FormatPNG, dst, Options{})
	if err != nil {
		t.Fatalf("Encode(png) error = %v", err)
	}

	f, err := os.Open(dst)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	defer f.Close()

	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output is not valid PNG: %v", err)
	}
	if decoded.Bounds().Dx() != 32 || decoded.Bounds().Dy() != 24 {
		t.Errorf("decoded size = %v, want 32x24", decoded.Bounds())
	}

	// No temporary artifacts should survive a successful encode.
	if got := dirEntries(t, dir); len(got) != 1 {
		t.Errorf("directory contains %v, want only out.png", got)
	}
}

func TestEncodeJPEGFlattensToWhite(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if x < 8 {
				// fully transparent left half
				img.Set(x, y, color.RGBA{})
			} else {
				img.Set(x, y, color.RGBA{R: 200, A: 255})
			}
		}
	}

	dir := t.TempDir()
	dst := filepath.Join(dir, "out.jpg")
	err := Encode(context.Background(), testRegistry(), img, imageio.FormatJPEG, dst, Options{Quality: 90})
	if err != nil {
		t.Fatalf("Encode(jpeg) error = %v", err)
	}

	f, err := os.Open(dst)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	decoded, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("output is not valid JPEG: %v", err)
	}

	r, g, b, _ := decoded.At(2, 8).RGBA()
	for name, v := range map[string]uint32{"r": r >> 8, "g": g >> 8, "b": b >> 8} {
		if v < 240 {
			t.Errorf("transparent area channel %s = %d, want near-white (>= 240)", name, v)
		}
	}
}

func TestEncodeJPEGQualityFloor(t *testing.T) {
	var buf countWriter
	if err := encodeJPEG(&buf, testImage(8, 8), Options{Quality: 0}); err != nil {
		t.Errorf("encodeJPEG with quality 0 should clamp to 1, got error %v", err)
	}
	if err := encodeJPEG(&buf, testImage(8, 8), Options{Quality: -50}); err != nil {
		t.Errorf("encodeJPEG with negative quality should clamp to 1, got error %v", err)
	}
}

func TestEncodeICOAllSizes(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "icon.ico")

	err := Encode(context.Background(), testRegistry(), testImage(100, 60), imageio.FormatICO, dst, Options{})
	if err != nil {
		t.Fatalf("Encode(ico) error = %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) < icoDirSize+4*icoEntrySize {
		t.Fatalf("output too short: %d bytes", len(data))
	}

	if binary.LittleEndian.Uint16(data[0:2]) != 0 {
		t.Error("ICONDIR reserved field is not zero")
	}
	if binary.LittleEndian.Uint16(data[2:4]) != 1 {
		t.Error("ICONDIR type is not icon")
	}
	count := binary.LittleEndian.Uint16(data[4:6])
	if count != 4 {
		t.Fatalf("icon contains %d images, want 4", count)
	}

	pngSig := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a}
	wantDims := []byte{16, 32, 48, 0} // 256 is stored as 0

	var end uint32
	for i := 0; i < int(count); i++ {
		entry := data[icoDirSize+i*icoEntrySize:]
		if entry[0] != wantDims[i] || entry[1] != wantDims[i] {
			t.Errorf("entry %d dimensions = %dx%d, want %d", i, entry[0], entry[1], wantDims[i])
		}

		size := binary.LittleEndian.Uint32(entry[8:12])
		offset := binary.LittleEndian.Uint32(entry[12:16])
		if int(offset)+int(size) > len(data) {
			t.Fatalf("entry %d points outside the file", i)
		}
		if !bytes.HasPrefix(data[offset:], pngSig) {
			t.Errorf("entry %d frame is not PNG-compressed", i)
		}

		frame, err := png.Decode(bytes.NewReader(data[offset : offset+size]))
		if err != nil {
			t.Fatalf("entry %d frame does not decode: %v", i, err)
		}
		wantSize := []int{16, 32, 48, 256}[i]
		if frame.Bounds().Dx() != wantSize || frame.Bounds().Dy() != wantSize {
			t.Errorf("entry %d canvas = %v, want %dx%d", i, frame.Bounds(), wantSize, wantSize)
		}
		end = offset + size
	}
	if int(end) != len(data) {
		t.Errorf("file has %d trailing bytes", len(data)-int(end))
	}
}

func TestEncodeSVG(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.svg")

	// black square on white background gives the tracer clean edges
	img := image.NewRGBA(image.Rect(0, 0, 48, 48))
	for y := 0; y < 48; y++ {
		for x := 0; x < 48; x++ {
			c := color.RGBA{255, 255, 255, 255}
			if x >= 12 && x < 36 && y >= 12 && y < 36 {
				c = color.RGBA{0, 0, 0, 255}
			}
			img.Set(x, y, c)
		}
	}

	err := Encode(context.Background(), testRegistry(), img, imageio.FormatSVG, dst, Options{Quality: 80})
	if err != nil {
		t.Fatalf("Encode(svg) error = %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Error("output does not look like SVG")
	}
	if !bytes.Contains(data, []byte("<path")) {
		t.Error("traced SVG contains no paths")
	}
}

func TestEncodeSVGUnavailable(t *testing.T) {
	reg := capability.NewRegistry(map[capability.Capability]capability.Status{
		capability.CapSVGTrace: {Reason: "disabled"},
	})
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.svg")

	err := Encode(context.Background(), reg, testImage(8, 8), imageio.FormatSVG, dst, Options{})
	if !errors.Is(err, capability.ErrMissingCapability) {
		t.Errorf("Encode(svg) error = %v, want ErrMissingCapability", err)
	}
	if got := dirEntries(t, dir); len(got) != 0 {
		t.Errorf("failed encode left files behind: %v", got)
	}
}

func TestEncodeAVIFUnavailable(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.avif")

	err := Encode(context.Background(), testRegistry(), testImage(8, 8), imageio.FormatAVIF, dst, Options{})
	if !errors.Is(err, capability.ErrMissingCapability) {
		t.Errorf("Encode(avif) error = %v, want ErrMissingCapability", err)
	}
	if got := dirEntries(t, dir); len(got) != 0 {
		t.Errorf("failed encode left files behind: %v", got)
	}
}

func TestEncodeUnknownFormat(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.bin")

	err := Encode(context.Background(), testRegistry(), testImage(8, 8), imageio.Format(0), dst, Options{})
	if !errors.Is(err, imageio.ErrUnsupportedFormat) {
		t.Errorf("Encode(unknown) error = %v, want ErrUnsupportedFormat", err)
	}
	if got := dirEntries(t, dir); len(got) != 0 {
		t.Errorf("failed encode left files behind: %v", got)
	}
}

func TestEncodeWebP(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.webp")

	err := Encode(context.Background(), testRegistry(), testImage(32, 32), imageio.FormatWebP, dst, Options{Quality: 80})
	if err != nil {
		t.Fatalf("Encode(webp) error = %v", err)
	}

	kind, err := imageio.DetectFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if kind != "webp" {
		t.Errorf("output signature = %q, want webp", kind)
	}
}

func TestEncodedSize(t *testing.T) {
	img := testImage(64, 64)

	low, err := EncodedSize(img, imageio.FormatJPEG, 10)
	if err != nil {
		t.Fatalf("EncodedSize(q=10) error = %v", err)
	}
	high, err := EncodedSize(img, imageio.FormatJPEG, 95)
	if err != nil {
		t.Fatalf("EncodedSize(q=95) error = %v", err)
	}
	if low >= high {
		t.Errorf("EncodedSize: q=10 gives %d bytes, q=95 gives %d, want growth with quality", low, high)
	}

	if _, err := EncodedSize(img, imageio.FormatPNG, 50); err == nil {
		t.Error("EncodedSize(png) should fail: size is not quality-driven")
	}
}

func TestHasAlpha(t *testing.T) {
	opaque := testImage(4, 4)
	if hasAlpha(opaque) {
		t.Error("hasAlpha() = true for an opaque image")
	}

	transparent := image.NewRGBA(image.Rect(0, 0, 4, 4))
	transparent.Set(2, 2, color.RGBA{R: 255, A: 128})
	if !hasAlpha(transparent) {
		t.Error("hasAlpha() = false for an image with a translucent pixel")
	}
}

func TestTmpPath(t *testing.T) {
	got := tmpPath("/out/photo.webp")
	if got != "/out/photo.converting.webp" {
		t.Errorf("tmpPath() = %q, want /out/photo.converting.webp", got)
	}
}
