package pipeline

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/ErickHdzV/ImgPilot/internal/capability"
	"github.com/ErickHdzV/ImgPilot/internal/imageio"
	"github.com/ErickHdzV/ImgPilot/internal/resize"
)

func testPipeline() *Pipeline {
	return New(capability.NewRegistry(map[capability.Capability]capability.Status{
		capability.CapSVGTrace: {Available: true, Version: "builtin"},
	}))
}

// writeSourcePNG writes a small valid PNG and returns its path.
func writeSourcePNG(t *testing.T, dir string, w, h int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 7), G: uint8(y * 11), B: 128, A: 255})
		}
	}

	path := filepath.Join(dir, "src.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProcessSuccess(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	src := writeSourcePNG(t, srcDir, 64, 48)

	res := testPipeline().Process(context.Background(), Task{
		SrcPath:   src,
		OutputDir: outDir,
		Format:    imageio.FormatPNG,
		Quality:   80,
	})

	if res.Err != nil {
		t.Fatalf("Process() error = %v", res.Err)
	}
	if res.DstPath != filepath.Join(outDir, "src.png") {
		t.Errorf("DstPath = %q, want out/src.png", res.DstPath)
	}
	if _, err := os.Stat(res.DstPath); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if res.Stat.OriginalBytes <= 0 || res.Stat.ResultBytes <= 0 {
		t.Errorf("Stat sizes = %d/%d, want positive", res.Stat.OriginalBytes, res.Stat.ResultBytes)
	}
	if res.Stat.Duration <= 0 {
		t.Error("Stat.Duration not recorded")
	}
}

func TestProcessResize(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	src := writeSourcePNG(t, srcDir, 64, 48)

	res := testPipeline().Process(context.Background(), Task{
		SrcPath:   src,
		OutputDir: outDir,
		Format:    imageio.FormatPNG,
		Resize:    &resize.Options{Width: 32, KeepAspect: true},
	})
	if res.Err != nil {
		t.Fatalf("Process() error = %v", res.Err)
	}

	f, err := os.Open(res.DstPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("output does not decode: %v", err)
	}
	if decoded.Bounds().Dx() != 32 || decoded.Bounds().Dy() != 24 {
		t.Errorf("output size = %v, want 32x24", decoded.Bounds())
	}
}

func TestProcessResizeValidation(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	src := writeSourcePNG(t, srcDir, 64, 48)

	res := testPipeline().Process(context.Background(), Task{
		SrcPath:   src,
		OutputDir: outDir,
		Format:    imageio.FormatPNG,
		Resize:    &resize.Options{Width: -5},
	})

	if !errors.Is(res.Err, resize.ErrInvalidOptions) {
		t.Errorf("Process() error = %v, want ErrInvalidOptions", res.Err)
	}
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("failed task left files behind: %v", entries)
	}
}

func TestProcessAVIFUnavailable(t *testing.T) {
	srcDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "out")
	src := writeSourcePNG(t, srcDir, 16, 16)

	res := testPipeline().Process(context.Background(), Task{
		SrcPath:   src,
		OutputDir: outDir,
		Format:    imageio.FormatAVIF,
	})

	if !errors.Is(res.Err, capability.ErrMissingCapability) {
		t.Errorf("Process() error = %v, want ErrMissingCapability", res.Err)
	}
	// capability is checked before any file I/O
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Error("output directory was created despite the capability failure")
	}
}

func TestProcessRejectsUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(src, []byte("not an image"), 0644); err != nil {
		t.Fatal(err)
	}

	res := testPipeline().Process(context.Background(), Task{
		SrcPath: src,
		Format:  imageio.FormatWebP,
	})
	if !errors.Is(res.Err, imageio.ErrInvalidImage) {
		t.Errorf("Process() error = %v, want ErrInvalidImage", res.Err)
	}
}

func TestProcessCorruptSource(t *testing.T) {
	srcDir := t.TempDir()
	outDir := t.TempDir()
	src := filepath.Join(srcDir, "broken.png")
	if err := os.WriteFile(src, []byte("definitely not a png"), 0644); err != nil {
		t.Fatal(err)
	}

	res := testPipeline().Process(context.Background(), Task{
		SrcPath:   src,
		OutputDir: outDir,
		Format:    imageio.FormatPNG,
	})

	if !errors.Is(res.Err, imageio.ErrInvalidImage) {
		t.Errorf("Process() error = %v, want ErrInvalidImage", res.Err)
	}
	entries, err := os.ReadDir(outDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("failed task left files behind: %v", entries)
	}
}

func TestProcessUnsupportedFormat(t *testing.T) {
	srcDir := t.TempDir()
	src := writeSourcePNG(t, srcDir, 8, 8)

	res := testPipeline().Process(context.Background(), Task{
		SrcPath:   src,
		OutputDir: t.TempDir(),
		Format:    imageio.Format(0),
	})
	if !errors.Is(res.Err, imageio.ErrUnsupportedFormat) {
		t.Errorf("Process() error = %v, want ErrUnsupportedFormat", res.Err)
	}
}

func TestProcessTargetSize(t *testing.T) {
	srcDir := t.TempDir()
	src := writeSourcePNG(t, srcDir, 64, 64)

	res := testPipeline().Process(context.Background(), Task{
		SrcPath:     src,
		OutputDir:   t.TempDir(),
		Format:      imageio.FormatJPEG,
		TargetBytes: 1 << 20, // far above anything a 64x64 JPEG needs
	})
	if res.Err != nil {
		t.Fatalf("Process() error = %v", res.Err)
	}
	if res.Quality != 100 {
		t.Errorf("Quality = %d, want 100 when the target is generous", res.Quality)
	}
	if res.Stat.ResultBytes > 1<<20 {
		t.Errorf("result %d bytes exceeds the target", res.Stat.ResultBytes)
	}
}

func TestProcessCancelled(t *testing.T) {
	srcDir := t.TempDir()
	src := writeSourcePNG(t, srcDir, 8, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := testPipeline().Process(ctx, Task{
		SrcPath:   src,
		OutputDir: t.TempDir(),
		Format:    imageio.FormatPNG,
	})
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("Process() error = %v, want context.Canceled", res.Err)
	}
}

func TestRemovalOnly(t *testing.T) {
	if !(Task{RemoveBackground: true}).RemovalOnly() {
		t.Error("RemovalOnly() = false for a removal task without a format")
	}
	if (Task{RemoveBackground: true, Format: imageio.FormatPNG}).RemovalOnly() {
		t.Error("RemovalOnly() = true for a task that also converts")
	}
	if (Task{Format: imageio.FormatPNG}).RemovalOnly() {
		t.Error("RemovalOnly() = true for a plain conversion task")
	}
}
