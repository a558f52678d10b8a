package convert

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ErickHdzV/ImgPilot/internal/capability"
)

// encodeAVIF кодирует изображение внешним avifenc. Доступность
// кодировщика проверяется до создания каких-либо файлов; исходник
// передаётся временным PNG, результат пишется через .converting файл
// и переименовывается по успеху.
func encodeAVIF(ctx context.Context, reg *capability.Registry, img image.Image, dstPath string, opts Options) error {
	if err := reg.Require(capability.CapAVIFEncode); err != nil {
		return err
	}
	st := reg.Get(capability.CapAVIFEncode)

	dstDir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("не удалось создать директорию %s: %w", dstDir, err)
	}

	// Временный PNG-исходник для кодировщика
	srcTmp, err := os.CreateTemp(dstDir, ".avifsrc-*.png")
	if err != nil {
		return fmt.Errorf("не удалось создать временный файл: %w", err)
	}
	srcPath := srcTmp.Name()
	defer os.Remove(srcPath)

	if err := png.Encode(srcTmp, img); err != nil {
		srcTmp.Close()
		return fmt.Errorf("%w: avif: подготовка исходника: %v", ErrEncode, err)
	}
	if err := srcTmp.Close(); err != nil {
		return fmt.Errorf("%w: avif: подготовка исходника: %v", ErrEncode, err)
	}

	// Качество 0-100 переводится в квантизатор 63-0
	q := clampQuality(opts.Quality)
	quantizer := (100 - q) * 63 / 100

	tmp := tmpPath(dstPath)
	args := []string{
		"--min", strconv.Itoa(quantizer),
		"--max", strconv.Itoa(quantizer),
		"--speed", "6",
		"--jobs", "1",
		srcPath,
		tmp,
	}

	cmd := exec.CommandContext(ctx, st.Path, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		_ = os.Remove(tmp)

		errMsg := err.Error()
		if stderr.Len() > 0 {
			errMsg = fmt.Sprintf("%s: %s", err.Error(), strings.TrimSpace(stderr.String()))
		}
		return fmt.Errorf("%w: avifenc: %s", ErrEncode, errMsg)
	}

	if err := os.Rename(tmp, dstPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("не удалось переименовать %s -> %s: %w", tmp, dstPath, err)
	}
	return nil
}

/*
Возможные расширения:
- Параметры --speed и --jobs из конфигурации
- Поддержка 10-битного цвета
*/
