// Package convert содержит кодировщики выходных форматов.
//
// Все кодировщики пишут результат атомарно: данные попадают во
// временный файл <имя>.converting<расширение> в целевой директории и
// переименовываются по успеху, при ошибке временный файл удаляется.
// Недописанных выходных файлов после сбоя не остаётся.
package convert

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ErickHdzV/ImgPilot/internal/capability"
	"github.com/ErickHdzV/ImgPilot/internal/imageio"
)

// ErrEncode возвращается при ошибках кодирования или сбое внешнего
// кодировщика.
var ErrEncode = errors.New("ошибка кодирования")

// Options задаёт параметры кодирования.
type Options struct {
	// Quality - качество для lossy форматов (1-100). Значения вне
	// диапазона прижимаются к границам. PNG и ICO его игнорируют.
	Quality int

	// MaxPaths - предел количества контуров при трассировке SVG
	// (0 = значение по умолчанию).
	MaxPaths int
}

// Encode кодирует изображение в указанный формат и записывает его в
// dstPath. Для форматов с внешними кодировщиками доступность
// возможности проверяется до создания каких-либо файлов.
func Encode(ctx context.Context, reg *capability.Registry, img image.Image, format imageio.Format, dstPath string, opts Options) error {
	switch format {
	case imageio.FormatWebP:
		return writeAtomic(dstPath, func(w io.Writer) error {
			return encodeWebP(w, img, opts)
		})
	case imageio.FormatAVIF:
		return encodeAVIF(ctx, reg, img, dstPath, opts)
	case imageio.FormatPNG:
		return writeAtomic(dstPath, func(w io.Writer) error {
			return encodePNG(w, img)
		})
	case imageio.FormatJPEG:
		return writeAtomic(dstPath, func(w io.Writer) error {
			return encodeJPEG(w, img, opts)
		})
	case imageio.FormatICO:
		return writeAtomic(dstPath, func(w io.Writer) error {
			return encodeICO(w, img)
		})
	case imageio.FormatSVG:
		if err := reg.Require(capability.CapSVGTrace); err != nil {
			return err
		}
		return writeAtomic(dstPath, func(w io.Writer) error {
			return encodeSVG(w, img, opts)
		})
	}
	return fmt.Errorf("%w: %s", imageio.ErrUnsupportedFormat, format)
}

// tmpPath строит имя временного файла рядом с целевым.
func tmpPath(dstPath string) string {
	ext := filepath.Ext(dstPath)
	return strings.TrimSuffix(dstPath, ext) + ".converting" + ext
}

// writeAtomic выполняет атомарную запись: encode пишет во временный
// файл, успешный результат переименовывается в dstPath.
func writeAtomic(dstPath string, encode func(io.Writer) error) error {
	dstDir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("не удалось создать директорию %s: %w", dstDir, err)
	}

	tmp := tmpPath(dstPath)
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("не удалось создать временный файл: %w", err)
	}

	if err := encode(f); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("не удалось записать %s: %w", tmp, err)
	}

	if err := os.Rename(tmp, dstPath); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("не удалось переименовать %s -> %s: %w", tmp, dstPath, err)
	}
	return nil
}

// clampQuality прижимает качество к диапазону 0-100. Каждый
// кодировщик применяет его сам: глобальной нормализации нет, а JPEG
// дополнительно поднимает нулевое качество до единицы.
func clampQuality(q int) int {
	if q < 0 {
		return 0
	}
	if q > 100 {
		return 100
	}
	return q
}

// hasAlpha проверяет, есть ли в изображении полупрозрачные пиксели.
func hasAlpha(img image.Image) bool {
	type opaquer interface {
		Opaque() bool
	}
	if o, ok := img.(opaquer); ok {
		return !o.Opaque()
	}

	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a < 0xffff {
				return true
			}
		}
	}
	return false
}

/*
Возможные расширения:
- Progressive JPEG и interlaced PNG
- Параметр compression level для PNG
- Потоковое кодирование без полной загрузки в память
*/
