package convert

import (
	"fmt"
	"image"

	"github.com/ErickHdzV/ImgPilot/internal/imageio"
)

// EncodedSize кодирует изображение в память и возвращает размер
// результата в байтах. Работает только для форматов, размер которых
// управляется качеством: JPEG и WebP.
func EncodedSize(img image.Image, format imageio.Format, quality int) (int64, error) {
	opts := Options{Quality: quality}
	var cw countWriter
	switch format {
	case imageio.FormatJPEG:
		if err := encodeJPEG(&cw, img, opts); err != nil {
			return 0, err
		}
		return cw.n, nil
	case imageio.FormatWebP:
		if err := encodeWebP(&cw, img, opts); err != nil {
			return 0, err
		}
		return cw.n, nil
	case imageio.FormatPNG, imageio.FormatICO, imageio.FormatSVG, imageio.FormatAVIF:
		return 0, fmt.Errorf("размер %s не управляется качеством", format)
	}
	return 0, fmt.Errorf("%w: неизвестный формат", imageio.ErrUnsupportedFormat)
}

// countWriter считает записанные байты, не сохраняя их.
type countWriter struct {
	n int64
}

func (w *countWriter) Write(p []byte) (int, error) {
	w.n += int64(len(p))
	return len(p), nil
}
