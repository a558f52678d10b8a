package convert

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"

	"github.com/disintegration/imaging"
)

// encodeJPEG кодирует изображение в JPEG. Прозрачность формат не
// поддерживает, поэтому изображения с альфа-каналом сначала
// сводятся на белый фон. Нулевое качество поднимается до единицы.
func encodeJPEG(w io.Writer, img image.Image, opts Options) error {
	q := clampQuality(opts.Quality)
	if q < 1 {
		q = 1
	}

	if hasAlpha(img) {
		img = flattenWhite(img)
	}

	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: q}); err != nil {
		return fmt.Errorf("%w: jpeg: %v", ErrEncode, err)
	}
	return nil
}

// flattenWhite накладывает изображение на белый холст того же размера.
func flattenWhite(img image.Image) image.Image {
	bounds := img.Bounds()
	canvas := imaging.New(bounds.Dx(), bounds.Dy(), color.White)
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}

/*
Возможные расширения:
- Настраиваемый цвет фона для сведения
- Progressive JPEG
*/
