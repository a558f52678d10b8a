package convert

import (
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/disintegration/imaging"
)

// encodePNG кодирует изображение в PNG. Формат всегда lossless,
// используется стандартный уровень сжатия zlib (6), параметр
// качества не влияет на результат. Палитровые изображения с
// прозрачностью разворачиваются в полный альфа-канал.
func encodePNG(w io.Writer, img image.Image) error {
	if p, ok := img.(*image.Paletted); ok && hasAlpha(p) {
		img = imaging.Clone(img)
	}

	enc := png.Encoder{CompressionLevel: png.DefaultCompression}
	if err := enc.Encode(w, img); err != nil {
		return fmt.Errorf("%w: png: %v", ErrEncode, err)
	}
	return nil
}

/*
Возможные расширения:
- Квантизация в палитровый PNG8 для экономии размера
- BestCompression как опция для архивных пресетов
*/
