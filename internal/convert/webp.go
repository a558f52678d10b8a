package convert

import (
	"fmt"
	"image"
	"io"

	"github.com/chai2010/webp"
)

// encodeWebP кодирует изображение в WebP. Качество передаётся
// кодировщику как есть; альфа-канал исходника сохраняется без
// предмультипликации, непрозрачные исходники остаются без альфы.
// Параметра method у chai2010/webp нет: степень усилия сжатия
// фиксирована внутри библиотеки, снаружи управляется только качество.
func encodeWebP(w io.Writer, img image.Image, opts Options) error {
	webpOpts := &webp.Options{
		Quality: float32(clampQuality(opts.Quality)),
		Exact:   hasAlpha(img),
	}

	if err := webp.Encode(w, img, webpOpts); err != nil {
		return fmt.Errorf("%w: webp: %v", ErrEncode, err)
	}
	return nil
}

/*
Возможные расширения:
- Отдельный флаг lossless независимо от качества
- Настройка method (скорость/степень сжатия)
*/
