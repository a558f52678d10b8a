package convert

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"

	"github.com/disintegration/imaging"

	"github.com/ErickHdzV/ImgPilot/internal/resize"
)

// icoSizes - размеры вложенных изображений в контейнере иконки.
var icoSizes = []int{16, 32, 48, 256}

// icoDirSize и icoEntrySize - размеры заголовка ICONDIR и одной
// записи ICONDIRENTRY в байтах.
const (
	icoDirSize   = 6
	icoEntrySize = 16
)

// encodeICO собирает многоразмерную иконку Windows. Каждое вложенное
// изображение вписывается в свой квадрат с сохранением пропорций и
// центрируется на прозрачном холсте; кадры хранятся в PNG (так же
// пишет Pillow, Windows принимает PNG-кадры начиная с Vista).
func encodeICO(w io.Writer, img image.Image) error {
	frames := make([][]byte, 0, len(icoSizes))

	for _, size := range icoSizes {
		frame, err := icoFrame(img, size)
		if err != nil {
			return err
		}
		frames = append(frames, frame)
	}

	header := make([]byte, icoDirSize+icoEntrySize*len(frames))
	// reserved = 0, тип 1 = иконка
	binary.LittleEndian.PutUint16(header[2:4], 1)
	binary.LittleEndian.PutUint16(header[4:6], uint16(len(frames)))

	offset := len(header)
	for i, frame := range frames {
		entry := header[icoDirSize+i*icoEntrySize:]

		dim := byte(icoSizes[i])
		if icoSizes[i] >= 256 {
			dim = 0 // размер 256 кодируется нулём
		}
		entry[0] = dim // ширина
		entry[1] = dim // высота
		// entry[2], entry[3]: без палитры, reserved
		binary.LittleEndian.PutUint16(entry[4:6], 1)  // planes
		binary.LittleEndian.PutUint16(entry[6:8], 32) // бит на пиксель
		binary.LittleEndian.PutUint32(entry[8:12], uint32(len(frame)))
		binary.LittleEndian.PutUint32(entry[12:16], uint32(offset))

		offset += len(frame)
	}

	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("%w: ico: %v", ErrEncode, err)
	}
	for _, frame := range frames {
		if _, err := w.Write(frame); err != nil {
			return fmt.Errorf("%w: ico: %v", ErrEncode, err)
		}
	}
	return nil
}

// icoFrame готовит один PNG-кадр иконки размера size x size.
func icoFrame(img image.Image, size int) ([]byte, error) {
	bounds := img.Bounds()

	fitted := img
	if bounds.Dx() != size || bounds.Dy() != size {
		box := resize.Options{Width: size, Height: size, KeepAspect: true}
		w, h, err := box.Target(bounds.Dx(), bounds.Dy())
		if err != nil {
			return nil, fmt.Errorf("%w: ico: %v", ErrEncode, err)
		}
		fitted = imaging.Resize(img, w, h, imaging.Lanczos)
	}

	canvas := imaging.New(size, size, color.Transparent)
	frame := imaging.PasteCenter(canvas, fitted)

	var buf bytes.Buffer
	if err := png.Encode(&buf, frame); err != nil {
		return nil, fmt.Errorf("%w: ico: %v", ErrEncode, err)
	}
	return buf.Bytes(), nil
}

/*
Возможные расширения:
- Настраиваемый список размеров
- BMP-кадры для совместимости со старыми системами
*/
