package imageio

import (
	"bytes"
	"fmt"
	"io"
	"os"
)

// headerLen - сколько байт заголовка нужно для распознавания всех
// поддерживаемых сигнатур (RIFF....WEBP и ftyp-боксы AVIF - 12 байт).
const headerLen = 16

var (
	jpegSig   = []byte{0xff, 0xd8, 0xff}
	pngSig    = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	bmpSig    = []byte("BM")
	tiffSigLE = []byte{0x49, 0x49, 0x2a, 0x00}
	tiffSigBE = []byte{0x4d, 0x4d, 0x00, 0x2a}
	icoSig    = []byte{0x00, 0x00, 0x01, 0x00}
	riffSig   = []byte("RIFF")
	webpTag   = []byte("WEBP")
	ftypTag   = []byte("ftyp")
	avifBrand = []byte("avif")
	avisBrand = []byte("avis")
)

// DetectHeader определяет тип изображения по первым байтам файла.
// Возвращает каноническое имя формата ("jpeg", "png", "bmp", "tiff",
// "webp", "avif", "ico") или пустую строку для неизвестного.
func DetectHeader(header []byte) string {
	switch {
	case bytes.HasPrefix(header, jpegSig):
		return "jpeg"
	case bytes.HasPrefix(header, pngSig):
		return "png"
	case bytes.HasPrefix(header, tiffSigLE), bytes.HasPrefix(header, tiffSigBE):
		return "tiff"
	case bytes.HasPrefix(header, icoSig):
		return "ico"
	case bytes.HasPrefix(header, bmpSig):
		return "bmp"
	case bytes.HasPrefix(header, riffSig) && len(header) >= 12 && bytes.Equal(header[8:12], webpTag):
		return "webp"
	case len(header) >= 12 && bytes.Equal(header[4:8], ftypTag) &&
		(bytes.Equal(header[8:12], avifBrand) || bytes.Equal(header[8:12], avisBrand)):
		return "avif"
	}
	return ""
}

// DetectFile читает заголовок файла и определяет его тип.
// Файл короче минимального заголовка считается некорректным.
func DetectFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("не удалось открыть файл: %w", err)
	}
	defer f.Close()

	header := make([]byte, headerLen)
	n, err := io.ReadFull(f, header)
	if err != nil && err != io.ErrUnexpectedEOF {
		return "", fmt.Errorf("%w: файл пуст или нечитаем", ErrInvalidImage)
	}

	return DetectHeader(header[:n]), nil
}

/*
Возможные расширения:
- Распознавать HEIC по brand в ftyp-боксе
- Отдавать вместе с типом смещение полезных данных
*/
