package metadata

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"os"

	"github.com/ErickHdzV/ImgPilot/internal/imageio"
)

var (
	exifHeader   = []byte("Exif\x00\x00")
	pngSignature = []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
)

// Embed встраивает сырой блок EXIF в уже записанный выходной файл.
// Поддерживаются JPEG (сегмент APP1) и PNG (чанк eXIf). Для
// остальных форматов вызов ничего не делает: у ICO и SVG нет
// стандартного места для EXIF, а WebP и AVIF пишутся кодировщиками,
// не принимающими внешний блок метаданных.
func Embed(path string, format imageio.Format, rawExif []byte) error {
	if len(rawExif) == 0 {
		return nil
	}

	switch format {
	case imageio.FormatJPEG:
		return embedJPEG(path, rawExif)
	case imageio.FormatPNG:
		return embedPNG(path, rawExif)
	case imageio.FormatWebP, imageio.FormatAVIF, imageio.FormatICO, imageio.FormatSVG:
		return nil
	}
	return nil
}

// Supports сообщает, умеет ли формат принимать перенесённый EXIF.
func Supports(format imageio.Format) bool {
	return format == imageio.FormatJPEG || format == imageio.FormatPNG
}

// embedJPEG вставляет сегмент APP1 с EXIF сразу после маркера SOI,
// предыдущий EXIF-сегмент при этом выбрасывается.
func embedJPEG(path string, rawExif []byte) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("не удалось прочитать %s: %w", path, err)
	}
	if len(data) < 2 || data[0] != 0xff || data[1] != 0xd8 {
		return fmt.Errorf("нет маркера SOI: %s", path)
	}

	payload := append(append([]byte{}, exifHeader...), rawExif...)
	if len(payload)+2 > 0xffff {
		return fmt.Errorf("блок EXIF слишком велик для сегмента APP1: %d байт", len(payload))
	}

	segment := make([]byte, 4+len(payload))
	segment[0] = 0xff
	segment[1] = 0xe1
	binary.BigEndian.PutUint16(segment[2:4], uint16(len(payload)+2))
	copy(segment[4:], payload)

	var out bytes.Buffer
	out.Write(data[:2])
	out.Write(segment)

	pos := 2
	for pos+4 <= len(data) && data[pos] == 0xff {
		marker := data[pos+1]

		// Маркеры без тела копируются как есть
		if marker == 0x01 || (marker >= 0xd0 && marker <= 0xd7) {
			out.Write(data[pos : pos+2])
			pos += 2
			continue
		}

		// До конца файла: скан-данные и завершающий маркер
		if marker == 0xda || marker == 0xd9 {
			break
		}

		segLen := int(binary.BigEndian.Uint16(data[pos+2 : pos+4]))
		end := pos + 2 + segLen
		if segLen < 2 || end > len(data) {
			break
		}

		// Старый EXIF выбрасываем, остальное переносим
		if marker == 0xe1 && bytes.HasPrefix(data[pos+4:end], exifHeader) {
			pos = end
			continue
		}

		out.Write(data[pos:end])
		pos = end
	}
	out.Write(data[pos:])

	return writeAtomic(path, out.Bytes())
}

// embedPNG вставляет чанк eXIf сразу после IHDR, существующий
// eXIf при этом выбрасывается.
func embedPNG(path string, rawExif []byte) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("не удалось прочитать %s: %w", path, err)
	}
	if len(data) < 8 || !bytes.Equal(data[:8], pngSignature) {
		return fmt.Errorf("нет сигнатуры PNG: %s", path)
	}

	chunk := buildChunk("eXIf", rawExif)

	var out bytes.Buffer
	out.Write(data[:8])

	pos := 8
	inserted := false
	for pos+8 <= len(data) {
		length := int(binary.BigEndian.Uint32(data[pos : pos+4]))
		end := pos + 8 + length + 4
		if end > len(data) {
			break
		}
		name := string(data[pos+4 : pos+8])

		if name == "eXIf" {
			pos = end
			continue
		}

		out.Write(data[pos:end])
		pos = end

		if name == "IHDR" && !inserted {
			out.Write(chunk)
			inserted = true
		}
		if name == "IEND" {
			break
		}
	}
	out.Write(data[pos:])

	if !inserted {
		return fmt.Errorf("не найден чанк IHDR: %s", path)
	}

	return writeAtomic(path, out.Bytes())
}

// buildChunk собирает PNG-чанк: длина, имя, данные и CRC32 по
// имени вместе с данными.
func buildChunk(name string, data []byte) []byte {
	chunk := make([]byte, 8+len(data)+4)
	binary.BigEndian.PutUint32(chunk[:4], uint32(len(data)))
	copy(chunk[4:8], name)
	copy(chunk[8:], data)

	crc := crc32.ChecksumIEEE(chunk[4 : 8+len(data)])
	binary.BigEndian.PutUint32(chunk[8+len(data):], crc)
	return chunk
}

// writeAtomic перезаписывает файл через временный с переименованием.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".exiftmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("не удалось записать %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("не удалось переименовать %s -> %s: %w", tmp, path, err)
	}
	return nil
}

/*
Возможные расширения:
- Встраивание EXIF в WebP (чанк EXIF контейнера RIFF)
- Проверка CRC существующих чанков перед переносом
*/
