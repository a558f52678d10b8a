package imageio

import (
	"fmt"
	"image"
	"os"

	// Декодеры входных форматов регистрируются в image.RegisterFormat.
	_ "image/jpeg"
	_ "image/png"

	_ "github.com/gen2brain/avif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	ico "github.com/biessek/golang-ico"
)

// Load открывает файл и полностью декодирует изображение.
// Полное декодирование и есть валидация входа: усечённые и
// повреждённые файлы отклоняются здесь, до создания любых выходных
// файлов. Возвращает изображение и имя исходного формата.
func Load(path string) (image.Image, string, error) {
	kind, err := DetectFile(path)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("не удалось открыть файл: %w", err)
	}
	defer f.Close()

	// ICO декодируем явно: сигнатура надёжнее расширения,
	// а контейнер отдаёт самое крупное изображение.
	if kind == "ico" {
		img, err := ico.Decode(f)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
		}
		return img, "ico", nil
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	return img, format, nil
}

/*
Возможные расширения:
- Ограничивать максимальный размер декодируемого изображения
- Отдавать image.Config отдельно для быстрых проверок без декодирования
*/
