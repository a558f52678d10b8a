package config

import (
	"github.com/ErickHdzV/ImgPilot/internal/imageio"
)

// Preset определяет профиль конвертации.
type Preset string

const (
	// PresetWeb - оптимизация для веба: webp, качество 80, вписывание в 1920x1080.
	PresetWeb Preset = "web"
	// PresetSocial - квадрат для соцсетей: jpeg, качество 85, 1080x1080.
	PresetSocial Preset = "social"
	// PresetArchive - архивное качество: PNG без потерь, EXIF сохраняется.
	PresetArchive Preset = "archive"
	// PresetThumbnail - превью: webp, качество 70, вписывание в 320x320.
	PresetThumbnail Preset = "thumbnail"
	// PresetIcons - иконки: ICO с набором размеров 16-256.
	PresetIcons Preset = "icons"
)

// PresetConfig содержит настройки для пресета.
type PresetConfig struct {
	// Formats - целевые форматы.
	Formats []imageio.Format
	// Quality - качество (0-100).
	Quality int
	// Width - целевая ширина (0 = не менять).
	Width int
	// Height - целевая высота (0 = не менять).
	Height int
	// KeepAspect - сохранять пропорции.
	KeepAspect bool
	// KeepMetadata - переносить EXIF в результат.
	KeepMetadata bool
	// Description - строка для вывода в списке пресетов.
	Description string
}

// Presets содержит все встроенные пресеты.
var Presets = map[Preset]PresetConfig{
	PresetWeb: {
		Formats:     []imageio.Format{imageio.FormatWebP},
		Quality:     80,
		Width:       1920,
		Height:      1080,
		KeepAspect:  true,
		Description: "WebP 80%, вписывание в 1920x1080 - для сайтов",
	},
	PresetSocial: {
		Formats:     []imageio.Format{imageio.FormatJPEG},
		Quality:     85,
		Width:       1080,
		Height:      1080,
		KeepAspect:  true,
		Description: "JPEG 85%, 1080x1080 - для соцсетей",
	},
	PresetArchive: {
		Formats:      []imageio.Format{imageio.FormatPNG},
		Quality:      100,
		KeepAspect:   true,
		KeepMetadata: true,
		Description:  "PNG без потерь, EXIF сохраняется - для архива",
	},
	PresetThumbnail: {
		Formats:     []imageio.Format{imageio.FormatWebP},
		Quality:     70,
		Width:       320,
		Height:      320,
		KeepAspect:  true,
		Description: "WebP 70%, вписывание в 320x320 - миниатюры",
	},
	PresetIcons: {
		Formats:     []imageio.Format{imageio.FormatICO},
		Quality:     100,
		KeepAspect:  true,
		Description: "ICO с набором размеров 16-256 - иконки приложений",
	},
}

// ApplyPreset применяет встроенный пресет к конфигурации.
// Возвращает true, если пресет был применён.
func (c *Config) ApplyPreset(preset string) bool {
	p, ok := Presets[Preset(preset)]
	if !ok {
		return false
	}

	c.Formats = p.Formats
	c.Quality = p.Quality
	c.ResizeWidth = p.Width
	c.ResizeHeight = p.Height
	c.KeepAspect = p.KeepAspect
	c.KeepMetadata = p.KeepMetadata
	c.Preset = preset

	return true
}

// ValidPresets возвращает список доступных встроенных пресетов.
func ValidPresets() []string {
	return []string{
		string(PresetWeb),
		string(PresetSocial),
		string(PresetArchive),
		string(PresetThumbnail),
		string(PresetIcons),
	}
}

/*
Возможные расширения:
- Добавить пресет для email (ограничение по размеру файла через target-size)
- Добавить пресет для печати (высокое качество без resize)
*/
