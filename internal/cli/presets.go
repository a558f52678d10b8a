// Package cli содержит CLI команды приложения.
package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ErickHdzV/ImgPilot/internal/config"
)

// newPresetsCmd создаёт команду для управления пресетами.
func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Управление пресетами конвертации",
		Long: `Управление пресетами конвертации.

Встроенные пресеты (web, social, archive, thumbnail, icons) доступны
всегда. Пользовательские пресеты хранятся в ~/.config/imgpilot/presets/
и создаются флагом --save-preset.

Примеры:
  # Сохранить текущие настройки как пресет
  imgpilot -f avif,webp -q 85 --resize 1920x --save-preset my-project

  # Использовать пресет
  imgpilot ./photos --preset my-project -o ./out

  # Список пресетов
  imgpilot presets list

  # Удалить пользовательский пресет
  imgpilot presets delete my-project`,
	}

	cmd.AddCommand(newPresetsListCmd())
	cmd.AddCommand(newPresetsShowCmd())
	cmd.AddCommand(newPresetsDeleteCmd())

	return cmd
}

// newPresetsListCmd создаёт команду для списка пресетов.
func newPresetsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Показать встроенные и пользовательские пресеты",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("📦 Встроенные пресеты:")
			fmt.Println()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ИМЯ\tОПИСАНИЕ")
			fmt.Fprintln(w, "---\t--------")
			for _, name := range config.ValidPresets() {
				p := config.Presets[config.Preset(name)]
				fmt.Fprintf(w, "%s\t%s\n", name, p.Description)
			}
			w.Flush()

			presets, err := config.ListPresets()
			if err != nil {
				return fmt.Errorf("ошибка получения списка пресетов: %w", err)
			}

			if len(presets) == 0 {
				fmt.Println()
				fmt.Println("Пользовательских пресетов нет. Сохраните пресет командой:")
				fmt.Println("  imgpilot -f webp -q 85 --save-preset my-project")
				return nil
			}

			fmt.Printf("\n📦 Пользовательские пресеты (%d):\n\n", len(presets))

			w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ИМЯ\tФОРМАТЫ\tКАЧЕСТВО\tПУТЬ")
			fmt.Fprintln(w, "---\t-------\t--------\t----")

			for _, p := range presets {
				formats := "-"
				quality := "-"
				if p.Config != nil && p.Config.Output != nil {
					if len(p.Config.Output.Formats) > 0 {
						formats = strings.Join(p.Config.Output.Formats, ",")
					}
					if p.Config.Output.Quality > 0 {
						quality = fmt.Sprintf("%d", p.Config.Output.Quality)
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, formats, quality, p.Path)
			}
			w.Flush()

			return nil
		},
	}
}

// newPresetsShowCmd создаёт команду для отображения пресета.
func newPresetsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Показать содержимое пресета",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			// Встроенный пресет описывается его таблицей
			if p, ok := config.Presets[config.Preset(name)]; ok {
				fmt.Printf("📦 Встроенный пресет: %s\n", name)
				fmt.Printf("   %s\n\n", p.Description)
				fmt.Printf("   formats: %s\n", formatList(p.Formats))
				fmt.Printf("   quality: %d\n", p.Quality)
				if p.Width > 0 || p.Height > 0 {
					fmt.Printf("   resize: %dx%d (keep_aspect: %v)\n", p.Width, p.Height, p.KeepAspect)
				}
				fmt.Printf("   keep_metadata: %v\n", p.KeepMetadata)
				return nil
			}

			fc, path, err := config.LoadPreset(name)
			if err != nil {
				return err
			}
			if fc == nil {
				return fmt.Errorf("пресет '%s' не найден", name)
			}

			fmt.Printf("📦 Пресет: %s\n", name)
			fmt.Printf("📁 Путь: %s\n\n", path)

			if fc.Output != nil {
				fmt.Println("Output:")
				if fc.Output.Dir != "" {
					fmt.Printf("  dir: %s\n", fc.Output.Dir)
				}
				if len(fc.Output.Formats) > 0 {
					fmt.Printf("  formats: %s\n", strings.Join(fc.Output.Formats, ", "))
				}
				if fc.Output.Quality > 0 {
					fmt.Printf("  quality: %d\n", fc.Output.Quality)
				}
				if fc.Output.KeepMetadata {
					fmt.Printf("  keep_metadata: true\n")
				}
				if fc.Output.TargetSize != "" {
					fmt.Printf("  target_size: %s\n", fc.Output.TargetSize)
				}
			}

			if fc.Resize != nil && (fc.Resize.Width > 0 || fc.Resize.Height > 0) {
				fmt.Println("Resize:")
				fmt.Printf("  width: %d\n", fc.Resize.Width)
				fmt.Printf("  height: %d\n", fc.Resize.Height)
				if fc.Resize.KeepAspect != nil {
					fmt.Printf("  keep_aspect: %v\n", *fc.Resize.KeepAspect)
				}
				if fc.Resize.Filter != "" {
					fmt.Printf("  filter: %s\n", fc.Resize.Filter)
				}
			}

			if fc.Processing != nil {
				fmt.Println("Processing:")
				if fc.Processing.Workers > 0 {
					fmt.Printf("  workers: %d\n", fc.Processing.Workers)
				}
				if fc.Processing.Recursive {
					fmt.Printf("  recursive: true\n")
				}
				if fc.Processing.RemoveBackground {
					fmt.Printf("  remove_background: true\n")
				}
				if fc.Processing.Cache {
					fmt.Printf("  cache: true\n")
				}
			}

			return nil
		},
	}
}

// newPresetsDeleteCmd создаёт команду для удаления пресета.
func newPresetsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [name]",
		Short: "Удалить пользовательский пресет",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			if _, ok := config.Presets[config.Preset(name)]; ok {
				return fmt.Errorf("'%s' - встроенный пресет, его нельзя удалить", name)
			}

			if !config.PresetExists(name) {
				return fmt.Errorf("пресет '%s' не найден", name)
			}

			if err := config.DeletePreset(name); err != nil {
				return fmt.Errorf("ошибка удаления пресета: %w", err)
			}

			fmt.Printf("✅ Пресет '%s' удалён\n", name)
			return nil
		},
	}
}

/*
Возможные расширения:
- Добавить команду 'presets export' для экспорта в файл
- Добавить команду 'presets copy' для копирования пресета
*/
