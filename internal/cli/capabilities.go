package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ErickHdzV/ImgPilot/internal/capability"
)

// newCapabilitiesCmd создаёт команду capabilities.
func newCapabilitiesCmd() *cobra.Command {
	var (
		avifencPath string
		rembgPath   string
	)

	cmd := &cobra.Command{
		Use:   "capabilities",
		Short: "Показать доступность опциональных возможностей",
		Long: `Показать доступность опциональных возможностей.

AVIF кодируется внешним avifenc (пакет libavif), удаление фона -
внешним rembg. Отсутствующий инструмент отключает только свою
возможность, остальные форматы продолжают работать.`,
		Run: func(cmd *cobra.Command, args []string) {
			reg := capability.Detect(avifencPath, rembgPath)

			fmt.Println("🔍 Возможности:")
			fmt.Println()

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ВОЗМОЖНОСТЬ\tСТАТУС\tИНСТРУМЕНТ\tВЕРСИЯ\tПРИМЕЧАНИЕ")
			fmt.Fprintln(w, "-----------\t------\t----------\t------\t----------")

			for _, e := range reg.All() {
				status := "❌ недоступна"
				if e.Status.Available {
					status = "✅ доступна"
				}

				tool := e.Status.Path
				if tool == "" {
					tool = "-"
				}
				version := e.Status.Version
				if version == "" {
					version = "-"
				}
				note := e.Status.Reason
				if note == "" {
					note = "-"
				}

				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					e.Capability, status, tool, version, note)
			}
			w.Flush()
		},
	}

	cmd.Flags().StringVar(&avifencPath, "avifenc", "", "Путь к бинарнику avifenc")
	cmd.Flags().StringVar(&rembgPath, "rembg", "", "Путь к бинарнику rembg")

	return cmd
}
