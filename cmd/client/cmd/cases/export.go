package cases

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var exportOut string

var ExportCmd = &cobra.Command{
	Use:   "export <case-id>",
	Short: "Export the case document for handover",
	Long: `Builds the handover document: a fresh server fetch merged over the
locally cached snapshot. When the server is unreachable the cached snapshot
alone is exported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		doc, err := app.ExportCase(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("export case: %w", err)
		}

		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return err
		}

		if exportOut != "" {
			if err := os.WriteFile(exportOut, out, 0644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Printf("Exported to %s\n", exportOut)
			return nil
		}

		fmt.Println(string(out))
		return nil
	},
}

func init() {
	ExportCmd.Flags().StringVar(&exportOut, "out", "", "write the export to a file")
}
