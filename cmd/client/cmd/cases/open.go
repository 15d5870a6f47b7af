package cases

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var OpenCmd = &cobra.Command{
	Use:   "open <case-id>",
	Short: "Open a case for editing",
	Long: `Resolves or creates the local draft for a case and prints the last
known server snapshot. Re-running open on the same case resumes the
existing draft.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		d, snapshot, err := app.OpenCase(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("open case: %w", err)
		}

		fmt.Printf("Draft: %s\n", d.DraftID)
		if d.Data != nil {
			fmt.Println("Resumed local draft with unsaved edits.")
		}

		if snapshot != nil {
			out, err := json.MarshalIndent(snapshot, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println("Server snapshot:")
			fmt.Println(string(out))
		} else {
			fmt.Println("No server snapshot available (offline, never cached).")
		}
		return nil
	},
}
