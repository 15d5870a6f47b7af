package cases

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"casepad/internal/domain/casesheet"
)

var (
	saveSection string
	saveJSON    string
	saveFile    string
)

var SaveCmd = &cobra.Command{
	Use:   "save <draft-id>",
	Short: "Save form state into the local draft",
	Long: `Writes one section of the case sheet into the draft. The write is
local only and never needs connectivity; nothing reaches the server until
commit.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}
		draftID := args[0]

		payload := []byte(saveJSON)
		if saveFile != "" {
			payload, err = os.ReadFile(saveFile)
			if err != nil {
				return fmt.Errorf("read section file: %w", err)
			}
		}
		if !json.Valid(payload) {
			return fmt.Errorf("section payload is not valid JSON")
		}

		d, err := app.LoadDraft(cmd.Context(), draftID)
		if err != nil {
			return fmt.Errorf("load draft: %w", err)
		}
		if d == nil {
			return fmt.Errorf("draft %s not found", draftID)
		}

		data := d.Data
		if data == nil {
			data = casesheet.Document{}
		}
		data[saveSection] = json.RawMessage(payload)

		if err := app.SaveToDraft(cmd.Context(), draftID, data); err != nil {
			return fmt.Errorf("save draft: %w", err)
		}
		if err := app.DraftSaveError(draftID); err != nil {
			return fmt.Errorf("draft not saved: %w", err)
		}

		fmt.Println("Saved")
		return nil
	},
}

func init() {
	SaveCmd.Flags().StringVar(&saveSection, "section", "", "case sheet section name")
	SaveCmd.Flags().StringVar(&saveJSON, "json", "{}", "section payload as JSON")
	SaveCmd.Flags().StringVar(&saveFile, "file", "", "read the section payload from a file")
	SaveCmd.MarkFlagRequired("section")
}
