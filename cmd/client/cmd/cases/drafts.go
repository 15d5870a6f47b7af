package cases

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"casepad/internal/domain/draft"
)

var DraftsCmd = &cobra.Command{
	Use:   "drafts",
	Short: "List local drafts on this device",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		drafts, err := app.ListDrafts(cmd.Context())
		if err != nil {
			return fmt.Errorf("list drafts: %w", err)
		}

		if len(drafts) == 0 {
			fmt.Println("No local drafts")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DRAFT\tCASE\tSTATUS\tUPDATED\t")
		for _, d := range drafts {
			caseID := d.CaseID
			if caseID == "" {
				caseID = "(new patient)"
			}
			status := string(d.Status)
			if d.Status == draft.StatusDraft {
				status = draftBadge
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
				d.DraftID, caseID, status, d.UpdatedAt.Format("15:04 02.01"))
		}
		return w.Flush()
	},
}
