package cases

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var ListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cases with draft badges",
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		items, err := app.ListCases(cmd.Context())
		if err != nil {
			return fmt.Errorf("list cases: %w", err)
		}

		if len(items) == 0 {
			fmt.Println("No cases")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPATIENT\tPRIORITY\tCOMPLAINT\tUPDATED\t")
		for _, item := range items {
			badge := ""
			if item.HasDraft {
				badge = " " + draftBadge
			}
			fmt.Fprintf(w, "%s\t%s%s\t%s\t%s\t%s\t\n",
				item.ID, item.PatientName, badge, priorityLabel(item.Priority),
				item.Complaint, item.UpdatedAt.Format("15:04 02.01"))
		}
		return w.Flush()
	},
}
