package cases

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"casepad/internal/domain/commit"
)

var CommitCmd = &cobra.Command{
	Use:   "commit <case-id>",
	Short: "Commit the local draft to the server",
	Long: `Pushes the active draft of a case to the server as one wholesale
replace. On failure the draft is kept untouched locally and can be
retried.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		res := app.CommitDraft(cmd.Context(), args[0])
		if res.Committed {
			color.Green("Committed")
			// The committed draft has served its purpose; remove it so it
			// does not linger in the drafts list.
			if err := app.DiscardDraft(cmd.Context(), res.DraftID); err != nil {
				return fmt.Errorf("remove committed draft: %w", err)
			}
			return nil
		}

		switch res.Reason {
		case commit.ReasonEditLimit:
			// The server's remediation text, verbatim.
			color.Red(res.Message)
		case commit.ReasonValidation:
			color.Yellow("Rejected by validation: %s", res.Message)
		case commit.ReasonInFlight:
			fmt.Println(res.Message)
		default:
			color.Yellow(res.Message)
		}
		return fmt.Errorf("commit failed")
	},
}
