package cases

import (
	"fmt"

	"github.com/spf13/cobra"
)

var DiscardCmd = &cobra.Command{
	Use:   "discard <draft-id>",
	Short: "Throw away a local draft",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		if err := app.DiscardDraft(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("discard draft: %w", err)
		}
		fmt.Println("Discarded")
		return nil
	},
}
