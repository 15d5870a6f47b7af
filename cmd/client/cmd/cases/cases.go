package cases

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"casepad/cmd/client/cmd/types"
	"casepad/internal/app/client"
	"casepad/internal/domain/caserecord"
)

var CasesCmd = &cobra.Command{
	Use:   "cases",
	Short: "Work with ER cases and local drafts",
}

func init() {
	CasesCmd.AddCommand(ListCmd)
	CasesCmd.AddCommand(OpenCmd)
	CasesCmd.AddCommand(NewCmd)
	CasesCmd.AddCommand(SaveCmd)
	CasesCmd.AddCommand(CommitCmd)
	CasesCmd.AddCommand(DiscardCmd)
	CasesCmd.AddCommand(DraftsCmd)
	CasesCmd.AddCommand(ExportCmd)
}

func appFrom(cmd *cobra.Command) (*client.App, error) {
	app, ok := cmd.Context().Value(types.ClientAppKey).(*client.App)
	if !ok || app == nil {
		return nil, fmt.Errorf("application is not initialized")
	}
	return app, nil
}

func priorityLabel(p caserecord.Priority) string {
	switch p {
	case caserecord.PriorityRed:
		return color.New(color.FgRed, color.Bold).Sprint("RED")
	case caserecord.PriorityYellow:
		return color.New(color.FgYellow).Sprint("YELLOW")
	case caserecord.PriorityGreen:
		return color.New(color.FgGreen).Sprint("GREEN")
	default:
		return color.New(color.Faint).Sprint("UNKNOWN")
	}
}

var draftBadge = color.New(color.FgCyan).Sprint("[draft]")
