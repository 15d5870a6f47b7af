package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"casepad/cmd/client/cmd/auth"
	"casepad/cmd/client/cmd/cases"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check server connectivity",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		if err := app.HealthCheck(ctx); err != nil {
			return fmt.Errorf("server unreachable: %w", err)
		}
		fmt.Println("Server is up")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(auth.LoginCmd)
	rootCmd.AddCommand(cases.CasesCmd)
}
