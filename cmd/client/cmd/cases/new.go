package cases

import (
	"fmt"

	"github.com/spf13/cobra"

	"casepad/internal/domain/caserecord"
)

var (
	newName      string
	newAge       int
	newSex       string
	newComplaint string
	register     bool
)

var NewCmd = &cobra.Command{
	Use:   "new",
	Short: "Start a draft for a new patient",
	Long: `Creates a local draft for a patient that does not exist server-side
yet. With --register the case is created on the server immediately and the
draft linked to it; without it the draft stays local until registration.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		app, err := appFrom(cmd)
		if err != nil {
			return err
		}

		d, err := app.NewPatientDraft(cmd.Context())
		if err != nil {
			return fmt.Errorf("create draft: %w", err)
		}
		fmt.Printf("Draft: %s\n", d.DraftID)

		if !register {
			return nil
		}

		if newName == "" {
			return fmt.Errorf("--name is required with --register")
		}

		caseID, err := app.RegisterCase(cmd.Context(), d.DraftID, &caserecord.Case{
			PatientName: newName,
			PatientAge:  newAge,
			PatientSex:  newSex,
			Complaint:   newComplaint,
		})
		if err != nil {
			return fmt.Errorf("register case: %w", err)
		}
		fmt.Printf("Case: %s\n", caseID)
		return nil
	},
}

func init() {
	NewCmd.Flags().StringVar(&newName, "name", "", "patient name")
	NewCmd.Flags().IntVar(&newAge, "age", 0, "patient age")
	NewCmd.Flags().StringVar(&newSex, "sex", "", "patient sex")
	NewCmd.Flags().StringVar(&newComplaint, "complaint", "", "presenting complaint")
	NewCmd.Flags().BoolVar(&register, "register", false, "create the server case immediately")
}
