package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/core/services"
)

// CheckMarkCmd creates the checkMark command
func CheckMarkCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkMark <registration_id>",
		Short: "Record a check mark against a registration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, _ := cmd.Flags().GetString("date")
			reason, _ := cmd.Flags().GetString("reason")
			exception, _ := cmd.Flags().GetBool("exception")

			reg, err := services.ApplyCheckMark(app.Ctx, app.Store, app.Logger, services.CheckMarkParams{
				RegistrationID: args[0],
				Date:           date,
				Reason:         reason,
				IsException:    exception,
			}, time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Check mark recorded!\n\n")
			fmt.Printf("Registration ID: %s\n", reg.ID)
			fmt.Printf("Check marks:     %d\n", reg.CheckMarkCount)
			fmt.Printf("Status:          %s\n", reg.Status)
			if reg.Status == model.RegistrationRolledOff {
				fmt.Printf("\nThe member has rolled off the book and must re-register.\n")
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("date", "", "Referral date the decline occurred on (default today)")
	cmd.Flags().String("reason", "", "Decline reason")
	cmd.Flags().Bool("exception", false, "Record as an exception that does not count")

	return cmd
}
