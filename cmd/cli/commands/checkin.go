package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unioncore/dispatch/pkg/core/services"
)

// CheckinCmd creates the checkin command
func CheckinCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "checkin <dispatch_id>",
		Short: "Confirm a dispatched member checked in with the employer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ConfirmCheckin(app.Ctx, app.Store, app.Logger, args[0], time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Check-in confirmed!\n\n")
			fmt.Printf("Dispatch ID: %s\n", result.Dispatch.ID)
			fmt.Printf("Status:      %s\n", result.Dispatch.Status)
			if result.Late {
				fmt.Printf("\nCheck-in was after the deadline; the dispatch is flagged for review.\n")
			}
			fmt.Println()

			return nil
		},
	}
}
