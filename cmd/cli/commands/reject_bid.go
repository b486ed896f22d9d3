package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unioncore/dispatch/pkg/core/services"
)

// RejectBidCmd creates the rejectBid command
func RejectBidCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "rejectBid <member_id> <dispatch_id>",
		Short: "Record a member's rejection of a job they won by bid",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			infraction, err := services.RecordBidRejection(app.Ctx, app.Store, app.Logger, args[0], args[1], time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Infraction recorded!\n\n")
			fmt.Printf("Member: %s\n", infraction.MemberID)
			if infraction.SuspendedUntil != "" {
				fmt.Printf("\nSecond infraction inside a year: online bidding suspended until %s.\n", infraction.SuspendedUntil)
			} else {
				fmt.Printf("\nFirst infraction: a second within a year suspends online bidding.\n")
			}
			fmt.Println()

			return nil
		},
	}
}
