package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unioncore/dispatch/pkg/core/services"
)

// MorningReferralCmd creates the morningReferral command
func MorningReferralCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "morningReferral <request_id>",
		Short: "Run the morning referral for an open labor request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.DispatchMorningReferral(app.Ctx, app.Store, app.Directory, app.Logger, app.Schedule, args[0], time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Morning referral complete!\n\n")
			fmt.Printf("Request:    %s (%s)\n", result.Request.ID, result.Request.Status)
			fmt.Printf("Dispatched: %d of %d positions\n",
				result.Request.PositionsFilled,
				result.Request.PositionsRequested)

			if len(result.Dispatches) > 0 {
				fmt.Printf("\nDispatches:\n")
				for i, d := range result.Dispatches {
					fmt.Printf("  %2d. member %s (dispatch %s), check in by %s\n",
						i+1, d.MemberID, d.ID, d.CheckInDeadline.Format("2006-01-02 15:04"))
				}
			}
			fmt.Println()

			return nil
		},
	}
}
