package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unioncore/dispatch/pkg/core/services"
)

// ProcessWindowCloseCmd creates the processWindowClose command
func ProcessWindowCloseCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "processWindowClose <request_id>",
		Short: "Resolve a request's bids after its window closes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := services.ProcessWindowClose(app.Ctx, app.Store, app.Logger, app.Schedule, args[0], time.Now())
			if err != nil {
				return err
			}

			if result.AlreadyProcessed {
				fmt.Printf("\nWindow for request %s was already processed.\n\n", result.Request.ID)
				return nil
			}

			fmt.Printf("\n✓ Window processed!\n\n")
			fmt.Printf("Request:   %s (%s)\n", result.Request.ID, result.Request.Status)
			fmt.Printf("Filled:    %d of %d positions\n",
				result.Request.PositionsFilled,
				result.Request.PositionsRequested)
			fmt.Printf("Outranked: %d bids\n", result.Outranked)

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
