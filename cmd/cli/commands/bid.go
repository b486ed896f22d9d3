package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unioncore/dispatch/pkg/core/services"
)

// BidCmd creates the bid command
func BidCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "bid <member_id> <request_id>",
		Short: "Submit an internet bid on an open labor request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bid, err := services.SubmitBid(app.Ctx, app.Store, app.Directory, app.Logger, app.Schedule, args[0], args[1], time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Bid submitted!\n\n")
			fmt.Printf("Bid ID:    %s\n", bid.ID)
			fmt.Printf("Status:    %s\n", bid.Status)
			fmt.Printf("Submitted: %s\n", bid.SubmittedAt.Format(time.RFC3339))
			fmt.Printf("\nThe bid resolves by book priority when the window closes.\n\n")

			return nil
		},
	}
}
