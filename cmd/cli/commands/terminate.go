package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/core/services"
)

// TerminateCmd creates the terminate command
func TerminateCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "terminate <dispatch_id> <reason>",
		Short: "End a working dispatch",
		Long: `End a working dispatch with one of: quit, discharge, layoff,
short_call_end, completed. Quits and discharges trigger the two-week
employer blackout; layoffs and short-call ends restore the member's
book position.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			endDate, _ := cmd.Flags().GetString("end-date")

			now := time.Now()
			end := now
			if endDate != "" {
				var err error
				end, err = time.ParseInLocation(model.DateFormat, endDate, now.Location())
				if err != nil {
					return fmt.Errorf("invalid end date: %w", err)
				}
			}

			dispatch, err := services.Terminate(app.Ctx, app.Store, app.Calendar, app.Logger, services.TerminateParams{
				DispatchID: args[0],
				Reason:     args[1],
				EndDate:    end,
			}, now)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Dispatch ended!\n\n")
			fmt.Printf("Dispatch ID: %s\n", dispatch.ID)
			fmt.Printf("Status:      %s\n", dispatch.Status)
			fmt.Printf("Reason:      %s\n", dispatch.TerminationReason)
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("end-date", "", "Last day worked (default today)")

	return cmd
}
