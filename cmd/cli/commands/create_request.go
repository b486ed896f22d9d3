package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/core/services"
)

// CreateRequestCmd creates the createRequest command
func CreateRequestCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createRequest <employer_id> <book_code> <positions>",
		Short: "Open an employer labor request against a book",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			positions, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("positions must be a number: %w", err)
			}

			wage, _ := cmd.Flags().GetFloat64("wage")
			start, _ := cmd.Flags().GetString("start")
			region, _ := cmd.Flags().GetString("region")
			agreement, _ := cmd.Flags().GetString("agreement")
			shortCall, _ := cmd.Flags().GetBool("short-call")
			exception, _ := cmd.Flags().GetString("check-mark-exception")

			now := time.Now()
			startAt := now
			if start != "" {
				startAt, err = time.ParseInLocation(model.DateFormat, start, now.Location())
				if err != nil {
					return fmt.Errorf("invalid start date: %w", err)
				}
			}

			req, err := services.CreateLaborRequest(app.Ctx, app.Store, app.Directory, app.Logger, app.Schedule, services.LaborRequestSpec{
				EmployerID:         args[0],
				BookCode:           args[1],
				Positions:          positions,
				WageRate:           wage,
				StartAt:            startAt,
				Region:             region,
				AgreementType:      model.AgreementType(agreement),
				ShortCall:          shortCall,
				CheckMarkException: exception,
			}, now)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Labor request created!\n\n")
			fmt.Printf("Request ID:   %s\n", req.ID)
			fmt.Printf("Positions:    %d\n", req.PositionsRequested)
			fmt.Printf("Window opens: %s\n", req.WindowOpensAt.Format(time.RFC3339))
			fmt.Printf("Window closes:%s\n", req.WindowClosesAt.Format(time.RFC3339))
			if req.CutoffApplied {
				fmt.Printf("\nReceived after cutoff: queued for tomorrow's referral.\n")
			}
			if !req.GeneratesCheckMark {
				fmt.Printf("Declines will not generate check marks.\n")
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().Float64("wage", 0, "Offered wage rate")
	cmd.Flags().String("start", "", "Job start date (default today)")
	cmd.Flags().String("region", "", "Job site region")
	cmd.Flags().String("agreement", "", "Agreement type (defaults to the book's)")
	cmd.Flags().Bool("short-call", false, "Short-call job (10 business days or fewer)")
	cmd.Flags().String("check-mark-exception", "", "Known exception condition waiving check marks")

	return cmd
}
