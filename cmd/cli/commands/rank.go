package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/core/priority"
	"github.com/unioncore/dispatch/pkg/core/services"
)

// RankCmd creates the rank command
func RankCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank <book_id> <tier>",
		Short: "Show a book tier's dispatch order",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tier, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("tier must be a number: %w", err)
			}

			agreement, _ := cmd.Flags().GetString("agreement")
			employerID, _ := cmd.Flags().GetString("employer")

			regs, err := services.RankCandidates(app.Ctx, app.Store, app.Directory, app.Logger, services.RankParams{
				BookID:        args[0],
				Tier:          tier,
				AgreementType: model.AgreementType(agreement),
				EmployerID:    employerID,
			}, time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("\nTier %d order (%d eligible):\n\n", tier, len(regs))
			for i, reg := range regs {
				fmt.Printf("  %3d. %-12s priority %s (registered %s)\n",
					i+1,
					reg.MemberID,
					priority.Of(&reg),
					priority.DateString(reg.PriorityDay),
				)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("agreement", "", "Filter to members eligible for an agreement type")
	cmd.Flags().String("employer", "", "Exclude members blacked out at this employer")

	return cmd
}
