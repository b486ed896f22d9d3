package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/core/services"
)

// GrantExemptionCmd creates the grantExemption command
func GrantExemptionCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grantExemption <member_id> <reason> <start_date>",
		Short: "Grant a re-sign/check-mark exemption to a member",
		Long: `Grant an exemption (military, union_business, salting, medical,
jury_duty, traveling, under_scale) starting on the given date. Open-ended
exemptions omit --end-date and stay active until closed.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			endDate, _ := cmd.Flags().GetString("end-date")

			ex, err := services.GrantExemption(app.Ctx, app.Store, app.Logger, model.Exemption{
				MemberID:  args[0],
				Reason:    model.ExemptionReason(args[1]),
				StartDate: args[2],
				EndDate:   endDate,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Exemption granted!\n\n")
			fmt.Printf("Exemption ID: %s\n", ex.ID)
			fmt.Printf("Member:       %s\n", ex.MemberID)
			fmt.Printf("Reason:       %s\n", ex.Reason)
			if ex.EndDate == "" {
				fmt.Printf("Period:       %s onward (open-ended)\n", ex.StartDate)
			} else {
				fmt.Printf("Period:       %s to %s\n", ex.StartDate, ex.EndDate)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("end-date", "", "Last day the exemption covers (omit for open-ended)")

	return cmd
}
