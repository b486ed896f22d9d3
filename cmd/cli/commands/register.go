package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unioncore/dispatch/pkg/core/priority"
	"github.com/unioncore/dispatch/pkg/core/services"
)

// RegisterCmd creates the register command
func RegisterCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <member_id> <book_code> <classification>",
		Short: "Register a member on an out-of-work book",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			employerID, _ := cmd.Flags().GetString("employer")

			reg, err := services.Register(app.Ctx, app.Store, app.Directory, app.Logger, services.RegisterParams{
				MemberID:       args[0],
				BookCode:       args[1],
				Classification: args[2],
				EmployerID:     employerID,
			}, time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Member registered successfully!\n\n")
			fmt.Printf("Registration ID: %s\n", reg.ID)
			fmt.Printf("Priority:        %s\n", priority.Of(reg))
			fmt.Printf("Tier:            %d\n", reg.Tier)
			fmt.Printf("Next re-sign:    %s\n", reg.NextResignDue)
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("employer", "", "Employer the member is registering toward")

	return cmd
}
