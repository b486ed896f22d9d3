package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unioncore/dispatch/pkg/core/priority"
	"github.com/unioncore/dispatch/pkg/core/services"
)

// RestoreCmd creates the restore command
func RestoreCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore <registration_id>",
		Short: "Return a dispatched registration to the book with its priority intact",
		Long: `Return a dispatched registration to ACTIVE without touching its
priority number. Used by hall staff when a member declines a morning
offer or an employer withdraws a position before work starts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason, _ := cmd.Flags().GetString("reason")

			reg, err := services.Restore(app.Ctx, app.Store, app.Logger, args[0], reason)
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Registration restored!\n\n")
			fmt.Printf("Registration ID: %s\n", reg.ID)
			fmt.Printf("Member ID:       %s\n", reg.MemberID)
			fmt.Printf("Status:          %s\n", reg.Status)
			fmt.Printf("Priority:        %s\n", priority.Of(reg))
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("reason", "staff_restore", "Why the registration is being restored")

	return cmd
}
