package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/unioncore/dispatch/pkg/core/services"
)

// ReSignCmd creates the reSign command
func ReSignCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reSign <registration_id>",
		Short: "Re-sign a registration to hold its book position",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := services.ReSign(app.Ctx, app.Store, app.Logger, args[0], time.Now())
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Re-sign recorded!\n\n")
			fmt.Printf("Registration ID: %s\n", reg.ID)
			fmt.Printf("Last re-sign:    %s\n", reg.LastResign)
			fmt.Printf("Next due:        %s\n", reg.NextResignDue)
			fmt.Println()

			return nil
		},
	}
}
