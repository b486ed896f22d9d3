package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// InitDbCmd creates the initDb command
func InitDbCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "initDb",
		Short: "Create or migrate the engine's database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Store.Migrate(); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}

			fmt.Printf("\n✓ Database schema is up to date (%s).\n\n", app.Cfg.DatabasePath)
			return nil
		},
	}
}
