package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unioncore/dispatch/pkg/core/services"
	"github.com/unioncore/dispatch/pkg/db"
)

// ListBooksCmd creates the listBooks command
func ListBooksCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listBooks",
		Short: "List out-of-work books in morning referral order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			classification, _ := cmd.Flags().GetString("classification")
			region, _ := cmd.Flags().GetString("region")
			activeOnly, _ := cmd.Flags().GetBool("active-only")

			books, err := services.ListBooks(app.Ctx, app.Store, db.BookFilter{
				Classification: classification,
				Region:         region,
				ActiveOnly:     activeOnly,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d books:\n\n", len(books))
			for _, b := range books {
				status := "active"
				if !b.Active {
					status = "inactive"
				}
				fmt.Printf("- %s %q (%s/%s) - %d tiers - %s - %s\n",
					b.Code,
					b.Name,
					b.Classification,
					b.Region,
					b.TierCount,
					b.AgreementType,
					status,
				)
			}

			return nil
		},
	}

	cmd.Flags().String("classification", "", "Filter by craft classification")
	cmd.Flags().String("region", "", "Filter by region")
	cmd.Flags().Bool("active-only", false, "Hide inactive books")

	return cmd
}
