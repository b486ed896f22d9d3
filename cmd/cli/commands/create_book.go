package commands

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/unioncore/dispatch/pkg/core/model"
	"github.com/unioncore/dispatch/pkg/core/services"
)

// CreateBookCmd creates the createBook command
func CreateBookCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "createBook <code> <name> <classification> <tier_count>",
		Short: "Create an out-of-work book in the catalog",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			tierCount, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("tier_count must be a number: %w", err)
			}

			agreement, _ := cmd.Flags().GetString("agreement")
			workLevel, _ := cmd.Flags().GetString("work-level")
			bookType, _ := cmd.Flags().GetString("book-type")
			region, _ := cmd.Flags().GetString("region")
			contract, _ := cmd.Flags().GetString("contract")
			sortOrder, _ := cmd.Flags().GetInt("sort-order")
			resignInterval, _ := cmd.Flags().GetInt("resign-interval")
			maxCheckMarks, _ := cmd.Flags().GetInt("max-check-marks")

			book, err := services.CreateBook(app.Ctx, app.Store, app.Directory, app.Logger, services.BookSpec{
				Code:             args[0],
				Name:             args[1],
				Classification:   args[2],
				TierCount:        tierCount,
				Region:           region,
				ContractCode:     contract,
				AgreementType:    model.AgreementType(agreement),
				WorkLevel:        model.WorkLevel(workLevel),
				BookType:         model.BookType(bookType),
				MorningSortOrder: sortOrder,
				ResignInterval:   resignInterval,
				MaxCheckMarks:    maxCheckMarks,
			})
			if err != nil {
				return err
			}

			fmt.Printf("\n✓ Book created successfully!\n\n")
			fmt.Printf("Book ID:    %s\n", book.ID)
			fmt.Printf("Code:       %s\n", book.Code)
			fmt.Printf("Name:       %s\n", book.Name)
			fmt.Printf("Tiers:      %d\n", book.TierCount)
			fmt.Printf("Agreement:  %s\n", book.AgreementType)
			fmt.Printf("Re-sign:    every %d days\n", book.ResignIntervalDays)
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("agreement", string(model.AgreementStandard), "Agreement type (standard, PLA, CWA, TERO)")
	cmd.Flags().String("work-level", string(model.WorkLevelJourneyman), "Work level (journeyman, apprentice)")
	cmd.Flags().String("book-type", string(model.BookTypePrimary), "Book type (primary, supplemental)")
	cmd.Flags().String("region", "", "Geographic region")
	cmd.Flags().String("contract", "", "Contract code backing the book")
	cmd.Flags().Int("sort-order", 0, "Position in the morning referral run")
	cmd.Flags().Int("resign-interval", 0, "Days between required re-signs (default 30)")
	cmd.Flags().Int("max-check-marks", 0, "Check marks tolerated before roll-off (default 2)")

	return cmd
}
