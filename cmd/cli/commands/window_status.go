package commands

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/unioncore/dispatch/pkg/core/referral"
)

// WindowStatusCmd creates the windowStatus command
func WindowStatusCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "windowStatus",
		Short: "Show whether online bidding is currently open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()

			if app.Schedule.IsBiddingOpen(now) {
				fmt.Printf("\nBidding is OPEN (closes at %s).\n", app.Schedule.CloseFor(now).Format("2006-01-02 15:04"))
			} else {
				fmt.Printf("\nBidding is CLOSED (opens at %s).\n", app.Schedule.OpenFor(now).Format("2006-01-02 15:04"))
			}

			next := app.Schedule.NextEvent(now)
			fmt.Printf("Next event: %s at %s\n", next.Name, next.At.Format("2006-01-02 15:04"))

			if app.Schedule.IsPastCutoff(now) {
				fmt.Printf("Employer cutoff has passed; new requests queue for tomorrow.\n")
			}

			if len(app.Cfg.ReferralSchedules) > 0 {
				fmt.Printf("\nUpcoming morning referral runs:\n")
				codes := make([]string, 0, len(app.Cfg.ReferralSchedules))
				for code := range app.Cfg.ReferralSchedules {
					codes = append(codes, code)
				}
				sort.Strings(codes)
				for _, code := range codes {
					run, err := referral.NextRun(app.Cfg.ReferralSchedules[code], now)
					if err != nil {
						return err
					}
					fmt.Printf("  %-12s %s\n", code, run.Format("2006-01-02 15:04"))
				}
			}
			fmt.Println()

			return nil
		},
	}
}
