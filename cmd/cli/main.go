package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unioncore/dispatch/cmd/cli/commands"
	"github.com/unioncore/dispatch/internal/config"
	"github.com/unioncore/dispatch/pkg/clients/memberdir"
	"github.com/unioncore/dispatch/pkg/core/referral"
	"github.com/unioncore/dispatch/pkg/db"
	"github.com/unioncore/dispatch/pkg/utils/logging"
)

var (
	env   string
	actor string
	app   *commands.AppContext
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dispatchctl",
		Short: "Referral hall CLI - Manage out-of-work books and dispatches",
		Long:  `A CLI tool for managing out-of-work book registrations, employer labor requests, online bidding, and dispatches.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.Logger != nil {
				app.Logger.Sync()
			}
			if app != nil && app.Store != nil {
				app.Store.Close()
			}
		},
	}

	// Add persistent flags
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().StringVar(&actor, "actor", "", "Staff identifier recorded on audit rows (default: OS user)")
	rootCmd.MarkPersistentFlagRequired("env")

	app = &commands.AppContext{}

	// Add all commands
	rootCmd.AddCommand(commands.InitDbCmd(app))
	rootCmd.AddCommand(commands.CreateBookCmd(app))
	rootCmd.AddCommand(commands.ListBooksCmd(app))
	rootCmd.AddCommand(commands.RegisterCmd(app))
	rootCmd.AddCommand(commands.ReSignCmd(app))
	rootCmd.AddCommand(commands.CheckMarkCmd(app))
	rootCmd.AddCommand(commands.GrantExemptionCmd(app))
	rootCmd.AddCommand(commands.CreateRequestCmd(app))
	rootCmd.AddCommand(commands.MorningReferralCmd(app))
	rootCmd.AddCommand(commands.BidCmd(app))
	rootCmd.AddCommand(commands.RejectBidCmd(app))
	rootCmd.AddCommand(commands.ProcessWindowCloseCmd(app))
	rootCmd.AddCommand(commands.WindowStatusCmd(app))
	rootCmd.AddCommand(commands.CheckinCmd(app))
	rootCmd.AddCommand(commands.TerminateCmd(app))
	rootCmd.AddCommand(commands.RestoreCmd(app))
	rootCmd.AddCommand(commands.RankCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, directory client, and database
func initApp() error {
	var err error

	// Initialize logger
	app.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully")

	// Resolve the bidding timetable
	app.Schedule, err = app.Cfg.Schedule()
	if err != nil {
		return fmt.Errorf("failed to resolve bidding schedule: %w", err)
	}

	// Build the business-day calendar
	app.Calendar, err = referral.NewCalendar(app.Cfg.Holidays)
	if err != nil {
		return fmt.Errorf("failed to build referral calendar: %w", err)
	}

	// Load the member/employer directory snapshot
	app.Logger.Info("Loading directory snapshot", zap.String("path", app.Cfg.DirectoryPath))
	app.Directory, err = memberdir.NewClient(app.Cfg.DirectoryPath, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to load directory: %w", err)
	}

	// Open the database
	app.Logger.Info("Opening database", zap.String("path", app.Cfg.DatabasePath))
	app.Store, err = db.Open(app.Cfg.DatabasePath, app.Logger)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	app.Logger.Info("Database opened successfully")

	// Stamp the acting staff member onto audit rows
	if actor == "" {
		actor = os.Getenv("USER")
	}
	app.Ctx = db.WithActor(context.Background(), actor)

	return nil
}
