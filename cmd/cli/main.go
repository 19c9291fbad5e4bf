package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/referee-designation/cmd/cli/commands"
	"github.com/jakechorley/referee-designation/internal/config"
	"github.com/jakechorley/referee-designation/pkg/postgres"
	"github.com/jakechorley/referee-designation/pkg/utils/logging"
)

var (
	env     string
	verbose bool
	app     *commands.AppContext
	pg      *postgres.DB
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "cli",
		Short: "Referee Designation CLI - Designate referees to federation matches",
		Long:  `A CLI tool for designating referees and scorers to matches, sending offers and tracking their responses.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app == nil {
				return
			}
			app.Close()
			if pg != nil {
				pg.Close()
			}
			if app.Logger != nil {
				app.Logger.Sync()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log debug output to the console")
	rootCmd.MarkPersistentFlagRequired("env")

	// app is populated by initApp before any RunE executes
	app = &commands.AppContext{}

	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.RunDesignationCmd(app))
	rootCmd.AddCommand(commands.PublishDesignationsCmd(app))
	rootCmd.AddCommand(commands.RespondCmd(app))
	rootCmd.AddCommand(commands.ExpireOffersCmd(app))
	rootCmd.AddCommand(commands.ListenResponsesCmd(app))
	rootCmd.AddCommand(commands.ConfirmDesignationsCmd(app))
	rootCmd.AddCommand(commands.CancelMatchCmd(app))
	rootCmd.AddCommand(commands.ViewShortfallsCmd(app))
	rootCmd.AddCommand(commands.ExportSheetCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config and database. Google and NATS clients are
// created by the commands that need them.
func initApp() error {
	var err error
	app.Env = env
	app.Ctx = context.Background()
	app.Clock = clockwork.NewRealClock()

	app.Logger, err = logging.InitLogger(env, logging.Options{Verbose: verbose})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.String("federation", app.Cfg.Federation),
		zap.String("channel", app.Cfg.NotificationChannel))

	app.Secrets, err = config.LoadSecrets(env)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	app.Logger.Info("Connecting to database")
	pg, err = postgres.NewDB(app.Ctx, app.Secrets.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.Database = pg
	app.Migrator = pg
	app.Logger.Info("Database initialized successfully")

	return nil
}
