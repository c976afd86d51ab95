// Package main is the entry point for the explorer CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/marvel-explorer/internal/config"
	"github.com/JonMunkholm/marvel-explorer/internal/core"
	_ "github.com/JonMunkholm/marvel-explorer/internal/core/tables" // Register all tables
	"github.com/JonMunkholm/marvel-explorer/internal/database"
	"github.com/JonMunkholm/marvel-explorer/internal/logging"
	"github.com/JonMunkholm/marvel-explorer/internal/snapshot"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errSilent signals a failure that was already reported to the user.
var errSilent = errors.New("silent failure")

func main() {
	if err := rootCmd().Execute(); err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:           "explorer",
		Short:         "Marvel data explorer",
		Long:          `Loads Marvel character, comic, series, event and story snapshots into a relational database and serves them over a JSON API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "Path to .env file (default: .env in current directory)")

	cmd.AddCommand(serveCmd(&envFile))
	cmd.AddCommand(ingestCmd(&envFile))
	cmd.AddCommand(initDBCmd(&envFile))
	cmd.AddCommand(resetCmd(&envFile))
	cmd.AddCommand(versionCmd())

	return cmd
}

// loadConfig loads the .env file and environment, then sets up logging.
func loadConfig(envFile string) (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())
	return cfg, nil
}

// openDatabase connects using the configured URL and pool sizes.
func openDatabase(ctx context.Context, cfg *config.Config) (database.Database, error) {
	db, err := database.NewDatabase(ctx, cfg.Database.URL, database.PoolConfig{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		return database.Database{}, fmt.Errorf("open database: %w", err)
	}
	slog.Info("connected to database", "postgres", db.IsPostgres())
	return db, nil
}

// newEngine builds an ingestion engine over every registered table.
func newEngine(cfg *config.Config, db database.Database) (*core.Engine, error) {
	source, err := snapshot.FromConfig(cfg.Snapshot)
	if err != nil {
		return nil, fmt.Errorf("snapshot source: %w", err)
	}
	return core.NewEngine(db, source, core.All(), core.WithBatchSize(cfg.Ingest.BatchSize)), nil
}
