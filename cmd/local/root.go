package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"support-agent/internal/app"
	"support-agent/internal/config"
	"support-agent/internal/repository"
)

var (
	cfgFile string
	envFile string
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "support-agent",
	Short: "Customer support chat agent for the storefront",
	Long: `Runs the support agent locally: an HTTP server exposing the chat API, or a
one-shot question from the command line. Interactions are stored in SQLite.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "YAML config file overlaying the defaults")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides SQLITE_PATH)")
}

// setup loads configuration and opens the local store. The caller closes the store.
func setup(ctx context.Context) (*config.Config, *repository.SQLiteStore, *app.App, *slog.Logger, error) {
	// a missing .env is normal
	_ = godotenv.Load(envFile)

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if dbPath != "" {
		cfg.Storage.SQLitePath = dbPath
	}
	if cfg.Storage.SQLitePath == "" {
		cfg.Storage.SQLitePath = "support-agent.db"
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, nil, err
	}

	logger := app.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	store, err := repository.OpenSQLite(cfg.Storage.SQLitePath)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	a, err := app.New(cfg, store, logger)
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, nil, fmt.Errorf("wire application: %w", err)
	}
	logger.InfoContext(ctx, "support agent ready",
		"model", cfg.LLM.Model,
		"knowledge_entries", len(a.Knowledge.Entries()),
		"sqlite", cfg.Storage.SQLitePath,
	)
	return cfg, store, a, logger, nil
}
