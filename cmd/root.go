package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/pable/tkstats/internal/aggregator"
	"github.com/pable/tkstats/internal/config"
	"github.com/pable/tkstats/internal/logger"
	"github.com/pable/tkstats/internal/roster"
	"github.com/pable/tkstats/internal/storage"
)

var (
	dbPath     string
	configPath string
	logLevel   string
)

// Resolved in PersistentPreRunE.
var (
	cfg     *config.Config
	catalog *roster.Catalog
	log     zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tkstats",
	Short: "Fighting-game match tracker",
	Long: `Record Tekken match results and derive per-character win rates, usage,
head-to-head matchups and per-player statistics.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (default ~/.tkstats/matches.db)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(usedCmd)
	rootCmd.AddCommand(matchupsCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(rankingsCmd)
	rootCmd.AddCommand(rosterCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(placeholdersCmd)
	rootCmd.AddCommand(shellCmd)
}

// setup loads the config file and environment, lets flags override them,
// and builds the logger and character catalog.
func setup(cmd *cobra.Command, _ []string) error {
	if configPath == "" {
		configPath = os.Getenv("TKSTATS_CONFIG")
	}
	c, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		c.Database.Path = dbPath
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	cfg = c

	if cmd.Name() == "serve" {
		log, err = logger.New(os.Stdout, cfg.LogLevel)
	} else {
		log, err = logger.NewConsole(os.Stderr, cfg.LogLevel)
	}
	if err != nil {
		return err
	}

	catalog, err = cfg.Catalog()
	if err != nil {
		return err
	}
	log.Debug().
		Str("db_path", cfg.Database.Path).
		Int("characters", catalog.Len()).
		Msg("configuration loaded")
	return nil
}

// openStore opens the configured database, creating its directory first.
func openStore() (*storage.DB, error) {
	if dir := filepath.Dir(cfg.Database.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}
	db, err := storage.Open(cfg.Database.Path, log)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

func newAggregator() *aggregator.Aggregator {
	return aggregator.New(catalog)
}
