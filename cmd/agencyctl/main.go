// Command agencyctl runs maintenance tasks against the CRM database.
package main

import (
	"fmt"
	"os"

	"github.com/CodingDyl/virtec-crm/internal/config"
	"github.com/CodingDyl/virtec-crm/internal/db"
	"github.com/CodingDyl/virtec-crm/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var verbose bool

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "agencyctl",
		Short: "Administer the quote and agreement engine",
		Long: `agencyctl works directly against the database configured by the
same environment variables as the server (DB_DRIVER, DB_HOST, DATABASE_DSN...).
A .env file in the working directory is loaded first.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(newMigrateCmd(), newSeedCmd(), newUserCmd(), newQuoteCmd())
	return root
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// session bundles what database subcommands need.
type session struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func openSession() (*session, error) {
	cfg := config.Load()
	level := cfg.App.LogLevel
	if verbose {
		level = "debug"
	}
	log, err := logging.New(cfg.App.Dev, level)
	if err != nil {
		return nil, err
	}
	gdb, err := db.Open(cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return &session{cfg: cfg, log: log, db: gdb}, nil
}

func (s *session) close() {
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = s.log.Sync()
}
