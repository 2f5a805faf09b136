// Package db opens the database, applies migrations and seeds reference data.
package db

import (
	"fmt"
	"time"

	"github.com/CodingDyl/virtec-crm/internal/config"
	"github.com/CodingDyl/virtec-crm/internal/logging"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectAttempts = 10

// Open connects with retries so the app can start before Postgres is ready.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	dsn := cfg.DSN()
	if cfg.Driver != "sqlite" {
		dsn = NormalizeDSN(dsn)
	}
	if dsn == "" {
		return nil, fmt.Errorf("empty DSN for driver %q", cfg.Driver)
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres", "":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}

	logLevel := logger.Silent
	if cfg.Debug {
		logLevel = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logLevel)}

	log.Info("connecting to database", zap.String("driver", cfg.Driver), zap.String("dsn", logging.MaskDSN(dsn)))
	var (
		db  *gorm.DB
		err error
	)
	for i := 1; i <= connectAttempts; i++ {
		db, err = gorm.Open(dialector, gcfg)
		if err == nil {
			err = db.Exec("SELECT 1").Error
		}
		if err == nil {
			break
		}
		log.Warn("database not ready", zap.Int("attempt", i), zap.Error(err))
		if i < connectAttempts {
			time.Sleep(2 * time.Second)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if cfg.Driver == "sqlite" {
		// SQLite ignores foreign keys unless asked.
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, err
		}
	}
	return db, nil
}
