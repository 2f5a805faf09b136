package db

import (
	"errors"
	"fmt"

	"github.com/CodingDyl/virtec-crm/internal/models"
	migrate "github.com/golang-migrate/migrate/v4"
	// The following blank imports register the postgres driver and file source for golang-migrate.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// MigrationsSource is where SQL migrations are read from.
var MigrationsSource = "file://migrations"

// Migrate applies the schema. With useSQL on a postgres connection it runs
// the versioned SQL files; otherwise it falls back to gorm AutoMigrate.
func Migrate(db *gorm.DB, useSQL bool, dsn string, log *zap.Logger) error {
	if useSQL && db.Dialector.Name() == "postgres" {
		log.Info("running sql migrations", zap.String("source", MigrationsSource))
		if err := RunSQLMigrations(ToURLDSN(NormalizeDSN(dsn))); err != nil {
			return fmt.Errorf("sql migrations failed: %w", err)
		}
	} else {
		if useSQL {
			log.Warn("sql migrations only target postgres, using automigrate", zap.String("dialect", db.Dialector.Name()))
		}
		if err := AutoMigrate(db); err != nil {
			return err
		}
	}
	for _, table := range []string{"users", "customers", "projects", "quotes", "artifacts"} {
		if !db.Migrator().HasTable(table) {
			return errors.New("missing table after migration: " + table)
		}
	}
	return nil
}

func AutoMigrate(db *gorm.DB) error {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// RunSQLMigrations executes the versioned migrations against a postgres URL.
func RunSQLMigrations(url string) error {
	m, err := migrate.New(MigrationsSource, url)
	if err != nil {
		return err
	}
	defer m.Close()
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
