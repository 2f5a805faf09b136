package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CodingDyl/virtec-crm/auth"
	"github.com/CodingDyl/virtec-crm/internal/artifact"
	"github.com/CodingDyl/virtec-crm/internal/config"
	"github.com/CodingDyl/virtec-crm/internal/db"
	"github.com/CodingDyl/virtec-crm/internal/logging"
	"github.com/CodingDyl/virtec-crm/internal/services"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag    = flag.Bool("seed-only", false, "Run DB seed and exit")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logging.New(cfg.App.Dev, cfg.App.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	dbConn, err := db.Open(cfg.Database, log)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	// MIGRATIONS=1 runs the versioned SQL files, otherwise AutoMigrate.
	if err := db.Migrate(dbConn, cfg.App.Migrations || *migrateOnlyFlag, cfg.Database.DSN(), log); err != nil {
		return err
	}
	log.Info("migrations completed")
	if *migrateOnlyFlag {
		return nil
	}

	if cfg.App.Seed || *seedOnlyFlag {
		if err := db.Seed(dbConn); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		if *seedOnlyFlag {
			log.Info("seeding completed")
			return nil
		}
	}

	auth.Configure(cfg.Session.Secret, cfg.Session.TTL, cfg.Session.Secure)
	if cfg.Session.Secret == "devsessionsecret" && !cfg.App.Dev {
		log.Warn("SESSION_SECRET is the development default")
	}
	users := services.NewUserService(dbConn, log)
	auth.SetUserVerifier(users.Exists)

	baseURL := cfg.Server.PublicURL
	if baseURL == "" {
		baseURL = "http://localhost:" + cfg.Server.Port
	}
	store, err := artifact.New(cfg.Artifacts.Backend, dbConn, cfg.Artifacts.Dir, baseURL)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      NewApp(dbConn, store, cfg, log),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.Bool("dev", cfg.App.Dev),
			zap.String("artifacts", cfg.Artifacts.Backend),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case sig := <-quit:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped gracefully")
	return nil
}
