// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Artifacts ArtifactConfig
	Session   SessionConfig
	App       AppConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
	// PublicURL prefixes artifact download links, e.g. "https://crm.example.co.za".
	PublicURL string
}

// DatabaseConfig holds connection settings. DSNOverride wins when set.
type DatabaseConfig struct {
	Driver      string // postgres | sqlite
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SQLitePath  string
	DSNOverride string
	Debug       bool
}

// ArtifactConfig selects where generated PDFs are stored.
type ArtifactConfig struct {
	Backend string // db | fs
	Dir     string
	MaxSize int64 // bytes accepted for uploads
}

type SessionConfig struct {
	Secret string
	TTL    time.Duration
	Secure bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev          bool
	Migrations   bool
	Seed         bool
	LogLevel     string
	HourlyRate   float64
	ProfileCache time.Duration
}

// DSN returns the connection string for the configured driver.
func (d DatabaseConfig) DSN() string {
	if d.DSNOverride != "" {
		return d.DSNOverride
	}
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			IdleTimeout:  getEnvInt("SERVER_IDLE_TIMEOUT", 60),
			PublicURL:    strings.TrimRight(getEnv("PUBLIC_URL", ""), "/"),
		},
		Database: DatabaseConfig{
			Driver:      getEnv("DB_DRIVER", "postgres"),
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnvInt("DB_PORT", 5432),
			User:        getEnv("DB_USER", "virtec"),
			Password:    getEnv("DB_PASSWORD", "virtec123"),
			DBName:      getEnv("DB_NAME", "virtec_crm"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SQLitePath:  getEnv("SQLITE_PATH", "virtec.db"),
			DSNOverride: strings.Trim(strings.TrimSpace(os.Getenv("DATABASE_DSN")), `"'`),
			Debug:       getEnvBool("DB_DEBUG", false),
		},
		Artifacts: ArtifactConfig{
			Backend: getEnv("ARTIFACT_BACKEND", "db"),
			Dir:     getEnv("ARTIFACT_DIR", "artifacts"),
			MaxSize: int64(getEnvInt("ARTIFACT_MAX_MB", 10)) << 20,
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "devsessionsecret"),
			TTL:    time.Duration(getEnvInt("SESSION_TTL_HOURS", 336)) * time.Hour,
			Secure: getEnvBool("SESSION_SECURE", false),
		},
		App: AppConfig{
			Dev:          getEnvBool("DEV", true),
			Migrations:   getEnvBool("MIGRATIONS", false),
			Seed:         getEnvBool("DB_SEED", true),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			HourlyRate:   getEnvFloat("DEFAULT_HOURLY_RATE", 300),
			ProfileCache: time.Duration(getEnvInt("PROFILE_CACHE_SECONDS", 300)) * time.Second,
		},
	}
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt returns the integer value of an environment variable or a default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBool returns the boolean value of an environment variable or a default.
// Accepts "1", "true", "yes" as true; everything else is false.
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	return value == "1" || value == "true" || value == "yes"
}
