// Package config handles application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
// Fields are populated from environment variables.
type Config struct {
	// Server settings
	Port int    // HTTP port to listen on
	Env  string // development, staging, production

	// Reference table
	TableSource  string // embedded, file, database
	TablePath    string // YAML table file (file source)
	DatabasePath string // Path to SQLite file (database source)
	WatchTable   bool   // Reload TablePath when it changes (file source)

	// Range conversions
	MaxRangeDays int // Upper bound on days per range request

	// Authentication
	APIKey string // API key for admin endpoints

	// Logging
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
}

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Table sources
const (
	SourceEmbedded = "embedded"
	SourceFile     = "file"
	SourceDatabase = "database"
)

// MaxRangeDaysLimit caps MAX_RANGE_DAYS.
const MaxRangeDaysLimit = 366

// Load reads configuration from environment variables.
// In development, it first loads from .env file if present.
func Load() (*Config, error) {
	// No-op in production where env vars are set directly
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Port = getEnvInt("PORT", 8080)
	cfg.Env = getEnv("ENV", EnvDevelopment)

	cfg.TableSource = getEnv("TABLE_SOURCE", SourceEmbedded)
	cfg.TablePath = getEnv("TABLE_PATH", "")
	cfg.DatabasePath = getEnv("DATABASE_PATH", "")
	cfg.WatchTable = getEnvBool("WATCH_TABLE", false)

	cfg.MaxRangeDays = getEnvInt("MAX_RANGE_DAYS", 90)

	cfg.APIKey = getEnv("API_KEY", "")

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "text")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration is present and valid.
func (c *Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port))
	}

	switch c.Env {
	case EnvDevelopment, EnvStaging, EnvProduction:
		// Valid
	default:
		errs = append(errs, fmt.Errorf("ENV must be one of: development, staging, production; got %q", c.Env))
	}

	switch c.TableSource {
	case SourceEmbedded:
		// Valid
	case SourceFile:
		if c.TablePath == "" {
			errs = append(errs, errors.New("TABLE_PATH is required when TABLE_SOURCE is file"))
		}
	case SourceDatabase:
		if c.DatabasePath == "" {
			errs = append(errs, errors.New("DATABASE_PATH is required when TABLE_SOURCE is database"))
		}
	default:
		errs = append(errs, fmt.Errorf("TABLE_SOURCE must be one of: embedded, file, database; got %q", c.TableSource))
	}

	if c.WatchTable && c.TableSource != SourceFile {
		errs = append(errs, errors.New("WATCH_TABLE requires TABLE_SOURCE=file"))
	}

	if c.MaxRangeDays < 1 || c.MaxRangeDays > MaxRangeDaysLimit {
		errs = append(errs, fmt.Errorf("MAX_RANGE_DAYS must be between 1 and %d, got %d", MaxRangeDaysLimit, c.MaxRangeDays))
	}

	// API key is required in production
	if c.Env == EnvProduction && c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required in production"))
	}

	switch c.LogLevel {
	case "debug", "info", "warn", "error":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_LEVEL must be one of: debug, info, warn, error; got %q", c.LogLevel))
	}

	switch c.LogFormat {
	case "json", "text":
		// Valid
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be one of: json, text; got %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// getEnv reads an environment variable with a default fallback.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an environment variable as an integer with a default fallback.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvBool reads an environment variable as a boolean with a default fallback.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
