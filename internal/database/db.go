// Package database stores versioned snapshots of the lunisolar reference
// table in SQLite.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
)

// =============================================================================
// Database Connection
// =============================================================================

// DB is a SQLite handle for reference-table snapshots.
type DB struct {
	*sql.DB
	logger *slog.Logger
}

// Config holds database configuration options.
type Config struct {
	Path            string // file path or ":memory:"
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	BusyTimeout     time.Duration
}

// DefaultConfig returns a single-connection config for path. Imports are
// the only writer.
func DefaultConfig(path string) Config {
	return Config{
		Path:            path,
		MaxOpenConns:    1,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		BusyTimeout:     5 * time.Second,
	}
}

func (c Config) inMemory() bool {
	return c.Path == ":memory:"
}

// dsn encodes the go-sqlite3 connection parameters. Foreign keys must be on
// for lunar_years rows to be removed with their version.
func (c Config) dsn() string {
	params := url.Values{}
	params.Set("_foreign_keys", "on")
	if c.BusyTimeout > 0 {
		params.Set("_busy_timeout", fmt.Sprint(c.BusyTimeout.Milliseconds()))
	}
	if !c.inMemory() {
		params.Set("_journal_mode", "WAL")
	}
	return c.Path + "?" + params.Encode()
}

// Open connects to the snapshot database, creating its directory if needed.
// Call Migrate before using the schema and Close when done.
func Open(cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 1
	}

	if !cfg.inMemory() {
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	sqlDB, err := sql.Open("sqlite3", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	logger.Info("snapshot database opened", slog.String("path", cfg.Path))
	return &DB{DB: sqlDB, logger: logger}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.logger.Info("closing snapshot database")
	return db.DB.Close()
}

// Health reports whether the database answers and its schema is current.
// Pending migrations count as unhealthy.
func (db *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	current, err := db.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("database health: %w", err)
	}
	if latest := migrations[len(migrations)-1].version; current != latest {
		return fmt.Errorf("database health: schema version %d, want %d", current, latest)
	}
	return nil
}

// =============================================================================
// Migrations
// =============================================================================

const createMigrationsTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
)`

// SchemaVersion returns the highest applied migration, or 0 for an empty
// database.
func (db *DB) SchemaVersion(ctx context.Context) (int, error) {
	if _, err := db.ExecContext(ctx, createMigrationsTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	var version int
	err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// Migrate applies every migration newer than the current schema version and
// returns how many ran. Each migration commits on its own, so a failure
// leaves the schema at the last good version.
func (db *DB) Migrate(ctx context.Context) (int, error) {
	current, err := db.SchemaVersion(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		err := db.WithTx(ctx, func(tx *Tx) error {
			if _, err := tx.ExecContext(ctx, m.sql); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, name) VALUES (?, ?)`, m.version, m.name)
			return err
		})
		if err != nil {
			return applied, fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}

		db.logger.Info("applied migration", slog.Int("version", m.version), slog.String("name", m.name))
		applied++
	}

	if applied == 0 {
		db.logger.Debug("schema up to date", slog.Int("version", current))
	}
	return applied, nil
}

// =============================================================================
// Transaction Helpers
// =============================================================================

// Tx is a database transaction.
type Tx struct {
	*sql.Tx
}

// BeginTx starts a new transaction.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, err
	}
	return &Tx{tx}, nil
}

// WithTx runs fn in a transaction. The transaction commits when fn returns
// nil and rolls back otherwise; a rollback failure is joined to fn's error.
func (db *DB) WithTx(ctx context.Context, fn func(*Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rbErr))
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrNotFound is returned when a requested version doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a version string is already stored.
	ErrDuplicate = errors.New("duplicate record")

	// ErrActiveVersion is returned when deleting the active table version.
	ErrActiveVersion = errors.New("table version is active")
)

// IsNotFound checks if an error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, sql.ErrNoRows)
}

// IsDuplicate checks if an error is a unique constraint violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// isUniqueViolation reports whether err is a SQLite unique/primary key
// constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
