// Command import stores a lunisolar reference table in the SQLite database.
//
// Usage:
//
//	go run ./cmd/import -table internal/lunar/data/lunisolar.yaml -db data/lunar.db -activate
//
// This tool:
// 1. Reads and validates the YAML table (the embedded table when -table is empty)
// 2. Creates/opens the SQLite database and runs migrations
// 3. Imports every year as a new table version in a single transaction
// 4. Reloads the stored version and checks it matches the file
//
// Versions are immutable: importing a version string that already exists
// fails. Bump the version in the file to import a corrected table, then
// remove the superseded one with -delete once it is no longer active:
//
//	go run ./cmd/import -db data/lunar.db -delete 1900-2050.1
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/zapponejosh/lunar-api/internal/database"
	"github.com/zapponejosh/lunar-api/internal/lunar"
)

func main() {
	tablePath := flag.String("table", "", "Path to YAML table file (default: embedded table)")
	dbPath := flag.String("db", "data/lunar.db", "Path to SQLite database")
	activate := flag.Bool("activate", false, "Make the imported version the active one")
	list := flag.Bool("list", false, "List stored versions and exit")
	del := flag.String("delete", "", "Delete an inactive stored version and exit")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))

	var err error
	switch {
	case *list:
		err = listVersions(*dbPath, logger)
	case *del != "":
		err = deleteVersion(*dbPath, *del, logger)
	default:
		err = run(*tablePath, *dbPath, *activate, logger)
	}
	if err != nil {
		logger.Error("import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(tablePath, dbPath string, activate bool, logger *slog.Logger) error {
	ctx := context.Background()
	startTime := time.Now()

	// =========================================================================
	// Step 1: Read and validate the table
	// =========================================================================
	table, err := readTable(tablePath, logger)
	if err != nil {
		return err
	}

	r := table.Range()
	logger.Info("table validated",
		slog.String("version", table.Metadata().Version),
		slog.Int("years", table.Len()),
		slog.String("first", r.First.String()),
		slog.String("last", r.Last.String()),
	)

	// =========================================================================
	// Step 2: Open database and run migrations
	// =========================================================================
	db, err := openDB(ctx, dbPath, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	// =========================================================================
	// Step 3: Import
	// =========================================================================
	version, err := db.ImportTable(ctx, table, activate)
	if err != nil {
		if database.IsDuplicate(err) {
			return fmt.Errorf("version %q already imported", table.Metadata().Version)
		}
		return fmt.Errorf("import table: %w", err)
	}

	// =========================================================================
	// Step 4: Verify import
	// =========================================================================
	stored, err := db.LoadTable(ctx, version.Version)
	if err != nil {
		return fmt.Errorf("reload stored table: %w", err)
	}
	if stored.Len() != table.Len() || stored.Range() != table.Range() {
		return fmt.Errorf("stored table %q does not match input: %d years, want %d",
			version.Version, stored.Len(), table.Len())
	}

	elapsed := time.Since(startTime)

	fmt.Println()
	fmt.Println("=== Import Summary ===")
	fmt.Printf("Version:        %s\n", version.Version)
	fmt.Printf("Lunar years:    %d-%d (%d)\n", version.MinYear, version.MaxYear, version.YearCount)
	fmt.Printf("Solar dates:    %s to %s\n", r.First, r.Last)
	fmt.Printf("Active:         %t\n", version.Active)
	fmt.Printf("Time elapsed:   %v\n", elapsed.Round(time.Millisecond))

	return nil
}

func readTable(path string, logger *slog.Logger) (*lunar.Table, error) {
	if path == "" {
		logger.Info("using embedded table")
		return lunar.Embedded()
	}

	logger.Info("reading table file", slog.String("path", path))
	table, err := lunar.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read table: %w", err)
	}
	return table, nil
}

func openDB(ctx context.Context, path string, logger *slog.Logger) (*database.DB, error) {
	db, err := database.Open(database.DefaultConfig(path), logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	migrated, err := db.Migrate(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Debug("migrations complete", slog.Int("applied", migrated))

	return db, nil
}

func listVersions(dbPath string, logger *slog.Logger) error {
	ctx := context.Background()

	db, err := openDB(ctx, dbPath, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	versions, err := db.ListVersions(ctx)
	if err != nil {
		return fmt.Errorf("list versions: %w", err)
	}

	if len(versions) == 0 {
		fmt.Println("No table versions imported.")
		return nil
	}

	for _, v := range versions {
		marker := " "
		if v.Active {
			marker = "*"
		}
		fmt.Printf("%s %-20s %d-%d  %d years  imported %s\n",
			marker, v.Version, v.MinYear, v.MaxYear, v.YearCount, v.ImportedAt.Format(time.RFC3339))
	}
	return nil
}

func deleteVersion(dbPath, version string, logger *slog.Logger) error {
	ctx := context.Background()

	db, err := openDB(ctx, dbPath, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	err = db.DeleteVersion(ctx, version)
	switch {
	case err == nil:
	case database.IsNotFound(err):
		return fmt.Errorf("version %q: %w", version, err)
	case errors.Is(err, database.ErrActiveVersion):
		return fmt.Errorf("version %q: %w; activate another version first", version, err)
	default:
		return fmt.Errorf("delete version: %w", err)
	}

	logger.Info("table version deleted", slog.String("version", version))
	return nil
}
