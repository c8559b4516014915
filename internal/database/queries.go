package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/zapponejosh/lunar-api/internal/lunar"
)

// =============================================================================
// Helper Functions
// =============================================================================

// parseTimestamp parses a timestamp from SQLite TEXT format.
// Returns nil if the value is empty or in no known format.
func parseTimestamp(ns sql.NullString) *time.Time {
	if !ns.Valid || ns.String == "" {
		return nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05.999999"} {
		if t, err := time.Parse(layout, ns.String); err == nil {
			return &t
		}
	}
	return nil
}

// queryer is satisfied by both *DB and *Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const versionColumns = `id, version, source, min_year, max_year, year_count, active, imported_at`

func scanVersion(scan func(dest ...any) error) (*TableVersion, error) {
	var v TableVersion
	var importedAt sql.NullString

	if err := scan(&v.ID, &v.Version, &v.Source, &v.MinYear, &v.MaxYear, &v.YearCount, &v.Active, &importedAt); err != nil {
		return nil, err
	}
	if t := parseTimestamp(importedAt); t != nil {
		v.ImportedAt = *t
	}
	return &v, nil
}

// =============================================================================
// Import
// =============================================================================

// ImportTable stores every record of t as a new table version. When activate
// is true the new version becomes the active one in the same transaction.
//
// Versions are immutable: importing a version string that already exists
// returns ErrDuplicate.
func (db *DB) ImportTable(ctx context.Context, t *lunar.Table, activate bool) (*TableVersion, error) {
	meta := t.Metadata()
	r := t.Range()

	var versionID int64
	err := db.WithTx(ctx, func(tx *Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO table_versions (version, source, min_year, max_year, year_count)
			VALUES (?, ?, ?, ?, ?)
		`, meta.Version, meta.Source, r.MinYear, r.MaxYear, t.Len())
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("insert table version: %w", err)
		}

		versionID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("get version id: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO lunar_years (version_id, year, new_year, leap_month, month_lengths)
			VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("prepare year insert: %w", err)
		}
		defer stmt.Close()

		for _, rec := range t.Records() {
			lengths, err := json.Marshal(rec.MonthLengths)
			if err != nil {
				return fmt.Errorf("marshal month lengths for %d: %w", rec.Year, err)
			}
			if _, err := stmt.ExecContext(ctx, versionID, rec.Year, rec.NewYear.String(), rec.LeapMonth, string(lengths)); err != nil {
				return fmt.Errorf("insert year %d: %w", rec.Year, err)
			}
		}

		if activate {
			return activateVersion(ctx, tx, versionID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	db.logger.Info("reference table imported",
		slog.String("version", meta.Version),
		slog.Int("years", t.Len()),
		slog.Bool("activated", activate),
	)

	return db.versionByID(ctx, db, versionID)
}

// =============================================================================
// Version Queries
// =============================================================================

// ActivateVersion makes the named version the active one.
// Returns ErrNotFound if the version doesn't exist.
func (db *DB) ActivateVersion(ctx context.Context, version string) error {
	return db.WithTx(ctx, func(tx *Tx) error {
		var id int64
		err := tx.QueryRowContext(ctx, `SELECT id FROM table_versions WHERE version = ?`, version).Scan(&id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("query version: %w", err)
		}
		return activateVersion(ctx, tx, id)
	})
}

func activateVersion(ctx context.Context, tx *Tx, id int64) error {
	if _, err := tx.ExecContext(ctx, `UPDATE table_versions SET active = 0 WHERE active = 1`); err != nil {
		return fmt.Errorf("deactivate versions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE table_versions SET active = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("activate version %d: %w", id, err)
	}
	return nil
}

// ActiveVersion returns the active table version.
// Returns ErrNotFound if no version is active.
func (db *DB) ActiveVersion(ctx context.Context) (*TableVersion, error) {
	row := db.QueryRowContext(ctx, `SELECT `+versionColumns+` FROM table_versions WHERE active = 1`)
	v, err := scanVersion(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query active version: %w", err)
	}
	return v, nil
}

// GetVersion returns a table version by its version string.
func (db *DB) GetVersion(ctx context.Context, version string) (*TableVersion, error) {
	row := db.QueryRowContext(ctx, `SELECT `+versionColumns+` FROM table_versions WHERE version = ?`, version)
	v, err := scanVersion(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query version %q: %w", version, err)
	}
	return v, nil
}

func (db *DB) versionByID(ctx context.Context, q queryer, id int64) (*TableVersion, error) {
	row := q.QueryRowContext(ctx, `SELECT `+versionColumns+` FROM table_versions WHERE id = ?`, id)
	v, err := scanVersion(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query version %d: %w", id, err)
	}
	return v, nil
}

// ListVersions returns every imported version, newest first.
func (db *DB) ListVersions(ctx context.Context) ([]TableVersion, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+versionColumns+` FROM table_versions ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("query versions: %w", err)
	}
	defer rows.Close()

	var versions []TableVersion
	for rows.Next() {
		v, err := scanVersion(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan version row: %w", err)
		}
		versions = append(versions, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate version rows: %w", err)
	}

	return versions, nil
}

// DeleteVersion removes an inactive version and its years.
// Returns ErrNotFound if missing and ErrActiveVersion if it is active.
func (db *DB) DeleteVersion(ctx context.Context, version string) error {
	v, err := db.GetVersion(ctx, version)
	if err != nil {
		return err
	}
	if v.Active {
		return ErrActiveVersion
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM table_versions WHERE id = ?`, v.ID); err != nil {
		return fmt.Errorf("delete version: %w", err)
	}
	return nil
}

// =============================================================================
// Year Queries
// =============================================================================

// GetYears returns the stored year rows of a version in year order.
func (db *DB) GetYears(ctx context.Context, versionID int64) ([]LunarYearRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT version_id, year, new_year, leap_month, month_lengths
		FROM lunar_years
		WHERE version_id = ?
		ORDER BY year ASC
	`, versionID)
	if err != nil {
		return nil, fmt.Errorf("query years: %w", err)
	}
	defer rows.Close()

	var years []LunarYearRow
	for rows.Next() {
		var y LunarYearRow
		var lengthsJSON string
		if err := rows.Scan(&y.VersionID, &y.Year, &y.NewYear, &y.LeapMonth, &lengthsJSON); err != nil {
			return nil, fmt.Errorf("scan year row: %w", err)
		}
		if err := json.Unmarshal([]byte(lengthsJSON), &y.MonthLengths); err != nil {
			return nil, fmt.Errorf("unmarshal month lengths for %d: %w", y.Year, err)
		}
		years = append(years, y)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate year rows: %w", err)
	}

	return years, nil
}

// LoadTable rebuilds and validates the reference table of a stored version.
func (db *DB) LoadTable(ctx context.Context, version string) (*lunar.Table, error) {
	v, err := db.GetVersion(ctx, version)
	if err != nil {
		return nil, err
	}
	return db.loadVersion(ctx, v)
}

// LoadActiveTable rebuilds the active reference table.
// Returns ErrNotFound if no version is active.
func (db *DB) LoadActiveTable(ctx context.Context) (*lunar.Table, error) {
	v, err := db.ActiveVersion(ctx)
	if err != nil {
		return nil, err
	}
	return db.loadVersion(ctx, v)
}

func (db *DB) loadVersion(ctx context.Context, v *TableVersion) (*lunar.Table, error) {
	rows, err := db.GetYears(ctx, v.ID)
	if err != nil {
		return nil, err
	}

	records := make([]lunar.YearRecord, 0, len(rows))
	for _, row := range rows {
		newYear, err := lunar.ParseSolarDate(row.NewYear)
		if err != nil {
			return nil, fmt.Errorf("year %d: %w", row.Year, err)
		}
		records = append(records, lunar.YearRecord{
			Year:         row.Year,
			LeapMonth:    row.LeapMonth,
			MonthLengths: row.MonthLengths,
			NewYear:      newYear,
		})
	}

	t, err := lunar.NewTable(lunar.Metadata{Version: v.Version, Source: v.Source}, records)
	if err != nil {
		return nil, fmt.Errorf("build table %q: %w", v.Version, err)
	}
	return t, nil
}
