package database

type migration struct {
	version int
	name    string
	sql     string
}

// migrations are applied in slice order; versions must increase.
var migrations = []migration{
	{1, "table_versions", migrationV1TableVersions},
	{2, "lunar_years", migrationV2LunarYears},
}

// migrationV1TableVersions tracks each imported reference table.
//
// A version is immutable once imported. Exactly zero or one row is active;
// the server loads the active version at startup and on reload.
const migrationV1TableVersions = `
CREATE TABLE IF NOT EXISTS table_versions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Dataset version string from the table file, e.g. "1900-2050.2"
    version TEXT NOT NULL UNIQUE,
    source TEXT NOT NULL DEFAULT '',

    -- Coverage summary, denormalized for listing
    min_year INTEGER NOT NULL,
    max_year INTEGER NOT NULL,
    year_count INTEGER NOT NULL,

    active INTEGER NOT NULL DEFAULT 0 CHECK (active IN (0, 1)),
    imported_at TEXT NOT NULL DEFAULT (datetime('now'))
);

-- At most one active version
CREATE UNIQUE INDEX IF NOT EXISTS idx_table_versions_active
    ON table_versions(active)
    WHERE active = 1;
`

// migrationV2LunarYears stores one row per lunar year per version.
//
// month_lengths is a JSON array of 12 or 13 integers in chronological order,
// matching the reference file format. Invariants are enforced by the loader
// (lunar.NewTable), not by SQL.
const migrationV2LunarYears = `
CREATE TABLE IF NOT EXISTS lunar_years (
    version_id INTEGER NOT NULL,
    year INTEGER NOT NULL,

    -- Gregorian date of lunar 1/1, YYYY-MM-DD
    new_year TEXT NOT NULL,

    leap_month INTEGER NOT NULL CHECK (leap_month BETWEEN 0 AND 12),
    month_lengths TEXT NOT NULL,

    PRIMARY KEY (version_id, year),
    FOREIGN KEY (version_id) REFERENCES table_versions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_lunar_years_new_year
    ON lunar_years(version_id, new_year);
`
