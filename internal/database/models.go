package database

import (
	"time"
)

// TableVersion describes one imported reference table.
type TableVersion struct {
	ID         int64     `json:"id"`
	Version    string    `json:"version"`
	Source     string    `json:"source"`
	MinYear    int       `json:"min_year"`
	MaxYear    int       `json:"max_year"`
	YearCount  int       `json:"year_count"`
	Active     bool      `json:"active"`
	ImportedAt time.Time `json:"imported_at"`
}

// LunarYearRow is a stored year record.
type LunarYearRow struct {
	VersionID    int64  `json:"version_id"`
	Year         int    `json:"year"`
	NewYear      string `json:"new_year"` // YYYY-MM-DD
	LeapMonth    int    `json:"leap_month"`
	MonthLengths []int  `json:"month_lengths"`
}
