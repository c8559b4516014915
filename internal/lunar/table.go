// Package lunar converts between the Korean lunisolar calendar and the
// Gregorian calendar.
//
// Conversion is a lookup over a precomputed reference table: one record per
// lunar year giving its month lengths, its leap month (if any) and the solar
// date of its new year. The table is data, not computation. It is embedded
// from data/lunisolar.yaml and can be replaced at runtime only by swapping in
// a whole new validated Table (see Store).
//
// Supported lunar years run from the first to the last record inclusive. The
// solar upper bound is exclusive: the day after the last lunar year ends is
// the first unsupported date.
package lunar

import (
	"errors"
	"fmt"
	"sort"
)

// Metadata identifies the dataset a Table was built from.
type Metadata struct {
	Version string `json:"version"`
	Source  string `json:"source"`
}

// Range is the coverage of a Table. Lunar years MinYear..MaxYear are
// supported, which spans solar dates First through Last inclusive. End is
// the first unsupported solar date (the day after Last).
type Range struct {
	MinYear int       `json:"min_year"`
	MaxYear int       `json:"max_year"`
	First   SolarDate `json:"first"`
	Last    SolarDate `json:"last"`
	End     SolarDate `json:"end"`
}

// Contains reports whether d lies within the range.
func (r Range) Contains(d SolarDate) bool {
	return !d.Before(r.First) && d.Before(r.End)
}

// Table is an immutable, validated reference table. It is safe for
// concurrent use.
type Table struct {
	meta    Metadata
	records []YearRecord
	end     SolarDate
}

// NewTable validates records and builds a Table from them. Records must be
// sorted by year with no gaps; the slice is copied.
func NewTable(meta Metadata, records []YearRecord) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no year records", ErrInvalidTable)
	}

	var errs []error
	owned := make([]YearRecord, len(records))
	for i, r := range records {
		owned[i] = r.clone()
		if err := r.validate(); err != nil {
			errs = append(errs, err)
			continue
		}
		if i == 0 {
			continue
		}

		prev := records[i-1]
		if r.Year != prev.Year+1 {
			errs = append(errs, fmt.Errorf("year %d follows year %d; years must be contiguous", r.Year, prev.Year))
			continue
		}
		if !prev.NewYear.Before(r.NewYear) {
			errs = append(errs, fmt.Errorf("year %d: new year %s not after %s", r.Year, r.NewYear, prev.NewYear))
			continue
		}
		if gap := prev.NewYear.DaysUntil(r.NewYear); gap != prev.Days() {
			errs = append(errs, fmt.Errorf("year %d: months sum to %d days but next new year is %d days later",
				prev.Year, prev.Days(), gap))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTable, errors.Join(errs...))
	}

	last := owned[len(owned)-1]
	return &Table{
		meta:    meta,
		records: owned,
		end:     last.NewYear.AddDays(last.Days()),
	}, nil
}

// Metadata returns the dataset identity.
func (t *Table) Metadata() Metadata {
	return t.meta
}

// Range returns the table's coverage.
func (t *Table) Range() Range {
	return Range{
		MinYear: t.records[0].Year,
		MaxYear: t.records[len(t.records)-1].Year,
		First:   t.records[0].NewYear,
		Last:    t.end.AddDays(-1),
		End:     t.end,
	}
}

// Len returns the number of year records.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns a copy of every year record in order.
func (t *Table) Records() []YearRecord {
	out := make([]YearRecord, len(t.records))
	for i, r := range t.records {
		out[i] = r.clone()
	}
	return out
}

// RecordForLunarYear returns the record for a lunar year.
func (t *Table) RecordForLunarYear(year int) (YearRecord, error) {
	idx := year - t.records[0].Year
	if idx < 0 || idx >= len(t.records) {
		r := t.Range()
		return YearRecord{}, fmt.Errorf("%w: lunar year %d not in %d-%d", ErrOutOfRange, year, r.MinYear, r.MaxYear)
	}
	return t.records[idx].clone(), nil
}

// RecordForSolarDate returns the record of the lunar year containing d.
func (t *Table) RecordForSolarDate(d SolarDate) (YearRecord, error) {
	idx, err := t.indexForSolarDate(d)
	if err != nil {
		return YearRecord{}, err
	}
	return t.records[idx].clone(), nil
}

func (t *Table) indexForSolarDate(d SolarDate) (int, error) {
	if d.Before(t.records[0].NewYear) || !d.Before(t.end) {
		return 0, fmt.Errorf("%w: solar date %s not in %s to %s", ErrOutOfRange, d, t.records[0].NewYear, t.end.AddDays(-1))
	}
	// First record starting after d; the one before it contains d.
	next := sort.Search(len(t.records), func(i int) bool {
		return d.Before(t.records[i].NewYear)
	})
	return next - 1, nil
}
