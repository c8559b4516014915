package lunar

import "fmt"

// LunarToSolar converts a lunar date to its solar date.
//
// Checks run in order: year coverage (ErrOutOfRange), month number and leap
// flag (ErrInvalidMonth), then day (ErrInvalidDay). A day past the end of a
// 29-day month is an error, never clamped.
func (t *Table) LunarToSolar(year, month int, leap bool, day int) (SolarDate, error) {
	rec, err := t.recordRef(year)
	if err != nil {
		return SolarDate{}, err
	}

	idx, err := rec.slotIndex(month, leap)
	if err != nil {
		return SolarDate{}, err
	}

	length := rec.MonthLengths[idx]
	if day < 1 || day > length {
		return SolarDate{}, fmt.Errorf("%w: day %d not in 1-%d for lunar %s", ErrInvalidDay, day, length,
			LunarDate{Year: year, Month: month, IsLeapMonth: leap, Day: 1}.monthLabel())
	}

	offset := day - 1
	for _, n := range rec.MonthLengths[:idx] {
		offset += n
	}
	return rec.NewYear.AddDays(offset), nil
}

// Convert is LunarToSolar taking a LunarDate.
func (t *Table) Convert(d LunarDate) (SolarDate, error) {
	return t.LunarToSolar(d.Year, d.Month, d.IsLeapMonth, d.Day)
}

// SolarToLunar converts a solar date to its lunar date.
func (t *Table) SolarToLunar(d SolarDate) (LunarDate, error) {
	if err := d.Validate(); err != nil {
		return LunarDate{}, err
	}

	idx, err := t.indexForSolarDate(d)
	if err != nil {
		return LunarDate{}, err
	}
	rec := &t.records[idx]

	offset := rec.NewYear.DaysUntil(d)
	for _, slot := range rec.Slots() {
		if offset < slot.Days {
			return LunarDate{
				Year:        rec.Year,
				Month:       slot.Month,
				IsLeapMonth: slot.Leap,
				Day:         offset + 1,
			}, nil
		}
		offset -= slot.Days
	}

	// Unreachable for a validated table: the year's days cover the span up
	// to the next record's new year.
	return LunarDate{}, fmt.Errorf("%w: solar date %s overruns lunar year %d", ErrInvalidTable, d, rec.Year)
}

// MonthStart returns the solar date of day 1 of the given lunar month.
func (t *Table) MonthStart(year, month int, leap bool) (SolarDate, error) {
	return t.LunarToSolar(year, month, leap, 1)
}

// MonthSpan is a month slot together with the solar dates it covers.
type MonthSpan struct {
	MonthSlot
	Start SolarDate `json:"start"`
	End   SolarDate `json:"end"`
}

// YearMonths returns every month of a lunar year in chronological order with
// its first and last solar dates.
func (t *Table) YearMonths(year int) ([]MonthSpan, error) {
	rec, err := t.recordRef(year)
	if err != nil {
		return nil, err
	}

	spans := make([]MonthSpan, 0, len(rec.MonthLengths))
	for _, slot := range rec.Slots() {
		start, err := t.MonthStart(year, slot.Month, slot.Leap)
		if err != nil {
			return nil, err
		}
		spans = append(spans, MonthSpan{
			MonthSlot: slot,
			Start:     start,
			End:       start.AddDays(slot.Days - 1),
		})
	}
	return spans, nil
}

// recordRef is RecordForLunarYear without the defensive copy.
func (t *Table) recordRef(year int) (*YearRecord, error) {
	idx := year - t.records[0].Year
	if idx < 0 || idx >= len(t.records) {
		_, err := t.RecordForLunarYear(year)
		return nil, err
	}
	return &t.records[idx], nil
}

func (d LunarDate) monthLabel() string {
	if d.IsLeapMonth {
		return fmt.Sprintf("%04d leap month %d", d.Year, d.Month)
	}
	return fmt.Sprintf("%04d month %d", d.Year, d.Month)
}
