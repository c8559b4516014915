package lunar

import "fmt"

// Lunar year length bounds: twelve short months to thirteen long ones
// in practice never exceed this window.
const (
	MinYearDays = 353
	MaxYearDays = 385
)

// YearRecord describes one lunar year of the reference table.
type YearRecord struct {
	Year int

	// LeapMonth is the month number duplicated as a leap month, or 0.
	LeapMonth int

	// MonthLengths holds the day count of each month in chronological order:
	// 12 entries, or 13 when LeapMonth is non-zero.
	MonthLengths []int

	// NewYear is the solar date of day 1 of month 1.
	NewYear SolarDate
}

// MonthSlot is one chronological month of a lunar year. A regular month and
// the leap month sharing its number are distinct slots.
type MonthSlot struct {
	Month int  `json:"month"`
	Leap  bool `json:"leap"`
	Days  int  `json:"days"`
}

// Days returns the total number of days in the year.
func (r YearRecord) Days() int {
	total := 0
	for _, n := range r.MonthLengths {
		total += n
	}
	return total
}

// HasLeapMonth reports whether the year contains an intercalary month.
func (r YearRecord) HasLeapMonth() bool {
	return r.LeapMonth != 0
}

// Slots returns the year's months in chronological order.
func (r YearRecord) Slots() []MonthSlot {
	slots := make([]MonthSlot, 0, len(r.MonthLengths))
	month := 1
	for i, n := range r.MonthLengths {
		leap := r.LeapMonth != 0 && i == r.LeapMonth
		if leap {
			slots = append(slots, MonthSlot{Month: r.LeapMonth, Leap: true, Days: n})
			continue
		}
		slots = append(slots, MonthSlot{Month: month, Days: n})
		month++
	}
	return slots
}

// slotIndex returns the chronological index of (month, leap) within the year.
// The leap month sits immediately after its regular namesake.
func (r YearRecord) slotIndex(month int, leap bool) (int, error) {
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: month %d not in 1-12", ErrInvalidMonth, month)
	}
	if leap && month != r.LeapMonth {
		if r.LeapMonth == 0 {
			return 0, fmt.Errorf("%w: lunar year %d has no leap month", ErrInvalidMonth, r.Year)
		}
		return 0, fmt.Errorf("%w: lunar year %d has leap month %d, not %d", ErrInvalidMonth, r.Year, r.LeapMonth, month)
	}
	idx := month - 1
	if r.LeapMonth != 0 && (month > r.LeapMonth || (month == r.LeapMonth && leap)) {
		idx++
	}
	return idx, nil
}

// MonthLength returns the number of days in the given month slot.
func (r YearRecord) MonthLength(month int, leap bool) (int, error) {
	idx, err := r.slotIndex(month, leap)
	if err != nil {
		return 0, err
	}
	return r.MonthLengths[idx], nil
}

// validate checks the invariants that hold for a record in isolation.
func (r YearRecord) validate() error {
	if r.LeapMonth < 0 || r.LeapMonth > 12 {
		return fmt.Errorf("year %d: leap month %d not in 0-12", r.Year, r.LeapMonth)
	}

	want := 12
	if r.LeapMonth != 0 {
		want = 13
	}
	if len(r.MonthLengths) != want {
		return fmt.Errorf("year %d: %d month lengths, want %d for leap month %d",
			r.Year, len(r.MonthLengths), want, r.LeapMonth)
	}

	for i, n := range r.MonthLengths {
		if n != 29 && n != 30 {
			return fmt.Errorf("year %d: month slot %d has %d days, want 29 or 30", r.Year, i+1, n)
		}
	}

	if days := r.Days(); days < MinYearDays || days > MaxYearDays {
		return fmt.Errorf("year %d: %d days not in %d-%d", r.Year, days, MinYearDays, MaxYearDays)
	}

	if err := r.NewYear.Validate(); err != nil {
		return fmt.Errorf("year %d: new year date: %v", r.Year, err)
	}
	return nil
}

func (r YearRecord) clone() YearRecord {
	r.MonthLengths = append([]int(nil), r.MonthLengths...)
	return r
}
