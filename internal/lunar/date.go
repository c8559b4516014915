package lunar

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for solar dates.
const DateLayout = "2006-01-02"

// SolarDate is a date in the (proleptic) Gregorian calendar.
// The zero value is not a valid date.
type SolarDate struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// NewSolarDate returns the solar date year-month-day without validating it.
func NewSolarDate(year, month, day int) SolarDate {
	return SolarDate{Year: year, Month: month, Day: day}
}

// SolarDateOf returns the calendar date of t in t's own location.
func SolarDateOf(t time.Time) SolarDate {
	y, m, d := t.Date()
	return SolarDate{Year: y, Month: int(m), Day: d}
}

// ParseSolarDate parses a date in YYYY-MM-DD format.
func ParseSolarDate(s string) (SolarDate, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return SolarDate{}, fmt.Errorf("parse solar date %q: %w", s, err)
	}
	return SolarDateOf(t), nil
}

// Validate reports whether d names a real Gregorian calendar day.
func (d SolarDate) Validate() error {
	if d.Month < 1 || d.Month > 12 {
		return fmt.Errorf("%w: solar month %d not in 1-12", ErrInvalidMonth, d.Month)
	}
	if n := daysInSolarMonth(d.Year, d.Month); d.Day < 1 || d.Day > n {
		return fmt.Errorf("%w: solar day %d not in 1-%d for %04d-%02d", ErrInvalidDay, d.Day, n, d.Year, d.Month)
	}
	return nil
}

// Time returns midnight UTC on d.
func (d SolarDate) Time() time.Time {
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// String formats d as YYYY-MM-DD.
func (d SolarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Weekday returns the day of the week of d.
func (d SolarDate) Weekday() time.Weekday {
	return time.Weekday((d.julianDay() + 1) % 7)
}

// AddDays returns the date n days after d (n may be negative).
func (d SolarDate) AddDays(n int) SolarDate {
	return fromJulianDay(d.julianDay() + n)
}

// DaysUntil returns the number of days from d to other; negative if other
// precedes d.
func (d SolarDate) DaysUntil(other SolarDate) int {
	return other.julianDay() - d.julianDay()
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to, or
// after other.
func (d SolarDate) Compare(other SolarDate) int {
	switch {
	case d.Year != other.Year:
		return sign(d.Year - other.Year)
	case d.Month != other.Month:
		return sign(d.Month - other.Month)
	default:
		return sign(d.Day - other.Day)
	}
}

// Before reports whether d is strictly before other.
func (d SolarDate) Before(other SolarDate) bool {
	return d.Compare(other) < 0
}

// JulianDay returns the Julian Day Number of d.
func (d SolarDate) JulianDay() int {
	return d.julianDay()
}

// julianDay converts a Gregorian date to its Julian Day Number using the
// Fliegel-Van Flandern integer formula. Valid for years after -4800.
func (d SolarDate) julianDay() int {
	y, m, k := d.Year, d.Month, d.Day
	return k - 32075 +
		1461*(y+4800+(m-14)/12)/4 +
		367*(m-2-(m-14)/12*12)/12 -
		3*((y+4900+(m-14)/12)/100)/4
}

// fromJulianDay is the inverse of julianDay.
func fromJulianDay(jd int) SolarDate {
	l := jd + 68569
	n := 4 * l / 146097
	l = l - (146097*n+3)/4
	i := 4000 * (l + 1) / 1461001
	l = l - 1461*i/4 + 31
	j := 80 * l / 2447
	k := l - 2447*j/80
	l = j / 11
	j = j + 2 - 12*l
	i = 100*(n-49) + i + l
	return SolarDate{Year: i, Month: j, Day: k}
}

func daysInSolarMonth(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// LunarDate is a date in the lunisolar calendar. Month is the month number
// (1-12); IsLeapMonth marks the inserted occurrence of the year's leap month.
type LunarDate struct {
	Year        int  `json:"year"`
	Month       int  `json:"month"`
	IsLeapMonth bool `json:"is_leap_month"`
	Day         int  `json:"day"`
}

// String formats d as YYYY-MM-DD, or YYYY-LMM-DD for a leap month.
func (d LunarDate) String() string {
	if d.IsLeapMonth {
		return fmt.Sprintf("%04d-L%02d-%02d", d.Year, d.Month, d.Day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}
