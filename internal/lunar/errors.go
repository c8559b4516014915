package lunar

import "errors"

// Sentinel errors returned by the conversion engine. Every failure is wrapped
// with detail, so match with errors.Is or the IsX helpers below.
var (
	// ErrOutOfRange is returned when a lunar year or solar date falls outside
	// the reference table's coverage.
	ErrOutOfRange = errors.New("date out of supported range")

	// ErrInvalidMonth is returned for a month outside 1-12, or a leap-month
	// flag on a month that is not the year's leap month.
	ErrInvalidMonth = errors.New("invalid month")

	// ErrInvalidDay is returned for a day outside 1-30 or past the end of the
	// resolved month.
	ErrInvalidDay = errors.New("invalid day")

	// ErrInvalidTable is returned when reference data violates a table invariant.
	ErrInvalidTable = errors.New("invalid reference table")
)

// IsOutOfRange reports whether err is an out-of-range error.
func IsOutOfRange(err error) bool {
	return errors.Is(err, ErrOutOfRange)
}

// IsInvalidMonth reports whether err is an invalid-month error.
func IsInvalidMonth(err error) bool {
	return errors.Is(err, ErrInvalidMonth)
}

// IsInvalidDay reports whether err is an invalid-day error.
func IsInvalidDay(err error) bool {
	return errors.Is(err, ErrInvalidDay)
}
