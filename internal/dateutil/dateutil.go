// Package dateutil provides civil-date parsing and arithmetic for event dates.
//
// Event dates are calendar dates with no time-of-day. They are anchored at
// midnight in the viewer's location (never UTC) so that "today" comparisons
// match the viewer's wall calendar near midnight.
package dateutil

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrMalformedDate indicates a date string that is not a valid YYYY-MM-DD date.
// Callers treat the field as absent; a malformed date is never coerced to "today".
var ErrMalformedDate = errors.New("malformed date")

const (
	isoFormat   = "2006-01-02"
	icsFormat   = "20060102"
	humanFormat = "2 Jan 2006"
)

// ParseDate parses a strict YYYY-MM-DD string into midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(isoFormat, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedDate, s)
	}
	return t, nil
}

// Today returns midnight of the current moment in loc.
// It must be called per pipeline pass, never cached across passes.
func Today(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	now := time.Now().In(loc)
	return Midnight(now)
}

// Midnight truncates t to midnight in its own location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the signed whole-day difference b - a.
// Rounding to the nearest day absorbs DST offsets between the two midnights.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(b.Sub(a).Hours() / 24))
}

// AddDays returns t shifted by n calendar days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// FormatISO renders a date as YYYY-MM-DD.
func FormatISO(t time.Time) string {
	return t.Format(isoFormat)
}

// FormatICS renders a date as a calendar-invite date stamp (YYYYMMDD).
func FormatICS(t time.Time) string {
	return t.Format(icsFormat)
}

// FormatDisplay renders a date for human display.
func FormatDisplay(t time.Time) string {
	return t.Format(humanFormat)
}
