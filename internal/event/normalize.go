package event

import (
	"time"

	"github.com/helenopaiva/congresscal/internal/dateutil"
)

// Event is the canonical, normalized shape every downstream component sees.
// Start and End are local midnights; End is the inclusive last day.
type Event struct {
	ID      string
	Series  string
	Year    int
	KindTag string

	Start  time.Time
	End    time.Time
	Ranged bool

	Title    Title
	Location string
	Link     string
	Status   string
	Priority int
}

// StartISO returns the effective start as a YYYY-MM-DD string, the primary
// sort key. Lexicographic comparison of these strings is date order.
func (e *Event) StartISO() string {
	return dateutil.FormatISO(e.Start)
}

// Normalize resolves a raw record into the canonical Event shape.
//
// The effective start is single_date (or the legacy date key) when present,
// otherwise start_date; the effective end is end_date when present, otherwise
// the start. Malformed date fields are treated as absent, never guessed.
//
// ok is false when no usable start date exists; such events are expected
// upstream state (unpublished dates) and are silently excluded by callers.
func Normalize(raw Raw, loc *time.Location) (Event, bool) {
	single := parseOptional(firstNonEmpty(raw.SingleDate, raw.Date), loc)
	rangeStart := parseOptional(raw.StartDate, loc)
	rangeEnd := parseOptional(raw.EndDate, loc)

	start := single
	if start.IsZero() {
		start = rangeStart
	}
	if start.IsZero() {
		return Event{}, false
	}

	end := rangeEnd
	if end.IsZero() {
		end = start
	}
	// An inverted range cannot be repaired without guessing; clamp to start.
	if end.Before(start) {
		end = start
	}

	status := raw.Status
	if status == "" {
		status = StatusActive
	}

	return Event{
		ID:       raw.ID,
		Series:   raw.NormalizedSeries(),
		Year:     int(raw.Year),
		KindTag:  raw.Type,
		Start:    start,
		End:      end,
		Ranged:   !end.Equal(start),
		Title:    raw.Title,
		Location: raw.Location,
		Link:     raw.Link,
		Status:   status,
		Priority: raw.Priority,
	}, true
}

func parseOptional(s string, loc *time.Location) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := dateutil.ParseDate(s, loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
