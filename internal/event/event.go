// Package event defines the event domain types and the schema-tolerant
// normalizer for raw snapshot records.
package event

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Lifecycle status values used by upstream feeds. Absent status means active.
const (
	StatusActive  = "active"
	StatusEnded   = "ended"
	StatusMissing = "missing"
	StatusManual  = "manual"
)

// Snapshot is the raw input document produced by the acquisition jobs.
type Snapshot struct {
	GeneratedAt string `json:"generated_at"`
	Events      []Raw  `json:"events"`
}

// Raw is a single event record as published by the feeds. Field presence and
// shape vary by feed generation: older feeds use "date" where newer ones use
// "single_date", and titles may be plain strings or per-language maps.
type Raw struct {
	ID       string `json:"id"`
	Series   string `json:"series"`
	Year     Year   `json:"year"`
	Type     string `json:"type"`
	Title    Title  `json:"title"`
	Location string `json:"location"`
	Link     string `json:"link"`
	Status   string `json:"status"`
	Priority int    `json:"priority"`

	// Point-in-time events. Date is the legacy key for SingleDate.
	Date       string `json:"date"`
	SingleDate string `json:"single_date"`

	// Ranged events. EndDate is inclusive.
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Year tolerates both numeric and digit-string encodings.
type Year int

func (y *Year) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*y = Year(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("year: %w", err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("year %q: %w", s, err)
	}
	*y = Year(n)
	return nil
}

// Title is either a single display string or a language-code map.
type Title struct {
	Text      string
	Localized map[string]string
}

func (t *Title) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		t.Text = s
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return fmt.Errorf("title: %w", err)
	}
	t.Localized = m
	return nil
}

func (t Title) MarshalJSON() ([]byte, error) {
	if t.Localized != nil {
		return json.Marshal(t.Localized)
	}
	return json.Marshal(t.Text)
}

// IsZero reports whether no title was published at all.
func (t Title) IsZero() bool {
	return t.Text == "" && len(t.Localized) == 0
}

// Resolve picks the best available string for lang, falling back to
// defaultLang and then to any published value.
func (t Title) Resolve(lang, defaultLang string) (string, bool) {
	if t.Text != "" {
		return t.Text, true
	}
	if s, ok := t.Localized[lang]; ok && s != "" {
		return s, true
	}
	if s, ok := t.Localized[defaultLang]; ok && s != "" {
		return s, true
	}
	// Deterministic last resort so repeated runs render identically.
	langs := make([]string, 0, len(t.Localized))
	for l := range t.Localized {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	for _, l := range langs {
		if s := t.Localized[l]; s != "" {
			return s, true
		}
	}
	return "", false
}

// NormalizedSeries returns the case/whitespace-normalized series code used as
// the dedup key. Empty means the event cannot be grouped with siblings.
func (r Raw) NormalizedSeries() string {
	return strings.ToLower(strings.TrimSpace(r.Series))
}

// Lint reports structural problems worth logging: missing/duplicate ids and
// inverted congress ranges. Problems do not exclude an event; exclusion is the
// normalizer's job and applies only to events that cannot be placed in time.
func Lint(events []Raw) []string {
	var problems []string
	seen := make(map[string]bool, len(events))

	for i, ev := range events {
		prefix := fmt.Sprintf("events[%d]", i)

		if strings.TrimSpace(ev.ID) == "" {
			problems = append(problems, prefix+": missing id")
		} else if seen[ev.ID] {
			problems = append(problems, fmt.Sprintf("%s: duplicate id %q", prefix, ev.ID))
		} else {
			seen[ev.ID] = true
		}

		if ev.StartDate != "" && ev.EndDate != "" && ev.StartDate > ev.EndDate {
			problems = append(problems, fmt.Sprintf("%s: start_date %s after end_date %s", prefix, ev.StartDate, ev.EndDate))
		}
	}

	return problems
}
