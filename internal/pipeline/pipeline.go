// Package pipeline turns a raw event snapshot into the two ordered,
// deduplicated upcoming lists consumed by the rendering client.
//
// Every transform is pure: "today" and the display language are explicit
// parameters, so the same snapshot and the same today always produce the
// same output.
package pipeline

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/helenopaiva/congresscal/internal/classify"
	"github.com/helenopaiva/congresscal/internal/dateutil"
	"github.com/helenopaiva/congresscal/internal/event"
	"github.com/helenopaiva/congresscal/internal/i18n"
)

// Options parameterize a single pipeline pass.
type Options struct {
	// Today is the viewer's civil date at local midnight.
	Today time.Time

	// Lang is the resolved display language. It affects display strings
	// only, never classification, filtering, or ordering.
	Lang string
}

// Item is one event prepared for rendering.
type Item struct {
	ID            string            `json:"id"`
	Category      classify.Category `json:"category"`
	Title         string            `json:"title"`
	TypeLabel     string            `json:"type_label"`
	Series        string            `json:"series,omitempty"`
	Year          int               `json:"year,omitempty"`
	StartDate     string            `json:"start_date"`
	EndDate       string            `json:"end_date"`
	DateDisplay   string            `json:"date_display"`
	RelativeLabel string            `json:"relative_label"`
	DaysUntil     int               `json:"days_until"`
	Location      string            `json:"location,omitempty"`
	Link          string            `json:"link,omitempty"`
	Status        string            `json:"status"`
	StatusNote    string            `json:"status_note,omitempty"`
}

// Lists is the full pipeline output for one pass.
type Lists struct {
	GeneratedAt string `json:"generated_at"`
	Today       string `json:"today"`
	Language    string `json:"language"`
	Deadlines   []Item `json:"deadlines"`
	Congresses  []Item `json:"congresses"`
}

// Upcoming reports whether ev is still current on today. Deadlines are
// upcoming through their own day; congresses remain current through their
// inclusive last day, so an ongoing multi-day congress is still shown.
func Upcoming(cat classify.Category, ev *event.Event, today time.Time) bool {
	if cat == classify.Congress {
		return !ev.End.Before(today)
	}
	return !ev.Start.Before(today)
}

// SortEvents orders events by effective start ascending, with higher
// priority first on equal days. The sort is stable, so feed order breaks
// any remaining ties.
func SortEvents(events []event.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].StartISO(), events[j].StartISO()
		if a != b {
			return a < b
		}
		return events[i].Priority > events[j].Priority
	})
}

// DedupeCongresses keeps only the first (soonest) event per series from an
// already-sorted slice. Events without a series code have no key to group on
// and are kept unconditionally. Never applied to deadlines: a series may
// legitimately have several open deadlines at once.
func DedupeCongresses(sorted []event.Event) []event.Event {
	seen := make(map[string]bool, len(sorted))
	out := sorted[:0:0]

	for _, ev := range sorted {
		key := ev.Series
		if key != "" {
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		out = append(out, ev)
	}

	return out
}

// Select normalizes, classifies, and filters the snapshot, returning the
// sorted deadline list and the sorted, deduplicated congress list.
func Select(snap *event.Snapshot, today time.Time) (deadlines, congresses []event.Event) {
	loc := today.Location()

	for _, raw := range snap.Events {
		ev, ok := event.Normalize(raw, loc)
		if !ok {
			// Expected upstream state (unpublished date), not a defect.
			continue
		}

		cat := classify.Classify(&ev)
		if !Upcoming(cat, &ev, today) {
			continue
		}

		switch cat {
		case classify.Congress:
			congresses = append(congresses, ev)
		default:
			deadlines = append(deadlines, ev)
		}
	}

	SortEvents(deadlines)
	SortEvents(congresses)
	congresses = DedupeCongresses(congresses)
	return deadlines, congresses
}

// Build runs the full pass: normalize, classify, filter, dedupe, sort, and
// derive display data.
func Build(snap *event.Snapshot, table *i18n.Table, defaultLang string, opts Options) *Lists {
	deadlines, congresses := Select(snap, opts.Today)

	out := &Lists{
		GeneratedAt: snap.GeneratedAt,
		Today:       dateutil.FormatISO(opts.Today),
		Language:    opts.Lang,
		Deadlines:   make([]Item, 0, len(deadlines)),
		Congresses:  make([]Item, 0, len(congresses)),
	}
	for i := range deadlines {
		out.Deadlines = append(out.Deadlines, buildItem(&deadlines[i], classify.Deadline, table, defaultLang, opts))
	}
	for i := range congresses {
		out.Congresses = append(out.Congresses, buildItem(&congresses[i], classify.Congress, table, defaultLang, opts))
	}

	return out
}

func buildItem(ev *event.Event, cat classify.Category, table *i18n.Table, defaultLang string, opts Options) Item {
	typeLabel := table.TypeLabel(ev.KindTag, opts.Lang)

	return Item{
		ID:            ev.ID,
		Category:      cat,
		Title:         DisplayTitle(ev, typeLabel, opts.Lang, defaultLang),
		TypeLabel:     typeLabel,
		Series:        ev.Series,
		Year:          ev.Year,
		StartDate:     dateutil.FormatISO(ev.Start),
		EndDate:       dateutil.FormatISO(ev.End),
		DateDisplay:   dateDisplay(ev),
		RelativeLabel: relativeLabel(cat, ev, table, opts),
		DaysUntil:     dateutil.DaysBetween(opts.Today, ev.Start),
		Location:      ev.Location,
		Link:          ev.Link,
		Status:        ev.Status,
		StatusNote:    table.StatusNote(ev.Status, opts.Lang),
	}
}

// DisplayTitle resolves the event title: the published title when present,
// otherwise a synthesized "SERIES YEAR - type label" string.
func DisplayTitle(ev *event.Event, typeLabel, lang, defaultLang string) string {
	if title, ok := ev.Title.Resolve(lang, defaultLang); ok {
		return title
	}

	var head []string
	if ev.Series != "" {
		head = append(head, strings.ToUpper(ev.Series))
	}
	if ev.Year > 0 {
		head = append(head, strconv.Itoa(ev.Year))
	}

	if len(head) == 0 {
		return typeLabel
	}
	return strings.Join(head, " ") + " - " + typeLabel
}

func dateDisplay(ev *event.Event) string {
	if !ev.Ranged {
		return dateutil.FormatDisplay(ev.Start)
	}
	return dateutil.FormatDisplay(ev.Start) + " - " + dateutil.FormatDisplay(ev.End)
}

func relativeLabel(cat classify.Category, ev *event.Event, table *i18n.Table, opts Options) string {
	days := dateutil.DaysBetween(opts.Today, ev.Start)

	if cat == classify.Congress && days < 0 {
		// Started but not ended: the temporal filter already dropped
		// anything past its last day.
		return table.Lookup("relative.ongoing", opts.Lang, "ongoing")
	}

	switch {
	case days == 0:
		return table.Lookup("relative.today", opts.Lang, "today")
	case days == 1:
		return table.Lookup("relative.tomorrow", opts.Lang, "tomorrow")
	default:
		tmpl := table.Lookup("relative.in_days", opts.Lang, "in {n} days")
		return strings.ReplaceAll(tmpl, "{n}", strconv.Itoa(days))
	}
}
