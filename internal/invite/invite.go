// Package invite builds downloadable all-day calendar invites for single
// events.
package invite

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/emersion/go-ical"

	"github.com/helenopaiva/congresscal/internal/dateutil"
	"github.com/helenopaiva/congresscal/internal/event"
)

// ErrInvalidEvent indicates an invite was requested for an event without a
// resolvable start date. Callers must not emit a partial invite.
var ErrInvalidEvent = errors.New("event has no resolvable date")

// uidDomain namespaces invite UIDs so regenerating an invite for the same
// event yields the same identity.
const uidDomain = "congresscal"

const prodID = "-//congresscal//congresscal//EN"

// DefaultReminderDays are the reminder offsets, in days before the start.
var DefaultReminderDays = []int{30, 7, 1}

// Request describes one invite. Title and StatusNote are already localized
// by the caller; StatusNote is empty for active events.
type Request struct {
	Event      *event.Event
	Title      string
	StatusNote string
}

// Builder produces ICS invite documents.
type Builder struct {
	reminderDays []int
	now          func() time.Time
}

// NewBuilder creates a Builder with the given reminder offsets, defaulting
// to DefaultReminderDays when empty.
func NewBuilder(reminderDays []int) *Builder {
	if len(reminderDays) == 0 {
		reminderDays = DefaultReminderDays
	}
	return &Builder{reminderDays: reminderDays, now: time.Now}
}

// Build renders a single-event ICS document. Single-date events span exactly
// one day; ranged events span through their inclusive end date. Per the
// all-day convention, DTEND is exclusive, one day past the last day.
func (b *Builder) Build(req Request) ([]byte, error) {
	ev := req.Event
	if ev == nil || ev.Start.IsZero() {
		return nil, ErrInvalidEvent
	}

	cal := ics.NewCalendar()
	cal.Props.SetText(ics.PropVersion, "2.0")
	cal.Props.SetText(ics.PropProductID, prodID)

	comp := ics.NewComponent(ics.CompEvent)
	comp.Props.SetText(ics.PropUID, fmt.Sprintf("%s@%s", ev.ID, uidDomain))
	comp.Props.SetDateTime(ics.PropDateTimeStamp, b.now().UTC())
	comp.Props.SetText(ics.PropSummary, req.Title)

	comp.Props.SetDate(ics.PropDateTimeStart, ev.Start)
	comp.Props.SetDate(ics.PropDateTimeEnd, dateutil.AddDays(ev.End, 1))

	if desc := description(req); desc != "" {
		comp.Props.SetText(ics.PropDescription, desc)
	}
	if ev.Location != "" {
		comp.Props.SetText(ics.PropLocation, ev.Location)
	}
	if ev.Link != "" {
		comp.Props.SetText(ics.PropURL, ev.Link)
	}

	for _, days := range b.reminderDays {
		comp.Children = append(comp.Children, alarm(days, req.Title))
	}

	cal.Children = append(cal.Children, comp)

	var buf bytes.Buffer
	if err := ics.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode invite: %w", err)
	}
	return buf.Bytes(), nil
}

// description joins the status annotation and the source link, newline-joined,
// skipping whichever is absent.
func description(req Request) string {
	var parts []string
	if req.StatusNote != "" {
		parts = append(parts, req.StatusNote)
	}
	if req.Event.Link != "" {
		parts = append(parts, req.Event.Link)
	}
	return strings.Join(parts, "\n")
}

// alarm builds one display reminder firing the given number of days before
// the event start.
func alarm(daysBefore int, summary string) *ics.Component {
	a := ics.NewComponent("VALARM")
	a.Props.SetText("ACTION", "DISPLAY")
	a.Props.SetText(ics.PropDescription, summary)

	trigger := ics.NewProp("TRIGGER")
	trigger.Value = fmt.Sprintf("-P%dD", daysBefore)
	a.Props.Set(trigger)

	return a
}
