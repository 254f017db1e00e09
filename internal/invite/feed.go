package invite

import (
	"bytes"
	"fmt"

	ics "github.com/emersion/go-ical"

	"github.com/helenopaiva/congresscal/internal/dateutil"
)

// Feed renders all given events into one subscribable ICS document. Events
// without a resolvable start date are skipped; reminder alarms are only
// attached to single-event invites, not to the feed.
func (b *Builder) Feed(name string, reqs []Request) ([]byte, error) {
	cal := ics.NewCalendar()
	cal.Props.SetText(ics.PropVersion, "2.0")
	cal.Props.SetText(ics.PropProductID, prodID)
	if name != "" {
		cal.Props.SetText("X-WR-CALNAME", name)
	}

	for _, req := range reqs {
		ev := req.Event
		if ev == nil || ev.Start.IsZero() {
			continue
		}

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

		cal.Children = append(cal.Children, comp)
	}

	var buf bytes.Buffer
	if err := ics.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("encode feed: %w", err)
	}
	return buf.Bytes(), nil
}
