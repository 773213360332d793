package events

import (
	"fmt"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
)

// FeedOptions configures the iCalendar export.
type FeedOptions struct {
	ProductID string
	Name      string
	// Location interprets the stored wall-clock dates and times.
	Location *time.Location
	// Now stamps DTSTAMP; defaults to time.Now.
	Now func() time.Time
}

// RenderICS serializes events as a PUBLISH calendar. Events without a start
// or end time become all-day entries; otherwise missing bounds fall back to
// the same day edges the calendar view uses.
func RenderICS(list []Event, opts FeedOptions) (string, error) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	if opts.ProductID != "" {
		cal.SetProductId(opts.ProductID)
	}
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}
	cal.SetXWRTimezone(loc.String())

	stamp := now().UTC()
	for _, e := range list {
		vevent := cal.AddEvent(e.ID)
		vevent.SetDtStampTime(stamp)
		vevent.SetSummary(e.Title)
		if desc := describe(e); desc != "" {
			vevent.SetDescription(desc)
		}
		if !e.CreatedAt.IsZero() {
			vevent.SetCreatedTime(e.CreatedAt)
		}
		if !e.UpdatedAt.IsZero() {
			vevent.SetModifiedAt(e.UpdatedAt)
		}

		day, err := time.ParseInLocation(dateLayout, e.Date, loc)
		if err != nil {
			return "", fmt.Errorf("event %s: %w", e.ID, err)
		}
		if e.StartTime == "" && e.EndTime == "" {
			vevent.SetAllDayStartAt(day)
			vevent.SetAllDayEndAt(day.AddDate(0, 0, 1))
			continue
		}

		view := CalendarView(e)
		start, err := time.ParseInLocation(dateLayout+"T"+timeLayout, view.Start, loc)
		if err != nil {
			return "", fmt.Errorf("event %s start: %w", e.ID, err)
		}
		end, err := time.ParseInLocation(dateLayout+"T"+timeLayout, view.End, loc)
		if err != nil {
			return "", fmt.Errorf("event %s end: %w", e.ID, err)
		}
		vevent.SetStartAt(start)
		vevent.SetEndAt(end)
	}

	return cal.Serialize(), nil
}

func describe(e Event) string {
	var b strings.Builder
	b.WriteString(e.Description)
	if len(e.Volunteers) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Volunteers: ")
		b.WriteString(strings.Join(e.Volunteers, ", "))
	}
	return b.String()
}
