package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/joshua-takyi/eventsadmin/internal/models"
)

const calendarProductID = "-//events-admin//catalogue//EN"

// EncodeICS writes events as a single VCALENDAR, one VEVENT per event.
// Inactive events are emitted as CANCELLED so subscribed calendars drop them.
func EncodeICS(w io.Writer, events []*models.Event, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, calendarProductID)

	for _, e := range events {
		cal.Children = append(cal.Children, eventComponent(e, now).Component)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func eventComponent(e *models.Event, now time.Time) *ical.Event {
	ev := ical.NewEvent()
	ev.Props.SetText(ical.PropUID, e.ID.Hex()+"@events-admin")
	ev.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	ev.Props.SetDateTime(ical.PropDateTimeStart, e.DateTime.UTC())
	if e.EndDateTime.After(e.DateTime) {
		ev.Props.SetDateTime(ical.PropDateTimeEnd, e.EndDateTime.UTC())
	}
	ev.Props.SetText(ical.PropSummary, e.Title)

	if desc := firstNonEmpty(e.ShortSummary, e.Description); desc != "" {
		ev.Props.SetText(ical.PropDescription, desc)
	}
	if loc := location(e); loc != "" {
		ev.Props.SetText(ical.PropLocation, loc)
	}
	if e.SourceURL != "" {
		url := ical.NewProp(ical.PropURL)
		url.Value = e.SourceURL
		ev.Props.Set(url)
	}

	status := "CONFIRMED"
	if e.Status == models.StatusInactive {
		status = "CANCELLED"
	}
	ev.Props.SetText(ical.PropStatus, status)
	return ev
}

func location(e *models.Event) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{e.VenueName, e.VenueAddress, e.City} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ExportICS is the calendar counterpart of ExportJSONL.
func ExportICS(ctx context.Context, src EventSource, w io.Writer, statuses []models.EventStatus) error {
	events, err := src.ListEvents(ctx, models.ExportEventQuery(statuses))
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}
	sortByStart(events)
	return EncodeICS(w, events, time.Now())
}
