package calendar

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/example/studio-scheduler/internal/application"
)

const defaultProductID = "-//studio-scheduler//calendar//EN"

// colorProperty is the RFC 7986 COLOR property.
const colorProperty ical.ComponentProperty = "COLOR"

// CalendarInfo describes the VCALENDAR wrapper. Location decides which civil
// dates full-day events cover and defaults to UTC.
type CalendarInfo struct {
	Name      string
	ProductID string
	Generated time.Time
	Location  *time.Location
}

// Export writes events as an iCalendar feed. rooms maps room IDs to display
// names; events whose room is missing from it get the ID as location. Block
// events have no room and full-day ones are written as DATE values.
func Export(w io.Writer, info CalendarInfo, events []application.Event, rooms map[string]string) error {
	if w == nil {
		return fmt.Errorf("calendar: nil writer")
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	productID := info.ProductID
	if productID == "" {
		productID = defaultProductID
	}
	cal.SetProductId(productID)
	if info.Name != "" {
		cal.SetXWRCalName(info.Name)
	}

	stamp := info.Generated
	if stamp.IsZero() {
		stamp = time.Now()
	}

	loc := info.Location
	if loc == nil {
		loc = time.UTC
	}

	for _, ev := range events {
		vevent := cal.AddEvent(ev.ID)
		vevent.SetDtStampTime(stamp.UTC())
		if ev.IsFullDay {
			first, last := dayBounds(ev.Start.In(loc), ev.End.In(loc))
			vevent.SetAllDayStartAt(first)
			vevent.SetAllDayEndAt(last)
		} else {
			vevent.SetStartAt(ev.Start.UTC())
			vevent.SetEndAt(ev.End.UTC())
		}
		vevent.SetSummary(ev.Title)
		if ev.Description != "" {
			vevent.SetDescription(ev.Description)
		}

		location := ev.RoomID
		if name, ok := rooms[ev.RoomID]; ok && name != "" {
			location = name
		}
		if location != "" {
			vevent.SetLocation(location)
		}
		if ev.Colour != "" {
			vevent.SetProperty(colorProperty, ev.Colour)
		}
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("calendar: serialize: %w", err)
	}
	return nil
}

// dayBounds returns the first day covered and the exclusive day after the
// last, as DTEND;VALUE=DATE expects.
func dayBounds(start, end time.Time) (time.Time, time.Time) {
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	last := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location())
	if end.After(last) || !last.After(first) {
		last = last.AddDate(0, 0, 1)
	}
	return first, last
}
