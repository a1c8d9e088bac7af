package calendar

import (
	"bytes"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/example/studio-scheduler/internal/application"
)

func TestExport(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.January, 1, 23, 0, 0, 0, time.UTC)
	events := []application.Event{
		{ID: "ev-1", RoomID: "room-a", Title: "Ballet", Colour: "#FF0000", Start: start, End: start.Add(time.Hour)},
		{ID: "ev-2", RoomID: "room-x", Title: "Tap", Start: start.Add(24 * time.Hour), End: start.Add(25 * time.Hour)},
	}

	var buf bytes.Buffer
	err := Export(&buf, CalendarInfo{Name: "Studio", Generated: start}, events, map[string]string{"room-a": "Studio A"})
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("exported calendar does not parse: %v", err)
	}
	parsed := cal.Events()
	if len(parsed) != 2 {
		t.Fatalf("expected 2 events, got %d", len(parsed))
	}

	first := parsed[0]
	if got := first.GetProperty(ical.ComponentPropertyUniqueId).Value; got != "ev-1" {
		t.Fatalf("unexpected UID %q", got)
	}
	if got := first.GetProperty(ical.ComponentPropertyDtStart).Value; got != "20240101T230000Z" {
		t.Fatalf("unexpected DTSTART %q", got)
	}
	if got := first.GetProperty(ical.ComponentPropertyDtEnd).Value; got != "20240102T000000Z" {
		t.Fatalf("unexpected DTEND %q", got)
	}
	if got := first.GetProperty(ical.ComponentPropertySummary).Value; got != "Ballet" {
		t.Fatalf("unexpected SUMMARY %q", got)
	}
	if got := first.GetProperty(ical.ComponentPropertyLocation).Value; got != "Studio A" {
		t.Fatalf("unexpected LOCATION %q", got)
	}
	if p := first.GetProperty(colorProperty); p == nil || p.Value != "#FF0000" {
		t.Fatalf("expected COLOR property, got %#v", p)
	}

	second := parsed[1]
	if got := second.GetProperty(ical.ComponentPropertyLocation).Value; got != "room-x" {
		t.Fatalf("expected room id fallback, got %q", got)
	}
	if p := second.GetProperty(colorProperty); p != nil {
		t.Fatalf("expected no COLOR for uncoloured event, got %q", p.Value)
	}
}

func TestExportEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := Export(&buf, CalendarInfo{}, nil, nil); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("BEGIN:VCALENDAR")) || !bytes.Contains(buf.Bytes(), []byte(defaultProductID)) {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestExportBlockEvents(t *testing.T) {
	t.Parallel()

	toronto, err := time.LoadLocation("America/Toronto")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	holidayStart := time.Date(2024, time.December, 25, 0, 0, 0, 0, toronto)
	closure := time.Date(2024, time.December, 27, 17, 0, 0, 0, time.UTC)
	events := []application.Event{
		{
			ID: "blk-1", Type: application.EventTypeBlock, Title: "Holiday", Colour: "#F76A69",
			IsFullDay: true, Start: holidayStart.UTC(), End: holidayStart.AddDate(0, 0, 2).UTC(),
		},
		{
			ID: "blk-2", Type: application.EventTypeBlock, Title: "Floor repair", Description: "Studio A closed",
			Start: closure, End: closure.Add(2 * time.Hour),
		},
	}

	var buf bytes.Buffer
	if err := Export(&buf, CalendarInfo{Generated: closure, Location: toronto}, events, nil); err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	cal, err := ical.ParseCalendar(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("exported calendar does not parse: %v", err)
	}
	parsed := cal.Events()
	if len(parsed) != 2 {
		t.Fatalf("expected 2 events, got %d", len(parsed))
	}

	holiday := parsed[0]
	if got := holiday.GetProperty(ical.ComponentPropertyDtStart).Value; got != "20241225" {
		t.Fatalf("unexpected all-day DTSTART %q", got)
	}
	if got := holiday.GetProperty(ical.ComponentPropertyDtEnd).Value; got != "20241227" {
		t.Fatalf("unexpected all-day DTEND %q", got)
	}
	if p := holiday.GetProperty(ical.ComponentPropertyLocation); p != nil {
		t.Fatalf("block event should have no LOCATION, got %q", p.Value)
	}

	repair := parsed[1]
	if got := repair.GetProperty(ical.ComponentPropertyDtStart).Value; got != "20241227T170000Z" {
		t.Fatalf("unexpected DTSTART %q", got)
	}
	if p := repair.GetProperty(ical.ComponentPropertyDescription); p == nil || p.Value != "Studio A closed" {
		t.Fatalf("expected DESCRIPTION, got %#v", p)
	}
}

func TestDayBounds(t *testing.T) {
	t.Parallel()

	day := func(d int, h int) time.Time { return time.Date(2024, time.March, d, h, 0, 0, 0, time.UTC) }
	tests := []struct {
		name       string
		start, end time.Time
		first      int
		last       int
	}{
		{name: "midnight to midnight", start: day(1, 0), end: day(2, 0), first: 1, last: 2},
		{name: "ends mid day", start: day(1, 0), end: day(3, 12), first: 1, last: 4},
		{name: "within one day", start: day(5, 9), end: day(5, 17), first: 5, last: 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := dayBounds(tt.start, tt.end)
			if first.Day() != tt.first || last.Day() != tt.last {
				t.Fatalf("got %s..%s, want days %d..%d", first.Format("2006-01-02"), last.Format("2006-01-02"), tt.first, tt.last)
			}
		})
	}
}
