package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
	"github.com/example/studio-scheduler/internal/scheduler"
)

const (
	// timestampLayout is used for bookkeeping columns such as created_at.
	timestampLayout = time.RFC3339Nano
	// instantLayout is fixed width so lexical order equals chronological order.
	instantLayout = "2006-01-02T15:04:05Z"
)

type roomRow struct {
	ID             string `db:"id"`
	OrganizationID string `db:"organization_id"`
	Name           string `db:"name"`
	CreatedAt      string `db:"created_at"`
}

type seasonRow struct {
	ID             string `db:"id"`
	OrganizationID string `db:"organization_id"`
	Name           string `db:"name"`
	CreatedAt      string `db:"created_at"`
}

type routineRow struct {
	ID             string `db:"id"`
	OrganizationID string `db:"organization_id"`
	Name           string `db:"name"`
	Type           string `db:"type"`
	Style          string `db:"style"`
	Song           string `db:"song"`
	CreatedAt      string `db:"created_at"`
}

type memberRow struct {
	ID             string `db:"id"`
	OrganizationID string `db:"organization_id"`
	FirstName      string `db:"first_name"`
	LastName       string `db:"last_name"`
	Role           string `db:"role"`
	CreatedAt      string `db:"created_at"`
}

type classRow struct {
	ID             string         `db:"id"`
	OrganizationID string         `db:"organization_id"`
	Name           string         `db:"name"`
	Colour         string         `db:"colour"`
	StartDate      string         `db:"start_date"`
	EndDate        string         `db:"end_date"`
	SeasonID       sql.NullString `db:"season_id"`
	RoutineID      sql.NullString `db:"routine_id"`
	CreatedAt      string         `db:"created_at"`
	UpdatedAt      string         `db:"updated_at"`
}

type occurrenceRow struct {
	ID           string `db:"id"`
	ClassID      string `db:"class_id"`
	RoomID       string `db:"room_id"`
	Weekday      string `db:"weekday"`
	StartSeconds int    `db:"start_seconds"`
	EndSeconds   int    `db:"end_seconds"`
	Position     int    `db:"position"`
}

type rosterRow struct {
	ClassID  string `db:"class_id"`
	MemberID string `db:"member_id"`
	Position int    `db:"position"`
}

type bookingRow struct {
	ClassID      string `db:"class_id"`
	ClassName    string `db:"class_name"`
	Weekday      string `db:"weekday"`
	StartSeconds int    `db:"start_seconds"`
	EndSeconds   int    `db:"end_seconds"`
	RoomID       string `db:"room_id"`
}

type classRefRow struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

type eventRow struct {
	ID             string         `db:"id"`
	OrganizationID string         `db:"organization_id"`
	Kind           string         `db:"kind"`
	ClassID        sql.NullString `db:"class_id"`
	OccurrenceID   sql.NullString `db:"occurrence_id"`
	RoomID         sql.NullString `db:"room_id"`
	Title          string         `db:"title"`
	Colour         string         `db:"colour"`
	Description    string         `db:"description"`
	FullDay        bool           `db:"full_day"`
	StartsAt       string         `db:"starts_at"`
	EndsAt         string         `db:"ends_at"`
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func parseTimestamp(column, value string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return t, nil
}

func formatInstant(t time.Time) string {
	return t.UTC().Format(instantLayout)
}

func parseInstant(column, value string) (time.Time, error) {
	t, err := time.Parse(instantLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", column, err)
	}
	return t, nil
}

// ceilInstant rounds up to the next whole second so that a strict upper bound
// compares correctly against second-precision columns.
func ceilInstant(t time.Time) time.Time {
	truncated := t.Truncate(time.Second)
	if truncated.Equal(t) {
		return t
	}
	return truncated.Add(time.Second)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (r roomRow) toModel() (persistence.Room, error) {
	created, err := parseTimestamp("created_at", r.CreatedAt)
	if err != nil {
		return persistence.Room{}, err
	}
	return persistence.Room{ID: r.ID, OrganizationID: r.OrganizationID, Name: r.Name, CreatedAt: created}, nil
}

func (r routineRow) toScheduler() scheduler.Routine {
	return scheduler.Routine{ID: r.ID, Name: r.Name, Type: r.Type, Style: r.Style, Song: r.Song}
}

func (r memberRow) toScheduler() scheduler.Member {
	return scheduler.Member{ID: r.ID, FirstName: r.FirstName, LastName: r.LastName, Role: scheduler.Role(r.Role)}
}

func (r classRow) toModel() (persistence.Class, error) {
	start, err := scheduler.ParseDate(r.StartDate)
	if err != nil {
		return persistence.Class{}, fmt.Errorf("failed to parse start_date: %w", err)
	}
	end, err := scheduler.ParseDate(r.EndDate)
	if err != nil {
		return persistence.Class{}, fmt.Errorf("failed to parse end_date: %w", err)
	}
	created, err := parseTimestamp("created_at", r.CreatedAt)
	if err != nil {
		return persistence.Class{}, err
	}
	updated, err := parseTimestamp("updated_at", r.UpdatedAt)
	if err != nil {
		return persistence.Class{}, err
	}
	return persistence.Class{
		ID:             r.ID,
		OrganizationID: r.OrganizationID,
		Name:           r.Name,
		Colour:         r.Colour,
		StartDate:      start,
		EndDate:        end,
		SeasonID:       r.SeasonID.String,
		RoutineID:      r.RoutineID.String,
		CreatedAt:      created,
		UpdatedAt:      updated,
	}, nil
}

func (r occurrenceRow) toModel() persistence.ClassOccurrence {
	return persistence.ClassOccurrence{
		ID:      r.ID,
		ClassID: r.ClassID,
		Weekday: scheduler.Weekday(r.Weekday),
		Start:   scheduler.TimeOfDay(r.StartSeconds),
		End:     scheduler.TimeOfDay(r.EndSeconds),
		RoomID:  r.RoomID,
	}
}

func (r bookingRow) toScheduler() scheduler.Booking {
	return scheduler.Booking{
		ClassID:   r.ClassID,
		ClassName: r.ClassName,
		Weekday:   scheduler.Weekday(r.Weekday),
		Start:     scheduler.TimeOfDay(r.StartSeconds),
		End:       scheduler.TimeOfDay(r.EndSeconds),
		RoomID:    r.RoomID,
	}
}

func (r eventRow) toModel() (persistence.Event, error) {
	start, err := parseInstant("starts_at", r.StartsAt)
	if err != nil {
		return persistence.Event{}, err
	}
	end, err := parseInstant("ends_at", r.EndsAt)
	if err != nil {
		return persistence.Event{}, err
	}
	return persistence.Event{
		ID:             r.ID,
		OrganizationID: r.OrganizationID,
		Kind:           persistence.EventKind(r.Kind),
		ClassID:        r.ClassID.String,
		OccurrenceID:   r.OccurrenceID.String,
		RoomID:         r.RoomID.String,
		Title:          r.Title,
		Colour:         r.Colour,
		Description:    r.Description,
		FullDay:        r.FullDay,
		Start:          start,
		End:            end,
	}, nil
}

func newEventRow(ev persistence.Event) eventRow {
	return eventRow{
		ID:             ev.ID,
		OrganizationID: ev.OrganizationID,
		Kind:           string(ev.Kind),
		ClassID:        nullString(ev.ClassID),
		OccurrenceID:   nullString(ev.OccurrenceID),
		RoomID:         nullString(ev.RoomID),
		Title:          ev.Title,
		Colour:         ev.Colour,
		Description:    ev.Description,
		FullDay:        ev.FullDay,
		StartsAt:       formatInstant(ev.Start),
		EndsAt:         formatInstant(ev.End),
	}
}
