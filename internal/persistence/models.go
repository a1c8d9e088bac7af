package persistence

import (
	"time"

	"github.com/example/studio-scheduler/internal/scheduler"
)

// Room is a bookable studio space.
type Room struct {
	ID             string
	OrganizationID string
	Name           string
	CreatedAt      time.Time
}

// Season groups classes for a period of the year.
type Season struct {
	ID             string
	OrganizationID string
	Name           string
	CreatedAt      time.Time
}

// Routine is a choreographed piece assigned to at most one class.
type Routine struct {
	ID             string
	OrganizationID string
	Name           string
	Type           string
	Style          string
	Song           string
	CreatedAt      time.Time
}

// Member is a dancer or teacher belonging to an organization.
type Member struct {
	ID             string
	OrganizationID string
	FirstName      string
	LastName       string
	Role           scheduler.Role
	CreatedAt      time.Time
}

// ClassOccurrence is a weekly slot owned by a class.
type ClassOccurrence struct {
	ID      string
	ClassID string
	Weekday scheduler.Weekday
	Start   scheduler.TimeOfDay
	End     scheduler.TimeOfDay
	RoomID  string
}

// Class is a recurring class with its occurrences and roster.
type Class struct {
	ID             string
	OrganizationID string
	Name           string
	Colour         string
	StartDate      scheduler.Date
	EndDate        scheduler.Date
	SeasonID       string
	RoutineID      string
	DancerIDs      []string
	TeacherIDs     []string
	Occurrences    []ClassOccurrence
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EventKind distinguishes the two kinds of calendar entry.
type EventKind string

const (
	// EventKindClass marks an event materialized from a class occurrence.
	EventKindClass EventKind = "CLASS"
	// EventKindBlock marks a standalone block of time such as a holiday.
	EventKindBlock EventKind = "BLOCK"
)

// Event is an entry in the organization calendar. Class events are dated
// instances of a class occurrence and carry ClassID, OccurrenceID and RoomID.
// Block events leave those empty and may carry a Description.
type Event struct {
	ID             string
	OrganizationID string
	Kind           EventKind
	ClassID        string
	OccurrenceID   string
	RoomID         string
	Title          string
	Colour         string
	Description    string
	FullDay        bool
	Start          time.Time
	End            time.Time
}

// EventFilter narrows event queries. Zero values leave a bound open.
type EventFilter struct {
	OrganizationID string
	Kind           EventKind
	ClassID        string
	From           *time.Time
	To             *time.Time
}
