package application

import (
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
	"github.com/example/studio-scheduler/internal/scheduler"
)

// ClassOccurrence is a stored weekly slot of a class.
type ClassOccurrence struct {
	ID        string              `json:"id" yaml:"id"`
	Weekday   scheduler.Weekday   `json:"weekday" yaml:"weekday"`
	StartTime scheduler.TimeOfDay `json:"startTime" yaml:"startTime"`
	EndTime   scheduler.TimeOfDay `json:"endTime" yaml:"endTime"`
	RoomID    string              `json:"roomId" yaml:"roomId"`
}

// Class is a recurring class as returned to callers.
type Class struct {
	ID             string            `json:"id" yaml:"id"`
	OrganizationID string            `json:"organizationId" yaml:"organizationId"`
	Name           string            `json:"name" yaml:"name"`
	Colour         string            `json:"colour" yaml:"colour"`
	StartDate      scheduler.Date    `json:"startDate" yaml:"startDate"`
	EndDate        scheduler.Date    `json:"endDate" yaml:"endDate"`
	SeasonID       string            `json:"seasonId,omitempty" yaml:"seasonId,omitempty"`
	RoutineID      string            `json:"routineId,omitempty" yaml:"routineId,omitempty"`
	Occurrences    []ClassOccurrence `json:"classOccurrences" yaml:"classOccurrences"`
	DancerIDs      []string          `json:"dancers" yaml:"dancers"`
	TeacherIDs     []string          `json:"teachers" yaml:"teachers"`
	CreatedAt      time.Time         `json:"createdAt" yaml:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt" yaml:"updatedAt"`
}

// Event kinds as exposed to callers.
const (
	EventTypeClass = string(persistence.EventKindClass)
	EventTypeBlock = string(persistence.EventKindBlock)
)

// Event is an entry of the unified calendar: either a materialized class
// instance or a block event.
type Event struct {
	ID           string    `json:"id" yaml:"id"`
	Type         string    `json:"type" yaml:"type"`
	ClassID      string    `json:"classId,omitempty" yaml:"classId,omitempty"`
	OccurrenceID string    `json:"occurrenceId,omitempty" yaml:"occurrenceId,omitempty"`
	RoomID       string    `json:"roomId,omitempty" yaml:"roomId,omitempty"`
	Title        string    `json:"title" yaml:"title"`
	Colour       string    `json:"colour" yaml:"colour"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty"`
	IsFullDay    bool      `json:"isFullDay" yaml:"isFullDay"`
	Start        time.Time `json:"start" yaml:"start"`
	End          time.Time `json:"end" yaml:"end"`
}

// CheckClassParams wraps the data required to check a class for conflicts.
// ClassID is set when checking an edit to an existing class.
type CheckClassParams struct {
	OrganizationID string
	ClassID        string
	Input          ClassInput
}

// CreateClassParams wraps the data required to create a class.
type CreateClassParams struct {
	OrganizationID string
	Timezone       string
	Input          ClassInput
}

// UpdateClassParams wraps the data required to update a class.
type UpdateClassParams struct {
	OrganizationID string
	ClassID        string
	Timezone       string
	Input          ClassInput
}

// ExpandParams wraps the data required to preview a class's instances.
type ExpandParams struct {
	Timezone string
	Input    ClassInput
}

// EventQuery narrows the unified calendar. Nil bounds are open and an empty
// Type returns both kinds.
type EventQuery struct {
	OrganizationID string
	Type           string
	ClassID        string
	From           *time.Time
	To             *time.Time
}

func classFromPersistence(c persistence.Class) Class {
	occurrences := make([]ClassOccurrence, 0, len(c.Occurrences))
	for _, occ := range c.Occurrences {
		occurrences = append(occurrences, ClassOccurrence{
			ID:        occ.ID,
			Weekday:   occ.Weekday,
			StartTime: occ.Start,
			EndTime:   occ.End,
			RoomID:    occ.RoomID,
		})
	}
	return Class{
		ID:             c.ID,
		OrganizationID: c.OrganizationID,
		Name:           c.Name,
		Colour:         c.Colour,
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		SeasonID:       c.SeasonID,
		RoutineID:      c.RoutineID,
		Occurrences:    occurrences,
		DancerIDs:      nonNil(c.DancerIDs),
		TeacherIDs:     nonNil(c.TeacherIDs),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func eventFromPersistence(ev persistence.Event) Event {
	return Event{
		ID:           ev.ID,
		Type:         string(ev.Kind),
		ClassID:      ev.ClassID,
		OccurrenceID: ev.OccurrenceID,
		RoomID:       ev.RoomID,
		Title:        ev.Title,
		Colour:       ev.Colour,
		Description:  ev.Description,
		IsFullDay:    ev.FullDay,
		Start:        ev.Start,
		End:          ev.End,
	}
}

func eventsFromPersistence(events []persistence.Event) []Event {
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		out = append(out, eventFromPersistence(ev))
	}
	return out
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
