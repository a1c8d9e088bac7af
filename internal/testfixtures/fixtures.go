package testfixtures

import (
	"context"
	"fmt"
	"time"

	"github.com/example/studio-scheduler/internal/application"
	"github.com/example/studio-scheduler/internal/persistence"
	"github.com/example/studio-scheduler/internal/scheduler"
)

// OrganizationID is the tenant every fixture belongs to unless overridden.
const OrganizationID = "org-fixture"

// Timezone is the studio timezone used by fixture scenarios.
const Timezone = "America/Toronto"

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Catalog fixtures -----------------------------

// NewRoom returns a room whose ID is derived from the organization and name.
func NewRoom(organizationID, name string) persistence.Room {
	return persistence.Room{
		ID:             StableID(fmt.Sprintf("room:%s:%s", organizationID, name)),
		OrganizationID: organizationID,
		Name:           name,
		CreatedAt:      referenceTime,
	}
}

// NewSeason returns a season whose ID is derived from the organization and name.
func NewSeason(organizationID, name string) persistence.Season {
	return persistence.Season{
		ID:             StableID(fmt.Sprintf("season:%s:%s", organizationID, name)),
		OrganizationID: organizationID,
		Name:           name,
		CreatedAt:      referenceTime,
	}
}

// NewRoutine returns a routine with the given descriptive fields.
func NewRoutine(organizationID, name, routineType, style, song string) persistence.Routine {
	return persistence.Routine{
		ID:             StableID(fmt.Sprintf("routine:%s:%s", organizationID, name)),
		OrganizationID: organizationID,
		Name:           name,
		Type:           routineType,
		Style:          style,
		Song:           song,
		CreatedAt:      referenceTime,
	}
}

// NewMember returns a member holding role.
func NewMember(organizationID, firstName, lastName string, role scheduler.Role) persistence.Member {
	return persistence.Member{
		ID:             StableID(fmt.Sprintf("member:%s:%s %s", organizationID, firstName, lastName)),
		OrganizationID: organizationID,
		FirstName:      firstName,
		LastName:       lastName,
		Role:           role,
		CreatedAt:      referenceTime,
	}
}

// Studio is a small seeded organization: two rooms, a season, a routine, two
// dancers and a teacher.
type Studio struct {
	OrganizationID string
	RoomA          persistence.Room
	RoomB          persistence.Room
	Season         persistence.Season
	Routine        persistence.Routine
	Ada            persistence.Member
	Bea            persistence.Member
	Tina           persistence.Member
}

// NewStudio builds the studio entities for organizationID without storing them.
func NewStudio(organizationID string) Studio {
	if organizationID == "" {
		organizationID = OrganizationID
	}
	return Studio{
		OrganizationID: organizationID,
		RoomA:          NewRoom(organizationID, "Studio A"),
		RoomB:          NewRoom(organizationID, "Studio B"),
		Season:         NewSeason(organizationID, "2024"),
		Routine:        NewRoutine(organizationID, "Swan", "Solo", "Ballet", "Swan Lake"),
		Ada:            NewMember(organizationID, "Ada", "Lovelace", scheduler.RoleDancer),
		Bea:            NewMember(organizationID, "Bea", "Arthur", scheduler.RoleDancer),
		Tina:           NewMember(organizationID, "Tina", "Turner", scheduler.RoleTeacher),
	}
}

// Seed stores every studio entity in repo.
func (s Studio) Seed(ctx context.Context, repo persistence.CatalogRepository) error {
	for _, room := range []persistence.Room{s.RoomA, s.RoomB} {
		if err := repo.CreateRoom(ctx, room); err != nil {
			return fmt.Errorf("seed room %s: %w", room.Name, err)
		}
	}
	if err := repo.CreateSeason(ctx, s.Season); err != nil {
		return fmt.Errorf("seed season: %w", err)
	}
	if err := repo.CreateRoutine(ctx, s.Routine); err != nil {
		return fmt.Errorf("seed routine: %w", err)
	}
	for _, member := range []persistence.Member{s.Ada, s.Bea, s.Tina} {
		if err := repo.CreateMember(ctx, member); err != nil {
			return fmt.Errorf("seed member %s: %w", member.FirstName, err)
		}
	}
	return nil
}

// SeedStudio builds and stores a studio for organizationID.
func SeedStudio(ctx context.Context, repo persistence.CatalogRepository, organizationID string) (Studio, error) {
	studio := NewStudio(organizationID)
	if err := studio.Seed(ctx, repo); err != nil {
		return Studio{}, err
	}
	return studio, nil
}

// ------------------------------ Class input ------------------------------

// ClassInputOption configures a class payload.
type ClassInputOption func(*application.ClassInput)

// NewClassInput returns a January 2024 class meeting on Mondays from 18:00 to
// 19:00 in roomID. Options adjust the payload.
func NewClassInput(name, roomID string, opts ...ClassInputOption) application.ClassInput {
	input := application.ClassInput{
		Name:      name,
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Occurrences: []application.OccurrenceInput{{
			RoomID:    roomID,
			Weekday:   string(scheduler.Monday),
			StartTime: "18:00:00",
			EndTime:   "19:00:00",
		}},
	}
	for _, opt := range opts {
		opt(&input)
	}
	return input
}

// WithSlot moves the first occurrence to weekday between start and end.
func WithSlot(weekday scheduler.Weekday, start, end string) ClassInputOption {
	return func(input *application.ClassInput) {
		input.Occurrences[0].Weekday = string(weekday)
		input.Occurrences[0].StartTime = start
		input.Occurrences[0].EndTime = end
	}
}

// WithExtraOccurrence appends another weekly slot.
func WithExtraOccurrence(roomID string, weekday scheduler.Weekday, start, end string) ClassInputOption {
	return func(input *application.ClassInput) {
		input.Occurrences = append(input.Occurrences, application.OccurrenceInput{
			RoomID:    roomID,
			Weekday:   string(weekday),
			StartTime: start,
			EndTime:   end,
		})
	}
}

// WithDates sets the inclusive date range.
func WithDates(start, end string) ClassInputOption {
	return func(input *application.ClassInput) {
		input.StartDate = start
		input.EndDate = end
	}
}

// WithColour sets the display colour.
func WithColour(colour string) ClassInputOption {
	return func(input *application.ClassInput) {
		input.Colour = colour
	}
}

// WithSeason links the class to a season.
func WithSeason(id string) ClassInputOption {
	return func(input *application.ClassInput) {
		input.SeasonID = id
	}
}

// WithRoutine assigns a routine.
func WithRoutine(id string) ClassInputOption {
	return func(input *application.ClassInput) {
		input.RoutineID = id
	}
}

// WithDancers sets the dancer roster.
func WithDancers(ids ...string) ClassInputOption {
	return func(input *application.ClassInput) {
		input.Dancers = ids
	}
}

// WithTeachers sets the teacher roster.
func WithTeachers(ids ...string) ClassInputOption {
	return func(input *application.ClassInput) {
		input.Teachers = ids
	}
}
