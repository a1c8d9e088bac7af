package scheduler

import (
	"context"
	"fmt"
)

// ResourceType names a conflict dimension.
type ResourceType string

const (
	ResourceRooms    ResourceType = "Rooms"
	ResourceDancers  ResourceType = "Dancers"
	ResourceTeachers ResourceType = "Teachers"
	ResourceRoutines ResourceType = "Routines"
)

// ConflictResource is one resource that would be double-booked, with every
// human-readable reason collected for it.
type ConflictResource struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Conflicts []string `json:"conflicts" yaml:"conflicts"`
}

// ConflictGroup holds the conflicting resources of a single dimension.
type ConflictGroup struct {
	ResourceType ResourceType       `json:"resourceType" yaml:"resourceType"`
	Resources    []ConflictResource `json:"resources" yaml:"resources"`
}

// Empty reports whether the group carries no resources.
func (g ConflictGroup) Empty() bool {
	return len(g.Resources) == 0
}

// Occurrence is one weekly slot of a class.
type Occurrence struct {
	ID      string
	Weekday Weekday
	Start   TimeOfDay
	End     TimeOfDay
	RoomID  string
}

// Interval returns the occurrence's time-of-day range.
func (o Occurrence) Interval() Interval {
	return Interval{Start: o.Start, End: o.End}
}

// Candidate is a proposed class configuration submitted for conflict checking.
type Candidate struct {
	Occurrences []Occurrence
	DancerIDs   []string
	TeacherIDs  []string
	SeasonID    string
	RoutineID   string
}

// Booking is an occurrence of an already stored class.
type Booking struct {
	ClassID   string
	ClassName string
	Weekday   Weekday
	Start     TimeOfDay
	End       TimeOfDay
	RoomID    string
}

// Interval returns the booking's time-of-day range.
func (b Booking) Interval() Interval {
	return Interval{Start: b.Start, End: b.End}
}

// ClassRef identifies a stored class by id and display name.
type ClassRef struct {
	ID   string
	Name string
}

// Room is the subset of room data the engine needs.
type Room struct {
	ID   string
	Name string
}

// Season is the subset of season data the engine needs.
type Season struct {
	ID   string
	Name string
}

// Routine is the subset of routine data the engine needs.
type Routine struct {
	ID    string
	Name  string
	Type  string
	Style string
	Song  string
}

// DisplayName formats the routine as `name | type - style | "song"`.
func (r Routine) DisplayName() string {
	return fmt.Sprintf(`%s | %s - %s | "%s"`, r.Name, r.Type, r.Style, r.Song)
}

// Member is a person belonging to an organization.
type Member struct {
	ID        string
	FirstName string
	LastName  string
	Role      Role
}

// DisplayName returns "First Last".
func (m Member) DisplayName() string {
	return m.FirstName + " " + m.LastName
}

// HasRole reports whether the member holds role.
func (m Member) HasRole(role Role) bool {
	return m.Role == role
}

// ConflictSource is the read-only view of stored classes used by the checkers.
// Every lookup is scoped to an organization; excludeClassID, when non-empty,
// removes that class from the results.
type ConflictSource interface {
	FindRoom(ctx context.Context, organizationID, roomID string) (Room, bool, error)
	FindOccurrencesByRoomAndWeekday(ctx context.Context, organizationID, roomID string, day Weekday, excludeClassID string) ([]Booking, error)
	FindMember(ctx context.Context, organizationID, memberID string) (Member, bool, error)
	FindClassesByMemberAndWeekday(ctx context.Context, organizationID, memberID string, day Weekday, role Role, excludeClassID string) ([]Booking, error)
	FindRoutine(ctx context.Context, organizationID, routineID string) (Routine, bool, error)
	FindClassesByRoutine(ctx context.Context, organizationID, routineID, excludeClassID string) ([]ClassRef, error)
}

// CheckFunc evaluates one conflict dimension.
type CheckFunc func(ctx context.Context, src ConflictSource, candidate Candidate, organizationID, excludeClassID string) (ConflictGroup, error)

// CheckRooms reports other classes that use the same room on the same weekday
// at an overlapping time. Rooms unknown to the organization are skipped.
func CheckRooms(ctx context.Context, src ConflictSource, candidate Candidate, organizationID, excludeClassID string) (ConflictGroup, error) {
	group := newGroupBuilder(ResourceRooms)

	for _, occ := range candidate.Occurrences {
		room, ok, err := src.FindRoom(ctx, organizationID, occ.RoomID)
		if err != nil {
			return ConflictGroup{}, fmt.Errorf("find room %s: %w", occ.RoomID, err)
		}
		if !ok {
			continue
		}

		bookings, err := src.FindOccurrencesByRoomAndWeekday(ctx, organizationID, occ.RoomID, occ.Weekday, excludeClassID)
		if err != nil {
			return ConflictGroup{}, fmt.Errorf("find occurrences for room %s: %w", occ.RoomID, err)
		}

		for _, booking := range bookings {
			if !Overlaps(occ.Interval(), booking.Interval()) {
				continue
			}
			group.add(room.ID, room.Name, fmt.Sprintf(
				"%s uses this room on %s from %s to %s overlapping with your class from %s to %s",
				booking.ClassName, occ.Weekday, booking.Start, booking.End, occ.Start, occ.End,
			))
		}
	}

	return group.build(), nil
}

// CheckDancers reports dancers already enrolled in another class at an
// overlapping time on the same weekday, in any room.
func CheckDancers(ctx context.Context, src ConflictSource, candidate Candidate, organizationID, excludeClassID string) (ConflictGroup, error) {
	return checkMembers(ctx, src, candidate.Occurrences, candidate.DancerIDs, RoleDancer, ResourceDancers, "Already enrolled in", organizationID, excludeClassID)
}

// CheckTeachers reports teachers already teaching another class at an
// overlapping time on the same weekday, in any room.
func CheckTeachers(ctx context.Context, src ConflictSource, candidate Candidate, organizationID, excludeClassID string) (ConflictGroup, error) {
	return checkMembers(ctx, src, candidate.Occurrences, candidate.TeacherIDs, RoleTeacher, ResourceTeachers, "Already teaching", organizationID, excludeClassID)
}

func checkMembers(ctx context.Context, src ConflictSource, occurrences []Occurrence, memberIDs []string, role Role, resource ResourceType, verb, organizationID, excludeClassID string) (ConflictGroup, error) {
	group := newGroupBuilder(resource)

	for _, memberID := range memberIDs {
		member, ok, err := src.FindMember(ctx, organizationID, memberID)
		if err != nil {
			return ConflictGroup{}, fmt.Errorf("find member %s: %w", memberID, err)
		}
		if !ok || !member.HasRole(role) {
			continue
		}

		for _, occ := range occurrences {
			bookings, err := src.FindClassesByMemberAndWeekday(ctx, organizationID, memberID, occ.Weekday, role, excludeClassID)
			if err != nil {
				return ConflictGroup{}, fmt.Errorf("find classes for member %s: %w", memberID, err)
			}
			for _, booking := range bookings {
				if !Overlaps(occ.Interval(), booking.Interval()) {
					continue
				}
				group.add(member.ID, member.DisplayName(), fmt.Sprintf(
					"%s %s on %s from %s to %s overlapping with your class from %s to %s",
					verb, booking.ClassName, occ.Weekday, booking.Start, booking.End, occ.Start, occ.End,
				))
			}
		}
	}

	return group.build(), nil
}

// CheckRoutine reports other classes that already use the candidate's routine.
// A routine belongs to at most one class per organization.
func CheckRoutine(ctx context.Context, src ConflictSource, candidate Candidate, organizationID, excludeClassID string) (ConflictGroup, error) {
	group := newGroupBuilder(ResourceRoutines)
	if candidate.RoutineID == "" {
		return group.build(), nil
	}

	routine, ok, err := src.FindRoutine(ctx, organizationID, candidate.RoutineID)
	if err != nil {
		return ConflictGroup{}, fmt.Errorf("find routine %s: %w", candidate.RoutineID, err)
	}
	if !ok {
		return group.build(), nil
	}

	classes, err := src.FindClassesByRoutine(ctx, organizationID, routine.ID, excludeClassID)
	if err != nil {
		return ConflictGroup{}, fmt.Errorf("find classes for routine %s: %w", routine.ID, err)
	}
	for _, cls := range classes {
		group.add(routine.ID, routine.DisplayName(), fmt.Sprintf(`Already assigned to class "%s"`, cls.Name))
	}

	return group.build(), nil
}

// groupBuilder merges conflicts per resource id, keeping first-seen order.
type groupBuilder struct {
	resourceType ResourceType
	index        map[string]int
	resources    []ConflictResource
}

func newGroupBuilder(resourceType ResourceType) *groupBuilder {
	return &groupBuilder{resourceType: resourceType, index: make(map[string]int)}
}

func (b *groupBuilder) add(id, name, message string) {
	if i, ok := b.index[id]; ok {
		b.resources[i].Conflicts = append(b.resources[i].Conflicts, message)
		return
	}
	b.index[id] = len(b.resources)
	b.resources = append(b.resources, ConflictResource{ID: id, Name: name, Conflicts: []string{message}})
}

func (b *groupBuilder) build() ConflictGroup {
	resources := b.resources
	if resources == nil {
		resources = []ConflictResource{}
	}
	return ConflictGroup{ResourceType: b.resourceType, Resources: resources}
}
