package memory

import (
	"context"
	"slices"
	"sort"

	"github.com/example/studio-scheduler/internal/persistence"
	"github.com/example/studio-scheduler/internal/scheduler"
)

// FindRoom returns the room if it belongs to the organization.
func (s *Storage) FindRoom(ctx context.Context, organizationID, roomID string) (scheduler.Room, bool, error) {
	var (
		room persistence.Room
		ok   bool
	)
	s.read(func(st *state) {
		room, ok = st.rooms[roomID]
	})
	if !ok || room.OrganizationID != organizationID {
		return scheduler.Room{}, false, nil
	}
	return scheduler.Room{ID: room.ID, Name: room.Name}, true, nil
}

// FindRooms returns the subset of ids that are rooms of the organization.
func (s *Storage) FindRooms(ctx context.Context, organizationID string, ids []string) ([]scheduler.Room, error) {
	var out []scheduler.Room
	s.read(func(st *state) {
		for _, id := range ids {
			if room, ok := st.rooms[id]; ok && room.OrganizationID == organizationID {
				out = append(out, scheduler.Room{ID: room.ID, Name: room.Name})
			}
		}
	})
	return out, nil
}

// FindSeason returns the season if it belongs to the organization.
func (s *Storage) FindSeason(ctx context.Context, organizationID, seasonID string) (scheduler.Season, bool, error) {
	var (
		season persistence.Season
		ok     bool
	)
	s.read(func(st *state) {
		season, ok = st.seasons[seasonID]
	})
	if !ok || season.OrganizationID != organizationID {
		return scheduler.Season{}, false, nil
	}
	return scheduler.Season{ID: season.ID, Name: season.Name}, true, nil
}

// FindRoutine returns the routine if it belongs to the organization.
func (s *Storage) FindRoutine(ctx context.Context, organizationID, routineID string) (scheduler.Routine, bool, error) {
	var (
		routine persistence.Routine
		ok      bool
	)
	s.read(func(st *state) {
		routine, ok = st.routines[routineID]
	})
	if !ok || routine.OrganizationID != organizationID {
		return scheduler.Routine{}, false, nil
	}
	return toSchedulerRoutine(routine), true, nil
}

// FindMember returns the member if they belong to the organization.
func (s *Storage) FindMember(ctx context.Context, organizationID, memberID string) (scheduler.Member, bool, error) {
	var (
		member persistence.Member
		ok     bool
	)
	s.read(func(st *state) {
		member, ok = st.members[memberID]
	})
	if !ok || member.OrganizationID != organizationID {
		return scheduler.Member{}, false, nil
	}
	return toSchedulerMember(member), true, nil
}

// FindMembers returns the subset of ids that are members of the organization.
func (s *Storage) FindMembers(ctx context.Context, organizationID string, ids []string) ([]scheduler.Member, error) {
	var out []scheduler.Member
	s.read(func(st *state) {
		for _, id := range ids {
			if member, ok := st.members[id]; ok && member.OrganizationID == organizationID {
				out = append(out, toSchedulerMember(member))
			}
		}
	})
	return out, nil
}

// FindOccurrencesByRoomAndWeekday lists other classes' occurrences in a room on a weekday.
func (s *Storage) FindOccurrencesByRoomAndWeekday(ctx context.Context, organizationID, roomID string, day scheduler.Weekday, excludeClassID string) ([]scheduler.Booking, error) {
	var out []scheduler.Booking
	s.read(func(st *state) {
		for _, class := range st.classes {
			if class.OrganizationID != organizationID || class.ID == excludeClassID {
				continue
			}
			for _, occ := range class.Occurrences {
				if occ.RoomID == roomID && occ.Weekday == day {
					out = append(out, toBooking(class, occ))
				}
			}
		}
	})
	sortBookings(out)
	return out, nil
}

// FindClassesByMemberAndWeekday lists occurrences on a weekday of classes the
// member attends in the given role.
func (s *Storage) FindClassesByMemberAndWeekday(ctx context.Context, organizationID, memberID string, day scheduler.Weekday, role scheduler.Role, excludeClassID string) ([]scheduler.Booking, error) {
	var out []scheduler.Booking
	s.read(func(st *state) {
		for _, class := range st.classes {
			if class.OrganizationID != organizationID || class.ID == excludeClassID {
				continue
			}
			roster := class.DancerIDs
			if role == scheduler.RoleTeacher {
				roster = class.TeacherIDs
			}
			if !slices.Contains(roster, memberID) {
				continue
			}
			for _, occ := range class.Occurrences {
				if occ.Weekday == day {
					out = append(out, toBooking(class, occ))
				}
			}
		}
	})
	sortBookings(out)
	return out, nil
}

// FindClassesByRoutine lists other classes that reference the routine.
func (s *Storage) FindClassesByRoutine(ctx context.Context, organizationID, routineID, excludeClassID string) ([]scheduler.ClassRef, error) {
	var out []scheduler.ClassRef
	s.read(func(st *state) {
		for _, class := range st.classes {
			if class.OrganizationID == organizationID && class.ID != excludeClassID && class.RoutineID == routineID {
				out = append(out, scheduler.ClassRef{ID: class.ID, Name: class.Name})
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name == out[j].Name {
			return out[i].ID < out[j].ID
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func toBooking(class persistence.Class, occ persistence.ClassOccurrence) scheduler.Booking {
	return scheduler.Booking{
		ClassID:   class.ID,
		ClassName: class.Name,
		Weekday:   occ.Weekday,
		Start:     occ.Start,
		End:       occ.End,
		RoomID:    occ.RoomID,
	}
}

// sortBookings orders by class name, start time and class id, matching the SQL store.
func sortBookings(bookings []scheduler.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		a, b := bookings[i], bookings[j]
		if a.ClassName != b.ClassName {
			return a.ClassName < b.ClassName
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		return a.ClassID < b.ClassID
	})
}

func toSchedulerRoutine(r persistence.Routine) scheduler.Routine {
	return scheduler.Routine{ID: r.ID, Name: r.Name, Type: r.Type, Style: r.Style, Song: r.Song}
}

func toSchedulerMember(m persistence.Member) scheduler.Member {
	return scheduler.Member{ID: m.ID, FirstName: m.FirstName, LastName: m.LastName, Role: m.Role}
}
