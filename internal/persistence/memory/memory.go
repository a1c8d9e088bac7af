package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/example/studio-scheduler/internal/persistence"
	"github.com/example/studio-scheduler/internal/scheduler"
)

type state struct {
	rooms    map[string]persistence.Room
	seasons  map[string]persistence.Season
	routines map[string]persistence.Routine
	members  map[string]persistence.Member
	classes  map[string]persistence.Class
	events   map[string]persistence.Event
}

func newState() *state {
	return &state{
		rooms:    make(map[string]persistence.Room),
		seasons:  make(map[string]persistence.Season),
		routines: make(map[string]persistence.Routine),
		members:  make(map[string]persistence.Member),
		classes:  make(map[string]persistence.Class),
		events:   make(map[string]persistence.Event),
	}
}

func (s *state) clone() *state {
	out := newState()
	for k, v := range s.rooms {
		out.rooms[k] = v
	}
	for k, v := range s.seasons {
		out.seasons[k] = v
	}
	for k, v := range s.routines {
		out.routines[k] = v
	}
	for k, v := range s.members {
		out.members[k] = v
	}
	for k, v := range s.classes {
		out.classes[k] = cloneClass(v)
	}
	for k, v := range s.events {
		out.events[k] = v
	}
	return out
}

// Storage is an in-memory persistence.Database. Transactions are serialized and
// applied atomically by swapping in a modified snapshot on commit.
type Storage struct {
	mu   sync.RWMutex
	txMu *sync.Mutex
	data *state
	inTx bool
}

// Open returns an empty Storage.
func Open() *Storage {
	return &Storage{txMu: &sync.Mutex{}, data: newState()}
}

// Close releases resources held by the storage. No-op for the in-memory implementation.
func (s *Storage) Close() error {
	return nil
}

// WithinTx runs fn against a private snapshot and publishes it only if fn succeeds.
func (s *Storage) WithinTx(ctx context.Context, fn persistence.TxFunc) error {
	if s.inTx {
		return fn(ctx, s)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	tx := &Storage{txMu: s.txMu, data: snapshot, inTx: true}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = tx.data
	s.mu.Unlock()
	return nil
}

// write serializes a direct write with any running transaction.
func (s *Storage) write(fn func(*state) error) error {
	if !s.inTx {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Storage) read(fn func(*state)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

// --- CatalogRepository implementation ---

// CreateRoom stores a new room.
func (s *Storage) CreateRoom(ctx context.Context, room persistence.Room) error {
	return s.write(func(st *state) error {
		if _, ok := st.rooms[room.ID]; ok {
			return fmt.Errorf("memory: room %s: %w", room.ID, persistence.ErrDuplicate)
		}
		st.rooms[room.ID] = room
		return nil
	})
}

// CreateSeason stores a new season.
func (s *Storage) CreateSeason(ctx context.Context, season persistence.Season) error {
	return s.write(func(st *state) error {
		if _, ok := st.seasons[season.ID]; ok {
			return fmt.Errorf("memory: season %s: %w", season.ID, persistence.ErrDuplicate)
		}
		st.seasons[season.ID] = season
		return nil
	})
}

// CreateRoutine stores a new routine.
func (s *Storage) CreateRoutine(ctx context.Context, routine persistence.Routine) error {
	return s.write(func(st *state) error {
		if _, ok := st.routines[routine.ID]; ok {
			return fmt.Errorf("memory: routine %s: %w", routine.ID, persistence.ErrDuplicate)
		}
		st.routines[routine.ID] = routine
		return nil
	})
}

// CreateMember stores a new member.
func (s *Storage) CreateMember(ctx context.Context, member persistence.Member) error {
	return s.write(func(st *state) error {
		if _, ok := st.members[member.ID]; ok {
			return fmt.Errorf("memory: member %s: %w", member.ID, persistence.ErrDuplicate)
		}
		st.members[member.ID] = member
		return nil
	})
}

// ListRooms returns the organization's rooms ordered by name.
func (s *Storage) ListRooms(ctx context.Context, organizationID string) ([]persistence.Room, error) {
	var rooms []persistence.Room
	s.read(func(st *state) {
		for _, room := range st.rooms {
			if room.OrganizationID == organizationID {
				rooms = append(rooms, room)
			}
		}
	})
	sort.Slice(rooms, func(i, j int) bool {
		if rooms[i].Name == rooms[j].Name {
			return rooms[i].ID < rooms[j].ID
		}
		return rooms[i].Name < rooms[j].Name
	})
	return rooms, nil
}

// --- ClassRepository implementation ---

// CreateClass stores a class with its occurrences and roster.
func (s *Storage) CreateClass(ctx context.Context, class persistence.Class) error {
	return s.write(func(st *state) error {
		if _, ok := st.classes[class.ID]; ok {
			return fmt.Errorf("memory: class %s: %w", class.ID, persistence.ErrDuplicate)
		}
		if err := st.checkClassRefs(class); err != nil {
			return err
		}
		st.classes[class.ID] = cloneClass(class)
		return nil
	})
}

// GetClass retrieves a class by ID within an organization.
func (s *Storage) GetClass(ctx context.Context, organizationID, id string) (persistence.Class, error) {
	var (
		class persistence.Class
		ok    bool
	)
	s.read(func(st *state) {
		class, ok = st.classes[id]
	})
	if !ok || class.OrganizationID != organizationID {
		return persistence.Class{}, persistence.ErrNotFound
	}
	return cloneClass(class), nil
}

// ListClasses returns the organization's classes ordered by name.
func (s *Storage) ListClasses(ctx context.Context, organizationID string) ([]persistence.Class, error) {
	var classes []persistence.Class
	s.read(func(st *state) {
		for _, class := range st.classes {
			if class.OrganizationID == organizationID {
				classes = append(classes, cloneClass(class))
			}
		}
	})
	sort.Slice(classes, func(i, j int) bool {
		if classes[i].Name == classes[j].Name {
			return classes[i].ID < classes[j].ID
		}
		return classes[i].Name < classes[j].Name
	})
	return classes, nil
}

// UpdateClass replaces the scalar fields of an existing class.
func (s *Storage) UpdateClass(ctx context.Context, class persistence.Class) error {
	return s.write(func(st *state) error {
		current, ok := st.classes[class.ID]
		if !ok || current.OrganizationID != class.OrganizationID {
			return persistence.ErrNotFound
		}
		if err := st.checkClassRefs(class); err != nil {
			return err
		}
		current.Name = class.Name
		current.Colour = class.Colour
		current.StartDate = class.StartDate
		current.EndDate = class.EndDate
		current.SeasonID = class.SeasonID
		current.RoutineID = class.RoutineID
		current.UpdatedAt = class.UpdatedAt
		st.classes[class.ID] = current
		return nil
	})
}

// ReplaceOccurrences swaps the occurrence list of a class.
func (s *Storage) ReplaceOccurrences(ctx context.Context, classID string, occurrences []persistence.ClassOccurrence) error {
	return s.write(func(st *state) error {
		current, ok := st.classes[classID]
		if !ok {
			return persistence.ErrNotFound
		}
		for _, occ := range occurrences {
			if _, ok := st.rooms[occ.RoomID]; !ok {
				return fmt.Errorf("memory: room %s: %w", occ.RoomID, persistence.ErrForeignKeyViolation)
			}
		}
		for _, ev := range st.events {
			if ev.ClassID == classID {
				return fmt.Errorf("memory: class %s still has events: %w", classID, persistence.ErrForeignKeyViolation)
			}
		}
		current.Occurrences = slices.Clone(occurrences)
		st.classes[classID] = current
		return nil
	})
}

// ReplaceMembers swaps the dancer and teacher rosters of a class.
func (s *Storage) ReplaceMembers(ctx context.Context, classID string, dancerIDs, teacherIDs []string) error {
	return s.write(func(st *state) error {
		current, ok := st.classes[classID]
		if !ok {
			return persistence.ErrNotFound
		}
		for _, id := range append(slices.Clone(dancerIDs), teacherIDs...) {
			if _, ok := st.members[id]; !ok {
				return fmt.Errorf("memory: member %s: %w", id, persistence.ErrForeignKeyViolation)
			}
		}
		current.DancerIDs = slices.Clone(dancerIDs)
		current.TeacherIDs = slices.Clone(teacherIDs)
		st.classes[classID] = current
		return nil
	})
}

// DeleteClass removes a class. Its events must already be gone.
func (s *Storage) DeleteClass(ctx context.Context, organizationID, id string) error {
	return s.write(func(st *state) error {
		current, ok := st.classes[id]
		if !ok || current.OrganizationID != organizationID {
			return persistence.ErrNotFound
		}
		for _, ev := range st.events {
			if ev.ClassID == id {
				return fmt.Errorf("memory: class %s still has events: %w", id, persistence.ErrForeignKeyViolation)
			}
		}
		delete(st.classes, id)
		return nil
	})
}

func (st *state) checkClassRefs(class persistence.Class) error {
	if class.SeasonID != "" {
		if _, ok := st.seasons[class.SeasonID]; !ok {
			return fmt.Errorf("memory: season %s: %w", class.SeasonID, persistence.ErrForeignKeyViolation)
		}
	}
	if class.RoutineID != "" {
		if _, ok := st.routines[class.RoutineID]; !ok {
			return fmt.Errorf("memory: routine %s: %w", class.RoutineID, persistence.ErrForeignKeyViolation)
		}
	}
	for _, occ := range class.Occurrences {
		if _, ok := st.rooms[occ.RoomID]; !ok {
			return fmt.Errorf("memory: room %s: %w", occ.RoomID, persistence.ErrForeignKeyViolation)
		}
	}
	for _, id := range append(slices.Clone(class.DancerIDs), class.TeacherIDs...) {
		if _, ok := st.members[id]; !ok {
			return fmt.Errorf("memory: member %s: %w", id, persistence.ErrForeignKeyViolation)
		}
	}
	return nil
}

// --- EventRepository implementation ---

// CreateEvents stores a batch of events atomically.
func (s *Storage) CreateEvents(ctx context.Context, events []persistence.Event) error {
	return s.write(func(st *state) error {
		seen := make(map[string]struct{}, len(events))
		for _, ev := range events {
			if _, ok := st.events[ev.ID]; ok {
				return fmt.Errorf("memory: event %s: %w", ev.ID, persistence.ErrDuplicate)
			}
			if _, ok := seen[ev.ID]; ok {
				return fmt.Errorf("memory: event %s: %w", ev.ID, persistence.ErrDuplicate)
			}
			if err := st.checkEventRefs(ev); err != nil {
				return err
			}
			seen[ev.ID] = struct{}{}
		}
		for _, ev := range events {
			st.events[ev.ID] = ev
		}
		return nil
	})
}

// checkEventRefs mirrors the SQL kind and foreign key constraints.
func (st *state) checkEventRefs(ev persistence.Event) error {
	switch ev.Kind {
	case persistence.EventKindClass:
		class, ok := st.classes[ev.ClassID]
		if !ok {
			return fmt.Errorf("memory: class %s: %w", ev.ClassID, persistence.ErrForeignKeyViolation)
		}
		if !slices.ContainsFunc(class.Occurrences, func(occ persistence.ClassOccurrence) bool { return occ.ID == ev.OccurrenceID }) {
			return fmt.Errorf("memory: occurrence %s: %w", ev.OccurrenceID, persistence.ErrForeignKeyViolation)
		}
		if _, ok := st.rooms[ev.RoomID]; !ok {
			return fmt.Errorf("memory: room %s: %w", ev.RoomID, persistence.ErrForeignKeyViolation)
		}
	case persistence.EventKindBlock:
		if ev.ClassID != "" || ev.OccurrenceID != "" || ev.RoomID != "" {
			return fmt.Errorf("memory: block event %s references a class: %w", ev.ID, persistence.ErrConstraintViolation)
		}
	default:
		return fmt.Errorf("memory: event %s has kind %q: %w", ev.ID, ev.Kind, persistence.ErrConstraintViolation)
	}
	if !ev.Start.Before(ev.End) {
		return fmt.Errorf("memory: event %s ends before it starts: %w", ev.ID, persistence.ErrConstraintViolation)
	}
	return nil
}

// GetEvent returns one event of either kind.
func (s *Storage) GetEvent(ctx context.Context, organizationID, id string) (persistence.Event, error) {
	var (
		ev persistence.Event
		ok bool
	)
	s.read(func(st *state) {
		ev, ok = st.events[id]
	})
	if !ok || ev.OrganizationID != organizationID {
		return persistence.Event{}, persistence.ErrNotFound
	}
	return ev, nil
}

// UpdateBlockEvent overwrites the mutable fields of a block event.
func (s *Storage) UpdateBlockEvent(ctx context.Context, event persistence.Event) error {
	return s.write(func(st *state) error {
		current, ok := st.events[event.ID]
		if !ok || current.OrganizationID != event.OrganizationID || current.Kind != persistence.EventKindBlock {
			return persistence.ErrNotFound
		}
		current.Title = event.Title
		current.Colour = event.Colour
		current.Description = event.Description
		current.FullDay = event.FullDay
		current.Start = event.Start
		current.End = event.End
		if err := st.checkEventRefs(current); err != nil {
			return err
		}
		st.events[event.ID] = current
		return nil
	})
}

// DeleteBlockEvent removes a single block event.
func (s *Storage) DeleteBlockEvent(ctx context.Context, organizationID, id string) error {
	return s.write(func(st *state) error {
		current, ok := st.events[id]
		if !ok || current.OrganizationID != organizationID || current.Kind != persistence.EventKindBlock {
			return persistence.ErrNotFound
		}
		delete(st.events, id)
		return nil
	})
}

// DeleteEventsForClass removes every event of a class.
func (s *Storage) DeleteEventsForClass(ctx context.Context, organizationID, classID string) error {
	return s.write(func(st *state) error {
		for id, ev := range st.events {
			if ev.ClassID == classID && ev.OrganizationID == organizationID {
				delete(st.events, id)
			}
		}
		return nil
	})
}

// ListEvents returns events matching the filter ordered by start then ID.
func (s *Storage) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	var events []persistence.Event
	s.read(func(st *state) {
		for _, ev := range st.events {
			if ev.OrganizationID != filter.OrganizationID {
				continue
			}
			if filter.Kind != "" && ev.Kind != filter.Kind {
				continue
			}
			if filter.ClassID != "" && ev.ClassID != filter.ClassID {
				continue
			}
			if filter.From != nil && !ev.End.After(*filter.From) {
				continue
			}
			if filter.To != nil && !ev.Start.Before(*filter.To) {
				continue
			}
			events = append(events, ev)
		}
	})
	sort.Slice(events, func(i, j int) bool {
		if events[i].Start.Equal(events[j].Start) {
			return events[i].ID < events[j].ID
		}
		return events[i].Start.Before(events[j].Start)
	})
	return events, nil
}

func cloneClass(class persistence.Class) persistence.Class {
	class.DancerIDs = slices.Clone(class.DancerIDs)
	class.TeacherIDs = slices.Clone(class.TeacherIDs)
	class.Occurrences = slices.Clone(class.Occurrences)
	return class
}

var _ persistence.Database = (*Storage)(nil)
var _ scheduler.Source = (*Storage)(nil)
