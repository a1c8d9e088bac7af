package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
	"github.com/example/studio-scheduler/internal/recurrence"
	"github.com/example/studio-scheduler/internal/scheduler"
)

// MutationObserver receives the outcome of class mutations. It may be nil.
type MutationObserver interface {
	ObserveMutation(operation, outcome string)
	ObserveMaterialized(count int)
}

// ClassService orchestrates validation, conflict detection and materialization
// for the class lifecycle.
type ClassService struct {
	db          persistence.Database
	checker     *scheduler.Checker
	engine      *recurrence.Engine
	observer    MutationObserver
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// ClassServiceOption configures a ClassService.
type ClassServiceOption func(*ClassService)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) ClassServiceOption {
	return func(s *ClassService) {
		s.logger = logger
	}
}

// WithChecker replaces the default conflict checker.
func WithChecker(checker *scheduler.Checker) ClassServiceOption {
	return func(s *ClassService) {
		s.checker = checker
	}
}

// WithEngine replaces the default recurrence engine.
func WithEngine(engine *recurrence.Engine) ClassServiceOption {
	return func(s *ClassService) {
		s.engine = engine
	}
}

// WithMutationObserver attaches an observer for mutation outcomes.
func WithMutationObserver(observer MutationObserver) ClassServiceOption {
	return func(s *ClassService) {
		s.observer = observer
	}
}

// NewClassService constructs a class service with the provided dependencies.
func NewClassService(db persistence.Database, idGenerator func() string, now func() time.Time, opts ...ClassServiceOption) *ClassService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	s := &ClassService{db: db, idGenerator: idGenerator, now: now}
	for _, opt := range opts {
		opt(s)
	}
	if s.checker == nil {
		s.checker = scheduler.NewChecker()
	}
	if s.engine == nil {
		s.engine = recurrence.NewEngine()
	}
	s.logger = defaultLogger(s.logger)
	return s
}

func (s *ClassService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ClassService", operation, attrs...)
}

func (s *ClassService) observe(operation string, err error) {
	if s.observer == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = ErrorKind(err)
	}
	s.observer.ObserveMutation(operation, outcome)
}

// CheckClass validates a candidate class and runs every conflict check against
// the organization's schedule. A clear candidate yields nil groups and a nil
// error. Otherwise the non-empty groups are returned together with a
// *ConflictError carrying the same aggregate.
func (s *ClassService) CheckClass(ctx context.Context, params CheckClassParams) (groups []scheduler.ConflictGroup, err error) {
	if s == nil {
		return nil, fmt.Errorf("ClassService is nil")
	}

	logger := s.loggerWith(ctx, "CheckClass",
		"organization_id", params.OrganizationID,
		"class_id", params.ClassID,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "class check failed", err)
			return
		}
		logger.DebugContext(ctx, "class check passed")
	}()

	draft, vErr := parseClassInput(params.Input)
	if vErr.HasErrors() {
		return nil, vErr
	}
	if s.db == nil {
		return nil, fmt.Errorf("class store not configured")
	}

	if params.ClassID != "" {
		if _, err := s.db.GetClass(ctx, params.OrganizationID, params.ClassID); err != nil {
			return nil, mapRepoError(err)
		}
	}

	groups, err = s.checker.Check(ctx, s.db, draft.candidate(), params.OrganizationID, params.ClassID)
	if err != nil {
		return nil, err
	}
	if len(groups) > 0 {
		return groups, &ConflictError{Groups: groups}
	}
	return nil, nil
}

// CreateClass validates, checks and persists a new class together with its
// materialized events. Nothing is written when any step fails.
func (s *ClassService) CreateClass(ctx context.Context, params CreateClassParams) (class Class, events []Event, err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateClass", "organization_id", params.OrganizationID)
	defer func() {
		s.observe("create", err)
		if err != nil {
			logFailure(ctx, logger, "failed to create class", err)
			return
		}
		logger.With("class_id", class.ID, "event_count", len(events)).InfoContext(ctx, "class created")
	}()

	draft, vErr := s.parseWithTimezone(params.Input, params.Timezone)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if s.db == nil {
		err = fmt.Errorf("class store not configured")
		return
	}

	now := s.now()
	record := persistence.Class{
		ID:             s.idGenerator(),
		OrganizationID: params.OrganizationID,
		CreatedAt:      now,
	}
	s.applyDraft(&record, draft, now)
	candidate := candidateFor(record)

	var materialized []persistence.Event
	err = s.db.WithinTx(ctx, func(ctx context.Context, store persistence.Store) error {
		if err := s.checkWithin(ctx, store, candidate, record.OrganizationID, ""); err != nil {
			return err
		}
		if err := store.CreateClass(ctx, record); err != nil {
			return fmt.Errorf("create class: %w", err)
		}
		var err error
		materialized, err = s.MaterializeSchedule(record, params.Timezone)
		if err != nil {
			return err
		}
		if err := store.CreateEvents(ctx, materialized); err != nil {
			return fmt.Errorf("create events: %w", err)
		}
		return nil
	})
	if err != nil {
		err = s.explainOverlap(ctx, err, record, "")
		return
	}

	if s.observer != nil {
		s.observer.ObserveMaterialized(len(materialized))
	}
	return classFromPersistence(record), eventsFromPersistence(materialized), nil
}

// UpdateClass replaces a class's definition and regenerates its events. The
// class is checked against everything except itself.
func (s *ClassService) UpdateClass(ctx context.Context, params UpdateClassParams) (class Class, events []Event, err error) {
	if s == nil {
		err = fmt.Errorf("ClassService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UpdateClass",
		"organization_id", params.OrganizationID,
		"class_id", params.ClassID,
	)
	defer func() {
		s.observe("update", err)
		if err != nil {
			logFailure(ctx, logger, "failed to update class", err)
			return
		}
		logger.With("event_count", len(events)).InfoContext(ctx, "class updated")
	}()

	draft, vErr := s.parseWithTimezone(params.Input, params.Timezone)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if s.db == nil {
		err = fmt.Errorf("class store not configured")
		return
	}

	var (
		record       persistence.Class
		materialized []persistence.Event
	)
	err = s.db.WithinTx(ctx, func(ctx context.Context, store persistence.Store) error {
		existing, err := store.GetClass(ctx, params.OrganizationID, params.ClassID)
		if err != nil {
			return mapRepoError(err)
		}
		if err := store.DeleteEventsForClass(ctx, params.OrganizationID, existing.ID); err != nil {
			return fmt.Errorf("delete events: %w", err)
		}

		record = existing
		s.applyDraft(&record, draft, s.now())
		if err := s.checkWithin(ctx, store, candidateFor(record), record.OrganizationID, record.ID); err != nil {
			return err
		}

		if err := store.UpdateClass(ctx, record); err != nil {
			return fmt.Errorf("update class: %w", mapRepoError(err))
		}
		if err := store.ReplaceOccurrences(ctx, record.ID, record.Occurrences); err != nil {
			return fmt.Errorf("replace occurrences: %w", err)
		}
		if err := store.ReplaceMembers(ctx, record.ID, record.DancerIDs, record.TeacherIDs); err != nil {
			return fmt.Errorf("replace members: %w", err)
		}

		materialized, err = s.MaterializeSchedule(record, params.Timezone)
		if err != nil {
			return err
		}
		if err := store.CreateEvents(ctx, materialized); err != nil {
			return fmt.Errorf("create events: %w", err)
		}
		return nil
	})
	if err != nil {
		err = s.explainOverlap(ctx, err, record, params.ClassID)
		return
	}

	if s.observer != nil {
		s.observer.ObserveMaterialized(len(materialized))
	}
	return classFromPersistence(record), eventsFromPersistence(materialized), nil
}

// DeleteClass removes a class and every event generated from it.
func (s *ClassService) DeleteClass(ctx context.Context, organizationID, classID string) (err error) {
	if s == nil {
		return fmt.Errorf("ClassService is nil")
	}
	if s.db == nil {
		return fmt.Errorf("class store not configured")
	}

	logger := s.loggerWith(ctx, "DeleteClass",
		"organization_id", organizationID,
		"class_id", classID,
	)
	defer func() {
		s.observe("delete", err)
		if err != nil {
			logFailure(ctx, logger, "failed to delete class", err)
			return
		}
		logger.InfoContext(ctx, "class deleted")
	}()

	return s.db.WithinTx(ctx, func(ctx context.Context, store persistence.Store) error {
		if _, err := store.GetClass(ctx, organizationID, classID); err != nil {
			return mapRepoError(err)
		}
		if err := store.DeleteEventsForClass(ctx, organizationID, classID); err != nil {
			return fmt.Errorf("delete events: %w", err)
		}
		if err := store.DeleteClass(ctx, organizationID, classID); err != nil {
			return fmt.Errorf("delete class: %w", mapRepoError(err))
		}
		return nil
	})
}

// GetClass returns a single class of the organization.
func (s *ClassService) GetClass(ctx context.Context, organizationID, classID string) (Class, error) {
	if s == nil {
		return Class{}, fmt.Errorf("ClassService is nil")
	}
	if s.db == nil {
		return Class{}, fmt.Errorf("class store not configured")
	}
	record, err := s.db.GetClass(ctx, organizationID, classID)
	if err != nil {
		return Class{}, mapRepoError(err)
	}
	return classFromPersistence(record), nil
}

// ListClasses returns the organization's classes ordered by name.
func (s *ClassService) ListClasses(ctx context.Context, organizationID string) ([]Class, error) {
	if s == nil {
		return nil, fmt.Errorf("ClassService is nil")
	}
	if s.db == nil {
		return nil, fmt.Errorf("class store not configured")
	}
	records, err := s.db.ListClasses(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	classes := make([]Class, 0, len(records))
	for _, record := range records {
		classes = append(classes, classFromPersistence(record))
	}
	s.loggerWith(ctx, "ListClasses", "organization_id", organizationID).
		DebugContext(ctx, "classes listed", "result_count", len(classes))
	return classes, nil
}

// ListEvents returns the organization's unified calendar ordered by start time.
func (s *ClassService) ListEvents(ctx context.Context, query EventQuery) ([]Event, error) {
	if s == nil {
		return nil, fmt.Errorf("ClassService is nil")
	}
	if s.db == nil {
		return nil, fmt.Errorf("class store not configured")
	}
	vErr := &ValidationError{}
	if query.From != nil && query.To != nil && !query.From.Before(*query.To) {
		vErr.add("to", "must be after from")
	}
	if query.Type != "" && query.Type != EventTypeClass && query.Type != EventTypeBlock {
		vErr.add("type", fmt.Sprintf("must be one of %s %s", EventTypeClass, EventTypeBlock))
	}
	if vErr.HasErrors() {
		return nil, vErr
	}

	events, err := s.db.ListEvents(ctx, persistence.EventFilter{
		OrganizationID: query.OrganizationID,
		Kind:           persistence.EventKind(query.Type),
		ClassID:        query.ClassID,
		From:           query.From,
		To:             query.To,
	})
	if err != nil {
		return nil, err
	}
	return eventsFromPersistence(events), nil
}

// ExpandClass previews the instances a class would produce without touching storage.
func (s *ClassService) ExpandClass(ctx context.Context, params ExpandParams) ([]recurrence.Instance, error) {
	if s == nil {
		return nil, fmt.Errorf("ClassService is nil")
	}
	draft, vErr := s.parseWithTimezone(params.Input, params.Timezone)
	if vErr.HasErrors() {
		return nil, vErr
	}

	seq, err := s.engine.Expand(draft.occurrences, draft.dates(), params.Timezone)
	if err != nil {
		return nil, err
	}
	instances := slices.Collect(seq)
	s.loggerWith(ctx, "ExpandClass").DebugContext(ctx, "class expanded", "instance_count", len(instances))
	return instances, nil
}

// MaterializeSchedule expands a stored class into events titled and coloured
// after the class.
func (s *ClassService) MaterializeSchedule(class persistence.Class, timezone string) ([]persistence.Event, error) {
	if s == nil {
		return nil, fmt.Errorf("ClassService is nil")
	}
	occurrences := make([]scheduler.Occurrence, 0, len(class.Occurrences))
	for _, occ := range class.Occurrences {
		occurrences = append(occurrences, scheduler.Occurrence{
			ID:      occ.ID,
			Weekday: occ.Weekday,
			Start:   occ.Start,
			End:     occ.End,
			RoomID:  occ.RoomID,
		})
	}

	seq, err := s.engine.Expand(occurrences, scheduler.DateRange{Start: class.StartDate, End: class.EndDate}, timezone)
	if err != nil {
		return nil, fmt.Errorf("expand class %s: %w", class.ID, err)
	}

	var events []persistence.Event
	for inst := range seq {
		events = append(events, persistence.Event{
			ID:             s.idGenerator(),
			OrganizationID: class.OrganizationID,
			Kind:           persistence.EventKindClass,
			ClassID:        class.ID,
			OccurrenceID:   inst.OccurrenceID,
			RoomID:         inst.RoomID,
			Title:          class.Name,
			Colour:         class.Colour,
			Start:          inst.Start,
			End:            inst.End,
		})
	}
	return events, nil
}

// parseWithTimezone validates the payload and the timezone together so callers
// see every field problem at once.
func (s *ClassService) parseWithTimezone(input ClassInput, timezone string) (classDraft, *ValidationError) {
	vErr := &ValidationError{}
	draft, inputErr := parseClassInput(input)
	vErr.merge(inputErr)

	if err := validate.Var(timezone, "required,timezone"); err != nil {
		vErr.add("timezone", "must be a valid IANA timezone")
	} else if _, err := s.engine.LoadLocation(timezone); err != nil {
		vErr.add("timezone", "must be a valid IANA timezone")
	}

	if vErr.HasErrors() {
		return classDraft{}, vErr
	}
	return draft, nil
}

// applyDraft copies validated input onto a class record, assigning fresh
// occurrence IDs.
func (s *ClassService) applyDraft(record *persistence.Class, draft classDraft, now time.Time) {
	record.Name = draft.name
	record.Colour = draft.colour
	record.StartDate = draft.startDate
	record.EndDate = draft.endDate
	record.SeasonID = draft.seasonID
	record.RoutineID = draft.routineID
	record.DancerIDs = slices.Clone(draft.dancers)
	record.TeacherIDs = slices.Clone(draft.teachers)
	record.UpdatedAt = now

	record.Occurrences = make([]persistence.ClassOccurrence, 0, len(draft.occurrences))
	for _, occ := range draft.occurrences {
		record.Occurrences = append(record.Occurrences, persistence.ClassOccurrence{
			ID:      s.idGenerator(),
			ClassID: record.ID,
			Weekday: occ.Weekday,
			Start:   occ.Start,
			End:     occ.End,
			RoomID:  occ.RoomID,
		})
	}
}

// checkWithin validates references and runs the checkers sequentially on the
// transaction's store.
func (s *ClassService) checkWithin(ctx context.Context, store persistence.Store, candidate scheduler.Candidate, organizationID, excludeClassID string) error {
	if err := scheduler.ValidateReferences(ctx, store, candidate, organizationID); err != nil {
		return err
	}
	groups, err := s.checker.Detect(ctx, store, candidate, organizationID, excludeClassID, false)
	if err != nil {
		return fmt.Errorf("detect conflicts: %w", err)
	}
	if len(groups) > 0 {
		return &ConflictError{Groups: groups}
	}
	return nil
}

// explainOverlap turns a storage-level overlap rejection into a ConflictError.
// The winning writer has committed by now, so a fresh check usually names it.
// Otherwise only rooms another class books on one of the candidate's weekdays
// are reported, since the room exclusion constraint cannot fire elsewhere.
func (s *ClassService) explainOverlap(ctx context.Context, err error, record persistence.Class, excludeClassID string) error {
	if !errors.Is(err, persistence.ErrOverlap) {
		return err
	}
	candidate := candidateFor(record)
	groups, detectErr := s.checker.Detect(ctx, s.db, candidate, record.OrganizationID, excludeClassID, s.checker.Parallel())
	if detectErr == nil && len(groups) > 0 {
		return &ConflictError{Groups: groups}
	}

	var rooms []string
	messages := make(map[string][]string)
	for _, occ := range candidate.Occurrences {
		bookings, findErr := s.db.FindOccurrencesByRoomAndWeekday(ctx, record.OrganizationID, occ.RoomID, occ.Weekday, excludeClassID)
		if findErr != nil || len(bookings) == 0 {
			continue
		}
		if !slices.Contains(rooms, occ.RoomID) {
			rooms = append(rooms, occ.RoomID)
		}
		for _, booking := range bookings {
			msg := fmt.Sprintf("%s uses this room on %s from %s to %s", booking.ClassName, booking.Weekday, booking.Start, booking.End)
			if !slices.Contains(messages[occ.RoomID], msg) {
				messages[occ.RoomID] = append(messages[occ.RoomID], msg)
			}
		}
	}
	if len(rooms) == 0 {
		// The competing booking is gone again; every room stays a suspect.
		for _, occ := range candidate.Occurrences {
			if !slices.Contains(rooms, occ.RoomID) {
				rooms = append(rooms, occ.RoomID)
			}
		}
	}

	resources := make([]scheduler.ConflictResource, 0, len(rooms))
	for _, roomID := range rooms {
		name := roomID
		if room, ok, findErr := s.db.FindRoom(ctx, record.OrganizationID, roomID); findErr == nil && ok {
			name = room.Name
		}
		conflicts := append([]string{"Another class was booked into this room at an overlapping time."}, messages[roomID]...)
		resources = append(resources, scheduler.ConflictResource{ID: roomID, Name: name, Conflicts: conflicts})
	}
	return &ConflictError{Groups: []scheduler.ConflictGroup{{
		ResourceType: scheduler.ResourceRooms,
		Resources:    resources,
	}}}
}

func candidateFor(record persistence.Class) scheduler.Candidate {
	occurrences := make([]scheduler.Occurrence, 0, len(record.Occurrences))
	for _, occ := range record.Occurrences {
		occurrences = append(occurrences, scheduler.Occurrence{
			ID:      occ.ID,
			Weekday: occ.Weekday,
			Start:   occ.Start,
			End:     occ.End,
			RoomID:  occ.RoomID,
		})
	}
	return scheduler.Candidate{
		Occurrences: occurrences,
		DancerIDs:   record.DancerIDs,
		TeacherIDs:  record.TeacherIDs,
		SeasonID:    record.SeasonID,
		RoutineID:   record.RoutineID,
	}
}
