package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
	"github.com/example/studio-scheduler/internal/persistence/memory"
	"github.com/example/studio-scheduler/internal/scheduler"
)

const (
	testOrg   = "org-1"
	otherOrg  = "org-2"
	toronto   = "America/Toronto"
	studioA   = "8a0d2c1e-0000-4000-8000-00000000000a"
	studioB   = "8a0d2c1e-0000-4000-8000-00000000000b"
	season1   = "8a0d2c1e-0000-4000-8000-0000000000c1"
	routine1  = "8a0d2c1e-0000-4000-8000-0000000000d1"
	dancerAda = "8a0d2c1e-0000-4000-8000-0000000000e1"
	dancerBea = "8a0d2c1e-0000-4000-8000-0000000000e2"
	teachTina = "8a0d2c1e-0000-4000-8000-0000000000f1"
	foreignRm = "8a0d2c1e-0000-4000-8000-0000000000aa"
	missingID = "8a0d2c1e-0000-4000-8000-000000000404"
)

type mutationRecorder struct {
	mu           sync.Mutex
	mutations    []string
	materialized int
}

func (m *mutationRecorder) ObserveMutation(operation, outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mutations = append(m.mutations, operation+":"+outcome)
}

func (m *mutationRecorder) ObserveMaterialized(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.materialized += count
}

func seedStudio(t *testing.T, store *memory.Storage) {
	t.Helper()
	ctx := context.Background()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("seed failed: %v", err)
		}
	}
	must(store.CreateRoom(ctx, persistence.Room{ID: studioA, OrganizationID: testOrg, Name: "Studio A"}))
	must(store.CreateRoom(ctx, persistence.Room{ID: studioB, OrganizationID: testOrg, Name: "Studio B"}))
	must(store.CreateRoom(ctx, persistence.Room{ID: foreignRm, OrganizationID: otherOrg, Name: "Elsewhere"}))
	must(store.CreateSeason(ctx, persistence.Season{ID: season1, OrganizationID: testOrg, Name: "2024"}))
	must(store.CreateRoutine(ctx, persistence.Routine{ID: routine1, OrganizationID: testOrg, Name: "Swan", Type: "Solo", Style: "Ballet", Song: "Swan Lake"}))
	must(store.CreateMember(ctx, persistence.Member{ID: dancerAda, OrganizationID: testOrg, FirstName: "Ada", LastName: "Lovelace", Role: scheduler.RoleDancer}))
	must(store.CreateMember(ctx, persistence.Member{ID: dancerBea, OrganizationID: testOrg, FirstName: "Bea", LastName: "Arthur", Role: scheduler.RoleDancer}))
	must(store.CreateMember(ctx, persistence.Member{ID: teachTina, OrganizationID: testOrg, FirstName: "Tina", LastName: "Turner", Role: scheduler.RoleTeacher}))
}

func newTestService(t *testing.T, opts ...ClassServiceOption) (*ClassService, *memory.Storage) {
	t.Helper()
	store := memory.Open()
	seedStudio(t, store)

	var counter int
	var mu sync.Mutex
	idGen := func() string {
		mu.Lock()
		defer mu.Unlock()
		counter++
		return fmt.Sprintf("gen-%03d", counter)
	}
	now := func() time.Time { return time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC) }

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts = append([]ClassServiceOption{WithLogger(logger)}, opts...)
	return NewClassService(store, idGen, now, opts...), store
}

func mondayInput(name string, start, end string, roomID string) ClassInput {
	return ClassInput{
		Name:      name,
		StartDate: "2024-01-01",
		EndDate:   "2024-01-31",
		Occurrences: []OccurrenceInput{
			{RoomID: roomID, Weekday: "MONDAY", StartTime: start, EndTime: end},
		},
	}
}

func TestClassServiceCreateClass(t *testing.T) {
	t.Parallel()

	t.Run("materializes instances in UTC", func(t *testing.T) {
		t.Parallel()
		recorder := &mutationRecorder{}
		svc, store := newTestService(t, WithMutationObserver(recorder))

		input := mondayInput("Ballet", "18:00:00", "19:00:00", studioA)
		input.SeasonID = season1
		class, events, err := svc.CreateClass(context.Background(), CreateClassParams{
			OrganizationID: testOrg,
			Timezone:       toronto,
			Input:          input,
		})
		if err != nil {
			t.Fatalf("CreateClass returned error: %v", err)
		}
		if class.ID != "gen-001" || class.Colour != DefaultColour || class.SeasonID != season1 {
			t.Fatalf("unexpected class: %#v", class)
		}
		if len(events) != 5 {
			t.Fatalf("expected 5 events, got %d", len(events))
		}
		for i, day := range []int{1, 8, 15, 22, 29} {
			want := time.Date(2024, time.January, day, 23, 0, 0, 0, time.UTC)
			if !events[i].Start.Equal(want) || !events[i].End.Equal(want.Add(time.Hour)) {
				t.Fatalf("event %d: got %v-%v", i, events[i].Start, events[i].End)
			}
			if events[i].Title != "Ballet" || events[i].Colour != DefaultColour || events[i].RoomID != studioA {
				t.Fatalf("event %d carries wrong class data: %#v", i, events[i])
			}
			if events[i].OccurrenceID != class.Occurrences[0].ID {
				t.Fatalf("event %d not linked to occurrence: %#v", i, events[i])
			}
		}

		stored, err := store.ListEvents(context.Background(), persistence.EventFilter{OrganizationID: testOrg})
		if err != nil {
			t.Fatalf("ListEvents failed: %v", err)
		}
		if len(stored) != 5 {
			t.Fatalf("expected 5 stored events, got %d", len(stored))
		}
		if !slices.Equal(recorder.mutations, []string{"create:success"}) || recorder.materialized != 5 {
			t.Fatalf("unexpected observations: %v / %d", recorder.mutations, recorder.materialized)
		}
	})

	t.Run("refuses an overlapping room booking and persists nothing", func(t *testing.T) {
		t.Parallel()
		recorder := &mutationRecorder{}
		svc, store := newTestService(t, WithMutationObserver(recorder))
		ctx := context.Background()

		if _, _, err := svc.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: mondayInput("Ballet", "18:00:00", "19:00:00", studioA)}); err != nil {
			t.Fatalf("first CreateClass failed: %v", err)
		}

		_, _, err := svc.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: mondayInput("Jazz", "18:30:00", "19:30:00", studioA)})
		var conflict *ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected ConflictError, got %v", err)
		}
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected ErrConflict to match")
		}
		if len(conflict.Groups) != 1 || conflict.Groups[0].ResourceType != scheduler.ResourceRooms {
			t.Fatalf("unexpected groups: %#v", conflict.Groups)
		}
		resource := conflict.Groups[0].Resources[0]
		want := "Ballet uses this room on MONDAY from 18:00:00 to 19:00:00 overlapping with your class from 18:30:00 to 19:30:00"
		if resource.ID != studioA || resource.Name != "Studio A" || !slices.Equal(resource.Conflicts, []string{want}) {
			t.Fatalf("unexpected resource: %#v", resource)
		}

		classes, _ := store.ListClasses(ctx, testOrg)
		if len(classes) != 1 {
			t.Fatalf("expected only the first class to persist, got %d", len(classes))
		}
		events, _ := store.ListEvents(ctx, persistence.EventFilter{OrganizationID: testOrg})
		if len(events) != 5 {
			t.Fatalf("expected 5 events after refusal, got %d", len(events))
		}
		if !slices.Equal(recorder.mutations, []string{"create:success", "create:conflict"}) {
			t.Fatalf("unexpected observations: %v", recorder.mutations)
		}
	})

	t.Run("allows touching bookings", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t)
		ctx := context.Background()

		if _, _, err := svc.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: mondayInput("Ballet", "18:00:00", "19:00:00", studioA)}); err != nil {
			t.Fatalf("first CreateClass failed: %v", err)
		}
		if _, _, err := svc.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: mondayInput("Tap", "19:00:00", "20:00:00", studioA)}); err != nil {
			t.Fatalf("touching CreateClass failed: %v", err)
		}
	})

	t.Run("reports dancer, teacher and routine conflicts in order", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t)
		ctx := context.Background()

		first := mondayInput("Ballet", "18:00:00", "19:00:00", studioA)
		first.Dancers = []string{dancerAda}
		first.Teachers = []string{teachTina}
		first.RoutineID = routine1
		if _, _, err := svc.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: first}); err != nil {
			t.Fatalf("first CreateClass failed: %v", err)
		}

		second := mondayInput("Jazz", "18:30:00", "19:30:00", studioB)
		second.Dancers = []string{dancerBea, dancerAda}
		second.Teachers = []string{teachTina}
		second.RoutineID = routine1
		_, _, err := svc.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: second})
		var conflict *ConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected ConflictError, got %v", err)
		}

		var types []scheduler.ResourceType
		for _, g := range conflict.Groups {
			types = append(types, g.ResourceType)
		}
		wantTypes := []scheduler.ResourceType{scheduler.ResourceDancers, scheduler.ResourceTeachers, scheduler.ResourceRoutines}
		if !slices.Equal(types, wantTypes) {
			t.Fatalf("expected groups %v, got %v", wantTypes, types)
		}

		dancer := conflict.Groups[0].Resources
		if len(dancer) != 1 || dancer[0].ID != dancerAda || dancer[0].Name != "Ada Lovelace" {
			t.Fatalf("unexpected dancer conflicts: %#v", dancer)
		}
		if !strings.HasPrefix(dancer[0].Conflicts[0], "Already enrolled in Ballet on MONDAY") {
			t.Fatalf("unexpected dancer message: %q", dancer[0].Conflicts[0])
		}
		if !strings.HasPrefix(conflict.Groups[1].Resources[0].Conflicts[0], "Already teaching Ballet on MONDAY") {
			t.Fatalf("unexpected teacher message: %q", conflict.Groups[1].Resources[0].Conflicts[0])
		}
		routine := conflict.Groups[2].Resources[0]
		if routine.Name != `Swan | Solo - Ballet | "Swan Lake"` || routine.Conflicts[0] != `Already assigned to class "Ballet"` {
			t.Fatalf("unexpected routine conflict: %#v", routine)
		}
		if conflict.Count() != 3 {
			t.Fatalf("expected 3 conflicting resources, got %d", conflict.Count())
		}
	})

	t.Run("collects every validation problem", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t)

		input := ClassInput{
			Name:      "  ",
			Colour:    "red",
			StartDate: "2024-02-01",
			EndDate:   "2024-01-01",
			Occurrences: []OccurrenceInput{
				{RoomID: studioA, Weekday: "FUNDAY", StartTime: "10:00:00", EndTime: "11:00:00"},
				{RoomID: "not-a-uuid", Weekday: "MONDAY", StartTime: "12:00:00", EndTime: "11:00:00"},
			},
			Dancers: []string{dancerAda, dancerAda},
		}
		_, _, err := svc.CreateClass(context.Background(), CreateClassParams{OrganizationID: testOrg, Timezone: "Mars/Olympus", Input: input})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{
			"name",
			"colour",
			"endDate",
			"classOccurrences[0].weekday",
			"classOccurrences[1].roomId",
			"classOccurrences[1].endTime",
			"dancers",
			"timezone",
		} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("expected field error for %s, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("rejects Local and empty timezones", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t)

		for _, tz := range []string{"", "Local"} {
			_, _, err := svc.CreateClass(context.Background(), CreateClassParams{OrganizationID: testOrg, Timezone: tz, Input: mondayInput("Ballet", "18:00:00", "19:00:00", studioA)})
			var vErr *ValidationError
			if !errors.As(err, &vErr) || vErr.FieldErrors["timezone"] == "" {
				t.Fatalf("timezone %q: expected timezone validation error, got %v", tz, err)
			}
		}
	})

	t.Run("fails fast on the first missing reference", func(t *testing.T) {
		t.Parallel()
		svc, store := newTestService(t)

		input := mondayInput("Ballet", "18:00:00", "19:00:00", foreignRm)
		input.Dancers = []string{missingID}
		_, _, err := svc.CreateClass(context.Background(), CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: input})

		var rErr *scheduler.ReferenceError
		if !errors.As(err, &rErr) {
			t.Fatalf("expected ReferenceError, got %v", err)
		}
		if rErr.Message != "One or more rooms not found." || rErr.Resource != scheduler.ResourceRooms {
			t.Fatalf("unexpected reference error: %#v", rErr)
		}
		if ErrorKind(err) != "reference" {
			t.Fatalf("expected reference error kind, got %s", ErrorKind(err))
		}
		classes, _ := store.ListClasses(context.Background(), testOrg)
		if len(classes) != 0 {
			t.Fatalf("expected nothing persisted, got %d classes", len(classes))
		}
	})

	t.Run("rejects members in the wrong role", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t)

		input := mondayInput("Ballet", "18:00:00", "19:00:00", studioA)
		input.Teachers = []string{dancerAda}
		_, _, err := svc.CreateClass(context.Background(), CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: input})

		var rErr *scheduler.ReferenceError
		if !errors.As(err, &rErr) || !errors.Is(err, scheduler.ErrRoleMismatch) {
			t.Fatalf("expected role mismatch, got %v", err)
		}
		if rErr.Message != "Some teachers do not have the TEACHER role." {
			t.Fatalf("unexpected message: %q", rErr.Message)
		}
	})
}

func TestClassServiceUpdateClass(t *testing.T) {
	t.Parallel()

	t.Run("does not conflict with itself and replaces events", func(t *testing.T) {
		t.Parallel()
		svc, store := newTestService(t)
		ctx := context.Background()

		input := mondayInput("Ballet", "18:00:00", "19:00:00", studioA)
		input.RoutineID = routine1
		input.Dancers = []string{dancerAda}
		created, oldEvents, err := svc.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: input})
		if err != nil {
			t.Fatalf("CreateClass failed: %v", err)
		}

		input.Name = "Ballet II"
		input.Occurrences[0].StartTime = "18:30:00"
		input.Occurrences[0].EndTime = "19:30:00"
		input.Dancers = []string{dancerAda, dancerBea}
		updated, events, err := svc.UpdateClass(ctx, UpdateClassParams{
			OrganizationID: testOrg,
			ClassID:        created.ID,
			Timezone:       toronto,
			Input:          input,
		})
		if err != nil {
			t.Fatalf("UpdateClass returned error: %v", err)
		}
		if updated.ID != created.ID || updated.Name != "Ballet II" || len(updated.DancerIDs) != 2 {
			t.Fatalf("unexpected updated class: %#v", updated)
		}
		if len(events) != 5 || events[0].Title != "Ballet II" {
			t.Fatalf("unexpected regenerated events: %#v", events)
		}

		stored, _ := store.ListEvents(ctx, persistence.EventFilter{OrganizationID: testOrg})
		if len(stored) != 5 {
			t.Fatalf("expected 5 events after update, got %d", len(stored))
		}
		for _, ev := range stored {
			for _, old := range oldEvents {
				if ev.ID == old.ID {
					t.Fatalf("old event %s survived the update", old.ID)
				}
			}
			if ev.Start.Minute() != 30 {
				t.Fatalf("event not moved to the new time: %v", ev.Start)
			}
		}
	})

	t.Run("keeps prior events when the update conflicts", func(t *testing.T) {
		t.Parallel()
		svc, store := newTestService(t)
		ctx := context.Background()

		if _, _, err := svc.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: mondayInput("Ballet", "18:00:00", "19:00:00", studioA)}); err != nil {
			t.Fatalf("CreateClass failed: %v", err)
		}
		jazz, _, err := svc.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: mondayInput("Jazz", "19:00:00", "20:00:00", studioA)})
		if err != nil {
			t.Fatalf("CreateClass failed: %v", err)
		}

		_, _, err = svc.UpdateClass(ctx, UpdateClassParams{
			OrganizationID: testOrg,
			ClassID:        jazz.ID,
			Timezone:       toronto,
			Input:          mondayInput("Jazz", "18:45:00", "20:00:00", studioA),
		})
		if !errors.Is(err, ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}

		events, _ := store.ListEvents(ctx, persistence.EventFilter{OrganizationID: testOrg, ClassID: jazz.ID})
		if len(events) != 5 {
			t.Fatalf("expected jazz events to survive, got %d", len(events))
		}
	})

	t.Run("returns ErrNotFound for unknown classes", func(t *testing.T) {
		t.Parallel()
		svc, _ := newTestService(t)

		_, _, err := svc.UpdateClass(context.Background(), UpdateClassParams{
			OrganizationID: testOrg,
			ClassID:        "missing",
			Timezone:       toronto,
			Input:          mondayInput("Ballet", "18:00:00", "19:00:00", studioA),
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestClassServiceDeleteClass(t *testing.T) {
	t.Parallel()
	svc, store := newTestService(t)
	ctx := context.Background()

	created, _, err := svc.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: mondayInput("Ballet", "18:00:00", "19:00:00", studioA)})
	if err != nil {
		t.Fatalf("CreateClass failed: %v", err)
	}

	if err := svc.DeleteClass(ctx, otherOrg, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from another organization, got %v", err)
	}
	if err := svc.DeleteClass(ctx, testOrg, created.ID); err != nil {
		t.Fatalf("DeleteClass failed: %v", err)
	}
	if _, err := svc.GetClass(ctx, testOrg, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	events, _ := store.ListEvents(ctx, persistence.EventFilter{OrganizationID: testOrg})
	if len(events) != 0 {
		t.Fatalf("expected events removed, got %d", len(events))
	}

	// The slot is free again.
	if _, _, err := svc.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: mondayInput("Jazz", "18:00:00", "19:00:00", studioA)}); err != nil {
		t.Fatalf("CreateClass after delete failed: %v", err)
	}
}

func TestClassServiceCheckClass(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, _, err := svc.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: mondayInput("Ballet", "18:00:00", "19:00:00", studioA)})
	if err != nil {
		t.Fatalf("CreateClass failed: %v", err)
	}

	groups, err := svc.CheckClass(ctx, CheckClassParams{OrganizationID: testOrg, Input: mondayInput("Jazz", "18:00:00", "19:00:00", studioA)})
	if !errors.Is(err, ErrConflict) || len(groups) != 1 {
		t.Fatalf("expected one conflict group, got %v / %v", groups, err)
	}

	groups, err = svc.CheckClass(ctx, CheckClassParams{OrganizationID: testOrg, ClassID: created.ID, Input: mondayInput("Ballet", "18:00:00", "19:00:00", studioA)})
	if err != nil || groups != nil {
		t.Fatalf("expected clear check for the class itself, got %v / %v", groups, err)
	}

	groups, err = svc.CheckClass(ctx, CheckClassParams{OrganizationID: testOrg, Input: mondayInput("Tap", "08:00:00", "09:00:00", studioB)})
	if err != nil || groups != nil {
		t.Fatalf("expected clear check, got %v / %v", groups, err)
	}

	if _, err := svc.CheckClass(ctx, CheckClassParams{OrganizationID: testOrg, ClassID: "missing", Input: mondayInput("Tap", "08:00:00", "09:00:00", studioB)}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an unknown class, got %v", err)
	}
}

func TestClassServiceListEvents(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	ballet, _, err := svc.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: mondayInput("Ballet", "18:00:00", "19:00:00", studioA)})
	if err != nil {
		t.Fatalf("CreateClass failed: %v", err)
	}
	if _, _, err := svc.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: mondayInput("Tap", "17:00:00", "18:00:00", studioB)}); err != nil {
		t.Fatalf("CreateClass failed: %v", err)
	}

	all, err := svc.ListEvents(ctx, EventQuery{OrganizationID: testOrg})
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(all) != 10 {
		t.Fatalf("expected 10 events, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i].Start.Before(all[i-1].Start) {
			t.Fatalf("events not ordered by start at %d", i)
		}
	}
	if all[0].Title != "Tap" {
		t.Fatalf("expected the earlier Tap class first, got %s", all[0].Title)
	}

	from := time.Date(2024, time.January, 8, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)
	window, err := svc.ListEvents(ctx, EventQuery{OrganizationID: testOrg, ClassID: ballet.ID, From: &from, To: &to})
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(window) != 1 || window[0].Start.Day() != 8 {
		t.Fatalf("expected the 8 January ballet event, got %#v", window)
	}

	if _, err := svc.ListEvents(ctx, EventQuery{OrganizationID: testOrg, From: &to, To: &from}); ErrorKind(err) != "validation" {
		t.Fatalf("expected validation error for inverted window, got %v", err)
	}
}

func TestClassServiceExpandClass(t *testing.T) {
	t.Parallel()
	svc, store := newTestService(t)

	instances, err := svc.ExpandClass(context.Background(), ExpandParams{
		Timezone: toronto,
		Input:    mondayInput("Ballet", "18:00:00", "19:00:00", studioA),
	})
	if err != nil {
		t.Fatalf("ExpandClass failed: %v", err)
	}
	if len(instances) != 5 || instances[0].Start.Hour() != 23 {
		t.Fatalf("unexpected instances: %#v", instances)
	}
	classes, _ := store.ListClasses(context.Background(), testOrg)
	if len(classes) != 0 {
		t.Fatalf("ExpandClass must not persist anything")
	}
}

func TestClassServiceNilReceiver(t *testing.T) {
	var svc *ClassService
	if _, _, err := svc.CreateClass(context.Background(), CreateClassParams{}); err == nil {
		t.Fatal("expected error from nil service")
	}
	if _, err := svc.CheckClass(context.Background(), CheckClassParams{}); err == nil {
		t.Fatal("expected error from nil service")
	}
}
