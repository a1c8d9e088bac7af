package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/example/studio-scheduler/internal/persistence"
	"github.com/example/studio-scheduler/internal/persistence/memory"
	"github.com/example/studio-scheduler/internal/scheduler"
)

// exclusionDB stands in for Postgres when the room exclusion constraint
// fires at commit: the transaction runs, is rolled back, and ErrOverlap is
// returned. afterRollback runs once, letting a competing writer commit.
type exclusionDB struct {
	*memory.Storage
	afterRollback func()
}

func (d *exclusionDB) WithinTx(ctx context.Context, fn persistence.TxFunc) error {
	err := d.Storage.WithinTx(ctx, func(ctx context.Context, store persistence.Store) error {
		if err := fn(ctx, store); err != nil {
			return err
		}
		return fmt.Errorf("%w: conflicting key value violates exclusion constraint \"class_occurrences_room_overlap\"", persistence.ErrOverlap)
	})
	if hook := d.afterRollback; hook != nil {
		d.afterRollback = nil
		hook()
	}
	return err
}

func newExclusionService(t *testing.T) (*ClassService, *ClassService, *exclusionDB) {
	t.Helper()
	store := memory.Open()
	seedStudio(t, store)
	db := &exclusionDB{Storage: store}

	var counter int
	idGen := func() string {
		counter++
		return fmt.Sprintf("gen-%03d", counter)
	}
	now := func() time.Time { return time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC) }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClassService(db, idGen, now, WithLogger(logger)), NewClassService(store, idGen, now, WithLogger(logger)), db
}

// splitSlotInput books two overlapping Monday slots in Studio A and a Tuesday
// slot in Studio B.
func splitSlotInput() ClassInput {
	input := mondayInput("Ballet", "18:00:00", "19:00:00", studioA)
	input.Occurrences = append(input.Occurrences,
		OccurrenceInput{RoomID: studioA, Weekday: "MONDAY", StartTime: "18:30:00", EndTime: "19:30:00"},
		OccurrenceInput{RoomID: studioB, Weekday: "TUESDAY", StartTime: "10:00:00", EndTime: "11:00:00"},
	)
	return input
}

func roomGroup(t *testing.T, err error) scheduler.ConflictGroup {
	t.Helper()
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictError, got %v", err)
	}
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict in chain, got %v", err)
	}
	if len(conflict.Groups) == 0 || conflict.Groups[0].ResourceType != scheduler.ResourceRooms {
		t.Fatalf("expected a Rooms group first, got %#v", conflict.Groups)
	}
	return conflict.Groups[0]
}

func TestClassServiceExplainsExclusionViolations(t *testing.T) {
	t.Parallel()

	t.Run("names the class that won the race", func(t *testing.T) {
		t.Parallel()
		svc, rival, db := newExclusionService(t)
		ctx := context.Background()
		db.afterRollback = func() {
			if _, _, err := rival.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: mondayInput("Jazz", "18:30:00", "19:30:00", studioA)}); err != nil {
				t.Errorf("rival CreateClass failed: %v", err)
			}
		}

		_, _, err := svc.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: splitSlotInput()})
		group := roomGroup(t, err)
		if len(group.Resources) != 1 || group.Resources[0].ID != studioA || group.Resources[0].Name != "Studio A" {
			t.Fatalf("expected only Studio A, got %#v", group.Resources)
		}
		if !strings.Contains(strings.Join(group.Resources[0].Conflicts, "\n"), "Jazz") {
			t.Fatalf("expected the winning class to be named, got %v", group.Resources[0].Conflicts)
		}
	})

	t.Run("reports only rooms another class books that weekday", func(t *testing.T) {
		t.Parallel()
		svc, rival, _ := newExclusionService(t)
		ctx := context.Background()

		if _, _, err := rival.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: mondayInput("Contemporary", "10:00:00", "11:00:00", studioA)}); err != nil {
			t.Fatalf("CreateClass failed: %v", err)
		}

		_, _, err := svc.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: splitSlotInput()})
		group := roomGroup(t, err)
		if len(group.Resources) != 1 {
			t.Fatalf("expected Studio B to be left out, got %#v", group.Resources)
		}
		res := group.Resources[0]
		if res.ID != studioA || res.Name != "Studio A" {
			t.Fatalf("expected the room to be resolved by name, got %#v", res)
		}
		want := "Contemporary uses this room on MONDAY from 10:00:00 to 11:00:00"
		if len(res.Conflicts) != 2 || res.Conflicts[1] != want {
			t.Fatalf("expected %q among %v", want, res.Conflicts)
		}
	})

	t.Run("falls back to every named room when nothing overlaps any more", func(t *testing.T) {
		t.Parallel()
		svc, _, _ := newExclusionService(t)

		_, _, err := svc.CreateClass(context.Background(), CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: splitSlotInput()})
		group := roomGroup(t, err)
		var names []string
		for _, res := range group.Resources {
			names = append(names, res.Name)
		}
		if strings.Join(names, ",") != "Studio A,Studio B" {
			t.Fatalf("expected both rooms by name, got %v", names)
		}
	})

	t.Run("update excludes the class being edited", func(t *testing.T) {
		t.Parallel()
		svc, rival, _ := newExclusionService(t)
		ctx := context.Background()

		existing, _, err := rival.CreateClass(ctx, CreateClassParams{OrganizationID: testOrg, Timezone: toronto, Input: mondayInput("Ballet", "18:00:00", "19:00:00", studioA)})
		if err != nil {
			t.Fatalf("CreateClass failed: %v", err)
		}
		_, _, err = svc.UpdateClass(ctx, UpdateClassParams{OrganizationID: testOrg, ClassID: existing.ID, Timezone: toronto, Input: splitSlotInput()})
		group := roomGroup(t, err)
		for _, res := range group.Resources {
			for _, msg := range res.Conflicts {
				if strings.HasPrefix(msg, "Ballet uses this room") {
					t.Fatalf("the edited class must not conflict with itself: %v", res.Conflicts)
				}
			}
		}
		if _, err := rival.GetClass(ctx, testOrg, existing.ID); err != nil {
			t.Fatalf("expected the rolled back update to leave the class intact, got %v", err)
		}
	})
}
