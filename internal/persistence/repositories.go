package persistence

import (
	"context"

	"github.com/example/studio-scheduler/internal/scheduler"
)

// CatalogRepository stores the entities classes refer to.
type CatalogRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	CreateSeason(ctx context.Context, season Season) error
	CreateRoutine(ctx context.Context, routine Routine) error
	CreateMember(ctx context.Context, member Member) error
	ListRooms(ctx context.Context, organizationID string) ([]Room, error)
}

// ClassRepository stores classes together with their occurrences and roster.
type ClassRepository interface {
	CreateClass(ctx context.Context, class Class) error
	GetClass(ctx context.Context, organizationID, id string) (Class, error)
	ListClasses(ctx context.Context, organizationID string) ([]Class, error)
	UpdateClass(ctx context.Context, class Class) error
	ReplaceOccurrences(ctx context.Context, classID string, occurrences []ClassOccurrence) error
	ReplaceMembers(ctx context.Context, classID string, dancerIDs, teacherIDs []string) error
	DeleteClass(ctx context.Context, organizationID, id string) error
}

// EventRepository stores class and block events.
// UpdateBlockEvent and DeleteBlockEvent only touch events of kind BLOCK and
// return ErrNotFound for anything else.
type EventRepository interface {
	CreateEvents(ctx context.Context, events []Event) error
	GetEvent(ctx context.Context, organizationID, id string) (Event, error)
	UpdateBlockEvent(ctx context.Context, event Event) error
	DeleteBlockEvent(ctx context.Context, organizationID, id string) error
	DeleteEventsForClass(ctx context.Context, organizationID, classID string) error
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
}

// Store is the full storage surface used by the class lifecycle.
type Store interface {
	scheduler.Source
	CatalogRepository
	ClassRepository
	EventRepository
}

// TxFunc runs inside a transaction against a transaction-scoped Store.
type TxFunc func(ctx context.Context, store Store) error

// Database is a Store that can also scope work to a single transaction.
// WithinTx commits when fn returns nil and rolls back otherwise.
type Database interface {
	Store
	WithinTx(ctx context.Context, fn TxFunc) error
	Close() error
}
