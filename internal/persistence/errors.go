package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when a record with the same key already exists.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrForeignKeyViolation is returned when a referenced record is missing.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
	// ErrConstraintViolation is returned when a check constraint rejects a row.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrOverlap is returned when two occurrences would share a room at the same time.
	ErrOverlap = errors.New("persistence: overlapping room occurrence")
	// ErrSerialization is returned when a transaction lost a concurrency race and may be retried.
	ErrSerialization = errors.New("persistence: serialization failure")
)
