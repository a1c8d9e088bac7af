package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/example/studio-scheduler/internal/persistence"
)

// Postgres SQLSTATE codes the store distinguishes.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgExclusionViolation   = "23P01"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

// errorMapper maps driver errors onto persistence sentinels. The driver error
// stays in the chain so callers can still inspect it.
type errorMapper struct {
	driver Driver
}

func mapperFor(driver Driver) errorMapper {
	return errorMapper{driver: driver}
}

func (em errorMapper) mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return persistence.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return wrap(persistence.ErrDuplicate, err)
		case pgForeignKeyViolation:
			return wrap(persistence.ErrForeignKeyViolation, err)
		case pgCheckViolation:
			return wrap(persistence.ErrConstraintViolation, err)
		case pgExclusionViolation:
			return wrap(persistence.ErrOverlap, err)
		case pgSerializationFailure, pgDeadlockDetected:
			return wrap(persistence.ErrSerialization, err)
		}
		return err
	}

	msg := err.Error()
	switch {
	case containsAny(msg, "UNIQUE constraint failed", "PRIMARY KEY constraint failed"):
		return wrap(persistence.ErrDuplicate, err)
	case containsAny(msg, "FOREIGN KEY constraint failed"):
		return wrap(persistence.ErrForeignKeyViolation, err)
	case containsAny(msg, "CHECK constraint failed", "NOT NULL constraint failed"):
		return wrap(persistence.ErrConstraintViolation, err)
	case containsAny(msg, "database is locked", "database table is locked", "SQLITE_BUSY"):
		return wrap(persistence.ErrSerialization, err)
	}
	return err
}

func wrap(sentinel, err error) error {
	return fmt.Errorf("%w: %w", sentinel, err)
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
