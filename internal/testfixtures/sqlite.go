package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/studio-scheduler/internal/persistence/sqlstore"
)

// SQLiteHarness provides a migrated sqlstore database backed by a temporary
// SQLite file for integration-style tests.
type SQLiteHarness struct {
	DB *sqlstore.DB

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens and migrates a SQLite database in a temporary
// directory. Callers may invoke Close, but a cleanup callback is also
// registered with tb.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "studio.db")
	db, err := sqlstore.Open(context.Background(), sqlstore.Options{
		Driver: sqlstore.DriverSQLite,
		DSN:    "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)",
		Retry: sqlstore.RetryConfig{
			MaxRetries:    2,
			InitialDelay:  time.Millisecond,
			MaxDelay:      10 * time.Millisecond,
			BackoffFactor: 2,
		},
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := db.Migrate(context.Background()); err != nil {
		_ = db.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		DB: db,
		cleanup: func() {
			_ = db.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
