package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/example/studio-scheduler/internal/persistence"
)

// Driver names a supported database/sql driver.
type Driver string

const (
	// DriverSQLite is the pure Go SQLite driver.
	DriverSQLite Driver = "sqlite"
	// DriverPostgres is the pgx stdlib driver.
	DriverPostgres Driver = "pgx"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrations embed.FS

func init() {
	sqlx.BindDriver(string(DriverSQLite), sqlx.QUESTION)
}

// ParseDriver validates a driver name.
func ParseDriver(name string) (Driver, error) {
	switch Driver(name) {
	case DriverSQLite:
		return DriverSQLite, nil
	case DriverPostgres, "postgres":
		return DriverPostgres, nil
	default:
		return "", fmt.Errorf("sqlstore: unsupported driver %q", name)
	}
}

// Options configures Open.
type Options struct {
	Driver Driver
	DSN    string
	// Serializable requests SERIALIZABLE isolation for WithinTx on postgres.
	// SQLite transactions are always serializable.
	Serializable bool
	Retry        RetryConfig
	Logger       *slog.Logger
}

// DB is a persistence.Database backed by database/sql through sqlx.
type DB struct {
	*Store
	db     *sqlx.DB
	opts   Options
	logger *slog.Logger
}

// Open connects to the database described by opts.
func Open(ctx context.Context, opts Options) (*DB, error) {
	if opts.DSN == "" {
		return nil, errors.New("sqlstore: DSN is required")
	}
	if _, err := ParseDriver(string(opts.Driver)); err != nil {
		return nil, err
	}

	db, err := sqlx.ConnectContext(ctx, string(opts.Driver), opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", opts.Driver, err)
	}
	if opts.Driver == DriverSQLite {
		// One writer at a time; also keeps in-memory databases on a single connection.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	return Wrap(db, opts), nil
}

// Wrap builds a DB around an existing connection. It is mainly useful with sqlmock.
func Wrap(db *sqlx.DB, opts Options) *DB {
	if opts.Retry == (RetryConfig{}) {
		opts.Retry = DefaultRetryConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &DB{
		Store:  newStore(db, mapperFor(opts.Driver)),
		db:     db,
		opts:   opts,
		logger: logger,
	}
}

// Migrate applies all pending migrations for the configured dialect.
func (d *DB) Migrate(ctx context.Context) error {
	dialect := goose.DialectSQLite3
	dir := "migrations/sqlite"
	if d.opts.Driver == DriverPostgres {
		dialect = goose.DialectPostgres
		dir = "migrations/postgres"
	}
	fsys, err := fs.Sub(migrations, dir)
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	provider, err := goose.NewProvider(dialect, d.db.DB, fsys)
	if err != nil {
		return fmt.Errorf("failed to create migration provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	for _, r := range results {
		d.logger.InfoContext(ctx, "migration applied",
			slog.String("source", r.Source.Path),
			slog.Int64("version", r.Source.Version),
			slog.Duration("duration", r.Duration),
		)
	}
	return nil
}

// Ping tests the database connection.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close closes the connection pool.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// WithinTx runs fn in a transaction and retries the whole attempt when the
// database reports a serialization failure.
func (d *DB) WithinTx(ctx context.Context, fn persistence.TxFunc) error {
	retry := NewRetryHelper(d.opts.Retry)
	return retry.WithRetry(ctx, func() error {
		return d.runTx(ctx, fn)
	})
}

func (d *DB) runTx(ctx context.Context, fn persistence.TxFunc) (err error) {
	var txOpts *sql.TxOptions
	if d.opts.Serializable && d.opts.Driver == DriverPostgres {
		txOpts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}

	tx, err := d.db.BeginTxx(ctx, txOpts)
	if err != nil {
		return d.mapper.mapError(fmt.Errorf("failed to begin transaction: %w", err))
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, newStore(tx, d.mapper)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction failed (rollback error: %v): %w", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return d.mapper.mapError(fmt.Errorf("failed to commit transaction: %w", err))
	}
	return nil
}

var _ persistence.Database = (*DB)(nil)
