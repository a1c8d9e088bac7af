package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/example/studio-scheduler/internal/application"
	"github.com/example/studio-scheduler/internal/config"
	"github.com/example/studio-scheduler/internal/logging"
	"github.com/example/studio-scheduler/internal/metrics"
	"github.com/example/studio-scheduler/internal/persistence"
	"github.com/example/studio-scheduler/internal/persistence/memory"
	"github.com/example/studio-scheduler/internal/persistence/sqlstore"
	"github.com/example/studio-scheduler/internal/scheduler"
)

const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitConflict = 3
)

const usageText = `usage: studiosched [global flags] <command> [flags]

commands:
  migrate                              apply database migrations
  seed     -file F                     load rooms, seasons, routines and members
  check    -org O -file F [-class C]   report conflicts for a class payload
  create   -org O -tz Z -file F        create a class and materialize its events
  update   -org O -tz Z -class C -file F
  delete   -org O -class C
  classes  -org O                      list classes
  expand   -tz Z -file F               preview instances without storing anything
  events   -org O [-class C] [-type CLASS|BLOCK] [-from T] [-to T] [-format json|ics] [-tz Z]
  event    -org O -id E                show one calendar entry
  create-block -org O -file F          add a holiday or closure to the calendar
  update-block -org O -id E -file F
  delete-block -org O -id E

global flags:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// usageError marks command line mistakes; they exit with status 2.
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

// app bundles everything a subcommand needs.
type app struct {
	db      persistence.Database
	sql     *sqlstore.DB
	service *application.ClassService
	blocks  *application.BlockEventService
	logger  *slog.Logger
	stdout  io.Writer
	stderr  io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("studiosched", flag.ContinueOnError)
	global.SetOutput(stderr)
	global.Usage = func() {
		fmt.Fprint(stderr, usageText)
		global.PrintDefaults()
	}
	envFile := global.String("env", ".env", "dotenv file to load before reading the environment")
	useMemory := global.Bool("memory", false, "use an in-memory store instead of the configured database")
	seedFile := global.String("seed", "", "seed file applied before the command (useful with -memory)")
	dsn := global.String("dsn", "", "override STUDIO_DB_DSN")
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if global.NArg() == 0 {
		global.Usage()
		return exitUsage
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintf(stderr, "configuration error: %v\n", err)
		return exitFailure
	}
	if *dsn != "" {
		cfg.DBDSN = *dsn
	}
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, stderr)
	ctx = logging.ContextWithLogger(ctx, logger)

	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)
	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(cfg.MetricsAddr, registry, logger)
		defer shutdown()
	}

	a := &app{logger: logger, stdout: stdout, stderr: stderr}
	if *useMemory {
		a.db = memory.Open()
	} else {
		db, err := sqlstore.Open(ctx, cfg.StoreOptions(logger))
		if err != nil {
			logger.Error("failed to open storage", "error", err)
			return exitFailure
		}
		a.db, a.sql = db, db
	}
	defer func() {
		if cerr := a.db.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	checker := scheduler.NewChecker(
		scheduler.WithParallel(cfg.ParallelChecks),
		scheduler.WithObserver(recorder),
	)
	a.service = application.NewClassService(a.db, uuid.NewString, time.Now,
		application.WithLogger(logger),
		application.WithChecker(checker),
		application.WithMutationObserver(recorder),
	)
	a.blocks = application.NewBlockEventServiceWithLogger(a.db, uuid.NewString, logger)

	if *seedFile != "" {
		if err := a.seed(ctx, *seedFile); err != nil {
			return a.fail(err)
		}
	}

	return a.fail(a.dispatch(ctx, global.Arg(0), global.Args()[1:]))
}

func (a *app) dispatch(ctx context.Context, command string, args []string) error {
	switch command {
	case "migrate":
		return a.runMigrate(ctx, args)
	case "seed":
		return a.runSeed(ctx, args)
	case "check":
		return a.runCheck(ctx, args)
	case "create":
		return a.runCreate(ctx, args)
	case "update":
		return a.runUpdate(ctx, args)
	case "delete":
		return a.runDelete(ctx, args)
	case "classes":
		return a.runClasses(ctx, args)
	case "expand":
		return a.runExpand(ctx, args)
	case "events":
		return a.runEvents(ctx, args)
	case "event":
		return a.runEvent(ctx, args)
	case "create-block":
		return a.runCreateBlock(ctx, args)
	case "update-block":
		return a.runUpdateBlock(ctx, args)
	case "delete-block":
		return a.runDeleteBlock(ctx, args)
	default:
		return usagef("unknown command %q", command)
	}
}

// fail reports err and maps it to an exit status.
func (a *app) fail(err error) int {
	if err == nil {
		return exitOK
	}

	var uErr *usageError
	if errors.As(err, &uErr) {
		fmt.Fprintf(a.stderr, "usage error: %s\n", uErr.msg)
		return exitUsage
	}

	var conflict *application.ConflictError
	if errors.As(err, &conflict) {
		_ = writeJSON(a.stdout, map[string]any{"conflicts": conflict.Groups})
		return exitConflict
	}

	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		_ = writeJSON(a.stderr, map[string]any{"error": vErr.Error(), "fieldErrors": vErr.FieldErrors})
		return exitFailure
	}

	var rErr *scheduler.ReferenceError
	if errors.As(err, &rErr) {
		_ = writeJSON(a.stderr, map[string]any{"error": rErr.Message, "resource": rErr.Resource})
		return exitFailure
	}

	fmt.Fprintf(a.stderr, "error: %v\n", err)
	return exitFailure
}

// serveMetrics exposes /metrics on addr until the returned function is called.
func serveMetrics(addr string, registry *prometheus.Registry, logger *slog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(registry))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("metrics listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server encountered error", "error", err)
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown metrics server", "error", err)
		}
	}
}
