package testfixtures

import (
	"io"
	"log/slog"
	"time"

	"github.com/example/studio-scheduler/internal/application"
	"github.com/example/studio-scheduler/internal/persistence"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults. Logs are
// discarded unless WithLogger is supplied.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLogger overrides the logger handed to services.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// NewClassService builds a class service over db using the factory's clock,
// identifiers and logger. Extra options are applied last.
func (f *ServiceFactory) NewClassService(db persistence.Database, opts ...application.ClassServiceOption) *application.ClassService {
	base := []application.ClassServiceOption{application.WithLogger(f.Logger)}
	return application.NewClassService(db, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), append(base, opts...)...)
}

// NewBlockEventService builds a block event service over events using the
// factory's identifiers and logger.
func (f *ServiceFactory) NewBlockEventService(events persistence.EventRepository) *application.BlockEventService {
	return application.NewBlockEventServiceWithLogger(events, f.IDGenerator.NextFunc(), f.Logger)
}
