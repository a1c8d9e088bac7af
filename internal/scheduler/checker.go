package scheduler

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Source is everything the aggregator needs from storage.
type Source interface {
	ConflictSource
	ReferenceSource
}

// Observer receives per-dimension results. It may be nil.
type Observer interface {
	ObserveCheck(dimension ResourceType, conflicts int, elapsed time.Duration)
}

// Dimension pairs a resource type with the function that checks it.
type Dimension struct {
	Resource ResourceType
	Check    CheckFunc
}

// DefaultDimensions returns the four checkers in reporting order.
func DefaultDimensions() []Dimension {
	return []Dimension{
		{Resource: ResourceRooms, Check: CheckRooms},
		{Resource: ResourceDancers, Check: CheckDancers},
		{Resource: ResourceTeachers, Check: CheckTeachers},
		{Resource: ResourceRoutines, Check: CheckRoutine},
	}
}

// Checker validates references and fans a candidate out to every dimension.
type Checker struct {
	dimensions []Dimension
	parallel   bool
	observer   Observer
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker)

// WithParallel runs the dimensions concurrently. Only use it with sources whose
// methods are safe for concurrent use; a single SQL transaction is not.
func WithParallel(parallel bool) CheckerOption {
	return func(c *Checker) {
		c.parallel = parallel
	}
}

// WithObserver attaches an observer notified after each dimension completes.
func WithObserver(observer Observer) CheckerOption {
	return func(c *Checker) {
		c.observer = observer
	}
}

// WithDimensions replaces the default dimension list.
func WithDimensions(dimensions ...Dimension) CheckerOption {
	return func(c *Checker) {
		c.dimensions = dimensions
	}
}

// NewChecker constructs a Checker over the default dimensions.
func NewChecker(opts ...CheckerOption) *Checker {
	c := &Checker{dimensions: DefaultDimensions()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Parallel reports whether dimensions run concurrently.
func (c *Checker) Parallel() bool {
	return c != nil && c.parallel
}

// Check validates the candidate's references and returns the non-empty
// conflict groups in dimension order. A nil slice means the candidate is clear.
func (c *Checker) Check(ctx context.Context, src Source, candidate Candidate, organizationID, excludeClassID string) ([]ConflictGroup, error) {
	if err := ValidateReferences(ctx, src, candidate, organizationID); err != nil {
		return nil, err
	}
	return c.Detect(ctx, src, candidate, organizationID, excludeClassID, c.Parallel())
}

// Detect runs the dimensions without reference validation. When parallel is
// false they run one after another on the caller's goroutine.
func (c *Checker) Detect(ctx context.Context, src ConflictSource, candidate Candidate, organizationID, excludeClassID string, parallel bool) ([]ConflictGroup, error) {
	dimensions := DefaultDimensions()
	var observer Observer
	if c != nil {
		dimensions = c.dimensions
		observer = c.observer
	}

	results := make([]ConflictGroup, len(dimensions))
	run := func(ctx context.Context, i int) error {
		started := time.Now()
		group, err := dimensions[i].Check(ctx, src, candidate, organizationID, excludeClassID)
		if err != nil {
			return err
		}
		group.ResourceType = dimensions[i].Resource
		results[i] = group
		if observer != nil {
			observer.ObserveCheck(dimensions[i].Resource, len(group.Resources), time.Since(started))
		}
		return nil
	}

	if parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i := range dimensions {
			g.Go(func() error { return run(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range dimensions {
			if err := run(ctx, i); err != nil {
				return nil, err
			}
		}
	}

	var groups []ConflictGroup
	for _, group := range results {
		if !group.Empty() {
			groups = append(groups, group)
		}
	}
	return groups, nil
}
