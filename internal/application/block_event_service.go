package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/example/studio-scheduler/internal/persistence"
)

// instantLayout is the wire format of block event bounds.
const instantLayout = time.RFC3339

// BlockEventInput is the payload for creating and updating a block event.
type BlockEventInput struct {
	Title       string `json:"title" yaml:"title" validate:"required"`
	Colour      string `json:"colour,omitempty" yaml:"colour,omitempty" validate:"omitempty,len=7,hexcolor"`
	Start       string `json:"start" yaml:"start" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	End         string `json:"end" yaml:"end" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	IsFullDay   bool   `json:"isFullDay,omitempty" yaml:"isFullDay,omitempty"`
}

// CreateBlockEventParams wraps the data required to create a block event.
type CreateBlockEventParams struct {
	OrganizationID string
	Input          BlockEventInput
}

// UpdateBlockEventParams wraps the data required to update a block event.
type UpdateBlockEventParams struct {
	OrganizationID string
	EventID        string
	Input          BlockEventInput
}

type blockEventDraft struct {
	title       string
	colour      string
	description string
	fullDay     bool
	start       time.Time
	end         time.Time
}

// BlockEventService manages standalone calendar blocks such as holidays and
// studio closures. Block events never take part in conflict detection.
type BlockEventService struct {
	events      persistence.EventRepository
	idGenerator func() string
	logger      *slog.Logger
}

// NewBlockEventService constructs a block event service.
func NewBlockEventService(events persistence.EventRepository, idGenerator func() string) *BlockEventService {
	return NewBlockEventServiceWithLogger(events, idGenerator, nil)
}

// NewBlockEventServiceWithLogger constructs a block event service with a specified logger.
func NewBlockEventServiceWithLogger(events persistence.EventRepository, idGenerator func() string, logger *slog.Logger) *BlockEventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &BlockEventService{events: events, idGenerator: idGenerator, logger: defaultLogger(logger)}
}

func (s *BlockEventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BlockEventService", operation, attrs...)
}

// CreateBlockEvent validates and stores a new block event.
func (s *BlockEventService) CreateBlockEvent(ctx context.Context, params CreateBlockEventParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("BlockEventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event store not configured")
		return
	}

	logger := s.loggerWith(ctx, "CreateBlockEvent", "organization_id", params.OrganizationID)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to create block event", err)
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "block event created")
	}()

	draft, vErr := parseBlockEventInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	record := persistence.Event{
		ID:             s.idGenerator(),
		OrganizationID: params.OrganizationID,
		Kind:           persistence.EventKindBlock,
	}
	draft.apply(&record)
	if err = s.events.CreateEvents(ctx, []persistence.Event{record}); err != nil {
		err = fmt.Errorf("create block event: %w", mapRepoError(err))
		return
	}
	event = eventFromPersistence(record)
	return
}

// UpdateBlockEvent replaces the fields of an existing block event. Class
// events cannot be edited here and report ErrNotFound.
func (s *BlockEventService) UpdateBlockEvent(ctx context.Context, params UpdateBlockEventParams) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("BlockEventService is nil")
		return
	}
	if s.events == nil {
		err = fmt.Errorf("event store not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateBlockEvent",
		"organization_id", params.OrganizationID,
		"event_id", params.EventID,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to update block event", err)
			return
		}
		logger.InfoContext(ctx, "block event updated")
	}()

	draft, vErr := parseBlockEventInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var record persistence.Event
	record, err = s.events.GetEvent(ctx, params.OrganizationID, params.EventID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if record.Kind != persistence.EventKindBlock {
		err = ErrNotFound
		return
	}

	draft.apply(&record)
	if err = s.events.UpdateBlockEvent(ctx, record); err != nil {
		err = mapRepoError(err)
		return
	}
	event = eventFromPersistence(record)
	return
}

// DeleteBlockEvent removes a block event.
func (s *BlockEventService) DeleteBlockEvent(ctx context.Context, organizationID, eventID string) (err error) {
	if s == nil {
		return fmt.Errorf("BlockEventService is nil")
	}
	if s.events == nil {
		return fmt.Errorf("event store not configured")
	}

	logger := s.loggerWith(ctx, "DeleteBlockEvent",
		"organization_id", organizationID,
		"event_id", eventID,
	)
	defer func() {
		if err != nil {
			logFailure(ctx, logger, "failed to delete block event", err)
			return
		}
		logger.InfoContext(ctx, "block event deleted")
	}()

	return mapRepoError(s.events.DeleteBlockEvent(ctx, organizationID, eventID))
}

// GetEvent returns a single calendar entry of either kind.
func (s *BlockEventService) GetEvent(ctx context.Context, organizationID, eventID string) (Event, error) {
	if s == nil {
		return Event{}, fmt.Errorf("BlockEventService is nil")
	}
	if s.events == nil {
		return Event{}, fmt.Errorf("event store not configured")
	}
	record, err := s.events.GetEvent(ctx, organizationID, eventID)
	if err != nil {
		return Event{}, mapRepoError(err)
	}
	return eventFromPersistence(record), nil
}

func parseBlockEventInput(input BlockEventInput) (blockEventDraft, *ValidationError) {
	vErr := &ValidationError{}

	input.Title = strings.TrimSpace(input.Title)
	if err := validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			vErr.add("input", err.Error())
			return blockEventDraft{}, vErr
		}
		for _, fe := range fieldErrs {
			vErr.add(fieldPath(fe), fieldMessage(fe))
		}
	}

	draft := blockEventDraft{
		title:       input.Title,
		colour:      strings.ToUpper(input.Colour),
		description: strings.TrimSpace(input.Description),
		fullDay:     input.IsFullDay,
	}
	if draft.colour == "" {
		draft.colour = DefaultColour
	}

	var startErr, endErr error
	draft.start, startErr = time.Parse(instantLayout, input.Start)
	draft.end, endErr = time.Parse(instantLayout, input.End)
	// Storage keeps whole seconds, so compare at that precision.
	draft.start = draft.start.UTC().Truncate(time.Second)
	draft.end = draft.end.UTC().Truncate(time.Second)
	if startErr == nil && endErr == nil && !draft.end.After(draft.start) {
		vErr.add("end", "must be after start")
	}

	if vErr.HasErrors() {
		return blockEventDraft{}, vErr
	}
	return draft, nil
}

func (d blockEventDraft) apply(record *persistence.Event) {
	record.Title = d.title
	record.Colour = d.colour
	record.Description = d.description
	record.FullDay = d.fullDay
	record.Start = d.start
	record.End = d.end
}
