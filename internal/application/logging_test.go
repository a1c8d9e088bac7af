package application

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/example/studio-scheduler/internal/logging"
	"github.com/example/studio-scheduler/internal/scheduler"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestServiceLoggerPrefersContextLogger(t *testing.T) {
	t.Parallel()

	var base, scoped bytes.Buffer
	baseLogger := slog.New(slog.NewTextHandler(&base, nil))
	ctx := logging.ContextWithLogger(context.Background(), slog.New(slog.NewTextHandler(&scoped, nil)))

	serviceLogger(ctx, baseLogger, "ClassService", "CreateClass", "class_id", "c1").Info("hello")

	if base.Len() != 0 {
		t.Fatalf("expected base logger to stay silent, got %q", base.String())
	}
	out := scoped.String()
	for _, want := range []string{"service=ClassService", "operation=CreateClass", "class_id=c1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestLogFailureLevels(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	logFailure(context.Background(), logger, "rejected", &ConflictError{})
	if !strings.Contains(buf.String(), "level=WARN") || !strings.Contains(buf.String(), "error_kind=conflict") {
		t.Fatalf("expected warn entry for conflict, got %q", buf.String())
	}

	buf.Reset()
	logFailure(context.Background(), logger, "broken", errors.New("disk full"))
	if !strings.Contains(buf.String(), "level=ERROR") || !strings.Contains(buf.String(), "error_kind=unexpected") {
		t.Fatalf("expected error entry for unexpected failure, got %q", buf.String())
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&ValidationError{FieldErrors: map[string]string{"name": "is required"}}, "validation"},
		{&scheduler.ReferenceError{Message: "Season not found.", Err: scheduler.ErrReferenceNotFound}, "reference"},
		{&ConflictError{}, "conflict"},
		{fmt.Errorf("wrapped: %w", ErrNotFound), "not_found"},
		{errors.New("boom"), "unexpected"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
