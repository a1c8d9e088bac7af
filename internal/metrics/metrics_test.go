package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/example/studio-scheduler/internal/metrics"
	"github.com/example/studio-scheduler/internal/scheduler"
)

func TestRecorder_ObserveCheck(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)

	rec.ObserveCheck(scheduler.ResourceRooms, 2, 5*time.Millisecond)
	rec.ObserveCheck(scheduler.ResourceRooms, 0, time.Millisecond)
	rec.ObserveCheck(scheduler.ResourceDancers, 0, time.Millisecond)

	expected := `
# HELP studio_conflict_checks_total Number of conflict checks run per dimension.
# TYPE studio_conflict_checks_total counter
studio_conflict_checks_total{dimension="Dancers"} 1
studio_conflict_checks_total{dimension="Rooms"} 2
# HELP studio_conflicts_total Number of conflicting resources reported per dimension.
# TYPE studio_conflicts_total counter
studio_conflicts_total{dimension="Rooms"} 2
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"studio_conflict_checks_total", "studio_conflicts_total"))
	require.Equal(t, 2, testutil.CollectAndCount(reg, "studio_conflict_check_duration_seconds"))
}

func TestRecorder_Mutations(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder(reg)

	rec.ObserveMutation("create", "success")
	rec.ObserveMutation("create", "conflict")
	rec.ObserveMutation("create", "success")
	rec.ObserveMaterialized(5)
	rec.ObserveMaterialized(0)

	expected := `
# HELP studio_class_mutations_total Class mutations by operation and outcome.
# TYPE studio_class_mutations_total counter
studio_class_mutations_total{operation="create",outcome="conflict"} 1
studio_class_mutations_total{operation="create",outcome="success"} 2
# HELP studio_materialized_events_total Number of calendar events written by class mutations.
# TYPE studio_materialized_events_total counter
studio_materialized_events_total 5
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"studio_class_mutations_total", "studio_materialized_events_total"))
}

func TestRecorder_NilSafe(t *testing.T) {
	var rec *metrics.Recorder
	require.NotPanics(t, func() {
		rec.ObserveCheck(scheduler.ResourceRoutines, 1, time.Second)
		rec.ObserveMutation("delete", "not_found")
		rec.ObserveMaterialized(3)
	})
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.NewRecorder(reg).ObserveMutation("update", "success")

	rr := httptest.NewRecorder()
	metrics.Handler(reg).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `studio_class_mutations_total{operation="update",outcome="success"} 1`)
}
