package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/example/studio-scheduler/internal/scheduler"
)

const namespace = "studio"

// Recorder exports conflict engine and class lifecycle metrics. A nil
// *Recorder discards every observation.
type Recorder struct {
	checks       *prometheus.CounterVec
	conflicts    *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	materialized prometheus.Counter
	mutations    *prometheus.CounterVec
}

// NewRecorder registers the collectors on reg. A nil reg falls back to the
// default registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		checks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conflict_checks_total",
				Help:      "Number of conflict checks run per dimension.",
			},
			[]string{"dimension"},
		),
		conflicts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conflicts_total",
				Help:      "Number of conflicting resources reported per dimension.",
			},
			[]string{"dimension"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "conflict_check_duration_seconds",
				Help:      "Duration of a single dimension check.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"dimension"},
		),
		materialized: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "materialized_events_total",
				Help:      "Number of calendar events written by class mutations.",
			},
		),
		mutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "class_mutations_total",
				Help:      "Class mutations by operation and outcome.",
			},
			[]string{"operation", "outcome"},
		),
	}
}

// ObserveCheck records one completed dimension check.
func (r *Recorder) ObserveCheck(dimension scheduler.ResourceType, conflicts int, elapsed time.Duration) {
	if r == nil {
		return
	}
	label := string(dimension)
	r.checks.WithLabelValues(label).Inc()
	if conflicts > 0 {
		r.conflicts.WithLabelValues(label).Add(float64(conflicts))
	}
	r.duration.WithLabelValues(label).Observe(elapsed.Seconds())
}

// ObserveMutation records the outcome of a create, update or delete.
func (r *Recorder) ObserveMutation(operation, outcome string) {
	if r == nil {
		return
	}
	r.mutations.WithLabelValues(operation, outcome).Inc()
}

// ObserveMaterialized adds count freshly written events.
func (r *Recorder) ObserveMaterialized(count int) {
	if r == nil || count <= 0 {
		return
	}
	r.materialized.Add(float64(count))
}

// Handler exposes the gatherer in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

var _ scheduler.Observer = (*Recorder)(nil)
