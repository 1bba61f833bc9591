// Package metrics exposes Prometheus collectors for the reset engine and
// its scheduler. All collectors hang off a caller-supplied registry so
// tests can run with isolated registries.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the collectors recorded by sweeps and resets.
type Metrics struct {
	// SweepsTotal counts completed fleet-wide sweeps.
	SweepsTotal prometheus.Counter

	// ResetsTotal counts next-cycle instances actually created.
	ResetsTotal prometheus.Counter

	// SweepErrorsTotal counts failures by scope: "record", "team", "sweep".
	SweepErrorsTotal *prometheus.CounterVec

	// SweepInProgress is 1 while a fleet-wide sweep is running.
	SweepInProgress prometheus.Gauge

	// SweepDuration observes fleet-wide sweep wall time in seconds.
	SweepDuration prometheus.Histogram
}

// New registers the collectors with the given registerer and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		SweepsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "habitlink",
			Subsystem: "reset",
			Name:      "sweeps_total",
			Help:      "Number of completed fleet-wide sweeps.",
		}),
		ResetsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "habitlink",
			Subsystem: "reset",
			Name:      "resets_total",
			Help:      "Number of next-cycle task instances created.",
		}),
		SweepErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "habitlink",
			Subsystem: "reset",
			Name:      "sweep_errors_total",
			Help:      "Number of sweep failures by scope.",
		}, []string{"scope"}),
		SweepInProgress: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "habitlink",
			Subsystem: "reset",
			Name:      "sweep_in_progress",
			Help:      "Whether a fleet-wide sweep is currently running.",
		}),
		SweepDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "habitlink",
			Subsystem: "reset",
			Name:      "sweep_duration_seconds",
			Help:      "Fleet-wide sweep duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// NewNop returns collectors bound to a throwaway registry, for tests and
// callers that do not scrape.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
