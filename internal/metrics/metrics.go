// Package metrics exposes Prometheus instruments for lifecycle operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutcomeOK labels a successful operation; failures are labeled with their error code.
const OutcomeOK = "ok"

// Lifecycle records lifecycle operation outcomes.
type Lifecycle struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	live       prometheus.Gauge
}

// NewLifecycle creates the instruments and registers them with reg.
func NewLifecycle(reg prometheus.Registerer, namespace string) (*Lifecycle, error) {
	l := &Lifecycle{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lifecycle_operations_total",
			Help:      "Lifecycle operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lifecycle_operation_duration_seconds",
			Help:      "Time spent in lifecycle operations, platform call included.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"operation"}),
		live: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_activities",
			Help:      "Activities currently held in the registry.",
		}),
	}
	for _, c := range []prometheus.Collector{l.operations, l.duration, l.live} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// ObserveOperation records one finished operation.
func (l *Lifecycle) ObserveOperation(operation, outcome string, elapsed time.Duration) {
	l.operations.With(prometheus.Labels{"operation": operation, "outcome": outcome}).Inc()
	l.duration.With(prometheus.Labels{"operation": operation}).Observe(elapsed.Seconds())
}

// SetLive sets the live activity gauge.
func (l *Lifecycle) SetLive(n int) {
	l.live.Set(float64(n))
}
