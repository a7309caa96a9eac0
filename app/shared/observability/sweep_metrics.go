package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SweepMetrics records the outcome of periodic presentation sweeps.
type SweepMetrics interface {
	RecordSweep(users, failed int, duration time.Duration)
	RecordSweepRejected()
}

type prometheusSweepMetrics struct {
	users    prometheus.Gauge
	failed   prometheus.Gauge
	duration prometheus.Gauge
	last     prometheus.Gauge
	rejected prometheus.Counter
}

// NewSweepMetrics registers sweep gauges under the given namespace.
func NewSweepMetrics(registry prometheus.Registerer, namespace string) SweepMetrics {
	m := &prometheusSweepMetrics{
		users: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "users",
			Help:      "Linked users visited by the last sweep.",
		}),
		failed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "failed_users",
			Help:      "Users the last sweep could not reconcile.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Wall time of the last sweep.",
		}),
		last: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "last_completed_timestamp_seconds",
			Help:      "Unix time the last sweep finished.",
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sweep",
			Name:      "rejected_total",
			Help:      "Sweeps refused because another one was running.",
		}),
	}
	registry.MustRegister(m.users, m.failed, m.duration, m.last, m.rejected)
	return m
}

func (m *prometheusSweepMetrics) RecordSweep(users, failed int, duration time.Duration) {
	m.users.Set(float64(users))
	m.failed.Set(float64(failed))
	m.duration.Set(duration.Seconds())
	m.last.SetToCurrentTime()
}

func (m *prometheusSweepMetrics) RecordSweepRejected() {
	m.rejected.Inc()
}

type noopSweepMetrics struct{}

// NewNoopSweepMetrics returns sweep metrics that discard everything.
func NewNoopSweepMetrics() SweepMetrics { return noopSweepMetrics{} }

func (noopSweepMetrics) RecordSweep(int, int, time.Duration) {}
func (noopSweepMetrics) RecordSweepRejected()                {}
