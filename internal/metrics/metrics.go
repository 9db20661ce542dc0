// Package metrics exposes Prometheus instrumentation for intake sessions.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agency_intake"

// Reference load results.
const (
	LoadOK    = "ok"
	LoadError = "error"
	LoadCache = "cache"
)

type Metrics struct {
	submissions    *prometheus.CounterVec   // by kind and outcome
	submitDuration *prometheus.HistogramVec // by kind
	referenceLoads *prometheus.CounterVec   // by list and result
	liveSessions   prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "submit",
			Name:      "total",
			Help:      "Submission attempts by kind and outcome",
		}, []string{"kind", "outcome"}),

		submitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "submit",
			Name:      "duration_seconds",
			Help:      "Time spent waiting on the backend submit call",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"kind"}),

		referenceLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reference",
			Name:      "loads_total",
			Help:      "Reference list loads by list and result",
		}, []string{"list", "result"}),

		liveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "live_sessions",
			Help:      "Intake sessions currently open",
		}),
	}

	for _, c := range []prometheus.Collector{m.submissions, m.submitDuration, m.referenceLoads, m.liveSessions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Submission records one submit attempt. took is zero when no backend call
// was made.
func (m *Metrics) Submission(kind, outcome string, took time.Duration) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(kind, outcome).Inc()
	if took > 0 {
		m.submitDuration.WithLabelValues(kind).Observe(took.Seconds())
	}
}

func (m *Metrics) ReferenceLoad(list, result string) {
	if m == nil {
		return
	}
	m.referenceLoads.WithLabelValues(list, result).Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.liveSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.liveSessions.Dec()
}
