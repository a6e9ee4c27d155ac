package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Source attempt outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds all Prometheus metrics for the scanner.
type Metrics struct {
	CyclesTotal    prometheus.Counter
	CycleDuration  prometheus.Histogram
	SourceAttempts *prometheus.CounterVec // labels: source, outcome
	AlertsTotal    *prometheus.CounterVec // labels: timeframe, kind
	PairPauses     prometheus.Counter
	PausedPairs    prometheus.Gauge
	NotifyFailures prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "levelsentinel_cycles_total",
			Help: "Total scan cycles completed",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "levelsentinel_cycle_duration_seconds",
			Help:    "Wall time of one scan cycle",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		SourceAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "levelsentinel_source_attempts_total",
			Help: "Candle fetch attempts per source and outcome",
		}, []string{"source", "outcome"}),
		AlertsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "levelsentinel_alerts_total",
			Help: "Touch alerts emitted (by timeframe and level kind)",
		}, []string{"timeframe", "kind"}),
		PairPauses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "levelsentinel_pair_pauses_total",
			Help: "Times a pair entered its failure cooldown",
		}),
		PausedPairs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "levelsentinel_paused_pairs",
			Help: "Pairs currently paused",
		}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "levelsentinel_notify_failures_total",
			Help: "Notifications that could not be delivered",
		}),
	}

	reg.MustRegister(
		m.CyclesTotal,
		m.CycleDuration,
		m.SourceAttempts,
		m.AlertsTotal,
		m.PairPauses,
		m.PausedPairs,
		m.NotifyFailures,
	)

	return m
}

// ObserveAttempt matches the resolver's attempt observer signature.
func (m *Metrics) ObserveAttempt(source string, err error, _ time.Duration) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.SourceAttempts.WithLabelValues(source, outcome).Inc()
}

// ObserveCycle records a finished cycle.
func (m *Metrics) ObserveCycle(d time.Duration, paused int) {
	m.CyclesTotal.Inc()
	m.CycleDuration.Observe(d.Seconds())
	m.PausedPairs.Set(float64(paused))
}
