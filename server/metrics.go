package server

import (
	"net/http"

	"github.com/Desarso/fleetassist/stores"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the relay collectors on a private registry so several
// servers can coexist in one process (tests).
type Metrics struct {
	registry *prometheus.Registry

	TurnsTotal     *prometheus.CounterVec
	FramesTotal    prometheus.Counter
	ContextLookups *prometheus.CounterVec
	TurnDuration   prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		TurnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fleetassist",
				Subsystem: "relay",
				Name:      "turns_total",
				Help:      "Chat turns handled by the relay, by outcome",
			},
			[]string{"outcome"},
		),
		FramesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "fleetassist",
				Subsystem: "relay",
				Name:      "frames_total",
				Help:      "Content frames written to clients",
			},
		),
		ContextLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "fleetassist",
				Subsystem: "context",
				Name:      "lookups_total",
				Help:      "Context enrichment lookups, by status",
			},
			[]string{"status"},
		),
		TurnDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "fleetassist",
				Subsystem: "relay",
				Name:      "turn_duration_seconds",
				Help:      "Wall time of a relayed turn",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
	}
	m.registry.MustRegister(
		m.TurnsTotal,
		m.FramesTotal,
		m.ContextLookups,
		m.TurnDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveTurn records a finished turn.
func (m *Metrics) ObserveTurn(turn *stores.ChatTurn) {
	m.TurnsTotal.WithLabelValues(turn.Outcome).Inc()
	m.FramesTotal.Add(float64(turn.Frames))
	if turn.ContextStatus != "" {
		m.ContextLookups.WithLabelValues(turn.ContextStatus).Inc()
	}
	m.TurnDuration.Observe(float64(turn.DurationMS) / 1000)
}
