// Package metrics holds the Prometheus instruments for the agent service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "agent"

// Metrics is a process-local set of instruments registered on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	chatTurns        *prometheus.CounterVec
	planParse        *prometheus.CounterVec
	decisions        *prometheus.CounterVec
	ingestFailures   *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
}

// New creates and registers all instruments.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		chatTurns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_turns_total",
			Help:      "Chat turns handled, by outcome.",
		}, []string{"outcome"}),
		planParse: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "plan_parse_total",
			Help:      "Planner responses parsed, by outcome (parsed or fallback).",
		}, []string{"outcome"}),
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "action_decisions_total",
			Help:      "Approval decisions, by decision and result.",
		}, []string{"decision", "result"}),
		ingestFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingest_failures_total",
			Help:      "Failed transcript submissions, by sink.",
		}, []string{"sink"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Latency of collaborator calls.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"collaborator", "result"}),
	}

	reg.MustRegister(
		m.chatTurns,
		m.planParse,
		m.decisions,
		m.ingestFailures,
		m.upstreamDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry (tests gather from it).
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ChatTurn(outcome string) {
	if m == nil {
		return
	}
	m.chatTurns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PlanParse(outcome string) {
	if m == nil {
		return
	}
	m.planParse.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Decision(decision, result string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(decision, result).Inc()
}

func (m *Metrics) IngestFailure(sink string) {
	if m == nil {
		return
	}
	m.ingestFailures.WithLabelValues(sink).Inc()
}

// ObserveUpstream records one collaborator call that started at start.
func (m *Metrics) ObserveUpstream(collaborator string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.upstreamDuration.WithLabelValues(collaborator, result).Observe(time.Since(start).Seconds())
}
