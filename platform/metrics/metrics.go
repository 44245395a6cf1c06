// Package metrics exposes Prometheus counters for the intake pipeline.
// This is part of the platform layer and contains no business logic.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Lead outcomes recorded by LeadOutcome.
const (
	OutcomeAccepted    = "accepted"
	OutcomeDuplicate   = "duplicate"
	OutcomeDevBypass   = "dev_bypass"
	OutcomeQueued      = "queued"
	OutcomeInvalid     = "invalid"
	OutcomeRateLimited = "rate_limited"
	OutcomeFailed      = "failed"
)

// Metrics groups the collectors the service records into.
type Metrics struct {
	registry *prometheus.Registry

	leads        *prometheus.CounterVec
	sinkOps      *prometheus.CounterVec
	deliveries   *prometheus.CounterVec
	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New builds a registry with the pipeline collectors and the Go/process
// collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		leads: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "leads_submissions_total", Help: "Lead submissions by outcome."},
			[]string{"outcome"},
		),
		sinkOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "leads_sink_operations_total", Help: "Spreadsheet sink calls by operation and status."},
			[]string{"operation", "status"},
		),
		deliveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "leads_deliveries_total", Help: "Lead deliveries by destination and status."},
			[]string{"destination", "status"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
			[]string{"method", "path", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
			[]string{"method", "path"},
		),
	}

	m.registry.MustRegister(m.leads, m.sinkOps, m.deliveries, m.httpRequests, m.httpDuration)
	m.registry.MustRegister(collectors.NewGoCollector())
	m.registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

// LeadOutcome counts one intake request by its outcome.
func (m *Metrics) LeadOutcome(outcome string) {
	if m == nil {
		return
	}
	m.leads.WithLabelValues(outcome).Inc()
}

// SinkOperation counts one spreadsheet call.
func (m *Metrics) SinkOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.sinkOps.WithLabelValues(operation, status(err)).Inc()
}

// Delivery counts one delivery attempt to sheet, fallback or replay queue.
func (m *Metrics) Delivery(destination string, err error) {
	if m == nil {
		return
	}
	m.deliveries.WithLabelValues(destination, status(err)).Inc()
}

// HTTPRequest records a served request.
func (m *Metrics) HTTPRequest(method, path, statusCode string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, path, statusCode).Inc()
	m.httpDuration.WithLabelValues(method, path).Observe(seconds)
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
