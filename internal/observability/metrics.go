package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors for the triage pipeline and the HTTP
// surface.
type Metrics struct {
	Registry *prometheus.Registry

	TriagesTotal     *prometheus.CounterVec
	TriageDuration   *prometheus.HistogramVec
	TriageConfidence prometheus.Histogram
	AuditDropsTotal  prometheus.Counter

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics registers and returns the service metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		TriagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_triages_total",
			Help: "Total triage runs by final outcome.",
		}, []string{"outcome"}),
		TriageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helpdesk_triage_duration_seconds",
			Help:    "Duration of triage runs in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"outcome", "provider"}),
		TriageConfidence: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "helpdesk_triage_confidence",
			Help:    "Classification confidence per triage run.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		AuditDropsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "helpdesk_audit_drops_total",
			Help: "Audit entries dropped because the recorder buffer was full.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "helpdesk_http_requests_total",
			Help: "HTTP requests by path, method and status.",
		}, []string{"path", "method", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "helpdesk_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"path", "method"}),
	}

	reg.MustRegister(
		m.TriagesTotal,
		m.TriageDuration,
		m.TriageConfidence,
		m.AuditDropsTotal,
		m.RequestsTotal,
		m.RequestDuration,
	)

	return m
}

// ObserveTriage records the outcome of one triage run.
func (m *Metrics) ObserveTriage(outcome, provider string, confidence float64, duration time.Duration) {
	if m == nil {
		return
	}
	m.TriagesTotal.WithLabelValues(outcome).Inc()
	m.TriageDuration.WithLabelValues(outcome, provider).Observe(duration.Seconds())
	if confidence > 0 {
		m.TriageConfidence.Observe(confidence)
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(path, method).Observe(duration.Seconds())
}

// AuditDropped counts one discarded audit entry.
func (m *Metrics) AuditDropped() {
	if m == nil {
		return
	}
	m.AuditDropsTotal.Inc()
}
