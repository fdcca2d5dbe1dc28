package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects request and authentication counters.
type Metrics struct {
	registry        *prometheus.Registry
	requestCount    *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	errorCount      *prometheus.CounterVec
	sessionsIssued  *prometheus.CounterVec
	sessionResolves *prometheus.CounterVec
}

// NewMetrics registers the service metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pequemaths_http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pequemaths_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		errorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pequemaths_http_errors_total",
			Help: "Error responses by error code.",
		}, []string{"route", "code"}),
		sessionsIssued: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pequemaths_sessions_issued_total",
			Help: "Session cookies minted, split by remember preference.",
		}, []string{"remember"}),
		sessionResolves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pequemaths_session_resolutions_total",
			Help: "Session cookie resolutions by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(
		m.requestCount,
		m.requestLatency,
		m.errorCount,
		m.sessionsIssued,
		m.sessionResolves,
		collectors.NewGoCollector(),
	)
	return m
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordError increments error counters.
func (m *Metrics) RecordError(route, code string) {
	if m == nil {
		return
	}
	m.errorCount.WithLabelValues(route, code).Inc()
}

// RecordSessionIssued counts a minted session cookie.
func (m *Metrics) RecordSessionIssued(remember bool) {
	if m == nil {
		return
	}
	m.sessionsIssued.WithLabelValues(strconv.FormatBool(remember)).Inc()
}

// RecordSessionResolution counts a resolver outcome.
func (m *Metrics) RecordSessionResolution(outcome string) {
	if m == nil {
		return
	}
	m.sessionResolves.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
