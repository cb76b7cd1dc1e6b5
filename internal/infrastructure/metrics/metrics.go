// Package metrics exposes prometheus collectors for the HTTP surface, the
// upstream sources and the caches.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Source outcomes
const (
	OutcomeOK          = "ok"
	OutcomeUnavailable = "unavailable"
	OutcomeSkipped     = "skipped"
)

// Metrics owns its registry so several instances can coexist in tests.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	SourceRequestsTotal *prometheus.CounterVec
	CacheLookupsTotal   *prometheus.CounterVec
	AnalysisTotal       *prometheus.CounterVec
}

// NewMetrics creates the collectors on a fresh registry that also carries
// the Go runtime and process collectors
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fx_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		SourceRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_source_requests_total",
				Help: "Upstream source calls by outcome",
			},
			[]string{"source", "operation", "outcome"},
		),

		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_cache_lookups_total",
				Help: "Cache lookups by result",
			},
			[]string{"cache", "result"},
		),

		AnalysisTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fx_analysis_requests_total",
				Help: "AI analysis requests by outcome",
			},
			[]string{"outcome"},
		),
	}
}

// Handler serves the registry in the prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP records one finished request
func (m *Metrics) ObserveHTTP(path, method string, status int, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(path, method).Observe(seconds)
}

// ObserveSource records the outcome of one upstream call
func (m *Metrics) ObserveSource(source, operation, outcome string) {
	if m == nil {
		return
	}
	m.SourceRequestsTotal.WithLabelValues(source, operation, outcome).Inc()
}

// CacheLookup implements cache.Observer
func (m *Metrics) CacheLookup(cache string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(cache, result).Inc()
}

// ObserveAnalysis records whether an analysis came from the model, the cache or the fallback
func (m *Metrics) ObserveAnalysis(outcome string) {
	if m == nil {
		return
	}
	m.AnalysisTotal.WithLabelValues(outcome).Inc()
}
