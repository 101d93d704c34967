package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	CacheLookups       *prometheus.CounterVec
	CacheEvictions     prometheus.Counter
	CacheComputeErrors prometheus.Counter
	AuthFailures       *prometheus.CounterVec
	UpstreamLatency    *prometheus.HistogramVec
	HTTPRequests       *prometheus.CounterVec
	HTTPLatency        *prometheus.HistogramVec
	RateLimitHits      prometheus.Counter
	EventsPublished    *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg.
// Passing prometheus.DefaultRegisterer exposes them on /metrics; tests pass a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		CacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockwatch_cache_lookups_total",
				Help: "Response cache lookups by result (hit, miss, shared).",
			},
			[]string{"result"},
		),
		CacheEvictions: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stockwatch_cache_evictions_total",
				Help: "Entries evicted from the in-process cache to make room.",
			},
		),
		CacheComputeErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stockwatch_cache_compute_errors_total",
				Help: "Computations that failed and were therefore not cached.",
			},
		),
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockwatch_auth_failures_total",
				Help: "Rejected requests by auth failure reason.",
			},
			[]string{"reason"},
		),
		UpstreamLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockwatch_upstream_latency_seconds",
				Help:    "Latency of market-data provider calls.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint", "result"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockwatch_http_requests_total",
				Help: "HTTP requests by route, method and status.",
			},
			[]string{"route", "method", "status"},
		),
		HTTPLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockwatch_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		RateLimitHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stockwatch_rate_limit_hits_total",
				Help: "Requests rejected by the rate limiter.",
			},
		),
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockwatch_events_published_total",
				Help: "Domain events handed to the event bus by type and result.",
			},
			[]string{"type", "result"},
		),
	}
}

// RecordCacheLookup records a hit, miss or shared (single-flight follower) lookup.
func (m *Metrics) RecordCacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

// RecordUpstream records the latency of a provider call.
func (m *Metrics) RecordUpstream(endpoint string, err error, duration time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.UpstreamLatency.WithLabelValues(endpoint, result).Observe(duration.Seconds())
}

// RecordHTTPRequest records a served request.
func (m *Metrics) RecordHTTPRequest(route, method, status string, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(route, method, status).Inc()
	m.HTTPLatency.WithLabelValues(route, method).Observe(duration.Seconds())
}

//Personal.AI order the ending
