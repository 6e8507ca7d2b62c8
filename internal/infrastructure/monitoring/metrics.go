package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics manages the Prometheus metrics exposed on /metrics. They mirror
// the store-resident counters for scrape-based dashboards; the Redis
// counters remain authoritative for alerting decisions because they are
// shared across instances.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RateLimitHits   *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
	AlertsRequested *prometheus.CounterVec
}

// NewMetrics creates and registers the metric vectors on reg. Tests pass
// a private registry to avoid duplicate-registration panics.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "printstarter_requests_total",
				Help: "Total number of completed API requests.",
			},
			[]string{"route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "printstarter_request_duration_seconds",
				Help:    "Latency of completed API requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		RateLimitHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "printstarter_rate_limit_hits_total",
				Help: "Total number of rate-limited requests.",
			},
			[]string{"scope"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "printstarter_cache_lookups_total",
				Help: "Semantic cache lookups by outcome.",
			},
			[]string{"namespace", "outcome"},
		),
		AlertsRequested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "printstarter_alerts_requested_total",
				Help: "Threshold crossings that requested an alert dispatch.",
			},
			[]string{"type", "route"},
		),
	}

	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.RateLimitHits, m.CacheLookups, m.AlertsRequested)
	return m
}

// RecordRequest records one completed request.
func (m *Metrics) RecordRequest(route, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(route, status).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordRateLimitHit records a 429 for a scope.
func (m *Metrics) RecordRateLimitHit(scope string) {
	m.RateLimitHits.WithLabelValues(scope).Inc()
}

// RecordCacheLookup records a cache hit or miss for a namespace.
func (m *Metrics) RecordCacheLookup(namespace, outcome string) {
	m.CacheLookups.WithLabelValues(namespace, outcome).Inc()
}

// RecordAlertRequested records a threshold crossing.
func (m *Metrics) RecordAlertRequested(alertType, route string) {
	m.AlertsRequested.WithLabelValues(alertType, route).Inc()
}
