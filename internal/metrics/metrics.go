// Package metrics holds the Prometheus collectors of the issue tracker.
//
// All methods are safe on a nil *Metrics so metrics can be switched off
// without guarding every call site.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "issues"

// Request outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

type Metrics struct {
	requests       *prometheus.CounterVec
	storageOps     *prometheus.CounterVec
	storageLatency *prometheus.HistogramVec
	cacheLookups   *prometheus.CounterVec
	rateLimited    prometheus.Counter
}

// NewRegistry returns a registry carrying the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// New creates and registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "api_requests_total",
				Help:      "Issue API requests by method, route and outcome",
			},
			[]string{"method", "route", "outcome"},
		),
		storageOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "storage_operations_total",
				Help:      "Issue store operations by operation and error kind",
			},
			[]string{"operation", "error_kind"},
		),
		storageLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "storage_latency_ms",
				Help:      "Latency of issue store operations in milliseconds",
				Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
			},
			[]string{"operation"},
		),
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_lookups_total",
				Help:      "List cache lookups by result",
			},
			[]string{"result"},
		),
		rateLimited: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
		),
	}
}

// ObserveRequest counts one issue API request.
func (m *Metrics) ObserveRequest(method, route, outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, route, outcome).Inc()
}

// ObserveStorage records one store operation. kind is empty on success.
func (m *Metrics) ObserveStorage(operation string, took time.Duration, kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "none"
	}
	m.storageOps.WithLabelValues(operation, kind).Inc()
	m.storageLatency.WithLabelValues(operation).Observe(float64(took.Microseconds()) / 1000.0)
}

// ObserveCacheLookup counts one list cache lookup.
func (m *Metrics) ObserveCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ObserveRateLimited counts one rejected request.
func (m *Metrics) ObserveRateLimited() {
	if m == nil {
		return
	}
	m.rateLimited.Inc()
}
