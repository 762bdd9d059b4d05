// Package metrics exports analysis cache and request metrics in Prometheus format.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hrygo/moodsense/plugin/ai/cache"
)

const (
	namespace = "moodsense"
	subsystem = "insight"
)

// Exporter records cache and request metrics into a Prometheus registry.
type Exporter struct {
	registry   *prometheus.Registry
	aggregator *Aggregator

	// Cache metrics
	cacheHits          *prometheus.CounterVec
	cacheMisses        *prometheus.CounterVec
	cacheInvalidations *prometheus.CounterVec

	// Computation metrics
	computations   *prometheus.CounterVec
	computeLatency *prometheus.HistogramVec

	// HTTP metrics
	requests       *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// Config configures the exporter.
type Config struct {
	// Registry to use (if nil, creates a new one)
	Registry *prometheus.Registry

	// Clock for the in-memory aggregator (if nil, uses time.Now)
	Clock func() time.Time

	// Buckets for latency histograms (in seconds)
	LatencyBuckets []float64
}

// DefaultConfig returns the default exporter configuration.
func DefaultConfig() Config {
	return Config{
		LatencyBuckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}
}

// NewExporter creates an exporter and registers its collectors.
func NewExporter(cfg Config) *Exporter {
	if len(cfg.LatencyBuckets) == 0 {
		cfg.LatencyBuckets = DefaultConfig().LatencyBuckets
	}

	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	e := &Exporter{
		registry:   registry,
		aggregator: NewAggregator(cfg.Clock),
	}

	e.cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_hits_total",
			Help:      "Total number of analysis cache hits",
		},
		[]string{"kind"},
	)

	e.cacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_misses_total",
			Help:      "Total number of analysis cache misses",
		},
		[]string{"kind"},
	)

	e.cacheInvalidations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "cache_invalidations_total",
			Help:      "Total number of analysis cache entries invalidated",
		},
		[]string{"kind"},
	)

	e.computations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "computations_total",
			Help:      "Total number of analysis computations",
		},
		[]string{"kind", "status"},
	)

	e.computeLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "computation_latency_seconds",
			Help:      "Analysis computation latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"kind"},
	)

	e.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"route", "method", "code"},
	)

	e.requestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_latency_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   cfg.LatencyBuckets,
		},
		[]string{"route", "method"},
	)

	registry.MustRegister(
		e.cacheHits,
		e.cacheMisses,
		e.cacheInvalidations,
		e.computations,
		e.computeLatency,
		e.requests,
		e.requestLatency,
	)

	return e
}

// RecordHit implements cache.Recorder.
func (e *Exporter) RecordHit(kind cache.Kind) {
	e.cacheHits.WithLabelValues(string(kind)).Inc()
}

// RecordMiss implements cache.Recorder.
func (e *Exporter) RecordMiss(kind cache.Kind) {
	e.cacheMisses.WithLabelValues(string(kind)).Inc()
}

// RecordInvalidation implements cache.Recorder.
func (e *Exporter) RecordInvalidation(kind cache.Kind, removed int) {
	e.cacheInvalidations.WithLabelValues(string(kind)).Add(float64(removed))
}

// RecordComputation implements cache.Recorder.
func (e *Exporter) RecordComputation(kind cache.Kind, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	e.computations.WithLabelValues(string(kind), status).Inc()
	e.computeLatency.WithLabelValues(string(kind)).Observe(latency.Seconds())
	e.aggregator.Record(string(kind), latency, err == nil)
}

// RecordRequest records one served HTTP request.
func (e *Exporter) RecordRequest(route, method string, code int, latency time.Duration) {
	e.requests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	e.requestLatency.WithLabelValues(route, method).Observe(latency.Seconds())
}

// ComputationSummary returns per-kind computation stats since the given time
// and drops older in-memory buckets.
func (e *Exporter) ComputationSummary(since time.Time) []KindLatency {
	e.aggregator.Prune(since)
	return e.aggregator.Summary(since)
}

// Handler returns the HTTP handler for the metrics endpoint.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Registry returns the Prometheus registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

var _ cache.Recorder = (*Exporter)(nil)
