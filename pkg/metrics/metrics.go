// Package metrics defines the Prometheus metric collectors used by the
// indexing and search pipelines and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for geodoc.
type Metrics struct {
	DocsIndexedTotal   prometheus.Counter
	DocsSkippedTotal   *prometheus.CounterVec
	IndexCommitSeconds prometheus.Histogram
	IndexTermCount     prometheus.Gauge
	IndexDocCount      prometheus.Gauge

	QueriesTotal       *prometheus.CounterVec
	SearchLatency      *prometheus.HistogramVec
	SearchResultsCount prometheus.Histogram
	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

// New creates and registers all collectors on the default registry.
func New() *Metrics {
	m := &Metrics{
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "geodoc_docs_indexed_total",
				Help: "Documents successfully added to the index.",
			},
		),
		DocsSkippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geodoc_docs_skipped_total",
				Help: "Documents skipped during indexing, by reason (schema, io).",
			},
			[]string{"reason"},
		),
		IndexCommitSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "geodoc_index_commit_seconds",
				Help:    "Wall time spent writing the committed index to disk.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
		),
		IndexTermCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "geodoc_index_terms",
				Help: "Distinct (field, term) pairs in the committed index.",
			},
		),
		IndexDocCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "geodoc_index_docs",
				Help: "Documents in the committed index.",
			},
		),
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geodoc_queries_total",
				Help: "Queries executed, by outcome (hit, zero_result, malformed).",
			},
			[]string{"outcome"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "geodoc_search_latency_seconds",
				Help:    "Query execution latency in seconds.",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "geodoc_search_results_count",
				Help:    "Number of results returned per query.",
				Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 500},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "geodoc_cache_hits_total",
				Help: "Query cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "geodoc_cache_misses_total",
				Help: "Query cache misses.",
			},
		),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geodoc_http_requests_total",
				Help: "HTTP requests served, by method, path and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "geodoc_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "geodoc_http_requests_in_flight",
				Help: "HTTP requests currently being served.",
			},
		),
	}
	prometheus.MustRegister(
		m.DocsIndexedTotal,
		m.DocsSkippedTotal,
		m.IndexCommitSeconds,
		m.IndexTermCount,
		m.IndexDocCount,
		m.QueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
	)
	return m
}

// Handler returns the scrape handler for the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
