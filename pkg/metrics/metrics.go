// Package metrics defines the Prometheus collectors of the search server and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result types for SearchQueriesTotal.
const (
	ResultHit        = "hit"
	ResultZeroResult = "zero_result"
	ResultError      = "error"
)

// Metrics holds all Prometheus collectors for the search server.
type Metrics struct {
	DocsIndexedTotal    prometheus.Counter
	AddFailuresTotal    *prometheus.CounterVec
	IndexedDocuments    prometheus.Gauge
	IndexedTerms        prometheus.Gauge
	SearchQueriesTotal  *prometheus.CounterVec
	SearchLatency       *prometheus.HistogramVec
	SearchResultsCount  prometheus.Histogram
	CacheHitsTotal      prometheus.Counter
	CacheMissesTotal    prometheus.Counter
	TrackedRequests     prometheus.Gauge
	NoResultRequests    prometheus.Gauge
	EventsDroppedTotal  prometheus.Counter
	SnapshotsSavedTotal *prometheus.CounterVec

	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
}

// New creates the collectors and registers them with reg. Tests pass a fresh
// prometheus.NewRegistry(); the binary passes prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docs_indexed_total",
				Help: "Total documents added to the index.",
			},
		),
		AddFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "document_add_failures_total",
				Help: "Rejected document additions by reason.",
			},
			[]string{"reason"},
		),
		IndexedDocuments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "indexed_documents",
				Help: "Number of documents currently in the index.",
			},
		),
		IndexedTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "indexed_terms",
				Help: "Number of distinct words in the inverted index.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SearchLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "search_latency_seconds",
				Help:    "Search query latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
			},
			[]string{"cache_status"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of query cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of query cache misses.",
			},
		),
		TrackedRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "tracked_requests",
				Help: "Requests currently held in the request-history window.",
			},
		),
		NoResultRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "no_result_requests",
				Help: "Requests in the history window that returned no results.",
			},
		),
		EventsDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "request_events_dropped_total",
				Help: "Request events dropped because the publish buffer was full.",
			},
		),
		SnapshotsSavedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tracker_snapshots_total",
				Help: "Tracker snapshot writes by status.",
			},
			[]string{"status"},
		),
	}

	reg.MustRegister(
		m.DocsIndexedTotal,
		m.AddFailuresTotal,
		m.IndexedDocuments,
		m.IndexedTerms,
		m.SearchQueriesTotal,
		m.SearchLatency,
		m.SearchResultsCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.TrackedRequests,
		m.NoResultRequests,
		m.EventsDroppedTotal,
		m.SnapshotsSavedTotal,
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler for the given gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
