// Package tracker wraps a searcher and keeps a bounded history of the most
// recent requests together with the number of them that found nothing.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/filter"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/metrics"
)

// DefaultWindowSize models one request per minute over a day.
const DefaultWindowSize = 1440

// Searcher is the part of the search server the tracker delegates to.
type Searcher interface {
	FindTopDocuments(ctx context.Context, raw string, rule filter.Rule) ([]ranker.ScoredDoc, error)
}

// Sink receives an event for every recorded request.
type Sink interface {
	Track(event analytics.RequestEvent)
}

type record struct {
	query    string
	noResult bool
}

type Stats struct {
	WindowSize       int   `json:"window_size"`
	Requests         int   `json:"requests"`
	NoResultRequests int   `json:"no_result_requests"`
	TotalRequests    int64 `json:"total_requests"`
	Evicted          int64 `json:"evicted"`
}

// Tracker holds the last windowSize requests in a ring buffer. The no-result
// counter is adjusted on every append and eviction, so it always equals the
// number of empty records in the window.
type Tracker struct {
	searcher Searcher
	sinks    []Sink
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu       sync.Mutex
	records  []record
	head     int
	size     int
	noResult int
	total    int64
	evicted  int64
}

type Option func(*Tracker)

// WithSink forwards every recorded request to s.
func WithSink(s Sink) Option {
	return func(t *Tracker) { t.sinks = append(t.sinks, s) }
}

// WithMetrics keeps the window gauges current.
func WithMetrics(m *metrics.Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

// New creates a tracker; a non-positive windowSize selects DefaultWindowSize.
func New(searcher Searcher, windowSize int, opts ...Option) *Tracker {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	t := &Tracker{
		searcher: searcher,
		records:  make([]record, windowSize),
		logger:   logger.WithComponent("request-tracker"),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AddFindRequest runs the query and records it. Queries that fail to parse are
// returned as errors and leave the history untouched.
func (t *Tracker) AddFindRequest(ctx context.Context, raw string, rule filter.Rule) ([]ranker.ScoredDoc, error) {
	start := time.Now()
	results, err := t.searcher.FindTopDocuments(ctx, raw, rule)
	if err != nil {
		return nil, err
	}
	latency := time.Since(start)
	t.record(raw, len(results) == 0)

	if len(t.sinks) > 0 {
		ruleKey, ok := filter.OrDefault(rule).Key()
		if !ok {
			ruleKey = "custom"
		}
		event := analytics.RequestEvent{
			RequestID: logger.RequestID(ctx),
			Query:     raw,
			Rule:      ruleKey,
			Results:   len(results),
			NoResult:  len(results) == 0,
			LatencyUs: latency.Microseconds(),
			Timestamp: start.UTC(),
		}
		for _, s := range t.sinks {
			s.Track(event)
		}
	}
	return results, nil
}

func (t *Tracker) AddFindRequestByStatus(ctx context.Context, raw string, status index.Status) ([]ranker.ScoredDoc, error) {
	return t.AddFindRequest(ctx, raw, filter.Status(status))
}

// AddDefaultFindRequest searches ACTUAL documents.
func (t *Tracker) AddDefaultFindRequest(ctx context.Context, raw string) ([]ranker.ScoredDoc, error) {
	return t.AddFindRequest(ctx, raw, filter.Actual())
}

func (t *Tracker) record(query string, noResult bool) {
	t.mu.Lock()
	capacity := len(t.records)
	if t.size == capacity {
		if t.records[t.head].noResult {
			t.noResult--
		}
		t.records[t.head] = record{}
		t.head = (t.head + 1) % capacity
		t.size--
		t.evicted++
	}
	t.records[(t.head+t.size)%capacity] = record{query: query, noResult: noResult}
	t.size++
	t.total++
	if noResult {
		t.noResult++
	}
	size, empty := t.size, t.noResult
	t.mu.Unlock()

	if t.metrics != nil {
		t.metrics.TrackedRequests.Set(float64(size))
		t.metrics.NoResultRequests.Set(float64(empty))
	}
	t.logger.Debug("request recorded", "query", query, "no_result", noResult, "window", size)
}

// NoResultRequests is the number of requests in the window that found nothing.
func (t *Tracker) NoResultRequests() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.noResult
}

// Len is the number of requests currently in the window.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.size
}

// Queries returns the window contents, oldest first.
func (t *Tracker) Queries() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, t.size)
	for i := range t.size {
		out[i] = t.records[(t.head+i)%len(t.records)].query
	}
	return out
}

func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return Stats{
		WindowSize:       len(t.records),
		Requests:         t.size,
		NoResultRequests: t.noResult,
		TotalRequests:    t.total,
		Evicted:          t.evicted,
	}
}
