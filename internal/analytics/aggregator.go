package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/kafka"
)

type AggregatedStats struct {
	TotalRequests     int64        `json:"total_requests"`
	NoResultRequests  int64        `json:"no_result_requests"`
	AvgLatencyUs      float64      `json:"avg_latency_us"`
	P50LatencyUs      int64        `json:"p50_latency_us"`
	P95LatencyUs      int64        `json:"p95_latency_us"`
	P99LatencyUs      int64        `json:"p99_latency_us"`
	TopQueries        []QueryCount `json:"top_queries"`
	NoResultQueries   []QueryCount `json:"no_result_queries"`
	RequestsPerMinute float64      `json:"requests_per_minute"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator accumulates lifetime request statistics. Unlike the tracker's
// window it never forgets, so latencies are kept in a bounded reservoir.
type Aggregator struct {
	mu              sync.RWMutex
	totalRequests   int64
	noResults       int64
	latencies       []int64
	maxLatencies    int
	queryCounts     map[string]int64
	noResultQueries map[string]int64
	startTime       time.Time
	topN            int

	logger *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:       make([]int64, 0, 1024),
		maxLatencies:    10000,
		queryCounts:     make(map[string]int64),
		noResultQueries: make(map[string]int64),
		startTime:       time.Now(),
		topN:            10,
		logger:          slog.Default().With("component", "request-aggregator"),
	}
}

// Track folds one event into the totals.
func (a *Aggregator) Track(event RequestEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalRequests++
	a.queryCounts[event.Query]++
	if event.NoResult {
		a.noResults++
		a.noResultQueries[event.Query]++
	}
	if len(a.latencies) < a.maxLatencies {
		a.latencies = append(a.latencies, event.LatencyUs)
	} else {
		a.latencies[a.totalRequests%int64(a.maxLatencies)] = event.LatencyUs
	}
}

// HandleEvent adapts the aggregator to a Kafka consumer. Undecodable messages
// are logged and skipped so they do not block the partition.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[RequestEvent](value)
		if err != nil {
			agg.logger.Error("failed to decode request event", "key", string(key), "error", err)
			return nil
		}
		agg.Track(event)
		return nil
	}
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalRequests:    a.totalRequests,
		NoResultRequests: a.noResults,
	}
	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyUs = float64(sum) / float64(len(sorted))
		stats.P50LatencyUs = percentile(sorted, 50)
		stats.P95LatencyUs = percentile(sorted, 95)
		stats.P99LatencyUs = percentile(sorted, 99)
	}
	stats.TopQueries = topN(a.queryCounts, a.topN)
	stats.NoResultQueries = topN(a.noResultQueries, a.topN)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.RequestsPerMinute = float64(stats.TotalRequests) / elapsed
	}
	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count descending, then query text for a stable listing.
func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
