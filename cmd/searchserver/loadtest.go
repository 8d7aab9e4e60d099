package main

import (
	"context"
	"fmt"
	"io"
	"math"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/analytics/tracker"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/stopwords"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/filter"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/server"
)

var (
	loadDocs        int
	loadConcurrency int
	loadDuration    time.Duration
	loadSeed        int64
)

var loadtestCmd = &cobra.Command{
	Use:   "loadtest",
	Short: "Index a synthetic corpus and run concurrent searches against it",
	Args:  cobra.NoArgs,
	RunE:  runLoadtest,
}

func init() {
	loadtestCmd.Flags().IntVar(&loadDocs, "docs", 10000, "number of synthetic documents")
	loadtestCmd.Flags().IntVar(&loadConcurrency, "concurrency", 8, "number of concurrent searchers")
	loadtestCmd.Flags().DurationVar(&loadDuration, "duration", 10*time.Second, "test duration")
	loadtestCmd.Flags().Int64Var(&loadSeed, "seed", 1, "corpus random seed")
	rootCmd.AddCommand(loadtestCmd)
}

var vocabulary = strings.Fields(`cat dog fluffy groomed collar tail eyes starling
park garden curly white fancy expressive big small sparrow river stone tree
house window yellow green quiet loud morning evening`)

var loadQueries = []string{
	"fluffy cat",
	"groomed dog -collar",
	"curly tail",
	"big sparrow -river",
	"white fancy collar",
	"quiet morning garden",
	"unicorn",
	"stone -tree",
}

type loadStats struct {
	total     atomic.Int64
	errors    atomic.Int64
	noResults atomic.Int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (s *loadStats) record(d time.Duration, results int, err error) {
	s.total.Add(1)
	if err != nil {
		s.errors.Add(1)
		return
	}
	if results == 0 {
		s.noResults.Add(1)
	}
	s.mu.Lock()
	s.latencies = append(s.latencies, d)
	s.mu.Unlock()
}

func runLoadtest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	stopWords, err := stopwords.New(cfg.StopWords.All())
	if err != nil {
		return fmt.Errorf("building stop words: %w", err)
	}
	srv := server.New(stopWords, server.Options{
		MaxResults:       cfg.Engine.MaxResults,
		RelevanceEpsilon: cfg.Engine.RelevanceEpsilon,
	})
	tr := tracker.New(srv, cfg.Tracker.WindowSize)

	out := cmd.OutOrStdout()
	indexStart := time.Now()
	if err := loadCorpus(srv, loadDocs, loadSeed); err != nil {
		return err
	}
	fmt.Fprintln(out, "=== Search Server Load Test ===")
	fmt.Fprintf(out, "Documents:   %d (indexed in %s)\n", srv.DocumentCount(), time.Since(indexStart).Round(time.Millisecond))
	fmt.Fprintf(out, "Concurrency: %d\n", loadConcurrency)
	fmt.Fprintf(out, "Duration:    %s\n", loadDuration)
	fmt.Fprintln(out)

	stats := runSearchers(cmd.Context(), tr, max(loadConcurrency, 1), loadDuration)
	printLoadReport(out, stats, loadDuration, tr.Stats())
	return nil
}

// loadCorpus adds docs documents of 5 to 15 vocabulary words with statuses
// spread over all four values.
func loadCorpus(srv *server.SearchServer, docs int, seed int64) error {
	rng := rand.New(rand.NewSource(seed))
	words := make([]string, 0, 16)
	for id := 0; id < docs; id++ {
		words = words[:0]
		for n := 5 + rng.Intn(11); n > 0; n-- {
			words = append(words, vocabulary[rng.Intn(len(vocabulary))])
		}
		ratings := []int{rng.Intn(21) - 10, rng.Intn(21) - 10}
		status := index.AllStatuses[rng.Intn(len(index.AllStatuses))]
		if err := srv.AddDocument(id, strings.Join(words, " "), status, ratings); err != nil {
			return fmt.Errorf("adding synthetic document %d: %w", id, err)
		}
	}
	return nil
}

func runSearchers(ctx context.Context, tr *tracker.Tracker, concurrency int, duration time.Duration) *loadStats {
	stats := &loadStats{latencies: make([]time.Duration, 0, 100000)}
	ctx, cancel := context.WithTimeout(ctx, duration)
	defer cancel()

	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			queryIdx := workerID
			for ctx.Err() == nil {
				query := loadQueries[queryIdx%len(loadQueries)]
				queryIdx++
				start := time.Now()
				docs, err := tr.AddFindRequest(ctx, query, filter.Actual())
				stats.record(time.Since(start), len(docs), err)
			}
		}(w)
	}
	wg.Wait()
	return stats
}

func printLoadReport(out io.Writer, stats *loadStats, duration time.Duration, window tracker.Stats) {
	total := stats.total.Load()
	fmt.Fprintln(out, "=== Results ===")
	fmt.Fprintf(out, "Total Requests:  %d\n", total)
	fmt.Fprintf(out, "Errors:          %d\n", stats.errors.Load())
	fmt.Fprintf(out, "No Results:      %d\n", stats.noResults.Load())
	if total > 0 {
		fmt.Fprintf(out, "Requests/sec:    %.2f\n", float64(total)/duration.Seconds())
	}
	fmt.Fprintf(out, "Window:          %d/%d requests, %d without results\n",
		window.Requests, window.WindowSize, window.NoResultRequests)

	stats.mu.Lock()
	latencies := make([]time.Duration, len(stats.latencies))
	copy(latencies, stats.latencies)
	stats.mu.Unlock()
	if len(latencies) == 0 {
		return
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== Latency ===")
	fmt.Fprintf(out, "Min:    %s\n", latencies[0])
	fmt.Fprintf(out, "Avg:    %s\n", sum/time.Duration(len(latencies)))
	fmt.Fprintf(out, "P50:    %s\n", percentile(latencies, 50))
	fmt.Fprintf(out, "P95:    %s\n", percentile(latencies, 95))
	fmt.Fprintf(out, "P99:    %s\n", percentile(latencies, 99))
	fmt.Fprintf(out, "Max:    %s\n", latencies[len(latencies)-1])
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Ceil(p/100*float64(len(sorted)))) - 1
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}
