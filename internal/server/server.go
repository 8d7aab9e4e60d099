// Package server exposes the search engine as a single facade: documents go in
// through AddDocument, ranked results come out of FindTopDocuments. The index,
// query parser and executor are wired here together with the optional query
// cache and Prometheus collectors.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/indexer/stopwords"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/filter"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/tracing"
)

type Options struct {
	MaxResults       int
	RelevanceEpsilon float64
	// Cache and Metrics are optional.
	Cache   *cache.QueryCache
	Metrics *metrics.Metrics
}

type SearchServer struct {
	index    *index.MemoryIndex
	parser   *parser.Parser
	executor *executor.Executor
	cache    *cache.QueryCache
	metrics  *metrics.Metrics
	logger   *slog.Logger

	// cacheScope is unique per SearchServer, so a shared cache store never
	// serves results computed over another index.
	cacheScope string
}

func New(stopWords *stopwords.Set, opts Options) *SearchServer {
	idx := index.NewMemoryIndex(stopWords)
	p := parser.New(stopWords)
	return &SearchServer{
		index:  idx,
		parser: p,
		executor: executor.New(idx, p, executor.Options{
			MaxResults:       opts.MaxResults,
			RelevanceEpsilon: opts.RelevanceEpsilon,
		}),
		cache:      opts.Cache,
		metrics:    opts.Metrics,
		logger:     logger.WithComponent("search-server"),
		cacheScope: cacheScope(stopWords, opts),
	}
}

func cacheScope(stopWords *stopwords.Set, opts Options) string {
	return fmt.Sprintf("%s|stop=%s|max=%d|eps=%g",
		uuid.NewString(),
		strings.Join(stopWords.Words(), " "),
		opts.MaxResults,
		opts.RelevanceEpsilon,
	)
}

func (s *SearchServer) AddDocument(docID int, text string, status index.Status, ratings []int) error {
	if err := s.index.AddDocument(docID, text, status, ratings); err != nil {
		if s.metrics != nil {
			s.metrics.AddFailuresTotal.WithLabelValues(addFailureReason(err)).Inc()
		}
		return err
	}
	if s.metrics != nil {
		s.metrics.DocsIndexedTotal.Inc()
		s.metrics.IndexedDocuments.Set(float64(s.index.DocumentCount()))
		s.metrics.IndexedTerms.Set(float64(s.index.Terms()))
	}
	return nil
}

// FindTopDocuments returns at most MaxResults documents accepted by rule, best
// first. A nil rule selects ACTUAL documents. Results of cacheable rules are
// served from the query cache when one is configured.
func (s *SearchServer) FindTopDocuments(ctx context.Context, raw string, rule filter.Rule) ([]ranker.ScoredDoc, error) {
	start := time.Now()
	log := logger.FromContext(ctx).With("component", "search-server")
	ctx, span := tracing.StartChildSpan(ctx, "search")
	defer span.End()

	_, parseSpan := tracing.StartChildSpan(ctx, "parse")
	query, err := s.parser.Parse(raw)
	parseSpan.End()
	if err != nil {
		s.observe(metrics.ResultError, "none", start, 0)
		log.Debug("query rejected", "query", raw, "error", err)
		return nil, err
	}
	rule = filter.OrDefault(rule)

	cacheStatus := "bypass"
	var result *executor.SearchResult
	rank := func() *executor.SearchResult {
		_, rankSpan := tracing.StartChildSpan(ctx, "rank")
		defer rankSpan.End()
		r := s.executor.Execute(query, rule)
		rankSpan.SetAttr("total_hits", r.TotalHits)
		return r
	}
	ruleKey, cacheable := rule.Key()
	if s.cache != nil && cacheable {
		key := cache.BuildKey(query, ruleKey, s.cacheScope, s.index.DocumentCount())
		var hit bool
		result, hit = s.cache.GetOrCompute(ctx, key, rank)
		cacheStatus = "miss"
		if hit {
			cacheStatus = "hit"
		}
		if s.metrics != nil {
			if hit {
				s.metrics.CacheHitsTotal.Inc()
			} else {
				s.metrics.CacheMissesTotal.Inc()
			}
		}
	} else {
		result = rank()
	}
	span.SetAttr("cache", cacheStatus)
	span.SetAttr("results", len(result.Results))

	resultType := metrics.ResultHit
	if len(result.Results) == 0 {
		resultType = metrics.ResultZeroResult
	}
	s.observe(resultType, cacheStatus, start, len(result.Results))
	log.Debug("search completed",
		"query", raw,
		"total_hits", result.TotalHits,
		"results", len(result.Results),
		"cache", cacheStatus,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return result.Results, nil
}

func (s *SearchServer) FindTopDocumentsByStatus(ctx context.Context, raw string, status index.Status) ([]ranker.ScoredDoc, error) {
	return s.FindTopDocuments(ctx, raw, filter.Status(status))
}

func (s *SearchServer) MatchDocument(raw string, docID int) ([]string, index.Status, error) {
	return s.executor.MatchDocument(raw, docID)
}

func (s *SearchServer) DocumentCount() int {
	return s.index.DocumentCount()
}

func (s *SearchServer) DocumentID(position int) (int, error) {
	return s.index.DocumentID(position)
}

// TermCount is the number of distinct indexed words.
func (s *SearchServer) TermCount() int {
	return s.index.Terms()
}

func (s *SearchServer) observe(resultType, cacheStatus string, start time.Time, results int) {
	if s.metrics == nil {
		return
	}
	s.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	if resultType == metrics.ResultError {
		return
	}
	s.metrics.SearchLatency.WithLabelValues(cacheStatus).Observe(time.Since(start).Seconds())
	s.metrics.SearchResultsCount.Observe(float64(results))
}

func addFailureReason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidID):
		return "invalid_id"
	case errors.Is(err, apperrors.ErrDuplicateID):
		return "duplicate_id"
	case errors.Is(err, apperrors.ErrInvalidWord):
		return "invalid_word"
	default:
		return "other"
	}
}
