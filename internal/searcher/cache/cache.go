package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/internal/searcher/parser"
)

const keyPrefix = "tfidf:"

// Store is the key-value backend; *redis.Client satisfies it.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// QueryCache memoises search results. Keys embed the index generation (its
// document count), so an append makes every earlier entry unreachable and
// entries simply age out by TTL.
type QueryCache struct {
	store  Store
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

func New(store Store, ttl time.Duration) *QueryCache {
	return &QueryCache{
		store:  store,
		ttl:    ttl,
		logger: slog.Default().With("component", "query-cache"),
	}
}

func (c *QueryCache) Get(ctx context.Context, key string) (*executor.SearchResult, bool) {
	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Error("cache get failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	if !found {
		c.misses.Add(1)
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, key string, result *executor.SearchResult) {
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result for key or runs computeFn once for
// all concurrent callers. Cache failures degrade to computing.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	key string,
	computeFn func() *executor.SearchResult,
) (*executor.SearchResult, bool) {
	if result, ok := c.Get(ctx, key); ok {
		return result, true
	}
	val, _, _ := c.group.Do(key, func() (interface{}, error) {
		result := computeFn()
		c.Set(ctx, key, result)
		return result, nil
	})
	return val.(*executor.SearchResult), false
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// BuildKey derives a cache key from the parsed query, the rule key, the index
// scope and the index generation. scope identifies one in-memory index and the
// settings it ranks with; the store is shared, so entries written for another
// index must never match. Term order and duplicates in the raw text do not
// matter.
func BuildKey(query *parser.Query, ruleKey, scope string, generation int) string {
	raw := fmt.Sprintf("%s|NOT:%s|%s|scope=%s|gen=%d",
		strings.Join(query.SortedPlusTerms(), ","),
		strings.Join(query.SortedMinusTerms(), ","),
		ruleKey,
		scope,
		generation,
	)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
