package cache

import (
	"context"
	"errors"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/resilience"
)

// GuardedStore routes Store calls through a circuit breaker. While the
// circuit is open reads report a miss and writes are dropped, so an
// unreachable backend costs nothing on the search path.
type GuardedStore struct {
	next    Store
	breaker *resilience.CircuitBreaker
}

func NewGuardedStore(next Store, breaker *resilience.CircuitBreaker) *GuardedStore {
	return &GuardedStore{next: next, breaker: breaker}
}

func (g *GuardedStore) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := g.breaker.Execute(func() error {
		var err error
		value, found, err = g.next.Get(ctx, key)
		return err
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return "", false, nil
	}
	return value, found, err
}

func (g *GuardedStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := g.breaker.Execute(func() error {
		return g.next.Set(ctx, key, value, ttl)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil
	}
	return err
}
