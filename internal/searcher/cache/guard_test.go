package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search-server/pkg/resilience"
)

type countingStore struct {
	*memoryStore
	gets, sets int
}

func (s *countingStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.gets++
	return s.memoryStore.Get(ctx, key)
}

func (s *countingStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.sets++
	return s.memoryStore.Set(ctx, key, value, ttl)
}

func TestGuardedStore_OpenCircuitSkipsBackend(t *testing.T) {
	backend := &countingStore{memoryStore: newMemoryStore()}
	backend.getErr = errors.New("connection refused")
	breaker := resilience.NewCircuitBreaker("redis", resilience.BreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Hour,
	})
	g := NewGuardedStore(backend, breaker)
	ctx := context.Background()

	for range 2 {
		_, _, err := g.Get(ctx, "k")
		assert.Error(t, err)
	}
	require.Equal(t, resilience.StateOpen, breaker.State())

	v, found, err := g.Get(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, v)
	assert.NoError(t, g.Set(ctx, "k", []byte("x"), time.Minute))
	assert.Equal(t, 2, backend.gets)
	assert.Equal(t, 0, backend.sets)
}

func TestGuardedStore_PassesThroughWhenClosed(t *testing.T) {
	backend := &countingStore{memoryStore: newMemoryStore()}
	g := NewGuardedStore(backend, resilience.NewCircuitBreaker("redis", resilience.BreakerConfig{}))
	ctx := context.Background()

	require.NoError(t, g.Set(ctx, "k", []byte("v"), time.Minute))
	v, found, err := g.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)
	assert.Equal(t, time.Minute, backend.ttls["k"])
}
