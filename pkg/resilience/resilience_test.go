package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBackend = errors.New("backend down")

func TestCircuitBreaker_OpensAndRecovers(t *testing.T) {
	now := time.Unix(0, 0)
	var changes []State
	cb := NewCircuitBreaker("redis", BreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Second,
		OnStateChange:    func(_ string, _, to State) { changes = append(changes, to) },
	})
	cb.now = func() time.Time { return now }

	fail := func() error { return errBackend }
	ok := func() error { return nil }

	assert.ErrorIs(t, cb.Execute(fail), errBackend)
	assert.Equal(t, StateClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(fail), errBackend)
	assert.Equal(t, StateOpen, cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)

	now = now.Add(time.Second)
	require.NoError(t, cb.Execute(ok))
	assert.Equal(t, StateClosed, cb.State())
	assert.Equal(t, []State{StateOpen, StateHalfOpen, StateClosed}, changes)
}

func TestCircuitBreaker_FailedProbeReopens(t *testing.T) {
	now := time.Unix(0, 0)
	cb := NewCircuitBreaker("pg", BreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute})
	cb.now = func() time.Time { return now }

	_ = cb.Execute(func() error { return errBackend })
	require.Equal(t, StateOpen, cb.State())

	now = now.Add(time.Minute)
	assert.ErrorIs(t, cb.Execute(func() error { return errBackend }), errBackend)
	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return nil }), ErrCircuitOpen)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker("x", BreakerConfig{FailureThreshold: 2})
	_ = cb.Execute(func() error { return errBackend })
	_ = cb.Execute(func() error { return nil })
	_ = cb.Execute(func() error { return errBackend })
	assert.Equal(t, StateClosed, cb.State())
}

func TestRetry(t *testing.T) {
	cfg := RetryConfig{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), "op", cfg, func(context.Context) error {
			calls++
			if calls < 3 {
				return errBackend
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), "op", cfg, func(context.Context) error {
			calls++
			return errBackend
		})
		assert.ErrorIs(t, err, errBackend)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent stops immediately", func(t *testing.T) {
		calls := 0
		err := Retry(context.Background(), "op", cfg, func(context.Context) error {
			calls++
			return Permanent(errBackend)
		})
		assert.ErrorIs(t, err, errBackend)
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := Retry(ctx, "op", RetryConfig{MaxAttempts: 5, InitialDelay: time.Hour}, func(context.Context) error {
			return errBackend
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
