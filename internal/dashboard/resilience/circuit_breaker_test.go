package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notesflow/internal/dashboard/resilience"
)

var errBackend = errors.New("backend down")

func failing(context.Context) error { return errBackend }

func succeeding(context.Context) error { return nil }

func newBreaker(cfg resilience.CircuitBreakerConfig) *resilience.CircuitBreaker {
	return resilience.NewCircuitBreaker("notes-backend", cfg)
}

func TestCircuitBreaker(t *testing.T) {
	ctx := context.Background()

	t.Run("trips after error threshold", func(t *testing.T) {
		cb := newBreaker(resilience.CircuitBreakerConfig{ErrorThreshold: 2, Timeout: time.Hour, SuccessThreshold: 1})

		assert.ErrorIs(t, cb.Execute(ctx, failing), errBackend)
		assert.Equal(t, resilience.StateClosed, cb.GetState())
		assert.ErrorIs(t, cb.Execute(ctx, failing), errBackend)
		assert.Equal(t, resilience.StateOpen, cb.GetState())

		called := false
		err := cb.Execute(ctx, func(context.Context) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
		assert.False(t, called)
	})

	t.Run("success resets failure counter", func(t *testing.T) {
		cb := newBreaker(resilience.CircuitBreakerConfig{ErrorThreshold: 2, Timeout: time.Hour, SuccessThreshold: 1})

		_ = cb.Execute(ctx, failing)
		require.NoError(t, cb.Execute(ctx, succeeding))
		_ = cb.Execute(ctx, failing)

		assert.Equal(t, resilience.StateClosed, cb.GetState())
	})

	t.Run("half open trial closes breaker", func(t *testing.T) {
		cb := newBreaker(resilience.CircuitBreakerConfig{ErrorThreshold: 1, Timeout: 10 * time.Millisecond, SuccessThreshold: 2})

		_ = cb.Execute(ctx, failing)
		require.Equal(t, resilience.StateOpen, cb.GetState())

		time.Sleep(20 * time.Millisecond)

		require.NoError(t, cb.Execute(ctx, succeeding))
		assert.Equal(t, resilience.StateHalfOpen, cb.GetState())
		require.NoError(t, cb.Execute(ctx, succeeding))
		assert.Equal(t, resilience.StateClosed, cb.GetState())
	})

	t.Run("half open failure reopens breaker", func(t *testing.T) {
		cb := newBreaker(resilience.CircuitBreakerConfig{ErrorThreshold: 1, Timeout: 10 * time.Millisecond, SuccessThreshold: 2})

		_ = cb.Execute(ctx, failing)
		time.Sleep(20 * time.Millisecond)

		assert.ErrorIs(t, cb.Execute(ctx, failing), errBackend)
		assert.Equal(t, resilience.StateOpen, cb.GetState())
	})

	t.Run("ignored errors do not count as failures", func(t *testing.T) {
		errDenied := errors.New("permission denied")
		cfg := resilience.CircuitBreakerConfig{
			ErrorThreshold:   1,
			Timeout:          time.Hour,
			SuccessThreshold: 1,
			IsFailure:        func(err error) bool { return !errors.Is(err, errDenied) },
		}
		cb := newBreaker(cfg)

		err := cb.Execute(ctx, func(context.Context) error { return errDenied })

		assert.ErrorIs(t, err, errDenied)
		assert.Equal(t, resilience.StateClosed, cb.GetState())
	})

	t.Run("default config", func(t *testing.T) {
		cfg := resilience.DefaultCircuitBreakerConfig()

		assert.Equal(t, 5, cfg.ErrorThreshold)
		assert.Equal(t, 10*time.Second, cfg.Timeout)
		assert.Equal(t, 2, cfg.SuccessThreshold)
		assert.Equal(t, "open", resilience.StateOpen.String())
	})
}
