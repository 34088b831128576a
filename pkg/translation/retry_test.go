package translation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		BaseDelay:       time.Millisecond,
		MaxDelay:        10 * time.Millisecond,
		ExponentialBase: 2.0,
	}
}

func TestRetryPolicyDelay(t *testing.T) {
	p := DefaultRetryPolicy()

	t.Run("retry-after wins", func(t *testing.T) {
		assert.Equal(t, 5*time.Second, p.Delay(0, 5))
	})

	t.Run("retry-after capped at max", func(t *testing.T) {
		assert.Equal(t, p.MaxDelay, p.Delay(0, 600))
	})

	t.Run("base delay grows monotonically", func(t *testing.T) {
		for attempt := 1; attempt < 6; attempt++ {
			assert.GreaterOrEqual(t, p.BaseDelayAt(attempt), p.BaseDelayAt(attempt-1))
		}
	})

	t.Run("delay never exceeds max", func(t *testing.T) {
		for attempt := 0; attempt < 20; attempt++ {
			assert.LessOrEqual(t, p.Delay(attempt, 0), p.MaxDelay)
		}
	})
}

func TestRetryPolicyExecute(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()

	t.Run("succeeds first try", func(t *testing.T) {
		calls := 0
		result, err := fastPolicy().Execute(ctx, logger, func() (string, error) {
			calls++
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 1, calls)
	})

	t.Run("retries server errors", func(t *testing.T) {
		calls := 0
		result, err := fastPolicy().Execute(ctx, logger, func() (string, error) {
			calls++
			if calls < 3 {
				return "", NewServerError("internal error", 500)
			}
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 3, calls)
	})

	t.Run("client error bails immediately", func(t *testing.T) {
		calls := 0
		_, err := fastPolicy().Execute(ctx, logger, func() (string, error) {
			calls++
			return "", NewClientError("unauthorized", 401)
		})
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("returns last error on exhaustion", func(t *testing.T) {
		p := fastPolicy()
		calls := 0
		_, err := p.Execute(ctx, logger, func() (string, error) {
			calls++
			return "", NewServerError("unavailable", 503)
		})
		require.Error(t, err)
		assert.Equal(t, p.MaxRetries+1, calls)

		var te *Error
		require.True(t, errors.As(err, &te))
		assert.Equal(t, CodeServer, te.Code)
	})

	t.Run("context cancellation aborts backoff", func(t *testing.T) {
		cctx, cancel := context.WithCancel(context.Background())
		p := RetryPolicy{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour, ExponentialBase: 2.0}

		done := make(chan error, 1)
		go func() {
			_, err := p.Execute(cctx, logger, func() (string, error) {
				return "", NewServerError("boom", 500)
			})
			done <- err
		}()

		cancel()
		select {
		case err := <-done:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(2 * time.Second):
			t.Fatal("Execute did not return after cancellation")
		}
	})
}
