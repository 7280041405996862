package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    4,
		InitialBackoff: 1 * time.Millisecond,
		Multiplier:     2.0,
	}
}

func TestDoVal_SuccessOnFirstAttempt(t *testing.T) {
	var calls int
	val, err := DoVal(context.Background(), fastConfig(), func(_ context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 1, calls)
}

func TestDoVal_SuccessAfterTransientFailure(t *testing.T) {
	var calls int
	val, err := DoVal(context.Background(), fastConfig(), func(_ context.Context) (string, error) {
		calls++
		if calls < 2 {
			return "", NewTransientError(errors.New("503 service unavailable"))
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", val)
	assert.Equal(t, 2, calls)
}

func TestDoVal_NonRetryableReturnsImmediately(t *testing.T) {
	var calls int
	cfg := fastConfig()
	cfg.ShouldRetry = func(error) bool { return false }

	_, err := DoVal(context.Background(), cfg, func(_ context.Context) (string, error) {
		calls++
		return "", errors.New("taxonomy name not recognized")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoVal_ExhaustionSurfacesLastFailure(t *testing.T) {
	var calls int
	cfg := fastConfig()
	cfg.ShouldRetry = func(error) bool { return true }

	_, err := DoVal(context.Background(), cfg, func(_ context.Context) (string, error) {
		calls++
		return "", errors.New("attempt " + string(rune('0'+calls)))
	})
	require.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.Equal(t, "attempt 4", err.Error())
}

func TestDoVal_OnRetryAttemptNumbers(t *testing.T) {
	var attempts []int
	cfg := fastConfig()
	cfg.ShouldRetry = func(error) bool { return true }
	cfg.OnRetry = func(attempt int, _ error) {
		attempts = append(attempts, attempt)
	}

	_, _ = DoVal(context.Background(), cfg, func(_ context.Context) (string, error) {
		return "", errors.New("boom")
	})
	// Three sleeps for four attempts; attempt numbers are those that failed.
	assert.Equal(t, []int{1, 2, 3}, attempts)
}

func TestDoVal_ContextCancelStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	cfg := RetryConfig{
		MaxAttempts:    4,
		InitialBackoff: 50 * time.Millisecond,
		Multiplier:     2.0,
		ShouldRetry:    func(error) bool { return true },
	}

	_, err := DoVal(ctx, cfg, func(_ context.Context) (string, error) {
		calls++
		cancel()
		return "", errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestDo_WrapsDoVal(t *testing.T) {
	var calls int
	err := Do(context.Background(), fastConfig(), func(_ context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestComputeBackoff_Bounds(t *testing.T) {
	cfg := applyDefaults(DefaultRetryConfig())

	for i := 0; i < 50; i++ {
		// First retry sleeps base + uniform(0, jitter).
		d := computeBackoff(1, cfg)
		assert.GreaterOrEqual(t, d, 1*time.Second)
		assert.Less(t, d, 1500*time.Millisecond)

		// Second retry doubles the base.
		d = computeBackoff(2, cfg)
		assert.GreaterOrEqual(t, d, 2*time.Second)
		assert.Less(t, d, 2500*time.Millisecond)
	}
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(NewTransientError(errors.New("x"))))
	assert.True(t, IsTransient(errors.New("read tcp: connection reset by peer")))
	assert.False(t, IsTransient(errors.New("invalid argument")))
	assert.False(t, IsTransient(nil))
}
