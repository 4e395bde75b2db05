package kite

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestRetrySucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := RetryWithConfig(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return &APIError{Status: http.StatusServiceUnavailable}
		}
		return nil
	}, fastRetryConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryStopsOnNonRetryableError(t *testing.T) {
	attempts := 0
	err := RetryWithConfig(context.Background(), func() error {
		attempts++
		return &APIError{Status: http.StatusForbidden, ErrorType: ErrTypeToken}
	}, fastRetryConfig())

	require.Error(t, err)
	assert.Equal(t, 1, attempts)
	assert.True(t, IsAuthError(err))
}

func TestRetryExhausted(t *testing.T) {
	attempts := 0
	err := RetryWithConfig(context.Background(), func() error {
		attempts++
		return &APIError{ErrorType: ErrTypeNetwork}
	}, fastRetryConfig())

	require.Error(t, err)
	assert.Equal(t, 4, attempts)
	assert.Contains(t, err.Error(), "retry exhausted")
	assert.True(t, IsRetryableError(err))
}

func TestRetryHonorsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	cfg := fastRetryConfig()
	cfg.InitialDelay = time.Second

	err := RetryWithConfig(ctx, func() error {
		attempts++
		cancel()
		return &APIError{ErrorType: ErrTypeNetwork}
	}, cfg)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
}

func TestDelayForGrowsAndCaps(t *testing.T) {
	cfg := RetryConfig{
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      time.Second,
		BackoffFactor: 2.0,
	}

	assert.Equal(t, 100*time.Millisecond, delayFor(0, cfg))
	assert.Equal(t, 200*time.Millisecond, delayFor(1, cfg))
	assert.Equal(t, 400*time.Millisecond, delayFor(2, cfg))
	assert.Equal(t, time.Second, delayFor(10, cfg))
}

func TestDelayForJitterStaysBounded(t *testing.T) {
	cfg := fastRetryConfig()
	cfg.Jitter = true

	for i := 0; i < 50; i++ {
		d := delayFor(1, cfg)
		assert.GreaterOrEqual(t, d, 2*time.Millisecond)
		assert.LessOrEqual(t, d, time.Duration(float64(2*time.Millisecond)*1.25))
	}
}
