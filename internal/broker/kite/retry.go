package kite

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// RetryConfig controls the bounded exponential backoff applied to
// retryable API failures.
type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	Jitter        bool
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Second,
		MaxDelay:      time.Minute,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

// RetryableFunc is one attempt of an operation.
type RetryableFunc func() error

// Retry runs fn, retrying retryable errors with the default backoff.
func Retry(ctx context.Context, fn RetryableFunc) error {
	return RetryWithConfig(ctx, fn, DefaultRetryConfig())
}

// RetryWithConfig runs fn under the given retry policy. Auth and input
// errors abort immediately; only errors IsRetryableError accepts are
// retried. Context cancellation wins over any pending delay.
func RetryWithConfig(ctx context.Context, fn RetryableFunc, cfg RetryConfig) error {
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == cfg.MaxRetries || !IsRetryableError(err) {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delayFor(attempt, cfg)):
		}
	}

	if lastErr != nil && IsRetryableError(lastErr) {
		return fmt.Errorf("retry exhausted: %w", lastErr)
	}
	return lastErr
}

func delayFor(attempt int, cfg RetryConfig) time.Duration {
	delay := float64(cfg.InitialDelay) * math.Pow(cfg.BackoffFactor, float64(attempt))
	if delay > float64(cfg.MaxDelay) {
		delay = float64(cfg.MaxDelay)
	}
	if cfg.Jitter {
		// Up to 25% random spread keeps simultaneous clients from
		// hammering the API in lockstep.
		delay += delay * 0.25 * rand.Float64()
	}
	return time.Duration(delay)
}
