// Package indicators provides stateless technical indicator calculations
// over chronological price series (most-recent sample last). Functions never
// mutate their input and perform no I/O, so results are fully determined by
// the arguments.
package indicators

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput flags malformed arguments: empty series, non-finite
	// samples, or nonsensical periods. Fail fast, nothing to retry.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInsufficientData flags a series shorter than the computation
	// requires. The caller can retry with more history.
	ErrInsufficientData = errors.New("insufficient data")
)

func validateSeries(series []float64) error {
	if len(series) == 0 {
		return fmt.Errorf("%w: empty price series", ErrInvalidInput)
	}
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: non-finite sample at index %d", ErrInvalidInput, i)
		}
	}
	return nil
}

func validatePeriod(name string, period int) error {
	if period < 1 {
		return fmt.Errorf("%w: %s period must be at least 1, got %d", ErrInvalidInput, name, period)
	}
	return nil
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
