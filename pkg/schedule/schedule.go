// Package schedule stretches nominal per-slide durations so the deck exactly
// covers the narration audio.
package schedule

import (
	"errors"
	"fmt"
)

// ErrInvalidDurations is returned when the nominal durations cannot be scaled
// (empty deck or zero total duration).
var ErrInvalidDurations = errors.New("total nominal duration must be positive")

// Fit scales each nominal duration by targetTotal/sum(nominal) so the result
// sums to targetTotal while pairwise ratios are preserved. Callers must
// guarantee at least one positive nominal duration; otherwise Fit fails
// rather than producing NaN or Inf entries.
func Fit(nominal []float64, targetTotal float64) ([]float64, error) {
	if targetTotal <= 0 {
		return nil, fmt.Errorf("target total %v: %w", targetTotal, ErrInvalidDurations)
	}

	var sum float64
	for _, d := range nominal {
		sum += d
	}
	if sum <= 0 {
		return nil, fmt.Errorf("nominal sum %v: %w", sum, ErrInvalidDurations)
	}

	multiplier := targetTotal / sum
	out := make([]float64, len(nominal))
	for i, d := range nominal {
		out[i] = d * multiplier
	}
	return out, nil
}
