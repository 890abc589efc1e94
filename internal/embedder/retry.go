package embedder

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy describes bounded retries with exponentially increasing waits
// for calls to the embedding backend.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// DefaultRetryPolicy returns the retry policy applied to backend calls when
// none is configured: 3 attempts, the wait doubling after each failure.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   500 * time.Millisecond,
		Multiplier:  2.0,
	}
}

// Do runs fn until it succeeds, the attempts are exhausted, or the context is
// cancelled. Exhausted attempts surface as ErrUnavailable wrapping the last
// failure.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	multiplier := p.Multiplier
	if multiplier <= 1 {
		multiplier = 2.0
	}

	delay := p.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * multiplier)
	}

	return fmt.Errorf("%w after %d attempts: %v", ErrUnavailable, attempts, lastErr)
}
