package utils

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrPermanent marks an error that must not be retried.
// Wrap it with fmt.Errorf("...: %w", ErrPermanent) to stop Retry early.
var ErrPermanent = errors.New("permanent failure")

// maxShift caps the backoff exponent to keep the shift within int64
const maxShift = 62

// RetryConfig bounds a retry loop
type RetryConfig struct {
	Attempts  int           // Total attempts including the first one
	BaseDelay time.Duration // Delay before the second attempt, doubled afterwards
}

// Backoff returns the delay before retry number attempt (0-based): base * 2^attempt,
// saturating instead of overflowing
func Backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	} else if attempt > maxShift {
		attempt = maxShift
	}

	multiplier := int64(1) << attempt
	if int64(base) > math.MaxInt64/multiplier {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(int64(base) * multiplier)
}

// Retry calls fn until it succeeds, the attempts are exhausted, fn returns an
// ErrPermanent error or ctx is done. Sleeps between attempts respect ctx.
func Retry[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	attempts := cfg.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				err = errors.Join(lastErr, err)
			}
			return zero, fmt.Errorf("aborted after %d attempt(s): %w", attempt, err)
		}

		result, err := fn(ctx, attempt)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if errors.Is(err, ErrPermanent) {
			return zero, fmt.Errorf("gave up after %d attempt(s): %w", attempt+1, err)
		}
		if attempt == attempts-1 {
			break
		}

		if err := sleepWithContext(ctx, Backoff(cfg.BaseDelay, attempt)); err != nil {
			return zero, fmt.Errorf("aborted after %d attempt(s): %w", attempt+1, errors.Join(lastErr, err))
		}
	}

	return zero, fmt.Errorf("gave up after %d attempt(s): %w", attempts, lastErr)
}

// sleepWithContext sleeps for d unless ctx is done first
func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
