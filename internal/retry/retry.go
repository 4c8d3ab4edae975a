// Package retry runs an operation a fixed number of times with a
// configurable delay between attempts.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Config bounds the retry loop.
type Config struct {
	MaxAttempts int                             // total attempts, not retries after the first
	Delay       func(attempt int) time.Duration // wait before attempt n+1 given failed attempt n (1-based)
}

// Linear returns a delay function that grows by base per failed attempt:
// base after the first failure, 2*base after the second, and so on.
func Linear(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base * time.Duration(attempt)
	}
}

// Do runs fn up to cfg.MaxAttempts times, sleeping cfg.Delay(attempt)
// between attempts. It returns nil on the first success, the last error
// once attempts are exhausted, and ctx.Err if the context ends while
// waiting.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == cfg.MaxAttempts {
			break
		}

		var delay time.Duration
		if cfg.Delay != nil {
			delay = cfg.Delay(attempt)
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("canceled during retry: %w", ctx.Err())
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("after %d attempts: %w", cfg.MaxAttempts, lastErr)
}
