// Package retry runs an operation with exponential backoff.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultConfig gives up after five attempts, about fifteen seconds in total.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   5,
		InitialDelay:  500 * time.Millisecond,
		MaxDelay:      8 * time.Second,
		BackoffFactor: 2.0,
	}
}

// Notify is called after every failed attempt that will be retried.
type Notify func(attempt int, err error, nextDelay time.Duration)

// Do calls fn until it succeeds, the attempts run out or ctx is done.
// notify may be nil.
func Do(ctx context.Context, cfg Config, fn func(ctx context.Context) error, notify Notify) error {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		if notify != nil {
			notify(attempt, lastErr, delay)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry aborted after %d attempts: %w (last error: %v)", attempt, ctx.Err(), lastErr)
		case <-timer.C:
		}

		delay = time.Duration(float64(delay) * cfg.BackoffFactor)
		if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
			delay = cfg.MaxDelay
		}
	}

	return fmt.Errorf("max retry attempts (%d) exceeded: %w", cfg.MaxAttempts, lastErr)
}
