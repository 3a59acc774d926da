package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Sleeper pauses between retry attempts. Tests inject a recording
// implementation; production code uses SleepContext.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext sleeps for d or until the context is cancelled.
func SleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunWithRetry runs op up to maxAttempts times, doubling the delay between
// attempts starting from initialDelay (1s, 2s, 4s with the defaults). Only
// retryable errors are retried; fatal and context errors abort immediately.
// There is no cap on the total elapsed wait beyond the context itself.
func RunWithRetry[T any](ctx context.Context, log zerolog.Logger, op func(context.Context) (T, error), maxAttempts int, initialDelay time.Duration, sleep Sleeper) (T, error) {
	var zero T
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if sleep == nil {
		sleep = SleepContext
	}

	delay := initialDelay
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !IsRetryable(err) {
			return zero, fmt.Errorf("non-retryable failure on attempt %d: %w", attempt, err)
		}

		msg := "call failed, retrying"
		if attempt == maxAttempts {
			msg = "call failed, attempts exhausted"
		}
		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Int("max_attempts", maxAttempts).
			Dur("delay", delay).
			Msg(msg)

		if err := sleep(ctx, delay); err != nil {
			return zero, fmt.Errorf("retry aborted: %w", err)
		}
		delay *= 2
	}

	return zero, fmt.Errorf("all %d attempts failed: %w", maxAttempts, lastErr)
}
