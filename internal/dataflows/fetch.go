package dataflows

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	fetchAttempts  = 3
	fetchBaseDelay = time.Second
	// Rate-limited sources get a long fixed wait instead of backoff.
	rateLimitDelay = 60 * time.Second
)

// rateLimitErr marks an HTTP 429 so the retry loop can apply the long wait.
type rateLimitErr struct {
	source string
}

func (e *rateLimitErr) Error() string {
	return fmt.Sprintf("%s rate limited (429)", e.source)
}

func statusErr(source string, code int, body string) error {
	if code == http.StatusTooManyRequests {
		return &rateLimitErr{source: source}
	}
	return fmt.Errorf("%s returned HTTP %d: %s", source, code, body)
}

// withRetry runs fn up to fetchAttempts times with doubling delay, except
// rate-limit errors which wait rateLimitDelay. Context cancellation stops
// the loop immediately.
func withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	delay := fetchBaseDelay

	for attempt := 1; attempt <= fetchAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == fetchAttempts {
			break
		}

		wait := delay
		var rl *rateLimitErr
		if errors.As(lastErr, &rl) {
			wait = rateLimitDelay
		} else {
			delay *= 2
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return fmt.Errorf("all %d attempts failed: %w", fetchAttempts, lastErr)
}
