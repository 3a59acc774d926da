package llm

import (
	"context"
	"errors"
	"fmt"
)

// FatalError marks a failure that must not be retried: programming errors and
// anything else that repeating the call cannot fix.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string { return fmt.Sprintf("fatal: %v", e.Err) }
func (e *FatalError) Unwrap() error { return e.Err }

// Fatal wraps err so the retry executor propagates it instead of retrying.
func Fatal(err error) error {
	return &FatalError{Err: err}
}

// IsRetryable reports whether an error from a generation call should be
// retried. Service-level failures are transient by default; fatal wrappers
// and context cancellation are not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var fe *FatalError
	if errors.As(err, &fe) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}
