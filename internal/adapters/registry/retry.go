package registry

import (
	"context"
	"errors"
	"time"
)

// retryableError marks a failure worth another attempt (transport errors, 5xx responses).
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

func retryable(err error) error {
	return &retryableError{err: err}
}

// retry runs fn up to attempts times, doubling delay after every retryable failure.
// Non-retryable errors are returned immediately. The last error is returned unwrapped.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func(attempt int) error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn(i + 1)
		if err == nil {
			return nil
		}
		var re *retryableError
		if !errors.As(err, &re) {
			return err
		}
		lastErr = re.err

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return lastErr
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}
