package shazam

import (
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

// HTTPError carries the status of a failed recognition request.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// isRetryableHTTPError reports whether the request may succeed on retry.
func isRetryableHTTPError(err error) bool {
	for err != nil {
		if httpErr, ok := err.(*HTTPError); ok {
			switch httpErr.StatusCode {
			case http.StatusServiceUnavailable,
				http.StatusTooManyRequests,
				http.StatusBadGateway,
				http.StatusGatewayTimeout:
				return true
			}
		}
		if unwrapped, ok := err.(interface{ Unwrap() error }); ok {
			err = unwrapped.Unwrap()
		} else {
			break
		}
	}
	return false
}

// retryWithBackoff retries fn with exponential backoff and jitter,
// stopping early on non-retryable errors.
func retryWithBackoff(maxRetries int, initialDelay, maxDelay time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isRetryableHTTPError(lastErr) {
			return lastErr
		}
		if attempt == maxRetries-1 {
			break
		}

		delay := initialDelay * time.Duration(1<<uint(attempt))
		if delay > maxDelay {
			delay = maxDelay
		}
		jitter := time.Duration(rand.Int63n(int64(delay/2))) - delay/4
		if delay+jitter > 0 {
			delay += jitter
		}
		time.Sleep(delay)
	}
	return fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}
