package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"strings"
	"syscall"
	"time"

	"gorm.io/gorm"
)

const (
	defaultMaxAttempts = 3
	defaultBaseDelay   = time.Second
)

// WithRetry executes op, retrying transient connectivity failures with
// linear backoff (baseDelay * attempt). Structured storage rejections
// and unknown failures return immediately. On any failure the caller's
// fallback value is returned alongside the classified error, so callers
// always have something to render.
func WithRetry[T any](ctx context.Context, op func() (T, error), fallback T) (T, *StoreError) {
	return withRetry(ctx, op, fallback, defaultMaxAttempts, defaultBaseDelay)
}

func withRetry[T any](ctx context.Context, op func() (T, error), fallback T, maxAttempts int, baseDelay time.Duration) (T, *StoreError) {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		result, err := op()
		if err == nil {
			return result, nil
		}

		if storeErr := classify(err); storeErr != nil {
			return fallback, storeErr
		}

		if attempt < maxAttempts {
			if !sleep(ctx, baseDelay*time.Duration(attempt)) {
				break
			}
		}
	}

	return fallback, &StoreError{
		Code:      CodeConnection,
		Message:   "Failed to connect to database after multiple attempts",
		Retryable: true,
	}
}

// sleep waits for d unless the context ends first.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// isTransient reports whether err looks like a connectivity failure
// worth retrying: network-level errors, a poisoned pool connection, or
// an uninitialized handle.
func isTransient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, gorm.ErrInvalidDB) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	// Driver errors that wrap the root cause as text only.
	msg := err.Error()
	for _, fragment := range []string{"connection refused", "connection reset", "broken pipe", "i/o timeout", "failed to connect"} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
