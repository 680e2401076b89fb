package store

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestWithRetrySuccess(t *testing.T) {
	got, storeErr := withRetry(context.Background(), func() (int, error) {
		return 42, nil
	}, 0, 3, time.Millisecond)
	require.Nil(t, storeErr)
	require.Equal(t, 42, got)
}

func TestWithRetryTransientThenSuccess(t *testing.T) {
	calls := 0
	got, storeErr := withRetry(context.Background(), func() (string, error) {
		calls++
		if calls < 3 {
			return "", syscall.ECONNREFUSED
		}
		return "ok", nil
	}, "fallback", 3, time.Millisecond)
	require.Nil(t, storeErr)
	require.Equal(t, "ok", got)
	require.Equal(t, 3, calls)
}

func TestWithRetryExhaustsTransientFailures(t *testing.T) {
	calls := 0
	got, storeErr := withRetry(context.Background(), func() (string, error) {
		calls++
		return "", syscall.ECONNREFUSED
	}, "fallback", 3, time.Millisecond)
	require.Equal(t, "fallback", got)
	require.Equal(t, 3, calls)
	require.Equal(t, CodeConnection, storeErr.Code)
	require.True(t, storeErr.Retryable)
}

func TestWithRetryStructuredRejectionIsImmediate(t *testing.T) {
	calls := 0
	pgErr := &pgconn.PgError{Code: "23505", Message: "duplicate key value"}
	got, storeErr := withRetry(context.Background(), func() (string, error) {
		calls++
		return "", pgErr
	}, "fallback", 3, time.Millisecond)
	require.Equal(t, "fallback", got)
	require.Equal(t, 1, calls)
	require.Equal(t, "23505", storeErr.Code)
	require.Equal(t, "Database request failed", storeErr.Message)
	require.False(t, storeErr.Retryable)
}

func TestWithRetryUnknownErrorIsImmediate(t *testing.T) {
	calls := 0
	got, storeErr := withRetry(context.Background(), func() (string, error) {
		calls++
		return "", errors.New("something odd happened")
	}, "fallback", 3, time.Millisecond)
	require.Equal(t, "fallback", got)
	require.Equal(t, 1, calls)
	require.Equal(t, CodeUnknown, storeErr.Code)
	require.Equal(t, "something odd happened", storeErr.Message)
	require.False(t, storeErr.Retryable)
}

func TestWithRetryDomainErrorPassesThrough(t *testing.T) {
	domain := &StoreError{Code: CodeEventFull, Message: "Event has reached maximum capacity"}
	got, storeErr := withRetry(context.Background(), func() (string, error) {
		return "", domain
	}, "fallback", 3, time.Millisecond)
	require.Equal(t, "fallback", got)
	require.Same(t, domain, storeErr)
}

func TestWithRetryWrappedTransientError(t *testing.T) {
	calls := 0
	wrapped := errors.New("dial tcp 127.0.0.1:5432: connection refused")
	_, storeErr := withRetry(context.Background(), func() (int, error) {
		calls++
		return 0, wrapped
	}, 0, 2, time.Millisecond)
	require.Equal(t, 2, calls)
	require.Equal(t, CodeConnection, storeErr.Code)
}

func TestWithRetryStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	_, storeErr := withRetry(ctx, func() (int, error) {
		calls++
		return 0, syscall.ECONNREFUSED
	}, 0, 3, time.Hour)
	require.Equal(t, 1, calls)
	require.Equal(t, CodeConnection, storeErr.Code)
}

func TestClassifyMissingRecord(t *testing.T) {
	storeErr := classify(fmt.Errorf("loading event: %w", gorm.ErrRecordNotFound))
	require.Equal(t, CodeNotFound, storeErr.Code)
	require.False(t, storeErr.Retryable)
}
