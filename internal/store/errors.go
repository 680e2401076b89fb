package store

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error codes surfaced to callers. Structured storage rejections keep
// the Postgres error code instead.
const (
	CodeConnection        = "CONNECTION_ERROR"
	CodeUnknown           = "UNKNOWN_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeUnauthorized      = "UNAUTHORIZED"
	CodeValidation        = "VALIDATION_ERROR"
	CodeEventFull         = "EVENT_FULL"
	CodeAlreadyRegistered = "ALREADY_REGISTERED"
	CodeNotRegistered     = "NOT_REGISTERED"
	CodeRegistration      = "REGISTRATION_FAILED"
)

// StoreError is the uniform error shape of every data-access function.
// Retryable is true only for connectivity failures.
type StoreError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"is_retryable"`
}

func (e *StoreError) Error() string {
	return e.Message
}

func notFound(message string) *StoreError {
	return &StoreError{Code: CodeNotFound, Message: message}
}

func unauthorized(message string) *StoreError {
	return &StoreError{Code: CodeUnauthorized, Message: message}
}

func invalid(message string) *StoreError {
	return &StoreError{Code: CodeValidation, Message: message}
}

// classify sorts an operation failure into the retry taxonomy:
// domain errors pass through, well-formed Postgres rejections and
// missing rows are terminal, connectivity failures return nil so the
// caller may retry, anything else is terminal and unknown.
func classify(err error) *StoreError {
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		return storeErr
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &StoreError{Code: pgErr.Code, Message: "Database request failed"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("Record not found")
	}

	if isTransient(err) {
		return nil
	}

	return &StoreError{Code: CodeUnknown, Message: err.Error()}
}
