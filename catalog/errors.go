package catalog

import (
	"errors"
	"fmt"
	"time"
)

// Error taxonomy. Everything raised below the store/service boundary is
// translated exactly once into one of these; callers branch on the tag via
// errors.Is / errors.As.
var (
	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict means a record with the same identity already exists.
	ErrConflict = errors.New("record already exists")

	// ErrStoreUnavailable means the document store could not be reached or
	// kept rejecting the operation after the retry budget was exhausted.
	ErrStoreUnavailable = errors.New("catalog store unavailable")

	// ErrEmbeddingFailure means the embedding gateway failed or produced no
	// vector for non-empty input.
	ErrEmbeddingFailure = errors.New("embedding failed")

	// ErrUnauthorized means the store rejected the credentials.
	ErrUnauthorized = errors.New("store credentials rejected")

	// ErrForbidden means the credentials lack permission for the operation.
	ErrForbidden = errors.New("operation not permitted")

	// ErrRateLimited means the store throttled the operation.
	ErrRateLimited = errors.New("store throughput limit reached")
)

// ValidationError reports a malformed, missing or out-of-range input field.
// It is never retried; the caller has to fix the request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalidf(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// RateLimitError is an ErrRateLimited carrying the store's retry-after hint
// when one was available. A zero RetryAfter means no hint.
type RateLimitError struct {
	RetryAfter time.Duration
	cause      error
}

// NewRateLimitError wraps a store throttling error with its retry-after hint.
func NewRateLimitError(retryAfter time.Duration, cause error) *RateLimitError {
	return &RateLimitError{RetryAfter: retryAfter, cause: cause}
}

func (e *RateLimitError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%v: %v", ErrRateLimited, e.cause)
	}
	return ErrRateLimited.Error()
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }
