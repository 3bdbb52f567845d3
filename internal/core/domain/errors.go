package domain

import (
	"context"
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// ErrMixedOriginSuggestions indicates a batch select was given
	// suggestions produced by different search requests.
	ErrMixedOriginSuggestions = errors.New("suggestions do not share the same originating request")

	// ErrUnsupportedSuggestion indicates a suggestion variant the operation cannot resolve.
	ErrUnsupportedSuggestion = errors.New("unsupported suggestion type")

	// ErrEngineClosed indicates the engine has been shut down.
	ErrEngineClosed = errors.New("engine closed")

	// Backend Errors.

	// ErrNetwork indicates a transport-level failure talking to the backend.
	ErrNetwork = errors.New("network error")

	// ErrMalformedResponse indicates the backend answered with a body
	// the client could not interpret.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrAuthRequired indicates no access token is configured.
	ErrAuthRequired = errors.New("access token required")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrBackendUnavailable indicates no backend is configured.
	// Only local records can be searched.
	ErrBackendUnavailable = errors.New("search backend unavailable")
)

// RequestError is an HTTP-level failure returned by the backend.
type RequestError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *RequestError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return fmt.Sprintf("request failed with status %d: %s", e.StatusCode, e.Message)
}

// CancellationReason explains why a request was cancelled.
type CancellationReason string

// Cancellation reasons.
const (
	// CancellationReasonUser means the caller cancelled the task.
	CancellationReasonUser CancellationReason = "cancelled by user"

	// CancellationReasonDebounce means a newer request superseded this
	// one within its debounce window.
	CancellationReasonDebounce CancellationReason = "superseded by a newer request within the debounce window"

	// CancellationReasonShutdown means the engine was closed.
	CancellationReasonShutdown CancellationReason = "engine shut down"
)

// CancellationError reports that a request was cancelled rather than failed.
type CancellationError struct {
	Reason CancellationReason
}

func (e *CancellationError) Error() string {
	return "request cancelled: " + string(e.Reason)
}

// Is makes every CancellationError match context.Canceled.
func (e *CancellationError) Is(target error) bool {
	return target == context.Canceled
}

// IsCancelled reports whether err is a cancellation, not a failure.
func IsCancelled(err error) bool {
	var cancelErr *CancellationError
	if errors.As(err, &cancelErr) {
		return true
	}
	return errors.Is(err, context.Canceled)
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode == 404
	}
	return errors.Is(err, ErrNotFound)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode == 401 || reqErr.StatusCode == 403
	}
	return errors.Is(err, ErrAuthRequired)
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode == 429
	}
	return errors.Is(err, ErrRateLimited)
}

// IsRetryable reports whether a request may succeed when repeated.
func IsRetryable(err error) bool {
	if err == nil || IsCancelled(err) {
		return false
	}
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode >= 500
	}
	return errors.Is(err, ErrNetwork)
}
