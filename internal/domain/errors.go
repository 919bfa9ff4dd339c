package domain

import (
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrInternalConsistency means the fan-out results do not line up with the repository list.
	// It is a programming defect and never user facing.
	ErrInternalConsistency = goerr.New("internal consistency error")
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = goerr.New("not found")
	// ErrInvalidConfig is returned when the configuration cannot be used.
	ErrInvalidConfig = goerr.New("invalid configuration")
	// ErrInvalidData is returned when the local data file is malformed.
	ErrInvalidData = goerr.New("invalid data file")
)

// UpstreamUnavailableError is returned when the upstream API refuses to serve us,
// either because of rate limiting or a forbidden status.
type UpstreamUnavailableError struct {
	StatusCode int
}

func (e *UpstreamUnavailableError) Error() string {
	return fmt.Sprintf("upstream unavailable (status %d)", e.StatusCode)
}

// UpstreamError is any other non-success answer from the upstream API.
// StatusCode is zero when no response was received at all.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode == 0 {
		return "upstream request failed: " + e.Body
	}
	return fmt.Sprintf("upstream returned status %d: %s", e.StatusCode, e.Body)
}
