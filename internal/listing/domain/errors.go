package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMissingAPIKey   = errors.New("vision model API key is not configured")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrUserNotFound    = errors.New("user not found")
	ErrListingNotFound = errors.New("listing not found")
	ErrNoValidImages   = errors.New("no valid images were uploaded")
	ErrRequestBlocked  = errors.New("request blocked")
	ErrMalformedReply  = errors.New("failed to parse model reply")
)

// ValidationError reports a model reply or caller input that failed the
// structural checks. Missing lists absent required fields; Reason covers
// everything else (bad enum value, unparseable JSON).
type ValidationError struct {
	Missing []string
	Reason  string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) > 0 {
		return "response missing required fields: " + strings.Join(e.Missing, ", ")
	}
	return "validation failed: " + e.Reason
}

// UpstreamError wraps a failed call to an external collaborator (vision
// model, object storage, database). Safe for the caller to retry with
// backoff. Status carries the upstream HTTP status when one exists.
type UpstreamError struct {
	Service string
	Status  int
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s call failed with status %d: %v", e.Service, e.Status, e.Err)
	}
	return fmt.Sprintf("%s call failed: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// RateLimitError is a deny from the rate-decision service with enough
// metadata for a friendly "try again later" message.
type RateLimitError struct {
	Remaining int64
	ResetIn   time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded, retry in %s", e.ResetIn)
}
