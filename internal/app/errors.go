package app

import (
	"errors"
	"time"
)

// FetchError is returned when the upstream document cannot be retrieved.
// It is fatal to the run: no artifact is produced.
type FetchError string

// Error implements error interface.
func (e FetchError) Error() string {
	return string(e)
}

// IsFetchError checks if given error is caused by a failed source fetch.
func IsFetchError(err error) bool {
	var fe FetchError
	return errors.As(err, &fe)
}

// ParseFailure is returned when a non-empty document yields zero entries.
// Publishing an empty catalog silently is worse than failing loudly, so
// this is fatal.
type ParseFailure string

// Error implements error interface.
func (e ParseFailure) Error() string {
	return string(e)
}

// IsParseFailure checks if given error signals a total extraction failure.
func IsParseFailure(err error) bool {
	var pf ParseFailure
	return errors.As(err, &pf)
}

// NotFoundError is returned when the metadata API reports a repository as
// missing or moved. Non-fatal: the entry stays in the dataset with nil stars.
type NotFoundError string

// Error implements error interface.
func (e NotFoundError) Error() string {
	return string(e)
}

// IsNotFound checks if given error is caused by a missing repository.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// RateLimitError is returned when the metadata API reports the rate limit
// as exhausted. Reset is the time at which requests may resume.
type RateLimitError struct {
	Reset time.Time
}

// Error implements error interface.
func (e *RateLimitError) Error() string {
	return "rate limit exceeded, resets at " + e.Reset.UTC().Format(time.RFC3339)
}

// AsRateLimit extracts a RateLimitError from err's chain, if present.
func AsRateLimit(err error) (*RateLimitError, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl, true
	}
	return nil, false
}
