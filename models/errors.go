package models

import (
	"errors"
	"fmt"
)

// Error codes carried by ScrapeError.
const (
	// ErrCodeNavigation: the page could not be reached or rendered.
	// Fails the URL.
	ErrCodeNavigation = "NAVIGATION_FAILED"

	// ErrCodeExtraction: a strategy errored or panicked. Caught per
	// strategy; the pipeline continues with the remaining ones.
	ErrCodeExtraction = "EXTRACTION_FAILED"

	// ErrCodeBlocked: the static fetch hit a 401/403 or bot-wall
	// markers. Triggers escalation to the browser engine.
	ErrCodeBlocked = "BLOCKED"

	// ErrCodeNoContacts: not a failure; the result becomes partial.
	ErrCodeNoContacts = "NO_CONTACTS"

	// ErrCodeBrowserLaunch: Chrome failed to start. Fatal for the URL
	// and the owning session, never for the whole batch.
	ErrCodeBrowserLaunch = "BROWSER_LAUNCH_FAILED"

	ErrCodeTimeout      = "SCRAPE_TIMEOUT"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ScrapeError is the internal error type carrying an error code.
// It implements the error interface and supports wrapping via Unwrap.
type ScrapeError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *ScrapeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

// NewScrapeError creates a new ScrapeError.
func NewScrapeError(code, message string, err error) *ScrapeError {
	return &ScrapeError{Code: code, Message: message, Err: err}
}

// ErrorCode extracts the code from any error, defaulting to
// INTERNAL_ERROR for errors that did not originate in the pipeline.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var se *ScrapeError
	if errors.As(err, &se) {
		return se.Code
	}
	return ErrCodeInternal
}
