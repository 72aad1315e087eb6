package search

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTerms is returned when a request carries no search terms.
	ErrNoTerms = errors.New("at least one search term is required")

	// ErrEmptyTerm is returned when a search term is empty or whitespace only.
	ErrEmptyTerm = errors.New("search terms must not be empty")

	// ErrConflictingModes is returned when regex and fuzzy matching are both requested.
	ErrConflictingModes = errors.New("regex and fuzzy matching are mutually exclusive")

	// ErrInvalidThreshold is returned when the fuzzy threshold is outside 0-100.
	ErrInvalidThreshold = errors.New("fuzzy threshold must be between 0 and 100")

	// ErrInvalidContextWindow is returned for a negative context window.
	ErrInvalidContextWindow = errors.New("context window must not be negative")

	// ErrInvalidWorkerCount is returned when the worker count is not a positive integer.
	ErrInvalidWorkerCount = errors.New("worker count must be a positive integer")

	// ErrCoordinatorBusy is returned when Run is called while another run is in progress.
	ErrCoordinatorBusy = errors.New("coordinator is already running")

	// ErrUnsupportedFormat is returned when a single file argument has an unsupported extension.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrPathNotFound is returned when the search path does not exist.
	ErrPathNotFound = errors.New("path does not exist")
)

// ExtractionError reports a document that could not be read or parsed.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Path, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// PatternCompileError reports a search term that is not a valid regular expression.
type PatternCompileError struct {
	Term string
	Err  error
}

func (e *PatternCompileError) Error() string {
	return fmt.Sprintf("invalid regular expression %q: %v", e.Term, e.Err)
}

func (e *PatternCompileError) Unwrap() error { return e.Err }

// ConfigurationError reports an invalid request or coordinator setting.
// It is always detected before any document is dispatched.
type ConfigurationError struct {
	Field string
	Err   error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration (%s): %v", e.Field, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

func configError(field string, err error) error {
	return &ConfigurationError{Field: field, Err: err}
}
