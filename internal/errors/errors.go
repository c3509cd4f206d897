package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"time"
)

// Error types for the snippet engine
type ErrorType string

const (
	// Matching errors
	ErrorTypeHighlight ErrorType = "highlight"
	ErrorTypeSearch    ErrorType = "search"

	// File errors
	ErrorTypeFileNotFound ErrorType = "file_not_found"
	ErrorTypeFileTooLarge ErrorType = "file_too_large"
	ErrorTypeBinaryFile   ErrorType = "binary_file"
	ErrorTypePermission   ErrorType = "permission"

	// Configuration errors
	ErrorTypeConfig ErrorType = "config"
)

var (
	// ErrHighlightBounds reports that a term offset computed on the lowercased
	// token does not map back onto the original token.
	ErrHighlightBounds = stderrors.New("highlight offset out of bounds")

	// ErrInvalidTunable reports a tunable that could not be parsed or is out of range.
	ErrInvalidTunable = stderrors.New("invalid tunable value")

	// ErrFileTooLarge and ErrBinaryFile are returned by the source loader.
	ErrFileTooLarge = stderrors.New("file exceeds size limit")
	ErrBinaryFile   = stderrors.New("binary file")
)

// HighlightError is raised when highlighting a token produces inconsistent offsets.
// It is always recoverable: the caller renders the line without emphasis.
type HighlightError struct {
	Type       ErrorType
	Token      string
	Term       string
	Offset     int
	Underlying error
	Timestamp  time.Time
}

// NewHighlightError creates a bounds failure for the given token and term
func NewHighlightError(token, term string, offset int) *HighlightError {
	return &HighlightError{
		Type:       ErrorTypeHighlight,
		Token:      token,
		Term:       term,
		Offset:     offset,
		Underlying: ErrHighlightBounds,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *HighlightError) Error() string {
	return fmt.Sprintf("%s of term %q in token %q at offset %d: %v", e.Type, e.Term, e.Token, e.Offset, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *HighlightError) Unwrap() error {
	return e.Underlying
}

// IsHighlightBounds reports whether err is a highlight bounds failure
func IsHighlightBounds(err error) bool {
	return stderrors.Is(err, ErrHighlightBounds)
}

// SearchError represents a search operation error
type SearchError struct {
	Type       ErrorType
	Query      string
	Underlying error
	Timestamp  time.Time
}

// NewSearchError creates a new search error
func NewSearchError(query string, err error) *SearchError {
	return &SearchError{
		Type:       ErrorTypeSearch,
		Query:      query,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed for query %q: %v", e.Query, e.Underlying)
}

// Unwrap returns the underlying error
func (e *SearchError) Unwrap() error {
	return e.Underlying
}

// FileError represents a file-related error
type FileError struct {
	Type       ErrorType
	Path       string
	Operation  string
	Underlying error
	Timestamp  time.Time
}

// NewFileError creates a new file error, classifying the underlying cause
func NewFileError(op, path string, err error) *FileError {
	return &FileError{
		Type:       classifyFileError(err),
		Path:       path,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

func classifyFileError(err error) ErrorType {
	switch {
	case stderrors.Is(err, fs.ErrPermission):
		return ErrorTypePermission
	case stderrors.Is(err, ErrFileTooLarge):
		return ErrorTypeFileTooLarge
	case stderrors.Is(err, ErrBinaryFile):
		return ErrorTypeBinaryFile
	default:
		return ErrorTypeFileNotFound
	}
}

// Error implements the error interface
func (e *FileError) Error() string {
	return fmt.Sprintf("file %s failed for %s: %v", e.Operation, e.Path, e.Underlying)
}

// Unwrap returns the underlying error
func (e *FileError) Unwrap() error {
	return e.Underlying
}

// IsSkippable reports whether the file should be silently left out of results
func (e *FileError) IsSkippable() bool {
	return e.Type == ErrorTypeBinaryFile || e.Type == ErrorTypeFileTooLarge
}

// ConfigError represents a configuration value that was rejected.
// Fallback is the value substituted for it.
type ConfigError struct {
	Type       ErrorType
	Field      string
	Value      string
	Fallback   string
	Underlying error
	Timestamp  time.Time
}

// NewConfigError creates a new config error
func NewConfigError(field, value, fallback string, err error) *ConfigError {
	return &ConfigError{
		Type:       ErrorTypeConfig,
		Field:      field,
		Value:      value,
		Fallback:   fallback,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %q, using %s): %v", e.Field, e.Value, e.Fallback, e.Underlying)
}

// Unwrap returns the underlying error
func (e *ConfigError) Unwrap() error {
	return e.Underlying
}

// MultiError represents multiple errors
type MultiError struct {
	Errors []error
}

// NewMultiError creates a new multi-error
func NewMultiError(errs []error) *MultiError {
	// Filter out nil errors
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

// Error implements the error interface
func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

// Unwrap returns all errors
func (e *MultiError) Unwrap() []error {
	return e.Errors
}

// ErrorOrNil returns nil when no errors were collected
func (e *MultiError) ErrorOrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}
