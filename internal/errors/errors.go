package errors

import (
	"fmt"
)

// SearchError is the structured error type for nabsearch.
// Only validation errors cross the pipeline boundary; infrastructure
// failures are degraded locally and logged, never returned to callers.
type SearchError struct {
	// Code is the unique error code (e.g., "ERR_401_BLANK_QUERY").
	Code string

	// Message is the human-readable error message.
	Message string

	// Category is the error category (Config, Store, Network, ...).
	Category Category

	// Cause is the underlying error, if any.
	Cause error

	// Retryable indicates if the operation can be retried by the caller.
	Retryable bool
}

// Error implements the error interface.
func (e *SearchError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SearchError) Unwrap() error {
	return e.Cause
}

// Is checks if this error matches the target error by code.
func (e *SearchError) Is(target error) bool {
	if t, ok := target.(*SearchError); ok {
		return e.Code == t.Code
	}
	return false
}

// New creates a new SearchError with the given code and message.
// Category and retryable flag are derived from the code.
func New(code string, message string, cause error) *SearchError {
	return &SearchError{
		Code:      code,
		Message:   message,
		Category:  categoryFromCode(code),
		Cause:     cause,
		Retryable: isRetryableCode(code),
	}
}

// Wrap creates a SearchError from an existing error.
func Wrap(code string, err error) *SearchError {
	if err == nil {
		return nil
	}
	return New(code, err.Error(), err)
}

// BlankQuery creates the invalid-input error for a blank or empty query.
func BlankQuery() *SearchError {
	return New(ErrCodeBlankQuery, "query must not be blank", nil)
}

// InvalidTopK creates the invalid-input error for a non-positive topK.
func InvalidTopK(topK int) *SearchError {
	return New(ErrCodeInvalidTopK, fmt.Sprintf("topK must be >= 1, got %d", topK), nil)
}

// IsValidation reports whether err is a validation-category SearchError.
func IsValidation(err error) bool {
	se, ok := err.(*SearchError)
	return ok && se.Category == CategoryValidation
}
