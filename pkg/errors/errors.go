// Package errors defines the structured error types used by the
// reconciliation engine and its CLI shell.
//
// Engine-internal conditions such as an unresolvable column or an
// unparsable cell are not errors: the rule engine degrades to "rule not
// applicable" or "row excluded" and records the fact in its run report.
// The types here cover the failures that do abort an invocation: missing
// files, malformed workbooks, invalid configuration, storage faults.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory groups errors by the subsystem that produced them.
type ErrorCategory string

const (
	CategoryFile           ErrorCategory = "file"
	CategoryParse          ErrorCategory = "parse"
	CategoryValidation     ErrorCategory = "validation"
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryStorage        ErrorCategory = "storage"
	CategoryReconciliation ErrorCategory = "reconciliation"
	CategoryInternal       ErrorCategory = "internal"
)

// ErrorCode identifies a specific failure within a category.
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCorrupted  ErrorCode = "file_corrupted"

	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeEmptySheet    ErrorCode = "empty_sheet"
	CodeMissingColumn ErrorCode = "missing_column"

	// Validation errors
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeInvalidDate   ErrorCode = "invalid_date"
	CodeMissingField  ErrorCode = "missing_field"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Storage errors
	CodeStoreUnavailable ErrorCode = "store_unavailable"
	CodeStoreQuery       ErrorCode = "store_query"

	// Reconciliation errors
	CodeProcessingError ErrorCode = "processing_error"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// ReconcilerError is the base error type for all application errors.
type ReconcilerError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context carries additional key-value information about the error.
type Context map[string]interface{}

// Error implements the error interface.
func (e *ReconcilerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error.
func (e *ReconcilerError) Unwrap() error {
	return e.Cause
}

// GetExitCode maps the error category to a process exit code.
func (e *ReconcilerError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryStorage:
		return 5
	case CategoryReconciliation, CategoryInternal:
		return 6
	default:
		return 1
	}
}

// WithContext adds a key-value pair to the error context.
func (e *ReconcilerError) WithContext(key string, value interface{}) *ReconcilerError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion attaches a remediation hint to the error.
func (e *ReconcilerError) WithSuggestion(suggestion string) *ReconcilerError {
	e.Suggestion = suggestion
	return e
}

func newError(category ErrorCategory, code ErrorCode, message string, cause error) *ReconcilerError {
	e := &ReconcilerError{
		Category: category,
		Code:     code,
		Message:  message,
		Cause:    cause,
	}

	if tracer, ok := errors.WithStack(e).(interface{ StackTrace() errors.StackTrace }); ok {
		e.StackTrace = tracer.StackTrace()
	}

	return e
}

// NewFileError creates a file-category error.
func NewFileError(code ErrorCode, message string, cause error) *ReconcilerError {
	return newError(CategoryFile, code, message, cause)
}

// NewParseError creates a parse-category error.
func NewParseError(code ErrorCode, message string, cause error) *ReconcilerError {
	return newError(CategoryParse, code, message, cause)
}

// NewValidationError creates a validation-category error.
func NewValidationError(code ErrorCode, message string, cause error) *ReconcilerError {
	return newError(CategoryValidation, code, message, cause)
}

// NewConfigError creates a configuration-category error.
func NewConfigError(code ErrorCode, message string, cause error) *ReconcilerError {
	return newError(CategoryConfiguration, code, message, cause)
}

// NewStorageError creates a storage-category error.
func NewStorageError(code ErrorCode, message string, cause error) *ReconcilerError {
	return newError(CategoryStorage, code, message, cause)
}

// NewReconciliationError creates a reconciliation-category error.
func NewReconciliationError(code ErrorCode, message string, cause error) *ReconcilerError {
	return newError(CategoryReconciliation, code, message, cause)
}

// NewInternalError creates an internal-category error.
func NewInternalError(message string, cause error) *ReconcilerError {
	return newError(CategoryInternal, CodeUnexpectedError, message, cause)
}

// AsReconcilerError extracts a *ReconcilerError from an error chain.
func AsReconcilerError(err error) (*ReconcilerError, bool) {
	for err != nil {
		if re, ok := err.(*ReconcilerError); ok {
			return re, true
		}
		unwrapper, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = unwrapper.Unwrap()
	}
	return nil, false
}

// Wrap annotates an error with a message, preserving ReconcilerError
// metadata when the cause already carries it.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	if re, ok := AsReconcilerError(err); ok {
		return newError(re.Category, re.Code, fmt.Sprintf("%s: %s", message, re.Message), err)
	}

	return errors.Wrap(err, message)
}
