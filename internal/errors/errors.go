package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of a wrapped AppError
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain, or "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether err carries the given code
func HasCode(err error, code string) bool {
	return GetCode(err) == code
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"

	// Pipeline failures
	CodeSheetNotFound   = "SHEET_NOT_FOUND"
	CodeParseError      = "PARSE_ERROR"
	CodeSchemaError     = "SCHEMA_ERROR"
	CodeEmptyInput      = "EMPTY_INPUT"
	CodeProcessingError = "PROCESSING_ERROR"
)

// SheetNotFoundError is the cause carried by a SHEET_NOT_FOUND AppError.
type SheetNotFoundError struct {
	Sheet     string
	Available []string
}

func (e *SheetNotFoundError) Error() string {
	return fmt.Sprintf("sheet %q not found (available: %s)", e.Sheet, strings.Join(e.Available, ", "))
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

// SheetNotFound reports a worksheet missing from a workbook
func SheetNotFound(sheet string, available []string) *AppError {
	names := make([]string, len(available))
	copy(names, available)
	return &AppError{
		Code:    CodeSheetNotFound,
		Message: fmt.Sprintf("sheet '%s' not found in the uploaded file", sheet),
		Cause:   &SheetNotFoundError{Sheet: sheet, Available: names},
	}
}

// ParseError reports an unreadable or malformed workbook
func ParseError(stage string, cause error) *AppError {
	return &AppError{
		Code:    CodeParseError,
		Message: fmt.Sprintf("%s: workbook could not be read", stage),
		Cause:   cause,
	}
}

// SchemaError reports expected columns missing from the header row
func SchemaError(missing []string) *AppError {
	return New(CodeSchemaError, fmt.Sprintf("missing expected columns: %s", strings.Join(missing, ", ")))
}

// EmptyInput reports a table with no data rows
func EmptyInput(message string) *AppError {
	return New(CodeEmptyInput, message)
}

// ProcessingError wraps an unexpected failure of a pipeline stage
func ProcessingError(stage string, cause error) *AppError {
	return &AppError{
		Code:    CodeProcessingError,
		Message: fmt.Sprintf("an error occurred during %s", stage),
		Cause:   cause,
	}
}
