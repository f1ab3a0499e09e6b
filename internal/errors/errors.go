package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Code classifies an AppError for callers and HTTP responses
type Code string

const (
	CodeConfigInvalid   Code = "CONFIG_INVALID"
	CodeDatabaseError   Code = "DATABASE_ERROR"
	CodeValidationError Code = "VALIDATION_ERROR"
	CodeNotFound        Code = "NOT_FOUND"
	CodeInternalError   Code = "INTERNAL_ERROR"
	CodeInvalidInput    Code = "INVALID_INPUT"
	// CodeIngestionFailed marks a structurally unreadable input file
	CodeIngestionFailed Code = "INGESTION_FAILED"
	CodeUnknown         Code = "UNKNOWN"
)

// AppError carries a code, a message and an optional cause
type AppError struct {
	Code    Code
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *AppError) Unwrap() error { return e.Cause }

// New creates an AppError without a cause
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap adds context to err. The code of the innermost AppError survives;
// plain errors become INTERNAL_ERROR.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return &AppError{Code: codeOr(err, CodeInternalError), Message: message, Cause: err}
}

// Wrapf is Wrap with a format string
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode re-labels err, keeping its message and chain
func WithCode(code Code, err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) && appErr == err {
		return &AppError{Code: code, Message: appErr.Message, Cause: appErr.Cause}
	}
	return &AppError{Code: code, Message: err.Error(), Cause: err}
}

// IsAppError reports whether err wraps an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in err, or CodeUnknown
func GetCode(err error) Code {
	return codeOr(err, CodeUnknown)
}

func codeOr(err error, fallback Code) Code {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return fallback
}

// HTTPStatus maps an error to the status code the HTTP surface answers with
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput, CodeValidationError:
		return http.StatusBadRequest
	case CodeIngestionFailed:
		return http.StatusUnprocessableEntity
	case CodeDatabaseError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, resource+" not found")
}

// IngestionFailed marks a structural problem with an input file
func IngestionFailed(message string, cause error) *AppError {
	return &AppError{Code: CodeIngestionFailed, Message: message, Cause: cause}
}
