package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents standardized error codes
type ErrorCode string

const (
	// Authorization errors
	ErrCodeForbidden ErrorCode = "FORBIDDEN"

	// Validation errors
	ErrCodeValidation   ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"

	// Domain errors
	ErrCodePortfolioNotFound ErrorCode = "PORTFOLIO_NOT_FOUND"

	// System errors
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeStorage  ErrorCode = "STORAGE_ERROR"
	ErrCodeUpstream ErrorCode = "UPSTREAM_ERROR"
	ErrCodeTimeout  ErrorCode = "TIMEOUT"
)

// FolioError represents a standardized error
type FolioError struct {
	Code       ErrorCode              `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
}

func (e FolioError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// New creates a new FolioError
func New(code ErrorCode, message string) *FolioError {
	return &FolioError{
		Code:       code,
		Message:    message,
		StatusCode: getHTTPStatusCode(code),
		Details:    make(map[string]interface{}),
	}
}

// NewWithDetails creates a new FolioError with details
func NewWithDetails(code ErrorCode, message string, details map[string]interface{}) *FolioError {
	return &FolioError{
		Code:       code,
		Message:    message,
		StatusCode: getHTTPStatusCode(code),
		Details:    details,
	}
}

// Wrap wraps an existing error with FolioError
func Wrap(err error, code ErrorCode, message string) *FolioError {
	details := map[string]interface{}{
		"original_error": err.Error(),
	}
	return NewWithDetails(code, message, details)
}

// AddDetail adds a detail to the error
func (e *FolioError) AddDetail(key string, value interface{}) *FolioError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// AsFolioError unwraps err into a *FolioError when possible
func AsFolioError(err error) (*FolioError, bool) {
	var fe *FolioError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// getHTTPStatusCode maps error codes to HTTP status codes
func getHTTPStatusCode(code ErrorCode) int {
	switch code {
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeValidation, ErrCodeInvalidInput, ErrCodeMissingField:
		return http.StatusBadRequest
	case ErrCodePortfolioNotFound:
		return http.StatusNotFound
	case ErrCodeTimeout:
		return http.StatusRequestTimeout
	case ErrCodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors
func Forbidden(message string) *FolioError {
	return New(ErrCodeForbidden, message)
}

func ValidationError(message string) *FolioError {
	return New(ErrCodeValidation, message)
}

func NotFound(resource string) *FolioError {
	return New(ErrCodePortfolioNotFound, fmt.Sprintf("%s not found", resource))
}

func Internal(message string) *FolioError {
	return New(ErrCodeInternal, message)
}

func Storage(message string) *FolioError {
	return New(ErrCodeStorage, message)
}

func Upstream(service string) *FolioError {
	return New(ErrCodeUpstream, fmt.Sprintf("%s unavailable", service))
}
