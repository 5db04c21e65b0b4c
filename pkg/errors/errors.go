package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Codes returned in the "code" field of every error response.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeConflict        = "CONFLICT"
	CodeInternal        = "INTERNAL_ERROR"
	CodeBadRequest      = "BAD_REQUEST"
	CodeTimeout         = "TIMEOUT"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeMissingField    = "MISSING_FIELD"
	CodeInvalidInterval = "INVALID_INTERVAL"
	CodeSpotUnavailable = "SPOT_UNAVAILABLE"
	CodeAlreadyTerminal = "ALREADY_TERMINAL"
	CodeInvalidPrice    = "INVALID_PRICE"
	CodeRateLimited     = "RATE_LIMITED"
)

// defaultStatus maps each code to the status its constructor uses.
var defaultStatus = map[string]int{
	CodeNotFound:        http.StatusNotFound,
	CodeUnauthorized:    http.StatusUnauthorized,
	CodeForbidden:       http.StatusForbidden,
	CodeConflict:        http.StatusConflict,
	CodeInternal:        http.StatusInternalServerError,
	CodeBadRequest:      http.StatusBadRequest,
	CodeTimeout:         http.StatusGatewayTimeout,
	CodeInvalidInput:    http.StatusBadRequest,
	CodeMissingField:    http.StatusBadRequest,
	CodeInvalidInterval: http.StatusBadRequest,
	CodeSpotUnavailable: http.StatusBadRequest,
	CodeAlreadyTerminal: http.StatusBadRequest,
	CodeInvalidPrice:    http.StatusInternalServerError,
	CodeRateLimited:     http.StatusTooManyRequests,
}

// AppError is the error type that crosses the service/handler boundary.
// Anything else reaching a handler is reported as INTERNAL_ERROR.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	if e.HTTPStatus != 0 {
		return e.HTTPStatus
	}
	if status, ok := defaultStatus[e.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WithDetails replaces the details map and returns e for chaining.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

// New builds an error with an explicit status, for codes used with a status
// other than their default.
func New(code, message string, httpStatus int) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: httpStatus}
}

func newError(code, message string, cause error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: defaultStatus[code], Err: cause}
}

func NotFound(resource string) *AppError {
	return newError(CodeNotFound, resource+" not found", nil)
}

func NotFoundWithID(resource, id string) *AppError {
	return NotFound(resource).WithDetails(map[string]any{"resource": resource, "id": id})
}

func InvalidInput(message string) *AppError {
	return newError(CodeInvalidInput, message, nil)
}

// MissingField reports absent required request fields. fields is copied into Details.
func MissingField(message string, fields ...string) *AppError {
	appErr := newError(CodeMissingField, message, nil)
	if len(fields) > 0 {
		appErr.Details = map[string]any{"fields": append([]string(nil), fields...)}
	}
	return appErr
}

func InvalidInterval(message string) *AppError {
	return newError(CodeInvalidInterval, message, nil)
}

func SpotUnavailable(message string) *AppError {
	return newError(CodeSpotUnavailable, message, nil)
}

func AlreadyTerminal(message string) *AppError {
	return newError(CodeAlreadyTerminal, message, nil)
}

// InvalidPrice is an internal inconsistency, never a client error.
func InvalidPrice(message string, err error) *AppError {
	return newError(CodeInvalidPrice, message, err)
}

func Unauthorized(message string) *AppError {
	return newError(CodeUnauthorized, message, nil)
}

func Forbidden(message string) *AppError {
	return newError(CodeForbidden, message, nil)
}

func Conflict(message string) *AppError {
	return newError(CodeConflict, message, nil)
}

func Internal(message string, err error) *AppError {
	return newError(CodeInternal, message, err)
}

func Timeout(message string) *AppError {
	return newError(CodeTimeout, message, nil)
}

// IsAppError reports whether err or anything it wraps is an *AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// HasCode reports whether err carries an *AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// AsAppError unwraps err to its *AppError, or wraps it as INTERNAL_ERROR.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}
