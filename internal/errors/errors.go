package errors

import (
	"errors"
	"net/http"
	"strings"
)

// Client-facing messages. Tests and API consumers match on these strings.
const (
	MsgInvalidCredentials = "Invalid email or password ❌"
	MsgTokenNotFound      = "Token Doesn't Exist"
	MsgInvalidToken       = "Invalid token"
	MsgUserNotFound       = "User not found"
)

var (
	// ErrUserNotFound is returned when a user record does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTokenNotFound is returned when no stored token matches the presented one.
	ErrTokenNotFound = errors.New("token does not exist")
	// ErrInvalidToken is returned when a stored token cannot be resolved to a user.
	ErrInvalidToken = errors.New("invalid token")
)

// ValidationError carries the full messages of every failed field rule.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// NewValidationError builds a ValidationError from messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// ValidationResponse is the body of an unprocessable entity response.
type ValidationResponse struct {
	Errors []string `json:"errors"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
	Details    []string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// Body returns the JSON payload matching the error kind.
func (e *HTTPError) Body() interface{} {
	if e.Details != nil {
		return ValidationResponse{Errors: e.Details}
	}
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		httpErr := NewHTTPError(http.StatusUnprocessableEntity, "validation failed", "VALIDATION_FAILED")
		httpErr.Details = verr.Messages
		return httpErr
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, MsgInvalidCredentials, "INVALID_CREDENTIALS")
	case errors.Is(err, ErrTokenNotFound):
		return NewHTTPError(http.StatusUnauthorized, MsgTokenNotFound, "TOKEN_NOT_FOUND")
	case errors.Is(err, ErrInvalidToken):
		return NewHTTPError(http.StatusUnauthorized, MsgInvalidToken, "INVALID_TOKEN")
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, MsgUserNotFound, "USER_NOT_FOUND")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
