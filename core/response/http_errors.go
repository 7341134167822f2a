package response

import (
	"maps"
	"net/http"
	"strings"
)

// StatusClientClosedRequest is the non-standard status used when the client
// goes away before the response is produced.
const StatusClientClosedRequest = 499

// HTTPError represents a structured error response that implements the error interface.
type HTTPError struct {
	Status  int            `json:"-"`                 // HTTP status code (not in JSON)
	Code    string         `json:"code"`              // Machine-readable error code
	Message string         `json:"message"`           // Human-readable message
	Details map[string]any `json:"details,omitempty"` // Optional context

	cause error
}

// NewHTTPError creates an error with the given status. Code and message are
// derived from the status text.
func NewHTTPError(status int) HTTPError {
	text := http.StatusText(status)
	if status == StatusClientClosedRequest {
		text = "Client Closed Request"
	}
	if text == "" {
		text = http.StatusText(http.StatusInternalServerError)
		status = http.StatusInternalServerError
	}
	return HTTPError{
		Status:  status,
		Code:    strings.ReplaceAll(strings.ToLower(strings.ReplaceAll(text, "-", " ")), " ", "_"),
		Message: text,
	}
}

// Error implements the error interface.
func (e HTTPError) Error() string {
	return e.Message
}

// StatusCode returns the HTTP status code for the error.
func (e HTTPError) StatusCode() int {
	return e.Status
}

// Unwrap exposes the cause attached with WithError.
func (e HTTPError) Unwrap() error {
	return e.cause
}

// Is matches another HTTPError by status and code so that predefined errors
// keep matching after WithMessage, WithDetails or WithError.
func (e HTTPError) Is(target error) bool {
	t, ok := target.(HTTPError)
	if !ok {
		return false
	}
	return e.Status == t.Status && e.Code == t.Code
}

// WithMessage returns a copy of the error with a custom message.
func (e HTTPError) WithMessage(message string) HTTPError {
	e.Message = message
	return e
}

// WithDetails returns a copy of the error with additional details.
func (e HTTPError) WithDetails(details map[string]any) HTTPError {
	e.Details = maps.Clone(details)
	return e
}

// WithError returns a copy of the error with an error cause.
func (e HTTPError) WithError(err error) HTTPError {
	if err == nil {
		return e
	}
	e.cause = err
	details := maps.Clone(e.Details)
	if details == nil {
		details = make(map[string]any, 1)
	}
	details["cause"] = err.Error()
	e.Details = details
	return e
}

// Predefined HTTP errors.
var (
	ErrBadRequest            = NewHTTPError(http.StatusBadRequest)
	ErrUnauthorized          = NewHTTPError(http.StatusUnauthorized)
	ErrForbidden             = NewHTTPError(http.StatusForbidden)
	ErrNotFound              = NewHTTPError(http.StatusNotFound)
	ErrMethodNotAllowed      = NewHTTPError(http.StatusMethodNotAllowed)
	ErrNotAcceptable         = NewHTTPError(http.StatusNotAcceptable)
	ErrRequestTimeout        = NewHTTPError(http.StatusRequestTimeout)
	ErrConflict              = NewHTTPError(http.StatusConflict)
	ErrGone                  = NewHTTPError(http.StatusGone)
	ErrRequestEntityTooLarge = NewHTTPError(http.StatusRequestEntityTooLarge)
	ErrUnsupportedMediaType  = NewHTTPError(http.StatusUnsupportedMediaType)
	ErrUnprocessableEntity   = NewHTTPError(http.StatusUnprocessableEntity)
	ErrTooManyRequests       = NewHTTPError(http.StatusTooManyRequests)
	ErrClientClosedRequest   = NewHTTPError(StatusClientClosedRequest)

	ErrInternalServerError = NewHTTPError(http.StatusInternalServerError)
	ErrNotImplemented      = NewHTTPError(http.StatusNotImplemented)
	ErrBadGateway          = NewHTTPError(http.StatusBadGateway)
	ErrServiceUnavailable  = NewHTTPError(http.StatusServiceUnavailable)
	ErrGatewayTimeout      = NewHTTPError(http.StatusGatewayTimeout)
)
