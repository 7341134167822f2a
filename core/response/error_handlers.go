package response

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrymomot/dispatch/core/handler"
)

// statusCode is an interface that errors can implement
// to provide a custom HTTP status code.
type statusCode interface {
	StatusCode() int
}

// ToHTTPError converts any error to an HTTPError.
// HTTPError values are returned as-is; errors exposing StatusCode() anywhere
// in their chain keep that status; body size limit errors map to 413;
// context cancellation maps to 499 and deadline expiry to 504; everything
// else becomes 500.
func ToHTTPError(err error) HTTPError {
	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	status := http.StatusInternalServerError

	var (
		sc  statusCode
		mbe *http.MaxBytesError
	)
	switch {
	case errors.As(err, &sc):
		status = sc.StatusCode()
	case errors.As(err, &mbe):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, context.Canceled):
		status = StatusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	return NewHTTPError(status).WithError(err)
}

// ErrorHandler is the default error handler that returns plain text errors.
// Internal error details are never exposed for 5xx responses.
func ErrorHandler[C handler.Context](ctx C, err error) *handler.Response {
	httpErr := ToHTTPError(err)
	return StringWithStatus(httpErr.Error(), httpErr.Status)
}

// JSONErrorHandler returns errors as JSON responses with code, message and details.
// The cause detail is stripped from 5xx responses.
func JSONErrorHandler[C handler.Context](ctx C, err error) *handler.Response {
	httpErr := ToHTTPError(err)
	if httpErr.Status >= http.StatusInternalServerError && httpErr.Details != nil {
		details := make(map[string]any, len(httpErr.Details))
		for k, v := range httpErr.Details {
			if k != "cause" {
				details[k] = v
			}
		}
		if len(details) == 0 {
			details = nil
		}
		httpErr.Details = details
	}

	resp, encErr := JSONWithStatus(httpErr, httpErr.Status)
	if encErr != nil {
		return StringWithStatus(httpErr.Error(), httpErr.Status)
	}
	return resp
}
