package response

import (
	"errors"
	"net/http"
)

// WithStatus attaches an HTTP status to err. A nil err stays nil.
// An err that already is an HTTPError keeps its message and details.
//
//	if err := store.Save(item); err != nil {
//		return nil, response.WithStatus(err, http.StatusConflict)
//	}
func WithStatus(err error, status int) error {
	if err == nil {
		return nil
	}

	var httpErr HTTPError
	if errors.As(err, &httpErr) {
		base := NewHTTPError(status)
		httpErr.Status = base.Status
		httpErr.Code = base.Code
		return httpErr
	}

	return NewHTTPError(status).WithMessage(err.Error()).WithError(err)
}

// ClientError marks err as a 400 Bad Request.
func ClientError(err error) error {
	return WithStatus(err, http.StatusBadRequest)
}

// ServerError marks err as a 500 Internal Server Error.
func ServerError(err error) error {
	return WithStatus(err, http.StatusInternalServerError)
}
