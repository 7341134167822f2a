package binder

import "errors"

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrMissingContentType   = errors.New("missing content type")
	ErrInvalidTarget        = errors.New("binding target must be a non-nil pointer to struct")

	ErrFailedToParseJSON  = errors.New("failed to parse JSON request body")
	ErrFailedToParseForm  = errors.New("failed to parse form data")
	ErrFailedToParseQuery = errors.New("failed to parse query parameters")
	ErrFailedToParsePath  = errors.New("failed to parse path parameters")

	// ErrValidation wraps validator failures; use FieldErrors to inspect them.
	ErrValidation = errors.New("validation failed")
)
