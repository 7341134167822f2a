package handler

import "errors"

var (
	ErrParamNotFound      = errors.New("path parameter not found")
	ErrNilResponse        = errors.New("nil response")
	ErrNilHandler         = errors.New("nil handler")
	ErrContinuationReused = errors.New("middleware continuation called more than once")
)
