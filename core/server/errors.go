package server

import "errors"

var (
	ErrMissingAddress       = errors.New("server address is required")
	ErrNilHandler           = errors.New("server handler is required")
	ErrServerAlreadyRunning = errors.New("server is already running")
)
