package router

import (
	"errors"
	"fmt"

	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/response"
)

var (
	// Dispatch outcomes
	ErrNotFound         = response.ErrNotFound
	ErrMethodNotAllowed = response.ErrMethodNotAllowed
	ErrNilResponse      = handler.ErrNilResponse
	ErrParamNotFound    = handler.ErrParamNotFound

	// Configuration errors, reported by panicking at build time
	ErrNoContextFactory      = errors.New("no context factory provided")
	ErrInvalidMethod         = errors.New("invalid http method")
	ErrNilRouter             = errors.New("nil router")
	ErrNilSubrouter          = errors.New("nil subrouter")
	ErrNilHandler            = errors.New("nil handler")
	ErrRouterSealed          = errors.New("router is sealed, routes can no longer be added")
	ErrMiddlewareAfterRoutes = errors.New("middleware must be defined before routes")
	ErrForeignRouter         = errors.New("can only mount routers created by this package")

	// Pattern errors
	ErrInvalidPattern   = errors.New("invalid route path pattern")
	ErrAmbiguousPattern = errors.New("ambiguous route pattern")
	ErrWildcardPosition = errors.New("wildcard position must be last")
	ErrDuplicateParam   = errors.New("duplicate parameter name")
)

// PanicError interface allows external error handlers to detect and handle panics.
// When a panic is recovered by the router, it's wrapped in an error that implements
// this interface, providing access to the original panic value and stack trace.
type PanicError interface {
	error
	// Value returns the original panic value.
	Value() any
	// Stack returns the stack trace captured at the panic point.
	Stack() []byte
}

// panicError is the private implementation of PanicError interface.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func (e *panicError) Value() any {
	return e.value
}

func (e *panicError) Stack() []byte {
	return e.stack
}

// Unwrap allows errors.Is/As to work with wrapped panics.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}
