package handler

import (
	"context"
	"net/http"

	"github.com/dmitrymomot/dispatch/core/extension"
	"github.com/dmitrymomot/dispatch/core/state"
)

// Context defines the contract for request contexts in the framework.
// Use router.Context for the default implementation.
type Context interface {
	context.Context
	Request() *http.Request
	// Param returns the named path parameter or an error wrapping ErrParamNotFound.
	Param(name string) (string, error)
	Params() map[string]string
	// RoutePattern is the full pattern of the matched route, empty for fallbacks.
	RoutePattern() string
	State() *state.Container
	Extensions() *extension.Map
	SetValue(key, val any)
}
