package health

import (
	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/response"
)

// Liveness answers "ALIVE" while the process can serve requests.
func Liveness[C handler.Context](C) (*handler.Response, error) {
	return response.String("ALIVE"), nil
}

// NoContent answers 204 with no body.
func NoContent[C handler.Context](C) (*handler.Response, error) {
	return response.NoContent(), nil
}
