package middleware

import (
	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/response"
)

// CatchErrors converts errors returned by the rest of the chain into
// responses using the plain-text response.ErrorHandler. Middleware placed
// outside it sees a response instead of an error and can decorate it.
func CatchErrors[C handler.Context]() handler.Middleware[C] {
	return CatchErrorsWith(response.ErrorHandler[C])
}

// CatchErrorsWith is CatchErrors with a custom error handler, for example
// response.JSONErrorHandler. A nil result from eh falls back to the
// plain-text handler.
func CatchErrorsWith[C handler.Context](eh handler.ErrorHandler[C]) handler.Middleware[C] {
	if eh == nil {
		eh = response.ErrorHandler[C]
	}

	return func(ctx C, next *handler.Next[C]) (*handler.Response, error) {
		resp, err := next.Run(ctx)
		if err == nil {
			return resp, nil
		}

		if resp = eh(ctx, err); resp == nil {
			resp = response.ErrorHandler(ctx, err)
		}
		return resp, nil
	}
}
