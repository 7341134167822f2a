// Package response builds structured handler responses and converts errors
// into HTTP error responses.
//
// Constructors return *handler.Response values that middleware can still
// modify before the router writes them:
//
//	func show(ctx *router.Context) (*handler.Response, error) {
//		return response.String("hello"), nil
//	}
//
//	func list(ctx *router.Context) (*handler.Response, error) {
//		return response.JSON(items)
//	}
//
// # Errors
//
// HTTPError carries a status, a machine-readable code, a message and optional
// details. Handlers may return predefined errors directly or attach a status
// to any error:
//
//	return nil, response.ErrNotFound.WithMessage("user not found")
//	return nil, response.ClientError(err)          // 400
//	return nil, response.ServerError(err)          // 500
//	return nil, response.WithStatus(err, http.StatusConflict)
//
// ErrorHandler and JSONErrorHandler turn any error into a response and are
// meant to be installed with router.WithErrorHandler. Errors that expose a
// StatusCode() int method keep their status; context cancellation maps to
// 499 and an expired deadline to 504.
//
// # Decorators
//
// WithHeaders, WithCookie, WithoutCookie and WithCache adjust an existing
// response in place and return it for chaining.
package response
