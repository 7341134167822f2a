package handler

// HandlerFunc is a type-safe request handler with custom context support.
// Returning a nil response together with a nil error is treated as a failure.
type HandlerFunc[C Context] func(ctx C) (*Response, error)

// Middleware wraps the rest of the chain. It may call next.Run at most once,
// inspect or modify the response it returns, short-circuit by returning its
// own response, or fail.
type Middleware[C Context] func(ctx C, next *Next[C]) (*Response, error)

// ErrorHandler converts an error that escaped the chain into a response.
type ErrorHandler[C Context] func(ctx C, err error) *Response
