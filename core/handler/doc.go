// Package handler defines the request-processing contract shared by the
// router and every middleware: the Context interface, handler and middleware
// function types, the structured Response and the Chain executor.
//
// # Handlers
//
// A handler receives a typed context and returns a response or an error:
//
//	func show(ctx *router.Context) (*handler.Response, error) {
//		id, err := ctx.Param("id")
//		if err != nil {
//			return nil, err
//		}
//		return response.String("user " + id), nil
//	}
//
// Returning (nil, nil) is a programming error and is reported as ErrNilResponse.
//
// # Middleware
//
// Middleware receives the context and a continuation for the rest of the chain:
//
//	func timing(ctx *router.Context, next *handler.Next[*router.Context]) (*handler.Response, error) {
//		start := time.Now()
//		resp, err := next.Run(ctx)
//		if err != nil {
//			return nil, err
//		}
//		return resp.SetHeader("Server-Timing", fmt.Sprintf("app;dur=%d", time.Since(start).Milliseconds())), nil
//	}
//
// A middleware can:
//
//   - call next.Run once and return its result, possibly modified
//   - return its own response without calling next (short-circuit)
//   - return an error, which stops inward progress
//
// The continuation can be consumed only once. A second call returns
// ErrContinuationReused and never re-runs inner links.
//
// Errors propagate outward as return values. A middleware that wants to react
// to failures of inner links does so by inspecting the error returned from
// next.Run; there is no implicit hook.
//
// # Chain
//
// Chain is built once per route from the effective middleware list and the
// handler, then reused for every request:
//
//	chain := handler.NewChain(show, logA, logB)
//	resp, err := chain.Run(ctx)
//
// For the list [logA, logB] the observed order is: logA before, logB before,
// handler, logB after, logA after.
//
// Before each link starts the context is checked for cancellation; a
// cancelled request stops with the context's error.
package handler
