// Package router matches requests against registered routes and runs them
// through their middleware chains.
//
// Routes live in a segment trie. Each path segment is matched with the
// precedence literal, then named parameter (":id"), then trailing wildcard
// ("*path"). Once a branch is chosen the lookup does not backtrack into its
// siblings, so "/a/:x/c" registered next to "/a/b/d" never serves "/a/b/c".
//
// # Basic Usage
//
//	r := router.New[*router.Context]()
//
//	r.Get("/users/:id", func(ctx *router.Context) (*handler.Response, error) {
//		id, err := router.ParamAs[int64](ctx, "id")
//		if err != nil {
//			return nil, err
//		}
//		return response.JSON(map[string]any{"id": id})
//	})
//
//	http.ListenAndServe(":8080", r)
//
// # Middleware
//
// Middleware receives the context and a continuation. It may call the
// continuation at most once, post-process its response, short-circuit by
// returning its own response, or fail:
//
//	func timing(ctx *router.Context, next *handler.Next[*router.Context]) (*handler.Response, error) {
//		start := time.Now()
//		resp, err := next.Run(ctx)
//		if resp != nil {
//			resp.SetHeader("X-Elapsed", time.Since(start).String())
//		}
//		return resp, err
//	}
//
//	r.Use(timing)
//
// Middleware runs in registration order, outermost first. Use must be called
// before routes are added to the same scope. With, Group and Route create
// nested scopes that inherit the current middleware; Reset starts a scope
// without any.
//
// # Mounting
//
// Mount registers every route of another router under a prefix. The parent
// scope's middleware wraps the sub-router's own, and mounted handlers see the
// request path with the prefix stripped:
//
//	api := router.New[*router.Context]()
//	api.Get("/status", status)
//	r.Mount("/api/v1", api) // GET /api/v1/status, handler sees /status
//
// # Dispatch
//
// The route table is sealed by the first dispatched request or an explicit
// Seal call. Registering routes afterwards panics with ErrRouterSealed.
//
// Requests that match nothing run the not-found fallback, and requests whose
// path matches without a route for the method run the method-not-allowed
// fallback with an Allow header. Both fallbacks run through root-scope
// middleware only.
//
// Errors returned from the chain are logged and converted by the error
// handler. Panics are recovered and reported as 500 with a PanicError cause:
//
//	r := router.New(router.WithErrorHandler(func(ctx *router.Context, err error) *handler.Response {
//		var pe router.PanicError
//		if errors.As(err, &pe) {
//			// pe.Value(), pe.Stack()
//		}
//		return response.JSONErrorHandler(ctx, err)
//	}))
//
// # Custom Contexts
//
// Any type implementing handler.Context can be used with a factory that wraps
// the default context:
//
//	type AppContext struct {
//		*router.Context
//	}
//
//	r := router.New[*AppContext](router.WithContextFactory(func(c *router.Context) *AppContext {
//		return &AppContext{Context: c}
//	}))
package router
