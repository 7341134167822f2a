package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"runtime/debug"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/logger"
	"github.com/dmitrymomot/dispatch/core/response"
	"github.com/dmitrymomot/dispatch/core/state"
)

// mux is the private implementation of Router interface.
// Groups and scopes are inline muxes sharing the route table of their root.
type mux[C handler.Context] struct {
	root        *mux[C]
	parent      *mux[C] // nil for the root
	middlewares []handler.Middleware[C]
	reset       bool // scope ignores inherited middleware
	hasRoutes   bool

	// root only
	tree             *node[C]
	defs             []routeDef[C]
	errorHandler     handler.ErrorHandler[C]
	ownErrorHandler  bool // set through WithErrorHandler
	newContext       func(*Context) C
	logger           *slog.Logger
	state            *state.Container
	notFound         handler.HandlerFunc[C]
	methodNotAllowed handler.HandlerFunc[C]

	sealOnce              sync.Once
	sealed                atomic.Bool
	notFoundChain         *handler.Chain[C]
	methodNotAllowedChain *handler.Chain[C]
}

// routeDef keeps what is needed to register a route again under a mount prefix.
type routeDef[C handler.Context] struct {
	method        methodTyp
	pattern       string
	handler       handler.HandlerFunc[C]
	middlewares   []handler.Middleware[C]
	stripSegments int
	errorHandler  handler.ErrorHandler[C] // nil means the root's
}

// newMux creates a new router instance.
func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		tree:         &node[C]{},
		errorHandler: response.ErrorHandler[C],
		logger:       slog.New(slog.DiscardHandler), // No-op logger by default
		state:        state.New(),
		notFound: func(C) (*handler.Response, error) {
			return nil, ErrNotFound
		},
		methodNotAllowed: func(C) (*handler.Response, error) {
			return nil, ErrMethodNotAllowed
		},
	}
	m.root = m

	for _, opt := range opts {
		opt(m)
	}

	// Only the default *Context works without a factory
	if m.newContext == nil {
		var zero C
		if _, ok := any(zero).(*Context); !ok {
			panic(ErrNoContextFactory)
		}
		m.newContext = func(c *Context) C {
			return any(c).(C)
		}
	}

	return m
}

// spawn creates an empty root router sharing m's configuration.
func (m *mux[C]) spawn() *mux[C] {
	root := m.root
	sub := &mux[C]{
		tree:             &node[C]{},
		errorHandler:     root.errorHandler,
		newContext:       root.newContext,
		logger:           root.logger,
		state:            root.state,
		notFound:         root.notFound,
		methodNotAllowed: root.methodNotAllowed,
	}
	sub.root = sub
	return sub
}

// child creates an inline scope below m.
func (m *mux[C]) child(reset bool, middlewares ...handler.Middleware[C]) *mux[C] {
	m.root.ensureOpen()
	return &mux[C]{
		root:        m.root,
		parent:      m,
		middlewares: slices.Clone(middlewares),
		reset:       reset,
	}
}

// ServeHTTP implements http.Handler interface.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	resp := m.Dispatch(r)
	if err := resp.Render(w, r); err != nil {
		m.root.logger.LogAttrs(r.Context(), slog.LevelError, "failed to write response",
			logger.Method(r.Method),
			logger.Path(r.URL.Path),
			logger.Error(err),
		)
	}
}

// Dispatch resolves the request, runs the matching chain and returns its
// response. Failures are converted by the error handler, so the result is
// never nil.
func (m *mux[C]) Dispatch(r *http.Request) (resp *handler.Response) {
	root := m.root
	root.Seal()

	// Use RawPath if available to preserve URL encoding
	path := r.URL.RawPath
	if path == "" {
		path = r.URL.Path
	}
	if path == "" {
		path = "/"
	}

	// Unknown methods can only reach routes registered with Handle
	method, ok := methodMap[r.Method]
	if !ok {
		method = mALL
	}

	ep, values, allowed := root.tree.find(method, path)

	var (
		chain   *handler.Chain[C]
		pattern string
		params  map[string]string
		onError = root.errorHandler
	)
	switch {
	case ep != nil:
		chain = ep.chain
		pattern = ep.pattern
		if ep.errorHandler != nil {
			onError = ep.errorHandler
		}
		if len(ep.paramKeys) > 0 || ep.stripSegments > 0 {
			r = r.Clone(r.Context())
			params = make(map[string]string, len(ep.paramKeys))
			for i, key := range ep.paramKeys {
				v := values[i]
				if unescaped, err := url.PathUnescape(v); err == nil {
					v = unescaped
				}
				params[key] = v
				r.SetPathValue(key, v)
			}
			if ep.stripSegments > 0 {
				stripPath(r.URL, ep.stripSegments)
			}
		}
	case len(allowed) > 0:
		chain = root.methodNotAllowedChain
	default:
		chain = root.notFoundChain
	}

	ctx := root.newContext(newContext(r, params, pattern, root.state))

	defer func() {
		if p := recover(); p != nil {
			panicErr := &panicError{
				value: p,
				stack: debug.Stack(),
			}
			resp = root.handleError(ctx, r, onError, response.ErrInternalServerError.WithError(panicErr))
		}
		if len(allowed) > 0 {
			resp.SetHeader("Allow", strings.Join(allowed, ", "))
		}
	}()

	var err error
	resp, err = chain.Run(ctx)
	if err != nil {
		resp = root.handleError(ctx, r, onError, err)
	}
	return resp
}

// handleError logs err and turns it into a response with eh.
func (m *mux[C]) handleError(ctx C, r *http.Request, eh handler.ErrorHandler[C], err error) *handler.Response {
	status := response.ToHTTPError(err).StatusCode()

	attrs := []slog.Attr{
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		logger.Route(ctx.RoutePattern()),
		logger.StatusCode(status),
		logger.Error(err),
	}

	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
		var pe PanicError
		if errors.As(err, &pe) {
			attrs = append(attrs, logger.Stack(pe.Stack()))
		}
	}
	m.logger.LogAttrs(ctx, level, "request failed", attrs...)

	if resp := eh(ctx, err); resp != nil {
		return resp
	}
	return response.ErrorHandler(ctx, err)
}

// Seal freezes the route table and compiles the fallback chains.
func (m *mux[C]) Seal() {
	root := m.root
	root.sealOnce.Do(func() {
		mws := slices.Clone(root.middlewares)
		root.notFoundChain = handler.NewChain(root.notFound, mws...)
		root.methodNotAllowedChain = handler.NewChain(root.methodNotAllowed, mws...)
		root.sealed.Store(true)
	})
}

func (m *mux[C]) ensureOpen() {
	if m.root.sealed.Load() {
		panic(ErrRouterSealed)
	}
}

// Get registers a handler for GET requests.
func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mGET, pattern, h)
}

// Post registers a handler for POST requests.
func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mPOST, pattern, h)
}

// Put registers a handler for PUT requests.
func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mPUT, pattern, h)
}

// Delete registers a handler for DELETE requests.
func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mDELETE, pattern, h)
}

// Patch registers a handler for PATCH requests.
func (m *mux[C]) Patch(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mPATCH, pattern, h)
}

// Head registers a handler for HEAD requests.
func (m *mux[C]) Head(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mHEAD, pattern, h)
}

// Options registers a handler for OPTIONS requests.
func (m *mux[C]) Options(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mOPTIONS, pattern, h)
}

// Connect registers a handler for CONNECT requests.
func (m *mux[C]) Connect(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mCONNECT, pattern, h)
}

// Trace registers a handler for TRACE requests.
func (m *mux[C]) Trace(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mTRACE, pattern, h)
}

// Handle registers a handler for any method without a more specific route.
func (m *mux[C]) Handle(pattern string, h handler.HandlerFunc[C]) {
	m.handle(mALL, pattern, h)
}

// Method registers a handler for the given HTTP methods.
func (m *mux[C]) Method(pattern string, h handler.HandlerFunc[C], methods ...string) {
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods for '%s'", ErrInvalidMethod, pattern))
	}
	for _, method := range methods {
		mt, ok := methodMap[strings.ToUpper(method)]
		if !ok {
			panic(fmt.Errorf("%w: '%s'", ErrInvalidMethod, method))
		}
		m.handle(mt, pattern, h)
	}
}

// Use appends middleware to the current scope.
func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	m.root.ensureOpen()
	if m.hasRoutes {
		panic(ErrMiddlewareAfterRoutes)
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

// With returns a scope that adds middlewares to the current ones.
func (m *mux[C]) With(middlewares ...handler.Middleware[C]) Router[C] {
	return m.child(false, middlewares...)
}

// Reset returns a scope that starts without any inherited middleware.
func (m *mux[C]) Reset() Router[C] {
	return m.child(true)
}

// Group creates an inline scope, handing it to fn.
func (m *mux[C]) Group(fn func(r Router[C])) Router[C] {
	g := m.child(false)
	if fn != nil {
		fn(g)
	}
	return g
}

// Route creates a sub-router, lets fn populate it and mounts it at pattern.
func (m *mux[C]) Route(pattern string, fn func(r Router[C])) Router[C] {
	if fn == nil {
		panic(fmt.Errorf("%w: route '%s'", ErrNilRouter, pattern))
	}
	sub := m.spawn()
	fn(sub)
	m.Mount(pattern, sub)
	return sub
}

// Mount registers every route of sub under pattern. The current scope's
// middleware wraps the sub-router's own, and mounted handlers see the request
// path without the prefix. Errors from mounted routes go to the error handler
// sub was created with, falling back to this router's. Requests matching no
// route are answered by the root router's fallbacks. sub is sealed afterwards.
func (m *mux[C]) Mount(pattern string, sub Router[C]) {
	if sub == nil {
		panic(ErrNilSubrouter)
	}
	sm, ok := sub.(*mux[C])
	if !ok {
		panic(ErrForeignRouter)
	}
	if sm.root == m.root {
		panic(fmt.Errorf("%w: router mounted onto itself at '%s'", ErrInvalidPattern, pattern))
	}
	m.root.ensureOpen()

	prefix := strings.TrimSuffix(pattern, "/")
	var segs []segment
	if prefix != "" {
		var err error
		if segs, _, err = parsePattern(prefix); err != nil {
			panic(err)
		}
	}
	if slices.ContainsFunc(segs, func(s segment) bool { return s.typ == ntWildcard }) {
		panic(fmt.Errorf("%w: mount pattern '%s'", ErrWildcardPosition, pattern))
	}

	scope := m.scope()
	for _, def := range sm.root.defs {
		eh := def.errorHandler
		if eh == nil && sm.root.ownErrorHandler {
			eh = sm.root.errorHandler
		}
		m.register(routeDef[C]{
			method:        def.method,
			pattern:       joinPattern(prefix, def.pattern),
			handler:       def.handler,
			middlewares:   append(slices.Clone(scope), def.middlewares...),
			stripSegments: def.stripSegments + len(segs),
			errorHandler:  eh,
		})
	}

	sm.Seal()
}

// Routes returns every registered route sorted by pattern and method.
func (m *mux[C]) Routes() []Route {
	return m.root.tree.routes()
}

// scope collects the effective middleware from the root down to m.
func (m *mux[C]) scope() []handler.Middleware[C] {
	var levels [][]handler.Middleware[C]
	for cur := m; cur != nil; cur = cur.parent {
		levels = append(levels, cur.middlewares)
		if cur.reset {
			break
		}
	}

	var out []handler.Middleware[C]
	for i := len(levels) - 1; i >= 0; i-- {
		out = append(out, levels[i]...)
	}
	return out
}

// handle registers h for method on pattern within the current scope.
func (m *mux[C]) handle(method methodTyp, pattern string, h handler.HandlerFunc[C]) {
	if h == nil {
		panic(fmt.Errorf("%w: %s '%s'", ErrNilHandler, method, pattern))
	}
	m.register(routeDef[C]{
		method:      method,
		pattern:     pattern,
		handler:     h,
		middlewares: m.scope(),
	})
}

func (m *mux[C]) register(def routeDef[C]) {
	root := m.root
	root.ensureOpen()

	segs, keys, err := parsePattern(def.pattern)
	if err != nil {
		panic(err)
	}

	ep := &endpoint[C]{
		chain:         handler.NewChain(def.handler, def.middlewares...),
		pattern:       def.pattern,
		paramKeys:     keys,
		stripSegments: def.stripSegments,
		errorHandler:  def.errorHandler,
		method:        def.method,
	}
	if err := root.tree.insert(segs, ep); err != nil {
		panic(err)
	}

	root.defs = append(root.defs, def)
	for cur := m; cur != nil; cur = cur.parent {
		cur.hasRoutes = true
	}
}

func joinPattern(prefix, pattern string) string {
	if pattern == "/" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	return prefix + pattern
}

// stripPath removes the first n segments from the request URL.
func stripPath(u *url.URL, n int) {
	if u.RawPath != "" {
		raw := stripSegments(u.RawPath, n)
		if p, err := url.PathUnescape(raw); err == nil {
			u.RawPath = raw
			u.Path = p
			return
		}
	}
	u.Path = stripSegments(u.Path, n)
	u.RawPath = ""
}

func stripSegments(path string, n int) string {
	rest := strings.TrimPrefix(path, "/")
	for range n {
		_, after, found := strings.Cut(rest, "/")
		if !found {
			return "/"
		}
		rest = after
	}
	return "/" + rest
}
