package router

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrymomot/dispatch/core/binder"
	"github.com/dmitrymomot/dispatch/core/extension"
	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/response"
	"github.com/dmitrymomot/dispatch/core/state"
)

// Context is the default context implementation. It delegates cancellation
// and values to the request's context and is owned by a single request.
type Context struct {
	context.Context

	r       *http.Request
	params  map[string]string
	pattern string
	state   *state.Container
	ext     *extension.Map
	body    []byte
	bodyErr error
	read    bool
}

// newContext creates a new Context instance.
func newContext(r *http.Request, params map[string]string, pattern string, st *state.Container) *Context {
	return &Context{
		Context: r.Context(),
		r:       r,
		params:  params,
		pattern: pattern,
		state:   st,
		ext:     extension.New(),
	}
}

// Request returns the HTTP request associated with this context.
func (c *Context) Request() *http.Request {
	return c.r
}

// Param returns the value of the path parameter for the given name.
func (c *Context) Param(name string) (string, error) {
	v, ok := c.params[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrParamNotFound, name)
	}
	return v, nil
}

// Params returns a copy of all captured path parameters.
func (c *Context) Params() map[string]string {
	out := make(map[string]string, len(c.params))
	for k, v := range c.params {
		out[k] = v
	}
	return out
}

// RoutePattern returns the full pattern of the matched route.
func (c *Context) RoutePattern() string {
	return c.pattern
}

// State returns the application state shared by all requests.
func (c *Context) State() *state.Container {
	return c.state
}

// Extensions returns the request-scoped typed value map.
func (c *Context) Extensions() *extension.Map {
	return c.ext
}

// SetValue stores a value in the request's context.Context.
func (c *Context) SetValue(key, val any) {
	c.Context = context.WithValue(c.Context, key, val)
	c.r = c.r.WithContext(c.Context)
}

// SetContext replaces the request's context.Context. Middleware uses it to
// attach deadlines or tracing spans to everything that runs after it.
func (c *Context) SetContext(ctx context.Context) {
	c.Context = ctx
	c.r = c.r.WithContext(ctx)
}

// Method returns the request method.
func (c *Context) Method() string {
	return c.r.Method
}

// URL returns the request URL as seen by the handler.
func (c *Context) URL() *url.URL {
	return c.r.URL
}

// Header returns the first value of the named request header.
func (c *Context) Header(name string) string {
	return c.r.Header.Get(name)
}

// Cookie returns the named request cookie.
func (c *Context) Cookie(name string) (*http.Cookie, error) {
	return c.r.Cookie(name)
}

// Query decodes the query string into v using `query` struct tags.
// Decoding or validation failures are reported as 400 Bad Request.
func (c *Context) Query(v any) error {
	if err := binder.Query()(c.r, v); err != nil {
		return queryError(err)
	}
	if err := binder.Validate(v); err != nil {
		return queryError(err)
	}
	return nil
}

func queryError(err error) error {
	return response.ErrBadRequest.WithMessage("failed to decode query string").WithError(err)
}

// BodyBytes reads the whole request body. The body is read once; later
// calls and the other Body helpers reuse the buffered bytes.
func (c *Context) BodyBytes() ([]byte, error) {
	if !c.read {
		c.read = true
		if c.r.Body != nil && c.r.Body != http.NoBody {
			c.body, c.bodyErr = io.ReadAll(c.r.Body)
			_ = c.r.Body.Close()
		}
		c.rewind()
	}
	return c.body, c.bodyErr
}

// BodyString reads the request body as a string.
func (c *Context) BodyString() (string, error) {
	b, err := c.BodyBytes()
	return string(b), err
}

// BodyJSON decodes a JSON request body into v and validates it.
func (c *Context) BodyJSON(v any) error {
	return c.bind(binder.JSON(), v)
}

// BodyForm decodes a url-encoded or multipart form body into v and validates it.
func (c *Context) BodyForm(v any) error {
	return c.bind(binder.Form(), v)
}

func (c *Context) bind(b binder.Binder, v any) error {
	if _, err := c.BodyBytes(); err != nil {
		return bodyError(err)
	}
	defer c.rewind()

	if err := b(c.r, v); err != nil {
		return binderError(err)
	}
	if err := binder.Validate(v); err != nil {
		return binderError(err)
	}
	return nil
}

// rewind replaces the request body with the buffered bytes.
func (c *Context) rewind() {
	if c.bodyErr == nil && c.read {
		c.r.Body = io.NopCloser(bytes.NewReader(c.body))
	}
}

// ParamAs parses the named path parameter into T.
// Missing parameters and parse failures are reported as 400 Bad Request.
//
//	id, err := router.ParamAs[int64](ctx, "id")
func ParamAs[T string | int | int64 | uint | uint64 | float64 | bool](ctx handler.Context, name string) (T, error) {
	var zero T

	raw, err := ctx.Param(name)
	if err != nil {
		return zero, response.ErrBadRequest.WithMessage("missing path parameter " + name).WithError(err)
	}

	var out any
	switch any(zero).(type) {
	case string:
		out = raw
	case int:
		var n int64
		n, err = strconv.ParseInt(raw, 10, 0)
		out = int(n)
	case int64:
		out, err = strconv.ParseInt(raw, 10, 64)
	case uint:
		var n uint64
		n, err = strconv.ParseUint(raw, 10, 0)
		out = uint(n)
	case uint64:
		out, err = strconv.ParseUint(raw, 10, 64)
	case float64:
		out, err = strconv.ParseFloat(raw, 64)
	case bool:
		out, err = strconv.ParseBool(raw)
	}
	if err != nil {
		return zero, response.ErrBadRequest.WithMessage("invalid path parameter " + name).WithError(err)
	}
	return out.(T), nil
}

// bodyError maps a failed body read to 413 when a size limit was hit and
// 400 otherwise.
func bodyError(err error) error {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return response.ErrRequestEntityTooLarge.WithError(err)
	}
	return response.ErrBadRequest.WithError(err)
}

// binderError maps binding failures to client errors.
func binderError(err error) error {
	switch {
	case errors.Is(err, binder.ErrUnsupportedMediaType), errors.Is(err, binder.ErrMissingContentType):
		return response.ErrUnsupportedMediaType.WithError(err)
	case errors.Is(err, binder.ErrValidation):
		return response.ErrUnprocessableEntity.
			WithDetails(map[string]any{"fields": binder.FieldErrors(err)}).
			WithError(err)
	}
	return response.ErrBadRequest.WithError(err)
}
