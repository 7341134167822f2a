package response

import (
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrymomot/dispatch/core/handler"
)

// WithHeaders sets the given headers on resp, replacing existing values.
func WithHeaders(resp *handler.Response, headers map[string]string) *handler.Response {
	if resp == nil {
		return nil
	}
	for k, v := range headers {
		resp.SetHeader(k, v)
	}
	return resp
}

// WithCookie adds a Set-Cookie header to resp.
func WithCookie(resp *handler.Response, cookie *http.Cookie) *handler.Response {
	if resp == nil {
		return nil
	}
	return resp.SetCookie(cookie)
}

// WithoutCookie adds a Set-Cookie header that removes the named cookie.
func WithoutCookie(resp *handler.Response, name string) *handler.Response {
	if resp == nil {
		return nil
	}
	return resp.RemoveCookie(name)
}

// WithCache sets cache control headers on resp.
// If maxAge > 0 the response is cacheable for that long, otherwise caching is disabled.
func WithCache(resp *handler.Response, maxAge time.Duration) *handler.Response {
	if resp == nil {
		return nil
	}
	if maxAge > 0 {
		resp.SetHeader("Cache-Control", fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())))
		resp.SetHeader("Expires", time.Now().Add(maxAge).UTC().Format(http.TimeFormat))
		return resp
	}
	resp.SetHeader("Cache-Control", "no-cache, no-store, must-revalidate")
	resp.SetHeader("Pragma", "no-cache")
	resp.SetHeader("Expires", "0")
	return resp
}
