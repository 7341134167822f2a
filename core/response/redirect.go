package response

import (
	"net/http"

	"github.com/dmitrymomot/dispatch/core/handler"
)

// Redirect creates a 302 Found response.
func Redirect(url string) *handler.Response {
	return RedirectWithStatus(url, http.StatusFound)
}

// RedirectPermanent creates a 301 Moved Permanently response.
func RedirectPermanent(url string) *handler.Response {
	return RedirectWithStatus(url, http.StatusMovedPermanently)
}

// RedirectSeeOther creates a 303 See Other response, typically after a POST.
func RedirectSeeOther(url string) *handler.Response {
	return RedirectWithStatus(url, http.StatusSeeOther)
}

// RedirectTemporary creates a 307 Temporary Redirect response.
// Unlike 302, the client keeps the request method.
func RedirectTemporary(url string) *handler.Response {
	return RedirectWithStatus(url, http.StatusTemporaryRedirect)
}

// RedirectWithStatus creates a redirect with a custom 3xx status.
// Statuses outside the 3xx range fall back to 302.
func RedirectWithStatus(url string, status int) *handler.Response {
	if status < 300 || status > 399 {
		status = http.StatusFound
	}
	return handler.NewResponse(status).SetHeader("Location", url)
}
