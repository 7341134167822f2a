package response

import (
	"net/http"

	"github.com/dmitrymomot/dispatch/core/handler"
)

const (
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"
)

// String creates a text/plain response with 200 OK status.
func String(content string) *handler.Response {
	return StringWithStatus(content, http.StatusOK)
}

// StringWithStatus creates a text/plain response with custom status code.
func StringWithStatus(content string, status int) *handler.Response {
	return BytesWithStatus([]byte(content), contentTypeText, status)
}

// HTML creates a text/html response with 200 OK status.
func HTML(content string) *handler.Response {
	return HTMLWithStatus(content, http.StatusOK)
}

// HTMLWithStatus creates a text/html response with custom status code.
func HTMLWithStatus(content string, status int) *handler.Response {
	return BytesWithStatus([]byte(content), contentTypeHTML, status)
}

// Bytes creates a response with custom content type and 200 OK status.
func Bytes(content []byte, contentType string) *handler.Response {
	return BytesWithStatus(content, contentType, http.StatusOK)
}

// BytesWithStatus creates a response with custom content type and status code.
func BytesWithStatus(content []byte, contentType string, status int) *handler.Response {
	resp := Status(status)
	if contentType != "" {
		resp.SetHeader("Content-Type", contentType)
	}
	if len(content) > 0 {
		resp.SetBody(content)
	}
	return resp
}

// NoContent creates a 204 No Content response.
func NoContent() *handler.Response {
	return handler.NewResponse(http.StatusNoContent)
}

// Status creates an empty response with the specified status code.
func Status(code int) *handler.Response {
	if code == 0 {
		code = http.StatusOK
	}
	return handler.NewResponse(code)
}
