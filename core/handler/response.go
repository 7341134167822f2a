package handler

import (
	"io"
	"net/http"
	"slices"
	"strconv"
)

// Response is the structured result of handling a request: a status code,
// a header multimap and a body that is either a byte slice, a stream or empty.
// Handlers build it and middleware may modify it on the way out. It is written
// to the client exactly once by Render.
type Response struct {
	status int
	header http.Header
	body   []byte
	stream io.Reader
}

// NewResponse creates an empty response with the given status code.
func NewResponse(status int) *Response {
	return &Response{
		status: status,
		header: make(http.Header),
	}
}

// Status returns the status code, defaulting to 200 when unset.
func (r *Response) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// SetStatus replaces the status code.
func (r *Response) SetStatus(code int) *Response {
	r.status = code
	return r
}

// Header returns the header map. Keys are canonicalized by http.Header.
func (r *Response) Header() http.Header {
	if r.header == nil {
		r.header = make(http.Header)
	}
	return r.header
}

// SetHeader replaces all values of key.
func (r *Response) SetHeader(key, value string) *Response {
	r.Header().Set(key, value)
	return r
}

// AddHeader appends a value to key, keeping existing values.
func (r *Response) AddHeader(key, value string) *Response {
	r.Header().Add(key, value)
	return r
}

// Body returns the buffered body, nil for streamed or empty responses.
func (r *Response) Body() []byte {
	return r.body
}

// SetBody replaces the body with b and drops any stream.
func (r *Response) SetBody(b []byte) *Response {
	r.body = b
	r.stream = nil
	return r
}

// Stream returns the streaming body, if any.
func (r *Response) Stream() io.Reader {
	return r.stream
}

// SetStream replaces the body with a stream. If the reader is an io.Closer
// it is closed after rendering.
func (r *Response) SetStream(s io.Reader) *Response {
	r.stream = s
	r.body = nil
	return r
}

// Empty reports whether the response carries no body.
func (r *Response) Empty() bool {
	return r.stream == nil && len(r.body) == 0
}

// SetCookie appends a Set-Cookie header. Invalid cookies are dropped.
func (r *Response) SetCookie(c *http.Cookie) *Response {
	if c == nil {
		return r
	}
	if v := c.String(); v != "" {
		r.Header().Add("Set-Cookie", v)
	}
	return r
}

// RemoveCookie instructs the client to delete the named cookie.
func (r *Response) RemoveCookie(name string) *Response {
	return r.SetCookie(&http.Cookie{
		Name:   name,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// Cookies parses the Set-Cookie headers of the response.
func (r *Response) Cookies() []*http.Cookie {
	return (&http.Response{Header: r.Header()}).Cookies()
}

// Render writes the response to w. The body is skipped for HEAD requests and
// for status codes that forbid one.
func (r *Response) Render(w http.ResponseWriter, req *http.Request) error {
	if closer, ok := r.stream.(io.Closer); ok {
		defer closer.Close()
	}

	dst := w.Header()
	for k, v := range r.header {
		dst[k] = slices.Clone(v)
	}

	status := r.Status()
	writeBody := bodyAllowed(status) && (req == nil || req.Method != http.MethodHead)

	if r.stream == nil && dst.Get("Content-Length") == "" && bodyAllowed(status) {
		dst.Set("Content-Length", strconv.Itoa(len(r.body)))
	}

	w.WriteHeader(status)

	if !writeBody {
		return nil
	}

	if r.stream != nil {
		if wt, ok := r.stream.(io.WriterTo); ok {
			_, err := wt.WriteTo(w)
			return err
		}
		_, err := io.Copy(flushWriter{w}, r.stream)
		return err
	}

	if len(r.body) > 0 {
		_, err := w.Write(r.body)
		return err
	}
	return nil
}

func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status < 200:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}

// flushWriter flushes after every write so streamed bodies reach the client
// as they are produced.
type flushWriter struct {
	w http.ResponseWriter
}

func (fw flushWriter) Write(p []byte) (int, error) {
	n, err := fw.w.Write(p)
	if f, ok := fw.w.(http.Flusher); ok {
		f.Flush()
	}
	return n, err
}
