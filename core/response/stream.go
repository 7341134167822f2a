package response

import (
	"io"
	"net/http"

	"github.com/dmitrymomot/dispatch/core/handler"
)

// Stream creates a 200 OK response whose body is copied from r as it is read.
// If r implements io.Closer it is closed once the response has been written.
func Stream(r io.Reader, contentType string) *handler.Response {
	resp := handler.NewResponse(http.StatusOK).SetStream(r)
	if contentType != "" {
		resp.SetHeader("Content-Type", contentType)
	}
	resp.SetHeader("Cache-Control", "no-cache")
	return resp
}

// StreamFunc streams the output of write through a pipe. The function runs in
// its own goroutine; an error it returns aborts the body mid-stream.
//
//	return response.StreamFunc("text/plain", func(w io.Writer) error {
//		for i := range 10 {
//			fmt.Fprintf(w, "chunk %d\n", i)
//		}
//		return nil
//	}), nil
func StreamFunc(contentType string, write func(w io.Writer) error) *handler.Response {
	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(write(pw))
	}()
	return Stream(pr, contentType)
}
