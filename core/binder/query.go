package binder

import "net/http"

// Query binds URL query parameters using `query` struct tags.
//
//	type SearchRequest struct {
//		Q      string   `query:"q"`
//		Page   int      `query:"page"`
//		Tags   []string `query:"tags"`   // ?tags=go&tags=web or ?tags=go,web
//		Active *bool    `query:"active"` // optional
//		Debug  string   `query:"-"`
//	}
func Query() Binder {
	return func(r *http.Request, v any) error {
		q := r.URL.Query()
		return decodeValues(v, "query", func(name string) ([]string, bool) {
			vals, ok := q[name]
			return vals, ok
		}, ErrFailedToParseQuery)
	}
}
