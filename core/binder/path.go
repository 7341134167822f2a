package binder

import "net/http"

// Path binds path parameters using `path` struct tags. Values are read with
// Request.PathValue, which the router fills for every matched parameter.
// Empty values leave the field untouched.
func Path() Binder {
	return func(r *http.Request, v any) error {
		return decodeValues(v, "path", func(name string) ([]string, bool) {
			val := r.PathValue(name)
			return []string{val}, val != ""
		}, ErrFailedToParsePath)
	}
}
