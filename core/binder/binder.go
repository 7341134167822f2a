package binder

import "net/http"

// Binder decodes one part of a request (body, query, path) into v.
type Binder func(r *http.Request, v any) error

// Bind runs binders in order against the same target and validates the
// result once all of them succeeded.
//
//	var req struct {
//		ID     int64  `path:"id" validate:"required"`
//		Expand bool   `query:"expand"`
//		Name   string `json:"name" validate:"required,max=64"`
//	}
//	err := binder.Bind(r, &req, binder.Path(), binder.Query(), binder.JSON())
func Bind(r *http.Request, v any, binders ...Binder) error {
	for _, b := range binders {
		if b == nil {
			continue
		}
		if err := b(r, v); err != nil {
			return err
		}
	}
	return Validate(v)
}
