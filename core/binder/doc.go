// Package binder decodes request data into structs and validates the result.
//
// Each source has its own Binder and struct tag:
//
//   - JSON reads application/json bodies (`json` tags, strict decoding, size limit)
//   - Form reads url-encoded and multipart bodies (`form` tags, `file` tags for uploads)
//   - Query reads the URL query string (`query` tags)
//   - Path reads router path parameters through Request.PathValue (`path` tags)
//
// Fields without a tag are matched by their lower-cased name and "-" skips a
// field. Scalars, slices (repeated or comma-separated values), pointers,
// time.Duration and encoding.TextUnmarshaler implementations are supported.
//
// Bind applies several binders and then runs Validate, which checks
// `validate` tags with go-playground/validator:
//
//	type UpdateUser struct {
//		ID    int64  `path:"id" validate:"required"`
//		Email string `json:"email" validate:"required,email"`
//	}
//
//	var req UpdateUser
//	if err := binder.Bind(r, &req, binder.Path(), binder.JSON()); err != nil {
//		if errors.Is(err, binder.ErrValidation) {
//			fields := binder.FieldErrors(err) // {"email": "email"}
//		}
//	}
package binder
