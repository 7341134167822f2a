package binder

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"reflect"
	"strings"
)

// DefaultMaxMemory is the multipart memory limit; larger parts spill to disk.
const DefaultMaxMemory = 10 << 20

var fileHeaderType = reflect.TypeFor[*multipart.FileHeader]()

// Form binds url-encoded and multipart form bodies using `form` struct tags.
// Uploaded files bind to *multipart.FileHeader or []*multipart.FileHeader
// fields tagged with `file`. File names are reduced to their base name.
//
//	type UploadRequest struct {
//		Title  string                  `form:"title"`
//		Avatar *multipart.FileHeader   `file:"avatar"`
//		Extras []*multipart.FileHeader `file:"extras"`
//	}
func Form() Binder {
	return func(r *http.Request, v any) error {
		mt, err := mediaType(r)
		if err != nil {
			return err
		}

		var files map[string][]*multipart.FileHeader
		switch mt {
		case "application/x-www-form-urlencoded":
			if err := r.ParseForm(); err != nil {
				return fmt.Errorf("%w: %w", ErrFailedToParseForm, err)
			}
		case "multipart/form-data":
			if err := r.ParseMultipartForm(DefaultMaxMemory); err != nil {
				return fmt.Errorf("%w: %w", ErrFailedToParseForm, err)
			}
			files = r.MultipartForm.File
		default:
			return fmt.Errorf("%w: got %s, expected a form", ErrUnsupportedMediaType, mt)
		}

		form := r.PostForm
		if err := decodeValues(v, "form", func(name string) ([]string, bool) {
			vals, ok := form[name]
			return vals, ok
		}, ErrFailedToParseForm); err != nil {
			return err
		}

		return bindFiles(v, files)
	}
}

func bindFiles(v any, files map[string][]*multipart.FileHeader) error {
	if len(files) == 0 {
		return nil
	}

	rv, err := structTarget(v)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToParseForm, err)
	}

	rt := rv.Type()
	for i := range rt.NumField() {
		sf := rt.Field(i)
		name := sf.Tag.Get("file")
		if name == "" || name == "-" {
			continue
		}
		headers := files[name]
		if len(headers) == 0 {
			continue
		}
		for _, fh := range headers {
			fh.Filename = cleanFilename(fh.Filename)
		}

		field := rv.Field(i)
		switch sf.Type {
		case fileHeaderType:
			field.Set(reflect.ValueOf(headers[0]))
		case reflect.SliceOf(fileHeaderType):
			field.Set(reflect.ValueOf(headers))
		default:
			return fmt.Errorf("%w: field %s: unsupported file field type %s", ErrFailedToParseForm, sf.Name, sf.Type)
		}
	}
	return nil
}

// cleanFilename drops directory components so names cannot traverse paths.
func cleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "\x00", "")
	if name == "." || name == ".." || name == "/" || name == "" {
		return "unnamed"
	}
	return name
}
