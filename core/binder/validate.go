package binder

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(fieldName)
	})
	return validate
}

// fieldName reports fields by the name the client used.
func fieldName(sf reflect.StructField) string {
	for _, tag := range []string{"json", "form", "query", "path"} {
		name, _, _ := strings.Cut(sf.Tag.Get(tag), ",")
		if name != "" && name != "-" {
			return name
		}
	}
	return sf.Name
}

// Validate checks `validate` struct tags on v. Non-struct targets pass.
// Failures wrap ErrValidation.
func Validate(v any) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrValidation, verrs)
	}
	return err
}

// FieldErrors maps each failing field to a short description of the rule it
// broke. It returns nil when err carries no validation failures.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		out[fe.Field()] = msg
	}
	return out
}
