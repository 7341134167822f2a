package binder

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var (
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	durationType        = reflect.TypeFor[time.Duration]()
)

// lookupFunc returns the raw values for a parameter name.
type lookupFunc func(name string) ([]string, bool)

// structTarget returns the struct value behind v.
func structTarget(v any) (reflect.Value, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return reflect.Value{}, ErrInvalidTarget
	}
	rv = rv.Elem()
	if rv.Kind() != reflect.Struct {
		return reflect.Value{}, ErrInvalidTarget
	}
	return rv, nil
}

// decodeValues fills the fields of v tagged with tag from lookup.
// Untagged fields are looked up by their lower-cased name; "-" skips a field.
func decodeValues(v any, tag string, lookup lookupFunc, kind error) error {
	rv, err := structTarget(v)
	if err != nil {
		return fmt.Errorf("%w: %w", kind, err)
	}

	rt := rv.Type()
	for i := range rt.NumField() {
		sf := rt.Field(i)
		field := rv.Field(i)
		if !field.CanSet() {
			continue
		}

		name, ok := paramName(sf, tag)
		if !ok {
			continue
		}

		raw, found := lookup(name)
		if !found || len(raw) == 0 {
			continue
		}

		if err := setValue(field, raw); err != nil {
			return fmt.Errorf("%w: field %s: %w", kind, sf.Name, err)
		}
	}
	return nil
}

func paramName(sf reflect.StructField, tag string) (string, bool) {
	value, ok := sf.Tag.Lookup(tag)
	if !ok {
		return strings.ToLower(sf.Name), true
	}
	name, _, _ := strings.Cut(value, ",")
	if name == "-" || name == "" {
		return "", false
	}
	return name, true
}

// setValue converts raw into field. Slices take every value, splitting
// comma-separated ones; scalars take the first.
func setValue(field reflect.Value, raw []string) error {
	if field.Kind() == reflect.Pointer {
		if field.IsNil() {
			field.Set(reflect.New(field.Type().Elem()))
		}
		return setValue(field.Elem(), raw)
	}

	if reflect.PointerTo(field.Type()).Implements(textUnmarshalerType) {
		return field.Addr().Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw[0]))
	}

	if field.Kind() == reflect.Slice {
		var parts []string
		for _, r := range raw {
			for p := range strings.SplitSeq(r, ",") {
				parts = append(parts, strings.TrimSpace(p))
			}
		}
		slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
		for i, p := range parts {
			if err := setValue(slice.Index(i), []string{p}); err != nil {
				return err
			}
		}
		field.Set(slice)
		return nil
	}

	return setScalar(field, raw[0])
}

func setScalar(field reflect.Value, s string) error {
	if field.Type() == durationType {
		d, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q", s)
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(s)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(s, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid integer %q", s)
		}
		field.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(s, 10, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid unsigned integer %q", s)
		}
		field.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(s, field.Type().Bits())
		if err != nil {
			return fmt.Errorf("invalid float %q", s)
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := parseBool(s)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported type %s", field.Type())
	}
	return nil
}

// parseBool also accepts the values HTML checkboxes and humans send.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes":
		return true, nil
	case "off", "no", "":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid bool %q", s)
	}
	return b, nil
}
