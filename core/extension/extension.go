// Package extension provides the per-request typed side channel used by
// middleware to pass computed values to inner middleware and handlers.
//
// A Map holds at most one value per type. Writes replace the previous value
// of the same type. A Map belongs to a single request and is not safe for
// concurrent use by multiple goroutines.
//
//	type User struct{ ID string }
//
//	func auth(ctx *router.Context, next *handler.Next[*router.Context]) (*handler.Response, error) {
//		extension.Set(ctx.Extensions(), User{ID: "42"})
//		return next.Run(ctx)
//	}
//
//	func profile(ctx *router.Context) (*handler.Response, error) {
//		user, err := extension.Get[User](ctx.Extensions())
//		if err != nil {
//			return nil, response.ErrUnauthorized
//		}
//		return response.String(user.ID), nil
//	}
package extension

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrNotFound is returned when no value of the requested type is stored.
	ErrNotFound = errors.New("extension not found")
	// ErrNilMap is returned when a nil map is written to.
	ErrNilMap = errors.New("nil extension map")
)

// Map is a type-keyed container of request-scoped values.
type Map struct {
	values map[reflect.Type]any
}

// New returns an empty Map.
func New() *Map {
	return &Map{}
}

// Len returns the number of stored values.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.values)
}

// Set stores v under its static type T, replacing any previous value of T.
func Set[T any](m *Map, v T) error {
	if m == nil {
		return ErrNilMap
	}
	if m.values == nil {
		m.values = make(map[reflect.Type]any, 4)
	}
	m.values[reflect.TypeFor[T]()] = v
	return nil
}

// Get returns the value stored for type T.
func Get[T any](m *Map) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()
	if m == nil || m.values == nil {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, t)
	}

	v, ok := m.values[t]
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, t)
	}

	typed, ok := v.(T)
	if !ok {
		// Only reachable for a nil interface value stored under T.
		return zero, fmt.Errorf("%w: %s", ErrNotFound, t)
	}
	return typed, nil
}

// Has reports whether a value of type T is stored.
func Has[T any](m *Map) bool {
	if m == nil || m.values == nil {
		return false
	}
	_, ok := m.values[reflect.TypeFor[T]()]
	return ok
}

// Delete removes the value stored for type T.
func Delete[T any](m *Map) {
	if m == nil || m.values == nil {
		return
	}
	delete(m.values, reflect.TypeFor[T]())
}
