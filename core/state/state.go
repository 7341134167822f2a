package state

import (
	"errors"
	"fmt"
	"reflect"
)

var (
	// ErrTypeNotPresent is returned when no value of the requested type was registered.
	ErrTypeNotPresent = errors.New("type not present in state")
	// ErrNilContainer is returned when a lookup is made on a nil container.
	ErrNilContainer = errors.New("nil state container")
)

// Container is an immutable set of values keyed by their dynamic type.
// It is safe for concurrent use because nothing is written after New returns.
type Container struct {
	values map[reflect.Type]any
	order  []reflect.Type
}

// New builds a container from the given values. Nil values are ignored.
// When two values share a type, the later one wins.
func New(values ...any) *Container {
	c := &Container{
		values: make(map[reflect.Type]any, len(values)),
		order:  make([]reflect.Type, 0, len(values)),
	}

	for _, v := range values {
		if v == nil {
			continue
		}
		t := reflect.TypeOf(v)
		if _, exists := c.values[t]; !exists {
			c.order = append(c.order, t)
		}
		c.values[t] = v
	}

	return c
}

// Len returns the number of distinct types held by the container.
func (c *Container) Len() int {
	if c == nil {
		return 0
	}
	return len(c.order)
}

// lookup finds a value assignable to t. Exact type matches are preferred.
func (c *Container) lookup(t reflect.Type) (any, bool) {
	if v, ok := c.values[t]; ok {
		return v, true
	}
	if t.Kind() != reflect.Interface {
		return nil, false
	}
	for _, vt := range c.order {
		if vt.Implements(t) {
			return c.values[vt], true
		}
	}
	return nil, false
}

// Get returns the value of type T held by the container.
func Get[T any](c *Container) (T, error) {
	var zero T
	if c == nil {
		return zero, ErrNilContainer
	}

	t := reflect.TypeFor[T]()
	v, ok := c.lookup(t)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrTypeNotPresent, t)
	}

	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrTypeNotPresent, t)
	}
	return typed, nil
}

// MustGet is like Get but panics when the value is missing.
// Intended for handlers whose state dependencies are wired at startup.
func MustGet[T any](c *Container) T {
	v, err := Get[T](c)
	if err != nil {
		panic(err)
	}
	return v
}

// Has reports whether a value of type T is present.
func Has[T any](c *Container) bool {
	_, err := Get[T](c)
	return err == nil
}
