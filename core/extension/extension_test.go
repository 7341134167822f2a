package extension_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/core/extension"
)

type user struct {
	ID string
}

type requestStart int64

type greeter interface {
	Greet() string
}

type english struct{}

func (english) Greet() string { return "hello" }

func TestSetGet(t *testing.T) {
	t.Parallel()

	t.Run("stores and returns value by type", func(t *testing.T) {
		t.Parallel()

		m := extension.New()
		require.NoError(t, extension.Set(m, user{ID: "42"}))

		got, err := extension.Get[user](m)
		require.NoError(t, err)
		assert.Equal(t, "42", got.ID)
	})

	t.Run("last write wins", func(t *testing.T) {
		t.Parallel()

		m := extension.New()
		require.NoError(t, extension.Set(m, user{ID: "1"}))
		require.NoError(t, extension.Set(m, user{ID: "2"}))

		got, err := extension.Get[user](m)
		require.NoError(t, err)
		assert.Equal(t, "2", got.ID)
		assert.Equal(t, 1, m.Len())
	})

	t.Run("named types are distinct slots", func(t *testing.T) {
		t.Parallel()

		m := extension.New()
		require.NoError(t, extension.Set(m, requestStart(10)))
		require.NoError(t, extension.Set(m, int64(20)))

		start, err := extension.Get[requestStart](m)
		require.NoError(t, err)
		assert.Equal(t, requestStart(10), start)

		raw, err := extension.Get[int64](m)
		require.NoError(t, err)
		assert.Equal(t, int64(20), raw)
	})

	t.Run("missing type fails explicitly", func(t *testing.T) {
		t.Parallel()

		m := extension.New()
		_, err := extension.Get[user](m)
		assert.ErrorIs(t, err, extension.ErrNotFound)
	})

	t.Run("pointer type differs from value type", func(t *testing.T) {
		t.Parallel()

		m := extension.New()
		require.NoError(t, extension.Set(m, &user{ID: "ptr"}))

		_, err := extension.Get[user](m)
		assert.ErrorIs(t, err, extension.ErrNotFound)

		got, err := extension.Get[*user](m)
		require.NoError(t, err)
		assert.Equal(t, "ptr", got.ID)
	})

	t.Run("interface slot keyed by static type", func(t *testing.T) {
		t.Parallel()

		m := extension.New()
		require.NoError(t, extension.Set[greeter](m, english{}))

		g, err := extension.Get[greeter](m)
		require.NoError(t, err)
		assert.Equal(t, "hello", g.Greet())

		assert.False(t, extension.Has[english](m))
	})

	t.Run("nil map", func(t *testing.T) {
		t.Parallel()

		assert.ErrorIs(t, extension.Set(nil, user{}), extension.ErrNilMap)
		_, err := extension.Get[user](nil)
		assert.ErrorIs(t, err, extension.ErrNotFound)
		assert.False(t, extension.Has[user](nil))
		assert.Equal(t, 0, (*extension.Map)(nil).Len())
	})
}

func TestHasDelete(t *testing.T) {
	t.Parallel()

	m := extension.New()
	assert.False(t, extension.Has[user](m))

	require.NoError(t, extension.Set(m, user{ID: "1"}))
	assert.True(t, extension.Has[user](m))

	extension.Delete[user](m)
	assert.False(t, extension.Has[user](m))

	extension.Delete[user](m)
	extension.Delete[user](nil)
}
