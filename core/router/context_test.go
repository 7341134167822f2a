package router_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/dispatch/core/extension"
	"github.com/dmitrymomot/dispatch/core/handler"
	"github.com/dmitrymomot/dispatch/core/response"
	"github.com/dmitrymomot/dispatch/core/router"
	"github.com/dmitrymomot/dispatch/core/state"
)

type counter struct {
	hits atomic.Int64
}

type currentUser struct {
	Name string
}

func TestParamErrors(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/users/:id", func(ctx *router.Context) (*handler.Response, error) {
		_, err := ctx.Param("missing")
		assert.ErrorIs(t, err, router.ErrParamNotFound)

		params := ctx.Params()
		params["id"] = "mutated"
		id, _ := ctx.Param("id")
		return response.String(id), nil
	})

	assert.Equal(t, "7", serve(t, r, http.MethodGet, "/users/7").Body.String())
}

func TestParamAs(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/n/:v", func(ctx *router.Context) (*handler.Response, error) {
		v, err := router.ParamAs[int64](ctx, "v")
		if err != nil {
			return nil, err
		}
		return response.String(strings.Repeat("x", int(v))), nil
	})
	r.Get("/b/:v", func(ctx *router.Context) (*handler.Response, error) {
		v, err := router.ParamAs[bool](ctx, "v")
		if err != nil {
			return nil, err
		}
		if v {
			return response.String("yes"), nil
		}
		return response.String("no"), nil
	})
	r.Get("/missing", func(ctx *router.Context) (*handler.Response, error) {
		_, err := router.ParamAs[string](ctx, "v")
		return nil, err
	})

	assert.Equal(t, "xxx", serve(t, r, http.MethodGet, "/n/3").Body.String())
	assert.Equal(t, http.StatusBadRequest, serve(t, r, http.MethodGet, "/n/three").Code)
	assert.Equal(t, "yes", serve(t, r, http.MethodGet, "/b/true").Body.String())
	assert.Equal(t, http.StatusBadRequest, serve(t, r, http.MethodGet, "/missing").Code)
}

func TestQueryHelper(t *testing.T) {
	t.Parallel()

	type page struct {
		Page int `query:"page" validate:"min=1"`
	}

	r := router.New[*router.Context]()
	r.Get("/list", func(ctx *router.Context) (*handler.Response, error) {
		var p page
		if err := ctx.Query(&p); err != nil {
			return nil, err
		}
		return response.String("ok"), nil
	})

	assert.Equal(t, http.StatusOK, serve(t, r, http.MethodGet, "/list?page=2").Code)

	rec := serve(t, r, http.MethodGet, "/list?page=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "failed to decode query string", rec.Body.String())

	assert.Equal(t, http.StatusBadRequest, serve(t, r, http.MethodGet, "/list?page=0").Code)
}

func TestBodyHelpers(t *testing.T) {
	t.Parallel()

	type payload struct {
		Name string `json:"name" validate:"required"`
	}

	r := router.New(router.WithErrorHandler(response.JSONErrorHandler[*router.Context]))
	r.Post("/json", func(ctx *router.Context) (*handler.Response, error) {
		var p payload
		if err := ctx.BodyJSON(&p); err != nil {
			return nil, err
		}
		raw, err := ctx.BodyString()
		if err != nil {
			return nil, err
		}
		return response.String(p.Name + " " + raw), nil
	})

	post := func(ct, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/json", strings.NewReader(body))
		req.Header.Set("Content-Type", ct)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		return rec
	}

	rec := post("application/json", `{"name":"ann"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `ann {"name":"ann"}`, rec.Body.String())

	rec = post("text/plain", `{"name":"ann"}`)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = post("application/json", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post("application/json", `{"name":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Code    string `json:"code"`
		Details struct {
			Fields map[string]string `json:"fields"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "unprocessable_entity", body.Code)
	assert.Equal(t, map[string]string{"name": "required"}, body.Details.Fields)
}

func TestBodyForm(t *testing.T) {
	t.Parallel()

	type login struct {
		User string `form:"user" validate:"required"`
	}

	r := router.New[*router.Context]()
	r.Post("/login", func(ctx *router.Context) (*handler.Response, error) {
		var l login
		if err := ctx.BodyForm(&l); err != nil {
			return nil, err
		}
		return response.String(l.User), nil
	})

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("user=bob"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "bob", rec.Body.String())
}

func TestCookies(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/", func(ctx *router.Context) (*handler.Response, error) {
		c, err := ctx.Cookie("session")
		if err != nil {
			return nil, response.ErrUnauthorized.WithError(err)
		}
		resp := response.String(c.Value)
		resp.SetCookie(&http.Cookie{Name: "seen", Value: "1", Path: "/"})
		resp.RemoveCookie("legacy")
		return resp, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "abc"})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, "abc", rec.Body.String())
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)
	assert.Equal(t, "seen", cookies[0].Name)
	assert.Equal(t, "legacy", cookies[1].Name)
	assert.Equal(t, -1, cookies[1].MaxAge)

	assert.Equal(t, http.StatusUnauthorized, serve(t, r, http.MethodGet, "/").Code)
}

func TestExtensionsPassValuesInward(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Use(func(ctx *router.Context, next *handler.Next[*router.Context]) (*handler.Response, error) {
		if err := extension.Set(ctx.Extensions(), currentUser{Name: "ann"}); err != nil {
			return nil, err
		}
		ctx.SetValue("trace", "t-1")
		return next.Run(ctx)
	})
	r.Get("/me", func(ctx *router.Context) (*handler.Response, error) {
		u, err := extension.Get[currentUser](ctx.Extensions())
		if err != nil {
			return nil, err
		}
		trace, _ := ctx.Value("trace").(string)
		return response.String(u.Name + " " + trace), nil
	})

	assert.Equal(t, "ann t-1", serve(t, r, http.MethodGet, "/me").Body.String())
}

func TestExtensionsArePerRequest(t *testing.T) {
	t.Parallel()

	r := router.New[*router.Context]()
	r.Get("/", func(ctx *router.Context) (*handler.Response, error) {
		if extension.Has[currentUser](ctx.Extensions()) {
			return response.String("leaked"), nil
		}
		if err := extension.Set(ctx.Extensions(), currentUser{Name: "x"}); err != nil {
			return nil, err
		}
		return response.String("clean"), nil
	})

	for range 3 {
		assert.Equal(t, "clean", serve(t, r, http.MethodGet, "/").Body.String())
	}
}

func TestSharedStateUnderConcurrency(t *testing.T) {
	t.Parallel()

	hits := &counter{}
	r := router.New(router.WithState[*router.Context](state.New(hits)))
	r.Post("/hit", func(ctx *router.Context) (*handler.Response, error) {
		c, err := state.Get[*counter](ctx.State())
		if err != nil {
			return nil, err
		}
		c.hits.Add(1)
		return response.NoContent(), nil
	})

	const n = 1000
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/hit", nil)
			r.ServeHTTP(httptest.NewRecorder(), req)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(n), hits.hits.Load())
}
