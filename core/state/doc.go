// Package state holds application-wide values shared by every request.
//
// A Container is built once at startup and handed to the router by reference.
// It never copies or locks the values it holds: a value that is mutated by
// concurrent requests must bring its own synchronization.
//
//	type Counter struct {
//		mu sync.Mutex
//		n  int
//	}
//
//	func (c *Counter) Inc() {
//		c.mu.Lock()
//		defer c.mu.Unlock()
//		c.n++
//	}
//
//	st := state.New(&Counter{}, db)
//	r := router.New[*router.Context](router.WithState[*router.Context](st))
//
//	r.Post("/hits", func(ctx *router.Context) (*handler.Response, error) {
//		counter, err := state.Get[*Counter](ctx.State())
//		if err != nil {
//			return nil, err
//		}
//		counter.Inc()
//		return response.NoContent(), nil
//	})
//
// Lookup is keyed by the dynamic type of each value. Asking for an interface
// type returns the first value (in registration order) that implements it.
package state
