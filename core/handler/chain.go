package handler

// Chain is the resolved sequence of middleware plus the terminal handler for
// one route. It is built once at registration time and safe for concurrent use.
type Chain[C Context] struct {
	middlewares []Middleware[C]
	handler     HandlerFunc[C]
}

// NewChain compiles middlewares around h. Middlewares run in the given order,
// the first one being the outermost.
func NewChain[C Context](h HandlerFunc[C], middlewares ...Middleware[C]) *Chain[C] {
	if h == nil {
		panic(ErrNilHandler)
	}

	mws := make([]Middleware[C], 0, len(middlewares))
	for _, mw := range middlewares {
		if mw != nil {
			mws = append(mws, mw)
		}
	}

	return &Chain[C]{
		middlewares: mws,
		handler:     h,
	}
}

// Len returns the number of links including the handler.
func (c *Chain[C]) Len() int {
	return len(c.middlewares) + 1
}

// Run executes the chain for a single request.
func (c *Chain[C]) Run(ctx C) (*Response, error) {
	n := &Next[C]{chain: c}
	return n.Run(ctx)
}

// Next is the continuation handed to a middleware. It represents every link
// after the current one and can be consumed once; further calls fail with
// ErrContinuationReused without running anything.
type Next[C Context] struct {
	chain *Chain[C]
	index int
	used  bool
}

// Run invokes the rest of the chain.
// A cancelled request context stops the chain before the next link starts.
func (n *Next[C]) Run(ctx C) (*Response, error) {
	if n.used {
		return nil, ErrContinuationReused
	}
	n.used = true

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		resp *Response
		err  error
	)
	if n.index < len(n.chain.middlewares) {
		resp, err = n.chain.middlewares[n.index](ctx, &Next[C]{chain: n.chain, index: n.index + 1})
	} else {
		resp, err = n.chain.handler(ctx)
	}

	if err == nil && resp == nil {
		return nil, ErrNilResponse
	}
	return resp, err
}

// Called reports whether the continuation has been consumed.
func (n *Next[C]) Called() bool {
	return n.used
}
