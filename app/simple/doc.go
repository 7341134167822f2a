// Package simple assembles a runnable HTTP service from the framework parts:
// environment configuration, a slog logger, shared state, the router with
// request ID, client IP, metrics, tracing, logging, rate limit, body limit
// and timeout middleware, a Prometheus endpoint, health probes and the HTTP
// server.
//
//	app, err := simple.NewApp()
//	if err != nil {
//		log.Fatal(err)
//	}
//	app.Router().Get("/hello/:name", func(ctx *simple.Context) (*handler.Response, error) {
//		name, _ := ctx.Param("name")
//		return response.String("hello " + name), nil
//	})
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := app.Run(ctx); err != nil {
//		log.Fatal(err)
//	}
package simple
