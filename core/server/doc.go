// Package server runs an http.Handler with production timeouts and graceful
// shutdown tied to a context.
//
//	r := router.New[*router.Context]()
//	r.Get("/", home)
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//
//	srv := server.New(":8080", server.WithLogger(log))
//	if err := srv.Start(ctx, r); err != nil {
//		log.Error("server failed", logger.Error(err))
//	}
//
// Start seals routers before accepting connections. Run returns a func() error
// for use with errgroup.
package server
