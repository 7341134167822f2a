// Package logger builds slog loggers and provides attribute helpers with
// consistent key names.
//
//	log := logger.New(
//		logger.WithProduction("api"),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//
//	log.InfoContext(ctx, "request served",
//		logger.Method(r.Method),
//		logger.Path(r.URL.Path),
//		logger.StatusCode(200),
//		logger.Latency(time.Since(start)),
//	)
//
// Helpers such as Error and RequestID return an empty attribute for zero
// input, which slog drops, so callers need no nil checks.
package logger
