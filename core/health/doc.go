// Package health provides probe handlers for orchestrators and load balancers.
//
//	r.Get("/health/live", health.Liveness[*router.Context])
//	r.Get("/health/ready", health.Readiness[*router.Context](log, db.Ping))
//	r.Get("/ping", health.NoContent[*router.Context])
//
// Readiness checks have the signature func(context.Context) error and run in
// order with the request context; the first failure answers 503.
package health
