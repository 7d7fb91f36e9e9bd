// Package middleware provides chain handlers for observing dispatches.
//
// Every constructor returns a router.HandlerFunc meant to be mounted with
// Router.Use before the routes it observes. A handler placed first sees the
// whole dispatch: when its call to next returns, every later handler has
// run, so the matched routes and the outcome are known.
//
//	r := router.New(src)
//	r.Use(
//	    middleware.Recover(nil),
//	    middleware.Logger(nil),
//	    middleware.OpenTelemetry(middleware.WithTracerName("shop")),
//	    middleware.Prometheus(),
//	)
//	r.MustOn("/product/:id", showProduct)
//
// # Prometheus Metrics
//
// Prometheus collects:
//   - helm_dispatches_total: dispatches by final route and outcome
//   - helm_dispatch_duration_seconds: dispatch duration by final route
//   - helm_route_matches_total: matches per route pattern
//   - helm_active_connections: open browser connections (serve)
//   - helm_socket_errors_total: browser connection errors by type
//
// The outcome label is "handled" when a callback ended the dispatch and
// "exhausted" when it ran past the last handler. The route label is the
// pattern of the last matching route, or "none".
//
// # Context Propagation
//
// OpenTelemetry replaces the context's StdContext with one carrying the span,
// so handlers that make outgoing calls inherit the trace:
//
//	func showProduct(c *router.Context, next func()) {
//	    req, _ := http.NewRequestWithContext(c.StdContext(), "GET", url, nil)
//	    ...
//	}
package middleware
