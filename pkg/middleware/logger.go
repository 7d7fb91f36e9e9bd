package middleware

import (
	"log/slog"
	"time"

	"github.com/vango-dev/helm/pkg/router"
)

// Logger creates a handler that logs every dispatch once it is done. A nil
// logger uses the dispatch logger from c.Logger().
func Logger(logger *slog.Logger) router.HandlerFunc {
	return func(c *router.Context, next func()) {
		log := c.Logger()
		if logger != nil {
			log = logger.With("dispatch_id", c.ID, "path", c.Path)
		}

		start := time.Now()
		next()

		route := c.Route()
		if route == "" {
			route = noRoute
		}
		outcome := OutcomeHandled
		if c.Exhausted() {
			outcome = OutcomeExhausted
		}

		log.Info("dispatch",
			"route", route,
			"outcome", outcome,
			"params", c.Params.Len(),
			"duration", time.Since(start),
		)
	}
}
