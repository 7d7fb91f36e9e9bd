package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/vango-dev/helm/pkg/router"
)

// Recover creates a handler that recovers a panic in the rest of the chain
// and logs it with the stack. The dispatch ends at the panic. A nil logger
// uses the dispatch logger from c.Logger().
func Recover(logger *slog.Logger) router.HandlerFunc {
	return func(c *router.Context, next func()) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			log := c.Logger()
			if logger != nil {
				log = logger.With("dispatch_id", c.ID, "path", c.Path)
			}
			log.Error("handler panicked",
				"code", "H003",
				"panic", fmt.Sprint(r),
				"route", c.Route(),
				"stack", string(debug.Stack()),
			)
		}()

		next()
	}
}
