package router

// Chain combines handlers into a single chain entry. The handlers run in
// order and the entry continues with the outer chain after the last one
// calls next.
func Chain(handlers ...HandlerFunc) HandlerFunc {
	return func(c *Context, next func()) {
		var step func(i int)
		step = func(i int) {
			if i >= len(handlers) {
				next()
				return
			}
			called := false
			handlers[i](c, func() {
				if called {
					c.Logger().Warn("continuation called more than once", "code", "H002", "chained", i)
					return
				}
				called = true
				step(i + 1)
			})
		}
		step(0)
	}
}

// When runs h only for dispatches where cond holds and otherwise continues.
func When(cond func(c *Context) bool, h HandlerFunc) HandlerFunc {
	return func(c *Context, next func()) {
		if !cond(c) {
			next()
			return
		}
		h(c, next)
	}
}
