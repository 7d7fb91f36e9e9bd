package router

// HandlerFunc is a chain entry. It receives the dispatch context and a
// continuation that runs the rest of the chain. Not calling next ends the
// dispatch.
type HandlerFunc func(c *Context, next func())

// Source is the observed path together with its change notifications.
//
// SetPath must notify subscribers when the path changes. Writing the current
// path again may be a no-op.
type Source interface {
	// Path returns the current raw path, including any prefix.
	Path() string

	// SetPath replaces the current raw path.
	SetPath(path string)

	// Subscribe registers fn for change notifications and returns a function
	// that removes it.
	Subscribe(fn func()) (unsubscribe func())
}

// RouteInfo describes a registration for inspection.
type RouteInfo struct {
	// Pattern is the template passed to On. Empty for Use entries.
	Pattern string

	// Handlers is the number of callbacks registered with the pattern.
	Handlers int
}
