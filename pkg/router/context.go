package router

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
)

// Context is the state of one dispatch. It is created when the dispatch
// starts, passed to every handler in the chain and dropped when the chain
// ends.
type Context struct {
	// ID identifies the dispatch in logs and traces.
	ID string

	// Path is the dispatched path with the router prefix removed. It keeps
	// any query string.
	Path string

	// Params are the parameters captured by matching routes.
	Params *Params

	values    map[any]any
	std       context.Context
	logger    *slog.Logger
	matched   []string
	exhausted bool
	depth     int
}

// NewContext returns an empty context. Callers use it with
// Router.DispatchContext to pass values into a dispatch.
func NewContext(std context.Context) *Context {
	if std == nil {
		std = context.Background()
	}
	return &Context{std: std, Params: &Params{}}
}

// SetValue stores a value for later handlers.
func (c *Context) SetValue(key, value any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = value
}

// Value returns a value stored with SetValue.
func (c *Context) Value(key any) any {
	return c.values[key]
}

// StdContext returns the context.Context carried through the chain.
func (c *Context) StdContext() context.Context {
	if c.std == nil {
		return context.Background()
	}
	return c.std
}

// SetStdContext replaces the context.Context seen by later handlers.
func (c *Context) SetStdContext(ctx context.Context) {
	c.std = ctx
}

// Logger returns the router's logger annotated with the dispatch.
func (c *Context) Logger() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}

// Query parses the query string of Path.
func (c *Context) Query() url.Values {
	_, raw, ok := strings.Cut(c.Path, "?")
	if !ok {
		return url.Values{}
	}
	q, err := url.ParseQuery(raw)
	if err != nil {
		return url.Values{}
	}
	return q
}

// Matched returns the patterns of the routes that matched so far, in order.
func (c *Context) Matched() []string {
	out := make([]string, len(c.matched))
	copy(out, c.matched)
	return out
}

// Route returns the pattern of the most recent matching route, or "".
func (c *Context) Route() string {
	if len(c.matched) == 0 {
		return ""
	}
	return c.matched[len(c.matched)-1]
}

// Exhausted reports whether the chain ran past its last handler, meaning no
// handler stopped the dispatch.
func (c *Context) Exhausted() bool {
	return c.exhausted
}

// Depth returns the number of dispatches of the same router that were still
// running when this one started. A dispatch started by a handler through Go
// or SetPath has a depth one greater than the dispatch that started it.
func (c *Context) Depth() int {
	return c.depth
}
