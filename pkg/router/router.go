package router

import (
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Option configures a Router.
type Option func(*Router)

// WithPrefix sets the string stripped from the front of the observed path and
// prepended on SetPath, e.g. "!/" for hashbang URLs.
func WithPrefix(prefix string) Option {
	return func(r *Router) {
		r.prefix = prefix
	}
}

// WithLogger sets the logger used for dispatch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRouteOptions sets route options applied to every pattern given to On.
func WithRouteOptions(opts ...RouteOption) Option {
	return func(r *Router) {
		r.routeOpts = append(r.routeOpts, opts...)
	}
}

// Router dispatches paths through an ordered chain of handlers.
//
// Registration and dispatch may happen on different goroutines. A dispatch
// works on a snapshot of the chain taken when it starts.
type Router struct {
	prefix    string
	source    Source
	logger    *slog.Logger
	routeOpts []RouteOption

	mu     sync.RWMutex
	chain  []HandlerFunc
	routes []RouteInfo

	depth atomic.Int32

	subMu       sync.Mutex
	unsubscribe func()
	silencing   bool
	silenced    string
}

// New creates a Router reading paths from source and subscribes it to the
// source's change notifications. It panics if source is nil.
func New(source Source, opts ...Option) *Router {
	if source == nil {
		panic("router: nil Source")
	}

	r := &Router{
		source: source,
		logger: slog.Default().With("component", "router"),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.Start()
	return r
}

// On registers callbacks for pattern. Every call compiles a new Route, and
// each callback gets its own chain entry, in argument order. If the pattern
// does not compile nothing is registered.
func (r *Router) On(pattern string, callbacks ...HandlerFunc) error {
	route, err := NewRoute(pattern, r.routeOpts...)
	if err != nil {
		return err
	}
	r.OnRoute(route, callbacks...)
	return nil
}

// MustOn is like On but panics if the pattern does not compile.
func (r *Router) MustOn(pattern string, callbacks ...HandlerFunc) {
	if err := r.On(pattern, callbacks...); err != nil {
		panic(err)
	}
}

// OnRoute registers callbacks for an already compiled route, for callers
// that need per-route options.
func (r *Router) OnRoute(route *Route, callbacks ...HandlerFunc) {
	adapters := make([]HandlerFunc, len(callbacks))
	for i, cb := range callbacks {
		if cb == nil {
			panic("router: nil callback for " + route.Pattern())
		}
		adapters[i] = route.Middleware(cb)
	}

	r.mu.Lock()
	r.chain = append(r.chain, adapters...)
	r.routes = append(r.routes, RouteInfo{Pattern: route.Pattern(), Handlers: len(adapters)})
	r.mu.Unlock()
}

// Use appends handlers that run for every dispatch that reaches them.
func (r *Router) Use(handlers ...HandlerFunc) {
	for _, h := range handlers {
		if h == nil {
			panic("router: nil handler")
		}
	}

	r.mu.Lock()
	r.chain = append(r.chain, handlers...)
	r.routes = append(r.routes, RouteInfo{Handlers: len(handlers)})
	r.mu.Unlock()
}

// Routes returns the registrations in order.
func (r *Router) Routes() []RouteInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]RouteInfo, len(r.routes))
	copy(out, r.routes)
	return out
}

// Dispatch runs path through the chain. An empty path dispatches the
// current observed path.
func (r *Router) Dispatch(path string) {
	r.DispatchContext(nil, path)
}

// DispatchContext is like Dispatch but uses c, which lets the caller pass
// values and a context.Context to the handlers. Path and Params of c are
// reset; a nil c gets a fresh Context.
func (r *Router) DispatchContext(c *Context, path string) {
	if c == nil {
		c = NewContext(nil)
	}
	if path == "" {
		path = r.GetPath()
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Path = path
	c.Params = &Params{}
	c.matched = nil
	c.exhausted = false
	c.logger = r.logger.With("dispatch_id", c.ID, "path", path)
	c.depth = int(r.depth.Add(1)) - 1
	defer r.depth.Add(-1)

	r.mu.RLock()
	chain := r.chain[:len(r.chain):len(r.chain)]
	r.mu.RUnlock()

	r.walk(c, chain, 0)
}

// walk runs chain[i]. Its continuation walks i+1, so every dispatch owns its
// position and nested dispatches do not interfere.
func (r *Router) walk(c *Context, chain []HandlerFunc, i int) {
	if i >= len(chain) {
		c.exhausted = true
		return
	}

	called := false
	chain[i](c, func() {
		if called {
			c.Logger().Warn("continuation called more than once", "code", "H002", "index", i)
			return
		}
		called = true
		r.walk(c, chain, i+1)
	})
}

// GetPath returns the observed path with the prefix removed when the path
// starts with it.
func (r *Router) GetPath() string {
	path := r.source.Path()
	if r.prefix != "" && strings.HasPrefix(path, r.prefix) {
		path = path[len(r.prefix):]
	}
	return path
}

// SetPath writes prefix+path to the source, which dispatches it through the
// change notification. With Silent the path is updated without a dispatch.
func (r *Router) SetPath(path string, opts ...NavigateOption) {
	var o navigateOptions
	for _, opt := range opts {
		opt(&o)
	}

	raw := r.prefix + path
	if o.silent {
		if r.source.Path() == raw {
			return
		}
		r.subMu.Lock()
		if r.unsubscribe != nil {
			r.silencing = true
			r.silenced = raw
		}
		r.subMu.Unlock()
	}

	r.source.SetPath(raw)
}

// Go navigates to path.
func (r *Router) Go(path string) {
	r.SetPath(path)
}

// Start subscribes to the source. It does nothing when already subscribed.
func (r *Router) Start() {
	r.subMu.Lock()
	defer r.subMu.Unlock()

	if r.unsubscribe != nil {
		return
	}
	r.unsubscribe = r.source.Subscribe(r.onChange)
}

// Stop unsubscribes from the source. It does nothing when not subscribed.
func (r *Router) Stop() {
	r.subMu.Lock()
	unsubscribe := r.unsubscribe
	r.unsubscribe = nil
	r.silencing = false
	r.subMu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Subscribed reports whether the router listens to its source.
func (r *Router) Subscribed() bool {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	return r.unsubscribe != nil
}

// Prefix returns the configured path prefix.
func (r *Router) Prefix() string {
	return r.prefix
}

func (r *Router) onChange() {
	raw := r.source.Path()

	r.subMu.Lock()
	if r.silencing && raw == r.silenced {
		r.silencing = false
		r.subMu.Unlock()
		return
	}
	r.subMu.Unlock()

	r.Dispatch(r.GetPath())
}
