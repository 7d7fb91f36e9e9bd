package router

import (
	"errors"
	"net/url"
	"strings"

	herrors "github.com/vango-dev/helm/internal/errors"
	"github.com/vango-dev/helm/pkg/pathexp"
)

// catchAll is what the "*" pattern compiles as.
const catchAll = "(.*)"

// RouteOption configures how a route template is compiled.
type RouteOption func(*routeOptions)

type routeOptions struct {
	caseSensitive bool
	strict        bool
}

// CaseSensitive makes the route match case sensitively.
func CaseSensitive() RouteOption {
	return func(o *routeOptions) {
		o.caseSensitive = true
	}
}

// Strict makes a trailing slash significant.
func Strict() RouteOption {
	return func(o *routeOptions) {
		o.strict = true
	}
}

// Route is one compiled path template.
type Route struct {
	pattern string
	matcher *pathexp.Matcher
	groups  []pathexp.Group
}

// NewRoute compiles pattern. The only error is a template the compiler
// rejects, returned as an H001 error wrapping a *pathexp.SyntaxError.
func NewRoute(pattern string, opts ...RouteOption) (*Route, error) {
	var o routeOptions
	for _, opt := range opts {
		opt(&o)
	}

	path := pattern
	if path == "*" {
		path = catchAll
	}

	m, err := pathexp.Compile(path, pathexp.Options{
		CaseSensitive: o.caseSensitive,
		Strict:        o.strict,
	})
	if err != nil {
		he := herrors.New("H001").Wrap(err)
		var se *pathexp.SyntaxError
		if errors.As(err, &se) {
			he.WithPattern(path, se.Offset).WithSuggestion(se.Msg)
		}
		return nil, he
	}

	return &Route{
		pattern: pattern,
		matcher: m,
		groups:  m.Groups(),
	}, nil
}

// Pattern returns the template the route was created with.
func (r *Route) Pattern() string {
	return r.pattern
}

// Names returns the named parameters declared by the template, in order.
func (r *Route) Names() []string {
	return r.matcher.Names()
}

// Match reports whether path matches the route. The query string is ignored
// and the rest is percent-decoded first; a path that cannot be decoded does
// not match. On a match the captures are added to params, named ones only if
// the name is not bound yet. On no match params is left untouched.
func (r *Route) Match(path string, params *Params) bool {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	decoded, err := url.PathUnescape(path)
	if err != nil {
		return false
	}

	caps := r.matcher.Exec(decoded)
	if caps == nil {
		return false
	}

	for i, g := range r.groups {
		c := caps[i+1]
		if g.Positional() {
			params.Append(c.Value)
			continue
		}
		if c.Matched {
			params.Bind(g.Name, c.Value)
		}
	}
	return true
}

// Middleware returns the chain adapter for callback. The adapter runs
// callback when the dispatched path matches and otherwise calls next.
func (r *Route) Middleware(callback HandlerFunc) HandlerFunc {
	return func(c *Context, next func()) {
		if c.Params == nil {
			c.Params = &Params{}
		}
		if !r.Match(c.Path, c.Params) {
			next()
			return
		}
		c.matched = append(c.matched, r.pattern)
		callback(c, next)
	}
}

// String returns the compiled expression.
func (r *Route) String() string {
	return r.matcher.String()
}
