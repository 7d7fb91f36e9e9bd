package bridge

import (
	"github.com/vango-dev/helm/internal/config"
	"github.com/vango-dev/helm/pkg/router"
)

// MessageRoute is the type of a Match sent to the page.
const MessageRoute = "route"

// MaxRedirectDepth is the dispatch depth past which RouteHandler drops
// redirects instead of following them.
const MaxRedirectDepth = 16

// Match describes a manifest route that matched a dispatch.
type Match struct {
	Type       string            `json:"type"`
	DispatchID string            `json:"dispatchId"`
	Name       string            `json:"name"`
	Pattern    string            `json:"pattern"`
	Path       string            `json:"path"`
	Params     map[string]string `json:"params"`
	Positional []string          `json:"positional,omitempty"`
	Redirect   string            `json:"redirect,omitempty"`
}

// RouteHandler returns the callback for a manifest route. It reports the
// match, then navigates r to the route's redirect, continues the chain if
// the route says so, or stops. Redirects nested deeper than
// MaxRedirectDepth are logged and dropped.
func RouteHandler(r *router.Router, route config.Route, report func(Match)) router.HandlerFunc {
	return func(c *router.Context, next func()) {
		report(Match{
			Type:       MessageRoute,
			DispatchID: c.ID,
			Name:       route.Name,
			Pattern:    route.Pattern,
			Path:       c.Path,
			Params:     c.Params.Named(),
			Positional: c.Params.Positional(),
			Redirect:   route.Redirect,
		})

		switch {
		case route.Redirect != "":
			if c.Depth() >= MaxRedirectDepth {
				c.Logger().Error("redirect dropped", "code", "H004",
					"route", route.Name, "redirect", route.Redirect, "depth", c.Depth())
				return
			}
			r.Go(route.Redirect)
		case route.Continue:
			next()
		}
	}
}
