package middleware

import (
	"testing"

	"github.com/vango-dev/helm/pkg/router"
	"github.com/vango-dev/helm/pkg/source"
)

func newTestRouter(t *testing.T, handlers ...router.HandlerFunc) *router.Router {
	t.Helper()
	r := router.New(source.NewMemory(""))
	t.Cleanup(r.Stop)
	r.Use(handlers...)
	return r
}

func stop(c *router.Context, next func()) {}

func pass(c *router.Context, next func()) { next() }
