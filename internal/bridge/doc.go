// Package bridge serves manifest routers to browsers.
//
// A page loads /helm.js, which connects to the socket endpoint and reports
// its location hash. Each connection gets its own router over a
// source.Conn. The router's routes come from the manifest: a matching route
// reports the match to the page as a "route" message, then redirects,
// continues or stops as the manifest says.
//
// Messages sent by the page:
//
//	{"type": "hashchange", "path": "!/user/ann"}
//
// Messages sent to the page:
//
//	{"type": "navigate", "path": "!/login"}
//	{"type": "route", "name": "user", "pattern": "/user/:name", "path": "/user/ann", "params": {"name": "ann"}}
package bridge
