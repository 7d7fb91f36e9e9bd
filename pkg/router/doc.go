// Package router implements helm's ordered path router.
//
// A Router owns a chain of handlers. Each call to On compiles one Route from a
// path template and appends one adapter per callback; dispatching a path walks
// the chain in registration order. An adapter whose Route matches runs its
// callback, which decides whether the chain continues by calling next.
// Adapters that do not match call next themselves.
//
// # Patterns
//
//	r.On("*", logAll)                  // catch-all, same as "(.*)"
//	r.On("/user/:name", showUser)      // named parameter
//	r.On("/user/:id(\\d+)", byID)      // parameter with a custom pattern
//	r.On("/blog/(\\d{4})/*", archive)  // positional captures
//
// Query strings are never part of matching and the path is percent-decoded
// before it is tested. See package pathexp for the full template syntax.
//
// # Dispatch
//
//	r := router.New(source.NewMemory(""), router.WithPrefix("!/"))
//	r.On("/user/:name", func(c *router.Context, next func()) {
//	    fmt.Println(c.Params.Get("name"))
//	    // not calling next stops the chain here
//	})
//	r.Dispatch("/user/jack")
//
// Named parameters bind first-writer-wins for the whole dispatch: when two
// matching routes capture the same name, the earlier route's value is kept.
// Positional captures are appended in order.
//
// # Path Source
//
// The Router subscribes to its Source on construction and dispatches
// GetPath() on every change notification. SetPath writes prefix+path back to
// the source; SetPath(path, Silent()) updates the source without dispatching.
//
// # Continuations
//
// next is synchronous: it runs the rest of the chain before returning, so a
// handler can do work after calling it. Calling next more than once from one
// handler invocation is a caller error; extra calls are ignored and logged.
package router
