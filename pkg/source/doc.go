// Package source provides path sources for router.Router.
//
// A source holds the observed path, the equivalent of a browser's location
// hash, and notifies subscribers when it changes. Memory keeps the path in
// process. Conn mirrors the hash of a browser connected over a WebSocket:
// the page reports hash changes and the server navigates the page.
//
// Both follow hashchange semantics: notifications fire only when the path
// actually changes, synchronously on the goroutine that changed it.
package source
