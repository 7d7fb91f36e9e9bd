// Package pathexp compiles path templates into anchored regular expressions.
//
// Template syntax:
//
//	/user/:name          named parameter, matches one segment
//	/user/:name?         optional parameter, the leading "/" is optional too
//	/file/:name.:ext     "." before a parameter narrows it to [^/.]
//	/user/:id(\d+)       named parameter with a custom RE2 pattern
//	/blog/(\d{4})        positional (unnamed) group
//	/assets/*            positional catch-all, same as (.*)
//	/literal\:colon      backslash escapes the next character
//
// Unless Options.Strict is set a trailing slash is optional, and unless
// Options.CaseSensitive is set matching ignores case.
//
// Exec returns the captures of a match aligned with Groups: index 0 is the
// whole match and index i+1 belongs to Groups()[i].
package pathexp
