// Package errors provides structured, actionable error messages for helm.
//
// Every error carries a code (e.g. "H001") registered with a category, a
// short message and a detail paragraph. Callers enrich it with the location of
// the problem and a hint on how to fix it.
//
// # Error Categories
//
//   - compile: malformed route templates rejected at registration time
//   - runtime: dispatch contract violations (continuation called twice)
//   - config: manifest loading and validation
//   - cli: command line usage
//
// # Usage
//
//	err := errors.New("H001").
//	    WithPattern("/user/:id(\\d+", 9).
//	    WithSuggestion("Close the parameter pattern with ')'")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR H001: Invalid route pattern
//	//
//	//   pattern:1:10
//	//
//	//   → 1 │ /user/:id(\d+
//	//       │          ^
//	//
//	//   Hint: Close the parameter pattern with ')'
package errors
