package router

// NavigateOption configures SetPath.
type NavigateOption func(*navigateOptions)

type navigateOptions struct {
	silent bool
}

// Silent updates the observed path without dispatching it. The notification
// for the silent path is the one suppressed, so changes to other paths that
// arrive in between still dispatch.
func Silent() NavigateOption {
	return func(o *navigateOptions) {
		o.silent = true
	}
}
