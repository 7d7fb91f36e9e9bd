package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
}

var registry = map[string]ErrorTemplate{
	// ============================================
	// Compile Errors (H001-H009)
	// ============================================

	"H001": {
		Category: CategoryCompile,
		Message:  "Invalid route pattern",
		Detail:   "The route template could not be compiled into a matcher. Nothing was registered for it.",
	},

	// ============================================
	// Runtime Errors (H010-H019)
	// ============================================

	"H002": {
		Category: CategoryRuntime,
		Message:  "Continuation called more than once",
		Detail:   "A handler called next() a second time during the same dispatch step. The extra call was ignored.",
	},
	"H003": {
		Category: CategoryRuntime,
		Message:  "Handler panicked",
		Detail:   "A handler panicked during dispatch. The panic was recovered and the dispatch ended.",
	},
	"H004": {
		Category: CategoryRuntime,
		Message:  "Redirect limit exceeded",
		Detail:   "A redirect was dropped because too many dispatches were already nested on the router.",
	},

	// ============================================
	// Config Errors (H020-H039)
	// ============================================

	"H020": {
		Category: CategoryConfig,
		Message:  "Invalid manifest",
		Detail:   "The route manifest could not be parsed.",
	},
	"H021": {
		Category: CategoryConfig,
		Message:  "Manifest not found",
		Detail:   "No route manifest exists at the given location.",
	},
	"H022": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		Detail:   "A manifest field has a value outside its allowed range.",
	},
	"H023": {
		Category: CategoryConfig,
		Message:  "Unsupported manifest location",
		Detail:   "Manifests are read from local .json, .yaml or .yml files, or from s3://bucket/key objects.",
	},
	"H024": {
		Category: CategoryConfig,
		Message:  "Manifest route is invalid",
		Detail:   "A route in the manifest has a pattern that does not compile.",
	},
	"H025": {
		Category: CategoryConfig,
		Message:  "Redirect cycle",
		Detail:   "Following the manifest redirects from one of them leads back to it.",
	},

	// ============================================
	// CLI Errors (H040-H059)
	// ============================================

	"H040": {
		Category: CategoryCLI,
		Message:  "No routes defined",
		Detail:   "The manifest does not declare any routes, so there is nothing to dispatch.",
	},
	"H041": {
		Category: CategoryCLI,
		Message:  "Server failed",
		Detail:   "The HTTP server stopped with an error.",
	},
	"H042": {
		Category: CategoryCLI,
		Message:  "Command failed",
	},
}

// Lookup returns the registered template for a code.
func Lookup(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
