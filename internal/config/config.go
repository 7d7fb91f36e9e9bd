package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/vango-dev/helm/internal/errors"
	"github.com/vango-dev/helm/pkg/router"
	"gopkg.in/yaml.v3"
)

// ManifestNames are the file names looked up in a directory, in order.
var ManifestNames = []string{"helm.json", "helm.yaml", "helm.yml"}

const (
	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultSocketPath is where the server accepts browser connections.
	DefaultSocketPath = "/helm/ws"

	// DefaultMetricsPath is where the server exposes Prometheus metrics.
	DefaultMetricsPath = "/metrics"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "helm"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "helm"
)

// Config is a route manifest: router settings, the ordered routes and the
// settings of the serve command.
type Config struct {
	// Prefix is stripped from the observed path, e.g. "!/" for hashbang URLs.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`

	// CaseSensitive makes every route match case sensitively.
	CaseSensitive bool `json:"caseSensitive,omitempty" yaml:"caseSensitive,omitempty"`

	// Strict makes a trailing slash significant in every route.
	Strict bool `json:"strict,omitempty" yaml:"strict,omitempty"`

	// Routes are registered in order.
	Routes []Route `json:"routes" yaml:"routes"`

	// Serve contains server configuration.
	Serve ServeConfig `json:"serve,omitempty" yaml:"serve,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Tracing contains OpenTelemetry configuration.
	Tracing TracingConfig `json:"tracing,omitempty" yaml:"tracing,omitempty"`

	// location is where the manifest was loaded from.
	location string
}

// Route is one manifest route.
type Route struct {
	// Pattern is the route template.
	Pattern string `json:"pattern" yaml:"pattern"`

	// Name identifies the route in output and in browser messages.
	// Defaults to the pattern.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Redirect navigates to this path when the route matches.
	Redirect string `json:"redirect,omitempty" yaml:"redirect,omitempty"`

	// Continue passes the dispatch on to later routes after a match.
	Continue bool `json:"continue,omitempty" yaml:"continue,omitempty"`
}

// ServeConfig contains settings of the serve command.
type ServeConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`

	// SocketPath is the WebSocket endpoint for browsers.
	SocketPath string `json:"socketPath,omitempty" yaml:"socketPath,omitempty"`

	// MetricsPath is the Prometheus endpoint. Set to "-" to disable.
	MetricsPath string `json:"metricsPath,omitempty" yaml:"metricsPath,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// TracerName is the tracer name.
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// New creates a Config with default values and no routes.
func New() *Config {
	return &Config{
		Routes: []Route{},
		Serve: ServeConfig{
			Host:        DefaultHost,
			Port:        DefaultPort,
			SocketPath:  DefaultSocketPath,
			MetricsPath: DefaultMetricsPath,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
	}
}

// LoadFile reads a manifest from a local file. The format follows the
// extension: .json, .yaml or .yml.
func LoadFile(path string) (*Config, error) {
	format, err := formatOf(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("H021").
				WithDetail("No manifest found at " + path).
				WithSuggestion("Run 'helm init' to create one, or pass -c with the manifest location")
		}
		return nil, errors.New("H020").Wrap(err)
	}

	cfg, err := Parse(data, format)
	if err != nil {
		if se, ok := asJSONSyntaxError(err); ok {
			line, col := position(data, se.Offset)
			if he, ok := err.(*errors.HelmError); ok {
				he.WithLocation(path, line, col)
			}
		}
		return nil, err
	}

	cfg.location = path
	return cfg, nil
}

// Parse decodes a manifest in the given format ("json" or "yaml") and
// applies defaults.
func Parse(data []byte, format string) (*Config, error) {
	cfg := New()

	switch format {
	case "json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("H020").
				WithDetail("Failed to parse manifest: " + err.Error()).
				WithSuggestion("Check that the manifest is valid JSON").
				Wrap(err)
		}
	case "yaml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.New("H020").
				WithDetail("Failed to parse manifest: " + err.Error()).
				WithSuggestion("Check that the manifest is valid YAML").
				Wrap(err)
		}
	default:
		return nil, errors.New("H023").WithDetail("Unknown manifest format " + strconv.Quote(format))
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the manifest to the location it was loaded from.
func (c *Config) Save() error {
	if c.location == "" || IsS3(c.location) {
		return errors.Newf(errors.CategoryConfig, "manifest has no local path to save to")
	}
	return c.SaveTo(c.location)
}

// SaveTo writes the manifest to path in the format of its extension.
func (c *Config) SaveTo(path string) error {
	format, err := formatOf(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case "yaml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New("H020").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("H020").Wrap(err)
	}

	c.location = path
	return nil
}

// Location returns where the manifest was loaded from.
func (c *Config) Location() string {
	return c.location
}

func (c *Config) applyDefaults() {
	if c.Routes == nil {
		c.Routes = []Route{}
	}
	for i := range c.Routes {
		if c.Routes[i].Name == "" {
			c.Routes[i].Name = c.Routes[i].Pattern
		}
	}

	if c.Serve.Host == "" {
		c.Serve.Host = DefaultHost
	}
	if c.Serve.Port == 0 {
		c.Serve.Port = DefaultPort
	}
	if c.Serve.SocketPath == "" {
		c.Serve.SocketPath = DefaultSocketPath
	}
	if c.Serve.MetricsPath == "" {
		c.Serve.MetricsPath = DefaultMetricsPath
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
}

// Validate checks the manifest. Every route pattern must compile with the
// manifest's options and no redirect may lead back to itself.
func (c *Config) Validate() error {
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.New("H022").
			WithDetail("serve.port must be between 0 and 65535, got " + strconv.Itoa(c.Serve.Port))
	}
	if !strings.HasPrefix(c.Serve.SocketPath, "/") {
		return errors.New("H022").
			WithDetail("serve.socketPath must start with '/', got " + strconv.Quote(c.Serve.SocketPath))
	}
	if c.MetricsEnabled() {
		if !strings.HasPrefix(c.Serve.MetricsPath, "/") {
			return errors.New("H022").
				WithDetail("serve.metricsPath must start with '/' or be \"-\", got " + strconv.Quote(c.Serve.MetricsPath))
		}
		if c.Serve.MetricsPath == c.Serve.SocketPath {
			return errors.New("H022").
				WithDetail("serve.metricsPath and serve.socketPath must differ")
		}
	}

	compiled := make([]*router.Route, len(c.Routes))
	for i, rt := range c.Routes {
		route, err := router.NewRoute(rt.Pattern, c.RouteOptions()...)
		if err != nil {
			return routeError(i, rt, err)
		}
		compiled[i] = route
	}

	if cycle := c.redirectCycle(compiled); cycle != nil {
		return errors.New("H025").
			WithDetail("Redirects loop: " + strings.Join(cycle, " -> ")).
			WithSuggestion("Point one of these redirects at a path that does not redirect")
	}
	return nil
}

// redirectCycle follows the redirects a dispatch of each redirect target
// leads to and returns the first loop found, or nil.
func (c *Config) redirectCycle(compiled []*router.Route) []string {
	for _, rt := range c.Routes {
		if rt.Redirect == "" {
			continue
		}

		seen := map[string]int{}
		var trail []string
		path := rt.Redirect
		for path != "" {
			if at, ok := seen[path]; ok {
				return append(trail[at:], path)
			}
			seen[path] = len(trail)
			trail = append(trail, path)

			next := c.redirectOf(compiled, path)
			if next == path {
				// navigating to the current path does not notify
				break
			}
			path = next
		}
	}
	return nil
}

// redirectOf returns where dispatching path redirects, or "" when the
// dispatch stops or runs out of routes first.
func (c *Config) redirectOf(compiled []*router.Route, path string) string {
	params := &router.Params{}
	for i, route := range compiled {
		if !route.Match(path, params) {
			continue
		}
		switch rt := c.Routes[i]; {
		case rt.Redirect != "":
			return rt.Redirect
		case !rt.Continue:
			return ""
		}
	}
	return ""
}

// RouteOptions returns the route options the manifest applies to every
// pattern.
func (c *Config) RouteOptions() []router.RouteOption {
	var opts []router.RouteOption
	if c.CaseSensitive {
		opts = append(opts, router.CaseSensitive())
	}
	if c.Strict {
		opts = append(opts, router.Strict())
	}
	return opts
}

// RouterOptions returns the options for a router built from the manifest.
func (c *Config) RouterOptions() []router.Option {
	return []router.Option{
		router.WithPrefix(c.Prefix),
		router.WithRouteOptions(c.RouteOptions()...),
	}
}

// Register adds every manifest route to r in order, with the callback
// returned by handler.
func (c *Config) Register(r *router.Router, handler func(rt Route) router.HandlerFunc) error {
	for i, rt := range c.Routes {
		if err := r.On(rt.Pattern, handler(rt)); err != nil {
			return routeError(i, rt, err)
		}
	}
	return nil
}

// MetricsEnabled reports whether the serve command exposes metrics.
func (c *Config) MetricsEnabled() bool {
	return c.Serve.MetricsPath != "-"
}

// Address returns the listen address of the serve command.
func (c *Config) Address() string {
	return c.Serve.Host + ":" + strconv.Itoa(c.Serve.Port)
}

// Find walks up from startDir to the first directory holding a manifest
// and returns the manifest path.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		for _, name := range ManifestNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("H021").
				WithDetail("No helm.json or helm.yaml found in " + startDir + " or any parent directory").
				WithSuggestion("Run 'helm init' to create one")
		}
		dir = parent
	}
}

func routeError(i int, rt Route, err error) error {
	return errors.New("H024").
		WithDetail("routes[" + strconv.Itoa(i) + "] (" + rt.Name + "): " + err.Error()).
		Wrap(err)
}

func formatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return "json", nil
	case ".yaml", ".yml":
		return "yaml", nil
	}
	return "", errors.New("H023").
		WithDetail("Cannot tell the manifest format of " + strconv.Quote(path)).
		WithSuggestion("Use a .json, .yaml or .yml extension")
}

func asJSONSyntaxError(err error) (*json.SyntaxError, bool) {
	he, ok := err.(*errors.HelmError)
	if !ok {
		return nil, false
	}
	se, ok := he.Wrapped.(*json.SyntaxError)
	return se, ok
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col = 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
