package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/helm/internal/errors"
	"github.com/vango-dev/helm/pkg/router"
	"github.com/vango-dev/helm/pkg/source"
)

const jsonManifest = `{
  "prefix": "!/",
  "routes": [
    {"pattern": "/", "name": "home"},
    {"pattern": "/old/:id", "redirect": "/new"},
    {"pattern": "/user/:name", "name": "user", "continue": true},
    {"pattern": "*", "name": "not-found"}
  ],
  "serve": {"port": 9090}
}
`

const yamlManifest = `prefix: "!/"
caseSensitive: true
routes:
  - pattern: /
    name: home
  - pattern: /old/:id
    redirect: /new
  - pattern: /user/:name
    name: user
    continue: true
  - pattern: "*"
    name: not-found
serve:
  port: 9090
metrics:
  namespace: shop
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func checkManifest(t *testing.T, cfg *Config) {
	t.Helper()

	if cfg.Prefix != "!/" {
		t.Errorf("Prefix = %q, want !/", cfg.Prefix)
	}
	if len(cfg.Routes) != 4 {
		t.Fatalf("len(Routes) = %d, want 4", len(cfg.Routes))
	}
	if cfg.Routes[1].Name != "/old/:id" {
		t.Errorf("Routes[1].Name = %q, want the pattern as default", cfg.Routes[1].Name)
	}
	if cfg.Routes[1].Redirect != "/new" {
		t.Errorf("Routes[1].Redirect = %q", cfg.Routes[1].Redirect)
	}
	if !cfg.Routes[2].Continue {
		t.Error("Routes[2].Continue should be true")
	}
	if cfg.Serve.Port != 9090 {
		t.Errorf("Serve.Port = %d, want 9090", cfg.Serve.Port)
	}
	if cfg.Serve.Host != DefaultHost || cfg.Serve.SocketPath != DefaultSocketPath {
		t.Errorf("serve defaults not applied: %+v", cfg.Serve)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Serve.Port != DefaultPort {
		t.Errorf("Serve.Port = %d, want %d", cfg.Serve.Port, DefaultPort)
	}
	if cfg.Serve.MetricsPath != DefaultMetricsPath {
		t.Errorf("Serve.MetricsPath = %q", cfg.Serve.MetricsPath)
	}
	if cfg.Metrics.Namespace != DefaultNamespace {
		t.Errorf("Metrics.Namespace = %q", cfg.Metrics.Namespace)
	}
	if cfg.Routes == nil || len(cfg.Routes) != 0 {
		t.Errorf("Routes = %v, want empty", cfg.Routes)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		cfg, err := LoadFile(writeFile(t, dir, "helm.json", jsonManifest))
		if err != nil {
			t.Fatalf("LoadFile error: %v", err)
		}
		checkManifest(t, cfg)
		if cfg.CaseSensitive {
			t.Error("CaseSensitive should default to false")
		}
	})

	t.Run("yaml", func(t *testing.T) {
		cfg, err := LoadFile(writeFile(t, dir, "helm.yaml", yamlManifest))
		if err != nil {
			t.Fatalf("LoadFile error: %v", err)
		}
		checkManifest(t, cfg)
		if !cfg.CaseSensitive {
			t.Error("CaseSensitive should be true")
		}
		if cfg.Metrics.Namespace != "shop" {
			t.Errorf("Metrics.Namespace = %q, want shop", cfg.Metrics.Namespace)
		}
		if cfg.Location() != filepath.Join(dir, "helm.yaml") {
			t.Errorf("Location() = %q", cfg.Location())
		}
	})
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		code string
	}{
		{"missing", filepath.Join(dir, "nope.json"), "H021"},
		{"bad json", writeFile(t, dir, "bad.json", "{\n  \"routes\": [,]\n}"), "H020"},
		{"bad yaml", writeFile(t, dir, "bad.yaml", "routes: [unclosed"), "H020"},
		{"unknown extension", writeFile(t, dir, "helm.toml", ""), "H023"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoadFile_JSONSyntaxLocation(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "helm.json", "{\n  \"routes\": [,]\n}")

	_, err := LoadFile(path)
	he, ok := err.(*errors.HelmError)
	if !ok {
		t.Fatalf("error is %T, want *HelmError", err)
	}
	if he.Location == nil {
		t.Fatal("expected a location for a JSON syntax error")
	}
	if he.Location.Line != 2 {
		t.Errorf("Line = %d, want 2", he.Location.Line)
	}
	if he.Location.File != path {
		t.Errorf("File = %q, want %q", he.Location.File, path)
	}
}

func TestLoad_Directory(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(context.Background(), dir); !errors.Is(err, "H021") {
		t.Errorf("empty directory: got %v, want H021", err)
	}

	writeFile(t, dir, "helm.yaml", yamlManifest)
	cfg, err := Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	checkManifest(t, cfg)

	// helm.json wins over helm.yaml
	writeFile(t, dir, "helm.json", jsonManifest)
	cfg, err = Load(context.Background(), dir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.CaseSensitive {
		t.Error("expected helm.json to be loaded")
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()

	cfg := New()
	cfg.Prefix = "!/"
	cfg.Routes = append(cfg.Routes, Route{Pattern: "/a/:id", Name: "a", Continue: true})

	if err := cfg.Save(); err == nil {
		t.Error("expected error when saving without a location")
	}

	for _, name := range []string{"helm.json", "helm.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo error: %v", err)
			}

			loaded, err := LoadFile(path)
			if err != nil {
				t.Fatalf("LoadFile error: %v", err)
			}
			if loaded.Prefix != "!/" || len(loaded.Routes) != 1 || !loaded.Routes[0].Continue {
				t.Errorf("loaded = %+v", loaded)
			}

			loaded.Serve.Port = 9001
			if err := loaded.Save(); err != nil {
				t.Fatalf("Save error: %v", err)
			}
			reloaded, err := LoadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			if reloaded.Serve.Port != 9001 {
				t.Errorf("Serve.Port = %d, want 9001", reloaded.Serve.Port)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
		code   string
	}{
		{"negative port", func(c *Config) { c.Serve.Port = -1 }, "H022"},
		{"port too large", func(c *Config) { c.Serve.Port = 70000 }, "H022"},
		{"relative socket path", func(c *Config) { c.Serve.SocketPath = "ws" }, "H022"},
		{"relative metrics path", func(c *Config) { c.Serve.MetricsPath = "metrics" }, "H022"},
		{"same paths", func(c *Config) { c.Serve.MetricsPath = c.Serve.SocketPath }, "H022"},
		{"bad pattern", func(c *Config) {
			c.Routes = append(c.Routes, Route{Pattern: "/ok", Name: "ok"}, Route{Pattern: "/user/(", Name: "broken"})
		}, "H024"},
		{"redirect cycle", func(c *Config) {
			c.Routes = []Route{{Pattern: "/a", Redirect: "/b"}, {Pattern: "/b", Redirect: "/a"}}
		}, "H025"},
		{"redirect cycle through continue", func(c *Config) {
			c.Routes = []Route{
				{Pattern: "/x/:id", Redirect: "/y/1"},
				{Pattern: "/y/:id", Continue: true},
				{Pattern: "*", Redirect: "/x/2"},
			}
		}, "H025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want %s", err, tt.code)
			}
		})
	}

	t.Run("bad pattern wraps H001", func(t *testing.T) {
		cfg := New()
		cfg.Routes = []Route{{Pattern: "(", Name: "broken"}}
		err := cfg.Validate()
		if !errors.Is(err, "H001") {
			t.Errorf("Validate() = %v, want H001 in chain", err)
		}
		if !strings.Contains(err.Error(), "routes[0] (broken)") {
			t.Errorf("Error() = %q should name the route", err.Error())
		}
	})

	t.Run("redirect cycle names the loop", func(t *testing.T) {
		cfg := New()
		cfg.Routes = []Route{
			{Pattern: "/start", Redirect: "/a"},
			{Pattern: "/a", Redirect: "/b"},
			{Pattern: "/b", Redirect: "/a"},
		}
		err := cfg.Validate()
		if !errors.Is(err, "H025") {
			t.Fatalf("Validate() = %v, want H025", err)
		}
		if !strings.Contains(err.Error(), "/a -> /b -> /a") {
			t.Errorf("Error() = %q should show the loop", err.Error())
		}
	})

	t.Run("redirects without a loop", func(t *testing.T) {
		for name, routes := range map[string][]Route{
			"chain":    {{Pattern: "/a", Redirect: "/b"}, {Pattern: "/b", Redirect: "/c"}, {Pattern: "/c"}},
			"to self":  {{Pattern: "/a", Redirect: "/a"}},
			"stopped":  {{Pattern: "/a", Redirect: "/b"}, {Pattern: "/b"}, {Pattern: "/b", Redirect: "/a"}},
			"no match": {{Pattern: "/a", Redirect: "/nowhere"}},
		} {
			cfg := New()
			cfg.Routes = routes
			if err := cfg.Validate(); err != nil {
				t.Errorf("%s: Validate() = %v", name, err)
			}
		}
	})

	t.Run("metrics disabled", func(t *testing.T) {
		cfg := New()
		cfg.Serve.MetricsPath = "-"
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v", err)
		}
		if cfg.MetricsEnabled() {
			t.Error("MetricsEnabled() should be false")
		}
	})
}

func TestRegister(t *testing.T) {
	cfg, err := Parse([]byte(yamlManifest), "yaml")
	if err != nil {
		t.Fatal(err)
	}

	src := source.NewMemory("")
	r := router.New(src, cfg.RouterOptions()...)
	defer r.Stop()

	var hits []string
	err = cfg.Register(r, func(rt Route) router.HandlerFunc {
		return func(c *router.Context, next func()) {
			hits = append(hits, rt.Name)
			if rt.Continue {
				next()
			}
		}
	})
	if err != nil {
		t.Fatalf("Register error: %v", err)
	}

	src.SetPath("!//user/ann")
	if strings.Join(hits, ",") != "user,not-found" {
		t.Errorf("hits = %v, want [user not-found]", hits)
	}

	// the manifest is case sensitive
	hits = nil
	r.Dispatch("/USER/ann")
	if strings.Join(hits, ",") != "not-found" {
		t.Errorf("hits = %v, want [not-found]", hits)
	}

	if got := len(r.Routes()); got != 4 {
		t.Errorf("len(Routes()) = %d, want 4", got)
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	manifest := writeFile(t, root, "helm.yml", yamlManifest)

	got, err := Find(nested)
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if got != manifest {
		t.Errorf("Find() = %q, want %q", got, manifest)
	}
}

func TestAddress(t *testing.T) {
	cfg := New()
	cfg.Serve.Host = "0.0.0.0"
	cfg.Serve.Port = 8081
	if got := cfg.Address(); got != "0.0.0.0:8081" {
		t.Errorf("Address() = %q", got)
	}
}
