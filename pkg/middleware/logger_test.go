package middleware

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/vango-dev/helm/pkg/router"
)

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewTextHandler(&buf, nil)), &buf
}

func TestLogger(t *testing.T) {
	logger, buf := newBufferLogger()

	r := newTestRouter(t, Logger(logger))
	r.MustOn("/user/:id", stop)

	r.Dispatch("/user/9")
	r.Dispatch("/nowhere")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("log lines = %d, want 2:\n%s", len(lines), buf.String())
	}
	for _, want := range []string{"msg=dispatch", "path=/user/9", "route=/user/:id", "outcome=handled", "params=1", "dispatch_id="} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("line %q missing %q", lines[0], want)
		}
	}
	for _, want := range []string{"route=none", "outcome=exhausted", "params=0"} {
		if !strings.Contains(lines[1], want) {
			t.Errorf("line %q missing %q", lines[1], want)
		}
	}
}

func TestRecover(t *testing.T) {
	logger, buf := newBufferLogger()

	r := newTestRouter(t, Recover(logger))
	after := 0
	r.MustOn("/boom", func(c *router.Context, next func()) { panic("kaboom") })
	r.MustOn("*", func(c *router.Context, next func()) { after++ })

	r.Dispatch("/boom")

	if after != 0 {
		t.Error("dispatch should end at the panic")
	}
	out := buf.String()
	for _, want := range []string{"level=ERROR", "code=H003", "panic=kaboom", "route=/boom", "stack="} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q missing %q", out, want)
		}
	}

	buf.Reset()
	r.Dispatch("/fine")
	if after != 1 {
		t.Errorf("after = %d, want 1", after)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected log output: %s", buf.String())
	}
}
