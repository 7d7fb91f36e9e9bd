package middleware

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func resetGlobalMetricsForTest() {
	globalMetricsMu.Lock()
	globalMetrics = nil
	globalMetricsMu.Unlock()
}

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func metricHistogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestPrometheus_RecordsOutcomes(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	r := newTestRouter(t, Prometheus(WithRegistry(reg)))
	r.MustOn("/user/:id", pass)
	r.MustOn("/user/:id", stop)
	r.MustOn("/about", pass)

	r.Dispatch("/user/1")
	r.Dispatch("/user/2")
	r.Dispatch("/about")
	r.Dispatch("/missing")

	m := getMetrics()
	if m == nil {
		t.Fatal("expected metrics after Prometheus()")
	}

	tests := []struct {
		route, outcome string
		want           float64
	}{
		{"/user/:id", OutcomeHandled, 2},
		{"/user/:id", OutcomeExhausted, 0},
		{"/about", OutcomeExhausted, 1},
		{"none", OutcomeExhausted, 1},
	}
	for _, tt := range tests {
		got := metricCounterValue(t, m.dispatchesTotal.WithLabelValues(tt.route, tt.outcome))
		if got != tt.want {
			t.Errorf("dispatches_total(%s,%s) = %v, want %v", tt.route, tt.outcome, got, tt.want)
		}
	}

	if got := metricCounterValue(t, m.routeMatches.WithLabelValues("/user/:id")); got != 4 {
		t.Errorf("route_matches_total(/user/:id) = %v, want 4", got)
	}
	if got := metricHistogramCount(t, m.dispatchDuration.WithLabelValues("/user/:id")); got != 2 {
		t.Errorf("dispatch_duration_seconds count = %d, want 2", got)
	}
}

func TestPrometheus_NamespaceAndRegistry(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	r := newTestRouter(t, Prometheus(WithRegistry(reg), WithNamespace("shop"), WithSubsystem("nav")))
	r.MustOn("*", stop)
	r.Dispatch("/x")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, name := range []string{
		"shop_nav_dispatches_total",
		"shop_nav_dispatch_duration_seconds",
		"shop_nav_route_matches_total",
	} {
		if !found[name] {
			t.Errorf("metric %s not registered; have %v", name, found)
		}
	}
}

func TestPrometheus_SharesCollectors(t *testing.T) {
	resetGlobalMetricsForTest()
	reg := prometheus.NewRegistry()

	// A second call must not register again, which would panic.
	r1 := newTestRouter(t, Prometheus(WithRegistry(reg)))
	r2 := newTestRouter(t, Prometheus(WithRegistry(reg)))
	r1.MustOn("/a", stop)
	r2.MustOn("/a", stop)

	r1.Dispatch("/a")
	r2.Dispatch("/a")

	if got := metricCounterValue(t, getMetrics().dispatchesTotal.WithLabelValues("/a", OutcomeHandled)); got != 2 {
		t.Errorf("dispatches_total = %v, want 2", got)
	}
}

func TestConnectionMetrics(t *testing.T) {
	resetGlobalMetricsForTest()

	// No-ops before initialization.
	RecordConnectionOpen()
	RecordSocketError("read")

	Prometheus(WithRegistry(prometheus.NewRegistry()))
	m := getMetrics()

	RecordConnectionOpen()
	RecordConnectionOpen()
	RecordConnectionClose()
	RecordSocketError("read")

	if got := metricGaugeValue(t, m.activeConnections); got != 1 {
		t.Errorf("active_connections = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.socketErrors.WithLabelValues("read")); got != 1 {
		t.Errorf("socket_errors_total(read) = %v, want 1", got)
	}
}
