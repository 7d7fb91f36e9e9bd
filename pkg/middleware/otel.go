package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/vango-dev/helm/pkg/router"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const defaultTracerName = "helm"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "helm").
	TracerName string

	// TracerProvider provides the tracer.
	// Default: the global provider from otel.GetTracerProvider.
	TracerProvider trace.TracerProvider

	// Filter determines which dispatches to trace.
	// If nil, all dispatches are traced.
	Filter func(c *router.Context) bool

	// AttributeExtractor adds custom attributes once the dispatch is done.
	AttributeExtractor func(c *router.Context) []attribute.KeyValue

	tracer trace.Tracer
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithDispatchFilter sets a filter function for dispatches.
func WithDispatchFilter(filter func(c *router.Context) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(c *router.Context) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// OpenTelemetry creates a handler that traces every dispatch.
//
// The handler:
//   - Starts a span named after the dispatched path
//   - Puts the span into c.StdContext() for later handlers
//   - Records the final route, outcome and parameter count once the chain returns
//   - Records a panic in the rest of the chain as an error and re-panics
//
// The tracer comes from the global provider unless WithTracerProvider is
// given. Configure it in main() before building routers:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) router.HandlerFunc {
	config := OTelConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	config.tracer = tp.Tracer(config.TracerName)

	return func(c *router.Context, next func()) {
		if config.Filter != nil && !config.Filter(c) {
			next()
			return
		}

		spanCtx, span := config.tracer.Start(
			c.StdContext(),
			formatSpanName(c),
			trace.WithSpanKind(trace.SpanKindInternal),
			trace.WithAttributes(
				attribute.String("helm.path", c.Path),
				attribute.String("helm.dispatch_id", c.ID),
			),
			trace.WithTimestamp(time.Now()),
		)
		defer span.End()

		parent := c.StdContext()
		c.SetStdContext(spanCtx)
		c.SetValue(spanContextKey{}, spanCtx)

		defer func() {
			c.SetStdContext(parent)
			if r := recover(); r != nil {
				err := fmt.Errorf("panic: %v", r)
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				panic(r)
			}
		}()

		next()

		route := c.Route()
		if route == "" {
			route = noRoute
		}
		span.SetAttributes(
			attribute.String("helm.route", route),
			attribute.Bool("helm.exhausted", c.Exhausted()),
			attribute.Int("helm.param_count", c.Params.Len()),
		)
		if config.AttributeExtractor != nil {
			span.SetAttributes(config.AttributeExtractor(c)...)
		}
		span.SetStatus(codes.Ok, "")
	}
}

// spanContextKey stores the span's context in the dispatch values.
type spanContextKey struct{}

// SpanFromContext returns the span of the current dispatch, or nil when the
// dispatch is not traced.
//
// Example:
//
//	func show(c *router.Context, next func()) {
//	    if span := middleware.SpanFromContext(c); span != nil {
//	        span.SetAttributes(attribute.String("product.id", c.Params.Get("id")))
//	    }
//	}
func SpanFromContext(c *router.Context) trace.Span {
	if spanCtx, ok := c.Value(spanContextKey{}).(context.Context); ok {
		return trace.SpanFromContext(spanCtx)
	}
	return nil
}

// TraceContext returns the context carrying the dispatch span, falling back
// to c.StdContext().
func TraceContext(c *router.Context) context.Context {
	if spanCtx, ok := c.Value(spanContextKey{}).(context.Context); ok {
		return spanCtx
	}
	return c.StdContext()
}

func formatSpanName(c *router.Context) string {
	path := c.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("helm %s", path)
}
