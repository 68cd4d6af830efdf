package telemetry

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goliatone/go-component"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorder() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return recorder, provider
}

func attributeValue(attrs []attribute.KeyValue, key string) (attribute.Value, bool) {
	for _, attr := range attrs {
		if string(attr.Key) == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracingRecordsInitializationSpan(t *testing.T) {
	recorder, provider := newRecorder()
	rt := component.NewRuntime(
		component.WithPerformance(true),
		component.WithInstrumentation(NewTracing(provider)),
	)
	child := rt.NewRoot(nil).Extend(component.Options{"name": "Child"})

	vm, err := child.New(nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name() != "component.init" {
		t.Fatalf("unexpected span name %q", span.Name())
	}
	if span.Status().Code != codes.Ok {
		t.Fatalf("expected ok status, got %v", span.Status())
	}
	name, ok := attributeValue(span.Attributes(), "component.name")
	if !ok || name.AsString() != "Child" {
		t.Fatalf("expected component.name Child, got %v", name)
	}
	uid, ok := attributeValue(span.Attributes(), "component.uid")
	if !ok || uid.AsInt64() != int64(vm.UID()) {
		t.Fatalf("expected component.uid %d, got %v", vm.UID(), uid)
	}
}

func TestTracingRecordsStepFailure(t *testing.T) {
	recorder, provider := newRecorder()
	rt := component.NewRuntime(
		component.WithPerformance(true),
		component.WithInstrumentation(NewTracing(provider)),
	)
	boom := errors.New("boom")
	ctor := rt.NewRoot(nil).Extend(component.Options{
		"created": func(*component.Instance) error { return boom },
	})

	if _, err := ctor.New(nil); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Fatalf("expected error status, got %v", spans[0].Status())
	}
	if len(spans[0].Events()) == 0 {
		t.Fatalf("expected recorded error event")
	}
}

func TestTracingDisabledInProduction(t *testing.T) {
	recorder, provider := newRecorder()
	rt := component.NewRuntime(
		component.WithMode(component.ModeProduction),
		component.WithPerformance(true),
		component.WithInstrumentation(NewTracing(provider)),
	)
	if _, err := rt.NewRoot(nil).New(nil); err != nil {
		t.Fatalf("new: %v", err)
	}
	if got := len(recorder.Ended()); got != 0 {
		t.Fatalf("expected no spans in production, got %d", got)
	}
}

func TestMetricsCountsResolverHitsAndMisses(t *testing.T) {
	metrics := NewMetrics(MetricsConfig{Namespace: "test"})
	rt := component.NewRuntime(component.WithResolverObserver(metrics))
	root := rt.NewRoot(component.Options{"name": "Root"})
	child := root.Extend(component.Options{"name": "Child"})

	child.Resolve()
	child.Resolve()
	rt.Resolver().Invalidate(root)
	child.Resolve()

	if got := testutil.ToFloat64(metrics.resolutions.WithLabelValues("hit")); got != 2 {
		t.Fatalf("expected 2 hits, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.resolutions.WithLabelValues("miss")); got != 1 {
		t.Fatalf("expected 1 miss, got %v", got)
	}
}

func TestMetricsTimesConstruction(t *testing.T) {
	metrics := NewMetrics(MetricsConfig{})
	rt := component.NewRuntime(
		component.WithPerformance(true),
		component.WithInstrumentation(metrics),
	)
	root := rt.NewRoot(nil)
	failing := root.Extend(component.Options{
		"beforeCreate": func(*component.Instance) error { return errors.New("nope") },
	})

	if _, err := root.New(nil); err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := failing.New(nil); err == nil {
		t.Fatalf("expected failure")
	}

	if got := testutil.ToFloat64(metrics.constructed.WithLabelValues("ok")); got != 1 {
		t.Fatalf("expected 1 ok construction, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.constructed.WithLabelValues("error")); got != 1 {
		t.Fatalf("expected 1 failed construction, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.stepFailures.WithLabelValues("beforeCreate")); got != 1 {
		t.Fatalf("expected beforeCreate failure counted, got %v", got)
	}
	if got := testutil.CollectAndCount(metrics.duration); got != 1 {
		t.Fatalf("expected histogram collected, got %d", got)
	}
}

func TestMetricsHandlerExposesRegistry(t *testing.T) {
	metrics := NewMetrics(MetricsConfig{Namespace: "ui"})
	metrics.ResolveMiss(nil)

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.Contains(rec.Body.String(), `ui_constructor_resolutions_total{result="miss"} 1`) {
		t.Fatalf("expected resolution counter in exposition, got:\n%s", rec.Body.String())
	}
}
