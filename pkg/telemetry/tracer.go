package telemetry

import (
	"context"

	"github.com/goliatone/go-component"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans created by this package.
const InstrumentationName = "github.com/goliatone/go-component"

// Tracing records instance initialization as OpenTelemetry spans.
type Tracing struct {
	tracer trace.Tracer
}

// NewTracing builds a Tracing from provider, or from the global provider
// when nil.
func NewTracing(provider trace.TracerProvider) *Tracing {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &Tracing{tracer: provider.Tracer(InstrumentationName)}
}

// Start implements component.Instrumentation.
func (t *Tracing) Start(vm *component.Instance) func(error) {
	_, span := t.tracer.Start(context.Background(), "component.init",
		trace.WithAttributes(
			attribute.Int64("component.uid", int64(vm.UID())),
			attribute.String("component.constructor", vm.Constructor().String()),
		),
	)
	return func(err error) {
		span.SetAttributes(
			attribute.String("component.name", vm.Name()),
			attribute.String("component.phase", vm.Phase().String()),
		)
		RecordError(span, err)
		span.End()
	}
}

// RecordError records err on span and marks it failed. A nil err marks the
// span successful.
func RecordError(span trace.Span, err error) {
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
