// Package telemetry provides OpenTelemetry and Prometheus adapters for the
// component runtime.
//
// Tracing implements component.Instrumentation and records one span per
// instance initialization. Metrics implements both component.Instrumentation
// and component.ResolverObserver, counting resolver cache hits and misses and
// timing instance construction on a private registry:
//
//	metrics := telemetry.NewMetrics(telemetry.MetricsConfig{Namespace: "ui"})
//	rt := component.NewRuntime(
//		component.WithPerformance(true),
//		component.WithResolverObserver(metrics),
//		component.WithInstrumentation(component.Instrumentations{
//			telemetry.NewTracing(nil),
//			metrics,
//		}),
//	)
package telemetry
