// Package observability wires OpenTelemetry tracing and metrics into the
// component lifecycle, and exposes the component state tree to health
// reporting and Prometheus scraping.
//
// Tracing and metrics export are opt-in; without InitTracer/InitMeter the
// global no-op providers are used and instrumentation costs nothing:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("orders"))
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("orders"))
//	defer mp.Shutdown(ctx)
//
// Every Initialize/Shutdown run becomes a span ("component.initialize",
// "component.shutdown") and feeds the lifecycle instruments:
//
//	statekit.component.transitions   counter   {domain, from, to}
//	statekit.component.operation     histogram {domain, operation, status} (seconds)
//	statekit.component.errors        counter   {domain, operation}
//
// Health reporting:
//
//	health := observability.HealthFromState(root.Snapshot())
//	prometheus.MustRegister(observability.NewStateCollector(root))
package observability
