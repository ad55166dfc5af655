package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation tracks one lifecycle run of a component.
type Operation struct {
	Domain    string
	Name      string
	StartTime time.Time

	span    trace.Span
	metrics *Metrics
}

// StartOperation opens a span for a lifecycle run and returns the context
// carrying it. metrics may be nil.
func StartOperation(ctx context.Context, metrics *Metrics, domain, name, spanName string) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, spanName, trace.WithAttributes(
		attribute.String(AttrDomain, domain),
		attribute.String(AttrOperation, name),
	))
	return ctx, &Operation{
		Domain:    domain,
		Name:      name,
		StartTime: time.Now(),
		span:      span,
		metrics:   metrics,
	}
}

// End closes the span and records the run's duration and outcome.
func (o *Operation) End(ctx context.Context, finalState string, err error) {
	if err != nil {
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, err.Error())
	}
	o.span.SetAttributes(attribute.String(AttrState, finalState))
	o.span.End()

	if o.metrics != nil {
		o.metrics.RecordOperation(ctx, o.Domain, o.Name, err, o.Duration())
	}
}

// Duration returns the elapsed time since the operation started.
func (o *Operation) Duration() time.Duration {
	return time.Since(o.StartTime)
}
