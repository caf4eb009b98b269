package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"nplreport/internal/infrastructure"
	"nplreport/pkg/contracts/domain"
)

// TracerName is the instrumentation scope of pipeline spans
const TracerName = "nplreport.operations"

// OperationTracer provides OpenTelemetry instrumentation for pipeline runs.
// A nil tracer or nil providers disable instrumentation.
type OperationTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewOperationTracer creates a tracer backed by the given providers
func NewOperationTracer(providers *infrastructure.OTelProviders) (*OperationTracer, error) {
	if providers == nil {
		return &OperationTracer{tracer: noop.NewTracerProvider().Tracer(TracerName)}, nil
	}

	metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	tracer := providers.Tracer
	if providers.TracerProvider != nil {
		tracer = providers.TracerProvider.Tracer(TracerName)
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(TracerName)
	}

	return &OperationTracer{tracer: tracer, metrics: metrics}, nil
}

// Metrics returns the pipeline instruments, nil when metrics are disabled
func (pt *OperationTracer) Metrics() *infrastructure.PipelineMetrics {
	if pt == nil {
		return nil
	}
	return pt.metrics
}

// TraceOperationExecution creates a span for a whole run
func (pt *OperationTracer) TraceOperationExecution(ctx context.Context, operationID, reportDate string) (context.Context, trace.Span) {
	if pt == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return pt.tracer.Start(ctx, "pipeline.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("report.date", reportDate),
		),
	)
}

// TraceStepExecution creates a span for one step, covering all its attempts
func (pt *OperationTracer) TraceStepExecution(ctx context.Context, operationID, stepID string) (context.Context, trace.Span) {
	if pt == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return pt.tracer.Start(ctx, "pipeline.step."+stepID,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", operationID),
			attribute.String("step.id", stepID),
		),
	)
}

// RecordStepAttempt records the outcome of one attempt
func (pt *OperationTracer) RecordStepAttempt(ctx context.Context, stepID string, attempt int, duration time.Duration, err error) {
	if pt == nil {
		return
	}
	pt.metrics.RecordStep(ctx, stepID, duration, err == nil)

	attrs := []attribute.KeyValue{
		attribute.String("step.id", stepID),
		attribute.Int("step.attempt", attempt),
		attribute.Float64("step.duration_seconds", duration.Seconds()),
	}
	if err != nil {
		attrs = append(attrs, attribute.String("error", err.Error()))
		infrastructure.AddSpanEvent(ctx, "step.attempt_failed", attrs...)
		return
	}
	infrastructure.AddSpanEvent(ctx, "step.attempt_succeeded", attrs...)
}

// RecordRetry records that a step is about to be attempted again
func (pt *OperationTracer) RecordRetry(ctx context.Context, stepID string, delay time.Duration) {
	if pt == nil {
		return
	}
	pt.metrics.RecordRetry(ctx, stepID)
	infrastructure.AddSpanEvent(ctx, "step.retry",
		attribute.String("step.id", stepID),
		attribute.Float64("retry.delay_seconds", delay.Seconds()))
}

// RecordStepCompletion closes out a step span
func (pt *OperationTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, attempts int, err error) {
	if pt == nil {
		return
	}
	span.SetAttributes(attribute.Int("step.attempts", attempts))
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return
	}
	span.SetStatus(codes.Ok, "step completed")
}

// RecordRows records the size of a dataset produced by a step
func (pt *OperationTracer) RecordRows(ctx context.Context, phase string, rows int) {
	if pt == nil {
		return
	}
	pt.metrics.RecordRows(ctx, phase, rows)
	infrastructure.AddSpanEvent(ctx, "dataset.produced",
		attribute.String("phase", phase),
		attribute.Int("rows", rows))
}

// RecordArtifact records a written output file
func (pt *OperationTracer) RecordArtifact(ctx context.Context, artifact Artifact) {
	if pt == nil {
		return
	}
	pt.metrics.RecordArtifact(ctx, artifact.Kind)
	infrastructure.AddSpanEvent(ctx, "artifact.written",
		attribute.String("kind", artifact.Kind),
		attribute.String("path", artifact.Path),
		attribute.Int64("size", artifact.Size))
}

// RecordOperationCompletion closes out a run span
func (pt *OperationTracer) RecordOperationCompletion(ctx context.Context, span trace.Span, duration time.Duration, diag domain.Diagnostics, err error) {
	if pt == nil {
		return
	}
	pt.metrics.RecordRun(ctx, duration, err == nil)
	pt.metrics.RecordDiagnostics(ctx, diag)

	span.SetAttributes(
		attribute.Float64("operation.duration_seconds", duration.Seconds()),
		attribute.Int("diagnostics.values_coerced", diag.Rejected()),
	)
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return
	}
	span.SetStatus(codes.Ok, "operation completed")
}
