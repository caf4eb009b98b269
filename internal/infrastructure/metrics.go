package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"nplreport/pkg/contracts/domain"
)

// PipelineMetrics holds the instruments recorded by a report run
type PipelineMetrics struct {
	RunsTotal      metric.Int64Counter
	RunDuration    metric.Float64Histogram
	StepsTotal     metric.Int64Counter
	StepDuration   metric.Float64Histogram
	StepRetries    metric.Int64Counter
	RowsProcessed  metric.Int64Counter
	ValuesCoerced  metric.Int64Counter
	ArtifactsTotal metric.Int64Counter
}

// CreatePipelineMetrics registers the pipeline instruments on meter
func CreatePipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	runsTotal, err := meter.Int64Counter(
		"pipeline_runs_total",
		metric.WithDescription("Total number of report runs by status"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"pipeline_run_duration_seconds",
		metric.WithDescription("Report run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stepsTotal, err := meter.Int64Counter(
		"pipeline_steps_total",
		metric.WithDescription("Total number of step executions by step and status"),
	)
	if err != nil {
		return nil, err
	}

	stepDuration, err := meter.Float64Histogram(
		"pipeline_step_duration_seconds",
		metric.WithDescription("Step execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stepRetries, err := meter.Int64Counter(
		"pipeline_step_retries_total",
		metric.WithDescription("Total number of step retry attempts"),
	)
	if err != nil {
		return nil, err
	}

	rowsProcessed, err := meter.Int64Counter(
		"pipeline_rows_total",
		metric.WithDescription("Rows produced per pipeline phase"),
	)
	if err != nil {
		return nil, err
	}

	valuesCoerced, err := meter.Int64Counter(
		"pipeline_values_coerced_total",
		metric.WithDescription("Values replaced by null or zero while cleaning, by reason"),
	)
	if err != nil {
		return nil, err
	}

	artifactsTotal, err := meter.Int64Counter(
		"pipeline_artifacts_total",
		metric.WithDescription("Files written by kind"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RunsTotal:      runsTotal,
		RunDuration:    runDuration,
		StepsTotal:     stepsTotal,
		StepDuration:   stepDuration,
		StepRetries:    stepRetries,
		RowsProcessed:  rowsProcessed,
		ValuesCoerced:  valuesCoerced,
		ArtifactsTotal: artifactsTotal,
	}, nil
}

// RecordRun records the outcome of a whole run
func (m *PipelineMetrics) RecordRun(ctx context.Context, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", statusLabel(success)))
	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordStep records one step attempt
func (m *PipelineMetrics) RecordStep(ctx context.Context, step string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	m.StepsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("step", step),
		attribute.String("status", statusLabel(success)),
	))
	m.StepDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("step", step)))
}

// RecordRetry records a retry of step
func (m *PipelineMetrics) RecordRetry(ctx context.Context, step string) {
	if m == nil {
		return
	}
	m.StepRetries.Add(ctx, 1, metric.WithAttributes(attribute.String("step", step)))
}

// RecordRows records the row count produced by a phase such as "merged"
func (m *PipelineMetrics) RecordRows(ctx context.Context, phase string, rows int) {
	if m == nil {
		return
	}
	m.RowsProcessed.Add(ctx, int64(rows), metric.WithAttributes(attribute.String("phase", phase)))
}

// RecordArtifact records a written output file
func (m *PipelineMetrics) RecordArtifact(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.ArtifactsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordDiagnostics records the coercion counts of a run
func (m *PipelineMetrics) RecordDiagnostics(ctx context.Context, d domain.Diagnostics) {
	if m == nil {
		return
	}
	add := func(reason string, n int) {
		if n > 0 {
			m.ValuesCoerced.Add(ctx, int64(n), metric.WithAttributes(attribute.String("reason", reason)))
		}
	}
	add("duplicate_removed", d.DuplicatesRemoved)
	add("unmatched_transaction", d.UnmatchedTransactions)
	add("dpd_coerced_to_zero", d.DPDCoercedToZero)
	add("unknown_stage", d.UnknownStages)
	add("unbucketed_dpd", d.UnbucketedDPD)
	for column, n := range d.DatesNulled {
		m.ValuesCoerced.Add(ctx, int64(n), metric.WithAttributes(
			attribute.String("reason", "date_nulled"),
			attribute.String("column", column),
		))
	}
	for column, n := range d.NumbersNulled {
		m.ValuesCoerced.Add(ctx, int64(n), metric.WithAttributes(
			attribute.String("reason", "number_nulled"),
			attribute.String("column", column),
		))
	}
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
