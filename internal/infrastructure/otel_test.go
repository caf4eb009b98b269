package infrastructure

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nplreport/internal/config"
	"nplreport/pkg/contracts/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestOTelInitialization(t *testing.T) {
	providers, err := InitializeOTel(nil, testLogger())
	require.NoError(t, err)
	require.NotNil(t, providers)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Registry)
	assert.Nil(t, providers.TracerProvider)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelDisabled(t *testing.T) {
	cfg := OTelConfigFrom(config.TelemetryConfig{TraceExporter: "none"})
	providers, err := InitializeOTel(cfg, testLogger())
	require.NoError(t, err)

	assert.Nil(t, providers.Registry)
	assert.Nil(t, providers.MeterProvider)

	// no-op instruments still work
	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)
	metrics.RecordRun(context.Background(), time.Second, true)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, providers.WriteMetricsFile(path))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestOTelUnsupportedExporter(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceExporter = "jaeger"

	_, err := InitializeOTel(cfg, testLogger())
	assert.Error(t, err)
}

func TestPipelineMetricsWrittenToTextfile(t *testing.T) {
	providers, err := InitializeOTel(DefaultOTelConfig(), testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordRun(ctx, 2*time.Second, true)
	metrics.RecordStep(ctx, "load", time.Second, false)
	metrics.RecordRetry(ctx, "load")
	metrics.RecordRows(ctx, "merged", 42)
	metrics.RecordArtifact(ctx, "dashboard")

	var d domain.Diagnostics
	d.DPDCoercedToZero = 2
	d.AddDateNulled(domain.ColOriginDate)
	metrics.RecordDiagnostics(ctx, d)

	path := filepath.Join(t.TempDir(), "out", "metrics.prom")
	require.NoError(t, providers.WriteMetricsFile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)

	assert.Contains(t, text, "pipeline_runs_total")
	assert.Contains(t, text, "pipeline_rows_total")
	assert.Contains(t, text, `phase="merged"`)
	assert.Contains(t, text, "pipeline_step_retries_total")
	assert.Contains(t, text, `reason="date_nulled"`)
}

func TestNilPipelineMetricsIsSafe(t *testing.T) {
	var m *PipelineMetrics
	assert.NotPanics(t, func() {
		m.RecordRun(context.Background(), time.Second, false)
		m.RecordDiagnostics(context.Background(), domain.Diagnostics{})
	})
}

func TestTraceIDFromContext(t *testing.T) {
	cfg := DefaultOTelConfig()
	cfg.EnableTracing = true
	cfg.TraceExporter = "stdout"

	providers, err := InitializeOTel(cfg, testLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	assert.Empty(t, TraceIDFromContext(context.Background()))

	ctx, span := providers.Tracer.Start(context.Background(), "test-operation")
	defer span.End()
	assert.Len(t, TraceIDFromContext(ctx), 32)

	assert.NotPanics(t, func() {
		AddSpanEvent(ctx, "event")
		RecordError(ctx, os.ErrNotExist)
	})
}
