package operations

import (
	"context"
	"log/slog"

	"nplreport/internal/config"
	"nplreport/internal/dashboard"
	"nplreport/internal/dataprocessing"
	"nplreport/internal/errors"
	"nplreport/internal/exporter"
	"nplreport/internal/infrastructure"
)

// Pipeline wires the loader, cleaner, feature engineer and reporter into a
// Manager and produces the report of one period per Run
type Pipeline struct {
	cfg     *config.Config
	paths   *config.Paths
	manager *Manager
	logger  *slog.Logger
}

// NewPipeline builds the pipeline from the application configuration.
// providers may be nil to run without instrumentation.
func NewPipeline(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	policy, err := dataprocessing.ParseJoinPolicy(cfg.Pipeline.JoinPolicy)
	if err != nil {
		return nil, err
	}

	tracer, err := NewOperationTracer(providers)
	if err != nil {
		return nil, errors.NewConfigError("failed to initialize pipeline instrumentation", err)
	}

	paths := config.NewPaths(cfg.Paths)
	theme := dashboard.ThemeFromConfig(cfg.Dashboard)

	steps := []Step{
		NewLoadStep(dataprocessing.NewLoader(logger, paths, cfg.Paths.PerformanceSheet), tracer),
		NewCleanStep(dataprocessing.NewCleaner(logger, policy), tracer),
		NewFeatureStep(dataprocessing.NewFeatureEngineer(logger), tracer),
		NewReportStep(dataprocessing.NewSummarizer(logger), dashboard.NewRenderer(logger, theme, paths), tracer, logger),
	}
	if cfg.Pipeline.ExportCSV {
		steps = append(steps, NewExportCSVStep(exporter.NewCSVWriter(logger), paths, tracer))
	}
	if cfg.Pipeline.ExportWorkbook {
		steps = append(steps, NewExportWorkbookStep(exporter.NewWorkbookWriter(logger), paths, tracer))
	}

	registry := NewRegistry()
	for _, step := range steps {
		if err := registry.Register(step); err != nil {
			return nil, err
		}
	}

	return &Pipeline{
		cfg:     cfg,
		paths:   paths,
		manager: NewManager(registry, ConfigFromPipeline(cfg.Pipeline), tracer, logger),
		logger:  logger,
	}, nil
}

// Manager returns the manager running the pipeline steps
func (p *Pipeline) Manager() *Manager {
	return p.manager
}

// Paths returns the resolved input and output locations
func (p *Pipeline) Paths() *config.Paths {
	return p.paths
}

// Run produces the report for reportDate. The response lists every step with
// its status, attempts and duration, and the written artifacts.
func (p *Pipeline) Run(ctx context.Context, reportDate string) (*OperationResponse, error) {
	if _, err := config.ParseReportDate(reportDate); err != nil {
		return nil, errors.NewAppValidationError(err.Error())
	}
	if err := p.paths.EnsureDirectories(); err != nil {
		return nil, errors.NewStorageError("failed to prepare output directory", err)
	}
	p.paths.LogPathResolution(p.logger, reportDate)

	resp, err := p.manager.Execute(ctx, OperationRequest{ReportDate: reportDate})
	if err != nil {
		return resp, err
	}

	p.logger.InfoContext(ctx, "Report created",
		slog.String("report_date", reportDate),
		slog.Int("artifacts", len(resp.Artifacts)),
		slog.Int("values_coerced", resp.Diagnostics.Rejected()),
		slog.Duration("duration", resp.Duration))
	return resp, nil
}
