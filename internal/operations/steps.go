package operations

import (
	"context"
	"fmt"
	"log/slog"

	"nplreport/internal/config"
	"nplreport/internal/dashboard"
	"nplreport/internal/dataprocessing"
	"nplreport/internal/exporter"
)

// LoadStep reads the transaction extract and the performance workbook
type LoadStep struct {
	BaseStage
	loader *dataprocessing.Loader
	tracer *OperationTracer
}

// NewLoadStep creates the load step
func NewLoadStep(loader *dataprocessing.Loader, tracer *OperationTracer) *LoadStep {
	return &LoadStep{
		BaseStage: NewBaseStage(StepIDLoad, StepNameLoad),
		loader:    loader,
		tracer:    tracer,
	}
}

// Validate requires a reporting period
func (s *LoadStep) Validate(state *OperationState) error {
	if state.ReportDate == "" {
		return fmt.Errorf("report date is required")
	}
	return nil
}

// Execute implements Step
func (s *LoadStep) Execute(ctx context.Context, state *OperationState) error {
	transactions, performance, err := s.loader.Load(ctx, state.ReportDate)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeyTransactions, transactions)
	state.SetContext(ContextKeyPerformance, performance)
	s.tracer.RecordRows(ctx, "transactions", transactions.Len())
	s.tracer.RecordRows(ctx, "performance", performance.Len())
	return nil
}

// CleanStep parses dates, deduplicates and joins performance data onto transactions
type CleanStep struct {
	BaseStage
	cleaner *dataprocessing.Cleaner
	tracer  *OperationTracer
}

// NewCleanStep creates the clean step
func NewCleanStep(cleaner *dataprocessing.Cleaner, tracer *OperationTracer) *CleanStep {
	return &CleanStep{
		BaseStage: NewBaseStage(StepIDClean, StepNameClean),
		cleaner:   cleaner,
		tracer:    tracer,
	}
}

// Execute implements Step
func (s *CleanStep) Execute(ctx context.Context, state *OperationState) error {
	transactions, err := state.Table(ContextKeyTransactions)
	if err != nil {
		return err
	}
	performance, err := state.Table(ContextKeyPerformance)
	if err != nil {
		return err
	}

	merged, diag, err := s.cleaner.Clean(ctx, transactions, performance)
	if err != nil {
		return err
	}
	state.AddDiagnostics(diag)
	state.SetContext(ContextKeyMerged, merged)
	s.tracer.RecordRows(ctx, "merged", merged.Len())
	return nil
}

// FeatureStep derives the risk attributes of every merged row
type FeatureStep struct {
	BaseStage
	engineer *dataprocessing.FeatureEngineer
	tracer   *OperationTracer
}

// NewFeatureStep creates the feature engineering step
func NewFeatureStep(engineer *dataprocessing.FeatureEngineer, tracer *OperationTracer) *FeatureStep {
	return &FeatureStep{
		BaseStage: NewBaseStage(StepIDFeatures, StepNameFeatures),
		engineer:  engineer,
		tracer:    tracer,
	}
}

// Execute implements Step
func (s *FeatureStep) Execute(ctx context.Context, state *OperationState) error {
	merged, err := state.Table(ContextKeyMerged)
	if err != nil {
		return err
	}

	enriched, diag, err := s.engineer.Engineer(ctx, merged)
	if err != nil {
		return err
	}
	state.AddDiagnostics(diag)
	state.SetContext(ContextKeyEnriched, enriched)
	s.tracer.RecordRows(ctx, "enriched", enriched.Len())
	return nil
}

// ReportStep summarizes principal by stage and renders the dashboard
type ReportStep struct {
	BaseStage
	summarizer *dataprocessing.Summarizer
	renderer   *dashboard.Renderer
	tracer     *OperationTracer
	logger     *slog.Logger
}

// NewReportStep creates the report step
func NewReportStep(summarizer *dataprocessing.Summarizer, renderer *dashboard.Renderer, tracer *OperationTracer, logger *slog.Logger) *ReportStep {
	return &ReportStep{
		BaseStage:  NewBaseStage(StepIDReport, StepNameReport),
		summarizer: summarizer,
		renderer:   renderer,
		tracer:     tracer,
		logger:     logger,
	}
}

// Execute implements Step
func (s *ReportStep) Execute(ctx context.Context, state *OperationState) error {
	s.logger.InfoContext(ctx, "Creating dashboard report", slog.String("report_date", state.ReportDate))

	enriched, err := state.Table(ContextKeyEnriched)
	if err != nil {
		return err
	}

	summary, err := s.summarizer.SummarizeByStage(ctx, enriched)
	if err != nil {
		return err
	}
	state.SetContext(ContextKeySummary, summary)

	path, err := s.renderer.Render(ctx, state.ReportDate, enriched, summary)
	if err != nil {
		return err
	}
	s.tracer.RecordArtifact(ctx, state.Artifacts.Add(ArtifactDashboard, path, s.ID()))
	return nil
}

// ExportCSVStep writes the enriched dataset as CSV
type ExportCSVStep struct {
	BaseStage
	writer *exporter.CSVWriter
	paths  *config.Paths
	tracer *OperationTracer
}

// NewExportCSVStep creates the enriched dataset export step
func NewExportCSVStep(writer *exporter.CSVWriter, paths *config.Paths, tracer *OperationTracer) *ExportCSVStep {
	return &ExportCSVStep{
		BaseStage: NewBaseStage(StepIDExportCSV, StepNameExportCSV),
		writer:    writer,
		paths:     paths,
		tracer:    tracer,
	}
}

// Execute implements Step
func (s *ExportCSVStep) Execute(ctx context.Context, state *OperationState) error {
	enriched, err := state.Table(ContextKeyEnriched)
	if err != nil {
		return err
	}
	path := s.paths.EnrichedCSVFile(state.ReportDate)
	if err := s.writer.ExportTable(ctx, path, enriched); err != nil {
		return err
	}
	s.tracer.RecordArtifact(ctx, state.Artifacts.Add(ArtifactEnrichedCSV, path, s.ID()))
	return nil
}

// ExportWorkbookStep writes the stage summary and diagnostics workbook
type ExportWorkbookStep struct {
	BaseStage
	writer *exporter.WorkbookWriter
	paths  *config.Paths
	tracer *OperationTracer
}

// NewExportWorkbookStep creates the stage summary export step
func NewExportWorkbookStep(writer *exporter.WorkbookWriter, paths *config.Paths, tracer *OperationTracer) *ExportWorkbookStep {
	return &ExportWorkbookStep{
		BaseStage: NewBaseStage(StepIDExportWorkbook, StepNameExportWorkbook),
		writer:    writer,
		paths:     paths,
		tracer:    tracer,
	}
}

// Execute implements Step
func (s *ExportWorkbookStep) Execute(ctx context.Context, state *OperationState) error {
	summary, err := state.StageSummary()
	if err != nil {
		return err
	}
	path := s.paths.SummaryWorkbookFile(state.ReportDate)
	if err := s.writer.WriteSummary(ctx, path, state.ReportDate, summary, state.GetDiagnostics()); err != nil {
		return err
	}
	s.tracer.RecordArtifact(ctx, state.Artifacts.Add(ArtifactSummaryWorkbook, path, s.ID()))
	return nil
}

var (
	_ Step = (*LoadStep)(nil)
	_ Step = (*CleanStep)(nil)
	_ Step = (*FeatureStep)(nil)
	_ Step = (*ReportStep)(nil)
	_ Step = (*ExportCSVStep)(nil)
	_ Step = (*ExportWorkbookStep)(nil)
)
