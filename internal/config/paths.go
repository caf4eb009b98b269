package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Paths resolves every input and output file of a run.
// This is the single source of truth for file names in the application.
type Paths struct {
	InputDir  string
	OutputDir string

	transactionTemplate     string
	performanceFile         string
	dashboardTemplate       string
	enrichedCSVTemplate     string
	summaryWorkbookTemplate string
}

// NewPaths creates the path resolver for a paths configuration
func NewPaths(cfg PathsConfig) *Paths {
	return &Paths{
		InputDir:                cfg.InputDir,
		OutputDir:               cfg.OutputDir,
		transactionTemplate:     cfg.TransactionTemplate,
		performanceFile:         cfg.PerformanceFile,
		dashboardTemplate:       cfg.DashboardTemplate,
		enrichedCSVTemplate:     cfg.EnrichedCSVTemplate,
		summaryWorkbookTemplate: cfg.SummaryWorkbookTemplate,
	}
}

// TransactionFile returns the pipe-delimited extract for the reporting period
func (p *Paths) TransactionFile(reportDate string) string {
	return filepath.Join(p.InputDir, fmt.Sprintf(p.transactionTemplate, reportDate))
}

// PerformanceFile returns the performance reference workbook
func (p *Paths) PerformanceFile() string {
	if filepath.IsAbs(p.performanceFile) {
		return p.performanceFile
	}
	return filepath.Join(p.InputDir, p.performanceFile)
}

// DashboardFile returns the dashboard image for the reporting period
func (p *Paths) DashboardFile(reportDate string) string {
	return filepath.Join(p.OutputDir, fmt.Sprintf(p.dashboardTemplate, reportDate))
}

// EnrichedCSVFile returns the enriched dataset export for the reporting period
func (p *Paths) EnrichedCSVFile(reportDate string) string {
	return filepath.Join(p.OutputDir, fmt.Sprintf(p.enrichedCSVTemplate, reportDate))
}

// SummaryWorkbookFile returns the stage summary workbook for the reporting period
func (p *Paths) SummaryWorkbookFile(reportDate string) string {
	return filepath.Join(p.OutputDir, fmt.Sprintf(p.summaryWorkbookTemplate, reportDate))
}

// EnsureDirectories creates the output directory if needed
func (p *Paths) EnsureDirectories() error {
	if err := os.MkdirAll(p.OutputDir, DirPermissions); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", p.OutputDir, err)
	}
	return nil
}

// LogPathResolution logs the resolved locations for a reporting period
func (p *Paths) LogPathResolution(logger *slog.Logger, reportDate string) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Resolved paths",
		slog.String("transactions", p.TransactionFile(reportDate)),
		slog.String("performance", p.PerformanceFile()),
		slog.String("dashboard", p.DashboardFile(reportDate)))
}

// ParseReportDate checks that a reporting-period identifier is an 8-digit
// calendar date in YYYYMMDD form
func ParseReportDate(s string) (time.Time, error) {
	if len(s) != len(ReportDateLayout) {
		return time.Time{}, fmt.Errorf("report date %q must have 8 digits (YYYYMMDD)", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return time.Time{}, fmt.Errorf("report date %q must have 8 digits (YYYYMMDD)", s)
		}
	}
	t, err := time.Parse(ReportDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("report date %q is not a calendar date: %w", s, err)
	}
	return t, nil
}
