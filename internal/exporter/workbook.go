package exporter

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/xuri/excelize/v2"

	"nplreport/internal/errors"
	"nplreport/internal/files"
	"nplreport/pkg/contracts/domain"
)

const (
	summarySheet     = "Summary"
	diagnosticsSheet = "Diagnostics"
)

// WorkbookWriter writes the stage summary workbook
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// WriteSummary writes the stage summary and the run diagnostics to an xlsx
// workbook with one sheet each
func (w *WorkbookWriter) WriteSummary(ctx context.Context, path, reportDate string, summaries []domain.StageSummary, diag domain.Diagnostics) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return errors.NewStorageError("failed to prepare summary workbook", err)
	}
	if err := writeSummarySheet(f, reportDate, summaries); err != nil {
		return errors.NewStorageError("failed to write summary sheet", err)
	}
	if _, err := f.NewSheet(diagnosticsSheet); err != nil {
		return errors.NewStorageError("failed to prepare summary workbook", err)
	}
	if err := writeDiagnosticsSheet(f, diag); err != nil {
		return errors.NewStorageError("failed to write diagnostics sheet", err)
	}

	af, err := files.Create(path)
	if err != nil {
		return errors.NewStorageError("failed to create summary workbook", err).WithContext("path", path)
	}
	if err := f.Write(af); err != nil {
		af.Abort()
		return errors.NewStorageError("failed to save summary workbook", err).WithContext("path", path)
	}
	if err := af.Commit(); err != nil {
		return errors.NewStorageError("failed to move summary workbook into place", err).WithContext("path", path)
	}

	w.logger.InfoContext(ctx, "Summary workbook exported",
		slog.String("path", path),
		slog.Int("stages", len(summaries)))
	return nil
}

func writeSummarySheet(f *excelize.File, reportDate string, summaries []domain.StageSummary) error {
	header := []interface{}{"Report Date", "Stage", "Principal Sum", "Principal Mean", "Count"}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return err
	}

	for i, s := range summaries {
		var mean interface{}
		if s.Mean != nil {
			mean = *s.Mean
		}
		row := []interface{}{reportDate, s.Stage, s.Sum, mean, s.Count}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", "E1", bold); err != nil {
		return err
	}

	money, err := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00
	if err != nil {
		return err
	}
	if len(summaries) > 0 {
		last := fmt.Sprintf("D%d", len(summaries)+1)
		if err := f.SetCellStyle(summarySheet, "C2", last, money); err != nil {
			return err
		}
	}

	return f.SetColWidth(summarySheet, "A", "E", 20)
}

func writeDiagnosticsSheet(f *excelize.File, diag domain.Diagnostics) error {
	rows := [][]interface{}{
		{"Metric", "Column", "Count"},
		{"duplicates_removed", "", diag.DuplicatesRemoved},
		{"unmatched_transactions", "", diag.UnmatchedTransactions},
		{"fan_out_rows", "", diag.FanOutRows},
		{"dpd_coerced_to_zero", domain.ColDaysPastDue, diag.DPDCoercedToZero},
		{"dpd_synthesized", domain.ColDaysPastDue, diag.DPDSynthesized},
		{"unknown_stages", domain.ColStageCode, diag.UnknownStages},
		{"unbucketed_dpd", domain.ColDaysPastDue, diag.UnbucketedDPD},
	}
	for _, column := range sortedKeys(diag.DatesNulled) {
		rows = append(rows, []interface{}{"dates_nulled", column, diag.DatesNulled[column]})
	}
	for _, column := range sortedKeys(diag.NumbersNulled) {
		rows = append(rows, []interface{}{"numbers_nulled", column, diag.NumbersNulled[column]})
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(diagnosticsSheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return f.SetColWidth(diagnosticsSheet, "A", "C", 24)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
