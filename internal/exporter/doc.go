// Package exporter writes the optional tabular outputs of a report run.
//
// CSVWriter: core CSV writing with optional UTF-8 BOM for Excel. Files are
// written to a temporary name and renamed, so a failed export never leaves
// a truncated file behind. ExportTable streams the enriched dataset.
//
// WorkbookWriter: writes the stage summary and run diagnostics to an xlsx
// workbook through excelize.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(logger)
//	err := w.ExportTable(ctx, "out/npl_enriched_20240131.csv", enriched)
//
//	wb := exporter.NewWorkbookWriter(logger)
//	err = wb.WriteSummary(ctx, "out/npl_summary_20240131.xlsx", "20240131", summaries, diag)
package exporter
