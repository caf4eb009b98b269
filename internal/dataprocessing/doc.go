// Package dataprocessing turns the raw inputs of a reporting period into the
// enriched loan dataset and its stage summary.
//
// # Architecture
//
// Four components form a one-way pipeline:
//
// 1. Loader: reads the pipe-delimited transaction extract and the performance workbook
// 2. Cleaner: parses dates, removes duplicate transactions, left-joins the performance data
// 3. FeatureEngineer: derives stage, overdue flag, DPD bucket, ratio and loan timing
// 4. Summarizer: aggregates principal by stage for the dashboard
//
// # Usage
//
//	loader := dataprocessing.NewLoader(logger, paths, "")
//	tx, perf, err := loader.Load(ctx, "20240131")
//	if err != nil {
//	    return err
//	}
//	merged, diag, err := dataprocessing.NewCleaner(logger, dataprocessing.JoinFanOut).Clean(ctx, tx, perf)
//	enriched, _, err := dataprocessing.NewFeatureEngineer(logger).Engineer(ctx, merged)
//	summary, err := dataprocessing.NewSummarizer(logger).SummarizeByStage(ctx, enriched)
//
// # Missing values
//
// Malformed dates and non-numeric amounts never fail a run. They become
// null, except the days-past-due amount which becomes zero. Every
// substitution is counted in domain.Diagnostics.
//
// # Errors
//
// Loader failures are SOURCE_ACCESS errors and are the only retryable ones.
// Missing columns surface as SCHEMA errors.
package dataprocessing
