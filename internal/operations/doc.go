// Package operations runs the report pipeline as an ordered list of steps.
//
// A Manager executes the steps registered in a Registry one after another,
// sharing datasets through an OperationState. Each step runs under a
// RetryPolicy; only failures marked retryable are attempted again, and
// cancellation interrupts the wait between attempts. The first failing step
// stops the run and the remaining steps are reported as skipped.
//
// Pipeline assembles the standard steps:
//
//	load -> clean -> features -> report [-> export_csv] [-> export_workbook]
//
// and returns an OperationResponse describing every step and the files
// written:
//
//	pipeline, err := operations.NewPipeline(cfg, logger, providers)
//	if err != nil {
//		return err
//	}
//	resp, err := pipeline.Run(ctx, "20240131")
//	path, _ := resp.Artifact(operations.ArtifactDashboard)
package operations
