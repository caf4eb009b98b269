// Package shared is the home of helpers used by the tests of several
// packages. The testutil subpackage captures slog records so tests can
// assert on what a run logged:
//
//	logger, logs := testutil.NewTestLogger()
//	pipeline, _ := operations.NewPipeline(cfg, logger, nil)
//	...
//	testutil.AssertLogged(t, logs, slog.LevelInfo, "Report created")
package shared
