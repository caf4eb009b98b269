package operations

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nplreport/internal/errors"
)

func TestManager_RunsStepsInOrder(t *testing.T) {
	var log []string
	m := testManager(
		newFakeStep(StepIDLoad, &log),
		newFakeStep(StepIDClean, &log),
		newFakeStep(StepIDFeatures, &log),
		newFakeStep(StepIDReport, &log),
	)

	resp, err := m.Execute(context.Background(), OperationRequest{ID: "run-1", ReportDate: "20240131"})
	require.NoError(t, err)

	assert.Equal(t, []string{StepIDLoad, StepIDClean, StepIDFeatures, StepIDReport}, log)
	assert.Equal(t, OperationStatusCompleted, resp.Status)
	assert.Equal(t, "run-1", resp.ID)
	assert.Equal(t, "20240131", resp.ReportDate)
	assert.Equal(t, log, resp.StepOrder)
	for _, id := range resp.StepOrder {
		assert.Equal(t, StepStatusCompleted, resp.Steps[id].Status, id)
		assert.Equal(t, 1, resp.Steps[id].Attempts, id)
	}
	assert.Empty(t, m.ListOperations())
}

func TestManager_GeneratesRunID(t *testing.T) {
	m := testManager(newFakeStep("only", nil))

	resp, err := m.Execute(context.Background(), OperationRequest{ReportDate: "20240131"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
}

func TestManager_RetriesRetryableErrors(t *testing.T) {
	load := newFakeStep(StepIDLoad, nil).failing(2, errors.NewSourceAccessError("file locked", nil))
	report := newFakeStep(StepIDReport, nil)
	m := testManager(load, report)

	resp, err := m.Execute(context.Background(), OperationRequest{ReportDate: "20240131"})
	require.NoError(t, err)

	assert.Equal(t, 3, load.Calls())
	assert.Equal(t, 3, resp.Steps[StepIDLoad].Attempts)
	assert.Equal(t, StepStatusCompleted, resp.Steps[StepIDLoad].Status)
	assert.Equal(t, 1, report.Calls())
}

func TestManager_GivesUpAfterMaxAttempts(t *testing.T) {
	load := newFakeStep(StepIDLoad, nil).failing(-1, errors.NewSourceAccessError("missing file", nil))
	report := newFakeStep(StepIDReport, nil)
	m := testManager(load, report)

	resp, err := m.Execute(context.Background(), OperationRequest{ReportDate: "20240131"})
	require.Error(t, err)

	assert.Equal(t, 3, load.Calls())
	assert.Equal(t, 0, report.Calls())
	assert.Equal(t, OperationStatusFailed, resp.Status)
	assert.Equal(t, StepStatusFailed, resp.Steps[StepIDLoad].Status)
	assert.Equal(t, StepStatusSkipped, resp.Steps[StepIDReport].Status)

	var opErr *OperationError
	require.ErrorAs(t, err, &opErr)
	assert.Equal(t, ErrorTypeExecution, opErr.Type)
	assert.Equal(t, StepIDLoad, opErr.Step)
	assert.Equal(t, 3, opErr.Attempts)
	assert.True(t, errors.IsType(err, errors.ErrTypeSourceAccess))
	assert.Contains(t, resp.Error, "missing file")
}

func TestManager_DoesNotRetryPermanentErrors(t *testing.T) {
	load := newFakeStep(StepIDLoad, nil).failing(-1, errors.NewSchemaError("CIF column missing", nil))
	m := testManager(load)

	_, err := m.Execute(context.Background(), OperationRequest{ReportDate: "20240131"})
	require.Error(t, err)
	assert.Equal(t, 1, load.Calls())
	assert.True(t, errors.IsType(err, errors.ErrTypeSchema))
}

func TestManager_DefaultPolicyRunsOnce(t *testing.T) {
	report := newFakeStep(StepIDReport, nil).failing(-1, errors.NewSourceAccessError("retryable but not configured", nil))
	m := testManager(report)

	_, err := m.Execute(context.Background(), OperationRequest{ReportDate: "20240131"})
	require.Error(t, err)
	assert.Equal(t, 1, report.Calls())
}

func TestManager_CancellationInterruptsRetryWait(t *testing.T) {
	load := newFakeStep(StepIDLoad, nil).failing(-1, errors.NewSourceAccessError("missing file", nil))
	cfg := NewConfigBuilder().WithRetryPolicy(StepIDLoad, FixedRetry(3, time.Hour)).Build()
	m := NewManager(nil, cfg, nil, discardLogger())
	require.NoError(t, m.RegisterStage(load))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	start := time.Now()
	resp, err := m.Execute(ctx, OperationRequest{ReportDate: "20240131"})
	require.Error(t, err)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, 1, load.Calls())
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(err))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, OperationStatusCancelled, resp.Status)
}

func TestManager_CancelledBeforeStart(t *testing.T) {
	step := newFakeStep("first", nil)
	m := testManager(step)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := m.Execute(ctx, OperationRequest{ReportDate: "20240131"})
	require.Error(t, err)
	assert.Equal(t, 0, step.Calls())
	assert.Equal(t, StepStatusSkipped, resp.Steps["first"].Status)
}

func TestManager_StepTimeout(t *testing.T) {
	step := newFakeStep("slow", nil)
	step.block = true
	cfg := NewConfigBuilder().WithStepTimeout("slow", 20*time.Millisecond).Build()
	m := NewManager(nil, cfg, nil, discardLogger())
	require.NoError(t, m.RegisterStage(step))

	resp, err := m.Execute(context.Background(), OperationRequest{ReportDate: "20240131"})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeTimeout, GetErrorType(err))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, OperationStatusFailed, resp.Status)
}

func TestManager_ValidationFailure(t *testing.T) {
	step := newFakeStep("invalid", nil)
	step.validateErr = stderrors.New("report date is required")
	m := testManager(step)

	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
	assert.Equal(t, 0, step.Calls())
	assert.Equal(t, StepStatusFailed, resp.Steps["invalid"].Status)
}

func TestManager_NoSteps(t *testing.T) {
	m := testManager()

	resp, err := m.Execute(context.Background(), OperationRequest{ReportDate: "20240131"})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeFatal, GetErrorType(err))
	assert.Equal(t, OperationStatusFailed, resp.Status)
}

func TestManager_CancelOperation(t *testing.T) {
	step := newFakeStep("blocking", nil)
	step.block = true
	m := testManager(step)

	done := make(chan error, 1)
	go func() {
		_, err := m.Execute(context.Background(), OperationRequest{ID: "run-cancel", ReportDate: "20240131"})
		done <- err
	}()

	require.Eventually(t, func() bool {
		_, err := m.GetOperation("run-cancel")
		return err == nil
	}, time.Second, 5*time.Millisecond)
	require.NoError(t, m.CancelOperation("run-cancel"))

	select {
	case err := <-done:
		assert.Equal(t, ErrorTypeCancellation, GetErrorType(err))
	case <-time.After(5 * time.Second):
		t.Fatal("operation was not cancelled")
	}

	assert.ErrorIs(t, m.CancelOperation("run-cancel"), ErrOperationNotFound)
}
