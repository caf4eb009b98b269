package operations

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"nplreport/internal/errors"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "source access", err: errors.NewSourceAccessError("missing", nil), want: true},
		{name: "wrapped source access", err: fmt.Errorf("load: %w", errors.NewSourceAccessError("missing", nil)), want: true},
		{name: "schema", err: errors.NewSchemaError("no CIF", nil), want: false},
		{name: "plain", err: fmt.Errorf("boom"), want: false},
		{name: "cancellation", err: NewCancellationError(StepIDLoad, context.Canceled), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestOperationError(t *testing.T) {
	cause := errors.NewRenderError("enriched dataset is empty", nil)
	err := NewExecutionError(StepIDReport, cause, 1)

	assert.Equal(t, "[execution] report: step execution failed: [RENDER] enriched dataset is empty", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, StepIDReport, FailedStep(err))
	assert.Equal(t, ErrorTypeExecution, GetErrorType(fmt.Errorf("run: %w", err)))
	assert.False(t, err.Retryable)

	retried := NewExecutionError(StepIDLoad, errors.NewSourceAccessError("missing", nil), 3)
	assert.Contains(t, retried.Error(), "after 3 attempts")
	assert.True(t, retried.Retryable)
}
