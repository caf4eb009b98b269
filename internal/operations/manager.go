package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"nplreport/internal/infrastructure"
)

// Manager runs the registered steps of a pipeline one after another
type Manager struct {
	registry *Registry
	config   *Config
	tracer   *OperationTracer
	logger   *slog.Logger

	mu         sync.RWMutex
	operations map[string]*runningOperation
}

type runningOperation struct {
	state  *OperationState
	cancel context.CancelFunc
}

// NewManager creates a new pipeline manager. Nil arguments fall back to an
// empty registry, the default configuration, no instrumentation and the
// default logger.
func NewManager(registry *Registry, config *Config, tracer *OperationTracer, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry:   registry,
		config:     config,
		tracer:     tracer,
		logger:     logger.With(slog.String("component", "operations")),
		operations: make(map[string]*runningOperation),
	}
}

// RegisterStage appends a Step to the pipeline
func (m *Manager) RegisterStage(step Step) error {
	return m.registry.Register(step)
}

// SetConfig updates the execution configuration
func (m *Manager) SetConfig(config *Config) {
	if config != nil {
		m.config = config
	}
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// GetRegistry returns the registry of pipeline steps
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs every registered step for the requested reporting period.
// The returned response is never nil; err is non-nil when any step failed.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = infrastructure.GenerateRunID()
	}
	ctx = infrastructure.WithRunID(ctx, req.ID)
	ctx = infrastructure.WithReportDate(ctx, req.ReportDate)

	var cancel context.CancelFunc
	if m.config.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, m.config.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	state := NewOperationState(req.ID, req.ReportDate)
	state.SetConfig(ConfigKeyReportDate, req.ReportDate)
	for k, v := range req.Parameters {
		state.SetConfig(k, v)
	}

	m.storeOperation(state, cancel)
	defer m.removeOperation(req.ID)

	steps := m.registry.List()
	if len(steps) == 0 {
		err := NewFatalError("no steps registered", nil)
		state.Fail(err)
		m.logOperationError(ctx, req.ID, err)
		return m.createResponse(state), err
	}
	for _, step := range steps {
		state.SetStage(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, req.ID, req.ReportDate)
	defer span.End()

	m.logOperationStart(ctx, req.ID, req.ReportDate, len(steps))
	state.Start()

	err := m.executeSequential(ctx, state, steps)

	switch {
	case err == nil:
		state.Complete()
	case GetErrorType(err) == ErrorTypeCancellation:
		state.Cancel(err)
	default:
		state.Fail(err)
	}

	m.tracer.RecordOperationCompletion(ctx, span, state.Duration(), state.GetDiagnostics(), err)
	if err != nil {
		m.logOperationError(ctx, req.ID, err)
	} else {
		m.logOperationComplete(ctx, req.ID, state.Duration())
	}

	return m.createResponse(state), err
}

// executeSequential runs steps in order and stops at the first failure,
// marking the remaining steps as skipped
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			m.skipRemaining(state, steps[i:], "operation cancelled")
			return NewCancellationError(step.ID(), err)
		}

		m.logger.InfoContext(ctx, "executing_step",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := m.executeStep(ctx, state, step); err != nil {
			m.skipRemaining(state, steps[i+1:], fmt.Sprintf("previous step %s failed", step.ID()))
			return err
		}
	}
	return nil
}

// executeStep runs one step under its retry policy. Only retryable errors
// are attempted again; cancellation interrupts the wait between attempts.
func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStage(step.ID())
	if stepState == nil {
		return NewFatalError(fmt.Sprintf("state of step %s not found", step.ID()), nil)
	}

	if err := step.Validate(state); err != nil {
		stepState.Fail(err)
		m.logStepError(ctx, state.ID, step.ID(), err)
		return &OperationError{Type: ErrorTypeValidation, Step: step.ID(), Message: "step cannot run", Cause: err}
	}

	timeout := m.config.GetStepTimeout(step.ID())
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stepCtx, span := m.tracer.TraceStepExecution(stepCtx, state.ID, step.ID())
	defer span.End()

	policy := m.config.GetRetryPolicy(step.ID())
	maxAttempts := policy.attempts()

	for attempt := 1; ; attempt++ {
		stepState.Start()
		m.logStepStart(stepCtx, state.ID, step.ID(), attempt, maxAttempts)

		start := time.Now()
		err := step.Execute(stepCtx, state)
		duration := time.Since(start)
		m.tracer.RecordStepAttempt(stepCtx, step.ID(), attempt, duration, err)

		if err == nil {
			stepState.Complete()
			m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), attempt, nil)
			m.logStepComplete(stepCtx, state.ID, step.ID(), stepState.Duration(), attempt)
			return nil
		}

		if ctxErr := m.interrupted(ctx, stepCtx, step.ID(), timeout); ctxErr != nil {
			stepState.Fail(ctxErr)
			m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), attempt, ctxErr)
			return ctxErr
		}

		if !IsRetryable(err) || attempt >= maxAttempts {
			opErr := NewExecutionError(step.ID(), err, attempt)
			stepState.Fail(err)
			m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), attempt, opErr)
			m.logStepError(stepCtx, state.ID, step.ID(), err)
			return opErr
		}

		delay := policy.DelayAfter(attempt)
		m.logger.WarnContext(stepCtx, "step_retry",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))
		m.tracer.RecordRetry(stepCtx, step.ID(), delay)

		if err := wait(stepCtx, delay); err != nil {
			ctxErr := m.interrupted(ctx, stepCtx, step.ID(), timeout)
			if ctxErr == nil {
				ctxErr = NewCancellationError(step.ID(), err)
			}
			stepState.Fail(ctxErr)
			m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), attempt, ctxErr)
			return ctxErr
		}
	}
}

// interrupted maps a done context to a cancellation or step timeout error
func (m *Manager) interrupted(parent, stepCtx context.Context, stepID string, timeout time.Duration) *OperationError {
	if err := parent.Err(); err != nil {
		return NewCancellationError(stepID, err)
	}
	if err := stepCtx.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return NewTimeoutError(stepID, timeout.String(), err)
		}
		return NewCancellationError(stepID, err)
	}
	return nil
}

// wait blocks for d or until ctx is done
func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) skipRemaining(state *OperationState, steps []Step, reason string) {
	for _, step := range steps {
		if s := state.GetStage(step.ID()); s != nil && s.GetStatus() == StepStatusPending {
			s.Skip(reason)
		}
	}
}

// createResponse creates a response from a snapshot of the state
func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	snapshot := state.Clone()
	resp := &OperationResponse{
		ID:          snapshot.ID,
		ReportDate:  snapshot.ReportDate,
		Status:      snapshot.Status,
		Duration:    state.Duration(),
		Steps:       snapshot.Steps,
		StepOrder:   snapshot.Order,
		Artifacts:   snapshot.Artifacts.List(),
		Diagnostics: snapshot.Diagnostics,
	}
	if snapshot.Error != nil {
		resp.Error = snapshot.Error.Error()
	}
	return resp
}

// GetOperation returns a snapshot of a running operation
func (m *Manager) GetOperation(id string) (*OperationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	op, exists := m.operations[id]
	if !exists {
		return nil, ErrOperationNotFound
	}
	return op.state.Clone(), nil
}

// ListOperations returns snapshots of all running operations
func (m *Manager) ListOperations() []*OperationState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*OperationState, 0, len(m.operations))
	for _, op := range m.operations {
		out = append(out, op.state.Clone())
	}
	return out
}

// CancelOperation cancels a running operation. The run stops at the next
// step boundary or retry wait.
func (m *Manager) CancelOperation(id string) error {
	m.mu.RLock()
	op, exists := m.operations[id]
	m.mu.RUnlock()

	if !exists {
		return ErrOperationNotFound
	}
	op.cancel()
	return nil
}

func (m *Manager) storeOperation(state *OperationState, cancel context.CancelFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[state.ID] = &runningOperation{state: state, cancel: cancel}
}

func (m *Manager) removeOperation(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.operations, id)
}

func (m *Manager) logOperationStart(ctx context.Context, operationID, reportDate string, steps int) {
	m.logger.InfoContext(ctx, "operation_start",
		slog.String("operation_id", operationID),
		slog.String("report_date", reportDate),
		slog.Int("steps", steps))
}

func (m *Manager) logOperationComplete(ctx context.Context, operationID string, duration time.Duration) {
	m.logger.InfoContext(ctx, "operation_complete",
		slog.String("operation_id", operationID),
		slog.Duration("duration", duration))
}

func (m *Manager) logOperationError(ctx context.Context, operationID string, err error) {
	m.logger.ErrorContext(ctx, "operation_error",
		slog.String("operation_id", operationID),
		slog.String("step", FailedStep(err)),
		slog.String("error", err.Error()))
}

func (m *Manager) logStepStart(ctx context.Context, operationID, stepID string, attempt, maxAttempts int) {
	m.logger.DebugContext(ctx, "step_start",
		slog.String("operation_id", operationID),
		slog.String("step", stepID),
		slog.Int("attempt", attempt),
		slog.Int("max_attempts", maxAttempts))
}

func (m *Manager) logStepComplete(ctx context.Context, operationID, stepID string, duration time.Duration, attempts int) {
	m.logger.InfoContext(ctx, "step_complete",
		slog.String("operation_id", operationID),
		slog.String("step", stepID),
		slog.Int("attempts", attempts),
		slog.Duration("duration", duration))
}

func (m *Manager) logStepError(ctx context.Context, operationID, stepID string, err error) {
	m.logger.ErrorContext(ctx, "step_error",
		slog.String("operation_id", operationID),
		slog.String("step", stepID),
		slog.String("error", err.Error()))
}
