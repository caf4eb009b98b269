package operations

import (
	"fmt"
	"sync"
	"time"

	"nplreport/pkg/contracts/domain"
)

// OperationStatusValue represents the overall operation status
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
	OperationStatusCancelled OperationStatusValue = "cancelled"
)

// OperationState represents the complete state of one pipeline run
type OperationState struct {
	mu sync.RWMutex

	ID         string               `json:"id"`
	ReportDate string               `json:"report_date"`
	Status     OperationStatusValue `json:"status"`
	StartTime  time.Time            `json:"start_time"`
	EndTime    *time.Time           `json:"end_time,omitempty"`

	// Steps holds the state of each step by ID; Order keeps execution order
	Steps map[string]*StepState `json:"steps"`
	Order []string              `json:"order"`

	// Context passes datasets between steps
	Context map[string]interface{} `json:"-"`

	// Config carries request parameters
	Config map[string]interface{} `json:"config"`

	Artifacts   *ArtifactManifest  `json:"artifacts"`
	Diagnostics domain.Diagnostics `json:"diagnostics"`

	Error error `json:"-"`
}

// NewOperationState creates a new operation state
func NewOperationState(id, reportDate string) *OperationState {
	return &OperationState{
		ID:         id,
		ReportDate: reportDate,
		Status:     OperationStatusPending,
		StartTime:  time.Now(),
		Steps:      make(map[string]*StepState),
		Context:    make(map[string]interface{}),
		Config:     make(map[string]interface{}),
		Artifacts:  NewArtifactManifest(id),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
	p.Error = err
}

// GetStatus returns the current status
func (p *OperationState) GetStatus() OperationStatusValue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// GetStage returns the state of a specific Step
func (p *OperationState) GetStage(stepID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stepID]
}

// SetStage registers the state of a Step, appending it to the execution order
// the first time it is seen
func (p *OperationState) SetStage(stepID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.Steps[stepID]; !exists {
		p.Order = append(p.Order, stepID)
	}
	p.Steps[stepID] = state
}

// GetContext retrieves a value from the operation context
func (p *OperationState) GetContext(key string) (interface{}, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	val, ok := p.Context[key]
	return val, ok
}

// SetContext sets a value in the operation context
func (p *OperationState) SetContext(key string, value interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Context[key] = value
}

// GetConfig retrieves a configuration value
func (p *OperationState) GetConfig(key string) (interface{}, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	val, ok := p.Config[key]
	return val, ok
}

// SetConfig sets a configuration value
func (p *OperationState) SetConfig(key string, value interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Config[key] = value
}

// Table returns a dataset produced by an earlier step
func (p *OperationState) Table(key string) (*domain.Table, error) {
	val, ok := p.GetContext(key)
	if !ok {
		return nil, fmt.Errorf("dataset %q has not been produced", key)
	}
	table, ok := val.(*domain.Table)
	if !ok || table == nil {
		return nil, fmt.Errorf("context value %q is not a dataset", key)
	}
	return table, nil
}

// StageSummary returns the stage summary produced by the report step
func (p *OperationState) StageSummary() ([]domain.StageSummary, error) {
	val, ok := p.GetContext(ContextKeySummary)
	if !ok {
		return nil, fmt.Errorf("stage summary has not been produced")
	}
	summary, ok := val.([]domain.StageSummary)
	if !ok {
		return nil, fmt.Errorf("context value %q is not a stage summary", ContextKeySummary)
	}
	return summary, nil
}

// AddDiagnostics merges coercion counts reported by a step
func (p *OperationState) AddDiagnostics(d domain.Diagnostics) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Diagnostics.Merge(d)
}

// GetDiagnostics returns a copy of the accumulated coercion counts
func (p *OperationState) GetDiagnostics() domain.Diagnostics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out domain.Diagnostics
	out.Merge(p.Diagnostics)
	return out
}

// Duration returns the duration of the operation execution
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}

// GetFailedStages returns all failed steps in execution order
func (p *OperationState) GetFailedStages() []*StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var failed []*StepState
	for _, id := range p.Order {
		if step := p.Steps[id]; step.GetStatus() == StepStatusFailed {
			failed = append(failed, step)
		}
	}
	return failed
}

// IsComplete returns true if all steps are completed or skipped
func (p *OperationState) IsComplete() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, step := range p.Steps {
		status := step.GetStatus()
		if status == StepStatusPending || status == StepStatusActive {
			return false
		}
	}
	return true
}

// HasFailures returns true if any Step has failed
func (p *OperationState) HasFailures() bool {
	return len(p.GetFailedStages()) > 0
}

// Clone creates a copy of the operation state. Datasets in the context are
// shared, not copied.
func (p *OperationState) Clone() *OperationState {
	p.mu.RLock()
	defer p.mu.RUnlock()

	clone := &OperationState{
		ID:         p.ID,
		ReportDate: p.ReportDate,
		Status:     p.Status,
		StartTime:  p.StartTime,
		Steps:      make(map[string]*StepState, len(p.Steps)),
		Order:      append([]string(nil), p.Order...),
		Context:    make(map[string]interface{}, len(p.Context)),
		Config:     make(map[string]interface{}, len(p.Config)),
		Artifacts:  p.Artifacts,
		Error:      p.Error,
	}
	clone.Diagnostics.Merge(p.Diagnostics)

	if p.EndTime != nil {
		endTime := *p.EndTime
		clone.EndTime = &endTime
	}
	for k, v := range p.Steps {
		clone.Steps[k] = v.clone()
	}
	for k, v := range p.Context {
		clone.Context[k] = v
	}
	for k, v := range p.Config {
		clone.Config[k] = v
	}
	return clone
}
