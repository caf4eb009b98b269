package operations

import (
	"time"

	"nplreport/pkg/contracts/domain"
)

// Pipeline step identifiers
const (
	StepIDLoad           = "load"
	StepIDClean          = "clean"
	StepIDFeatures       = "features"
	StepIDReport         = "report"
	StepIDExportCSV      = "export_csv"
	StepIDExportWorkbook = "export_workbook"
)

// Pipeline step names
const (
	StepNameLoad           = "Load Sources"
	StepNameClean          = "Clean and Merge"
	StepNameFeatures       = "Engineer Features"
	StepNameReport         = "Create Dashboard"
	StepNameExportCSV      = "Export Enriched Dataset"
	StepNameExportWorkbook = "Export Stage Summary"
)

// Context keys for data passed between steps
const (
	ContextKeyTransactions = "transactions"
	ContextKeyPerformance  = "performance"
	ContextKeyMerged       = "merged"
	ContextKeyEnriched     = "enriched"
	ContextKeySummary      = "stage_summary"
	ContextKeyDiagnostics  = "diagnostics"
)

// Config keys
const (
	ConfigKeyReportDate = "report_date"
)

// Default timeouts
const (
	DefaultStepTimeout      = 10 * time.Minute
	DefaultOperationTimeout = 30 * time.Minute
)

// RetryPolicy defines how often a step is attempted and how long to wait
// between attempts. Delay is multiplied by Backoff after every failed attempt.
type RetryPolicy struct {
	MaxAttempts int           `json:"max_attempts" yaml:"max_attempts"`
	Delay       time.Duration `json:"delay" yaml:"delay"`
	Backoff     float64       `json:"backoff" yaml:"backoff"`
}

// NoRetry runs a step exactly once
func NoRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1, Backoff: 1}
}

// FixedRetry attempts a step up to attempts times with a constant delay
func FixedRetry(attempts int, delay time.Duration) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, Delay: delay, Backoff: 1}
}

// DelayAfter returns the wait before the attempt following the given one (1-based)
func (p RetryPolicy) DelayAfter(attempt int) time.Duration {
	delay := float64(p.Delay)
	backoff := p.Backoff
	if backoff <= 0 {
		backoff = 1
	}
	for i := 1; i < attempt; i++ {
		delay *= backoff
	}
	return time.Duration(delay)
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// OperationRequest represents a request to produce the report of one period
type OperationRequest struct {
	ID         string                 `json:"id"`
	ReportDate string                 `json:"report_date"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// OperationResponse represents the outcome of a pipeline run
type OperationResponse struct {
	ID          string                `json:"id"`
	ReportDate  string                `json:"report_date"`
	Status      OperationStatusValue  `json:"status"`
	Duration    time.Duration         `json:"duration"`
	Steps       map[string]*StepState `json:"steps"`
	StepOrder   []string              `json:"step_order"`
	Artifacts   []Artifact            `json:"artifacts,omitempty"`
	Diagnostics domain.Diagnostics    `json:"diagnostics"`
	Error       string                `json:"error,omitempty"`
}

// Artifact returns the path of the first artifact of the given kind
func (r *OperationResponse) Artifact(kind string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, a := range r.Artifacts {
		if a.Kind == kind {
			return a.Path, true
		}
	}
	return "", false
}
