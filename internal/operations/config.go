package operations

import (
	"time"

	"nplreport/internal/config"
)

// Config represents the pipeline execution configuration
type Config struct {
	// Timeout bounds a whole run
	Timeout time.Duration `json:"timeout"`

	// StepTimeouts bounds individual steps, including their retries
	StepTimeouts map[string]time.Duration `json:"step_timeouts"`

	// RetryPolicies overrides DefaultRetry per step
	RetryPolicies map[string]RetryPolicy `json:"retry_policies"`

	// DefaultRetry applies to steps without an override
	DefaultRetry RetryPolicy `json:"default_retry"`
}

// NewConfig returns the default pipeline configuration: every step runs once
// except loading, which is retried on source access failures
func NewConfig() *Config {
	return &Config{
		Timeout:      DefaultOperationTimeout,
		StepTimeouts: make(map[string]time.Duration),
		RetryPolicies: map[string]RetryPolicy{
			StepIDLoad: FixedRetry(config.DefaultLoadAttempts, config.DefaultLoadRetryDelay),
		},
		DefaultRetry: NoRetry(),
	}
}

// ConfigFromPipeline builds the execution configuration from application settings
func ConfigFromPipeline(cfg config.PipelineConfig) *Config {
	b := NewConfigBuilder()
	if cfg.Timeout > 0 {
		b.WithTimeout(cfg.Timeout)
	}
	if cfg.LoadAttempts > 0 {
		b.WithRetryPolicy(StepIDLoad, FixedRetry(cfg.LoadAttempts, cfg.LoadRetryDelay))
	}
	return b.Build()
}

// GetStepTimeout returns the timeout for a specific Step
func (c *Config) GetStepTimeout(stepID string) time.Duration {
	if timeout, ok := c.StepTimeouts[stepID]; ok && timeout > 0 {
		return timeout
	}
	return DefaultStepTimeout
}

// SetStepTimeout sets the timeout for a specific Step
func (c *Config) SetStepTimeout(stepID string, timeout time.Duration) {
	if c.StepTimeouts == nil {
		c.StepTimeouts = make(map[string]time.Duration)
	}
	c.StepTimeouts[stepID] = timeout
}

// GetRetryPolicy returns the retry policy for a specific Step
func (c *Config) GetRetryPolicy(stepID string) RetryPolicy {
	if policy, ok := c.RetryPolicies[stepID]; ok {
		return policy
	}
	return c.DefaultRetry
}

// SetRetryPolicy sets the retry policy for a specific Step
func (c *Config) SetRetryPolicy(stepID string, policy RetryPolicy) {
	if c.RetryPolicies == nil {
		c.RetryPolicies = make(map[string]RetryPolicy)
	}
	c.RetryPolicies[stepID] = policy
}

// ConfigBuilder provides a fluent interface for building pipeline configurations
type ConfigBuilder struct {
	config *Config
}

// NewConfigBuilder creates a new configuration builder
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{config: NewConfig()}
}

// WithTimeout sets the run timeout
func (b *ConfigBuilder) WithTimeout(timeout time.Duration) *ConfigBuilder {
	b.config.Timeout = timeout
	return b
}

// WithStepTimeout sets the timeout for a Step
func (b *ConfigBuilder) WithStepTimeout(stepID string, timeout time.Duration) *ConfigBuilder {
	b.config.SetStepTimeout(stepID, timeout)
	return b
}

// WithRetryPolicy sets the retry policy for a Step
func (b *ConfigBuilder) WithRetryPolicy(stepID string, policy RetryPolicy) *ConfigBuilder {
	b.config.SetRetryPolicy(stepID, policy)
	return b
}

// WithDefaultRetry sets the policy of steps without an override
func (b *ConfigBuilder) WithDefaultRetry(policy RetryPolicy) *ConfigBuilder {
	b.config.DefaultRetry = policy
	return b
}

// Build returns the built configuration
func (b *ConfigBuilder) Build() *Config {
	return b.config
}
