package operations

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"nplreport/internal/config"
)

func TestRetryPolicy_DelayAfter(t *testing.T) {
	fixed := FixedRetry(3, 10*time.Second)
	assert.Equal(t, 10*time.Second, fixed.DelayAfter(1))
	assert.Equal(t, 10*time.Second, fixed.DelayAfter(2))

	backoff := RetryPolicy{MaxAttempts: 4, Delay: time.Second, Backoff: 2}
	assert.Equal(t, time.Second, backoff.DelayAfter(1))
	assert.Equal(t, 2*time.Second, backoff.DelayAfter(2))
	assert.Equal(t, 4*time.Second, backoff.DelayAfter(3))

	assert.Equal(t, 1, RetryPolicy{}.attempts())
	assert.Equal(t, time.Second, RetryPolicy{Delay: time.Second}.DelayAfter(3))
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()

	load := cfg.GetRetryPolicy(StepIDLoad)
	assert.Equal(t, 3, load.MaxAttempts)
	assert.Equal(t, 10*time.Second, load.Delay)

	assert.Equal(t, NoRetry(), cfg.GetRetryPolicy(StepIDReport))
	assert.Equal(t, DefaultStepTimeout, cfg.GetStepTimeout(StepIDReport))
}

func TestConfigFromPipeline(t *testing.T) {
	pipeline := config.Default().Pipeline
	pipeline.LoadAttempts = 5
	pipeline.LoadRetryDelay = 2 * time.Second
	pipeline.Timeout = time.Minute

	cfg := ConfigFromPipeline(pipeline)
	assert.Equal(t, FixedRetry(5, 2*time.Second), cfg.GetRetryPolicy(StepIDLoad))
	assert.Equal(t, time.Minute, cfg.Timeout)
}
