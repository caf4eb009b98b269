package operations

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeStep fails with err on its first failures calls and succeeds afterwards.
// A negative failures value fails on every call.
type fakeStep struct {
	BaseStage
	failures    int
	err         error
	validateErr error
	block       bool

	mu    sync.Mutex
	calls int
	log   *[]string
}

func newFakeStep(id string, log *[]string) *fakeStep {
	return &fakeStep{BaseStage: NewBaseStage(id, "Fake "+id), log: log}
}

func (s *fakeStep) failing(n int, err error) *fakeStep {
	s.failures = n
	s.err = err
	return s
}

func (s *fakeStep) Validate(state *OperationState) error {
	return s.validateErr
}

func (s *fakeStep) Execute(ctx context.Context, state *OperationState) error {
	s.mu.Lock()
	s.calls++
	calls := s.calls
	if s.log != nil {
		*s.log = append(*s.log, s.ID())
	}
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return ctx.Err()
	}
	if s.failures < 0 || calls <= s.failures {
		return s.err
	}
	return nil
}

func (s *fakeStep) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testManager(steps ...Step) *Manager {
	cfg := NewConfigBuilder().
		WithDefaultRetry(NoRetry()).
		WithRetryPolicy(StepIDLoad, FixedRetry(3, time.Millisecond)).
		Build()
	m := NewManager(nil, cfg, nil, discardLogger())
	for _, s := range steps {
		if err := m.RegisterStage(s); err != nil {
			panic(err)
		}
	}
	return m
}
