package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// LogRecord is a captured log record with its attributes flattened, including
// those attached through Logger.With
type LogRecord struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

type recordStore struct {
	mu      sync.Mutex
	records []LogRecord
}

// BufferedSlogHandler records every log entry in memory. Handlers derived
// with WithAttrs or WithGroup share the same store.
type BufferedSlogHandler struct {
	store *recordStore
	attrs []slog.Attr
	group string
}

// NewBufferedSlogHandler creates an empty handler
func NewBufferedSlogHandler() *BufferedSlogHandler {
	return &BufferedSlogHandler{store: &recordStore{}}
}

// NewTestLogger returns a logger writing to a fresh handler
func NewTestLogger() (*slog.Logger, *BufferedSlogHandler) {
	h := NewBufferedSlogHandler()
	return slog.New(h), h
}

// Enabled implements slog.Handler; every level is captured
func (h *BufferedSlogHandler) Enabled(context.Context, slog.Level) bool {
	return true
}

// Handle implements slog.Handler
func (h *BufferedSlogHandler) Handle(_ context.Context, r slog.Record) error {
	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[h.key(a.Key)] = a.Value.Any()
		return true
	})

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.records = append(h.store.records, LogRecord{
		Time:    r.Time,
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	return nil
}

// WithAttrs implements slog.Handler
func (h *BufferedSlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := &BufferedSlogHandler{store: h.store, group: h.group}
	out.attrs = append(append(out.attrs, h.attrs...), qualify(h.group, attrs)...)
	return out
}

// WithGroup implements slog.Handler
func (h *BufferedSlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	return &BufferedSlogHandler{store: h.store, attrs: h.attrs, group: h.key(name)}
}

func (h *BufferedSlogHandler) key(k string) string {
	if h.group == "" {
		return k
	}
	return h.group + "." + k
}

func qualify(group string, attrs []slog.Attr) []slog.Attr {
	if group == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: group + "." + a.Key, Value: a.Value}
	}
	return out
}

// Records returns a copy of the captured records
func (h *BufferedSlogHandler) Records() []LogRecord {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	out := make([]LogRecord, len(h.store.records))
	copy(out, h.store.records)
	return out
}

// Find returns the first record at level whose message contains message
func (h *BufferedSlogHandler) Find(level slog.Level, message string) (LogRecord, bool) {
	for _, r := range h.Records() {
		if r.Level == level && strings.Contains(r.Message, message) {
			return r, true
		}
	}
	return LogRecord{}, false
}

// Count returns the number of captured records at level
func (h *BufferedSlogHandler) Count(level slog.Level) int {
	n := 0
	for _, r := range h.Records() {
		if r.Level == level {
			n++
		}
	}
	return n
}

// AssertLogged fails the test when no record at level contains message.
// It returns the matching record.
func AssertLogged(t testing.TB, h *BufferedSlogHandler, level slog.Level, message string) LogRecord {
	t.Helper()
	r, ok := h.Find(level, message)
	if !ok {
		t.Errorf("expected %s log containing %q", level, message)
		for _, r := range h.Records() {
			t.Logf("  [%s] %s %v", r.Level, r.Message, r.Attrs)
		}
	}
	return r
}

// AssertNoErrors fails the test when an error-level record was captured
func AssertNoErrors(t testing.TB, h *BufferedSlogHandler) {
	t.Helper()
	for _, r := range h.Records() {
		if r.Level >= slog.LevelError {
			t.Errorf("unexpected error log: %s %v", r.Message, r.Attrs)
		}
	}
}
