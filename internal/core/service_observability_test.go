package core

import (
	"context"
	"sync"
	"testing"
	"time"
)

type captureLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *captureLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+": "+msg)
}

func (l *captureLogger) Debug(msg string, _ ...any) { l.log("debug", msg) }
func (l *captureLogger) Info(msg string, _ ...any)  { l.log("info", msg) }
func (l *captureLogger) Warn(msg string, _ ...any)  { l.log("warn", msg) }
func (l *captureLogger) Error(msg string, _ ...any) { l.log("error", msg) }

type captureAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (a *captureAudit) Record(_ context.Context, entry AuditEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
}

type captureMetrics struct {
	mu           sync.Mutex
	observations []string
	successes    []bool
}

func (m *captureMetrics) Observe(_ context.Context, operation string, success bool, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observations = append(m.observations, operation)
	m.successes = append(m.successes, success)
}

type captureTracer struct {
	mu    sync.Mutex
	spans []string
	errs  []error
}

type captureSpan struct {
	tracer    *captureTracer
	operation string
}

func (t *captureTracer) Start(ctx context.Context, operation string) (context.Context, TraceSpan) {
	return ctx, &captureSpan{tracer: t, operation: operation}
}

func (s *captureSpan) End(err error) {
	s.tracer.mu.Lock()
	defer s.tracer.mu.Unlock()
	s.tracer.spans = append(s.tracer.spans, s.operation)
	s.tracer.errs = append(s.tracer.errs, err)
}

func TestServiceObservabilitySuccessPath(t *testing.T) {
	logger := &captureLogger{}
	audit := &captureAudit{}
	metrics := &captureMetrics{}
	tracer := &captureTracer{}
	clock := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	svc := NewInMemoryService(
		WithLogger(logger),
		WithAuditRecorder(audit),
		WithMetricsRecorder(metrics),
		WithTracer(tracer),
		WithClock(func() time.Time { return clock }),
	)

	if _, err := svc.CreateUnit(context.Background(), DerivedUnit{Symbol: "m", Name: "metre", Def: Metre}); err != nil {
		t.Fatalf("create unit: %v", err)
	}

	if len(audit.entries) != 1 {
		t.Fatalf("expected one audit entry, got %d", len(audit.entries))
	}
	entry := audit.entries[0]
	if entry.Operation != "create_unit" || entry.Status != AuditStatusSuccess {
		t.Fatalf("unexpected audit entry %+v", entry)
	}
	if !entry.Timestamp.Equal(clock) {
		t.Fatalf("expected clock timestamp, got %v", entry.Timestamp)
	}

	if len(metrics.observations) != 1 || metrics.observations[0] != "create_unit" || !metrics.successes[0] {
		t.Fatalf("unexpected metrics %v %v", metrics.observations, metrics.successes)
	}
	if len(tracer.spans) != 1 || tracer.spans[0] != "create_unit" || tracer.errs[0] != nil {
		t.Fatalf("unexpected spans %v %v", tracer.spans, tracer.errs)
	}
	if len(logger.entries) == 0 {
		t.Fatalf("expected log output")
	}
}

func TestServiceObservabilityErrorPath(t *testing.T) {
	audit := &captureAudit{}
	metrics := &captureMetrics{}
	tracer := &captureTracer{}

	svc := NewInMemoryService(
		WithAuditRecorder(audit),
		WithMetricsRecorder(metrics),
		WithTracer(tracer),
	)

	if _, err := svc.GetUnit(context.Background(), "missing"); err == nil {
		t.Fatalf("expected lookup failure")
	}

	if len(audit.entries) != 1 || audit.entries[0].Status != AuditStatusError {
		t.Fatalf("expected error audit entry, got %+v", audit.entries)
	}
	if audit.entries[0].Err == nil || audit.entries[0].Detail == "" {
		t.Fatalf("expected error detail in audit entry")
	}
	if metrics.successes[0] {
		t.Fatalf("expected failed observation")
	}
	if tracer.errs[0] == nil {
		t.Fatalf("expected span error")
	}
}

func TestServiceOptionsNilFallBackToNoops(t *testing.T) {
	svc := NewInMemoryService(
		WithLogger(nil),
		WithAuditRecorder(nil),
		WithMetricsRecorder(nil),
		WithTracer(nil),
		WithClock(nil),
	)
	if _, err := svc.CreateUnit(context.Background(), DerivedUnit{Symbol: "kg", Name: "kilogram", Def: Kilogram}); err != nil {
		t.Fatalf("create unit with noop observers: %v", err)
	}
}
