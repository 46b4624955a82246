package job

import (
	"context"
	"testing"
	"time"

	"ptre-signal-engine/internal/service"

	"go.opentelemetry.io/otel/trace"
)

type fakeRunner struct {
	calls int
}

func (f *fakeRunner) RunAll(ctx context.Context) service.PipelineResult {
	f.calls++
	return service.PipelineResult{Succeeded: []string{"AAPL"}}
}

func TestNextRunUTC(t *testing.T) {
	now := time.Date(2025, 6, 2, 0, 30, 0, 0, time.UTC)
	next := nextRunUTC(now, 1)
	if !next.Equal(time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected same-day run, got %v", next)
	}

	now = time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)
	next = nextRunUTC(now, 1)
	if !next.Equal(time.Date(2025, 6, 3, 1, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected next-day run at the exact hour, got %v", next)
	}

	now = time.Date(2025, 6, 2, 15, 45, 0, 0, time.UTC)
	next = nextRunUTC(now, 1)
	if !next.Equal(time.Date(2025, 6, 3, 1, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected next-day run, got %v", next)
	}
}

func TestNewPipelineJobClampsHour(t *testing.T) {
	j := NewPipelineJob(trace.NewNoopTracerProvider().Tracer("test"), &fakeRunner{}, 99)
	if j.runHour != 1 {
		t.Fatalf("expected fallback hour 1, got %d", j.runHour)
	}
}

func TestRunOnce(t *testing.T) {
	runner := &fakeRunner{}
	j := NewPipelineJob(trace.NewNoopTracerProvider().Tracer("test"), runner, 1)
	j.runOnce(context.Background())
	if runner.calls != 1 {
		t.Fatalf("expected one run, got %d", runner.calls)
	}
}

func TestStartWithoutServiceWaitsForCancel(t *testing.T) {
	j := NewPipelineJob(trace.NewNoopTracerProvider().Tracer("test"), nil, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		j.Start(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
}
