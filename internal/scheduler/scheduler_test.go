package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/brightloop/pulse/internal/domain"
)

type fakeLister struct {
	mu       sync.Mutex
	monitors []domain.Monitor
}

func (f *fakeLister) ListMonitors() ([]domain.Monitor, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Monitor, len(f.monitors))
	copy(out, f.monitors)
	return out, nil
}

func testLogger() *zap.SugaredLogger { return zap.NewNop().Sugar() }

func TestTryAcquireRelease_MutualExclusion(t *testing.T) {
	s := New(&fakeLister{}, func(ctx context.Context, m domain.Monitor) {}, Config{}, testLogger())

	if !s.TryAcquire("m1") {
		t.Fatal("expected first acquire to succeed")
	}
	if s.TryAcquire("m1") {
		t.Fatal("expected second acquire for the same monitor to fail")
	}
	s.Release("m1")
	if !s.TryAcquire("m1") {
		t.Fatal("expected acquire to succeed again after release")
	}
}

func TestScan_SkipsInFlightMonitor(t *testing.T) {
	var calls int32
	lister := &fakeLister{monitors: []domain.Monitor{{ID: "m1", CheckIntervalSec: 1}}}
	s := New(lister, func(ctx context.Context, m domain.Monitor) {
		atomic.AddInt32(&calls, 1)
	}, Config{WorkerCount: 1}, testLogger())

	// Hold the slot as if a manual check were running.
	if !s.TryAcquire("m1") {
		t.Fatal("expected acquire to succeed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("expected scheduled check to be skipped while in-flight, got %d calls", calls)
	}
}

func TestScan_RunsDueMonitor(t *testing.T) {
	done := make(chan struct{})
	lister := &fakeLister{monitors: []domain.Monitor{{ID: "m1", CheckIntervalSec: 1}}}
	s := New(lister, func(ctx context.Context, m domain.Monitor) {
		close(done)
	}, Config{WorkerCount: 1}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)
	defer s.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the due monitor to be run")
	}
}
