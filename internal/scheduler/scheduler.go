// Package scheduler drives the periodic scan loop that decides which
// monitors are due for a check and hands them to a fixed worker pool.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/brightloop/pulse/internal/domain"
)

// Lister is the subset of the store the scheduler needs to enumerate
// monitors each tick.
type Lister interface {
	ListMonitors() ([]domain.Monitor, error)
}

// RunFunc performs one check for a due monitor. It is supplied by the
// engine, which runs the check pipeline; the scheduler has no knowledge of probes or
// persistence beyond listing monitors.
type RunFunc func(ctx context.Context, m domain.Monitor)

// Config controls the scheduler's cadence and concurrency.
type Config struct {
	TickInterval time.Duration
	WorkerCount  int
}

// Scheduler enumerates due monitors once per tick and dispatches them
// to a bounded worker pool, enforcing at most one in-flight probe per
// monitor (§4.2). The in-flight set is also the serialization point
// manual checks acquire against (Open Question c), so TryAcquire and
// Release are exported.
type Scheduler struct {
	store   Lister
	run     RunFunc
	log     *zap.SugaredLogger
	tick    time.Duration
	workers int

	mu       sync.Mutex
	inFlight map[string]struct{}
	lastRun  map[string]time.Time

	jobs   chan domain.Monitor
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New builds a Scheduler. Call Start to begin the scan loop.
func New(store Lister, run RunFunc, cfg Config, log *zap.SugaredLogger) *Scheduler {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 30 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 50
	}
	return &Scheduler{
		store:    store,
		run:      run,
		log:      log,
		tick:     cfg.TickInterval,
		workers:  cfg.WorkerCount,
		inFlight: make(map[string]struct{}),
		lastRun:  make(map[string]time.Time),
		jobs:     make(chan domain.Monitor, 1000),
		stopCh:   make(chan struct{}),
	}
}

// TryAcquire claims the in-flight slot for a monitor ID. It returns
// false if a probe for that monitor is already running, scheduled or
// manual.
func (s *Scheduler) TryAcquire(monitorID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[monitorID]; busy {
		return false
	}
	s.inFlight[monitorID] = struct{}{}
	return true
}

// Release frees a monitor's in-flight slot.
func (s *Scheduler) Release(monitorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, monitorID)
}

// Start launches the worker pool and the scan loop. It returns
// immediately; the loop runs until ctx is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}

	s.wg.Add(1)
	go s.loop(ctx)
}

// Stop signals the scan loop and worker pool to exit and waits for
// in-flight probes to observe cancellation. The caller's ctx passed to
// Start is what actually cancels in-flight probes; Stop only closes
// the stop channel the scan loop and workers select on.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	defer s.wg.Done()

	s.scan(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.scan(ctx)
		}
	}
}

// scan enumerates monitors and enqueues the ones that are due. A
// monitor still marked in-flight from a prior tick (or a manual check)
// is skipped this tick, never queued, per §4.2's "no queueing" rule.
func (s *Scheduler) scan(ctx context.Context) {
	monitors, err := s.store.ListMonitors()
	if err != nil {
		s.log.Errorw("scheduler: list monitors failed, retrying next tick", "error", err)
		return
	}

	now := time.Now()
	for _, m := range monitors {
		interval := time.Duration(m.CheckIntervalSec) * time.Second
		due := m.LastCheckedAt == nil || now.Sub(*m.LastCheckedAt) >= interval
		if !due {
			continue
		}
		if !s.TryAcquire(m.ID) {
			continue
		}

		select {
		case s.jobs <- m:
		case <-ctx.Done():
			s.Release(m.ID)
			return
		default:
			// Worker pool saturated; skip this tick rather than block
			// the scan and fall behind on other monitors.
			s.Release(m.ID)
		}
	}
}

func (s *Scheduler) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopCh:
			return
		case m, ok := <-s.jobs:
			if !ok {
				return
			}
			s.run(ctx, m)
			s.Release(m.ID)
		}
	}
}
