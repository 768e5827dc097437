// Package engine owns the probe engine's lifecycle (C7): it wires the
// scheduler, check pipeline, and alert dispatcher together and
// exposes the single Start/Stop surface the rest of the process uses.
package engine

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/brightloop/pulse/internal/alert"
	"github.com/brightloop/pulse/internal/domain"
	"github.com/brightloop/pulse/internal/pipeline"
	"github.com/brightloop/pulse/internal/scheduler"
	"github.com/brightloop/pulse/internal/store"
)

// Config controls the scheduler cadence and worker pool size.
type Config struct {
	TickInterval time.Duration
	WorkerCount  int
}

// Engine is the process-wide "monitoring active" state (§5): it is
// set at Start and cleared at Stop, and owns the only cancellation
// token the scheduler and its probes observe.
type Engine struct {
	store *store.Store
	log   *zap.SugaredLogger
	cfg   Config

	pipeline  *pipeline.Pipeline
	scheduler *scheduler.Scheduler
	dispatch  *alert.Dispatcher

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
}

// New wires a Pipeline, Scheduler, and Dispatcher against the given
// store and SMTP transport.
func New(s *store.Store, transport alert.Transport, cfg Config, log *zap.SugaredLogger) *Engine {
	e := &Engine{store: s, log: log, cfg: cfg}
	e.dispatch = alert.New(s, transport, log)
	e.pipeline = pipeline.New(s, e.onStateChange, log)
	e.scheduler = scheduler.New(s, e.runCheck, scheduler.Config{
		TickInterval: cfg.TickInterval,
		WorkerCount:  cfg.WorkerCount,
	}, log)
	return e
}

// onStateChange hands each event to its own goroutine so a slow or
// hanging SMTP send never blocks the check pipeline.
func (e *Engine) onStateChange(ctx context.Context, m domain.Monitor, previous, new domain.Status) {
	go e.dispatch.HandleStateChange(ctx, m, previous, new)
}

func (e *Engine) runCheck(ctx context.Context, m domain.Monitor) {
	if _, err := e.pipeline.Run(ctx, m); err != nil {
		e.log.Warnw("engine: scheduled check failed", "monitor_id", m.ID, "error", err)
	}
}

// Start launches the scheduler loop as a detached background activity.
// A second call while already running is a no-op (§4.6).
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.running = true
	e.scheduler.Start(ctx)
}

// Stop cancels outstanding probes, waits for the scheduler to exit,
// and clears the running flag. It does not close the store; the
// caller owns the store's lifetime.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	cancel := e.cancel
	e.running = false
	e.mu.Unlock()

	cancel()
	e.scheduler.Stop()
}

// RunManualCheck performs an out-of-band synchronous probe through the
// same pipeline the scheduler uses (Open Question a: manual checks
// emit alerts too), serialized against the scheduler's in-flight set
// per Open Question (c). ok is false if a probe for this monitor is
// already running, scheduled or manual.
func (e *Engine) RunManualCheck(ctx context.Context, m domain.Monitor) (log domain.UptimeLog, ok bool, err error) {
	if !e.scheduler.TryAcquire(m.ID) {
		return domain.UptimeLog{}, false, nil
	}
	defer e.scheduler.Release(m.ID)

	log, err = e.pipeline.Run(ctx, m)
	return log, true, err
}
