// Package pipeline implements the per-monitor check algorithm (§4.3):
// dispatch to a probe, persist the result, recompute uptime, and
// surface state-change events to the alert dispatcher.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brightloop/pulse/internal/domain"
	"github.com/brightloop/pulse/internal/probe"
)

// Store is the persistence surface the pipeline needs. It is
// satisfied by *store.Store; declared locally so this package doesn't
// import store's dialect/migration concerns.
type Store interface {
	ApplyCheckResult(id string, status domain.Status, checkedAt time.Time, responseTime *float64, sslExpiresAt *time.Time, pingPacketLoss *float64, keywordFound *bool, actualStatusCode *int, jsonValidationResult *bool) error
	InsertLog(l domain.UptimeLog) error
	Uptime24h(monitorID string) (pct float64, total int, err error)
	SetUptimePercentage(id string, pct float64) error
}

// StateChangeHandler is notified after a status transition from a known
// status to a different one completes its store writes (§4.3 step 7);
// whether the transition qualifies for an alert is decided by the
// handler. Implementations (the alert dispatcher) must not block the
// pipeline; Pipeline invokes the handler synchronously but callers are
// expected to keep it fast or hand off internally.
type StateChangeHandler func(ctx context.Context, m domain.Monitor, previous, new domain.Status)

// Pipeline runs the seven-step check algorithm for one monitor at a
// time; callers are responsible for the at-most-one-in-flight
// guarantee (owned by internal/scheduler).
type Pipeline struct {
	store    Store
	onChange StateChangeHandler
	log      *zap.SugaredLogger
}

// New builds a Pipeline. onChange may be nil if no alerting is wired.
func New(store Store, onChange StateChangeHandler, log *zap.SugaredLogger) *Pipeline {
	return &Pipeline{store: store, onChange: onChange, log: log}
}

// Run executes one check for the given monitor ID: dispatch, persist,
// aggregate, and (on a qualifying transition) notify. Errors from the
// store are logged and swallowed so one broken monitor never blocks
// the others (§7 propagation policy); Run still returns the error so
// callers that need it (e.g. the manual-check API handler) can report
// it to the caller.
func (p *Pipeline) Run(ctx context.Context, m domain.Monitor) (domain.UptimeLog, error) {
	previousStatus := m.Status

	fn := probe.Dispatch(m.Kind)
	result := fn(ctx, m)

	if ctx.Err() != nil {
		// Cancelled mid-flight: discard partial results (§5 cancellation
		// semantics), write nothing.
		return domain.UptimeLog{}, ctx.Err()
	}

	now := time.Now().UTC()

	if err := p.store.ApplyCheckResult(
		m.ID, result.Status, now, result.ResponseTime,
		result.Payload.SSLExpiresAt, result.Payload.PingPacketLoss,
		result.Payload.KeywordFound, result.Payload.APIStatusCode, result.Payload.APIJSONValidationResult,
	); err != nil {
		p.log.Errorw("pipeline: apply check result failed", "monitor_id", m.ID, "error", err)
		return domain.UptimeLog{}, err
	}

	log := domain.UptimeLog{
		ID:           uuid.NewString(),
		MonitorID:    m.ID,
		Timestamp:    now,
		Status:       result.Status,
		ResponseTime: result.ResponseTime,
		ErrorMessage: result.ErrorMessage,
		Payload:      result.Payload,
	}
	if err := p.store.InsertLog(log); err != nil {
		p.log.Errorw("pipeline: insert log failed", "monitor_id", m.ID, "error", err)
		return log, err
	}

	if pct, total, err := p.store.Uptime24h(m.ID); err != nil {
		p.log.Errorw("pipeline: uptime aggregation failed", "monitor_id", m.ID, "error", err)
	} else if total > 0 {
		// I3: zero logs in the window leaves uptime_percentage unchanged.
		if err := p.store.SetUptimePercentage(m.ID, pct); err != nil {
			p.log.Errorw("pipeline: persist uptime percentage failed", "monitor_id", m.ID, "error", err)
		}
	}

	if previousStatus != domain.StatusUnknown && previousStatus != result.Status && p.onChange != nil {
		p.onChange(ctx, m, previousStatus, result.Status)
	}

	return log, nil
}
