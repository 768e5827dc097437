// Package alert implements the status-change consumer (C6): it
// resolves a monitor's alert policy, decides whether a transition
// qualifies, and renders and sends the notification email.
package alert

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/brightloop/pulse/internal/domain"
	"github.com/brightloop/pulse/internal/store"
)

// SettingsFinder is the store surface the dispatcher needs.
type SettingsFinder interface {
	FindAlertSettings(monitorID string) (domain.AlertSettings, error)
}

// Dispatcher consumes state-change events and sends qualifying alerts
// (§4.5). Transport failures are logged and swallowed; they must never
// propagate back into the check pipeline.
type Dispatcher struct {
	settings  SettingsFinder
	transport Transport
	log       *zap.SugaredLogger
}

// New builds a Dispatcher.
func New(settings SettingsFinder, transport Transport, log *zap.SugaredLogger) *Dispatcher {
	return &Dispatcher{settings: settings, transport: transport, log: log}
}

// HandleStateChange implements pipeline.StateChangeHandler: it is
// invoked once per state transition already confirmed by the pipeline
// (previous status was known and differs from new), and sends an email
// only if qualifies accepts the transition.
func (d *Dispatcher) HandleStateChange(ctx context.Context, m domain.Monitor, previous, new domain.Status) {
	settings, err := d.settings.FindAlertSettings(m.ID)
	if err != nil {
		if err != store.ErrNotFound {
			d.log.Errorw("alert: load settings failed", "monitor_id", m.ID, "error", err)
		}
		return
	}
	if !settings.EmailEnabled {
		return
	}

	kind, ok := qualifies(previous, new, settings)
	if !ok {
		return
	}

	at := time.Now()
	subject := Subject(kind, m)
	text, err := RenderText(kind, m, new, at)
	if err != nil {
		d.log.Errorw("alert: render text failed", "monitor_id", m.ID, "error", err)
		return
	}
	html, err := RenderHTML(kind, m, new, at)
	if err != nil {
		d.log.Errorw("alert: render html failed", "monitor_id", m.ID, "error", err)
		return
	}

	if err := d.transport.Send(settings.Email, subject, text, html); err != nil {
		d.log.Warnw("alert: send failed, swallowing", "monitor_id", m.ID, "to", settings.Email, "error", err)
	}
}

// qualifies implements §4.5's qualifying-transition table. Both
// endpoints of the transition matter; the pipeline has already
// excluded unknown -> X.
func qualifies(previous, new domain.Status, settings domain.AlertSettings) (Kind, bool) {
	switch {
	case new == domain.StatusDown && settings.AlertOnDown:
		return KindDown, true
	case new == domain.StatusWarning && settings.AlertOnDown:
		return KindDown, true
	case new == domain.StatusUp && settings.AlertOnUp && (previous == domain.StatusDown || previous == domain.StatusWarning):
		return KindRecovery, true
	default:
		return "", false
	}
}
