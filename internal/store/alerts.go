package store

import (
	"database/sql"
	"errors"

	"github.com/brightloop/pulse/internal/domain"
)

const alertColumns = `id, monitor_id, email, email_enabled, alert_on_down, alert_on_up, created_at`

// FindAlertSettings returns a monitor's alert policy, or ErrNotFound if
// none has been configured (§6 "find_alert_settings"). A monitor with
// no settings never alerts.
func (s *Store) FindAlertSettings(monitorID string) (domain.AlertSettings, error) {
	row := s.db.QueryRow(s.rebind("SELECT "+alertColumns+" FROM alert_settings WHERE monitor_id = ?"), monitorID)
	var a domain.AlertSettings
	err := row.Scan(&a.ID, &a.MonitorID, &a.Email, &a.EmailEnabled, &a.AlertOnDown, &a.AlertOnUp, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AlertSettings{}, ErrNotFound
	}
	return a, err
}

// CreateAlertSettings inserts a monitor's alert policy. I4 limits a
// monitor to a single AlertSettings row: if one already exists, this
// returns ErrConflict instead of overwriting it.
func (s *Store) CreateAlertSettings(a domain.AlertSettings) error {
	_, err := s.FindAlertSettings(a.MonitorID)
	switch {
	case errors.Is(err, ErrNotFound):
		_, err := s.db.Exec(s.rebind("INSERT INTO alert_settings ("+alertColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)"),
			a.ID, a.MonitorID, a.Email, a.EmailEnabled, a.AlertOnDown, a.AlertOnUp, a.CreatedAt)
		return err
	case err != nil:
		return err
	default:
		return ErrConflict
	}
}

// DeleteAlertSettings removes a monitor's alert policy, or ErrNotFound
// if none existed (§6: "200 or 404").
func (s *Store) DeleteAlertSettings(monitorID string) error {
	res, err := s.db.Exec(s.rebind("DELETE FROM alert_settings WHERE monitor_id = ?"), monitorID)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
