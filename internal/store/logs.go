package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/brightloop/pulse/internal/domain"
)

const logColumns = `id, monitor_id, timestamp, status, response_time, error_message,
	ssl_expires_at, ssl_days_until_expiry, dns_resolution_time, dns_result,
	port_open, ping_packet_loss, ping_min, ping_avg, ping_max,
	keyword_found, keyword_match_count,
	api_status_code, api_response_size, api_json_validation_result`

// InsertLog appends one completed check to the monitor's history
// (§4.3 step 5, §6 "insert_log"). Logs are append-only: there is no
// UpdateLog or DeleteLog.
func (s *Store) InsertLog(l domain.UptimeLog) error {
	query := s.rebind(`INSERT INTO uptime_logs (` + logColumns + `) VALUES (
		?, ?, ?, ?, ?, ?,
		?, ?, ?, ?,
		?, ?, ?, ?, ?,
		?, ?,
		?, ?, ?
	)`)
	p := l.Payload
	_, err := s.db.Exec(query,
		l.ID, l.MonitorID, l.Timestamp, string(l.Status), l.ResponseTime, l.ErrorMessage,
		p.SSLExpiresAt, p.SSLDaysUntilExpiry, p.DNSResolutionTime, p.DNSResult,
		p.PortOpen, p.PingPacketLoss, p.PingMin, p.PingAvg, p.PingMax,
		p.KeywordFound, p.KeywordMatchCount,
		p.APIStatusCode, p.APIResponseSize, p.APIJSONValidationResult,
	)
	return err
}

// FindLogs returns a monitor's logs newer than since, most recent
// first, capped at limit, or at 100 when limit is not positive (§6
// "find_logs").
func (s *Store) FindLogs(monitorID string, since time.Time, limit int) ([]domain.UptimeLog, error) {
	if limit <= 0 {
		limit = 100
	}
	query := s.rebind(`SELECT ` + logColumns + ` FROM uptime_logs
		WHERE monitor_id = ? AND timestamp >= ?
		ORDER BY timestamp DESC LIMIT ?`)
	rows, err := s.db.Query(query, monitorID, since, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.UptimeLog
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// LatestLog returns the most recent log for a monitor, or ErrNotFound
// if it has never been checked.
func (s *Store) LatestLog(monitorID string) (domain.UptimeLog, error) {
	query := s.rebind(`SELECT ` + logColumns + ` FROM uptime_logs
		WHERE monitor_id = ? ORDER BY timestamp DESC LIMIT 1`)
	row := s.db.QueryRow(query, monitorID)
	l, err := scanLog(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UptimeLog{}, ErrNotFound
	}
	if err != nil {
		return domain.UptimeLog{}, err
	}
	return l, nil
}

func scanLog(row scannable) (domain.UptimeLog, error) {
	var l domain.UptimeLog
	var status string
	err := row.Scan(
		&l.ID, &l.MonitorID, &l.Timestamp, &status, &l.ResponseTime, &l.ErrorMessage,
		&l.Payload.SSLExpiresAt, &l.Payload.SSLDaysUntilExpiry, &l.Payload.DNSResolutionTime, &l.Payload.DNSResult,
		&l.Payload.PortOpen, &l.Payload.PingPacketLoss, &l.Payload.PingMin, &l.Payload.PingAvg, &l.Payload.PingMax,
		&l.Payload.KeywordFound, &l.Payload.KeywordMatchCount,
		&l.Payload.APIStatusCode, &l.Payload.APIResponseSize, &l.Payload.APIJSONValidationResult,
	)
	if err != nil {
		return domain.UptimeLog{}, err
	}
	l.Status = domain.Status(status)
	return l, nil
}
