package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/brightloop/pulse/internal/domain"
)

const monitorColumns = `id, name, kind, check_interval_sec, timeout_sec, status,
	last_checked_at, last_response_time, uptime_percentage, created_at,
	url,
	ssl_domain, ssl_expiry_threshold_days,
	dns_hostname, dns_server, dns_record_type, expected_dns_result,
	port_host, port_number, port_protocol,
	ping_host, ping_count, ping_packet_size,
	keyword_url, keyword_text, keyword_match_type,
	api_url, api_method, api_headers, api_body, api_expected_status_code, api_expected_response_time,
	json_path, expected_json_value,
	ssl_expires_at, ping_packet_loss, keyword_found, actual_status_code, json_validation_result`

// ListMonitors returns every monitor, ordered by creation time (§6
// "list_monitors").
func (s *Store) ListMonitors() ([]domain.Monitor, error) {
	rows, err := s.db.Query("SELECT " + monitorColumns + " FROM monitors ORDER BY created_at ASC")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []domain.Monitor
	for rows.Next() {
		m, err := scanMonitor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMonitor looks up a single monitor by ID.
func (s *Store) GetMonitor(id string) (domain.Monitor, error) {
	row := s.db.QueryRow(s.rebind("SELECT "+monitorColumns+" FROM monitors WHERE id = ?"), id)
	m, err := scanMonitor(row)
	if err == sql.ErrNoRows {
		return domain.Monitor{}, ErrNotFound
	}
	return m, err
}

// CreateMonitor inserts a new monitor. The caller supplies ID and
// CreatedAt; the store never generates identifiers.
func (s *Store) CreateMonitor(m domain.Monitor) error {
	if m.CheckIntervalSec < 1 {
		m.CheckIntervalSec = 300
	}
	if m.TimeoutSec < 1 {
		m.TimeoutSec = 10
	}
	if m.Status == "" {
		m.Status = domain.StatusUnknown
	}

	headers, err := encodeHeaders(m.APIHeaders)
	if err != nil {
		return fmt.Errorf("encode api headers: %w", err)
	}

	query := s.rebind(`INSERT INTO monitors (` + monitorColumns + `) VALUES (
		?, ?, ?, ?, ?, ?,
		?, ?, ?, ?,
		?,
		?, ?,
		?, ?, ?, ?,
		?, ?, ?,
		?, ?, ?,
		?, ?, ?,
		?, ?, ?, ?, ?, ?,
		?, ?,
		?, ?, ?, ?, ?
	)`)
	_, err = s.db.Exec(query,
		m.ID, m.Name, string(m.Kind), m.CheckIntervalSec, m.TimeoutSec, string(m.Status),
		m.LastCheckedAt, m.LastResponseTime, m.UptimePercentage, m.CreatedAt,
		m.URL,
		m.SSLDomain, m.SSLExpiryThresholdDays,
		m.DNSHostname, m.DNSServer, m.DNSRecordType, m.ExpectedDNSResult,
		m.PortHost, m.PortNumber, m.PortProtocol,
		m.PingHost, m.PingCount, m.PingPacketSize,
		m.KeywordURL, m.KeywordText, m.KeywordMatchType,
		m.APIURL, m.APIMethod, headers, m.APIBody, m.APIExpectedStatusCode, m.APIExpectedResponseTime,
		m.JSONPath, m.ExpectedJSONValue,
		m.SSLExpiresAt, m.PingPacketLoss, m.KeywordFound, m.ActualStatusCode, m.JSONValidationResult,
	)
	return err
}

// UpdateMonitor replaces a monitor's configuration fields (name, kind,
// interval, timeout, and every kind-specific target field) in one
// statement. Status, last check time, last response time, uptime
// percentage, created_at, and the check-result fields are not written;
// ApplyCheckResult and SetUptimePercentage own those.
func (s *Store) UpdateMonitor(m domain.Monitor) error {
	headers, err := encodeHeaders(m.APIHeaders)
	if err != nil {
		return fmt.Errorf("encode api headers: %w", err)
	}

	query := s.rebind(`UPDATE monitors SET
		name = ?, kind = ?, check_interval_sec = ?, timeout_sec = ?,
		url = ?,
		ssl_domain = ?, ssl_expiry_threshold_days = ?,
		dns_hostname = ?, dns_server = ?, dns_record_type = ?, expected_dns_result = ?,
		port_host = ?, port_number = ?, port_protocol = ?,
		ping_host = ?, ping_count = ?, ping_packet_size = ?,
		keyword_url = ?, keyword_text = ?, keyword_match_type = ?,
		api_url = ?, api_method = ?, api_headers = ?, api_body = ?,
		api_expected_status_code = ?, api_expected_response_time = ?,
		json_path = ?, expected_json_value = ?
		WHERE id = ?`)

	res, err := s.db.Exec(query,
		m.Name, string(m.Kind), m.CheckIntervalSec, m.TimeoutSec,
		m.URL,
		m.SSLDomain, m.SSLExpiryThresholdDays,
		m.DNSHostname, m.DNSServer, m.DNSRecordType, m.ExpectedDNSResult,
		m.PortHost, m.PortNumber, m.PortProtocol,
		m.PingHost, m.PingCount, m.PingPacketSize,
		m.KeywordURL, m.KeywordText, m.KeywordMatchType,
		m.APIURL, m.APIMethod, headers, m.APIBody,
		m.APIExpectedStatusCode, m.APIExpectedResponseTime,
		m.JSONPath, m.ExpectedJSONValue,
		m.ID,
	)
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

// DeleteMonitor removes a monitor and, via ON DELETE CASCADE, its logs
// and alert settings.
func (s *Store) DeleteMonitor(id string) error {
	res, err := s.db.Exec(s.rebind("DELETE FROM monitors WHERE id = ?"), id)
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

// ApplyCheckResult persists the outcome of one probe attempt onto the
// monitor row (§4.3 step 3): status, last check time, last response
// time, and the kind-specific fields a probe primitive populated.
func (s *Store) ApplyCheckResult(id string, status domain.Status, checkedAt time.Time, responseTime *float64, sslExpiresAt *time.Time, pingPacketLoss *float64, keywordFound *bool, actualStatusCode *int, jsonValidationResult *bool) error {
	query := s.rebind(`UPDATE monitors SET
		status = ?, last_checked_at = ?, last_response_time = ?,
		ssl_expires_at = ?, ping_packet_loss = ?, keyword_found = ?,
		actual_status_code = ?, json_validation_result = ?
		WHERE id = ?`)
	res, err := s.db.Exec(query, string(status), checkedAt, responseTime, sslExpiresAt, pingPacketLoss, keywordFound, actualStatusCode, jsonValidationResult, id)
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

// SetUptimePercentage persists the rolling 24h uptime aggregate (§4.4).
func (s *Store) SetUptimePercentage(id string, pct float64) error {
	_, err := s.db.Exec(s.rebind("UPDATE monitors SET uptime_percentage = ? WHERE id = ?"), pct, id)
	return err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanMonitor(row scannable) (domain.Monitor, error) {
	var m domain.Monitor
	var kind, status string
	var headers sql.NullString

	err := row.Scan(
		&m.ID, &m.Name, &kind, &m.CheckIntervalSec, &m.TimeoutSec, &status,
		&m.LastCheckedAt, &m.LastResponseTime, &m.UptimePercentage, &m.CreatedAt,
		&m.URL,
		&m.SSLDomain, &m.SSLExpiryThresholdDays,
		&m.DNSHostname, &m.DNSServer, &m.DNSRecordType, &m.ExpectedDNSResult,
		&m.PortHost, &m.PortNumber, &m.PortProtocol,
		&m.PingHost, &m.PingCount, &m.PingPacketSize,
		&m.KeywordURL, &m.KeywordText, &m.KeywordMatchType,
		&m.APIURL, &m.APIMethod, &headers, &m.APIBody, &m.APIExpectedStatusCode, &m.APIExpectedResponseTime,
		&m.JSONPath, &m.ExpectedJSONValue,
		&m.SSLExpiresAt, &m.PingPacketLoss, &m.KeywordFound, &m.ActualStatusCode, &m.JSONValidationResult,
	)
	if err != nil {
		return domain.Monitor{}, err
	}
	m.Kind = domain.Kind(kind)
	m.Status = domain.Status(status)
	if headers.Valid && headers.String != "" {
		hdrs, decErr := decodeHeaders(headers.String)
		if decErr != nil {
			return domain.Monitor{}, fmt.Errorf("decode api headers: %w", decErr)
		}
		m.APIHeaders = hdrs
	}
	return m, nil
}

// encodeHeaders serializes APIHeaders as "Key: Value" lines;
// decodeHeaders parses them back into the map that probe/api.go sets
// on outbound requests.
func encodeHeaders(h map[string]string) (*string, error) {
	if len(h) == 0 {
		return nil, nil
	}
	var b strings.Builder
	for k, v := range h {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\n")
	}
	s := b.String()
	return &s, nil
}

func decodeHeaders(raw string) (map[string]string, error) {
	out := map[string]string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		k, v, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed header line %q", line)
		}
		out[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return out, nil
}
