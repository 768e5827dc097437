package store

import (
	"fmt"
	"time"
)

// Uptime24h computes the rolling 24-hour uptime percentage for one
// monitor (§4.4, I3): (count of UP logs) / (total logs) * 100 over
// logs from the last 24 hours. Warnings count as NOT-up, degrading
// availability from the subscriber's perspective. It also reports the
// total log count in the window so callers can honor I3's "zero logs
// leaves uptime_percentage unchanged" rule instead of overwriting it.
func (s *Store) Uptime24h(monitorID string) (pct float64, total int, err error) {
	var query string
	if s.IsPostgres() {
		query = `SELECT
			COUNT(*) AS total,
			COUNT(CASE WHEN status = 'up' THEN 1 END) AS healthy
			FROM uptime_logs
			WHERE monitor_id = $1 AND timestamp > NOW() - INTERVAL '24 hours'`
	} else {
		query = `SELECT
			COUNT(*) AS total,
			COUNT(CASE WHEN status = 'up' THEN 1 END) AS healthy
			FROM uptime_logs
			WHERE monitor_id = ? AND timestamp > datetime('now', '-24 hours')`
	}

	var healthy int
	if err := s.db.QueryRow(query, monitorID).Scan(&total, &healthy); err != nil {
		return 0, 0, err
	}
	if total == 0 {
		return 0, 0, nil
	}
	return (float64(healthy) / float64(total)) * 100.0, total, nil
}

// HistoryPoint is one hourly bucket of the history endpoint's
// aggregate, matching the §6 history shape exactly: an uptime
// percentage (same UP/total formula as Uptime24h), an average response
// time in milliseconds over UP samples, and a raw check count.
type HistoryPoint struct {
	BucketStart       time.Time
	UptimePercentage  float64
	AvgResponseTimeMS float64
	TotalChecks       int
}

// History buckets a monitor's logs from the last `hours` into
// one-hour windows (minutes/seconds/subseconds zeroed). Per bucket:
// avg_response_time_ms = mean(response_time_of(l) * 1000 for l in
// bucket if l.status == up), 0 when the bucket has no UP logs; this
// averaging rule is taken verbatim from original_source's
// get_monitor_history, since spec.md's table states the result shape
// but not this precise formula.
func (s *Store) History(monitorID string, hours int) ([]HistoryPoint, error) {
	if hours < 1 {
		hours = 24
	}

	var bucketExpr, windowExpr string
	if s.IsPostgres() {
		bucketExpr = "TO_CHAR(timestamp, 'YYYY-MM-DD HH24:00:00')"
		windowExpr = fmt.Sprintf("NOW() - INTERVAL '%d hours'", hours)
	} else {
		bucketExpr = "strftime('%Y-%m-%d %H:00:00', timestamp)"
		windowExpr = fmt.Sprintf("datetime('now', '-%d hours')", hours)
	}

	query := s.rebind(fmt.Sprintf(`SELECT
			%s AS bucket,
			COUNT(*) AS total,
			COUNT(CASE WHEN status = 'up' THEN 1 END) AS healthy,
			AVG(CASE WHEN status = 'up' THEN response_time ELSE NULL END) AS avg_rt
		FROM uptime_logs
		WHERE monitor_id = ? AND timestamp > %s
		GROUP BY bucket
		ORDER BY bucket ASC`, bucketExpr, windowExpr))

	rows, err := s.db.Query(query, monitorID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []HistoryPoint
	for rows.Next() {
		var bucketStr string
		var total, healthy int
		var avgRT *float64
		if err := rows.Scan(&bucketStr, &total, &healthy, &avgRT); err != nil {
			return nil, err
		}
		bucketStart, err := time.Parse("2006-01-02 15:04:05", bucketStr)
		if err != nil {
			return nil, fmt.Errorf("parse bucket timestamp %q: %w", bucketStr, err)
		}
		p := HistoryPoint{BucketStart: bucketStart, TotalChecks: total}
		if total > 0 {
			p.UptimePercentage = (float64(healthy) / float64(total)) * 100.0
		}
		if avgRT != nil {
			p.AvgResponseTimeMS = *avgRT * 1000
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
