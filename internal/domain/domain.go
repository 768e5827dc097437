// Package domain holds the data model shared by the store, the probe
// primitives, the check pipeline, and the alert dispatcher.
package domain

import "time"

// Kind identifies which probe primitive a Monitor is checked with.
type Kind string

const (
	KindHTTP    Kind = "http"
	KindHTTPS   Kind = "https"
	KindSSL     Kind = "ssl"
	KindDNS     Kind = "dns"
	KindPort    Kind = "port"
	KindPing    Kind = "ping"
	KindKeyword Kind = "keyword"
	KindAPI     Kind = "api"
)

// Status is the outcome of a probe, and the persisted state of a Monitor.
type Status string

const (
	StatusUp      Status = "up"
	StatusDown    Status = "down"
	StatusWarning Status = "warning"
	StatusUnknown Status = "unknown"
)

// Monitor is the kind-parametric record described in SPEC_FULL.md §3:
// one struct carries every kind's fields as pointers, so the store
// adapter stays a single-table CRUD surface regardless of kind.
type Monitor struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Kind             Kind       `json:"kind"`
	CheckIntervalSec int        `json:"check_interval_sec"`
	TimeoutSec       int        `json:"timeout_sec"`
	Status           Status     `json:"status"`
	LastCheckedAt    *time.Time `json:"last_checked_at,omitempty"`
	LastResponseTime *float64   `json:"last_response_time,omitempty"` // seconds
	UptimePercentage float64    `json:"uptime_percentage"`
	CreatedAt        time.Time  `json:"created_at"`

	// http / https
	URL *string `json:"url,omitempty"`

	// ssl
	SSLDomain              *string `json:"ssl_domain,omitempty"`
	SSLExpiryThresholdDays *int    `json:"ssl_expiry_threshold_days,omitempty"`

	// dns
	DNSHostname       *string `json:"dns_hostname,omitempty"`
	DNSServer         *string `json:"dns_server,omitempty"`
	DNSRecordType     *string `json:"dns_record_type,omitempty"`
	ExpectedDNSResult *string `json:"expected_dns_result,omitempty"`

	// port
	PortHost     *string `json:"port_host,omitempty"`
	PortNumber   *int    `json:"port_number,omitempty"`
	PortProtocol *string `json:"port_protocol,omitempty"`

	// ping
	PingHost       *string `json:"ping_host,omitempty"`
	PingCount      *int    `json:"ping_count,omitempty"`
	PingPacketSize *int    `json:"ping_packet_size,omitempty"`

	// keyword
	KeywordURL       *string `json:"keyword_url,omitempty"`
	KeywordText      *string `json:"keyword_text,omitempty"`
	KeywordMatchType *string `json:"keyword_match_type,omitempty"`

	// api
	APIURL                  *string           `json:"api_url,omitempty"`
	APIMethod               *string           `json:"api_method,omitempty"`
	APIHeaders              map[string]string `json:"api_headers,omitempty"`
	APIBody                 *string           `json:"api_body,omitempty"`
	APIExpectedStatusCode   *int              `json:"api_expected_status_code,omitempty"`
	APIExpectedResponseTime *float64          `json:"api_expected_response_time,omitempty"`
	JSONPath                *string           `json:"json_path,omitempty"`
	ExpectedJSONValue       *string           `json:"expected_json_value,omitempty"`

	// fields persisted by the check pipeline's update set (§4.3 step 3)
	SSLExpiresAt         *time.Time `json:"ssl_expires_at,omitempty"`
	PingPacketLoss       *float64   `json:"ping_packet_loss,omitempty"`
	KeywordFound         *bool      `json:"keyword_found,omitempty"`
	ActualStatusCode     *int       `json:"actual_status_code,omitempty"`
	JSONValidationResult *bool      `json:"json_validation_result,omitempty"`
}

// Payload is an UptimeLog's kind-specific attributes (§3).
type Payload struct {
	SSLExpiresAt       *time.Time `json:"ssl_expires_at,omitempty"`
	SSLDaysUntilExpiry *int       `json:"ssl_days_until_expiry,omitempty"`

	DNSResolutionTime *float64 `json:"dns_resolution_time,omitempty"`
	DNSResult         *string  `json:"dns_result,omitempty"`

	PortOpen *bool `json:"port_open,omitempty"`

	PingPacketLoss *float64 `json:"ping_packet_loss,omitempty"`
	PingMin        *float64 `json:"ping_min,omitempty"`
	PingAvg        *float64 `json:"ping_avg,omitempty"`
	PingMax        *float64 `json:"ping_max,omitempty"`

	KeywordFound      *bool `json:"keyword_found,omitempty"`
	KeywordMatchCount *int  `json:"keyword_match_count,omitempty"`

	APIStatusCode           *int  `json:"api_status_code,omitempty"`
	APIResponseSize         *int  `json:"api_response_size,omitempty"`
	APIJSONValidationResult *bool `json:"api_json_validation_result,omitempty"`
}

// UptimeLog is one completed probe attempt (§3).
type UptimeLog struct {
	ID           string    `json:"id"`
	MonitorID    string    `json:"monitor_id"`
	Timestamp    time.Time `json:"timestamp"`
	Status       Status    `json:"status"`
	ResponseTime *float64  `json:"response_time,omitempty"` // seconds
	ErrorMessage *string   `json:"error_message,omitempty"`
	Payload      Payload   `json:"payload"`
}

// AlertSettings is a monitor's email notification policy (§3).
type AlertSettings struct {
	ID           string    `json:"id"`
	MonitorID    string    `json:"monitor_id"`
	Email        string    `json:"email"`
	EmailEnabled bool      `json:"email_enabled"`
	AlertOnDown  bool      `json:"alert_on_down"`
	AlertOnUp    bool      `json:"alert_on_up"`
	CreatedAt    time.Time `json:"created_at"`
}

// RepresentativeURL returns the first non-nil kind-specific endpoint
// field in the order §4.5 defines, or "N/A" if none is set.
func (m Monitor) RepresentativeURL() string {
	switch {
	case m.URL != nil:
		return *m.URL
	case m.SSLDomain != nil:
		return *m.SSLDomain
	case m.DNSHostname != nil:
		return *m.DNSHostname
	case m.PortHost != nil:
		return *m.PortHost
	case m.PingHost != nil:
		return *m.PingHost
	case m.KeywordURL != nil:
		return *m.KeywordURL
	case m.APIURL != nil:
		return *m.APIURL
	default:
		return "N/A"
	}
}
