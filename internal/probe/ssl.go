package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"math"
	"net"
	"strings"
	"time"

	"github.com/brightloop/pulse/internal/domain"
)

// CheckSSL implements §4.1.2: connect to domain:443, extract the leaf
// certificate's notAfter, and classify by days-until-expiry.
func CheckSSL(ctx context.Context, m domain.Monitor) Result {
	if m.SSLDomain == nil {
		msg := "missing ssl_domain"
		return Result{Status: domain.StatusDown, ErrorMessage: &msg}
	}

	domainName := stripSchemeAndPath(*m.SSLDomain)
	threshold := 30
	if m.SSLExpiryThresholdDays != nil {
		threshold = *m.SSLExpiryThresholdDays
	}

	timeout := timeoutFor(m)
	dialer := &net.Dialer{Timeout: timeout}

	start := time.Now()
	conn, err := tls.DialWithDialer(dialer, "tcp", net.JoinHostPort(domainName, "443"), &tls.Config{ServerName: domainName})
	elapsed := seconds(time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return timeoutResult(timeout)
		}
		msg := err.Error()
		return Result{Status: domain.StatusDown, ResponseTime: &elapsed, ErrorMessage: &msg}
	}
	defer func() { _ = conn.Close() }()

	certs := conn.ConnectionState().PeerCertificates
	if len(certs) == 0 {
		msg := "no peer certificates presented"
		return Result{Status: domain.StatusDown, ResponseTime: &elapsed, ErrorMessage: &msg}
	}

	notAfter := certs[0].NotAfter
	days := daysUntil(notAfter)
	payload := domain.Payload{SSLExpiresAt: &notAfter, SSLDaysUntilExpiry: &days}

	status, msg := classifyExpiry(days, threshold)
	result := Result{Status: status, ResponseTime: &elapsed, Payload: payload}
	if msg != "" {
		result.ErrorMessage = &msg
	}
	return result
}

// daysUntil floors rather than truncates: a cert that expired 10 hours
// ago must land on -1, not 0, or it misses classifyExpiry's "already
// expired" branch.
func daysUntil(t time.Time) int {
	return int(math.Floor(time.Until(t).Hours() / 24))
}

// classifyExpiry implements §4.1.2's day-threshold classification: DOWN
// once the certificate has expired, WARNING inside the configured
// threshold, UP otherwise.
func classifyExpiry(days, threshold int) (domain.Status, string) {
	switch {
	case days < 0:
		return domain.StatusDown, fmt.Sprintf("Certificate expired %d days ago", -days)
	case days <= threshold:
		return domain.StatusWarning, fmt.Sprintf("Certificate expires in %d days", days)
	default:
		return domain.StatusUp, ""
	}
}

func stripSchemeAndPath(s string) string {
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	return s
}
