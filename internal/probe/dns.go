package probe

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"

	pulsedomain "github.com/brightloop/pulse/internal/domain"
)

// CheckDNS implements §4.1.3 against a configured resolver.
func CheckDNS(ctx context.Context, m pulsedomain.Monitor) Result {
	if m.DNSHostname == nil {
		msg := "missing dns_hostname"
		return Result{Status: pulsedomain.StatusDown, ErrorMessage: &msg}
	}

	resolver := "8.8.8.8"
	if m.DNSServer != nil && *m.DNSServer != "" {
		resolver = *m.DNSServer
	}
	recordType := "A"
	if m.DNSRecordType != nil && *m.DNSRecordType != "" {
		recordType = strings.ToUpper(*m.DNSRecordType)
	}
	qtype, ok := dns.StringToType[recordType]
	if !ok {
		qtype = dns.TypeA
	}

	timeout := timeoutFor(m)
	client := &dns.Client{Timeout: timeout}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(*m.DNSHostname), qtype)

	start := time.Now()
	resp, _, err := client.ExchangeContext(ctx, msg, resolverAddr(resolver))
	elapsed := seconds(time.Since(start))

	if err != nil {
		if ctx.Err() != nil {
			return timeoutResult(timeout)
		}
		errMsg := "DNS resolution timeout"
		return Result{Status: pulsedomain.StatusDown, ResponseTime: &elapsed, ErrorMessage: &errMsg}
	}

	if resp.Rcode == dns.RcodeNameError {
		errMsg := "Domain does not exist"
		return Result{Status: pulsedomain.StatusDown, ResponseTime: &elapsed, ErrorMessage: &errMsg}
	}

	values := make([]string, 0, len(resp.Answer))
	for _, rr := range resp.Answer {
		values = append(values, answerValue(rr))
	}
	joined := strings.Join(values, ", ")
	payload := pulsedomain.Payload{DNSResolutionTime: &elapsed, DNSResult: &joined}

	if m.ExpectedDNSResult != nil && *m.ExpectedDNSResult != "" {
		if !strings.Contains(joined, *m.ExpectedDNSResult) {
			errMsg := fmt.Sprintf("expected %q, got %q", *m.ExpectedDNSResult, joined)
			return Result{Status: pulsedomain.StatusDown, ResponseTime: &elapsed, ErrorMessage: &errMsg, Payload: payload}
		}
	}

	return Result{Status: pulsedomain.StatusUp, ResponseTime: &elapsed, Payload: payload}
}

// resolverAddr appends the default DNS port unless the configured
// resolver already names one, so tests can point DNSServer at a local
// server bound to an arbitrary port.
func resolverAddr(resolver string) string {
	if _, _, err := net.SplitHostPort(resolver); err == nil {
		return resolver
	}
	return net.JoinHostPort(resolver, "53")
}

func answerValue(rr dns.RR) string {
	switch v := rr.(type) {
	case *dns.A:
		return v.A.String()
	case *dns.AAAA:
		return v.AAAA.String()
	case *dns.CNAME:
		return v.Target
	case *dns.MX:
		return v.Mx
	case *dns.NS:
		return v.Ns
	case *dns.TXT:
		return strings.Join(v.Txt, "")
	default:
		return rr.String()
	}
}
