package probe

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/brightloop/pulse/internal/domain"
)

// CheckPort implements §4.1.4. UDP reachability cannot be asserted, so
// any successful connected-socket open counts as UP.
func CheckPort(ctx context.Context, m domain.Monitor) Result {
	if m.PortHost == nil || m.PortNumber == nil {
		msg := "missing port_host or port_number"
		return Result{Status: domain.StatusDown, ErrorMessage: &msg}
	}

	proto := "tcp"
	if m.PortProtocol != nil && *m.PortProtocol != "" {
		proto = strings.ToLower(*m.PortProtocol)
	}
	if proto != "tcp" && proto != "udp" {
		msg := fmt.Sprintf("unsupported protocol %q", proto)
		return Result{Status: domain.StatusDown, ErrorMessage: &msg}
	}

	timeout := timeoutFor(m)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	addr := net.JoinHostPort(*m.PortHost, strconv.Itoa(*m.PortNumber))

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, proto, addr)
	if err != nil {
		if ctx.Err() != nil {
			return timeoutResult(timeout)
		}
		msg := err.Error()
		open := false
		return Result{Status: domain.StatusDown, ErrorMessage: &msg, Payload: domain.Payload{PortOpen: &open}}
	}
	_ = conn.Close()

	open := true
	return Result{Status: domain.StatusUp, Payload: domain.Payload{PortOpen: &open}}
}
