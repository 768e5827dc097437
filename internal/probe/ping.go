package probe

import (
	"context"
	"time"

	probing "github.com/prometheus-community/pro-bing"

	"github.com/brightloop/pulse/internal/domain"
)

// CheckPing implements §4.1.5 via unprivileged (UDP datagram) ICMP echo.
func CheckPing(ctx context.Context, m domain.Monitor) Result {
	if m.PingHost == nil {
		msg := "missing ping_host"
		return Result{Status: domain.StatusDown, ErrorMessage: &msg}
	}

	count := 4
	if m.PingCount != nil && *m.PingCount > 0 {
		count = *m.PingCount
	}

	timeout := timeoutFor(m)

	pinger, err := probing.NewPinger(*m.PingHost)
	if err != nil {
		msg := err.Error()
		return Result{Status: domain.StatusDown, ErrorMessage: &msg}
	}
	pinger.Count = count
	pinger.Timeout = timeout
	pinger.SetPrivileged(false)

	done := make(chan error, 1)
	go func() { done <- pinger.Run() }()

	select {
	case <-ctx.Done():
		return timeoutResult(timeout)
	case err := <-done:
		if err != nil {
			msg := err.Error()
			return Result{Status: domain.StatusDown, ErrorMessage: &msg}
		}
	case <-time.After(timeout + time.Second):
		return timeoutResult(timeout)
	}

	stats := pinger.Statistics()
	avgSeconds := stats.AvgRtt.Seconds()
	minSeconds := stats.MinRtt.Seconds()
	maxSeconds := stats.MaxRtt.Seconds()
	loss := stats.PacketLoss

	payload := domain.Payload{
		PingPacketLoss: &loss,
		PingMin:        &minSeconds,
		PingAvg:        &avgSeconds,
		PingMax:        &maxSeconds,
	}

	switch {
	case loss >= 100:
		msg := "100% packet loss"
		return Result{Status: domain.StatusDown, ErrorMessage: &msg, Payload: payload}
	case loss > 0:
		msg := "partial packet loss"
		return Result{Status: domain.StatusWarning, ResponseTime: &avgSeconds, ErrorMessage: &msg, Payload: payload}
	default:
		return Result{Status: domain.StatusUp, ResponseTime: &avgSeconds, Payload: payload}
	}
}
