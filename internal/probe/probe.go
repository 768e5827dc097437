// Package probe implements the seven typed check primitives (§4.1).
// Each primitive is a pure function of its inputs and the external
// target: it never touches the store, and it enforces its own
// deadline equal to the monitor's timeout.
package probe

import (
	"context"
	"time"

	"github.com/brightloop/pulse/internal/domain"
)

// Result is the typed (status, response_time, error_message, payload)
// tuple every primitive returns.
type Result struct {
	Status       domain.Status
	ResponseTime *float64 // seconds
	ErrorMessage *string
	Payload      domain.Payload
}

// Func is the shape every primitive implements.
type Func func(ctx context.Context, m domain.Monitor) Result

// Dispatch selects the primitive for a monitor's kind.
func Dispatch(kind domain.Kind) Func {
	switch kind {
	case domain.KindHTTP, domain.KindHTTPS:
		return CheckHTTP
	case domain.KindSSL:
		return CheckSSL
	case domain.KindDNS:
		return CheckDNS
	case domain.KindPort:
		return CheckPort
	case domain.KindPing:
		return CheckPing
	case domain.KindKeyword:
		return CheckKeyword
	case domain.KindAPI:
		return CheckAPI
	default:
		return func(ctx context.Context, m domain.Monitor) Result {
			msg := "unknown monitor kind"
			return Result{Status: domain.StatusDown, ErrorMessage: &msg}
		}
	}
}

// timeoutFor returns the monitor's configured timeout, falling back to
// ten seconds per §3's documented default.
func timeoutFor(m domain.Monitor) time.Duration {
	if m.TimeoutSec <= 0 {
		return 10 * time.Second
	}
	return time.Duration(m.TimeoutSec) * time.Second
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}

func timeoutResult(d time.Duration) Result {
	elapsed := seconds(d)
	msg := "timeout"
	return Result{Status: domain.StatusDown, ResponseTime: &elapsed, ErrorMessage: &msg}
}
