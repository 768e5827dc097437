package probe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/brightloop/pulse/internal/domain"
)

// httpTransport is shared across calls the way the teacher's worker
// pool shares one pooled *http.Transport rather than dialing fresh
// connections per probe.
var httpTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     30 * time.Second,
}

// CheckHTTP implements §4.1.1: a single GET, UP iff status is exactly 200.
func CheckHTTP(ctx context.Context, m domain.Monitor) Result {
	if m.URL == nil {
		msg := "missing url"
		return Result{Status: domain.StatusDown, ErrorMessage: &msg}
	}

	timeout := timeoutFor(m)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client := &http.Client{Transport: httpTransport}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, *m.URL, nil)
	if err != nil {
		msg := err.Error()
		return Result{Status: domain.StatusDown, ErrorMessage: &msg}
	}

	start := time.Now()
	resp, err := client.Do(req)
	elapsed := seconds(time.Since(start))
	if err != nil {
		if ctx.Err() != nil {
			return timeoutResult(timeout)
		}
		msg := err.Error()
		return Result{Status: domain.StatusDown, ResponseTime: &elapsed, ErrorMessage: &msg}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("HTTP %d", resp.StatusCode)
		return Result{Status: domain.StatusDown, ResponseTime: &elapsed, ErrorMessage: &msg}
	}

	return Result{Status: domain.StatusUp, ResponseTime: &elapsed}
}
