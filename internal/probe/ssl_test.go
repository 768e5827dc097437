package probe

import (
	"testing"
	"time"

	"github.com/brightloop/pulse/internal/domain"
)

func TestClassifyExpiry(t *testing.T) {
	cases := []struct {
		name      string
		days      int
		threshold int
		wantUp    domain.Status
	}{
		{"far from expiry is up", 90, 30, domain.StatusUp},
		{"inside threshold is warning", 30, 30, domain.StatusWarning},
		{"one day past threshold is up", 31, 30, domain.StatusUp},
		{"expiring today is warning", 0, 30, domain.StatusWarning},
		{"expired yesterday is down", -1, 30, domain.StatusDown},
		{"expired a week ago is down", -7, 30, domain.StatusDown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, _ := classifyExpiry(tc.days, tc.threshold)
			if status != tc.wantUp {
				t.Fatalf("classifyExpiry(%d, %d) = %s, want %s", tc.days, tc.threshold, status, tc.wantUp)
			}
		})
	}
}

func TestClassifyExpiry_DownMessageReportsDaysAgo(t *testing.T) {
	status, msg := classifyExpiry(-10, 30)
	if status != domain.StatusDown {
		t.Fatalf("expected down, got %s", status)
	}
	if msg != "Certificate expired 10 days ago" {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestDaysUntil_FloorsNotTruncates(t *testing.T) {
	// A cert that expired 10 hours ago is -10/24 ≈ -0.417 hours-as-days;
	// flooring gives -1 (expired), truncation would wrongly give 0.
	notAfter := time.Now().Add(-10 * time.Hour)
	if got := daysUntil(notAfter); got != -1 {
		t.Fatalf("expected -1 for a cert 10 hours past expiry, got %d", got)
	}
}
