package pipeline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/brightloop/pulse/internal/domain"
)

type fakeStore struct {
	monitors map[string]domain.Monitor
	logs     []domain.UptimeLog
	pct      map[string]float64
}

func newFakeStore() *fakeStore {
	return &fakeStore{monitors: map[string]domain.Monitor{}, pct: map[string]float64{}}
}

func (f *fakeStore) ApplyCheckResult(id string, status domain.Status, checkedAt time.Time, responseTime *float64, sslExpiresAt *time.Time, pingPacketLoss *float64, keywordFound *bool, actualStatusCode *int, jsonValidationResult *bool) error {
	m := f.monitors[id]
	m.Status = status
	m.LastCheckedAt = &checkedAt
	m.LastResponseTime = responseTime
	f.monitors[id] = m
	return nil
}

func (f *fakeStore) InsertLog(l domain.UptimeLog) error {
	f.logs = append(f.logs, l)
	return nil
}

func (f *fakeStore) Uptime24h(monitorID string) (float64, int, error) {
	var up, total int
	for _, l := range f.logs {
		if l.MonitorID != monitorID {
			continue
		}
		total++
		if l.Status == domain.StatusUp {
			up++
		}
	}
	if total == 0 {
		return 0, 0, nil
	}
	return (float64(up) / float64(total)) * 100, total, nil
}

func (f *fakeStore) SetUptimePercentage(id string, pct float64) error {
	f.pct[id] = pct
	return nil
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func TestRun_UpLogged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := newFakeStore()
	url := srv.URL
	m := domain.Monitor{ID: "m1", Kind: domain.KindHTTPS, URL: &url, TimeoutSec: 5, Status: domain.StatusUnknown}
	store.monitors["m1"] = m

	p := New(store, nil, testLogger())
	log, err := p.Run(context.Background(), m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if log.Status != domain.StatusUp {
		t.Fatalf("expected up, got %s", log.Status)
	}
	if len(store.logs) != 1 {
		t.Fatalf("expected exactly one log, got %d", len(store.logs))
	}
	if store.pct["m1"] != 100 {
		t.Fatalf("expected 100%% uptime, got %v", store.pct["m1"])
	}
}

func TestRun_StateChangeFiresOnlyWhenPreviousKnown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	store := newFakeStore()
	url := srv.URL

	var fired int
	onChange := func(ctx context.Context, m domain.Monitor, previous, new domain.Status) {
		fired++
	}

	p := New(store, onChange, testLogger())

	unknownMonitor := domain.Monitor{ID: "m1", Kind: domain.KindHTTPS, URL: &url, TimeoutSec: 5, Status: domain.StatusUnknown}
	if _, err := p.Run(context.Background(), unknownMonitor); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if fired != 0 {
		t.Fatalf("expected no state change from unknown, fired=%d", fired)
	}

	knownMonitor := domain.Monitor{ID: "m1", Kind: domain.KindHTTPS, URL: &url, TimeoutSec: 5, Status: domain.StatusUp}
	if _, err := p.Run(context.Background(), knownMonitor); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if fired != 1 {
		t.Fatalf("expected one state change up->down, fired=%d", fired)
	}
}

func TestRun_CancelledContextDiscardsResult(t *testing.T) {
	store := newFakeStore()
	url := "https://example.invalid"
	m := domain.Monitor{ID: "m1", Kind: domain.KindHTTPS, URL: &url, TimeoutSec: 5}
	store.monitors["m1"] = m

	p := New(store, nil, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Run(ctx, m); err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if len(store.logs) != 0 {
		t.Fatalf("expected no logs written on cancellation, got %d", len(store.logs))
	}
}
