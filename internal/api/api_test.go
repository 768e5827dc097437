package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/brightloop/pulse/internal/config"
	"github.com/brightloop/pulse/internal/domain"
	"github.com/brightloop/pulse/internal/engine"
	"github.com/brightloop/pulse/internal/store"
)

type noopTransport struct{}

func (noopTransport) Send(to, subject, text, html string) error { return nil }

func newTestServer(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	s, err := store.Open(store.Config{Driver: store.DialectSQLite, Path: ":memory:"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	eng := engine.New(s, noopTransport{}, engine.Config{}, zap.NewNop().Sugar())
	return NewRouter(s, eng, config.Default(), zap.NewNop().Sugar()), s
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reqBody *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestLiveness(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/api/", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var got map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["status"] != "ok" {
		t.Fatalf("expected status ok, got %v", got["status"])
	}
}

func TestCreateMonitor_HTTPRequiresURL(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/monitors", map[string]any{
		"name": "Home", "kind": "https",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestCreateAndGetMonitor(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/monitors", map[string]any{
		"name": "Home", "kind": "https", "url": "https://example.com",
		"check_interval": 60, "timeout": 5,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("expected an ID in response: %v", created)
	}

	rec2 := doJSON(t, h, http.MethodGet, "/api/monitors/"+id, nil)
	if rec2.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec2.Code)
	}
}

func TestCreateMonitor_UsesConfiguredDefaults(t *testing.T) {
	s, err := store.Open(store.Config{Driver: store.DialectSQLite, Path: ":memory:"})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })

	eng := engine.New(s, noopTransport{}, engine.Config{}, zap.NewNop().Sugar())
	cfg := config.Default()
	cfg.DefaultInterval = 45 * time.Second
	cfg.DefaultTimeout = 3 * time.Second
	h := NewRouter(s, eng, cfg, zap.NewNop().Sugar())

	rec := doJSON(t, h, http.MethodPost, "/api/monitors", map[string]any{
		"name": "Home", "kind": "https", "url": "https://example.com",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := created["check_interval_sec"]; got != float64(45) {
		t.Fatalf("expected configured default check_interval_sec 45, got %v", got)
	}
	if got := created["timeout_sec"]; got != float64(3) {
		t.Fatalf("expected configured default timeout_sec 3, got %v", got)
	}
}

func TestGetMonitor_NotFound(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/api/monitors/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestDeleteMonitor_Cascades(t *testing.T) {
	h, s := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/monitors", map[string]any{
		"name": "Home", "kind": "https", "url": "https://example.com",
	})
	var created map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	id := created["id"].(string)

	del := doJSON(t, h, http.MethodDelete, "/api/monitors/"+id, nil)
	if del.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", del.Code)
	}
	if _, err := s.GetMonitor(id); err == nil {
		t.Fatal("expected monitor to be gone")
	}

	del2 := doJSON(t, h, http.MethodDelete, "/api/monitors/"+id, nil)
	if del2.Code != http.StatusNotFound {
		t.Fatalf("expected second delete to 404, got %d", del2.Code)
	}
}

func TestAlertSettings_CreateGetDelete(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/monitors", map[string]any{
		"name": "Home", "kind": "https", "url": "https://example.com",
	})
	var created map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	id := created["id"].(string)

	arec := doJSON(t, h, http.MethodPost, "/api/alerts", map[string]any{
		"monitor_id": id, "email": "a@b.com", "email_enabled": true,
		"alert_on_down": true, "alert_on_up": true,
	})
	if arec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", arec.Code, arec.Body.String())
	}

	grec := doJSON(t, h, http.MethodGet, "/api/alerts/"+id, nil)
	if grec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", grec.Code)
	}

	drec := doJSON(t, h, http.MethodDelete, "/api/alerts/"+id, nil)
	if drec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", drec.Code)
	}

	grec2 := doJSON(t, h, http.MethodGet, "/api/alerts/"+id, nil)
	if grec2.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", grec2.Code)
	}
}

func TestAlertSettings_DuplicateCreateIs400(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/monitors", map[string]any{
		"name": "Home", "kind": "https", "url": "https://example.com",
	})
	var created map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	id := created["id"].(string)

	first := doJSON(t, h, http.MethodPost, "/api/alerts", map[string]any{
		"monitor_id": id, "email": "a@b.com", "email_enabled": true,
		"alert_on_down": true, "alert_on_up": true,
	})
	if first.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", first.Code, first.Body.String())
	}

	second := doJSON(t, h, http.MethodPost, "/api/alerts", map[string]any{
		"monitor_id": id, "email": "someone-else@b.com", "email_enabled": true,
		"alert_on_down": true, "alert_on_up": true,
	})
	if second.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on duplicate alert settings, got %d: %s", second.Code, second.Body.String())
	}

	got := doJSON(t, h, http.MethodGet, "/api/alerts/"+id, nil)
	var settings map[string]any
	if err := json.Unmarshal(got.Body.Bytes(), &settings); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if settings["email"] != "a@b.com" {
		t.Fatalf("expected original subscriber to be unchanged, got %v", settings["email"])
	}
}

func TestAlertSettings_UnknownMonitorIs404(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/alerts", map[string]any{
		"monitor_id": "missing", "email": "a@b.com",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestDashboardStats_Empty(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/api/dashboard/stats", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got dashboardStats
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Total != 0 {
		t.Fatalf("expected 0 total on empty store, got %d", got.Total)
	}
}

func TestDashboardStats_WarningIsNotCountedAsDown(t *testing.T) {
	h, s := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/monitors", map[string]any{
		"name": "Home", "kind": "https", "url": "https://example.com",
	})
	var created map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &created)
	id := created["id"].(string)

	if err := s.ApplyCheckResult(id, domain.StatusWarning, time.Now(), nil, nil, nil, nil, nil, nil); err != nil {
		t.Fatalf("ApplyCheckResult: %v", err)
	}

	srec := doJSON(t, h, http.MethodGet, "/api/dashboard/stats", nil)
	var stats dashboardStats
	if err := json.Unmarshal(srec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.Down != 0 {
		t.Fatalf("expected warning to not count as down, got down=%d", stats.Down)
	}
	if stats.Up != 0 {
		t.Fatalf("expected warning to not count as up either, got up=%d", stats.Up)
	}
}

func TestManualCheck_UnknownMonitorIs404(t *testing.T) {
	h, _ := newTestServer(t)
	rec := doJSON(t, h, http.MethodPost, "/api/monitors/missing/check", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
