package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brightloop/pulse/internal/domain"
)

func TestCheckAPI_JSONPathMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"status":"ok"}}`))
	}))
	defer srv.Close()

	url := srv.URL
	path := "data.status"
	expected := "ok"
	m := domain.Monitor{Kind: domain.KindAPI, APIURL: &url, JSONPath: &path, ExpectedJSONValue: &expected, TimeoutSec: 5}

	res := CheckAPI(context.Background(), m)
	if res.Status != domain.StatusUp {
		t.Fatalf("expected up, got %s (%v)", res.Status, res.ErrorMessage)
	}
	if res.Payload.APIJSONValidationResult == nil || !*res.Payload.APIJSONValidationResult {
		t.Fatal("expected json validation true")
	}
}

func TestCheckAPI_JSONPathMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"status":"bad"}}`))
	}))
	defer srv.Close()

	url := srv.URL
	path := "data.status"
	expected := "ok"
	m := domain.Monitor{Kind: domain.KindAPI, APIURL: &url, JSONPath: &path, ExpectedJSONValue: &expected, TimeoutSec: 5}

	res := CheckAPI(context.Background(), m)
	if res.Status != domain.StatusDown {
		t.Fatalf("expected down, got %s", res.Status)
	}
	if res.ErrorMessage == nil {
		t.Fatal("expected diagnostic message")
	}
}

func TestCheckAPI_StatusMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	url := srv.URL
	m := domain.Monitor{Kind: domain.KindAPI, APIURL: &url, TimeoutSec: 5}

	res := CheckAPI(context.Background(), m)
	if res.Status != domain.StatusDown {
		t.Fatalf("expected down, got %s", res.Status)
	}
}
