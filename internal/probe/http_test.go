package probe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brightloop/pulse/internal/domain"
)

func TestCheckHTTP_Up(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	url := srv.URL
	m := domain.Monitor{Kind: domain.KindHTTPS, URL: &url, TimeoutSec: 5}

	res := CheckHTTP(context.Background(), m)
	if res.Status != domain.StatusUp {
		t.Fatalf("expected up, got %s", res.Status)
	}
	if res.ResponseTime == nil {
		t.Fatal("expected response time to be set")
	}
}

func TestCheckHTTP_Down(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	url := srv.URL
	m := domain.Monitor{Kind: domain.KindHTTPS, URL: &url, TimeoutSec: 5}

	res := CheckHTTP(context.Background(), m)
	if res.Status != domain.StatusDown {
		t.Fatalf("expected down, got %s", res.Status)
	}
	if res.ErrorMessage == nil || *res.ErrorMessage != "HTTP 500" {
		t.Fatalf("expected 'HTTP 500' message, got %v", res.ErrorMessage)
	}
}

func TestCheckKeyword(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("the system is operational today"))
	}))
	defer srv.Close()

	url := srv.URL
	keyword := "operational"
	m := domain.Monitor{Kind: domain.KindKeyword, KeywordURL: &url, KeywordText: &keyword, TimeoutSec: 5}

	res := CheckKeyword(context.Background(), m)
	if res.Status != domain.StatusUp {
		t.Fatalf("expected up, got %s (%v)", res.Status, res.ErrorMessage)
	}
	if res.Payload.KeywordFound == nil || !*res.Payload.KeywordFound {
		t.Fatal("expected keyword found")
	}
}

func TestCheckKeyword_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("nothing to see here"))
	}))
	defer srv.Close()

	url := srv.URL
	keyword := "missing-phrase"
	m := domain.Monitor{Kind: domain.KindKeyword, KeywordURL: &url, KeywordText: &keyword, TimeoutSec: 5}

	res := CheckKeyword(context.Background(), m)
	if res.Status != domain.StatusDown {
		t.Fatalf("expected down, got %s", res.Status)
	}
}
