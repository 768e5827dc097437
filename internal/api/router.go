// Package api implements the management API (§6): a RESTful, JSON-bodied
// surface over the monitor, alert, and dashboard resources the probe
// engine maintains. There is no authentication layer — the API is the
// sole control surface and is expected to sit behind a trusted network
// boundary or a reverse proxy that handles access control.
package api

import (
	"encoding/json"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/brightloop/pulse/internal/config"
	"github.com/brightloop/pulse/internal/engine"
	"github.com/brightloop/pulse/internal/store"
)

// NewRouter builds the HTTP router serving the management API.
func NewRouter(s *store.Store, eng *engine.Engine, cfg config.Config, log *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	limiter := NewIPRateLimiter(5, 20)
	r.Use(RateLimitMiddleware(limiter))

	monitorH := NewMonitorHandler(s, eng, cfg, log)
	alertH := NewAlertHandler(s, log)
	dashboardH := NewDashboardHandler(s, log)

	r.Route("/api", func(api chi.Router) {
		api.Get("/", Liveness(s))

		api.Post("/monitors", monitorH.Create)
		api.Get("/monitors", monitorH.List)
		api.Get("/monitors/{id}", monitorH.Get)
		api.Delete("/monitors/{id}", monitorH.Delete)
		api.Post("/monitors/{id}/check", monitorH.Check)
		api.Get("/monitors/{id}/history", monitorH.History)
		api.Get("/monitors/{id}/logs", monitorH.Logs)

		api.Get("/dashboard/stats", dashboardH.Stats)

		api.Post("/alerts", alertH.Create)
		api.Get("/alerts/{monitor_id}", alertH.Get)
		api.Delete("/alerts/{monitor_id}", alertH.Delete)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
