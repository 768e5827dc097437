package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/brightloop/pulse/internal/domain"
	"github.com/brightloop/pulse/internal/store"
)

// DashboardHandler serves the fleet-wide summary (§6 "/dashboard/stats").
type DashboardHandler struct {
	store *store.Store
	log   *zap.SugaredLogger
}

func NewDashboardHandler(s *store.Store, log *zap.SugaredLogger) *DashboardHandler {
	return &DashboardHandler{store: s, log: log}
}

type dashboardStats struct {
	Total         int     `json:"total"`
	Up            int     `json:"up"`
	Down          int     `json:"down"`
	OverallUptime float64 `json:"overall_uptime"`
}

// Stats returns {total, up, down, overall_uptime} across every monitor.
//
// @Summary  Dashboard stats
// @Tags     dashboard
// @Produce  json
// @Success  200 {object} dashboardStats
// @Router   /dashboard/stats [get]
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	monitors, err := h.store.ListMonitors()
	if err != nil {
		h.log.Errorw("dashboard: list monitors failed", "error", err)
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	stats := dashboardStats{Total: len(monitors)}
	var uptimeSum float64
	for _, m := range monitors {
		switch m.Status {
		case domain.StatusUp:
			stats.Up++
		case domain.StatusDown:
			stats.Down++
		}
		uptimeSum += m.UptimePercentage
	}
	if stats.Total > 0 {
		stats.OverallUptime = uptimeSum / float64(stats.Total)
	}

	writeJSON(w, http.StatusOK, stats)
}
