package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brightloop/pulse/internal/domain"
	"github.com/brightloop/pulse/internal/store"
)

// AlertHandler serves the per-monitor alert policy resource (§6
// "/alerts").
type AlertHandler struct {
	store *store.Store
	log   *zap.SugaredLogger
}

func NewAlertHandler(s *store.Store, log *zap.SugaredLogger) *AlertHandler {
	return &AlertHandler{store: s, log: log}
}

// alertSettingsCreate is the request body for POST /api/alerts.
type alertSettingsCreate struct {
	MonitorID    string `json:"monitor_id"`
	Email        string `json:"email"`
	EmailEnabled bool   `json:"email_enabled"`
	AlertOnDown  bool   `json:"alert_on_down"`
	AlertOnUp    bool   `json:"alert_on_up"`
}

// Create adds a monitor's alert policy. A monitor may have at most one
// (I4); a second create for the same monitor_id fails with 400.
//
// @Summary  Create alert settings
// @Tags     alerts
// @Accept   json
// @Produce  json
// @Param    body body alertSettingsCreate true "Alert settings payload"
// @Success  201 {object} domain.AlertSettings
// @Failure  400 {object} object{error=string}
// @Failure  404 {object} object{error=string}
// @Router   /alerts [post]
func (h *AlertHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req alertSettingsCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.MonitorID == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "monitor_id and email are required")
		return
	}
	if _, err := h.store.GetMonitor(req.MonitorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "monitor not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	settings := domain.AlertSettings{
		ID:           uuid.NewString(),
		MonitorID:    req.MonitorID,
		Email:        req.Email,
		EmailEnabled: req.EmailEnabled,
		AlertOnDown:  req.AlertOnDown,
		AlertOnUp:    req.AlertOnUp,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.store.CreateAlertSettings(settings); err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusBadRequest, "alert settings already exist for this monitor")
			return
		}
		h.log.Errorw("alerts: create failed", "monitor_id", req.MonitorID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save alert settings")
		return
	}

	saved, err := h.store.FindAlertSettings(req.MonitorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reload alert settings")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// Get returns a monitor's alert policy, or 404 if none is set.
//
// @Summary  Get alert settings
// @Tags     alerts
// @Produce  json
// @Param    monitor_id path string true "Monitor ID"
// @Success  200 {object} domain.AlertSettings
// @Failure  404 {object} object{error=string}
// @Router   /alerts/{monitor_id} [get]
func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	monitorID := chi.URLParam(r, "monitor_id")
	settings, err := h.store.FindAlertSettings(monitorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "alert settings not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Delete removes a monitor's alert policy.
//
// @Summary  Delete alert settings
// @Tags     alerts
// @Param    monitor_id path string true "Monitor ID"
// @Success  200 "OK"
// @Failure  404 {object} object{error=string}
// @Router   /alerts/{monitor_id} [delete]
func (h *AlertHandler) Delete(w http.ResponseWriter, r *http.Request) {
	monitorID := chi.URLParam(r, "monitor_id")
	if err := h.store.DeleteAlertSettings(monitorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "alert settings not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
}
