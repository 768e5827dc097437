package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brightloop/pulse/internal/config"
	"github.com/brightloop/pulse/internal/domain"
	"github.com/brightloop/pulse/internal/engine"
	"github.com/brightloop/pulse/internal/store"
)

// MonitorHandler serves the monitor resource (§6 "/monitors").
type MonitorHandler struct {
	store              *store.Store
	engine             *engine.Engine
	log                *zap.SugaredLogger
	defaultIntervalSec int
	defaultTimeoutSec  int
}

func NewMonitorHandler(s *store.Store, eng *engine.Engine, cfg config.Config, log *zap.SugaredLogger) *MonitorHandler {
	return &MonitorHandler{
		store:              s,
		engine:             eng,
		log:                log,
		defaultIntervalSec: int(cfg.DefaultInterval.Seconds()),
		defaultTimeoutSec:  int(cfg.DefaultTimeout.Seconds()),
	}
}

// monitorCreate is the request body for POST /api/monitors. It carries
// every kind's fields flat, mirroring domain.Monitor's kind-parametric
// shape; Create validates only the fields the requested kind needs.
type monitorCreate struct {
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	CheckInterval int    `json:"check_interval"`
	Timeout       int    `json:"timeout"`

	URL string `json:"url"`

	SSLDomain          string `json:"ssl_domain"`
	SSLExpiryThreshold int    `json:"ssl_expiry_threshold"`

	DNSHostname       string `json:"dns_hostname"`
	DNSServer         string `json:"dns_server"`
	DNSRecordType     string `json:"dns_record_type"`
	ExpectedDNSResult string `json:"expected_dns_result"`

	PortHost     string `json:"port_host"`
	PortNumber   int    `json:"port_number"`
	PortProtocol string `json:"port_protocol"`

	PingHost       string `json:"ping_host"`
	PingCount      int    `json:"ping_count"`
	PingPacketSize int    `json:"ping_packet_size"`

	KeywordURL       string `json:"keyword_url"`
	KeywordText      string `json:"keyword_text"`
	KeywordMatchType string `json:"keyword_match_type"`

	APIURL                string            `json:"api_url"`
	APIMethod             string            `json:"api_method"`
	APIHeaders            map[string]string `json:"api_headers"`
	APIBody               string            `json:"api_body"`
	ExpectedStatusCode    int               `json:"expected_status_code"`
	ExpectedResponseTime  float64           `json:"expected_response_time"`
	JSONPath              string            `json:"json_path"`
	ExpectedJSONValue     string            `json:"expected_json_value"`
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func intPtr(i int) *int {
	if i == 0 {
		return nil
	}
	return &i
}

func floatPtr(f float64) *float64 {
	if f == 0 {
		return nil
	}
	return &f
}

// validate enforces the §6 per-kind required-field rules, returning a
// diagnostic naming the missing field on violation.
func (req monitorCreate) validate() error {
	switch domain.Kind(req.Kind) {
	case domain.KindHTTP, domain.KindHTTPS:
		if req.URL == "" {
			return errors.New("url is required for http/https monitors")
		}
	case domain.KindSSL:
		if req.SSLDomain == "" {
			return errors.New("ssl_domain is required for ssl monitors")
		}
	case domain.KindDNS:
		if req.DNSHostname == "" {
			return errors.New("dns_hostname is required for dns monitors")
		}
	case domain.KindPort:
		if req.PortHost == "" || req.PortNumber == 0 {
			return errors.New("port_host and port_number are required for port monitors")
		}
	case domain.KindPing:
		if req.PingHost == "" {
			return errors.New("ping_host is required for ping monitors")
		}
	case domain.KindKeyword:
		if req.KeywordURL == "" || req.KeywordText == "" {
			return errors.New("keyword_url and keyword_text are required for keyword monitors")
		}
	case domain.KindAPI:
		if req.APIURL == "" {
			return errors.New("api_url is required for api monitors")
		}
	default:
		return fmt.Errorf("unknown monitor kind %q", req.Kind)
	}
	return nil
}

func (req monitorCreate) toDomain(defaultIntervalSec, defaultTimeoutSec int) domain.Monitor {
	interval := req.CheckInterval
	if interval <= 0 {
		interval = defaultIntervalSec
	}
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = defaultTimeoutSec
	}
	return domain.Monitor{
		ID:                      uuid.NewString(),
		Name:                    req.Name,
		Kind:                    domain.Kind(req.Kind),
		CheckIntervalSec:        interval,
		TimeoutSec:              timeout,
		Status:                  domain.StatusUnknown,
		CreatedAt:               time.Now().UTC(),
		URL:                     strPtr(req.URL),
		SSLDomain:               strPtr(req.SSLDomain),
		SSLExpiryThresholdDays:  intPtr(req.SSLExpiryThreshold),
		DNSHostname:             strPtr(req.DNSHostname),
		DNSServer:               strPtr(req.DNSServer),
		DNSRecordType:           strPtr(req.DNSRecordType),
		ExpectedDNSResult:       strPtr(req.ExpectedDNSResult),
		PortHost:                strPtr(req.PortHost),
		PortNumber:              intPtr(req.PortNumber),
		PortProtocol:            strPtr(req.PortProtocol),
		PingHost:                strPtr(req.PingHost),
		PingCount:               intPtr(req.PingCount),
		PingPacketSize:          intPtr(req.PingPacketSize),
		KeywordURL:              strPtr(req.KeywordURL),
		KeywordText:             strPtr(req.KeywordText),
		KeywordMatchType:        strPtr(req.KeywordMatchType),
		APIURL:                  strPtr(req.APIURL),
		APIMethod:               strPtr(req.APIMethod),
		APIHeaders:              req.APIHeaders,
		APIBody:                 strPtr(req.APIBody),
		APIExpectedStatusCode:   intPtr(req.ExpectedStatusCode),
		APIExpectedResponseTime: floatPtr(req.ExpectedResponseTime),
		JSONPath:                strPtr(req.JSONPath),
		ExpectedJSONValue:       strPtr(req.ExpectedJSONValue),
	}
}

// Create validates and persists a new monitor.
//
// @Summary  Create monitor
// @Tags     monitors
// @Accept   json
// @Produce  json
// @Param    body body monitorCreate true "Monitor payload"
// @Success  201 {object} domain.Monitor
// @Failure  400 {object} object{error=string}
// @Router   /monitors [post]
func (h *MonitorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req monitorCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	m := req.toDomain(h.defaultIntervalSec, h.defaultTimeoutSec)
	if err := h.store.CreateMonitor(m); err != nil {
		h.log.Errorw("monitors: create failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create monitor")
		return
	}

	created, err := h.store.GetMonitor(m.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to reload monitor")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// List returns every monitor.
//
// @Summary  List monitors
// @Tags     monitors
// @Produce  json
// @Success  200 {array} domain.Monitor
// @Router   /monitors [get]
func (h *MonitorHandler) List(w http.ResponseWriter, r *http.Request) {
	monitors, err := h.store.ListMonitors()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	if monitors == nil {
		monitors = []domain.Monitor{}
	}
	writeJSON(w, http.StatusOK, monitors)
}

// Get returns a single monitor by ID, or 404.
//
// @Summary  Get monitor
// @Tags     monitors
// @Produce  json
// @Param    id path string true "Monitor ID"
// @Success  200 {object} domain.Monitor
// @Failure  404 {object} object{error=string}
// @Router   /monitors/{id} [get]
func (h *MonitorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := h.store.GetMonitor(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "monitor not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Delete removes a monitor, cascading to its logs and alert settings.
//
// @Summary  Delete monitor
// @Tags     monitors
// @Param    id path string true "Monitor ID"
// @Success  200 "OK"
// @Failure  404 {object} object{error=string}
// @Router   /monitors/{id} [delete]
func (h *MonitorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.DeleteMonitor(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "monitor not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
}

// Check triggers a synchronous out-of-band probe (§6, supplemented
// "manual check"). It is serialized against the scheduler's in-flight
// set (Open Question c): a 409 means a check for this monitor, manual
// or scheduled, is already running.
//
// @Summary  Run a manual check
// @Tags     monitors
// @Produce  json
// @Param    id path string true "Monitor ID"
// @Success  200 {object} domain.UptimeLog
// @Failure  404 {object} object{error=string}
// @Failure  409 {object} object{error=string}
// @Router   /monitors/{id}/check [post]
func (h *MonitorHandler) Check(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := h.store.GetMonitor(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "monitor not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	result, ok, err := h.engine.RunManualCheck(r.Context(), m)
	if !ok {
		writeError(w, http.StatusConflict, "a check for this monitor is already running")
		return
	}
	if err != nil {
		h.log.Warnw("monitors: manual check failed", "monitor_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "probe failed")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func parseHours(r *http.Request) int {
	hours := 24
	if v := r.URL.Query().Get("hours"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			hours = n
		}
	}
	return hours
}

type historyPoint struct {
	BucketStart      time.Time `json:"bucket_start"`
	UptimePercentage float64   `json:"uptime_percentage"`
	AvgResponseTime  float64   `json:"avg_response_time_ms"`
	TotalChecks      int       `json:"total_checks"`
}

// History returns the hourly-bucketed aggregate (§6 "/history").
//
// @Summary  Monitor history
// @Tags     monitors
// @Produce  json
// @Param    id path string true "Monitor ID"
// @Param    hours query int false "Lookback window in hours (default 24)"
// @Success  200 {array} historyPoint
// @Failure  404 {object} object{error=string}
// @Router   /monitors/{id}/history [get]
func (h *MonitorHandler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.GetMonitor(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "monitor not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	points, err := h.store.History(id, parseHours(r))
	if err != nil {
		h.log.Errorw("monitors: history query failed", "monitor_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	out := make([]historyPoint, 0, len(points))
	for _, p := range points {
		out = append(out, historyPoint{
			BucketStart:      p.BucketStart,
			UptimePercentage: p.UptimePercentage,
			AvgResponseTime:  p.AvgResponseTimeMS,
			TotalChecks:      p.TotalChecks,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// Logs returns raw logs newest-first within the lookback window (§6
// "/logs"), at most the 100 most recent.
//
// @Summary  Monitor logs
// @Tags     monitors
// @Produce  json
// @Param    id path string true "Monitor ID"
// @Param    hours query int false "Lookback window in hours (default 24)"
// @Success  200 {array} domain.UptimeLog
// @Failure  404 {object} object{error=string}
// @Router   /monitors/{id}/logs [get]
func (h *MonitorHandler) Logs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := h.store.GetMonitor(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "monitor not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}

	since := time.Now().UTC().Add(-time.Duration(parseHours(r)) * time.Hour)
	logs, err := h.store.FindLogs(id, since, 0)
	if err != nil {
		h.log.Errorw("monitors: logs query failed", "monitor_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "store unavailable")
		return
	}
	if logs == nil {
		logs = []domain.UptimeLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}
