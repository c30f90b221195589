// internal/interface/httpapi/handler.go
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"skypulse-engine/internal/domain/entity"
	"skypulse-engine/internal/usecase"
	"skypulse-engine/pkg/logger"
)

// Handler exposes the admin API: arming and re-arming price alerts and
// reading per-route insight. Matching has no inbound API; deals arrive
// through the feed.
type Handler struct {
	monitor *usecase.PriceMonitor
	logger  logger.Logger
}

// NewHandler creates a new admin API handler
func NewHandler(monitor *usecase.PriceMonitor, logger logger.Logger) *Handler {
	return &Handler{monitor: monitor, logger: logger}
}

// Register attaches the admin routes to a mux
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/alerts", h.createAlert)
	mux.HandleFunc("/alerts/rearm", h.rearmAlert)
	mux.HandleFunc("/routes/insight", h.routeInsight)
}

type createAlertRequest struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	UserRef     string  `json:"userRef"`
	TargetPrice float64 `json:"targetPrice"`
}

func (h *Handler) createAlert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Origin == "" || req.Destination == "" {
		writeError(w, http.StatusBadRequest, "origin and destination are required")
		return
	}

	route := entity.Route{Origin: req.Origin, Destination: req.Destination}
	alert, err := h.monitor.CreateAlert(r.Context(), route, req.UserRef, req.TargetPrice)
	if err != nil {
		var verr *entity.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to create alert", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create alert")
		return
	}

	writeJSON(w, http.StatusCreated, alert)
}

type rearmAlertRequest struct {
	AlertID string `json:"alertId"`
}

func (h *Handler) rearmAlert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req rearmAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AlertID == "" {
		writeError(w, http.StatusBadRequest, "alertId is required")
		return
	}

	alert, err := h.monitor.RearmAlert(r.Context(), req.AlertID)
	if err != nil {
		var verr *entity.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		h.logger.Error("Failed to rearm alert", "alertId", req.AlertID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to rearm alert")
		return
	}

	writeJSON(w, http.StatusOK, alert)
}

func (h *Handler) routeInsight(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	origin := r.URL.Query().Get("origin")
	destination := r.URL.Query().Get("destination")
	if origin == "" || destination == "" {
		writeError(w, http.StatusBadRequest, "origin and destination query params are required")
		return
	}

	insight := h.monitor.Insight(entity.Route{Origin: origin, Destination: destination})
	writeJSON(w, http.StatusOK, insight)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
