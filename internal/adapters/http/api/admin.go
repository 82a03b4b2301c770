// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"
)

// StatusHandler handles operational status requests.
type StatusHandler struct {
	statsProvider StatsProvider
}

// StatsProvider defines the interface for getting service statistics.
type StatsProvider interface {
	GetStats() map[string]interface{}
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(statsProvider StatsProvider) *StatusHandler {
	return &StatusHandler{statsProvider: statsProvider}
}

// HandleStatus handles GET /status requests.
func (h *StatusHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.statsProvider.GetStats())
}

// RefreshHandler handles cache refresh requests.
type RefreshHandler struct {
	deps Dependencies
}

// NewRefreshHandler creates a new refresh handler.
func NewRefreshHandler(deps Dependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

// refreshRequest is the POST /refresh body; an absent type clears all
// caches.
type refreshRequest struct {
	Type string `json:"type"`
}

type refreshResponse struct {
	Status    string `json:"status"`
	Cleared   string `json:"cleared"`
	Timestamp string `json:"timestamp"`
}

// HandleRefresh handles POST /refresh requests.
func (h *RefreshHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req refreshRequest
	if r.Body != nil {
		// An empty body means "clear everything".
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
	}
	if req.Type == "" {
		req.Type = "all"
	}

	if err := h.deps.ClearCaches(req.Type); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{
		Status:    "ok",
		Cleared:   req.Type,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
