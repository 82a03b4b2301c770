// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"strings"
)

// RecordsHandler handles skater records requests.
type RecordsHandler struct {
	deps Dependencies
}

// NewRecordsHandler creates a new records handler.
func NewRecordsHandler(deps Dependencies) *RecordsHandler {
	return &RecordsHandler{deps: deps}
}

// HandleRecords handles GET /records/{skaterId}?distance= requests.
func (h *RecordsHandler) HandleRecords(w http.ResponseWriter, r *http.Request) {
	skaterID, ok := pathTail(r, "/records/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	distance := 0
	if raw := r.URL.Query().Get("distance"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		distance = v
	}

	recs, err := h.deps.SkaterRecords(r.Context(), skaterID, distance)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// HandleSkater handles GET /skater/{skaterId} requests.
func (h *RecordsHandler) HandleSkater(w http.ResponseWriter, r *http.Request) {
	skaterID, ok := pathTail(r, "/skater/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	info, err := h.deps.SkaterInfo(r.Context(), skaterID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// pathTail extracts the single path parameter after prefix.
func pathTail(r *http.Request, prefix string) (string, bool) {
	if r.Method != http.MethodGet {
		return "", false
	}
	tail := strings.TrimPrefix(r.URL.Path, prefix)
	if tail == "" || strings.Contains(tail, "/") {
		return "", false
	}
	return tail, true
}
