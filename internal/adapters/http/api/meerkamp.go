// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strconv"
	"strings"
)

// MeerkampHandler handles all-around standings requests.
type MeerkampHandler struct {
	deps Dependencies
}

// NewMeerkampHandler creates a new all-around standings handler.
func NewMeerkampHandler(deps Dependencies) *MeerkampHandler {
	return &MeerkampHandler{deps: deps}
}

// HandleStandings handles
// GET /meerkamp/{eventId}/standings?gender=&afterDistance= requests.
func (h *MeerkampHandler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/meerkamp/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "standings" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	afterDistance := 0
	if raw := r.URL.Query().Get("afterDistance"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		afterDistance = v
	}

	standings, err := h.deps.MeerkampStandings(r.Context(), parts[0], genderParam(r), afterDistance)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}
