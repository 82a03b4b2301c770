// Package api declares HTTP contracts and route registration helpers.
package api

import "net/http"

// LiveHandler handles live race view, standings and distance-record
// requests.
type LiveHandler struct {
	deps Dependencies
}

// NewLiveHandler creates a new live data handler.
func NewLiveHandler(deps Dependencies) *LiveHandler {
	return &LiveHandler{deps: deps}
}

// HandleRace handles GET /live/{eventId}/{distance}?gender= requests.
func (h *LiveHandler) HandleRace(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	eventID, distance, ok := eventDistancePath(r.URL.Path, "/live/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	view, err := h.deps.RaceData(r.Context(), eventID, distance, genderParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleStandings handles GET /standings/{eventId}/{distance}?gender=
// requests.
func (h *LiveHandler) HandleStandings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	eventID, distance, ok := eventDistancePath(r.URL.Path, "/standings/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	view, err := h.deps.Standings(r.Context(), eventID, distance, genderParam(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleDistanceRecords handles
// GET /distance-records/{eventId}/{distance}?gender= requests.
func (h *LiveHandler) HandleDistanceRecords(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	eventID, distance, ok := eventDistancePath(r.URL.Path, "/distance-records/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	recs, found := h.deps.DistanceRecords(eventID, distance, genderParam(r))
	if !found {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
