// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"net/http"
	"strings"
)

// EventsHandler handles event catalog requests.
type EventsHandler struct {
	deps Dependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps Dependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleEvents handles GET /events requests.
func (h *EventsHandler) HandleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Events(r.Context()))
}

// HandleEventResource handles GET /events/{eventId}/distances and
// GET /events/{eventId}/meerkamp-distances requests.
func (h *EventsHandler) HandleEventResource(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/events/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	eventID := parts[0]

	switch parts[1] {
	case "distances":
		distances, ok := h.deps.Distances(eventID)
		if !ok {
			writeError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		writeJSON(w, http.StatusOK, distances)

	case "meerkamp-distances":
		distances, ok := h.deps.MeerkampDistances(eventID, genderParam(r))
		if !ok {
			writeError(w, http.StatusNotFound, "not_found", nil)
			return
		}
		writeJSON(w, http.StatusOK, distances)

	default:
		writeError(w, http.StatusNotFound, "not_found", nil)
	}
}
