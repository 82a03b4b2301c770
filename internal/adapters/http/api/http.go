// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/lapedge/lapedge/internal/adapters/records"
	service "github.com/lapedge/lapedge/internal/app"
	"github.com/lapedge/lapedge/internal/catalog"
	"github.com/lapedge/lapedge/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Event catalog reads.
	Events(ctx context.Context) []model.Event
	Event(id string) (model.Event, bool)
	Distances(eventID string) ([]int, bool)
	MeerkampDistances(eventID string, gender model.Gender) ([]int, bool)
	DistanceRecords(eventID string, distance int, gender model.Gender) (catalog.DistanceRecords, bool)

	// Live data reads.
	RaceData(ctx context.Context, eventID string, distance int, gender model.Gender) (model.RaceView, error)
	Standings(ctx context.Context, eventID string, distance int, gender model.Gender) (model.StandingsView, error)
	MeerkampStandings(ctx context.Context, eventID string, gender model.Gender, afterDistance int) (model.MeerkampStandings, error)

	// Skater records reads.
	SkaterRecords(ctx context.Context, skaterID string, distance int) (records.SkaterRecords, error)
	SkaterInfo(ctx context.Context, skaterID string) (records.SkaterInfo, error)

	// Cache administration.
	ClearCaches(kind string) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statusHandler   *StatusHandler
	eventsHandler   *EventsHandler
	liveHandler     *LiveHandler
	meerkampHandler *MeerkampHandler
	recordsHandler  *RecordsHandler
	refreshHandler  *RefreshHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statusHandler:   NewStatusHandler(statsProvider),
		eventsHandler:   NewEventsHandler(deps),
		liveHandler:     NewLiveHandler(deps),
		meerkampHandler: NewMeerkampHandler(deps),
		recordsHandler:  NewRecordsHandler(deps),
		refreshHandler:  NewRefreshHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/status", MetricsMiddleware(s.statusHandler.HandleStatus, "status"))
	mux.HandleFunc("/events", MetricsMiddleware(s.eventsHandler.HandleEvents, "events"))
	mux.HandleFunc("/events/", MetricsMiddleware(s.eventsHandler.HandleEventResource, "event_resource"))
	mux.HandleFunc("/live/", MetricsMiddleware(s.liveHandler.HandleRace, "live"))
	mux.HandleFunc("/standings/", MetricsMiddleware(s.liveHandler.HandleStandings, "standings"))
	mux.HandleFunc("/distance-records/", MetricsMiddleware(s.liveHandler.HandleDistanceRecords, "distance_records"))
	mux.HandleFunc("/meerkamp/", MetricsMiddleware(s.meerkampHandler.HandleStandings, "meerkamp"))
	mux.HandleFunc("/records/", MetricsMiddleware(s.recordsHandler.HandleRecords, "records"))
	mux.HandleFunc("/skater/", MetricsMiddleware(s.recordsHandler.HandleSkater, "skater"))
	mux.HandleFunc("/refresh", MetricsMiddleware(s.refreshHandler.HandleRefresh, "refresh"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service sentinels to HTTP statuses: unknown
// identifiers give 404, bad administrative input 400, the rest 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownEvent),
		errors.Is(err, service.ErrNotMeerkamp),
		errors.Is(err, service.ErrNoMeerkampDistances):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, service.ErrUnknownCache):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// genderParam resolves the gender query parameter; absent selects the
// women's category.
func genderParam(r *http.Request) model.Gender {
	g := r.URL.Query().Get("gender")
	if g == "" {
		return model.GenderWomen
	}
	return model.ParseGender(g)
}

// eventDistancePath splits "{eventId}/{distance}" path remainders.
func eventDistancePath(path, prefix string) (string, int, bool) {
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		return "", 0, false
	}
	distance, err := strconv.Atoi(parts[1])
	if err != nil || distance <= 0 {
		return "", 0, false
	}
	return parts[0], distance, true
}
