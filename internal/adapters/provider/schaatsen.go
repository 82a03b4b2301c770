package provider

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/lapedge/lapedge/internal/domain/model"
	"github.com/lapedge/lapedge/pkg/logger"
	"github.com/lapedge/lapedge/pkg/metrics"
)

// ProviderSchaatsen labels the national federation live API.
const ProviderSchaatsen = "schaatsen"

const (
	defaultSchaatsenTimeout = 5 * time.Second
	defaultSchaatsenBaseURL = "https://liveresults.schaatsen.nl"
)

// SchaatsenAdapter reads the schaatsen.nl live results API. The feed
// carries no gender split and no competition list, so lookups go
// straight to the per-distance race endpoint.
type SchaatsenAdapter struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
	now     func() time.Time
	log     logger.Logger
}

// SchaatsenOption applies a configuration option to the adapter.
type SchaatsenOption func(*SchaatsenAdapter)

// WithSchaatsenBaseURL sets the API base used when an event carries no
// source URL of its own.
func WithSchaatsenBaseURL(url string) SchaatsenOption {
	return func(a *SchaatsenAdapter) {
		if url != "" {
			a.baseURL = url
		}
	}
}

// WithSchaatsenClient overrides the HTTP client.
func WithSchaatsenClient(client *http.Client) SchaatsenOption {
	return func(a *SchaatsenAdapter) {
		if client != nil {
			a.client = client
		}
	}
}

// WithSchaatsenClock overrides the adapter's wall clock.
func WithSchaatsenClock(now func() time.Time) SchaatsenOption {
	return func(a *SchaatsenAdapter) {
		if now != nil {
			a.now = now
		}
	}
}

// WithSchaatsenTimeout overrides the per-request timeout.
func WithSchaatsenTimeout(timeout time.Duration) SchaatsenOption {
	return func(a *SchaatsenAdapter) {
		if timeout > 0 {
			a.timeout = timeout
		}
	}
}

// WithSchaatsenLogger overrides the adapter logger.
func WithSchaatsenLogger(log logger.Logger) SchaatsenOption {
	return func(a *SchaatsenAdapter) { a.log = log }
}

// NewSchaatsen creates a schaatsen.nl adapter with default configuration.
func NewSchaatsen(opts ...SchaatsenOption) *SchaatsenAdapter {
	a := &SchaatsenAdapter{
		baseURL: defaultSchaatsenBaseURL,
		client:  &http.Client{},
		timeout: defaultSchaatsenTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *SchaatsenAdapter) eventBase(event model.Event) string {
	if event.SourceURL != "" {
		return event.SourceURL
	}
	return a.baseURL
}

func (a *SchaatsenAdapter) logger() logger.Logger {
	if a.log != nil {
		return a.log
	}
	return logger.Named(ProviderSchaatsen)
}

// WaitingView implements Adapter.
func (a *SchaatsenAdapter) WaitingView(model.Event, int) model.RaceView {
	return model.RaceView{
		Status:  model.StatusWaiting,
		Message: "Wachten op volgende rit...",
	}
}

// FetchRaceData implements Adapter.
func (a *SchaatsenAdapter) FetchRaceData(ctx context.Context, event model.Event, distance int, _ model.Gender) (model.RaceView, error) {
	now := a.now()
	if before, after := eventWindow(event, now); before {
		return notStartedView(event), nil
	} else if after {
		return endedView(event), nil
	}

	var race schaatsenRace
	url := a.eventBase(event) + "/api/race/" + strconv.Itoa(distance)
	if err := getJSON(ctx, a.client, ProviderSchaatsen, url, a.timeout, &race); err != nil {
		a.logger().Debug(ctx, "no live data",
			logger.String("event", event.ID), logger.Error(err))
		metrics.RecordProviderFallback(ProviderSchaatsen, "race")
		return a.WaitingView(event, distance), nil
	}

	return transformSchaatsen(race), nil
}

// FetchStandings implements Adapter.
func (a *SchaatsenAdapter) FetchStandings(ctx context.Context, event model.Event, distance int, _ model.Gender) (model.StandingsView, error) {
	view := model.StandingsView{Distance: distance}

	if start, err := event.StartAt(); err == nil && a.now().Before(start) {
		return view, nil
	}

	var standings schaatsenStandings
	url := a.eventBase(event) + "/api/standings/" + strconv.Itoa(distance)
	if err := getJSON(ctx, a.client, ProviderSchaatsen, url, a.timeout, &standings); err != nil {
		a.logger().Debug(ctx, "no standings",
			logger.String("event", event.ID), logger.Error(err))
		return view, nil
	}

	view.Standings = make([]model.StandingEntry, len(standings.Standings))
	for i, s := range standings.Standings {
		view.Standings[i] = model.StandingEntry{
			Rank:       s.Rank,
			SkaterID:   s.Name,
			Name:       s.Name,
			Country:    s.Country,
			Time:       s.Time.Seconds(),
			TimeBehind: s.Difference,
		}
	}
	return view, nil
}

func transformSchaatsen(race schaatsenRace) model.RaceView {
	status := race.Status
	if status == "" {
		status = model.StatusRacing
	}
	pairStatus := race.Status
	if pairStatus == "" {
		pairStatus = model.PairInProgress
	}
	pairNo := race.Rit
	if pairNo == 0 {
		pairNo = 1
	}

	skaters := make([]model.Skater, len(race.Rijders))
	for i, r := range race.Rijders {
		id := r.ID
		if id == "" {
			id = r.Naam
		}
		country := r.Land
		if country == "" {
			country = "NED"
		}
		lane := "outer"
		if r.Baan == "binnen" {
			lane = "inner"
		}
		skaters[i] = model.Skater{
			ID:         id,
			Name:       r.Naam,
			Country:    country,
			Lane:       lane,
			LapTimes:   r.Rondetijden,
			PR:         r.PR,
			SeasonBest: r.SB,
		}
	}

	return model.RaceView{
		Status: status,
		CurrentRace: &model.CurrentRace{
			PairNumber: pairNo,
			Status:     pairStatus,
			Distance:   race.Afstand,
			Skaters:    skaters,
		},
	}
}
