// Package provider contains the upstream result-source adapters. Each
// adapter turns one provider's wire format into the canonical race and
// standings views; gating, pair selection and retry policy are shared.
package provider

import (
	"context"
	"time"

	"github.com/lapedge/lapedge/internal/domain/laptime"
	"github.com/lapedge/lapedge/internal/domain/model"
)

// Adapter is the contract every result source implements. Fetch
// failures degrade to a waiting view instead of an error; only
// configuration problems surface as errors.
type Adapter interface {
	// FetchRaceData returns the live race view for one distance.
	FetchRaceData(ctx context.Context, event model.Event, distance int, gender model.Gender) (model.RaceView, error)

	// FetchStandings returns the per-distance standings.
	FetchStandings(ctx context.Context, event model.Event, distance int, gender model.Gender) (model.StandingsView, error)

	// WaitingView is the fallback the aggregation layer substitutes
	// when the adapter exceeds its outer deadline.
	WaitingView(event model.Event, distance int) model.RaceView
}

// eventWindow classifies now against the event's start/end window.
// The end is extended by one day to tolerate end-of-day races.
func eventWindow(event model.Event, now time.Time) (before, after bool) {
	start, err := event.StartAt()
	if err == nil && now.Before(start) {
		return true, false
	}
	end, err := event.EndAt()
	if err == nil && now.After(end.AddDate(0, 0, 1)) {
		return false, true
	}
	return false, false
}

// notStartedView announces the event opening in its local timezone.
func notStartedView(event model.Event) model.RaceView {
	loc := event.TimeLocation()
	start, err := event.StartAt()
	if err != nil {
		start = time.Now()
	}

	startTime := event.StartTime
	if startTime == "" {
		startTime = "12:00"
	}
	tz := event.Timezone
	if tz == "" {
		tz = model.DefaultTimezone
	}

	return model.RaceView{
		Status:  model.StatusNotStarted,
		Message: event.Name + " begint op " + laptime.FormatDutchDate(start, loc),
		Event: &model.EventInfo{
			Name:          event.Name,
			Location:      event.Location,
			StartDate:     event.StartDate,
			StartTime:     startTime,
			StartDateTime: start.UTC().Format(time.RFC3339),
			EndDate:       event.EndDate,
			Timezone:      tz,
		},
	}
}

// preRaceView announces a known competition that has not started yet.
func preRaceView(event model.Event, distance int, comp model.Competition) model.RaceView {
	loc := event.TimeLocation()

	view := model.RaceView{
		Status: model.StatusNotStarted,
		Message: comp.Title + " begint op " +
			laptime.FormatDutchDate(comp.Start, loc),
		Event: &model.EventInfo{
			Name:          event.Name,
			Location:      event.Location,
			StartDate:     event.StartDate,
			StartTime:     laptime.FormatClock(comp.Start, loc),
			StartDateTime: comp.Start.UTC().Format(time.RFC3339),
			EndDate:       event.EndDate,
			Timezone:      event.Timezone,
		},
		Competition: &model.CompetitionInfo{
			Title:         comp.Title,
			Distance:      distance,
			StartDateTime: comp.Start.UTC().Format(time.RFC3339),
		},
	}
	if event.ISUEventID != "" {
		view.LiveURL = liveEventURL(event.ISUEventID)
	}
	return view
}

// endedView marks an event whose window has closed.
func endedView(event model.Event) model.RaceView {
	return model.RaceView{
		Status:  model.StatusEnded,
		Message: event.Name + " is afgelopen",
		Event: &model.EventInfo{
			Name:      event.Name,
			Location:  event.Location,
			StartDate: event.StartDate,
			EndDate:   event.EndDate,
		},
	}
}

// waitingView is served whenever live data is expected but absent.
func waitingView(event model.Event, title string) model.RaceView {
	msg := "Wachten op live data..."
	if title != "" {
		msg = "Wachten op " + title + " data..."
	}
	view := model.RaceView{
		Status:  model.StatusWaiting,
		Message: msg,
	}
	if event.ISUEventID != "" {
		view.LiveURL = liveEventURL(event.ISUEventID)
	}
	return view
}

func liveEventURL(isuEventID string) string {
	return "https://live.isuresults.eu/events/" + isuEventID
}
