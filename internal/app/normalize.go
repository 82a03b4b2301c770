package service

import (
	"time"

	"github.com/lapedge/lapedge/internal/catalog"
	"github.com/lapedge/lapedge/internal/domain/model"
	"github.com/lapedge/lapedge/pkg/metrics"
)

// normalizeRace enriches a raw provider view with derived lap splits
// and finish state. Views without a current race pass through: the
// not_started and ended views keep their event blocks untouched,
// anything else collapses to a waiting view.
func normalizeRace(view model.RaceView, distance int, now time.Time) model.RaceView {
	if view.CurrentRace == nil {
		if view.Status == model.StatusNotStarted || view.Status == model.StatusEnded {
			return view
		}
		if view.Status == "" {
			view.Status = model.StatusWaiting
		}
		return view
	}

	cfg, hasCfg := catalog.DistanceConfig(distance)

	race := view.CurrentRace
	for i := range race.Skaters {
		sk := &race.Skaters[i]

		cumulative := 0.0
		laps := make([]model.LapSplit, len(sk.LapTimes))
		for j, t := range sk.LapTimes {
			cumulative += t
			laps[j] = model.LapSplit{
				Lap:        j + 1,
				Time:       t,
				Cumulative: cumulative,
				Pace:       cumulative / float64(j+1),
			}
		}

		completed := len(sk.LapTimes)
		total := float64(completed)
		finished := false
		if hasCfg {
			total = cfg.Laps
			finished = float64(completed) >= cfg.Laps
		}

		sk.Laps = laps
		sk.TotalLaps = total
		sk.CompletedLaps = completed
		sk.CurrentCumulative = cumulative
		sk.IsFinished = finished
	}

	if view.Status == "" {
		view.Status = race.Status
	}
	if view.Status == "" {
		view.Status = model.StatusRacing
	}
	if hasCfg {
		view.Distance = &cfg
	}
	if view.Reskates == nil {
		view.Reskates = []string{}
	}
	view.Timestamp = now.UnixMilli()

	metrics.RecordNormalizationPass()
	return view
}
