package poller

import (
	"fmt"
	"log"

	"github.com/lapedge/lapedge/internal/domain/laptime"
	"github.com/lapedge/lapedge/internal/domain/model"
)

// renderSnapshot prints one completed poll cycle to the session log.
func renderSnapshot(cfg Config, s Snapshot) {
	race := s.Race

	if race.CurrentRace == nil {
		if race.Message != "" {
			log.Printf("⏳ [%s] %s", race.Status, race.Message)
		} else {
			log.Printf("⏳ [%s] %s %dm", race.Status, cfg.EventID, cfg.Distance)
		}
		return
	}

	current := race.CurrentRace
	log.Printf("⛸️  Rit %d - %dm (%s)", current.PairNumber, current.Distance, race.Status)

	for _, sk := range current.Skaters {
		log.Printf("   %s %s (%s): %s", laneMarker(sk.Lane), sk.Name, sk.Country, skaterLine(sk))
		if pred, ok := s.Predictions[sk.ID]; ok && !sk.IsFinished {
			log.Printf("      🔮 Projected: %s ± %.2f (%s, rank %d)",
				laptime.Format(pred.Time), pred.Margin, pred.Method, pred.ProjectedRank)
		}
	}

	if current.Leader != nil && current.Leader.Time != nil {
		log.Printf("   🥇 Leader: %s (%s) %s",
			current.Leader.Name, current.Leader.Country, laptime.Format(*current.Leader.Time))
	}

	if len(s.Standings.Standings) > 0 {
		top := s.Standings.Standings
		if len(top) > 3 {
			top = top[:3]
		}
		log.Printf("🏆 Top %d:", len(top))
		for _, entry := range top {
			log.Printf("   %d. %s (%s) - %s", entry.Rank, entry.Name, entry.Country, entry.TimeFormatted)
		}
	}
}

func skaterLine(sk model.Skater) string {
	if sk.IsFinished && sk.FinalTime != nil {
		return "🏁 " + laptime.Format(*sk.FinalTime)
	}
	if sk.CompletedLaps == 0 {
		return "aan de start"
	}
	return fmt.Sprintf("%s na %d ronden (%s)",
		laptime.Format(sk.CurrentCumulative), sk.CompletedLaps,
		laptime.FormatPace(sk.CurrentCumulative/float64(sk.CompletedLaps)))
}

func laneMarker(lane string) string {
	if lane == "inner" {
		return "🔴"
	}
	return "⚪"
}

// displayFinalStats prints the session statistics.
func displayFinalStats(stats Stats) {
	log.Printf(`✅ Polling session completed:
   🔄 Cycles completed: %d
   ⏭️  Cycles aborted: %d
   ❌ Requests failed: %d
   ⏱️  Duration: %v`,
		stats.CyclesCompleted,
		stats.CyclesAborted,
		stats.RequestsFailed,
		stats.Duration)
}
