package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/lapedge/lapedge/internal/catalog"
	"github.com/lapedge/lapedge/internal/domain/model"
	"github.com/lapedge/lapedge/internal/domain/samalog"
	"github.com/lapedge/lapedge/pkg/logger"
	"github.com/lapedge/lapedge/pkg/metrics"
)

// raceStatusCompleted is reported when every all-around distance has
// results in.
const raceStatusCompleted = "completed"

// MeerkampStandings computes the cumulative Samalog standings for an
// all-around event. afterDistance > 0 truncates the sequence to the
// standings as they stood after that distance.
func (s *Service) MeerkampStandings(ctx context.Context, eventID string, gender model.Gender, afterDistance int) (model.MeerkampStandings, error) {
	event, ok := s.catalog.Event(eventID)
	if !ok {
		return model.MeerkampStandings{}, fmt.Errorf("%w: %s", ErrUnknownEvent, eventID)
	}
	if catalog.EventType(event) == "distances" {
		return model.MeerkampStandings{}, fmt.Errorf("%w: %s", ErrNotMeerkamp, eventID)
	}

	allDistances, ok := s.catalog.MeerkampDistances(eventID, gender)
	if !ok {
		return model.MeerkampStandings{}, fmt.Errorf("%w: %s %s", ErrNoMeerkampDistances, eventID, gender)
	}

	key := eventID + ":" + string(gender) + ":" + strconv.Itoa(afterDistance)
	v, err := s.meerkamp.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.computeMeerkamp(ctx, event, gender, allDistances, afterDistance), nil
	})
	if err != nil {
		return s.computeMeerkamp(ctx, event, gender, allDistances, afterDistance), nil
	}

	standings, _ := v.(model.MeerkampStandings)
	return standings, nil
}

func (s *Service) computeMeerkamp(ctx context.Context, event model.Event, gender model.Gender, allDistances []int, afterDistance int) model.MeerkampStandings {
	included := distancesUntil(allDistances, afterDistance)
	results := s.fetchDistanceResults(ctx, event.ID, included, gender)
	standings := cumulativeStandings(results, allDistances, included)

	currentDistance := firstUnraced(allDistances, results)
	status := raceStatusCompleted
	if currentDistance != nil {
		status = s.raceStatus(ctx, event.ID, *currentDistance, gender)
	}

	metrics.RecordMeerkampComputation()

	return model.MeerkampStandings{
		EventID:            event.ID,
		Gender:             string(gender),
		EventType:          catalog.EventType(event),
		AllDistances:       allDistances,
		CompletedDistances: included,
		CurrentDistance:    currentDistance,
		CurrentRaceStatus:  status,
		Standings:          standings,
		LastUpdated:        s.now().UTC().Format(time.RFC3339),
	}
}

// distancesUntil truncates the sequence up to and including target.
// An unknown target keeps the full sequence.
func distancesUntil(all []int, target int) []int {
	if target == 0 {
		return all
	}
	for i, d := range all {
		if d == target {
			return all[:i+1]
		}
	}
	return all
}

// fetchDistanceResults collects per-distance standings, skipping
// distances that fail or have no results yet.
func (s *Service) fetchDistanceResults(ctx context.Context, eventID string, distances []int, gender model.Gender) map[int][]model.StandingEntry {
	results := make(map[int][]model.StandingEntry)
	for _, distance := range distances {
		view, err := s.Standings(ctx, eventID, distance, gender)
		if err != nil {
			s.logger.Warn(ctx, "all-around distance unavailable",
				logger.String("event", eventID),
				logger.Int("distance", distance),
				logger.Error(err),
			)
			metrics.RecordMeerkampPartial()
			continue
		}
		if len(view.Standings) == 0 {
			continue
		}
		results[distance] = view.Standings
	}
	return results
}

// cumulativeStandings folds per-distance results into ranked Samalog
// totals. Active skaters sort by points; non-finishers list last.
func cumulativeStandings(results map[int][]model.StandingEntry, allDistances, included []int) []model.MeerkampEntry {
	skaters := make(map[string]*model.MeerkampEntry)
	var order []string

	for _, distance := range included {
		for _, result := range results[distance] {
			id := result.SkaterID
			if id == "" {
				id = result.Name
			}
			if id == "" {
				continue
			}

			entry, ok := skaters[id]
			if !ok {
				entry = &model.MeerkampEntry{
					SkaterID: id,
					Name:     result.Name,
					Country:  result.Country,
				}
				skaters[id] = entry
				order = append(order, id)
			}

			if samalog.IsDNSOrDNF(result) {
				entry.DNF = true
				entry.Distances = append(entry.Distances, model.DistanceScore{
					Distance: distance,
					Status:   "DNF",
				})
				continue
			}

			points, ok := samalog.PointsFromSeconds(result.Time, distance)
			if !ok {
				continue
			}
			t := result.Time
			p := points
			entry.PointsFinished += points
			entry.PointsVirtual += points
			entry.Distances = append(entry.Distances, model.DistanceScore{
				Distance: distance,
				Time:     &t,
				Points:   &p,
				Status:   "finished",
			})
		}
	}

	var active, nonFinishers []model.MeerkampEntry
	for _, id := range order {
		entry := *skaters[id]
		if entry.DNF {
			nonFinishers = append(nonFinishers, entry)
		} else {
			active = append(active, entry)
		}
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].PointsVirtual < active[j].PointsVirtual
	})

	if len(active) > 0 {
		leader := active[0].PointsVirtual
		for i := range active {
			active[i].GapToFirst = active[i].PointsVirtual - leader
		}
	}

	remaining := remainingDistances(allDistances, included)
	standings := append(active, nonFinishers...)
	for i := range standings {
		standings[i].Rank = i + 1
		standings[i].RemainingDistances = remaining
	}
	return standings
}

func remainingDistances(all, included []int) []int {
	done := make(map[int]struct{}, len(included))
	for _, d := range included {
		done[d] = struct{}{}
	}
	var remaining []int
	for _, d := range all {
		if _, ok := done[d]; !ok {
			remaining = append(remaining, d)
		}
	}
	return remaining
}

// firstUnraced returns the first distance without results, nil when
// the event is complete.
func firstUnraced(all []int, results map[int][]model.StandingEntry) *int {
	for _, d := range all {
		if _, ok := results[d]; !ok {
			v := d
			return &v
		}
	}
	return nil
}

func (s *Service) raceStatus(ctx context.Context, eventID string, distance int, gender model.Gender) string {
	view, err := s.RaceData(ctx, eventID, distance, gender)
	if err != nil || view.Status == "" {
		return model.StatusWaiting
	}
	return view.Status
}
