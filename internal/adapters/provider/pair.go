package provider

import (
	"sort"

	"github.com/lapedge/lapedge/internal/domain/model"
)

// minLapsByDistance guards against providers under-reporting splits
// for long distances.
var minLapsByDistance = map[int]int{
	500:   1,
	1000:  2,
	1500:  4,
	3000:  7,
	5000:  12,
	10000: 25,
}

const absoluteMinLaps = 3

// TotalLaps resolves the lap count used for pair selection: the
// largest of the competition-reported count, the per-distance minimum,
// and an absolute floor.
func TotalLaps(reported, distance int) int {
	total := reported
	if m := minLapsByDistance[distance]; m > total {
		total = m
	}
	if total < absoluteMinLaps {
		total = absoluteMinLaps
	}
	return total
}

// SelectCurrentPair picks the results shown as "on the ice":
//  1. the heat with the highest start number among actively racing
//     results, if any;
//  2. else the most recently completed heat;
//  3. else the two lowest start numbers, as pair 1.
func SelectCurrentPair(results []model.Result, totalLaps int) ([]model.Result, int) {
	if len(results) == 0 {
		return nil, 1
	}

	if start, ok := highestStart(results, func(r model.Result) bool {
		return r.Racing(totalLaps)
	}); ok {
		return heat(results, start), pairNumber(start)
	}

	if start, ok := highestStart(results, func(r model.Result) bool {
		return r.FinalTime != nil
	}); ok {
		return heat(results, start), pairNumber(start)
	}

	// Nothing started: show the first two starters.
	sorted := make([]model.Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartNumber < sorted[j].StartNumber
	})
	if len(sorted) > 2 {
		sorted = sorted[:2]
	}
	return sorted, 1
}

func highestStart(results []model.Result, match func(model.Result) bool) (int, bool) {
	best, found := 0, false
	for _, r := range results {
		if !match(r) {
			continue
		}
		if !found || r.StartNumber > best {
			best, found = r.StartNumber, true
		}
	}
	return best, found
}

func heat(results []model.Result, startNumber int) []model.Result {
	var pair []model.Result
	for _, r := range results {
		if r.StartNumber == startNumber {
			pair = append(pair, r)
		}
	}
	return pair
}

func pairNumber(startNumber int) int {
	if startNumber <= 0 {
		return 1
	}
	return (startNumber + 1) / 2
}

// LeaderOf returns the rank-1 result as the passage-time reference
// line, or nil when nobody holds rank 1 yet.
func LeaderOf(results []model.Result) *model.Leader {
	for _, r := range results {
		if r.Rank != 1 {
			continue
		}
		return &model.Leader{
			Name:         r.Name,
			Country:      r.Country,
			Time:         r.FinalTime,
			PassageTimes: passageTimes(r.Laps),
		}
	}
	return nil
}

// TopThree returns the ranked results carried for comparative
// charting: rank 1-3 with at least one lap, rank ascending.
func TopThree(results []model.Result) []model.TopResult {
	var top []model.TopResult
	for _, r := range results {
		if r.Rank < 1 || r.Rank > 3 || len(r.Laps) == 0 {
			continue
		}
		top = append(top, model.TopResult{
			Rank:         r.Rank,
			Name:         r.Name,
			Country:      r.Country,
			Time:         r.FinalTime,
			PassageTimes: passageTimes(r.Laps),
			LapTimes:     lapTimes(r.Laps),
		})
	}
	sort.SliceStable(top, func(i, j int) bool { return top[i].Rank < top[j].Rank })
	return top
}

// Reskates lists reskate-granted skaters, deduplicated by name.
func Reskates(results []model.Result) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, r := range results {
		if !r.Reskate {
			continue
		}
		if _, ok := seen[r.Name]; ok {
			continue
		}
		seen[r.Name] = struct{}{}
		names = append(names, r.Name)
	}
	return names
}

func passageTimes(laps []model.LapRecord) []float64 {
	out := make([]float64, len(laps))
	for i, lap := range laps {
		out[i] = lap.Passage
	}
	return out
}

func lapTimes(laps []model.LapRecord) []float64 {
	out := make([]float64, len(laps))
	for i, lap := range laps {
		out[i] = lap.Time
	}
	return out
}
