// Package predict holds the pure derivation functions the dashboard
// computes from a normalized race view: virtual rank, finish-time
// prediction and pacing schedules. No I/O happens here.
package predict

import (
	"math"

	"github.com/lapedge/lapedge/internal/domain/model"
)

// Prediction model constants. The trend is dampened because fatigue
// effects are not linear, and margins never collapse below half a
// second.
const (
	trendDampening    = 0.8
	marginScale       = 1.5
	minMargin         = 0.5
	minTrendVariance  = 0.1
	minLapVariance    = 0.3
	openingMultiplier = 1.55
	openingDrift      = 1.02
)

// fatigueProfile models per-lap slowdown for a distance: each
// remaining lap is projected as last lap x (1 + base + accel*lapIndex).
type fatigueProfile struct {
	base  float64
	accel float64
}

// Longer distances slow down less per lap.
var fatigueProfiles = map[int]fatigueProfile{
	1500:  {base: 0.005, accel: 0.002},
	3000:  {base: 0.004, accel: 0.001},
	5000:  {base: 0.003, accel: 0.0008},
	10000: {base: 0.002, accel: 0.0005},
}

var defaultProfile = fatigueProfile{base: 0.003, accel: 0.001}

// passageCounts maps a distance to its number of finish-line passages
// (the opening ~100m plus full 400m laps).
var passageCounts = map[int]int{
	500:   2,
	1000:  3,
	1500:  4,
	3000:  8,
	5000:  13,
	10000: 25,
}

// PassageCount returns the number of passage times expected for a
// distance, defaulting to 1 for unknown distances.
func PassageCount(distance int) int {
	if n, ok := passageCounts[distance]; ok {
		return n
	}
	return 1
}

// VirtualRank computes a provisional rank for a skater against a
// per-distance standings table. For a finished skater it counts
// entries at or below the skater's time; for an in-progress skater it
// projects a finish time linearly from the current pace and counts
// entries faster than the projection. Returns false when no rank can
// be derived.
func VirtualRank(skater model.Skater, standings []model.StandingEntry) (int, bool) {
	if skater.CurrentCumulative <= 0 || len(standings) == 0 {
		return 0, false
	}

	if skater.IsFinished {
		rank := 1
		for _, entry := range standings {
			if entry.Time > 0 && entry.Time <= skater.CurrentCumulative {
				rank++
			}
		}
		return rank, true
	}

	completed := skater.CompletedLaps
	if completed == 0 {
		completed = len(skater.Laps)
	}
	if completed == 0 {
		return 0, false
	}
	totalLaps := skater.TotalLaps
	if totalLaps <= 0 {
		totalLaps = 1
	}
	projected := skater.CurrentCumulative / float64(completed) * totalLaps

	rank := 1
	for _, entry := range standings {
		if entry.Time > 0 && entry.Time < projected {
			rank++
		}
	}
	return rank, true
}

// Prediction is a projected finish time with an uncertainty margin.
type Prediction struct {
	Time          float64 `json:"time"`
	Margin        float64 `json:"margin"`
	ProjectedRank int     `json:"projectedRank,omitempty"`
	Method        string  `json:"method"`
}

// Prediction methods.
const (
	MethodActual   = "actual"
	MethodLeader   = "leader"
	MethodProfile  = "profile"
	MethodEstimate = "estimate"
)

// FinishTime predicts a skater's finish time. The leader-referenced
// model is preferred when the leader's full passage series and final
// time are known; otherwise a distance fatigue profile extrapolates
// the skater's own laps. A finished skater's prediction is their
// actual time with zero margin.
func FinishTime(skater model.Skater, distance int, cfg *model.DistanceInfo, leader *model.Leader, standings []model.StandingEntry) *Prediction {
	if len(skater.Laps) == 0 {
		return nil
	}

	totalLaps := float64(PassageCount(distance))
	if cfg != nil && cfg.Laps > 0 {
		totalLaps = cfg.Laps
	}
	completed := len(skater.Laps)

	if skater.IsFinished {
		return &Prediction{
			Time:          skater.CurrentCumulative,
			Margin:        0,
			ProjectedRank: skater.Rank,
			Method:        MethodActual,
		}
	}

	remaining := totalLaps - float64(completed)

	var p *Prediction
	if leaderUsable(leader, totalLaps) {
		p = fromLeader(skater, leader, remaining)
	} else {
		p = fromProfile(skater, distance, completed, remaining)
	}

	if p != nil && len(standings) > 0 {
		p.ProjectedRank = projectedRank(p.Time, standings)
	}
	return p
}

func leaderUsable(leader *model.Leader, totalLaps float64) bool {
	return leader != nil && leader.Time != nil && float64(len(leader.PassageTimes)) >= totalLaps
}

// fromLeader projects the gap to the leader forward. The trend over
// the most recent 3-5 gap deltas is dampened and extended over the
// remaining laps; the margin grows with the variance of the deltas.
func fromLeader(skater model.Skater, leader *model.Leader, remaining float64) *Prediction {
	passages := skater.PassageTimes
	if len(passages) == 0 {
		passages = make([]float64, len(skater.Laps))
		for i, lap := range skater.Laps {
			passages[i] = lap.Cumulative
		}
	}

	diffs := make([]float64, 0, len(passages))
	for i, p := range passages {
		if i >= len(leader.PassageTimes) {
			break
		}
		diffs = append(diffs, p-leader.PassageTimes[i])
	}
	if len(diffs) == 0 {
		return nil
	}
	currentDiff := diffs[len(diffs)-1]

	var trendPerLap float64
	switch {
	case len(diffs) >= 3:
		recent := diffs[len(diffs)-min(5, len(diffs)):]
		var sum float64
		for i := 1; i < len(recent); i++ {
			sum += recent[i] - recent[i-1]
		}
		trendPerLap = sum / float64(len(recent)-1)
	case len(diffs) >= 2:
		trendPerLap = (diffs[len(diffs)-1] - diffs[0]) / float64(len(diffs)-1)
	}

	projectedDiff := currentDiff + trendPerLap*trendDampening*remaining

	deltas := make([]float64, 0, len(diffs))
	for i := 1; i < len(diffs); i++ {
		deltas = append(deltas, diffs[i]-diffs[i-1])
	}
	margin := marginScale * math.Sqrt(math.Max(variance(deltas), minTrendVariance)*remaining)

	return &Prediction{
		Time:   *leader.Time + projectedDiff,
		Margin: math.Max(margin, minMargin),
		Method: MethodLeader,
	}
}

// fromProfile extrapolates the skater's own laps with a per-distance
// fatigue model. With only the opening lap down, a rough multiplier
// estimates a normal lap instead.
func fromProfile(skater model.Skater, distance, completed int, remaining float64) *Prediction {
	profile, ok := fatigueProfiles[distance]
	if !ok {
		profile = defaultProfile
	}

	normal := skater.Laps[1:]
	if len(normal) == 0 {
		estimated := skater.Laps[0].Time * openingMultiplier
		return &Prediction{
			Time:   skater.CurrentCumulative + estimated*remaining*openingDrift,
			Margin: math.Max(remaining*minMargin, minMargin),
			Method: MethodEstimate,
		}
	}

	lastLap := normal[len(normal)-1].Time
	var projectedRemaining float64
	for i := 0; i < int(math.Ceil(remaining)); i++ {
		lapNumber := completed + i + 1
		mult := 1 + profile.base + profile.accel*float64(lapNumber-2)
		projectedRemaining += lastLap * mult
	}
	// Scale down when the final "lap" is a partial one.
	if frac := remaining - math.Floor(remaining); frac > 0 {
		projectedRemaining -= lastLap * (1 - frac)
	}

	times := make([]float64, len(normal))
	for i, lap := range normal {
		times[i] = lap.Time
	}
	margin := marginScale * math.Sqrt(math.Max(variance(times), minLapVariance)*remaining)

	return &Prediction{
		Time:   skater.CurrentCumulative + projectedRemaining,
		Margin: math.Max(margin, minMargin),
		Method: MethodProfile,
	}
}

// projectedRank counts finished entries faster than the predicted time.
func projectedRank(predicted float64, standings []model.StandingEntry) int {
	rank := 1
	for _, entry := range standings {
		if entry.Time > 0 && entry.Time < predicted {
			rank++
		}
	}
	return rank
}

func variance(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	var mean float64
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return sum / float64(len(values))
}

// ScheduleLap is one lap of an even-pace reference schedule.
type ScheduleLap struct {
	Lap        int     `json:"lap"`
	Time       float64 `json:"time"`
	Cumulative float64 `json:"cumulative"`
}

// EvenPaceSchedule splits a target time into equal passage splits for
// a distance, used as a reference line against a live race.
func EvenPaceSchedule(targetTime float64, distance int) []ScheduleLap {
	total := PassageCount(distance)
	if total <= 0 || targetTime <= 0 {
		return nil
	}
	perLap := targetTime / float64(total)

	schedule := make([]ScheduleLap, 0, total)
	var cumulative float64
	for i := 1; i <= total; i++ {
		cumulative += perLap
		schedule = append(schedule, ScheduleLap{Lap: i, Time: perLap, Cumulative: cumulative})
	}
	return schedule
}

// ScheduleDiff compares a completed lap to its schedule counterpart.
type ScheduleDiff struct {
	model.LapSplit
	Diff        *float64 `json:"diff"`
	ScheduleCum float64  `json:"scheduleCum,omitempty"`
}

// CompareToSchedule annotates each completed lap with the cumulative
// difference to a reference schedule. Laps beyond the schedule carry a
// nil diff.
func CompareToSchedule(skater model.Skater, schedule []ScheduleLap) []ScheduleDiff {
	if len(skater.Laps) == 0 || len(schedule) == 0 {
		return nil
	}
	out := make([]ScheduleDiff, 0, len(skater.Laps))
	for i, lap := range skater.Laps {
		d := ScheduleDiff{LapSplit: lap}
		if i < len(schedule) {
			diff := lap.Cumulative - schedule[i].Cumulative
			d.Diff = &diff
			d.ScheduleCum = schedule[i].Cumulative
		}
		out = append(out, d)
	}
	return out
}
