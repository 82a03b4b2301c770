// Package samalog implements the Samalog all-around scoring formula:
// points = time in seconds divided by distance in kilometers. The
// lowest total wins.
package samalog

const msPerSecond = 1000

// Points computes Samalog points for a time in milliseconds over a
// distance in meters. Returns false for non-positive inputs, which
// callers treat as "no score".
func Points(timeMs float64, distanceMeters int) (float64, bool) {
	if timeMs <= 0 || distanceMeters <= 0 {
		return 0, false
	}
	timeSeconds := timeMs / msPerSecond
	distanceKm := float64(distanceMeters) / 1000
	return timeSeconds / distanceKm, true
}

// PointsFromSeconds is Points for providers that report seconds.
func PointsFromSeconds(timeSeconds float64, distanceMeters int) (float64, bool) {
	return Points(timeSeconds*msPerSecond, distanceMeters)
}

// TimeForPoints computes the time in milliseconds needed to score
// target points on a distance.
func TimeForPoints(targetPoints float64, distanceMeters int) (float64, bool) {
	if targetPoints <= 0 || distanceMeters <= 0 {
		return 0, false
	}
	distanceKm := float64(distanceMeters) / 1000
	return targetPoints * distanceKm * msPerSecond, true
}

// TimeDelta converts a points delta into the time delta in
// milliseconds it represents on a distance. Negative means the skater
// must go faster.
func TimeDelta(pointsDelta float64, distanceMeters int) float64 {
	if pointsDelta == 0 || distanceMeters <= 0 {
		return 0
	}
	distanceKm := float64(distanceMeters) / 1000
	return pointsDelta * distanceKm * msPerSecond
}

// Scoreable is the subset of a standings entry the DNF predicate needs.
type Scoreable interface {
	ScoreTime() float64 // seconds; <= 0 means no valid time
	NonFinisher() bool  // explicitly flagged DNF/DNS
}

// IsDNSOrDNF reports whether a result counts as non-finishing: either
// explicitly flagged, or lacking a positive time.
func IsDNSOrDNF(r Scoreable) bool {
	if r == nil {
		return true
	}
	if r.NonFinisher() {
		return true
	}
	return r.ScoreTime() <= 0
}
