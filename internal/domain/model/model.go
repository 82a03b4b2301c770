// Package model contains the canonical race and standings shapes shared
// between provider adapters, the aggregation service and the HTTP layer.
package model

import "time"

// Race statuses, evaluated from scratch on every lookup.
const (
	StatusNotStarted = "not_started"
	StatusWaiting    = "waiting"
	StatusRacing     = "racing"
	StatusFinished   = "finished"
	StatusEnded      = "ended"
)

// Pair statuses inside a race view.
const (
	PairInProgress = "in_progress"
	PairFinished   = "finished"
)

// Gender is the two-valued category code used by result providers.
type Gender string

const (
	GenderWomen Gender = "F"
	GenderMen   Gender = "M"
)

// ParseGender maps request input to a category code: "women" and "F"
// select the women's category, anything else the men's.
func ParseGender(s string) Gender {
	if s == "women" || s == "F" {
		return GenderWomen
	}
	return GenderMen
}

// Event describes a competition weekend. Events come from the static
// catalog, optionally merged with upstream listings, and are immutable
// per request.
type Event struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	Country    string `json:"country"`
	StartDate  string `json:"startDate"` // YYYY-MM-DD
	StartTime  string `json:"startTime,omitempty"`
	EndDate    string `json:"endDate"`
	Timezone   string `json:"timezone,omitempty"`
	Source     string `json:"source"`
	SourceURL  string `json:"sourceUrl,omitempty"`
	ISUEventID string `json:"isuEventId,omitempty"`
	Venue      string `json:"venue,omitempty"`
	Olympic    bool   `json:"isOlympic,omitempty"`
	EventType  string `json:"eventType,omitempty"`
}

// DefaultTimezone is assumed when an event carries no zone of its own.
const DefaultTimezone = "Europe/Amsterdam"

// TimeLocation resolves the event's IANA timezone, falling back to
// the regional default when unset or unknown.
func (e Event) TimeLocation() *time.Location {
	tz := e.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc, _ = time.LoadLocation(DefaultTimezone)
	}
	return loc
}

// StartAt parses the event's start date, with optional start time, in
// the event's timezone.
func (e Event) StartAt() (time.Time, error) {
	loc := e.TimeLocation()
	if e.StartTime != "" {
		return time.ParseInLocation("2006-01-02T15:04", e.StartDate+"T"+e.StartTime, loc)
	}
	return time.ParseInLocation("2006-01-02", e.StartDate, loc)
}

// EndAt parses the event's end date in the event's timezone.
func (e Event) EndAt() (time.Time, error) {
	return time.ParseInLocation("2006-01-02", e.EndDate, e.TimeLocation())
}

// Competition is a single distance+gender race-day unit resolved from
// the event's upstream competition list.
type Competition struct {
	Title            string
	Start            time.Time
	IsLive           bool
	ResultsURL       string
	PersonalBestsURL string
	Distance         int
	Gender           Gender
	LapCount         int
}

// LapRecord is one lap of a raw result: the lap split, the cumulative
// passage time at the lap boundary, and the rank held at that lap.
type LapRecord struct {
	Time    float64 `json:"time"`
	Passage float64 `json:"passageTime"`
	Rank    int     `json:"rank,omitempty"`
}

// Result is one skater's raw outcome in a competition. FinalTime nil
// means still racing or DNF/DNS; a result with a final time carries a
// full lap list.
type Result struct {
	SkaterID    string
	Name        string
	Country     string
	Photo       string
	StartNumber int
	Lane        string
	Armband     string
	Laps        []LapRecord
	FinalTime   *float64
	Rank        int // 0 = unranked
	TimeBehind  *float64
	Reskate     bool
}

// Racing reports whether the result belongs to a skater currently on
// the ice: at least one lap down, no final time, and short of the
// given lap total.
func (r Result) Racing(totalLaps int) bool {
	return len(r.Laps) > 0 && r.FinalTime == nil && len(r.Laps) < totalLaps
}

// EventInfo is the event block attached to not_started/ended views.
type EventInfo struct {
	Name          string `json:"name"`
	Location      string `json:"location"`
	StartDate     string `json:"startDate"`
	StartTime     string `json:"startTime,omitempty"`
	StartDateTime string `json:"startDateTime,omitempty"`
	EndDate       string `json:"endDate"`
	Timezone      string `json:"timezone,omitempty"`
}

// CompetitionInfo is the competition block attached to a pre-race view.
type CompetitionInfo struct {
	Title         string `json:"title"`
	Distance      int    `json:"distance"`
	StartDateTime string `json:"startDateTime"`
}

// LapSplit is a normalized lap with derived cumulative time and pace.
type LapSplit struct {
	Lap        int     `json:"lap"`
	Time       float64 `json:"time"`
	Cumulative float64 `json:"cumulative"`
	Pace       float64 `json:"pace"`
}

// Skater is a competitor inside a race view, enriched by the
// normalization pass with lap splits and finish state.
type Skater struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Country      string    `json:"country"`
	Photo        string    `json:"photo,omitempty"`
	Lane         string    `json:"lane,omitempty"`
	Armband      string    `json:"armband,omitempty"`
	LapTimes     []float64 `json:"lapTimes"`
	PassageTimes []float64 `json:"passageTimes,omitempty"`
	LapRanks     []int     `json:"lapRanks,omitempty"`
	FinalTime    *float64  `json:"finalTime"`
	Rank         int       `json:"rank,omitempty"`
	TimeBehind   *float64  `json:"timeBehind,omitempty"`
	PR           *float64  `json:"pr"`
	SeasonBest   *float64  `json:"seasonBest"`

	// Filled by the aggregation normalization pass.
	Laps              []LapSplit `json:"laps,omitempty"`
	TotalLaps         float64    `json:"totalLaps,omitempty"`
	CompletedLaps     int        `json:"completedLaps,omitempty"`
	CurrentCumulative float64    `json:"currentCumulative,omitempty"`
	IsFinished        bool       `json:"isFinished,omitempty"`
}

// Leader is the rank-1 result used as the passage-time reference line.
type Leader struct {
	Name         string    `json:"name"`
	Country      string    `json:"country"`
	Time         *float64  `json:"time"`
	PassageTimes []float64 `json:"passageTimes"`
}

// TopResult is a ranked result carried for comparative charting.
type TopResult struct {
	Rank         int       `json:"rank"`
	Name         string    `json:"name"`
	Country      string    `json:"country"`
	Time         *float64  `json:"time"`
	PassageTimes []float64 `json:"passageTimes"`
	LapTimes     []float64 `json:"lapTimes"`
}

// CurrentRace is the derived "what is happening on the ice" view.
type CurrentRace struct {
	PairNumber int         `json:"pairNumber"`
	Status     string      `json:"status"`
	Distance   int         `json:"distance"`
	Title      string      `json:"title,omitempty"`
	Skaters    []Skater    `json:"skaters"`
	Leader     *Leader     `json:"leader,omitempty"`
	Top3       []TopResult `json:"top3,omitempty"`
}

// DistanceInfo mirrors the catalog configuration for a distance so
// clients need no second lookup.
type DistanceInfo struct {
	Laps       float64 `json:"laps"`
	InnerStart bool    `json:"innerStart"`
	Name       string  `json:"name"`
}

// RaceView is the normalized live view served to polling clients.
// CurrentRace is nil for the special statuses.
type RaceView struct {
	Status       string           `json:"status"`
	Message      string           `json:"message,omitempty"`
	Event        *EventInfo       `json:"event,omitempty"`
	Competition  *CompetitionInfo `json:"competition,omitempty"`
	LiveURL      string           `json:"liveUrl,omitempty"`
	CurrentRace  *CurrentRace     `json:"currentRace"`
	Distance     *DistanceInfo    `json:"distanceConfig,omitempty"`
	Reskates     []string         `json:"reskates,omitempty"`
	TotalResults int              `json:"totalResults,omitempty"`
	Timestamp    int64            `json:"timestamp,omitempty"`
}

// StandingEntry is one row of a per-distance standings table.
type StandingEntry struct {
	Rank          int      `json:"rank"`
	SkaterID      string   `json:"skaterId,omitempty"`
	Name          string   `json:"name"`
	Country       string   `json:"country"`
	Photo         string   `json:"photo,omitempty"`
	Time          float64  `json:"time"` // seconds; 0 = no valid time
	TimeFormatted string   `json:"timeFormatted,omitempty"`
	TimeBehind    *float64 `json:"timeBehind,omitempty"`
	DNF           bool     `json:"dnf,omitempty"`
	DNS           bool     `json:"dns,omitempty"`
}

// ScoreTime implements samalog.Scoreable.
func (s StandingEntry) ScoreTime() float64 { return s.Time }

// NonFinisher implements samalog.Scoreable.
func (s StandingEntry) NonFinisher() bool { return s.DNF || s.DNS }

// StandingsView is the normalized standings response for one distance.
type StandingsView struct {
	Distance  int             `json:"distance"`
	Standings []StandingEntry `json:"standings"`
}

// DistanceScore is one scored distance within an all-around standing.
type DistanceScore struct {
	Distance int      `json:"distance"`
	Time     *float64 `json:"time"`   // seconds
	Points   *float64 `json:"points"` // Samalog points
	Status   string   `json:"status"` // "finished" or "DNF"
}

// MeerkampEntry is one skater's cumulative all-around standing.
type MeerkampEntry struct {
	Rank               int             `json:"rank"`
	SkaterID           string          `json:"skaterId"`
	Name               string          `json:"name"`
	Country            string          `json:"country"`
	Distances          []DistanceScore `json:"distances"`
	PointsFinished     float64         `json:"pointsFinished"`
	PointsVirtual      float64         `json:"pointsVirtual"`
	DNF                bool            `json:"dnf"`
	GapToFirst         float64         `json:"gapToFirst"`
	RemainingDistances []int           `json:"remainingDistances"`
}

// MeerkampStandings is the all-around standings response.
type MeerkampStandings struct {
	EventID            string          `json:"eventId"`
	Gender             string          `json:"gender"`
	EventType          string          `json:"eventType"`
	AllDistances       []int           `json:"allDistances"`
	CompletedDistances []int           `json:"completedDistances"`
	CurrentDistance    *int            `json:"currentDistance"` // nil = event complete
	CurrentRaceStatus  string          `json:"currentRaceStatus"`
	Standings          []MeerkampEntry `json:"standings"`
	LastUpdated        string          `json:"lastUpdated"`
}
