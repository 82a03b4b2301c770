package provider

import (
	"encoding/json"
	"fmt"

	"github.com/lapedge/lapedge/internal/domain/laptime"
)

// FlexTime decodes a race time that upstreams serialize either as a
// raw number of seconds or as a "M:SS.sss" string.
type FlexTime float64

func (t *FlexTime) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = 0
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, ok := laptime.Parse(s)
		if !ok {
			return fmt.Errorf("unparseable time %q", s)
		}
		*t = FlexTime(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*t = FlexTime(f)
	return nil
}

// Seconds returns the decoded time in seconds.
func (t FlexTime) Seconds() float64 { return float64(t) }

// ISU results API wire shapes.

type isuDistance struct {
	Distance int `json:"distance"`
	LapCount int `json:"lapCount"`
}

type isuCompetition struct {
	Title            string      `json:"title"`
	Start            string      `json:"start"` // RFC 3339
	IsLive           bool        `json:"isLive"`
	Category         string      `json:"category"`
	Distance         isuDistance `json:"distance"`
	ResultsURL       string      `json:"resultsUrl"`
	PersonalBestsURL string      `json:"personalBestsUrl"`
}

type isuLap struct {
	Time        FlexTime `json:"time"`
	PassageTime FlexTime `json:"passageTime"`
	Rank        int      `json:"rank"`
}

type isuSkater struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Country   string `json:"country"`
	Photo     string `json:"photo"`
}

type isuCompetitor struct {
	Skater isuSkater `json:"skater"`
}

type isuResult struct {
	ID          string        `json:"id"`
	StartNumber int           `json:"startNumber"`
	StartLane   string        `json:"startLane"`
	Armband     string        `json:"armband"`
	Time        *FlexTime     `json:"time"`
	TimeBehind  *FlexTime     `json:"timeBehind"`
	Rank        int           `json:"rank"`
	Status      string        `json:"status"`
	IsReskate   bool          `json:"isReskate"`
	Laps        []isuLap      `json:"laps"`
	Competitor  isuCompetitor `json:"competitor"`
}

type isuPersonalBest struct {
	SkaterID string   `json:"skaterId"`
	Time     FlexTime `json:"time"`
}

// ISU season event listing wire shapes.

type isuTrack struct {
	Name     string `json:"name"`
	City     string `json:"city"`
	Country  string `json:"country"`
	TimeZone string `json:"timeZone"`
}

type isuEvent struct {
	ISUID              string   `json:"isuId"`
	Name               string   `json:"name"`
	Start              string   `json:"start"`
	End                string   `json:"end"`
	Track              isuTrack `json:"track"`
	Tags               []string `json:"tags"`
	NationalFederation string   `json:"nationalFederation"`
	IsCancelled        bool     `json:"isCancelled"`
}

type isuEventPage struct {
	Results []isuEvent `json:"results"`
}

// schaatsen.nl live API wire shapes (Dutch field names as served).

type schaatsenRijder struct {
	ID          string    `json:"id"`
	Naam        string    `json:"naam"`
	Land        string    `json:"land"`
	Baan        string    `json:"baan"`
	Rondetijden []float64 `json:"rondetijden"`
	PR          *float64  `json:"pr"`
	SB          *float64  `json:"sb"`
}

type schaatsenRace struct {
	Status  string            `json:"status"`
	Rit     int               `json:"rit"`
	Afstand int               `json:"afstand"`
	Rijders []schaatsenRijder `json:"rijders"`
}

type schaatsenStanding struct {
	Rank       int      `json:"rank"`
	Name       string   `json:"name"`
	Country    string   `json:"country"`
	Time       FlexTime `json:"time"`
	Difference *float64 `json:"difference"`
}

type schaatsenStandings struct {
	Distance  int                 `json:"distance"`
	Standings []schaatsenStanding `json:"standings"`
}
