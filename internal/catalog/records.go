package catalog

import "github.com/lapedge/lapedge/internal/domain/model"

// RecordMark is a single reference time: who skated it, where, when.
type RecordMark struct {
	Time    float64 `json:"time"`
	Holder  string  `json:"holder"`
	Country string  `json:"country"`
	Date    string  `json:"date,omitempty"`
	Venue   string  `json:"venue,omitempty"`
}

// DistanceRecords bundles the reference times shown next to a live
// race: world record, Olympic record and the record of the event's own
// track when known.
type DistanceRecords struct {
	Distance      int         `json:"distance"`
	Gender        string      `json:"gender"`
	WorldRecord   *RecordMark `json:"worldRecord,omitempty"`
	OlympicRecord *RecordMark `json:"olympicRecord,omitempty"`
	TrackRecord   *RecordMark `json:"trackRecord,omitempty"`
}

type recordRow struct {
	world   *RecordMark
	olympic *RecordMark
	tracks  map[string]*RecordMark
}

// Times in seconds. Track records keyed by venue; new venues (milano)
// simply have no entry yet.
var recordTables = map[model.Gender]map[int]recordRow{
	model.GenderMen: {
		500: {
			world:   &RecordMark{Time: 33.61, Holder: "Viktor Mushtakov", Country: "RUS", Date: "2024-03-09", Venue: "Calgary"},
			olympic: &RecordMark{Time: 34.32, Holder: "Havard Lorentzen", Country: "NOR", Date: "2018-02-19", Venue: "Pyeongchang"},
			tracks: map[string]*RecordMark{
				"thialf":  {Time: 34.00, Holder: "Pavel Kulizhnikov", Country: "RUS", Date: "2020-02-16"},
				"calgary": {Time: 33.61, Holder: "Viktor Mushtakov", Country: "RUS", Date: "2024-03-09"},
			},
		},
		1000: {
			world:   &RecordMark{Time: 65.36, Holder: "Pavel Kulizhnikov", Country: "RUS", Date: "2020-02-15", Venue: "Salt Lake City"},
			olympic: &RecordMark{Time: 68.31, Holder: "Gerard van Velde", Country: "NED", Date: "2002-02-16", Venue: "Salt Lake City"},
			tracks: map[string]*RecordMark{
				"thialf":  {Time: 67.68, Holder: "Kjeld Nuis", Country: "NED", Date: "2023-12-10"},
				"calgary": {Time: 66.09, Holder: "Pavel Kulizhnikov", Country: "RUS", Date: "2019-12-08"},
			},
		},
		1500: {
			world:   &RecordMark{Time: 100.07, Holder: "Jordan Stolz", Country: "USA", Date: "2024-03-02", Venue: "Calgary"},
			olympic: &RecordMark{Time: 102.98, Holder: "Kjeld Nuis", Country: "NED", Date: "2022-02-08", Venue: "Beijing"},
			tracks: map[string]*RecordMark{
				"thialf":  {Time: 102.32, Holder: "Thomas Krol", Country: "NED", Date: "2024-12-14"},
				"calgary": {Time: 100.07, Holder: "Jordan Stolz", Country: "USA", Date: "2024-03-02"},
			},
		},
		3000: {
			world:   &RecordMark{Time: 216.64, Holder: "Nils van der Poel", Country: "SWE", Date: "2022-02-06", Venue: "Beijing"},
			olympic: &RecordMark{Time: 216.64, Holder: "Nils van der Poel", Country: "SWE", Date: "2022-02-06", Venue: "Beijing"},
			tracks: map[string]*RecordMark{
				"thialf":  {Time: 222.38, Holder: "Patrick Roest", Country: "NED", Date: "2023-02-12"},
				"calgary": {Time: 219.84, Holder: "Nils van der Poel", Country: "SWE", Date: "2022-12-11"},
			},
		},
		5000: {
			world:   &RecordMark{Time: 359.95, Holder: "Nils van der Poel", Country: "SWE", Date: "2022-02-06", Venue: "Beijing"},
			olympic: &RecordMark{Time: 359.95, Holder: "Nils van der Poel", Country: "SWE", Date: "2022-02-06", Venue: "Beijing"},
			tracks: map[string]*RecordMark{
				"thialf":  {Time: 367.83, Holder: "Patrick Roest", Country: "NED", Date: "2023-02-12"},
				"calgary": {Time: 362.82, Holder: "Nils van der Poel", Country: "SWE", Date: "2022-12-11"},
			},
		},
		10000: {
			world:   &RecordMark{Time: 731.76, Holder: "Nils van der Poel", Country: "SWE", Date: "2022-02-11", Venue: "Beijing"},
			olympic: &RecordMark{Time: 731.76, Holder: "Nils van der Poel", Country: "SWE", Date: "2022-02-11", Venue: "Beijing"},
			tracks: map[string]*RecordMark{
				"thialf": {Time: 757.75, Holder: "Jorrit Bergsma", Country: "NED", Date: "2020-01-26"},
			},
		},
	},
	model.GenderWomen: {
		500: {
			world:   &RecordMark{Time: 36.09, Holder: "Femke Kok", Country: "NED", Date: "2025-01-25", Venue: "Calgary"},
			olympic: &RecordMark{Time: 36.94, Holder: "Erin Jackson", Country: "USA", Date: "2022-02-13", Venue: "Beijing"},
			tracks: map[string]*RecordMark{
				"thialf":  {Time: 36.81, Holder: "Femke Kok", Country: "NED", Date: "2024-12-14"},
				"calgary": {Time: 36.09, Holder: "Femke Kok", Country: "NED", Date: "2025-01-25"},
			},
		},
		1000: {
			world:   &RecordMark{Time: 71.84, Holder: "Jutta Leerdam", Country: "NED", Date: "2023-12-09", Venue: "Salt Lake City"},
			olympic: &RecordMark{Time: 73.83, Holder: "Miho Takagi", Country: "JPN", Date: "2022-02-17", Venue: "Beijing"},
			tracks: map[string]*RecordMark{
				"thialf":  {Time: 73.33, Holder: "Jutta Leerdam", Country: "NED", Date: "2024-12-15"},
				"calgary": {Time: 72.18, Holder: "Brittany Bowe", Country: "USA", Date: "2019-12-07"},
			},
		},
		1500: {
			world:   &RecordMark{Time: 109.83, Holder: "Miho Takagi", Country: "JPN", Date: "2024-03-01", Venue: "Calgary"},
			olympic: &RecordMark{Time: 113.28, Holder: "Ireen Wust", Country: "NED", Date: "2022-02-07", Venue: "Beijing"},
			tracks: map[string]*RecordMark{
				"thialf":  {Time: 112.97, Holder: "Joy Beune", Country: "NED", Date: "2024-12-13"},
				"calgary": {Time: 109.83, Holder: "Miho Takagi", Country: "JPN", Date: "2024-03-01"},
			},
		},
		3000: {
			world:   &RecordMark{Time: 233.52, Holder: "Joy Beune", Country: "NED", Date: "2025-02-08", Venue: "Calgary"},
			olympic: &RecordMark{Time: 236.93, Holder: "Irene Schouten", Country: "NED", Date: "2022-02-05", Venue: "Beijing"},
			tracks: map[string]*RecordMark{
				"thialf":  {Time: 236.80, Holder: "Joy Beune", Country: "NED", Date: "2025-03-09"},
				"calgary": {Time: 233.52, Holder: "Joy Beune", Country: "NED", Date: "2025-02-08"},
			},
		},
		5000: {
			world:   &RecordMark{Time: 399.70, Holder: "Joy Beune", Country: "NED", Date: "2025-02-09", Venue: "Calgary"},
			olympic: &RecordMark{Time: 403.64, Holder: "Irene Schouten", Country: "NED", Date: "2022-02-10", Venue: "Beijing"},
			tracks: map[string]*RecordMark{
				"thialf": {Time: 406.30, Holder: "Joy Beune", Country: "NED", Date: "2025-03-09"},
			},
		},
	},
}

// RecordsFor looks up reference times for a distance and gender,
// resolving the track record through the event's venue key. Returns
// false when no table exists for the distance.
func (c *Catalog) RecordsFor(eventID string, distance int, gender model.Gender) (DistanceRecords, bool) {
	rows, ok := recordTables[gender]
	if !ok {
		return DistanceRecords{}, false
	}
	row, ok := rows[distance]
	if !ok {
		return DistanceRecords{}, false
	}

	out := DistanceRecords{
		Distance:      distance,
		Gender:        string(gender),
		WorldRecord:   row.world,
		OlympicRecord: row.olympic,
	}
	if ev, ok := c.Event(eventID); ok && ev.Venue != "" {
		out.TrackRecord = row.tracks[ev.Venue]
	}
	return out, true
}
