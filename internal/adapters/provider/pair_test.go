package provider

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lapedge/lapedge/internal/domain/model"
)

func fptr(v float64) *float64 { return &v }

func lapsOf(times ...float64) []model.LapRecord {
	laps := make([]model.LapRecord, len(times))
	cum := 0.0
	for i, t := range times {
		cum += t
		laps[i] = model.LapRecord{Time: t, Passage: cum}
	}
	return laps
}

func TestTotalLaps(t *testing.T) {
	Convey("Given the lap count resolution", t, func() {
		Convey("Then the per-distance minimum wins over under-reporting", func() {
			So(TotalLaps(2, 10000), ShouldEqual, 25)
			So(TotalLaps(2, 5000), ShouldEqual, 12)
			So(TotalLaps(0, 3000), ShouldEqual, 7)
			So(TotalLaps(1, 1500), ShouldEqual, 4)
		})

		Convey("Then a larger reported count wins over the table", func() {
			So(TotalLaps(30, 10000), ShouldEqual, 30)
			So(TotalLaps(8, 3000), ShouldEqual, 8)
		})

		Convey("Then the absolute floor applies to short distances", func() {
			So(TotalLaps(1, 500), ShouldEqual, 3)
			So(TotalLaps(2, 1000), ShouldEqual, 3)
			So(TotalLaps(0, 999), ShouldEqual, 3)
		})
	})
}

func TestSelectCurrentPair(t *testing.T) {
	Convey("Given a mix of finished and racing results", t, func() {
		results := []model.Result{
			{Name: "Finisher A", StartNumber: 3, FinalTime: fptr(106.2), Laps: lapsOf(26, 27, 26.5, 26.7)},
			{Name: "Finisher B", StartNumber: 3, FinalTime: fptr(107.0), Laps: lapsOf(26.5, 27, 26.8, 26.7)},
			{Name: "Racer A", StartNumber: 5, Laps: lapsOf(26.1, 27.2)},
			{Name: "Racer B", StartNumber: 5, Laps: lapsOf(26.3, 27.0)},
			{Name: "Stalled", StartNumber: 4, Laps: lapsOf(26.9)},
		}

		Convey("When selecting with totalLaps 4", func() {
			pair, pairNo := SelectCurrentPair(results, 4)

			Convey("Then the active heat with the highest start number wins", func() {
				So(pair, ShouldHaveLength, 2)
				So(pair[0].Name, ShouldEqual, "Racer A")
				So(pair[1].Name, ShouldEqual, "Racer B")
				So(pairNo, ShouldEqual, 3)
			})
		})
	})

	Convey("Given only finished results", t, func() {
		results := []model.Result{
			{Name: "Early", StartNumber: 1, FinalTime: fptr(35.1), Laps: lapsOf(10, 12, 13.1)},
			{Name: "Late A", StartNumber: 6, FinalTime: fptr(34.6), Laps: lapsOf(10, 11.5, 13.1)},
			{Name: "Late B", StartNumber: 6, FinalTime: fptr(34.9), Laps: lapsOf(10, 11.8, 13.1)},
		}

		pair, pairNo := SelectCurrentPair(results, 3)

		Convey("Then the most recently completed heat is shown", func() {
			So(pair, ShouldHaveLength, 2)
			So(pair[0].Name, ShouldEqual, "Late A")
			So(pairNo, ShouldEqual, 3)
		})
	})

	Convey("Given results where nobody has started", t, func() {
		results := []model.Result{
			{Name: "Third", StartNumber: 3},
			{Name: "First", StartNumber: 1},
			{Name: "Second", StartNumber: 2},
		}

		pair, pairNo := SelectCurrentPair(results, 3)

		Convey("Then the two lowest start numbers are pair 1", func() {
			So(pair, ShouldHaveLength, 2)
			So(pair[0].Name, ShouldEqual, "First")
			So(pair[1].Name, ShouldEqual, "Second")
			So(pairNo, ShouldEqual, 1)
		})
	})

	Convey("Given a skater with all laps but no final time", t, func() {
		// DNF that shows every split: not active, not finished
		results := []model.Result{
			{Name: "DNF", StartNumber: 4, Laps: lapsOf(26, 27, 28)},
			{Name: "Done", StartNumber: 2, FinalTime: fptr(81.0), Laps: lapsOf(26, 27, 28)},
		}

		pair, _ := SelectCurrentPair(results, 3)

		Convey("Then the finished heat wins over the lapped-out one", func() {
			So(pair, ShouldHaveLength, 1)
			So(pair[0].Name, ShouldEqual, "Done")
		})
	})

	Convey("Given no results", t, func() {
		pair, pairNo := SelectCurrentPair(nil, 3)

		Convey("Then there is no pair", func() {
			So(pair, ShouldBeEmpty)
			So(pairNo, ShouldEqual, 1)
		})
	})
}

func TestLeaderAndTopThree(t *testing.T) {
	Convey("Given ranked results", t, func() {
		results := []model.Result{
			{Name: "Bronze", Country: "NOR", Rank: 3, FinalTime: fptr(35.2), Laps: lapsOf(10.1, 12.0, 13.1)},
			{Name: "Gold", Country: "NED", Rank: 1, FinalTime: fptr(34.5), Laps: lapsOf(9.8, 11.8, 12.9)},
			{Name: "Silver", Country: "USA", Rank: 2, FinalTime: fptr(34.9), Laps: lapsOf(9.9, 11.9, 13.1)},
			{Name: "Fourth", Country: "JPN", Rank: 4, FinalTime: fptr(35.5), Laps: lapsOf(10.2, 12.1, 13.2)},
			{Name: "NoLaps", Country: "GER", Rank: 2},
		}

		Convey("When deriving the leader", func() {
			leader := LeaderOf(results)

			Convey("Then rank 1 becomes the reference line", func() {
				So(leader, ShouldNotBeNil)
				So(leader.Name, ShouldEqual, "Gold")
				So(*leader.Time, ShouldEqual, 34.5)
				So(leader.PassageTimes, ShouldHaveLength, 3)
				So(leader.PassageTimes[2], ShouldAlmostEqual, 34.5, 0.001)
			})
		})

		Convey("When deriving the top three", func() {
			top := TopThree(results)

			Convey("Then only ranked results with laps appear, rank ascending", func() {
				So(top, ShouldHaveLength, 3)
				So(top[0].Name, ShouldEqual, "Gold")
				So(top[1].Name, ShouldEqual, "Silver")
				So(top[2].Name, ShouldEqual, "Bronze")
				So(top[1].LapTimes, ShouldHaveLength, 3)
			})
		})
	})

	Convey("Given no rank-1 result", t, func() {
		So(LeaderOf([]model.Result{{Name: "X", Rank: 2}}), ShouldBeNil)
	})
}

func TestReskates(t *testing.T) {
	Convey("Given results with reskate grants", t, func() {
		results := []model.Result{
			{Name: "A", Reskate: true},
			{Name: "B"},
			{Name: "A", Reskate: true}, // second run, same skater
			{Name: "C", Reskate: true},
		}

		Convey("Then names are deduplicated in order", func() {
			So(Reskates(results), ShouldResemble, []string{"A", "C"})
		})
	})
}
