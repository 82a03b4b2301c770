package service

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lapedge/lapedge/internal/domain/model"
)

func allroundStandings() map[int][]model.StandingEntry {
	return map[int][]model.StandingEntry{
		500: {
			{Rank: 1, SkaterID: "sk-1", Name: "Ire Vos", Country: "NED", Time: 39.0},
			{Rank: 2, SkaterID: "sk-2", Name: "Ann Berg", Country: "NOR", Time: 40.0},
			{Rank: 3, SkaterID: "sk-3", Name: "Zoe Pars", Country: "BEL", Time: 41.0},
		},
		3000: {
			{Rank: 1, SkaterID: "sk-2", Name: "Ann Berg", Country: "NOR", Time: 240.0},
			{Rank: 2, SkaterID: "sk-1", Name: "Ire Vos", Country: "NED", Time: 249.0},
			{SkaterID: "sk-3", Name: "Zoe Pars", Country: "BEL", DNF: true},
		},
	}
}

func TestMeerkampStandings(t *testing.T) {
	ctx := context.Background()

	Convey("Given an all-around event with two distances raced", t, func() {
		adapter := &fakeAdapter{
			race:      racingView([]float64{25.0}),
			standings: allroundStandings(),
		}
		svc := startService(t, adapter)

		standings, err := svc.MeerkampStandings(ctx, "nk-allround-test", model.GenderWomen, 0)

		Convey("Then cumulative Samalog points rank the field", func() {
			So(err, ShouldBeNil)
			So(standings.EventType, ShouldEqual, "allround")
			So(standings.AllDistances, ShouldResemble, []int{500, 3000, 1500, 5000})
			So(standings.Standings, ShouldHaveLength, 3)

			// Vos: 39.0/0.5 + 249.0/3 = 161.0; Berg: 40.0/0.5 + 240.0/3 = 160.0
			first := standings.Standings[0]
			So(first.Name, ShouldEqual, "Ann Berg")
			So(first.Rank, ShouldEqual, 1)
			So(first.PointsVirtual, ShouldAlmostEqual, 160.0, 0.001)
			So(first.GapToFirst, ShouldAlmostEqual, 0, 0.001)

			second := standings.Standings[1]
			So(second.Name, ShouldEqual, "Ire Vos")
			So(second.PointsVirtual, ShouldAlmostEqual, 161.0, 0.001)
			So(second.GapToFirst, ShouldAlmostEqual, 1.0, 0.001)
			So(second.Distances, ShouldHaveLength, 2)
			So(second.RemainingDistances, ShouldResemble, []int{1500, 5000})
		})

		Convey("Then the non-finisher lists last with a DNF flag", func() {
			last := standings.Standings[2]
			So(last.Name, ShouldEqual, "Zoe Pars")
			So(last.DNF, ShouldBeTrue)
			So(last.Rank, ShouldEqual, 3)
			So(last.Distances[1].Status, ShouldEqual, "DNF")
			// The 500m still counts.
			So(last.PointsFinished, ShouldAlmostEqual, 82.0, 0.001)
		})

		Convey("Then the current distance is the first without results", func() {
			So(standings.CurrentDistance, ShouldNotBeNil)
			So(*standings.CurrentDistance, ShouldEqual, 1500)
			So(standings.CurrentRaceStatus, ShouldEqual, model.StatusRacing)
		})
	})

	Convey("Given a truncation after the 500m", t, func() {
		adapter := &fakeAdapter{
			race:      racingView([]float64{25.0}),
			standings: allroundStandings(),
		}
		svc := startService(t, adapter)

		standings, err := svc.MeerkampStandings(ctx, "nk-allround-test", model.GenderWomen, 500)

		Convey("Then only the opening distance scores", func() {
			So(err, ShouldBeNil)
			So(standings.CompletedDistances, ShouldResemble, []int{500})
			So(standings.Standings[0].Name, ShouldEqual, "Ire Vos")
			So(standings.Standings[0].PointsVirtual, ShouldAlmostEqual, 78.0, 0.001)
			So(standings.Standings[0].RemainingDistances, ShouldResemble, []int{3000, 1500, 5000})
		})
	})

	Convey("Given an event with every distance raced", t, func() {
		full := allroundStandings()
		full[1500] = []model.StandingEntry{{Rank: 1, SkaterID: "sk-1", Name: "Ire Vos", Country: "NED", Time: 117.0}}
		full[5000] = []model.StandingEntry{{Rank: 1, SkaterID: "sk-1", Name: "Ire Vos", Country: "NED", Time: 420.0}}
		adapter := &fakeAdapter{standings: full}
		svc := startService(t, adapter)

		standings, err := svc.MeerkampStandings(ctx, "nk-allround-test", model.GenderWomen, 0)

		Convey("Then the event reports completed", func() {
			So(err, ShouldBeNil)
			So(standings.CurrentDistance, ShouldBeNil)
			So(standings.CurrentRaceStatus, ShouldEqual, "completed")
		})
	})

	Convey("Given repeated lookups inside the TTL", t, func() {
		adapter := &fakeAdapter{
			race:      racingView([]float64{25.0}),
			standings: allroundStandings(),
		}
		svc := startService(t, adapter)

		for i := 0; i < 3; i++ {
			_, err := svc.MeerkampStandings(ctx, "nk-allround-test", model.GenderWomen, 0)
			So(err, ShouldBeNil)
		}

		Convey("Then each distance is fetched once", func() {
			So(adapter.standingsCalls.Load(), ShouldEqual, 4)
		})
	})

	Convey("Given a distances-only event", t, func() {
		svc := startService(t, &fakeAdapter{})

		_, err := svc.MeerkampStandings(ctx, "wc-test", model.GenderWomen, 0)

		Convey("Then the request is rejected", func() {
			So(errors.Is(err, ErrNotMeerkamp), ShouldBeTrue)
		})
	})

	Convey("Given an unknown event", t, func() {
		svc := startService(t, &fakeAdapter{})

		_, err := svc.MeerkampStandings(ctx, "missing", model.GenderWomen, 0)

		Convey("Then the request is rejected", func() {
			So(errors.Is(err, ErrUnknownEvent), ShouldBeTrue)
		})
	})
}
