package predict_test

import (
	"testing"

	"github.com/lapedge/lapedge/internal/domain/model"
	"github.com/lapedge/lapedge/internal/domain/predict"
	. "github.com/smartystreets/goconvey/convey"
)

func floatPtr(v float64) *float64 { return &v }

func skaterWithLaps(times []float64, totalLaps float64, finished bool) model.Skater {
	s := model.Skater{TotalLaps: totalLaps, IsFinished: finished}
	var cum float64
	for i, t := range times {
		cum += t
		s.Laps = append(s.Laps, model.LapSplit{Lap: i + 1, Time: t, Cumulative: cum, Pace: cum / float64(i+1)})
		s.PassageTimes = append(s.PassageTimes, cum)
	}
	s.CompletedLaps = len(times)
	s.CurrentCumulative = cum
	return s
}

func standings(times ...float64) []model.StandingEntry {
	out := make([]model.StandingEntry, len(times))
	for i, t := range times {
		out[i] = model.StandingEntry{Rank: i + 1, Time: t}
	}
	return out
}

func TestVirtualRank(t *testing.T) {
	Convey("Given a standings table of finished times", t, func() {
		table := standings(103.2, 104.0, 105.5)

		Convey("When a finished skater slots between entries", func() {
			s := skaterWithLaps([]float64{25, 26, 26, 26.5}, 4, true) // 103.5
			rank, ok := predict.VirtualRank(s, table)
			So(ok, ShouldBeTrue)
			So(rank, ShouldEqual, 2)
		})

		Convey("When a finished skater beats everyone", func() {
			s := skaterWithLaps([]float64{25, 25, 25, 25}, 4, true) // 100.0
			rank, ok := predict.VirtualRank(s, table)
			So(ok, ShouldBeTrue)
			So(rank, ShouldEqual, 1)
		})

		Convey("When an in-progress skater is on pace for third", func() {
			// 2 of 4 laps at 26.2 projects to 104.8.
			s := skaterWithLaps([]float64{26.2, 26.2}, 4, false)
			rank, ok := predict.VirtualRank(s, table)
			So(ok, ShouldBeTrue)
			So(rank, ShouldEqual, 3)
		})

		Convey("When the skater has no cumulative time yet", func() {
			_, ok := predict.VirtualRank(model.Skater{}, table)
			So(ok, ShouldBeFalse)
		})

		Convey("When the standings are empty", func() {
			s := skaterWithLaps([]float64{26.2, 26.2}, 4, false)
			_, ok := predict.VirtualRank(s, nil)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestFinishTimeFinished(t *testing.T) {
	Convey("Given a finished skater", t, func() {
		s := skaterWithLaps([]float64{25, 26, 26, 27}, 4, true)
		s.Rank = 2

		Convey("Then the prediction is the actual time with zero margin", func() {
			p := predict.FinishTime(s, 1500, nil, nil, nil)
			So(p, ShouldNotBeNil)
			So(p.Method, ShouldEqual, predict.MethodActual)
			So(p.Time, ShouldAlmostEqual, 104.0, 0.0001)
			So(p.Margin, ShouldEqual, 0)
			So(p.ProjectedRank, ShouldEqual, 2)
		})
	})
}

func TestFinishTimeFromLeader(t *testing.T) {
	Convey("Given a leader with a full passage series", t, func() {
		leader := &model.Leader{
			Name:         "Leader",
			Time:         floatPtr(104.0),
			PassageTimes: []float64{25, 51, 77.5, 104.0},
		}

		Convey("When the skater holds a steady gap", func() {
			// Constant +0.5 behind at every passage: trend is zero,
			// so the projection is leader time + current gap.
			s := skaterWithLaps([]float64{25.5, 26, 26.5}, 4, false)
			p := predict.FinishTime(s, 1500, &model.DistanceInfo{Laps: 4}, leader, nil)
			So(p, ShouldNotBeNil)
			So(p.Method, ShouldEqual, predict.MethodLeader)
			So(p.Time, ShouldAlmostEqual, 104.5, 0.0001)
			So(p.Margin, ShouldBeGreaterThanOrEqualTo, 0.5)
		})

		Convey("When the skater is losing time each lap", func() {
			// Gaps 0.5, 1.0, 1.5: trend +0.5/lap, dampened to +0.4.
			s := skaterWithLaps([]float64{25.5, 26.5, 27.0}, 4, false)
			p := predict.FinishTime(s, 1500, &model.DistanceInfo{Laps: 4}, leader, nil)
			So(p, ShouldNotBeNil)
			So(p.Method, ShouldEqual, predict.MethodLeader)
			So(p.Time, ShouldAlmostEqual, 104.0+1.5+0.4, 0.0001)
		})

		Convey("When standings are supplied the projected rank counts faster entries", func() {
			s := skaterWithLaps([]float64{25.5, 26, 26.5}, 4, false)
			table := standings(103.0, 104.2, 106.0)
			p := predict.FinishTime(s, 1500, &model.DistanceInfo{Laps: 4}, leader, table)
			So(p, ShouldNotBeNil)
			// Projects 104.5: two entries are faster.
			So(p.ProjectedRank, ShouldEqual, 3)
		})
	})
}

func TestFinishTimeFromProfile(t *testing.T) {
	Convey("Given no usable leader reference", t, func() {
		Convey("When several laps are down the fatigue profile extrapolates", func() {
			s := skaterWithLaps([]float64{24.0, 29.0, 29.4}, 8, false)
			p := predict.FinishTime(s, 3000, &model.DistanceInfo{Laps: 8}, nil, nil)
			So(p, ShouldNotBeNil)
			So(p.Method, ShouldEqual, predict.MethodProfile)
			// Five laps remain at roughly last-lap pace plus fatigue.
			So(p.Time, ShouldBeGreaterThan, s.CurrentCumulative+5*29.4)
			So(p.Time, ShouldBeLessThan, s.CurrentCumulative+5*29.4*1.05)
			So(p.Margin, ShouldBeGreaterThanOrEqualTo, 0.5)
		})

		Convey("When only the opening lap is down a rough multiplier applies", func() {
			s := skaterWithLaps([]float64{24.0}, 8, false)
			p := predict.FinishTime(s, 3000, &model.DistanceInfo{Laps: 8}, nil, nil)
			So(p, ShouldNotBeNil)
			So(p.Method, ShouldEqual, predict.MethodEstimate)
			So(p.Time, ShouldAlmostEqual, 24.0+24.0*1.55*7*1.02, 0.0001)
		})

		Convey("When the skater has no laps at all", func() {
			So(predict.FinishTime(model.Skater{}, 3000, nil, nil, nil), ShouldBeNil)
		})
	})
}

func TestSchedules(t *testing.T) {
	Convey("Given a target time on a 1500m", t, func() {
		schedule := predict.EvenPaceSchedule(104.0, 1500)

		Convey("Then the schedule splits the time over the passage count", func() {
			So(len(schedule), ShouldEqual, 4)
			So(schedule[0].Time, ShouldAlmostEqual, 26.0, 0.0001)
			So(schedule[3].Cumulative, ShouldAlmostEqual, 104.0, 0.0001)
		})

		Convey("And a skater ahead of schedule shows a negative diff", func() {
			s := skaterWithLaps([]float64{25.0, 25.5}, 4, false)
			diffs := predict.CompareToSchedule(s, schedule)
			So(len(diffs), ShouldEqual, 2)
			So(diffs[0].Diff, ShouldNotBeNil)
			So(*diffs[0].Diff, ShouldAlmostEqual, -1.0, 0.0001)
			So(*diffs[1].Diff, ShouldAlmostEqual, -1.5, 0.0001)
		})
	})
}
