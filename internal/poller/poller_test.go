package poller

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lapedge/lapedge/internal/domain/model"
	"github.com/lapedge/lapedge/internal/domain/predict"
	"github.com/lapedge/lapedge/pkg/logger"
)

func floatPtr(v float64) *float64 { return &v }

func liveView() model.RaceView {
	return model.RaceView{
		Status: model.StatusRacing,
		CurrentRace: &model.CurrentRace{
			PairNumber: 3,
			Status:     model.StatusRacing,
			Distance:   1500,
			Skaters: []model.Skater{{
				ID:      "sk-1",
				Name:    "Ire Vos",
				Country: "NED",
				Lane:    "inner",
				Laps: []model.LapSplit{
					{Lap: 1, Time: 31.0, Cumulative: 31.0, Pace: 31.0},
					{Lap: 2, Time: 29.0, Cumulative: 60.0, Pace: 30.0},
				},
				TotalLaps:         3.75,
				CompletedLaps:     2,
				CurrentCumulative: 60.0,
			}},
		},
		Distance:  &model.DistanceInfo{Laps: 3.75, InnerStart: true, Name: "1500m"},
		Timestamp: time.Now().UnixMilli(),
	}
}

func standingsView() model.StandingsView {
	return model.StandingsView{
		Distance: 1500,
		Standings: []model.StandingEntry{
			{Rank: 1, Name: "Eva Lang", Country: "NED", Time: 114.5, TimeFormatted: "1:54.50"},
			{Rank: 2, Name: "Mia Kim", Country: "KOR", Time: 115.3, TimeFormatted: "1:55.30", TimeBehind: floatPtr(0.8)},
		},
	}
}

// pollServer serves canned live data. The live handler can be swapped
// per test.
func pollServer(t *testing.T, live http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/live/", live)
	mux.HandleFunc("/standings/", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(standingsView())
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type collector struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (c *collector) add(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps = append(c.snaps, s)
}

func (c *collector) all() []Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Snapshot(nil), c.snaps...)
}

func TestPollerSession(t *testing.T) {
	_ = logger.Init()

	Convey("Given a live race behind the API", t, func() {
		var gotGender atomic.Value
		srv := pollServer(t, func(w http.ResponseWriter, r *http.Request) {
			gotGender.Store(r.URL.Query().Get("gender"))
			_ = json.NewEncoder(w).Encode(liveView())
		})

		Convey("When the poller runs a fixed number of cycles", func() {
			col := &collector{}
			p := New(Config{
				BaseURL:  srv.URL,
				EventID:  "wc-test",
				Distance: 1500,
				Interval: 25 * time.Millisecond,
				Timeout:  time.Second,
				Cycles:   3,
			}, col.add)

			So(p.Run(context.Background()), ShouldBeNil)

			Convey("Then every cycle yields a merged snapshot", func() {
				snaps := col.all()
				So(snaps, ShouldHaveLength, 3)
				So(snaps[0].Race.Status, ShouldEqual, model.StatusRacing)
				So(snaps[0].Race.CurrentRace.PairNumber, ShouldEqual, 3)
				So(snaps[0].Standings.Standings, ShouldHaveLength, 2)
				So(gotGender.Load(), ShouldEqual, "women")
			})

			Convey("Then skaters mid-race carry a finish projection", func() {
				snaps := col.all()
				pred, ok := snaps[0].Predictions["sk-1"]
				So(ok, ShouldBeTrue)
				So(pred.Method, ShouldEqual, predict.MethodProfile)
				So(pred.Time, ShouldBeGreaterThan, 60.0)
				So(pred.Margin, ShouldBeGreaterThan, 0)
			})

			Convey("Then the session statistics add up", func() {
				stats := p.Stats()
				So(stats.CyclesCompleted, ShouldEqual, 3)
				So(stats.CyclesAborted, ShouldEqual, 0)
				So(stats.RequestsFailed, ShouldEqual, 0)
			})
		})
	})
}

func TestPollerAbortsStaleCycle(t *testing.T) {
	_ = logger.Init()

	Convey("Given an upstream whose first response hangs", t, func() {
		var calls atomic.Int32
		srv := pollServer(t, func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) == 1 {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
				return
			}
			_ = json.NewEncoder(w).Encode(liveView())
		})

		Convey("When the next cycle starts before the first finishes", func() {
			col := &collector{}
			p := New(Config{
				BaseURL:  srv.URL,
				EventID:  "wc-test",
				Distance: 1500,
				Interval: 30 * time.Millisecond,
				Timeout:  5 * time.Second,
				Cycles:   2,
			}, col.add)

			So(p.Run(context.Background()), ShouldBeNil)

			Convey("Then the stale cycle is aborted, not delivered", func() {
				So(col.all(), ShouldHaveLength, 1)
				stats := p.Stats()
				So(stats.CyclesAborted, ShouldEqual, 1)
				So(stats.CyclesCompleted, ShouldEqual, 1)
			})
		})
	})
}

func TestPollerToleratesStandingsFailure(t *testing.T) {
	_ = logger.Init()

	Convey("Given an API whose standings endpoint fails", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
		mux.HandleFunc("/live/", func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(liveView())
		})
		mux.HandleFunc("/standings/", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		Convey("When a cycle runs", func() {
			col := &collector{}
			p := New(Config{
				BaseURL:  srv.URL,
				EventID:  "wc-test",
				Distance: 1500,
				Interval: 25 * time.Millisecond,
				Timeout:  time.Second,
				Cycles:   1,
			}, col.add)

			So(p.Run(context.Background()), ShouldBeNil)

			Convey("Then the race view is still delivered", func() {
				snaps := col.all()
				So(snaps, ShouldHaveLength, 1)
				So(snaps[0].Race.CurrentRace, ShouldNotBeNil)
				So(snaps[0].Standings.Standings, ShouldBeEmpty)
			})
		})
	})
}

func TestPollerValidation(t *testing.T) {
	_ = logger.Init()

	Convey("Given incomplete configuration", t, func() {
		Convey("A missing event or distance is rejected", func() {
			p := New(Config{BaseURL: "http://localhost:0"}, func(Snapshot) {})
			So(p.Run(context.Background()), ShouldEqual, ErrMissingTarget)
		})

		Convey("An unreachable service fails the health check", func() {
			p := New(Config{
				BaseURL:  "http://127.0.0.1:1",
				EventID:  "wc-test",
				Distance: 1500,
				Timeout:  100 * time.Millisecond,
			}, func(Snapshot) {})
			So(p.Run(context.Background()), ShouldNotBeNil)
		})
	})
}
