package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lapedge/lapedge/internal/domain/model"
	"github.com/lapedge/lapedge/pkg/logger"
)

func testEvent() model.Event {
	return model.Event{
		ID:         "wc-test-2025",
		Name:       "World Cup Test",
		Location:   "Thialf, Heerenveen",
		StartDate:  "2025-06-01",
		EndDate:    "2025-06-03",
		Source:     "isuresults",
		ISUEventID: "isu-123",
	}
}

// midEvent is a wall clock inside the test event's window.
func midEvent() time.Time {
	loc, _ := time.LoadLocation("Europe/Amsterdam")
	return time.Date(2025, 6, 2, 12, 0, 0, 0, loc)
}

func newISUForTest(t *testing.T, handler http.Handler, opts ...ISUOption) (*ISUAdapter, *httptest.Server) {
	t.Helper()
	_ = logger.Init()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	all := append([]ISUOption{
		WithISUBaseURL(srv.URL),
		WithISUClock(midEvent),
		WithISURetry(RetryPolicy{Attempts: 3, Backoff: time.Millisecond}),
	}, opts...)
	return NewISU(all...), srv
}

func TestISUEventWindowGating(t *testing.T) {
	Convey("Given an adapter whose upstream must never be called", t, func() {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected upstream call: %s", r.URL.Path)
		})
		adapter, _ := newISUForTest(t, handler)
		ctx := context.Background()

		Convey("When the event has not started", func() {
			future := testEvent()
			future.StartDate = "2025-07-10"
			future.EndDate = "2025-07-12"

			view, err := adapter.FetchRaceData(ctx, future, 1500, model.GenderWomen)

			Convey("Then it reports not_started with a Dutch opening line", func() {
				So(err, ShouldBeNil)
				So(view.Status, ShouldEqual, model.StatusNotStarted)
				So(view.Message, ShouldContainSubstring, "begint op")
				So(view.Message, ShouldContainSubstring, "juli")
				So(view.Event, ShouldNotBeNil)
				So(view.Event.Timezone, ShouldEqual, "Europe/Amsterdam")
				So(view.CurrentRace, ShouldBeNil)
			})
		})

		Convey("When the event window has closed", func() {
			past := testEvent()
			past.StartDate = "2025-05-01"
			past.EndDate = "2025-05-03"

			view, err := adapter.FetchRaceData(ctx, past, 1500, model.GenderWomen)

			Convey("Then it reports ended", func() {
				So(err, ShouldBeNil)
				So(view.Status, ShouldEqual, model.StatusEnded)
				So(view.Message, ShouldEqual, "World Cup Test is afgelopen")
			})
		})

		Convey("When the event end was yesterday", func() {
			// End extended by one day: still inside the window, so the
			// upstream would be contacted; use an id-less event to stop
			// at the gate after the window check.
			grace := testEvent()
			grace.StartDate = "2025-05-30"
			grace.EndDate = "2025-06-01"
			grace.ISUEventID = ""

			view, err := adapter.FetchRaceData(ctx, grace, 1500, model.GenderWomen)

			Convey("Then it is not ended yet", func() {
				So(err, ShouldBeNil)
				So(view.Status, ShouldEqual, model.StatusWaiting)
			})
		})
	})
}

func TestISUWaitingFallbacks(t *testing.T) {
	ctx := context.Background()

	Convey("Given an upstream that serves errors", t, func() {
		var calls atomic.Int32
		handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		})
		adapter, _ := newISUForTest(t, handler)

		Convey("When fetching race data", func() {
			view, err := adapter.FetchRaceData(ctx, testEvent(), 1500, model.GenderWomen)

			Convey("Then it degrades to waiting with a live link", func() {
				So(err, ShouldBeNil)
				So(view.Status, ShouldEqual, model.StatusWaiting)
				So(view.Message, ShouldEqual, "Wachten op live data...")
				So(view.LiveURL, ShouldEqual, "https://live.isuresults.eu/events/isu-123")
			})

			Convey("And the status answer is not retried", func() {
				So(calls.Load(), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a competition list without the requested distance", t, func() {
		handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `[{"title": "500m Dames", "category": "F", "distance": {"distance": 500, "lapCount": 1}}]`)
		})
		adapter, _ := newISUForTest(t, handler)

		view, err := adapter.FetchRaceData(ctx, testEvent(), 1500, model.GenderWomen)

		Convey("Then it waits", func() {
			So(err, ShouldBeNil)
			So(view.Status, ShouldEqual, model.StatusWaiting)
		})
	})

	Convey("Given a matching competition with an empty result list", t, func() {
		mux := http.NewServeMux()
		var base string
		mux.HandleFunc("/events/isu-123/competitions/", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintf(w, `[{"title": "1500m Dames", "category": "F", "isLive": true,
				"start": "2025-06-02T09:00:00Z",
				"distance": {"distance": 1500, "lapCount": 4},
				"resultsUrl": %q}]`, base+"/results")
		})
		mux.HandleFunc("/results", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `[]`)
		})
		adapter, srv := newISUForTest(t, mux)
		base = srv.URL

		view, err := adapter.FetchRaceData(ctx, testEvent(), 1500, model.GenderWomen)

		Convey("Then it waits naming the competition", func() {
			So(err, ShouldBeNil)
			So(view.Status, ShouldEqual, model.StatusWaiting)
			So(view.Message, ShouldEqual, "Wachten op 1500m Dames data...")
		})
	})
}

func TestISUPreRaceGate(t *testing.T) {
	Convey("Given a competition scheduled for later today", t, func() {
		handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `[{"title": "1500m Dames", "category": "F",
				"start": "2025-06-02T18:30:00Z",
				"distance": {"distance": 1500, "lapCount": 4},
				"resultsUrl": "http://unused"}]`)
		})
		adapter, _ := newISUForTest(t, handler)

		view, err := adapter.FetchRaceData(context.Background(), testEvent(), 1500, model.GenderWomen)

		Convey("Then it announces the competition start", func() {
			So(err, ShouldBeNil)
			So(view.Status, ShouldEqual, model.StatusNotStarted)
			So(view.Message, ShouldContainSubstring, "1500m Dames begint op")
			So(view.Competition, ShouldNotBeNil)
			So(view.Competition.Distance, ShouldEqual, 1500)
			So(view.Competition.StartDateTime, ShouldEqual, "2025-06-02T18:30:00Z")
			// 18:30 UTC is 20:30 in Amsterdam
			So(view.Event.StartTime, ShouldEqual, "20:30")
		})
	})
}

func TestISULiveRace(t *testing.T) {
	Convey("Given a live competition with a racing pair", t, func() {
		mux := http.NewServeMux()
		var base string
		mux.HandleFunc("/events/isu-123/competitions/", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintf(w, `[{"title": "1500m Dames", "category": "F", "isLive": true,
				"start": "2025-06-02T09:00:00Z",
				"distance": {"distance": 1500, "lapCount": 4},
				"resultsUrl": %q, "personalBestsUrl": %q}]`, base+"/results", base+"/pbs")
		})
		mux.HandleFunc("/results", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `[
				{"id": "r1", "startNumber": 1, "rank": 1, "time": "1:55.200", "startLane": "I",
				 "laps": [{"time": 25, "passageTime": 25}, {"time": 29, "passageTime": 54},
				          {"time": 30, "passageTime": 84}, {"time": "31.2", "passageTime": "1:55.200"}],
				 "competitor": {"skater": {"id": "sk-1", "firstName": "Ire", "lastName": "Vos", "country": "NED"}}},
				{"id": "r2", "startNumber": 2, "rank": 2, "time": "1:56.000", "isReskate": true,
				 "laps": [{"time": 25.2, "passageTime": 25.2}, {"time": 29.3, "passageTime": 54.5},
				          {"time": 30.2, "passageTime": 84.7}, {"time": 31.3, "passageTime": 116.0}],
				 "competitor": {"skater": {"id": "sk-2", "firstName": "Ann", "lastName": "Berg", "country": "NOR"}}},
				{"id": "r3", "startNumber": 3, "startLane": "I",
				 "laps": [{"time": 24.8, "passageTime": 24.8}, {"time": 28.9, "passageTime": 53.7},
				          {"time": 29.9, "passageTime": 83.6}],
				 "competitor": {"skater": {"id": "sk-3", "firstName": "Mia", "lastName": "Kim", "country": "KOR"}}},
				{"id": "r4", "startNumber": 3,
				 "laps": [{"time": 25.1, "passageTime": 25.1}, {"time": 29.4, "passageTime": 54.5},
				          {"time": 30.1, "passageTime": 84.6}],
				 "competitor": {"skater": {"id": "sk-4", "firstName": "Eva", "lastName": "Lang", "country": "GER"}}}
			]`)
		})
		mux.HandleFunc("/pbs", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `[{"skaterId": "sk-3", "time": "1:52.110"}, {"skaterId": "sk-4", "time": 113.45}]`)
		})
		adapter, srv := newISUForTest(t, mux)
		base = srv.URL

		view, err := adapter.FetchRaceData(context.Background(), testEvent(), 1500, model.GenderWomen)

		Convey("Then the racing heat is selected", func() {
			So(err, ShouldBeNil)
			So(view.Status, ShouldEqual, model.StatusRacing)
			So(view.CurrentRace, ShouldNotBeNil)
			So(view.CurrentRace.Status, ShouldEqual, model.PairInProgress)
			So(view.CurrentRace.PairNumber, ShouldEqual, 2)
			So(view.CurrentRace.Skaters, ShouldHaveLength, 2)
			So(view.CurrentRace.Skaters[0].Name, ShouldEqual, "Mia Kim")
			So(view.CurrentRace.Skaters[0].Lane, ShouldEqual, "inner")
			So(view.CurrentRace.Skaters[1].Name, ShouldEqual, "Eva Lang")
			So(view.TotalResults, ShouldEqual, 4)
		})

		Convey("Then personal bests enrich the pair", func() {
			So(view.CurrentRace.Skaters[0].PR, ShouldNotBeNil)
			So(*view.CurrentRace.Skaters[0].PR, ShouldAlmostEqual, 112.11, 0.001)
			So(*view.CurrentRace.Skaters[1].PR, ShouldAlmostEqual, 113.45, 0.001)
		})

		Convey("Then leader, top3 and reskates are derived", func() {
			So(view.CurrentRace.Leader, ShouldNotBeNil)
			So(view.CurrentRace.Leader.Name, ShouldEqual, "Ire Vos")
			So(*view.CurrentRace.Leader.Time, ShouldAlmostEqual, 115.2, 0.001)
			So(view.CurrentRace.Top3, ShouldHaveLength, 2)
			So(view.Reskates, ShouldResemble, []string{"Ann Berg"})
		})
	})
}

func TestISUCompetitionListCaching(t *testing.T) {
	Convey("Given repeated lookups inside the competitions TTL", t, func() {
		var listCalls atomic.Int32
		mux := http.NewServeMux()
		mux.HandleFunc("/events/isu-123/competitions/", func(w http.ResponseWriter, _ *http.Request) {
			listCalls.Add(1)
			fmt.Fprint(w, `[]`)
		})
		adapter, _ := newISUForTest(t, mux)
		ctx := context.Background()

		for i := 0; i < 5; i++ {
			_, err := adapter.FetchRaceData(ctx, testEvent(), 1500, model.GenderWomen)
			So(err, ShouldBeNil)
		}

		Convey("Then the list is fetched once", func() {
			So(listCalls.Load(), ShouldEqual, 1)
		})
	})
}

func TestISUStandings(t *testing.T) {
	Convey("Given ranked results with a DNF", t, func() {
		mux := http.NewServeMux()
		var base string
		mux.HandleFunc("/events/isu-123/competitions/", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprintf(w, `[{"title": "1500m Dames", "category": "F",
				"start": "2025-06-02T09:00:00Z",
				"distance": {"distance": 1500, "lapCount": 4},
				"resultsUrl": %q}]`, base+"/results")
		})
		mux.HandleFunc("/results", func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, `[
				{"rank": 2, "time": "1:56.000", "timeBehind": "0.80",
				 "competitor": {"skater": {"id": "sk-2", "firstName": "Ann", "lastName": "Berg", "country": "NOR"}}},
				{"rank": 1, "time": "1:55.200",
				 "competitor": {"skater": {"id": "sk-1", "firstName": "Ire", "lastName": "Vos", "country": "NED"}}},
				{"status": "DNF",
				 "competitor": {"skater": {"id": "sk-5", "firstName": "Zoe", "lastName": "Pars", "country": "BEL"}}}
			]`)
		})
		adapter, srv := newISUForTest(t, mux)
		base = srv.URL

		view, err := adapter.FetchStandings(context.Background(), testEvent(), 1500, model.GenderWomen)

		Convey("Then entries are rank ascending with non-finishers last", func() {
			So(err, ShouldBeNil)
			So(view.Distance, ShouldEqual, 1500)
			So(view.Standings, ShouldHaveLength, 3)
			So(view.Standings[0].Name, ShouldEqual, "Ire Vos")
			So(view.Standings[0].Time, ShouldAlmostEqual, 115.2, 0.001)
			So(view.Standings[0].TimeFormatted, ShouldEqual, "1:55.20")
			So(view.Standings[1].Name, ShouldEqual, "Ann Berg")
			So(*view.Standings[1].TimeBehind, ShouldAlmostEqual, 0.8, 0.001)
			So(view.Standings[2].DNF, ShouldBeTrue)
		})
	})

	Convey("Given an event without an upstream id", t, func() {
		adapter, _ := newISUForTest(t, http.NotFoundHandler())
		ev := testEvent()
		ev.ISUEventID = ""

		view, err := adapter.FetchStandings(context.Background(), ev, 1500, model.GenderWomen)

		Convey("Then standings are empty", func() {
			So(err, ShouldBeNil)
			So(view.Standings, ShouldBeEmpty)
		})
	})
}

func TestISUListEvents(t *testing.T) {
	Convey("Given season listings with duplicates and cancellations", t, func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/events/", func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Query().Get("season") {
			case "2025":
				fmt.Fprint(w, `{"results": [
					{"isuId": "ev-1", "name": "World Cup Final", "start": "2026-03-01", "end": "2026-03-03",
					 "track": {"name": "Thialf", "city": "Heerenveen", "country": "NED", "timeZone": "Europe/Amsterdam"}},
					{"isuId": "ev-2", "name": "Cancelled Cup", "isCancelled": true},
					{"name": "No ID"}
				]}`)
			case "2026":
				fmt.Fprint(w, `{"results": [
					{"isuId": "ev-1", "name": "World Cup Final", "start": "2026-03-01", "end": "2026-03-03"},
					{"isuId": "ev-3", "name": "Olympic Winter Games", "start": "2026-02-06", "end": "2026-02-22",
					 "tags": ["olympic"], "track": {"city": "Milano"}}
				]}`)
			default:
				t.Errorf("unexpected season query: %s", r.URL.RawQuery)
			}
		})
		adapter, _ := newISUForTest(t, mux, WithISUClock(func() time.Time {
			return time.Date(2025, 11, 1, 0, 0, 0, 0, time.UTC)
		}))

		events := adapter.ListEvents(context.Background())

		Convey("Then events are normalized and deduplicated", func() {
			So(events, ShouldHaveLength, 2)
			So(events[0].ID, ShouldEqual, "ev-1")
			So(events[0].Location, ShouldEqual, "Thialf, Heerenveen")
			So(events[0].Source, ShouldEqual, "isuresults")
			So(events[1].ID, ShouldEqual, "ev-3")
			So(events[1].Olympic, ShouldBeTrue)
			So(events[1].Location, ShouldEqual, "Milano")
			So(events[1].Timezone, ShouldEqual, "UTC")
		})
	})
}
