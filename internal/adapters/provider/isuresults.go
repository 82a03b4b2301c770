package provider

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lapedge/lapedge/internal/adapters/cache"
	"github.com/lapedge/lapedge/internal/catalog"
	"github.com/lapedge/lapedge/internal/domain/laptime"
	"github.com/lapedge/lapedge/internal/domain/model"
	"github.com/lapedge/lapedge/pkg/logger"
	"github.com/lapedge/lapedge/pkg/metrics"
)

const (
	// ProviderISU labels the official ISU results API.
	ProviderISU = "isuresults"

	defaultISUBaseURL    = "https://api.isuresults.eu"
	defaultISUTimeout    = 10 * time.Second
	defaultEnrichTimeout = 5 * time.Second
	competitionsCacheTTL = time.Minute
	standingsLimit       = 20
	liveResultsURL       = "https://live.isuresults.eu"
)

// ISUAdapter reads race data from api.isuresults.eu. The competition
// list is cached and coalesced; everything else is fetched per call.
type ISUAdapter struct {
	baseURL       string
	client        *http.Client
	competitions  *cache.Cache
	retry         RetryPolicy
	timeout       time.Duration
	enrichTimeout time.Duration
	now           func() time.Time
	log           logger.Logger
}

// ISUOption applies a configuration option to the ISUAdapter.
type ISUOption func(*ISUAdapter)

// WithISUBaseURL overrides the API base URL.
func WithISUBaseURL(url string) ISUOption {
	return func(a *ISUAdapter) {
		if url != "" {
			a.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithISUClient overrides the HTTP client.
func WithISUClient(client *http.Client) ISUOption {
	return func(a *ISUAdapter) {
		if client != nil {
			a.client = client
		}
	}
}

// WithISUClock overrides the adapter's wall clock.
func WithISUClock(now func() time.Time) ISUOption {
	return func(a *ISUAdapter) {
		if now != nil {
			a.now = now
		}
	}
}

// WithISURetry overrides the competition-list retry policy.
func WithISURetry(p RetryPolicy) ISUOption {
	return func(a *ISUAdapter) { a.retry = p }
}

// WithISUTimeouts overrides the per-request and enrichment timeouts.
func WithISUTimeouts(request, enrich time.Duration) ISUOption {
	return func(a *ISUAdapter) {
		if request > 0 {
			a.timeout = request
		}
		if enrich > 0 {
			a.enrichTimeout = enrich
		}
	}
}

// WithISUCompetitionsTTL overrides the competition-list cache TTL.
func WithISUCompetitionsTTL(ttl time.Duration) ISUOption {
	return func(a *ISUAdapter) {
		a.competitions = cache.New("competitions", ttl)
	}
}

// WithISULogger overrides the adapter logger.
func WithISULogger(log logger.Logger) ISUOption {
	return func(a *ISUAdapter) { a.log = log }
}

// NewISU creates an ISU results adapter with default configuration.
func NewISU(opts ...ISUOption) *ISUAdapter {
	a := &ISUAdapter{
		baseURL:       defaultISUBaseURL,
		client:        &http.Client{},
		competitions:  cache.New("competitions", competitionsCacheTTL),
		retry:         DefaultRetryPolicy(),
		timeout:       defaultISUTimeout,
		enrichTimeout: defaultEnrichTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *ISUAdapter) logger() logger.Logger {
	if a.log != nil {
		return a.log
	}
	return logger.Named(ProviderISU)
}

// WaitingView implements Adapter.
func (a *ISUAdapter) WaitingView(event model.Event, _ int) model.RaceView {
	return waitingView(event, "")
}

// FetchRaceData implements Adapter. Upstream trouble degrades to a
// waiting view; only the gating and transform logic can be observed
// failing, and neither returns errors.
func (a *ISUAdapter) FetchRaceData(ctx context.Context, event model.Event, distance int, gender model.Gender) (model.RaceView, error) {
	now := a.now()
	if before, after := eventWindow(event, now); before {
		return notStartedView(event), nil
	} else if after {
		return endedView(event), nil
	}

	if event.ISUEventID == "" {
		return waitingView(event, ""), nil
	}

	comps, err := a.competitionList(ctx, event.ISUEventID)
	if err != nil {
		a.logger().Warn(ctx, "competition list unavailable",
			logger.String("event", event.ID), logger.Error(err))
		metrics.RecordProviderFallback(ProviderISU, "competitions")
		return waitingView(event, ""), nil
	}

	comp, ok := findCompetition(comps, distance, gender)
	if !ok {
		a.logger().Debug(ctx, "no competition for distance",
			logger.String("event", event.ID), logger.Int("distance", distance))
		return waitingView(event, ""), nil
	}

	if start, err := time.Parse(time.RFC3339, comp.Start); err == nil && now.Before(start) {
		return preRaceView(event, distance, model.Competition{
			Title: comp.Title,
			Start: start,
		}), nil
	}

	var results []isuResult
	if err := getJSON(ctx, a.client, ProviderISU, comp.ResultsURL, a.timeout, &results); err != nil {
		a.logger().Warn(ctx, "results fetch failed",
			logger.String("title", comp.Title), logger.Error(err))
		metrics.RecordProviderFallback(ProviderISU, "results")
		return waitingView(event, comp.Title), nil
	}
	if len(results) == 0 {
		return waitingView(event, comp.Title), nil
	}

	pbs := a.personalBests(ctx, comp.PersonalBestsURL)

	return a.transform(results, distance, comp, pbs), nil
}

// FetchStandings implements Adapter. Missing data yields an empty
// standings list, never an error.
func (a *ISUAdapter) FetchStandings(ctx context.Context, event model.Event, distance int, gender model.Gender) (model.StandingsView, error) {
	view := model.StandingsView{Distance: distance}
	if event.ISUEventID == "" {
		return view, nil
	}

	comps, err := a.competitionList(ctx, event.ISUEventID)
	if err != nil {
		return view, nil
	}
	comp, ok := findCompetition(comps, distance, gender)
	if !ok {
		return view, nil
	}

	var results []isuResult
	if err := getJSON(ctx, a.client, ProviderISU, comp.ResultsURL, a.timeout, &results); err != nil {
		a.logger().Debug(ctx, "standings fetch failed",
			logger.String("title", comp.Title), logger.Error(err))
		return view, nil
	}

	view.Standings = standingsFrom(results)
	return view, nil
}

// ListEvents fetches the upstream season listings for the current and
// next season, normalized for the event catalog. Failures per season
// collapse to an empty slice.
func (a *ISUAdapter) ListEvents(ctx context.Context) []model.Event {
	year := a.now().Year()
	var events []model.Event
	for _, season := range []int{year, year + 1} {
		events = append(events, a.fetchSeason(ctx, season)...)
	}

	seen := make(map[string]struct{})
	deduped := events[:0]
	for _, ev := range events {
		if _, ok := seen[ev.ID]; ok {
			continue
		}
		seen[ev.ID] = struct{}{}
		deduped = append(deduped, ev)
	}
	return deduped
}

func (a *ISUAdapter) fetchSeason(ctx context.Context, season int) []model.Event {
	var page isuEventPage
	url := a.baseURL + "/events/?season=" + strconv.Itoa(season)
	if err := getJSON(ctx, a.client, ProviderISU, url, a.timeout, &page); err != nil {
		a.logger().Warn(ctx, "season listing failed",
			logger.Int("season", season), logger.Error(err))
		return nil
	}

	var events []model.Event
	for _, raw := range page.Results {
		if raw.ISUID == "" || raw.IsCancelled {
			continue
		}
		ev := normalizeISUEvent(raw)
		events = append(events, ev)
	}
	return events
}

func normalizeISUEvent(raw isuEvent) model.Event {
	location := raw.Track.Name
	switch {
	case raw.Track.Name != "" && raw.Track.City != "":
		location = raw.Track.Name + ", " + raw.Track.City
	case raw.Track.City != "":
		location = raw.Track.City
	case location == "":
		location = "–"
	}

	country := raw.Track.Country
	if country == "" {
		country = raw.NationalFederation
	}
	if country == "" {
		country = "–"
	}

	tz := raw.Track.TimeZone
	if tz == "" {
		tz = "UTC"
	}

	olympic := false
	for _, tag := range raw.Tags {
		if tag == "olympic" {
			olympic = true
			break
		}
	}

	ev := model.Event{
		ID:         raw.ISUID,
		Name:       raw.Name,
		Location:   location,
		Country:    country,
		StartDate:  raw.Start,
		EndDate:    raw.End,
		Source:     ProviderISU,
		SourceURL:  liveResultsURL,
		ISUEventID: raw.ISUID,
		Timezone:   tz,
		Olympic:    olympic,
	}
	ev.EventType = catalog.EventType(ev)
	return ev
}

func (a *ISUAdapter) competitionList(ctx context.Context, isuEventID string) ([]isuCompetition, error) {
	v, err := a.competitions.GetOrLoad(ctx, "competitions-"+isuEventID, func(ctx context.Context) (any, error) {
		var comps []isuCompetition
		url := a.baseURL + "/events/" + isuEventID + "/competitions/"
		err := a.retry.Do(ctx, ProviderISU, func(ctx context.Context) error {
			comps = comps[:0]
			return getJSON(ctx, a.client, ProviderISU, url, a.timeout, &comps)
		})
		if err != nil {
			return nil, err
		}
		return comps, nil
	})
	if err != nil {
		return nil, err
	}
	comps, _ := v.([]isuCompetition)
	return comps, nil
}

func findCompetition(comps []isuCompetition, distance int, gender model.Gender) (isuCompetition, bool) {
	for _, c := range comps {
		if c.Distance.Distance == distance && c.Category == string(gender) {
			return c, true
		}
	}
	return isuCompetition{}, false
}

// personalBests loads the PB enrichment map with a short timeout.
// Any failure is non-fatal: skaters just show a nil personal best.
func (a *ISUAdapter) personalBests(ctx context.Context, url string) map[string]float64 {
	if url == "" {
		return nil
	}

	var pbs []isuPersonalBest
	if err := getJSON(ctx, a.client, ProviderISU, url, a.enrichTimeout, &pbs); err != nil {
		a.logger().Debug(ctx, "personal bests unavailable", logger.Error(err))
		metrics.RecordPersonalBestFailure()
		return nil
	}

	out := make(map[string]float64, len(pbs))
	for _, pb := range pbs {
		out[pb.SkaterID] = pb.Time.Seconds()
	}
	return out
}

func (a *ISUAdapter) transform(raw []isuResult, distance int, comp isuCompetition, pbs map[string]float64) model.RaceView {
	results := make([]model.Result, len(raw))
	for i, r := range raw {
		results[i] = r.toModel()
	}

	totalLaps := TotalLaps(comp.Distance.LapCount, distance)
	pair, pairNo := SelectCurrentPair(results, totalLaps)

	skaters := make([]model.Skater, len(pair))
	for i, r := range pair {
		skaters[i] = skaterFromResult(r, pbs)
	}

	status, pairStatus := model.StatusFinished, model.PairFinished
	if comp.IsLive {
		status, pairStatus = model.StatusRacing, model.PairInProgress
	}

	return model.RaceView{
		Status: status,
		CurrentRace: &model.CurrentRace{
			PairNumber: pairNo,
			Status:     pairStatus,
			Distance:   distance,
			Title:      comp.Title,
			Skaters:    skaters,
			Leader:     LeaderOf(results),
			Top3:       TopThree(results),
		},
		Reskates:     Reskates(results),
		TotalResults: len(results),
	}
}

func (r isuResult) toModel() model.Result {
	sk := r.Competitor.Skater

	id := sk.ID
	if id == "" {
		id = r.ID
	}
	if id == "" {
		id = uuid.NewString()
	}

	name := strings.TrimSpace(sk.FirstName + " " + sk.LastName)
	if name == "" {
		name = "Unknown"
	}
	country := sk.Country
	if country == "" {
		country = "UNK"
	}

	lane := "outer"
	if r.StartLane == "I" {
		lane = "inner"
	}

	laps := make([]model.LapRecord, len(r.Laps))
	for i, lap := range r.Laps {
		laps[i] = model.LapRecord{
			Time:    lap.Time.Seconds(),
			Passage: lap.PassageTime.Seconds(),
			Rank:    lap.Rank,
		}
	}

	var final, behind *float64
	if r.Time != nil {
		v := r.Time.Seconds()
		final = &v
	}
	if r.TimeBehind != nil {
		v := r.TimeBehind.Seconds()
		behind = &v
	}

	return model.Result{
		SkaterID:    id,
		Name:        name,
		Country:     country,
		Photo:       sk.Photo,
		StartNumber: r.StartNumber,
		Lane:        lane,
		Armband:     r.Armband,
		Laps:        laps,
		FinalTime:   final,
		Rank:        r.Rank,
		TimeBehind:  behind,
		Reskate:     r.IsReskate,
	}
}

func skaterFromResult(r model.Result, pbs map[string]float64) model.Skater {
	var pr *float64
	if v, ok := pbs[r.SkaterID]; ok {
		pr = &v
	}

	lapRanks := make([]int, len(r.Laps))
	for i, lap := range r.Laps {
		lapRanks[i] = lap.Rank
	}

	return model.Skater{
		ID:           r.SkaterID,
		Name:         r.Name,
		Country:      r.Country,
		Photo:        r.Photo,
		Lane:         r.Lane,
		Armband:      r.Armband,
		LapTimes:     lapTimes(r.Laps),
		PassageTimes: passageTimes(r.Laps),
		LapRanks:     lapRanks,
		FinalTime:    r.FinalTime,
		Rank:         r.Rank,
		TimeBehind:   r.TimeBehind,
		PR:           pr,
	}
}

// standingsFrom keeps ranked finishers first (rank ascending, capped),
// then appends explicitly flagged non-finishers for all-around scoring.
func standingsFrom(raw []isuResult) []model.StandingEntry {
	var ranked []model.StandingEntry
	var nonFinishers []model.StandingEntry

	for _, r := range raw {
		res := r.toModel()
		status := strings.ToUpper(r.Status)
		switch {
		case r.Rank > 0 && res.FinalTime != nil:
			ranked = append(ranked, model.StandingEntry{
				Rank:          r.Rank,
				SkaterID:      res.SkaterID,
				Name:          res.Name,
				Country:       res.Country,
				Photo:         res.Photo,
				Time:          *res.FinalTime,
				TimeFormatted: laptime.Format(*res.FinalTime),
				TimeBehind:    res.TimeBehind,
			})
		case status == "DNF" || status == "DNS":
			nonFinishers = append(nonFinishers, model.StandingEntry{
				SkaterID: res.SkaterID,
				Name:     res.Name,
				Country:  res.Country,
				Photo:    res.Photo,
				DNF:      status == "DNF",
				DNS:      status == "DNS",
			})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Rank < ranked[j].Rank })
	if len(ranked) > standingsLimit {
		ranked = ranked[:standingsLimit]
	}
	return append(ranked, nonFinishers...)
}
