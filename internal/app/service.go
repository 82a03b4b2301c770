// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/lapedge/lapedge/internal/adapters/cache"
	"github.com/lapedge/lapedge/internal/adapters/provider"
	"github.com/lapedge/lapedge/internal/adapters/records"
	"github.com/lapedge/lapedge/internal/catalog"
	"github.com/lapedge/lapedge/internal/domain/model"
	"github.com/lapedge/lapedge/pkg/logger"
	"github.com/lapedge/lapedge/pkg/metrics"
)

const (
	defaultFetchTimeout   = 20 * time.Second
	defaultLiveTTL        = 5 * time.Second
	defaultMeerkampTTL    = 30 * time.Second
	defaultStandingsLimit = 100
)

// EventLister is implemented by adapters that can discover upstream
// season events for the catalog.
type EventLister interface {
	ListEvents(ctx context.Context) []model.Event
}

// Service aggregates provider race data into normalized views and
// keeps the per-view caches. It implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	// Core components
	catalog   *catalog.Catalog
	isu       provider.Adapter
	schaatsen provider.Adapter
	records   *records.Service
	live      *cache.Cache
	meerkamp  *cache.Cache

	// Configuration
	fetchTimeout   time.Duration
	liveTTL        time.Duration
	meerkampTTL    time.Duration
	standingsLimit int

	// State
	started   bool
	startedAt time.Time
	stopCh    chan struct{}
	now       func() time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithCatalog sets the event catalog.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithISUAdapter sets the ISU results adapter.
func WithISUAdapter(a provider.Adapter) Option {
	return func(s *Service) {
		if a != nil {
			s.isu = a
		}
	}
}

// WithSchaatsenAdapter sets the national federation adapter.
func WithSchaatsenAdapter(a provider.Adapter) Option {
	return func(s *Service) {
		if a != nil {
			s.schaatsen = a
		}
	}
}

// WithRecords sets the skater records service.
func WithRecords(r *records.Service) Option {
	return func(s *Service) {
		if r != nil {
			s.records = r
		}
	}
}

// WithFetchTimeout caps how long one provider fetch may take before
// the waiting fallback is served.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}

// WithLiveCacheTTL sets the race/standings cache TTL.
func WithLiveCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.liveTTL = ttl
		}
	}
}

// WithMeerkampCacheTTL sets the all-around standings cache TTL.
func WithMeerkampCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.meerkampTTL = ttl
		}
	}
}

// WithStandingsLimit caps the standings rows served per distance.
func WithStandingsLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.standingsLimit = limit
		}
	}
}

// WithClock overrides the service's wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		fetchTimeout:   defaultFetchTimeout,
		liveTTL:        defaultLiveTTL,
		meerkampTTL:    defaultMeerkampTTL,
		standingsLimit: defaultStandingsLimit,
		stopCh:         make(chan struct{}),
		now:            time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components and kicks off upstream
// event discovery in the background.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting live data service...")

	if s.catalog == nil {
		s.catalog = catalog.New()
	}
	if s.isu == nil {
		s.isu = provider.NewISU()
	}
	if s.schaatsen == nil {
		s.schaatsen = provider.NewSchaatsen()
	}
	if s.records == nil {
		s.records = records.New()
	}
	s.live = cache.New("live", s.liveTTL)
	s.meerkamp = cache.New("meerkamp", s.meerkampTTL)

	s.started = true
	s.startedAt = s.now()

	if lister, ok := s.isu.(EventLister); ok {
		go s.discoverEvents(lister)
	}

	s.logger.Info(ctx, "live data service started",
		logger.Duration("fetchTimeout", s.fetchTimeout),
		logger.Duration("liveTTL", s.liveTTL),
		logger.Duration("meerkampTTL", s.meerkampTTL),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping live data service...")

	select {
	case <-s.stopCh:
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "live data service stopped")
}

// discoverEvents merges upstream season listings into the catalog.
// The service runs fine without it; static events stay available.
func (s *Service) discoverEvents(lister EventLister) {
	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	defer cancel()

	events := lister.ListEvents(ctx)
	if len(events) == 0 {
		return
	}
	s.catalog.RegisterDiscovered(events)
	s.logger.Info(ctx, "merged discovered events", logger.Int("count", len(events)))
}

// Events lists the merged static and discovered events.
func (s *Service) Events(_ context.Context) []model.Event {
	return s.catalog.MergedEvents()
}

// Event looks an event up by id.
func (s *Service) Event(id string) (model.Event, bool) {
	return s.catalog.Event(id)
}

// Distances lists the distances configured for an event.
func (s *Service) Distances(eventID string) ([]int, bool) {
	if _, ok := s.catalog.Event(eventID); !ok {
		return nil, false
	}
	return s.catalog.Distances(eventID), true
}

// MeerkampDistances lists the all-around distance sequence for an
// event and gender.
func (s *Service) MeerkampDistances(eventID string, gender model.Gender) ([]int, bool) {
	return s.catalog.MeerkampDistances(eventID, gender)
}

// DistanceRecords returns the reference times for an event distance.
func (s *Service) DistanceRecords(eventID string, distance int, gender model.Gender) (catalog.DistanceRecords, bool) {
	return s.catalog.RecordsFor(eventID, distance, gender)
}

// RaceData serves the normalized live race view for one distance. A
// slow or failing provider degrades to the adapter's waiting view.
func (s *Service) RaceData(ctx context.Context, eventID string, distance int, gender model.Gender) (model.RaceView, error) {
	event, adapter, err := s.resolve(eventID)
	if err != nil {
		return model.RaceView{}, err
	}

	key := viewKey(eventID, distance, gender, "race")
	v, err := s.live.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return s.loadRace(ctx, adapter, event, distance, gender), nil
	})
	if err != nil {
		return adapter.WaitingView(event, distance), nil
	}
	view, _ := v.(model.RaceView)
	return view, nil
}

func (s *Service) loadRace(ctx context.Context, adapter provider.Adapter, event model.Event, distance int, gender model.Gender) model.RaceView {
	fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
	defer cancel()

	view, err := adapter.FetchRaceData(fctx, event, distance, gender)
	if err != nil {
		s.logger.Warn(ctx, "provider fetch failed, serving waiting view",
			logger.String("event", event.ID),
			logger.Int("distance", distance),
			logger.Error(err),
		)
		view = adapter.WaitingView(event, distance)
	}

	view = normalizeRace(view, distance, s.now())
	metrics.RecordRaceView(view.Status)
	return view
}

// Standings serves the per-distance standings, capped to the
// configured row limit.
func (s *Service) Standings(ctx context.Context, eventID string, distance int, gender model.Gender) (model.StandingsView, error) {
	event, adapter, err := s.resolve(eventID)
	if err != nil {
		return model.StandingsView{}, err
	}

	key := viewKey(eventID, distance, gender, "standings")
	v, cerr := s.live.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		fctx, cancel := context.WithTimeout(ctx, s.fetchTimeout)
		defer cancel()

		view, err := adapter.FetchStandings(fctx, event, distance, gender)
		if err != nil {
			s.logger.Warn(ctx, "standings fetch failed",
				logger.String("event", event.ID),
				logger.Int("distance", distance),
				logger.Error(err),
			)
			view = model.StandingsView{Distance: distance}
		}
		return view, nil
	})
	if cerr != nil {
		return model.StandingsView{Distance: distance}, nil
	}

	view, _ := v.(model.StandingsView)
	if len(view.Standings) > s.standingsLimit {
		view.Standings = view.Standings[:s.standingsLimit]
	}
	return view, nil
}

// SkaterRecords returns a skater's best times, all distances when
// distance is 0.
func (s *Service) SkaterRecords(ctx context.Context, skaterID string, distance int) (records.SkaterRecords, error) {
	return s.records.Records(ctx, skaterID, distance)
}

// SkaterInfo returns the full records profile for a skater.
func (s *Service) SkaterInfo(ctx context.Context, skaterID string) (records.SkaterInfo, error) {
	return s.records.Info(ctx, skaterID)
}

// ClearCaches drops cached data of the requested kind: "live",
// "meerkamp", "records" or "all".
func (s *Service) ClearCaches(kind string) error {
	switch kind {
	case "live":
		s.live.Clear()
	case "meerkamp":
		s.meerkamp.Clear()
	case "records":
		s.records.ClearCache()
	case "all":
		s.live.Clear()
		s.meerkamp.Clear()
		s.records.ClearCache()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCache, kind)
	}

	s.logger.Info(context.Background(), "caches cleared", logger.String("kind", kind))
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started": s.started,
	}

	if s.started {
		liveLen, meerkampLen, recordsLen := s.live.Len(), s.meerkamp.Len(), s.records.CacheLen()

		stats["uptimeSeconds"] = int64(s.now().Sub(s.startedAt).Seconds())
		stats["caches"] = map[string]int{
			"live":     liveLen,
			"meerkamp": meerkampLen,
			"records":  recordsLen,
		}

		metrics.UpdateCacheSize("live", liveLen)
		metrics.UpdateCacheSize("meerkamp", meerkampLen)
		metrics.UpdateCacheSize("records", recordsLen)
	}

	return stats
}

func (s *Service) resolve(eventID string) (model.Event, provider.Adapter, error) {
	event, ok := s.catalog.Event(eventID)
	if !ok {
		return model.Event{}, nil, fmt.Errorf("%w: %s", ErrUnknownEvent, eventID)
	}

	switch event.Source {
	case provider.ProviderISU:
		return event, s.isu, nil
	case provider.ProviderSchaatsen:
		return event, s.schaatsen, nil
	default:
		return model.Event{}, nil, fmt.Errorf("%w: %s", ErrUnknownSource, event.Source)
	}
}

func viewKey(eventID string, distance int, gender model.Gender, kind string) string {
	return eventID + "-" + strconv.Itoa(distance) + "-" + string(gender) + "-" + kind
}
