// Package records looks up skater personal and season bests from
// public result archives, with an HTML scrape as backup and fixed
// development data as the last resort.
package records

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/lapedge/lapedge/internal/adapters/cache"
	"github.com/lapedge/lapedge/pkg/logger"
	"github.com/lapedge/lapedge/pkg/metrics"
)

const (
	// ProviderResults labels the speedskatingresults.com JSON API.
	ProviderResults = "speedskatingresults"
	// ProviderNews labels the speedskatingnews.info HTML pages.
	ProviderNews = "speedskatingnews"

	defaultResultsBaseURL = "https://speedskatingresults.com/api/json"
	defaultNewsBaseURL    = "https://speedskatingnews.info"
	defaultTimeout        = 5 * time.Second
	defaultCacheTTL       = time.Hour
)

// DistanceRecord holds the best times for one distance, in seconds.
type DistanceRecord struct {
	PR         float64 `json:"pr"`
	SeasonBest float64 `json:"seasonBest"`
	PRDate     string  `json:"prDate,omitempty"`
	SBDate     string  `json:"sbDate,omitempty"`
}

// SkaterRecords is a skater's best times per distance.
type SkaterRecords struct {
	Name    string                 `json:"name"`
	Country string                 `json:"country"`
	Records map[int]DistanceRecord `json:"records"`
}

// SkaterInfo is the full profile served by the records endpoint.
type SkaterInfo struct {
	ID          string        `json:"id"`
	Records     SkaterRecords `json:"records"`
	LastUpdated string        `json:"lastUpdated"`
}

// Service resolves skater records through a chain of sources. Results
// are cached for an hour; lookups never fail, they degrade.
type Service struct {
	resultsBaseURL string
	newsBaseURL    string
	client         *http.Client
	timeout        time.Duration
	cache          *cache.Cache
	now            func() time.Time
	log            logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithResultsBaseURL overrides the JSON API base URL.
func WithResultsBaseURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.resultsBaseURL = url
		}
	}
}

// WithNewsBaseURL overrides the HTML backup base URL.
func WithNewsBaseURL(url string) Option {
	return func(s *Service) {
		if url != "" {
			s.newsBaseURL = url
		}
	}
}

// WithClient overrides the HTTP client.
func WithClient(client *http.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.client = client
		}
	}
}

// WithTimeout overrides the per-source timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithCacheTTL overrides the records cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = cache.New("records", ttl)
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

// WithLogger overrides the service logger.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) { s.log = log }
}

// New creates a records service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		resultsBaseURL: defaultResultsBaseURL,
		newsBaseURL:    defaultNewsBaseURL,
		client:         &http.Client{},
		timeout:        defaultTimeout,
		cache:          cache.New("records", defaultCacheTTL),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) logger() logger.Logger {
	if s.log != nil {
		return s.log
	}
	return logger.Named("records")
}

// Records returns the skater's best times, for one distance or all of
// them when distance is 0. The source chain is JSON API, HTML scrape,
// then fixed development data, so a result is always produced.
func (s *Service) Records(ctx context.Context, skaterID string, distance int) (SkaterRecords, error) {
	v, err := s.cache.GetOrLoad(ctx, recordsKey(skaterID, distance), func(ctx context.Context) (any, error) {
		return s.resolve(ctx, skaterID, distance), nil
	})
	if err != nil {
		return demoRecords(skaterID, distance), nil
	}
	rec, _ := v.(SkaterRecords)
	return rec, nil
}

// Info returns the full profile for a skater across all distances.
func (s *Service) Info(ctx context.Context, skaterID string) (SkaterInfo, error) {
	v, err := s.cache.GetOrLoad(ctx, "info-"+skaterID, func(ctx context.Context) (any, error) {
		rec, err := s.Records(ctx, skaterID, 0)
		if err != nil {
			return nil, err
		}
		return SkaterInfo{
			ID:          skaterID,
			Records:     rec,
			LastUpdated: s.now().UTC().Format(time.RFC3339),
		}, nil
	})
	if err != nil {
		return SkaterInfo{}, err
	}
	info, _ := v.(SkaterInfo)
	return info, nil
}

// ClearCache drops all cached lookups.
func (s *Service) ClearCache() {
	s.cache.Clear()
}

// CacheLen reports the number of live cache entries.
func (s *Service) CacheLen() int {
	return s.cache.Len()
}

func (s *Service) resolve(ctx context.Context, skaterID string, distance int) SkaterRecords {
	rec, err := s.fromResultsAPI(ctx, skaterID, distance)
	if err == nil {
		return rec
	}
	s.logger().Debug(ctx, "results api unavailable",
		logger.String("skater", skaterID), logger.Error(err))
	metrics.RecordProviderFallback(ProviderResults, "lookup")

	rec, err = s.fromNewsSite(ctx, skaterID, distance)
	if err == nil {
		return rec
	}
	s.logger().Debug(ctx, "news scrape unavailable",
		logger.String("skater", skaterID), logger.Error(err))
	metrics.RecordProviderFallback(ProviderNews, "scrape")

	return demoRecords(skaterID, distance)
}

func recordsKey(skaterID string, distance int) string {
	if distance == 0 {
		return skaterID + "-all"
	}
	return skaterID + "-" + strconv.Itoa(distance)
}

// demoBests mirror the development dataset used when every live
// source is unreachable.
var demoBests = map[int]DistanceRecord{
	500:   {PR: 34.32, SeasonBest: 34.45, PRDate: "2023-03-12", SBDate: "2024-11-15"},
	1000:  {PR: 68.65, SeasonBest: 68.89, PRDate: "2023-02-18", SBDate: "2024-12-01"},
	1500:  {PR: 103.45, SeasonBest: 103.89, PRDate: "2024-01-14", SBDate: "2024-11-23"},
	3000:  {PR: 225.67, SeasonBest: 226.12, PRDate: "2023-12-08", SBDate: "2024-12-08"},
	5000:  {PR: 380.12, SeasonBest: 381.45, PRDate: "2024-02-10", SBDate: "2024-11-30"},
	10000: {PR: 772.34, SeasonBest: 775.89, PRDate: "2023-11-25", SBDate: "2024-11-17"},
}

func demoRecords(skaterID string, distance int) SkaterRecords {
	records := make(map[int]DistanceRecord, len(demoBests))
	for dist, rec := range demoBests {
		if distance != 0 && dist != distance {
			continue
		}
		records[dist] = rec
	}
	return SkaterRecords{
		Name:    skaterID,
		Country: "NED",
		Records: records,
	}
}
