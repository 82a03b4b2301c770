// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults; Load layers file and env.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ISUBaseURL is the base URL of the ISU results API.
	ISUBaseURL string `koanf:"isu_base_url"`

	// SchaatsenBaseURL is the base URL of the schaatsen.nl live API.
	SchaatsenBaseURL string `koanf:"schaatsen_base_url"`

	// RecordsBaseURL is the base URL for skater personal records.
	RecordsBaseURL string `koanf:"records_base_url"`

	// LiveCacheTTLSeconds bounds staleness of served race views.
	LiveCacheTTLSeconds int `koanf:"live_cache_ttl_seconds"`

	// CompetitionsCacheTTLSeconds caches the upstream competition list.
	CompetitionsCacheTTLSeconds int `koanf:"competitions_cache_ttl_seconds"`

	// MeerkampCacheTTLSeconds caches computed all-around standings.
	MeerkampCacheTTLSeconds int `koanf:"meerkamp_cache_ttl_seconds"`

	// RecordsCacheTTLSeconds caches skater personal records.
	RecordsCacheTTLSeconds int `koanf:"records_cache_ttl_seconds"`

	// FetchTimeoutSeconds caps a full aggregation pass; beyond it the
	// service answers with a waiting view instead of an error.
	FetchTimeoutSeconds int `koanf:"fetch_timeout_seconds"`

	// UpstreamTimeoutSeconds caps a single upstream HTTP request.
	UpstreamTimeoutSeconds int `koanf:"upstream_timeout_seconds"`

	// EnrichTimeoutSeconds caps best-effort enrichment calls (personal
	// bests); shorter than the upstream timeout on purpose.
	EnrichTimeoutSeconds int `koanf:"enrich_timeout_seconds"`

	// RetryAttempts sets the number of attempts per upstream request.
	RetryAttempts int `koanf:"retry_attempts"`

	// RetryBackoffMS sets the linear backoff unit between attempts.
	RetryBackoffMS int `koanf:"retry_backoff_ms"`

	// MaxStandingsLimit caps standings responses.
	MaxStandingsLimit int `koanf:"max_standings_limit"`
}

// New creates a Config with defaults.
func New() *Config {
	c := &Config{
		LogLevel:                    "info",
		Addr:                        ":9080",
		ISUBaseURL:                  "https://api.isuresults.eu",
		SchaatsenBaseURL:            "https://liveresults.schaatsen.nl",
		RecordsBaseURL:              "https://speedskatingresults.com/api/json",
		LiveCacheTTLSeconds:         5,
		CompetitionsCacheTTLSeconds: 60,
		MeerkampCacheTTLSeconds:     30,
		RecordsCacheTTLSeconds:      3600,
		FetchTimeoutSeconds:         20,
		UpstreamTimeoutSeconds:      10,
		EnrichTimeoutSeconds:        5,
		RetryAttempts:               3,
		RetryBackoffMS:              1000,
		MaxStandingsLimit:           100,
	}
	return c
}

// Duration accessors for the *_seconds and *_ms fields.

func (c *Config) LiveCacheTTL() time.Duration {
	return time.Duration(c.LiveCacheTTLSeconds) * time.Second
}

func (c *Config) CompetitionsCacheTTL() time.Duration {
	return time.Duration(c.CompetitionsCacheTTLSeconds) * time.Second
}

func (c *Config) MeerkampCacheTTL() time.Duration {
	return time.Duration(c.MeerkampCacheTTLSeconds) * time.Second
}

func (c *Config) RecordsCacheTTL() time.Duration {
	return time.Duration(c.RecordsCacheTTLSeconds) * time.Second
}

func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutSeconds) * time.Second
}

func (c *Config) EnrichTimeout() time.Duration {
	return time.Duration(c.EnrichTimeoutSeconds) * time.Second
}

func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}
