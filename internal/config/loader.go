package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if LAPEDGE_CONFIG is set
//  3. env (prefix LAPEDGE_)
func Load(_ context.Context) (*Config, error) {
	// Start with defaults
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("LAPEDGE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: LAPEDGE_ADDR, LAPEDGE_LIVE_CACHE_TTL_SECONDS, ...
	// Map env keys like LAPEDGE_RETRY_ATTEMPTS -> retry_attempts (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("LAPEDGE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "lapedge_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the service cannot run with.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RetryAttempts < 1:
		return fmt.Errorf("%w: retry_attempts must be at least 1", ErrInvalidConfig)
	case c.FetchTimeoutSeconds <= 0:
		return fmt.Errorf("%w: fetch_timeout_seconds must be positive", ErrInvalidConfig)
	case c.UpstreamTimeoutSeconds <= 0:
		return fmt.Errorf("%w: upstream_timeout_seconds must be positive", ErrInvalidConfig)
	case c.LiveCacheTTLSeconds < 0 || c.CompetitionsCacheTTLSeconds < 0 ||
		c.MeerkampCacheTTLSeconds < 0 || c.RecordsCacheTTLSeconds < 0:
		return fmt.Errorf("%w: cache TTLs must not be negative", ErrInvalidConfig)
	}
	return nil
}
