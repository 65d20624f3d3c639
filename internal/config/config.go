// Package config defines service configuration structures and loading hooks.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`
	// LogFormat selects the log handler: text, json or console.
	LogFormat string `koanf:"log_format" validate:"oneof=text json console"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr" validate:"required"`

	// UpstreamBaseURL is the root of the search API, e.g. "http://localhost:8000/api".
	UpstreamBaseURL string `koanf:"upstream_base_url" validate:"required,url"`
	// UpstreamTimeoutMS bounds each upstream request.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms" validate:"gt=0"`
	// UpstreamRPS limits outbound requests per second; 0 disables limiting.
	UpstreamRPS float64 `koanf:"upstream_rps" validate:"gte=0"`
	// UpstreamBurst is the limiter burst size.
	UpstreamBurst int `koanf:"upstream_burst" validate:"gte=1"`
	// UpstreamTrailingSlash appends "/" to API paths.
	UpstreamTrailingSlash bool `koanf:"upstream_trailing_slash"`

	// CacheTTLSeconds is how long fetched responses are reused; 0 keeps them
	// until restart.
	CacheTTLSeconds int `koanf:"cache_ttl_seconds" validate:"gte=0"`
	// CacheCleanupSeconds is how often expired responses are purged.
	CacheCleanupSeconds int `koanf:"cache_cleanup_seconds" validate:"gt=0"`

	// DefaultSort is used when a search names no sort mode.
	DefaultSort string `koanf:"default_sort" validate:"oneof=name_asc name_desc stars_asc stars_desc grade_asc grade_desc score_asc score_desc"`
	// DefaultDisplay is passed upstream when a request names no display mode.
	DefaultDisplay string `koanf:"default_display" validate:"oneof=letter stars"`
	// FilterMode is "upstream" or "client".
	FilterMode string `koanf:"filter_mode" validate:"oneof=upstream client"`
	// MaxResults caps returned results; 0 disables the cap.
	MaxResults int `koanf:"max_results" validate:"gte=0"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9080",
		UpstreamBaseURL:     "http://localhost:8000/api",
		UpstreamTimeoutMS:   5000,
		UpstreamRPS:         10,
		UpstreamBurst:       20,
		CacheTTLSeconds:     60,
		CacheCleanupSeconds: 300,
		DefaultSort:         "name_asc",
		DefaultDisplay:      "letter",
		FilterMode:          "upstream",
		MaxResults:          500,
	}
}

// Validate checks field constraints.
func (c *Config) Validate(_ context.Context) error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// UpstreamTimeout returns UpstreamTimeoutMS as a duration.
func (c *Config) UpstreamTimeout() time.Duration {
	return time.Duration(c.UpstreamTimeoutMS) * time.Millisecond
}

// CacheTTL returns CacheTTLSeconds as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// CacheCleanup returns CacheCleanupSeconds as a duration.
func (c *Config) CacheCleanup() time.Duration {
	return time.Duration(c.CacheCleanupSeconds) * time.Second
}
