package service

import (
	"time"

	"github.com/okian/safeeats/internal/adapters/repository"
	"github.com/okian/safeeats/internal/domain/ranking"
	"github.com/okian/safeeats/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithUpstream sets the search API client.
func WithUpstream(u Upstream) Option {
	return func(s *Service) {
		s.upstream = u
	}
}

// WithStore replaces the default in-memory cache.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		s.store = store
	}
}

// WithCacheTTL sets the expiry of the default cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.cacheTTL = ttl
	}
}

// WithCacheCleanupInterval sets the purge interval of the default cache.
func WithCacheCleanupInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.cacheCleanup = interval
		}
	}
}

// WithDefaultSort sets the sort mode used when a request names none.
// Unknown modes are ignored.
func WithDefaultSort(mode string) Option {
	return func(s *Service) {
		if m, err := ranking.ParseSortMode(mode); err == nil {
			s.defaultSort = m
		}
	}
}

// WithDefaultDisplay sets the display mode used when a request names none.
// Unknown modes are ignored.
func WithDefaultDisplay(display string) Option {
	return func(s *Service) {
		if d, err := ParseDisplay(display); err == nil && d != "" {
			s.defaultDisplay = d
		}
	}
}

// WithFilterMode selects where borough and cuisine filters are applied.
// Unknown modes are ignored.
func WithFilterMode(mode string) Option {
	return func(s *Service) {
		if m, err := ParseFilterMode(mode); err == nil {
			s.filterMode = m
		}
	}
}

// WithMaxResults caps the number of results returned. Zero disables the cap.
func WithMaxResults(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxResults = n
		}
	}
}

// WithFetchTimeout bounds a shared upstream search. The shared call outlives
// any single caller's cancellation, so it needs its own deadline.
func WithFetchTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.fetchTimeout = d
		}
	}
}
