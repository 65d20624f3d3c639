package repository

import "time"

// Option applies a configuration option to the CacheStore.
type Option func(*CacheStore)

// WithTTL sets how long entries stay valid. A non-positive ttl keeps
// entries until they are flushed.
func WithTTL(ttl time.Duration) Option {
	return func(s *CacheStore) {
		s.ttl = ttl
	}
}

// WithCleanupInterval sets how often expired entries are purged.
func WithCleanupInterval(interval time.Duration) Option {
	return func(s *CacheStore) {
		if interval > 0 {
			s.cleanupInterval = interval
		}
	}
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *CacheStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}
