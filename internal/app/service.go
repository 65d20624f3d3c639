// Package service orchestrates the search API client, the response cache and
// the result ranker behind the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/okian/safeeats/internal/adapters/repository"
	"github.com/okian/safeeats/internal/adapters/upstream"
	"github.com/okian/safeeats/internal/domain/model"
	"github.com/okian/safeeats/internal/domain/ranking"
	"github.com/okian/safeeats/pkg/logger"
	"github.com/okian/safeeats/pkg/metrics"
)

// Upstream is the search API as consumed by the service.
type Upstream interface {
	Search(ctx context.Context, q upstream.SearchQuery) ([]model.Restaurant, error)
	Restaurant(ctx context.Context, id, display string) (*model.Detail, error)
}

// Service implements the API dependencies for restaurant lookup.
type Service struct {
	mu sync.RWMutex

	// Core components
	upstream  Upstream
	store     repository.Store
	ownsStore bool
	inflight  singleflight.Group

	// Configuration
	defaultSort    ranking.SortMode
	defaultDisplay string
	filterMode     FilterMode
	maxResults     int
	cacheTTL       time.Duration
	cacheCleanup   time.Duration
	fetchTimeout   time.Duration

	// State
	started bool

	searches      atomic.Int64
	details       atomic.Int64
	cacheHits     atomic.Int64
	upstreamCalls atomic.Int64

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		defaultSort:    ranking.DefaultSortMode,
		defaultDisplay: DisplayLetter,
		filterMode:     FilterModeUpstream,
		maxResults:     500,
		cacheTTL:       time.Minute,
		cacheCleanup:   5 * time.Minute,
		fetchTimeout:   30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.upstream == nil {
		return ErrNoUpstream
	}

	s.logger.Info(ctx, "starting lookup service...")

	if s.store == nil {
		s.store = repository.NewCacheStore(ctx,
			repository.WithTTL(s.cacheTTL),
			repository.WithCleanupInterval(s.cacheCleanup),
		)
		s.ownsStore = true
	}

	s.started = true
	s.logger.Info(ctx, "lookup service started",
		logger.String("defaultSort", string(s.defaultSort)),
		logger.String("defaultDisplay", s.defaultDisplay),
		logger.String("filterMode", string(s.filterMode)),
		logger.Int("maxResults", s.maxResults),
		logger.Duration("cacheTTL", s.cacheTTL),
	)
	return nil
}

// Stop shuts down the service and releases the cache it created.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping lookup service...")

	if s.ownsStore && s.store != nil {
		if closer, ok := s.store.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
		s.store = nil
		s.ownsStore = false
	}

	s.started = false
	s.logger.Info(context.Background(), "lookup service stopped")
}

func (s *Service) components() (Upstream, repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, nil, ErrNotStarted
	}
	return s.upstream, s.store, nil
}

// Search fetches, ranks and filters restaurants for req.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResult, error) {
	up, store, err := s.components()
	if err != nil {
		return nil, err
	}

	mode := s.defaultSort
	if strings.TrimSpace(req.Sort) != "" {
		if mode, err = ranking.ParseSortMode(req.Sort); err != nil {
			return nil, err
		}
	}
	grade, err := ranking.ParseGrade(req.Grade)
	if err != nil {
		return nil, err
	}
	display, err := ParseDisplay(req.Display)
	if err != nil {
		return nil, err
	}
	if display == "" {
		display = s.defaultDisplay
	}
	if req.Limit < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, req.Limit)
	}

	filters := ranking.Filters{
		Borough: strings.TrimSpace(req.Borough),
		Cuisine: strings.TrimSpace(req.Cuisine),
		Grade:   grade,
	}
	query, local := s.plan(strings.TrimSpace(req.Query), filters, display)
	if query.Empty() {
		return nil, upstream.ErrEmptyQuery
	}

	s.searches.Add(1)
	results, cached, err := s.fetch(ctx, up, store, query)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	view := ranking.Apply(results, mode, local)
	metrics.RecordRankingLatency(float64(time.Since(start).Microseconds()))

	out := &SearchResult{
		Sort:    mode,
		Display: display,
		Filters: filters,
		Facets:  view.Facets,
		Total:   view.Total,
		Matched: len(view.Results),
		Results: truncate(view.Results, s.limit(req.Limit)),
		Cached:  cached,
	}
	metrics.RecordSearch(string(mode), len(out.Results))

	s.logger.Debug(ctx, "search served",
		logger.String("query", upstream.BuildSearchQuery(query)),
		logger.String("sort", string(mode)),
		logger.Int("total", out.Total),
		logger.Int("matched", out.Matched),
		logger.Bool("cached", cached),
	)
	return out, nil
}

// plan splits filters into the part sent upstream and the part evaluated in
// memory, according to the filter mode.
func (s *Service) plan(q string, f ranking.Filters, display string) (upstream.SearchQuery, ranking.Filters) {
	query := upstream.SearchQuery{Q: q, Display: display}

	if s.filterMode == FilterModeClient {
		if q == "" {
			query.Borough = f.Borough
			query.Cuisine = f.Cuisine
		}
		return query, f
	}

	query.Borough = f.Borough
	query.Cuisine = f.Cuisine
	return query, ranking.Filters{Grade: f.Grade}
}

func (s *Service) fetch(ctx context.Context, up Upstream, store repository.Store, q upstream.SearchQuery) ([]model.Restaurant, bool, error) {
	key := upstream.BuildSearchQuery(q)
	results, err := store.GetResults(ctx, key)
	if err == nil {
		s.cacheHits.Add(1)
		return results, true, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Warn(ctx, "cache lookup failed", logger.Error(err))
	}

	// Concurrent identical searches share one upstream call. It runs detached
	// from the caller that started it; each caller stops waiting on its own
	// cancellation only.
	ch := s.inflight.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
		defer cancel()

		s.upstreamCalls.Add(1)
		fetched, err := up.Search(fetchCtx, q)
		if err != nil {
			return nil, err
		}
		store.PutResults(fetchCtx, key, fetched)
		return fetched, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
	if res.Err != nil {
		s.logger.Warn(ctx, "upstream search failed",
			logger.String("query", key),
			logger.Error(res.Err),
		)
		return nil, false, res.Err
	}
	return model.CloneAll(res.Val.([]model.Restaurant)), false, nil
}

// Restaurant returns one restaurant with its inspection history.
func (s *Service) Restaurant(ctx context.Context, id, display string) (*model.Detail, error) {
	up, store, err := s.components()
	if err != nil {
		return nil, err
	}
	display, err = ParseDisplay(display)
	if err != nil {
		return nil, err
	}
	if display == "" {
		display = s.defaultDisplay
	}
	id = strings.TrimSpace(id)

	s.details.Add(1)
	metrics.RecordDetailRequest()

	if d, err := store.GetDetail(ctx, id, display); err == nil {
		s.cacheHits.Add(1)
		return d, nil
	}

	s.upstreamCalls.Add(1)
	d, err := up.Restaurant(ctx, id, display)
	if err != nil {
		s.logger.Warn(ctx, "upstream detail failed",
			logger.String("id", id),
			logger.Error(err),
		)
		return nil, err
	}
	store.PutDetail(ctx, id, display, d)
	return d, nil
}

func (s *Service) limit(requested int) int {
	switch {
	case requested > 0 && (s.maxResults == 0 || requested < s.maxResults):
		return requested
	default:
		return s.maxResults
	}
}

func truncate(results []model.Restaurant, n int) []model.Restaurant {
	if n > 0 && len(results) > n {
		return results[:n]
	}
	return results
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"defaultSort":    string(s.defaultSort),
		"defaultDisplay": s.defaultDisplay,
		"filterMode":     string(s.filterMode),
		"maxResults":     s.maxResults,
		"searches":       s.searches.Load(),
		"details":        s.details.Load(),
		"cacheHits":      s.cacheHits.Load(),
		"upstreamCalls":  s.upstreamCalls.Load(),
	}

	if s.started && s.store != nil {
		entries := s.store.Count(context.Background())
		stats["cacheEntries"] = entries
		metrics.UpdateCacheEntries(entries)
	}
	return stats
}
