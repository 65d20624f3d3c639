package repository

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/okian/safeeats/internal/domain/model"
	"github.com/okian/safeeats/pkg/metrics"
)

const (
	kindSearch = "search"
	kindDetail = "detail"
)

// CacheStore is an in-memory Store with per-entry expiry.
type CacheStore struct {
	cache *gocache.Cache

	ttl                   time.Duration
	cleanupInterval       time.Duration
	metricsUpdateInterval time.Duration

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

var _ Store = (*CacheStore)(nil)

// NewCacheStore creates a store and starts its metrics updater, which runs
// until ctx is done or Close is called.
func NewCacheStore(ctx context.Context, opts ...Option) *CacheStore {
	s := &CacheStore{
		ttl:                   time.Minute,
		cleanupInterval:       5 * time.Minute,
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	expiry := s.ttl
	if expiry <= 0 {
		expiry = gocache.NoExpiration
	}
	s.cache = gocache.New(expiry, s.cleanupInterval)

	s.startMetricsUpdater(ctx)
	return s
}

// SearchKey returns the cache key for an encoded search query.
func SearchKey(query string) string { return kindSearch + ":" + query }

// DetailKey returns the cache key for a restaurant detail.
func DetailKey(id, display string) string { return kindDetail + ":" + display + ":" + id }

// GetResults implements Store.GetResults.
func (s *CacheStore) GetResults(_ context.Context, key string) ([]model.Restaurant, error) {
	v, ok := s.cache.Get(SearchKey(key))
	metrics.RecordCacheLookup(kindSearch, ok)
	if !ok {
		return nil, ErrNotFound
	}
	results, ok := v.([]model.Restaurant)
	if !ok {
		return nil, ErrNotFound
	}
	return model.CloneAll(results), nil
}

// PutResults implements Store.PutResults.
func (s *CacheStore) PutResults(_ context.Context, key string, results []model.Restaurant) {
	s.cache.SetDefault(SearchKey(key), model.CloneAll(results))
}

// GetDetail implements Store.GetDetail.
func (s *CacheStore) GetDetail(_ context.Context, id, display string) (*model.Detail, error) {
	v, ok := s.cache.Get(DetailKey(id, display))
	metrics.RecordCacheLookup(kindDetail, ok)
	if !ok {
		return nil, ErrNotFound
	}
	d, ok := v.(*model.Detail)
	if !ok {
		return nil, ErrNotFound
	}
	return d.Clone(), nil
}

// PutDetail implements Store.PutDetail.
func (s *CacheStore) PutDetail(_ context.Context, id, display string, d *model.Detail) {
	if d == nil {
		return
	}
	s.cache.SetDefault(DetailKey(id, display), d.Clone())
}

// Count implements Store.Count. Expired entries not yet purged are counted.
func (s *CacheStore) Count(_ context.Context) int {
	return s.cache.ItemCount()
}

// Flush implements Store.Flush.
func (s *CacheStore) Flush(_ context.Context) {
	s.cache.Flush()
	metrics.UpdateCacheEntries(0)
}

// Close stops the metrics updater. It is safe to call more than once.
func (s *CacheStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

func (s *CacheStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateCacheEntries(s.cache.ItemCount())
			}
		}
	}()
}
