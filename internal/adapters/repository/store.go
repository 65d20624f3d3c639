// Package repository caches fetched search results and restaurant details.
package repository

import (
	"context"

	"github.com/okian/safeeats/internal/domain/model"
)

// Store provides read/write access to cached upstream responses.
type Store interface {
	// GetResults returns the cached result set for a search key.
	// Returns ErrNotFound on a miss or an expired entry.
	GetResults(ctx context.Context, key string) ([]model.Restaurant, error)
	// PutResults caches a result set under a search key.
	PutResults(ctx context.Context, key string, results []model.Restaurant)

	// GetDetail returns the cached detail for a restaurant id and display mode.
	// Returns ErrNotFound on a miss or an expired entry.
	GetDetail(ctx context.Context, id, display string) (*model.Detail, error)
	// PutDetail caches a detail record.
	PutDetail(ctx context.Context, id, display string, d *model.Detail)

	// Count returns the number of live entries.
	Count(ctx context.Context) int
	// Flush drops every entry.
	Flush(ctx context.Context)
}
