package service

import (
	"fmt"
	"strings"

	"github.com/okian/safeeats/internal/domain/model"
	"github.com/okian/safeeats/internal/domain/ranking"
)

// Display modes understood by the search API.
const (
	DisplayLetter = "letter"
	DisplayStars  = "stars"
)

// FilterMode selects where borough and cuisine predicates are evaluated.
type FilterMode string

const (
	// FilterModeUpstream sends borough and cuisine to the search API and
	// filters only by grade in memory.
	FilterModeUpstream FilterMode = "upstream"
	// FilterModeClient fetches by name and evaluates every predicate in
	// memory, so changing filters never refetches.
	FilterModeClient FilterMode = "client"
)

// ParseDisplay validates a display mode. Blank input returns "".
func ParseDisplay(s string) (string, error) {
	switch d := strings.ToLower(strings.TrimSpace(s)); d {
	case "", DisplayLetter, DisplayStars:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDisplay, s)
	}
}

// ParseFilterMode validates a filter mode.
func ParseFilterMode(s string) (FilterMode, error) {
	switch m := FilterMode(strings.ToLower(strings.TrimSpace(s))); m {
	case FilterModeUpstream, FilterModeClient:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFilterMode, s)
	}
}

// SearchRequest is one search as issued by a caller.
type SearchRequest struct {
	Query   string
	Borough string
	Cuisine string
	Grade   string
	Sort    string
	Display string
	// Limit caps the returned results. Zero means the service maximum.
	Limit int
}

// SearchResult is a ranked, filtered search response.
type SearchResult struct {
	Sort    ranking.SortMode
	Display string
	Filters ranking.Filters
	Facets  ranking.Facets
	// Total is the number of results fetched before filtering.
	Total int
	// Matched is the number of results passing the filters, before Limit.
	Matched int
	Results []model.Restaurant
	Cached  bool
}
