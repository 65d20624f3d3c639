// Package ranking orders and filters search results for display.
//
// Everything here is a pure function of (results, sort mode, filters): inputs
// are never mutated and every call derives a new slice.
package ranking

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/okian/safeeats/internal/domain/model"
	"github.com/okian/safeeats/internal/domain/rating"
)

// SortMode selects the primary ordering key and direction.
type SortMode string

// Supported sort modes.
const (
	NameAsc   SortMode = "name_asc"
	NameDesc  SortMode = "name_desc"
	StarsAsc  SortMode = "stars_asc"
	StarsDesc SortMode = "stars_desc"
	GradeAsc  SortMode = "grade_asc"
	GradeDesc SortMode = "grade_desc"
	ScoreAsc  SortMode = "score_asc"
	ScoreDesc SortMode = "score_desc"
)

// DefaultSortMode is used when no mode is requested.
const DefaultSortMode = NameAsc

// SortModes lists every supported mode.
func SortModes() []SortMode {
	return []SortMode{NameAsc, NameDesc, StarsAsc, StarsDesc, GradeAsc, GradeDesc, ScoreAsc, ScoreDesc}
}

// ParseSortMode parses a mode name. Blank input yields DefaultSortMode.
func ParseSortMode(s string) (SortMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return DefaultSortMode, nil
	}
	mode := SortMode(s)
	if !slices.Contains(SortModes(), mode) {
		return "", fmt.Errorf("%w: %q", ErrUnknownSortMode, s)
	}
	return mode, nil
}

// String implements fmt.Stringer.
func (m SortMode) String() string { return string(m) }

// Comparator compares results under one sort mode. It owns a collator and
// is not safe for concurrent use.
type Comparator struct {
	mode     SortMode
	collator *collate.Collator
}

// NewComparator returns a Comparator for mode. Unknown modes compare as NameAsc.
func NewComparator(mode SortMode) *Comparator {
	if !slices.Contains(SortModes(), mode) {
		mode = DefaultSortMode
	}
	return &Comparator{
		mode:     mode,
		collator: collate.New(language.English),
	}
}

// Compare returns -1, 0 or 1. Modes other than name_* fall back to ascending
// name order when their primary keys are equal.
func (c *Comparator) Compare(a, b *model.Restaurant) int {
	var primary int
	switch c.mode {
	case NameAsc:
		return c.names(a, b)
	case NameDesc:
		return -c.names(a, b)
	case StarsAsc:
		primary = cmp.Compare(a.Stars(), b.Stars())
	case StarsDesc:
		primary = cmp.Compare(b.Stars(), a.Stars())
	case GradeAsc:
		primary = cmp.Compare(rating.GradeRankAscending(a.Grade()), rating.GradeRankAscending(b.Grade()))
	case GradeDesc:
		primary = cmp.Compare(rating.GradeRankDescending(a.Grade()), rating.GradeRankDescending(b.Grade()))
	case ScoreAsc:
		primary = cmp.Compare(scoreKey(a), scoreKey(b))
	case ScoreDesc:
		primary = cmp.Compare(scoreKey(b), scoreKey(a))
	}
	if primary != 0 {
		return primary
	}
	return c.names(a, b)
}

func (c *Comparator) names(a, b *model.Restaurant) int {
	return c.collator.CompareString(a.Name, b.Name)
}

func scoreKey(r *model.Restaurant) int {
	return rating.ScoreKey(r.Score())
}

// Compare compares two results under mode. It allocates a collator per call;
// use a Comparator when comparing many pairs.
func Compare(a, b *model.Restaurant, mode SortMode) int {
	return NewComparator(mode).Compare(a, b)
}

// Rank returns a stably sorted copy of results. Results with equal keys keep
// their input order.
func Rank(results []model.Restaurant, mode SortMode) []model.Restaurant {
	out := make([]model.Restaurant, len(results))
	copy(out, results)

	c := NewComparator(mode)
	slices.SortStableFunc(out, func(a, b model.Restaurant) int {
		return c.Compare(&a, &b)
	})
	return out
}
