package ranking

import (
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/okian/safeeats/internal/domain/model"
)

// View is an ordered, filtered projection of one result set.
type View struct {
	Sort    SortMode
	Filters Filters
	// Total is the size of the result set before filtering.
	Total   int
	Results []model.Restaurant
	Facets  Facets
}

// Facets lists the distinct categorical values of a result set, used to
// populate filter choices.
type Facets struct {
	Boroughs []string `json:"boroughs"`
	Cuisines []string `json:"cuisines"`
}

// Apply ranks results by mode and then keeps those matching f. Facets are
// computed over the unfiltered set so choices do not vanish once selected.
func Apply(results []model.Restaurant, mode SortMode, f Filters) View {
	return View{
		Sort:    mode,
		Filters: f,
		Total:   len(results),
		Results: Filter(Rank(results, mode), f),
		Facets:  FacetsOf(results),
	}
}

// FacetsOf returns the sorted distinct non-blank boroughs and cuisines.
func FacetsOf(results []model.Restaurant) Facets {
	boroughs := lo.Uniq(lo.FilterMap(results, func(r model.Restaurant, _ int) (string, bool) {
		b := strings.TrimSpace(r.Borough)
		return b, b != ""
	}))
	cuisines := lo.Uniq(lo.FilterMap(results, func(r model.Restaurant, _ int) (string, bool) {
		c := strings.TrimSpace(r.CuisineDescription)
		return c, c != ""
	}))
	slices.Sort(boroughs)
	slices.Sort(cuisines)
	return Facets{Boroughs: boroughs, Cuisines: cuisines}
}
