package ranking

import (
	"fmt"
	"strings"

	"github.com/okian/safeeats/internal/domain/model"
	"github.com/okian/safeeats/internal/domain/rating"
)

// Filters holds the client-side predicates. A zero value accepts everything.
type Filters struct {
	// Borough matches result.borough exactly (case-sensitive).
	Borough string `json:"borough,omitempty"`
	// Cuisine is a case-insensitive substring of cuisine_description or name.
	Cuisine string `json:"cuisine,omitempty"`
	// Grade matches latest_inspection.grade exactly.
	Grade string `json:"grade,omitempty"`
}

// Active reports whether any predicate is set.
func (f Filters) Active() bool {
	return f.Borough != "" || f.Cuisine != "" || f.Grade != ""
}

// WithGrade returns a copy with the grade filter toggled by selected.
func (f Filters) WithGrade(selected string) Filters {
	f.Grade = ToggleGrade(selected, f.Grade)
	return f
}

// ToggleGrade returns the grade filter after selecting selected while current
// is active: selecting the active grade clears it.
func ToggleGrade(selected, current string) string {
	if selected == current {
		return ""
	}
	return selected
}

// ParseGrade validates a grade filter value. Blank input clears the filter.
func ParseGrade(s string) (string, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	if !rating.IsGrade(s) {
		return "", fmt.Errorf("%w: %q", ErrUnknownGrade, s)
	}
	return s, nil
}

// Matches reports whether r satisfies every active predicate of f.
func Matches(r *model.Restaurant, f Filters) bool {
	if f.Borough != "" && r.Borough != f.Borough {
		return false
	}
	if f.Cuisine != "" {
		needle := strings.ToLower(f.Cuisine)
		if !strings.Contains(strings.ToLower(r.CuisineDescription), needle) &&
			!strings.Contains(strings.ToLower(r.Name), needle) {
			return false
		}
	}
	if f.Grade != "" && r.Grade() != f.Grade {
		return false
	}
	return true
}

// Filter returns the results matching f, in input order.
func Filter(results []model.Restaurant, f Filters) []model.Restaurant {
	out := make([]model.Restaurant, 0, len(results))
	for i := range results {
		if Matches(&results[i], f) {
			out = append(out, results[i])
		}
	}
	return out
}
