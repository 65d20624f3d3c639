// Package rating normalizes the rating signals carried by search results:
// star ratings, inspection letter grades and inspection scores.
package rating

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Star rating bounds.
const (
	MinStars = 0
	MaxStars = 4
)

// MissingScore is the sort key of an unknown inspection score. Scores are
// "lower is better", so the sentinel ranks an unknown score as worst.
const MissingScore = 999

// UnknownGradeRank ranks a missing or unrecognized grade after C in both
// grade orderings.
const UnknownGradeRank = 4

// NormalizeStars maps any rating value to an integer in [MinStars, MaxStars].
// Nil, non-numeric and non-finite input yield MinStars. Finite numbers are
// clamped and then rounded half up.
func NormalizeStars(value any) int {
	f, ok := toFloat(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return MinStars
	}
	f = math.Max(MinStars, math.Min(MaxStars, f))
	return int(math.Floor(f + 0.5))
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case *float64:
		if v == nil {
			return 0, false
		}
		return *v, true
	case *int:
		if v == nil {
			return 0, false
		}
		return float64(*v), true
	default:
		return 0, false
	}
}

// GradeRankAscending ranks A=1, B=2, C=3, anything else UnknownGradeRank.
func GradeRankAscending(grade string) int {
	switch grade {
	case "A":
		return 1
	case "B":
		return 2
	case "C":
		return 3
	default:
		return UnknownGradeRank
	}
}

// GradeRankDescending ranks C=1, B=2, A=3, anything else UnknownGradeRank.
func GradeRankDescending(grade string) int {
	switch grade {
	case "C":
		return 1
	case "B":
		return 2
	case "A":
		return 3
	default:
		return UnknownGradeRank
	}
}

// ScoreKey returns the sort key of an inspection score.
func ScoreKey(score int, known bool) int {
	if !known {
		return MissingScore
	}
	return score
}

// IsGrade reports whether grade is one of the letter grades A, B or C.
func IsGrade(grade string) bool {
	return GradeRankAscending(grade) != UnknownGradeRank
}
