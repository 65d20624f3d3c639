// Package model contains domain models passed between layers.
//
// The types mirror the JSON shape of the external search API. Decoding is
// tolerant: identifiers may be strings or numbers and inspection scores may be
// null, numeric or numeric strings, so a well-formed payload never fails to
// decode because of a rating field.
package model

import (
	"github.com/okian/safeeats/internal/domain/rating"
)

// Restaurant is one search result as returned by the search API.
type Restaurant struct {
	ID                 ID     `json:"id"`
	Name               string `json:"name"`
	Address            string `json:"address,omitempty"`
	City               string `json:"city,omitempty"`
	State              string `json:"state,omitempty"`
	Zipcode            string `json:"zipcode,omitempty"`
	Phone              string `json:"phone,omitempty"`
	Borough            string `json:"borough,omitempty"`
	CuisineDescription string `json:"cuisine_description,omitempty"`

	// Rating signal. Kept raw because the API sends numbers, numeric
	// strings, letters or null depending on display mode.
	StarRating   any `json:"star_rating,omitempty"`
	DisplayValue any `json:"display_value,omitempty"`

	DisplayMode         string `json:"display_mode,omitempty"`
	DisplaySource       string `json:"display_source,omitempty"`
	RegradedLetter      string `json:"regraded_letter,omitempty"`
	OriginalAgencyGrade string `json:"original_agency_grade,omitempty"`

	LatestInspection *InspectionSummary `json:"latest_inspection,omitempty"`
}

// InspectionSummary is a single inspection, used both as the latest
// inspection of a search result and as an entry of a detail history.
type InspectionSummary struct {
	Date          string      `json:"date,omitempty"`
	Grade         string      `json:"grade,omitempty"`
	Score         OptionalInt `json:"score"`
	Summary       string      `json:"summary,omitempty"`
	ViolationCode string      `json:"violation_code,omitempty"`
	Action        string      `json:"action,omitempty"`
	CriticalFlag  string      `json:"critical_flag,omitempty"`
}

// Detail is a restaurant record extended with its inspection history,
// ordered as the API returned it (most recent first).
type Detail struct {
	Restaurant
	Inspections []InspectionSummary `json:"inspections"`
}

// Stars returns the normalized star rating, preferring star_rating over
// display_value.
func (r *Restaurant) Stars() int {
	if r.StarRating != nil {
		return rating.NormalizeStars(r.StarRating)
	}
	return rating.NormalizeStars(r.DisplayValue)
}

// Grade returns the latest inspection grade, or "" when there is none.
func (r *Restaurant) Grade() string {
	if r.LatestInspection == nil {
		return ""
	}
	return r.LatestInspection.Grade
}

// Score returns the latest inspection score and whether it is known.
func (r *Restaurant) Score() (int, bool) {
	if r.LatestInspection == nil {
		return 0, false
	}
	return r.LatestInspection.Score.Get()
}

// Clone returns a copy that shares no inspection with r.
func (r Restaurant) Clone() Restaurant {
	if r.LatestInspection != nil {
		latest := *r.LatestInspection
		r.LatestInspection = &latest
	}
	return r
}

// CloneAll deep-copies a result list. A nil list clones to an empty one.
func CloneAll(results []Restaurant) []Restaurant {
	out := make([]Restaurant, len(results))
	for i := range results {
		out[i] = results[i].Clone()
	}
	return out
}

// Clone returns a copy that shares no inspection with d.
func (d *Detail) Clone() *Detail {
	if d == nil {
		return nil
	}
	cp := Detail{Restaurant: d.Restaurant.Clone()}
	if d.Inspections != nil {
		cp.Inspections = append([]InspectionSummary(nil), d.Inspections...)
	}
	return &cp
}
