package upstream

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/okian/safeeats/internal/domain/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type resultsEnvelope struct {
	Results []model.Restaurant `json:"results"`
}

type errorBody struct {
	Detail any `json:"detail"`
}

// DecodeResults decodes a search response. The API returns either a bare
// array or an object with a "results" array; null, {} and an object without
// "results" decode to an empty list.
func DecodeResults(data []byte) ([]model.Restaurant, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return []model.Restaurant{}, nil
	}

	var out []model.Restaurant
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &out); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	case '{':
		var env resultsEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
		out = env.Results
	default:
		return nil, fmt.Errorf("%w: unexpected payload starting with %q", ErrDecode, data[0])
	}
	if out == nil {
		out = []model.Restaurant{}
	}
	for i := range out {
		dropEmptyInspection(&out[i])
	}
	return out, nil
}

// DecodeDetail decodes a single restaurant record with its inspections.
func DecodeDetail(data []byte) (*model.Detail, error) {
	var d model.Detail
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if d.Inspections == nil {
		d.Inspections = []model.InspectionSummary{}
	}
	dropEmptyInspection(&d.Restaurant)
	return &d, nil
}

// dropEmptyInspection clears a latest inspection that carried nothing, such
// as one sent as a bare string.
func dropEmptyInspection(r *model.Restaurant) {
	if r.LatestInspection.Empty() {
		r.LatestInspection = nil
	}
}

// errorMessage extracts the user-visible message from an error response.
func errorMessage(status int, data []byte) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		if s, ok := body.Detail.(string); ok && s != "" {
			return s
		}
	}
	return statusText(status)
}
