package upstream

import (
	"net/url"
	"strings"
)

// Wildcard is sent as q when a search has filters but no name text.
const Wildcard = "*"

// SearchQuery holds the parameters of one search request.
type SearchQuery struct {
	Q       string
	Borough string
	Cuisine string
	// Display selects the API's display mode ("letter" or "stars").
	Display string
}

// Empty reports whether the query has nothing to search by.
func (q SearchQuery) Empty() bool {
	return strings.TrimSpace(q.Q) == "" &&
		strings.TrimSpace(q.Borough) == "" &&
		strings.TrimSpace(q.Cuisine) == ""
}

// Values returns the recognized query parameters with blanks omitted.
func (q SearchQuery) Values() url.Values {
	v := url.Values{}
	name := strings.TrimSpace(q.Q)
	borough := strings.TrimSpace(q.Borough)
	cuisine := strings.TrimSpace(q.Cuisine)
	if name == "" && (borough != "" || cuisine != "") {
		name = Wildcard
	}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set("q", name)
	set("borough", borough)
	set("cuisine", cuisine)
	set("display", strings.TrimSpace(q.Display))
	return v
}

// BuildSearchQuery encodes q as a query string with keys in sorted order.
func BuildSearchQuery(q SearchQuery) string {
	return q.Values().Encode()
}
