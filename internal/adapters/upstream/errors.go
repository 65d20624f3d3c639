package upstream

import (
	"errors"
	"fmt"
)

// Sentinel kinds for upstream errors.
var (
	ErrEmptyQuery     = errors.New("search requires a name, borough or cuisine")
	ErrDecode         = errors.New("failed to decode upstream response")
	ErrTransport      = errors.New("upstream request failed")
	ErrInvalidBaseURL = errors.New("invalid upstream base url")
)

// APIError is a non-2xx response from the search API.
type APIError struct {
	Status int
	// Message is the single user-visible description: the "detail" field of
	// a JSON error body, or the HTTP status text.
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.Status, e.Message)
}

// StatusOf returns the upstream HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
