// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	service "github.com/okian/safeeats/internal/app"
	"github.com/okian/safeeats/internal/adapters/upstream"
	"github.com/okian/safeeats/internal/domain/model"
	"github.com/okian/safeeats/internal/domain/ranking"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SearchDependencies
	RestaurantDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler     *HealthHandler
	statsHandler      *StatsHandler
	searchHandler     *SearchHandler
	restaurantHandler *RestaurantHandler
}

// NewServer creates a new API server with all handlers. maxLimit bounds the
// limit query parameter of searches.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:     NewHealthHandler(),
		statsHandler:      NewStatsHandler(statsProvider),
		searchHandler:     NewSearchHandler(deps, maxLimit),
		restaurantHandler: NewRestaurantHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/search", RequestIDMiddleware(MetricsMiddleware(s.searchHandler.HandleSearch, "search")))
	mux.HandleFunc("/restaurants/", RequestIDMiddleware(MetricsMiddleware(s.restaurantHandler.HandleGetRestaurant, "restaurant")))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// restaurantDTO is a result record with its computed star rating.
type restaurantDTO struct {
	model.Restaurant
	Stars int `json:"stars"`
}

type detailResponse struct {
	model.Detail
	Stars int `json:"stars"`
}

type searchResponse struct {
	Count   int             `json:"count"`
	Total   int             `json:"total"`
	Matched int             `json:"matched"`
	Sort    string          `json:"sort"`
	Display string          `json:"display"`
	Cached  bool            `json:"cached"`
	Filters ranking.Filters `json:"filters"`
	Facets  ranking.Facets  `json:"facets"`
	Results []restaurantDTO `json:"results"`
}

func newSearchResponse(res *service.SearchResult) searchResponse {
	out := searchResponse{
		Count:   len(res.Results),
		Total:   res.Total,
		Matched: res.Matched,
		Sort:    string(res.Sort),
		Display: res.Display,
		Cached:  res.Cached,
		Filters: res.Filters,
		Facets:  res.Facets,
		Results: make([]restaurantDTO, len(res.Results)),
	}
	for i := range res.Results {
		out.Results[i] = restaurantDTO{Restaurant: res.Results[i], Stars: res.Results[i].Stars()}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps a service or upstream error to its HTTP response.
// Upstream 400 and 404 pass through; any other upstream failure is a 502.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	var apiErr *upstream.APIError
	switch {
	case errors.As(err, &apiErr):
		status, code := kindResponse(upstreamKind(apiErr.Status))
		writeMessage(w, status, code, apiErr.Message)
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case isBadRequest(err):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, upstream.ErrTransport), errors.Is(err, upstream.ErrDecode):
		writeError(w, http.StatusBadGateway, "upstream_error", WrapKind(op, ErrUpstream, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", WrapKind(op, ErrInternal, err))
	}
}

// upstreamKind classifies an upstream status. Only 400 and 404 are the
// caller's fault; everything else is a gateway failure.
func upstreamKind(status int) error {
	switch status {
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return ErrUpstream
	}
}

func kindResponse(kind error) (int, string) {
	switch {
	case errors.Is(kind, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(kind, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(kind, ErrUpstream):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func writeMessage(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func isBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest) ||
		errors.Is(err, upstream.ErrEmptyQuery) ||
		errors.Is(err, ranking.ErrUnknownSortMode) ||
		errors.Is(err, ranking.ErrUnknownGrade) ||
		errors.Is(err, service.ErrInvalidDisplay) ||
		errors.Is(err, service.ErrInvalidLimit)
}
