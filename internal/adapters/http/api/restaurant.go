package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/safeeats/internal/domain/model"
)

// RestaurantDependencies defines the interface for detail lookups.
type RestaurantDependencies interface {
	Restaurant(ctx context.Context, id, display string) (*model.Detail, error)
}

// RestaurantHandler handles restaurant detail requests.
type RestaurantHandler struct {
	deps RestaurantDependencies
}

// NewRestaurantHandler creates a new restaurant handler.
func NewRestaurantHandler(deps RestaurantDependencies) *RestaurantHandler {
	return &RestaurantHandler{deps: deps}
}

// HandleGetRestaurant handles GET /restaurants/{id} requests.
func (h *RestaurantHandler) HandleGetRestaurant(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_restaurant"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/restaurants/"), "/")
	if strings.TrimSpace(id) == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	d, err := h.deps.Restaurant(r.Context(), id, r.URL.Query().Get("display"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, detailResponse{Detail: *d, Stars: d.Stars()})
}
