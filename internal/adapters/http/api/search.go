package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/safeeats/internal/app"
)

// SearchDependencies defines the interface for search operations.
type SearchDependencies interface {
	Search(ctx context.Context, req service.SearchRequest) (*service.SearchResult, error)
}

// searchParams mirrors the query parameters of GET /search.
type searchParams struct {
	Q       string `validate:"max=200"`
	Borough string `validate:"max=64"`
	Cuisine string `validate:"max=64"`
	Grade   string `validate:"omitempty,oneof=A B C a b c"`
	Sort    string `validate:"omitempty,oneof=name_asc name_desc stars_asc stars_desc grade_asc grade_desc score_asc score_desc"`
	Display string `validate:"omitempty,oneof=letter stars"`
	Limit   int    `validate:"gte=0"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func paramValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// SearchHandler handles search requests.
type SearchHandler struct {
	deps     SearchDependencies
	maxLimit int
}

// NewSearchHandler creates a new search handler. A non-positive maxLimit
// leaves the limit parameter unbounded.
func NewSearchHandler(deps SearchDependencies, maxLimit int) *SearchHandler {
	return &SearchHandler{deps: deps, maxLimit: maxLimit}
}

// HandleSearch handles GET /search requests.
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	const op = "api.search"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	p := searchParams{
		Q:       strings.TrimSpace(q.Get("q")),
		Borough: strings.TrimSpace(q.Get("borough")),
		Cuisine: strings.TrimSpace(q.Get("cuisine")),
		Grade:   strings.TrimSpace(q.Get("grade")),
		Sort:    strings.ToLower(strings.TrimSpace(q.Get("sort"))),
		Display: strings.ToLower(strings.TrimSpace(q.Get("display"))),
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		p.Limit = n
	}
	if err := paramValidator().Struct(p); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if h.maxLimit > 0 && p.Limit > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
		return
	}

	res, err := h.deps.Search(r.Context(), service.SearchRequest{
		Query:   p.Q,
		Borough: p.Borough,
		Cuisine: p.Cuisine,
		Grade:   p.Grade,
		Sort:    p.Sort,
		Display: p.Display,
		Limit:   p.Limit,
	})
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, newSearchResponse(res))
}
