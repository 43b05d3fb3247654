package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyellow/course-eligibility-go/internal/catalog"
	"github.com/garyellow/course-eligibility-go/internal/search"
)

const (
	opSearch  = "search"
	opCatalog = "catalog"
)

type searchResponse struct {
	Query string       `json:"query"`
	Hits  []search.Hit `json:"hits"`
}

// searchPrograms handles GET /api/v1/programs/search?q=&limit=.
func (h *Handler) searchPrograms(c *gin.Context) {
	start := time.Now()

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		h.recordError("bad_request", opSearch)
		h.abort(c, http.StatusBadRequest, "query parameter q is required")
		return
	}

	limit := h.searchLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			h.recordError("bad_request", opSearch)
			h.abort(c, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxSearchLimit)
	}

	snap, ok := h.snapshot(c, opSearch)
	if !ok {
		return
	}

	hits, err := snap.Index.Search(query, limit)
	if err != nil {
		h.recordEvaluation(opSearch, "error", start)
		h.internalError(c, opSearch, err)
		return
	}
	if hits == nil {
		hits = []search.Hit{}
	}

	h.recordEvaluation(opSearch, "success", start)
	c.JSON(http.StatusOK, searchResponse{Query: query, Hits: hits})
}

type catalogSummary struct {
	Version      string         `json:"version,omitempty"`
	ImportedAt   *time.Time     `json:"imported_at,omitempty"`
	LoadedAt     time.Time      `json:"loaded_at"`
	Institutions int            `json:"institutions"`
	Programs     int            `json:"programs"`
	ByKind       map[string]int `json:"programs_by_kind"`
	ScoringRules []string       `json:"scoring_rules"`
}

// catalogSummary handles GET /api/v1/catalog.
func (h *Handler) catalogSummary(c *gin.Context) {
	snap, ok := h.snapshot(c, opCatalog)
	if !ok {
		return
	}

	institutions, programs := snap.Catalog.Count()
	summary := catalogSummary{
		Version:      snap.Info.Version,
		LoadedAt:     snap.LoadedAt,
		Institutions: institutions,
		Programs:     programs,
		ByKind: map[string]int{
			string(catalog.KindUniversity): 0,
			string(catalog.KindCollege):    0,
		},
		ScoringRules: snap.Engine.Registry().Names(),
	}
	if !snap.Info.ImportedAt.IsZero() {
		t := snap.Info.ImportedAt
		summary.ImportedAt = &t
	}
	for _, inst := range snap.Catalog.Institutions {
		summary.ByKind[string(inst.Kind)] += len(inst.Programs)
	}

	c.JSON(http.StatusOK, summary)
}
