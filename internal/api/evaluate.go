package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyellow/course-eligibility-go/internal/eligibility"
	"github.com/garyellow/course-eligibility-go/internal/nsc"
	"github.com/garyellow/course-eligibility-go/internal/scoring"
	"github.com/garyellow/course-eligibility-go/internal/subject"
)

// Operation names used in metrics labels.
const (
	opEligibility = "eligibility"
	opAPS         = "aps"
	opNSC         = "nsc"
)

// Requests carry at most 40 subjects with names of at most 120 characters.
// Bigger bodies are rejected before any normalization runs.
type eligibilityRequest struct {
	Subjects       []subject.Subject `json:"subjects" binding:"required,max=40,dive"`
	OnlyQualifying bool              `json:"only_qualifying"`
}

type eligibilityResponse struct {
	eligibility.Report
	CatalogVersion string `json:"catalog_version,omitempty"`
}

// evaluate handles POST /api/v1/eligibility.
func (h *Handler) evaluate(c *gin.Context) {
	start := time.Now()

	var req eligibilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, opEligibility, err)
		return
	}

	snap, ok := h.snapshot(c, opEligibility)
	if !ok {
		return
	}

	engine := snap.Engine
	if req.OnlyQualifying {
		opts := engine.Options()
		opts.OnlyQualifying = true
		engine = engine.WithOptions(opts)
	}

	report := engine.Evaluate(req.Subjects, snap.Catalog.Institutions)

	h.recordEvaluation(opEligibility, "success", start)
	if h.metrics != nil {
		h.metrics.RecordReport(report.APS, report.Qualifying, string(report.NSC.PassLevel), len(report.Unrecognized))
	}
	h.logger.WithFields(map[string]any{
		"subjects":   len(report.Subjects),
		"aps":        report.APS,
		"matches":    len(report.Matches),
		"qualifying": report.Qualifying,
	}).DebugContext(c.Request.Context(), "Eligibility evaluated")

	c.JSON(http.StatusOK, eligibilityResponse{Report: report, CatalogVersion: snap.Info.Version})
}

type apsRequest struct {
	Subjects []subject.Subject `json:"subjects" binding:"required,max=40,dive"`
	Rule     string            `json:"rule"`
}

type apsResponse struct {
	Score int    `json:"score"`
	Rule  string `json:"rule"`
	// RuleFound is false when the requested rule is unknown and the default was used.
	RuleFound bool `json:"rule_found"`
}

// computeAPS handles POST /api/v1/aps.
func (h *Handler) computeAPS(c *gin.Context) {
	start := time.Now()

	var req apsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, opAPS, err)
		return
	}

	snap, ok := h.snapshot(c, opAPS)
	if !ok {
		return
	}

	rule := req.Rule
	_, found := snap.Engine.Registry().Lookup(rule)
	if !found || rule == "" {
		rule = scoring.RuleDefault
	}

	score := snap.Engine.Score(req.Subjects, rule)
	h.recordEvaluation(opAPS, "success", start)

	c.JSON(http.StatusOK, apsResponse{Score: score, Rule: rule, RuleFound: found})
}

type nscRequest struct {
	Subjects []subject.Subject `json:"subjects" binding:"required,max=40,dive"`
}

// evaluateNSC handles POST /api/v1/nsc. It does not need the catalog.
func (h *Handler) evaluateNSC(c *gin.Context) {
	start := time.Now()

	var req nscRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, opNSC, err)
		return
	}

	result := nsc.Evaluate(subject.Deduplicate(req.Subjects))

	h.recordEvaluation(opNSC, "success", start)
	if h.metrics != nil {
		h.metrics.RecordNSC(string(result.PassLevel))
	}
	c.JSON(http.StatusOK, result)
}
