package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyellow/course-eligibility-go/internal/conflict"
	"github.com/garyellow/course-eligibility-go/internal/subject"
)

const (
	opAvailability = "availability"
	opNormalize    = "normalize"

	suggestionsPerName = 3
)

type availabilityRequest struct {
	Chosen     []string `json:"chosen" binding:"max=200,dive,max=120"`
	Candidates []string `json:"candidates" binding:"required,max=200,dive,max=120"`
}

type candidateStatus struct {
	Name     string `json:"name"`
	Disabled bool   `json:"disabled"`
	Reason   string `json:"reason,omitempty"`
}

type availabilityResponse struct {
	Candidates   []candidateStatus `json:"candidates"`
	HasConflicts bool              `json:"has_conflicts"`
	Conflicts    []string          `json:"conflicts"`
}

// subjectAvailability handles POST /api/v1/subjects/availability: which
// candidate subjects can still be added to the chosen set.
func (h *Handler) subjectAvailability(c *gin.Context) {
	start := time.Now()

	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, opAvailability, err)
		return
	}

	v := conflict.New(req.Chosen)
	resp := availabilityResponse{
		Candidates: make([]candidateStatus, 0, len(req.Candidates)),
		Conflicts:  v.Conflicts(),
	}
	if resp.Conflicts == nil {
		resp.Conflicts = []string{}
	}
	resp.HasConflicts = len(resp.Conflicts) > 0

	for _, name := range req.Candidates {
		reason, disabled := v.DisabledReason(name)
		resp.Candidates = append(resp.Candidates, candidateStatus{
			Name:     name,
			Disabled: disabled,
			Reason:   reason,
		})
	}

	h.recordEvaluation(opAvailability, "success", start)
	c.JSON(http.StatusOK, resp)
}

type normalizeRequest struct {
	Names []string `json:"names" binding:"required,max=200,dive,max=120"`
}

type normalizedName struct {
	Name        string               `json:"name"`
	Canonical   string               `json:"canonical"`
	Display     string               `json:"display"`
	Recognized  bool                 `json:"recognized"`
	Language    *subject.Language    `json:"language,omitempty"`
	Suggestions []subject.Suggestion `json:"suggestions,omitempty"`
}

// normalizeSubjects handles POST /api/v1/subjects/normalize.
func (h *Handler) normalizeSubjects(c *gin.Context) {
	start := time.Now()

	var req normalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, opNormalize, err)
		return
	}

	out := make([]normalizedName, 0, len(req.Names))
	for _, name := range req.Names {
		n := normalizedName{
			Name:       name,
			Canonical:  subject.Normalize(name),
			Display:    subject.DisplayName(name),
			Recognized: subject.IsRecognized(name),
		}
		if lang := subject.ParseLanguageLevel(name); lang.Level != subject.AnyLevel && subject.IsLanguageFamily(lang.Family) {
			n.Language = &lang
		}
		if !n.Recognized {
			n.Suggestions = subject.Suggest(name, suggestionsPerName)
		}
		out = append(out, n)
	}

	h.recordEvaluation(opNormalize, "success", start)
	c.JSON(http.StatusOK, gin.H{"subjects": out})
}
