package requirement

import (
	"errors"

	"github.com/garyellow/course-eligibility-go/internal/scoring"
	"github.com/garyellow/course-eligibility-go/internal/subject"
)

// ErrNilRequirements is returned when Check is called without requirements.
var ErrNilRequirements = errors.New("requirement: nil program requirements")

// Result is the outcome of checking one programme.
type Result struct {
	Meets   bool     `json:"meets"`
	Missing []string `json:"missing"`
	Met     []string `json:"met"`
	// Unverified lists free-text requirements assumed satisfied.
	Unverified []string `json:"unverified,omitempty"`
}

// Matcher checks subject rules using Scale for achievement levels.
// The zero value uses the 7-point scale.
type Matcher struct {
	Scale scoring.Scale
}

// NewMatcher returns a Matcher on the given scale.
func NewMatcher(scale scoring.Scale) Matcher {
	return Matcher{Scale: scale}
}

// Check evaluates every subject rule in order, then the free-text
// requirements. Meets is true exactly when Missing is empty.
func (m Matcher) Check(subjects []subject.Subject, req *ProgramRequirements) (Result, error) {
	return m.CheckIndex(subject.NewIndex(subjects), req)
}

// CheckIndex is Check against prepared subjects. The engine builds one
// Index per evaluation and reuses it for every programme.
func (m Matcher) CheckIndex(idx *subject.Index, req *ProgramRequirements) (Result, error) {
	if req == nil {
		return Result{}, ErrNilRequirements
	}

	res := Result{
		Missing: make([]string, 0),
		Met:     make([]string, 0, len(req.Subjects)),
	}

	for _, r := range req.Subjects {
		if m.satisfies(idx, r) {
			res.Met = append(res.Met, r.Key())
		} else {
			res.Missing = append(res.Missing, r.String())
		}
	}

	for _, text := range req.Additional {
		a := ParseAdditional(text)
		switch {
		case !a.Numeric():
			res.Unverified = append(res.Unverified, text)
		case a.Satisfied(idx, m.Scale):
			res.Met = append(res.Met, text)
		default:
			res.Missing = append(res.Missing, text)
		}
	}

	res.Meets = len(res.Missing) == 0
	return res, nil
}

func (m Matcher) satisfies(idx *subject.Index, r Requirement) bool {
	if !r.IsAlternatives() {
		return m.meetsLevel(idx, r.Subject, r.Level)
	}
	for _, alt := range r.Alternatives {
		if m.meetsLevel(idx, alt.Subject, alt.Level) {
			return true
		}
	}
	return false
}

func (m Matcher) meetsLevel(idx *subject.Index, name string, level int) bool {
	found, ok := idx.Find(name)
	if !ok || !found.Valid() {
		return false
	}
	return m.Scale.Level(found.Percentage) >= level
}
