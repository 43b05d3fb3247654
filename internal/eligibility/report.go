package eligibility

import (
	"github.com/garyellow/course-eligibility-go/internal/catalog"
	"github.com/garyellow/course-eligibility-go/internal/conflict"
	"github.com/garyellow/course-eligibility-go/internal/nsc"
	"github.com/garyellow/course-eligibility-go/internal/scoring"
	"github.com/garyellow/course-eligibility-go/internal/subject"
)

// maxSuggestions bounds the suggestions offered per unrecognized subject.
const maxSuggestions = 3

// SubjectResult describes one subject after deduplication.
type SubjectResult struct {
	Name        string               `json:"name"`
	Canonical   string               `json:"canonical"`
	Display     string               `json:"display"`
	Percentage  float64              `json:"percentage"`
	Valid       bool                 `json:"valid"`
	Level       int                  `json:"level"`
	Language    subject.Level        `json:"language_level,omitempty"`
	Recognized  bool                 `json:"recognized"`
	Suggestions []subject.Suggestion `json:"suggestions,omitempty"`
}

// Report bundles everything computed for one student.
type Report struct {
	Subjects  []SubjectResult `json:"subjects"`
	APS       int             `json:"aps"`
	NSC       nsc.Result      `json:"nsc"`
	Conflicts []string        `json:"conflicts"`
	// Unrecognized lists subject names that fell back to literal comparison.
	Unrecognized []string      `json:"unrecognized"`
	Matches      []CourseMatch `json:"matches"`
	Qualifying   int           `json:"qualifying"`
}

// Evaluate computes the full report: per-subject levels, the default APS,
// the NSC pass level, subject conflicts, unrecognized names with
// suggestions and the ranked programme matches.
func (e *Engine) Evaluate(subjects []subject.Subject, institutions []catalog.Institution) Report {
	deduped := subject.Deduplicate(subjects)
	scale := e.matcher.Scale

	report := Report{
		Subjects:     make([]SubjectResult, 0, len(deduped)),
		APS:          e.registry.Resolve(scoring.RuleDefault).Score(deduped),
		NSC:          nsc.Evaluate(deduped),
		Conflicts:    conflict.New(subject.Names(deduped)).Conflicts(),
		Unrecognized: make([]string, 0),
		Matches:      e.FindMatches(deduped, institutions),
	}
	if report.Conflicts == nil {
		report.Conflicts = make([]string, 0)
	}

	for _, s := range deduped {
		canonical := s.Canonical()
		r := SubjectResult{
			Name:       s.Name,
			Canonical:  canonical,
			Display:    subject.DisplayName(canonical),
			Percentage: s.Percentage,
			Valid:      s.Valid(),
			Level:      scale.Level(s.Percentage),
			Recognized: subject.IsRecognized(s.Name),
		}
		if lang := subject.ParseLanguageLevel(s.Name); lang.Level != subject.AnyLevel && subject.IsLanguageFamily(lang.Family) {
			r.Language = lang.Level
		}
		if !r.Recognized {
			r.Suggestions = subject.Suggest(s.Name, maxSuggestions)
			report.Unrecognized = append(report.Unrecognized, s.Name)
		}
		report.Subjects = append(report.Subjects, r)
	}

	report.Qualifying = countQualifying(report.Matches)
	return report
}
