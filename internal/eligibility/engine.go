// Package eligibility matches a student's results against a programme
// catalog. It composes subject normalization, APS scoring and requirement
// matching into ranked CourseMatch lists and full evaluation reports.
//
// The Engine holds only read-only collaborators and is safe for concurrent
// use; every call is a pure function of its arguments.
package eligibility

import (
	"fmt"
	"sort"

	"github.com/garyellow/course-eligibility-go/internal/catalog"
	"github.com/garyellow/course-eligibility-go/internal/requirement"
	"github.com/garyellow/course-eligibility-go/internal/scoring"
	"github.com/garyellow/course-eligibility-go/internal/subject"
)

// DefaultFallbackCutoff is the number of qualifying university programmes
// below which college programmes are added to the results.
const DefaultFallbackCutoff = 5

// Options configures an Engine.
type Options struct {
	// FallbackCutoff is compared against the qualifying primary matches;
	// colleges are evaluated only when fewer qualify. Zero never evaluates
	// colleges.
	FallbackCutoff int
	// OnlyQualifying drops non-qualifying matches from the results.
	OnlyQualifying bool
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{FallbackCutoff: DefaultFallbackCutoff}
}

// CourseMatch is the evaluation of one programme for one student.
type CourseMatch struct {
	Course          string       `json:"course"`
	ProgramID       string       `json:"program_id"`
	Faculty         string       `json:"faculty,omitempty"`
	Institution     string       `json:"institution"`
	InstitutionID   string       `json:"institution_id"`
	InstitutionKind catalog.Kind `json:"institution_kind"`

	// MeetsRequirements is true only when the score threshold and every
	// subject requirement are met, that is when MissingRequirements is
	// empty. An unmet threshold is listed as "APS <required> (have <n>)"
	// after the subject requirements.
	MeetsRequirements      bool     `json:"meets_requirements"`
	MissingRequirements    []string `json:"missing_requirements"`
	MetRequirements        []string `json:"met_requirements"`
	UnverifiedRequirements []string `json:"unverified_requirements,omitempty"`

	MeetsScore    bool   `json:"meets_score"`
	StudentScore  int    `json:"student_score"`
	RequiredScore int    `json:"required_score"`
	ScoringRule   string `json:"scoring_rule,omitempty"`
}

// ScoreShortfall returns how many points the student lacks, 0 when the
// threshold is met.
func (m CourseMatch) ScoreShortfall() int {
	return max(0, m.RequiredScore-m.StudentScore)
}

// Engine evaluates students against catalogs.
type Engine struct {
	registry *scoring.Registry
	matcher  requirement.Matcher
	opts     Options
}

// NewEngine creates an engine. A nil registry uses the built-in rules with
// default APS options.
func NewEngine(registry *scoring.Registry, matcher requirement.Matcher, opts Options) *Engine {
	if registry == nil {
		registry = scoring.NewRegistry(scoring.Options{})
	}
	return &Engine{registry: registry, matcher: matcher, opts: opts}
}

// Options returns the engine's options.
func (e *Engine) Options() Options {
	return e.opts
}

// Registry returns the scoring rules the engine resolves against.
func (e *Engine) Registry() *scoring.Registry {
	return e.registry
}

// WithOptions returns a copy of the engine using opts.
func (e *Engine) WithOptions(opts Options) *Engine {
	cp := *e
	cp.opts = opts
	return &cp
}

// Score returns the student's score under the named rule; unknown names
// use the default rule.
func (e *Engine) Score(subjects []subject.Subject, rule string) int {
	return e.registry.Resolve(rule).Score(subject.Deduplicate(subjects))
}

// FindMatches evaluates every programme with a positive minimum score.
// University programmes always form the primary pool; college programmes
// are evaluated only when fewer than FallbackCutoff primary programmes
// qualify. Qualifying matches come first, then higher required scores;
// ties keep catalog order.
func (e *Engine) FindMatches(subjects []subject.Subject, institutions []catalog.Institution) []CourseMatch {
	subjects = subject.Deduplicate(subjects)
	idx := subject.NewIndex(subjects)
	scores := make(map[string]int)

	var primary, secondary []catalog.Institution
	for _, inst := range institutions {
		if inst.Kind == catalog.KindCollege {
			secondary = append(secondary, inst)
		} else {
			primary = append(primary, inst)
		}
	}

	matches := e.evaluatePool(idx, primary, scores)
	if countQualifying(matches) < e.opts.FallbackCutoff {
		matches = append(matches, e.evaluatePool(idx, secondary, scores)...)
	}

	if e.opts.OnlyQualifying {
		kept := matches[:0]
		for _, m := range matches {
			if m.MeetsRequirements {
				kept = append(kept, m)
			}
		}
		matches = kept
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].MeetsRequirements != matches[j].MeetsRequirements {
			return matches[i].MeetsRequirements
		}
		return matches[i].RequiredScore > matches[j].RequiredScore
	})
	return matches
}

func (e *Engine) evaluatePool(idx *subject.Index, pool []catalog.Institution, scores map[string]int) []CourseMatch {
	var matches []CourseMatch
	for _, inst := range pool {
		for i := range inst.Programs {
			p := &inst.Programs[i]
			if p.Requirements.MinScore <= 0 {
				continue
			}

			score, ok := scores[p.ScoringRule]
			if !ok {
				score = e.registry.Resolve(p.ScoringRule).Score(idx.Subjects())
				scores[p.ScoringRule] = score
			}

			res, err := e.matcher.CheckIndex(idx, &p.Requirements)
			if err != nil {
				continue
			}

			meetsScore := score >= p.Requirements.MinScore
			if !meetsScore {
				res.Missing = append(res.Missing, scoreShortfall(p.Requirements.MinScore, score))
			}
			matches = append(matches, CourseMatch{
				Course:                 p.Name,
				ProgramID:              p.ID,
				Faculty:                p.Faculty,
				Institution:            inst.Name,
				InstitutionID:          inst.ID,
				InstitutionKind:        inst.Kind,
				MeetsRequirements:      meetsScore && res.Meets,
				MissingRequirements:    res.Missing,
				MetRequirements:        res.Met,
				UnverifiedRequirements: res.Unverified,
				MeetsScore:             meetsScore,
				StudentScore:           score,
				RequiredScore:          p.Requirements.MinScore,
				ScoringRule:            p.ScoringRule,
			})
		}
	}
	return matches
}

// scoreShortfall renders an unmet score threshold as a missing requirement.
func scoreShortfall(required, have int) string {
	return fmt.Sprintf("APS %d (have %d)", required, have)
}

func countQualifying(matches []CourseMatch) int {
	n := 0
	for _, m := range matches {
		if m.MeetsRequirements {
			n++
		}
	}
	return n
}
