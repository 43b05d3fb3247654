// Package nsc evaluates National Senior Certificate pass levels
// (Higher Certificate, Diploma, Bachelor) from a student's subject marks.
//
// Evaluation is best effort: missing Home Language, First Additional
// Language or Life Orientation are reported as reasons and the remaining
// rules are still applied to whatever is present.
package nsc

import (
	"fmt"

	"github.com/garyellow/course-eligibility-go/internal/subject"
)

// PassLevel is the highest NSC tier a subject set satisfies.
type PassLevel string

// Pass levels, lowest to highest.
const (
	PassNone              PassLevel = "none"
	PassHigherCertificate PassLevel = "higher_certificate"
	PassDiploma           PassLevel = "diploma"
	PassBachelor          PassLevel = "bachelor"
)

// Rank orders pass levels; higher is better.
func (p PassLevel) Rank() int {
	switch p {
	case PassHigherCertificate:
		return 1
	case PassDiploma:
		return 2
	case PassBachelor:
		return 3
	default:
		return 0
	}
}

// AtLeast reports whether p is the same as or above other.
func (p PassLevel) AtLeast(other PassLevel) bool {
	return p.Rank() >= other.Rank()
}

// Reasons reported by Evaluate.
const (
	ReasonMissingHL        = "No Home Language subject found."
	ReasonMissingFAL       = "No First Additional Language subject found."
	ReasonMissingLO        = "Life Orientation not found."
	ReasonHLBelow40        = "Home Language must be at least 40%."
	ReasonLanguageForHC    = "Higher Certificate requires English or Afrikaans as Home Language or First Additional Language."
	ReasonFewerThanSixPass = "At least 6 subjects must be passed at 30% or higher."
	ReasonTwoAt40          = "At least 2 subjects other than Home Language must be 40% or higher."
	ReasonThreeAt30        = "At least 3 subjects other than Home Language must be 30% or higher."
	ReasonDiplomaThreeAt40 = "Diploma requires 3 subjects (excluding Home Language and Life Orientation) at 40% or higher."
	ReasonDiplomaTwoAt30   = "Diploma requires 2 subjects (excluding Home Language) at 30% or higher."
	ReasonBachelorFourAt50 = "Bachelor requires 4 subjects (excluding Home Language and Life Orientation) at 50% or higher."
	ReasonBachelorTwoAt30  = "Bachelor requires 2 subjects (excluding Home Language and Life Orientation) at 30% or higher."
)

const (
	minimumPassesForNSC = 6
	homeLanguageMinimum = 40.0
)

// Result is the outcome of an NSC evaluation.
type Result struct {
	MeetsBasicNSC bool      `json:"meets_basic_nsc"`
	PassLevel     PassLevel `json:"pass_level"`
	Reasons       []string  `json:"reasons"`
}

// roles holds the positions of the subjects with a fixed role, -1 when absent.
type roles struct {
	hl, fal, lo int
}

func findRoles(subjects []subject.Subject) roles {
	r := roles{hl: -1, fal: -1, lo: -1}
	for i, s := range subjects {
		lang := subject.ParseLanguageLevel(s.Name)
		switch {
		case r.hl < 0 && lang.Level == subject.HomeLanguage:
			r.hl = i
		case r.fal < 0 && lang.Level == subject.FirstAdditional:
			r.fal = i
		case r.lo < 0 && s.Canonical() == subject.LifeOrientation:
			r.lo = i
		}
	}
	return r
}

// counter counts subjects at or above a mark, skipping the given positions.
type counter struct {
	subjects []subject.Subject
}

func (c counter) atLeast(pct float64, skip ...int) int {
	n := 0
	for i, s := range c.subjects {
		if skipped(i, skip) {
			continue
		}
		if s.Valid() && s.Percentage >= pct {
			n++
		}
	}
	return n
}

func skipped(i int, skip []int) bool {
	for _, k := range skip {
		if k >= 0 && k == i {
			return true
		}
	}
	return false
}

// Evaluate determines the NSC pass level of subjects.
func Evaluate(subjects []subject.Subject) Result {
	subjects = subject.Deduplicate(subjects)
	r := findRoles(subjects)
	c := counter{subjects: subjects}

	var reasons []string
	if r.hl < 0 {
		reasons = append(reasons, ReasonMissingHL)
	}
	if r.fal < 0 {
		reasons = append(reasons, ReasonMissingFAL)
	}
	if r.lo < 0 {
		reasons = append(reasons, ReasonMissingLO)
	}

	hlPassed := r.hl >= 0 && subjects[r.hl].Valid() && subjects[r.hl].Percentage >= homeLanguageMinimum
	if r.hl >= 0 && !hlPassed {
		reasons = append(reasons, ReasonHLBelow40)
	}

	// Basic NSC: counts exclude HL only; the 40% set also counts toward 30%.
	twoAt40 := c.atLeast(40, r.hl) >= 2
	threeAt30 := c.atLeast(30, r.hl) >= 3
	sixPasses := c.atLeast(30) >= minimumPassesForNSC
	basic := hlPassed && twoAt40 && threeAt30 && sixPasses

	hcLanguage := hasInstructionLanguage(subjects, r)
	higherCert := basic && hcLanguage

	diplomaThreeAt40 := c.atLeast(40, r.hl, r.lo) >= 3
	diplomaTwoAt30 := c.atLeast(30, r.hl) >= 2
	diploma := hlPassed && diplomaThreeAt40 && diplomaTwoAt30

	bachelorFourAt50 := c.atLeast(50, r.hl, r.lo) >= 4
	bachelorTwoAt30 := c.atLeast(30, r.hl, r.lo) >= 2
	bachelor := hlPassed && bachelorFourAt50 && bachelorTwoAt30

	level := PassNone
	switch {
	case bachelor:
		level = PassBachelor
	case diploma:
		level = PassDiploma
	case higherCert:
		level = PassHigherCertificate
	}

	if !twoAt40 {
		reasons = append(reasons, ReasonTwoAt40)
	}
	if !threeAt30 {
		reasons = append(reasons, ReasonThreeAt30)
	}
	if !sixPasses {
		reasons = append(reasons, ReasonFewerThanSixPass)
	}
	if !hcLanguage && !level.AtLeast(PassHigherCertificate) {
		reasons = append(reasons, ReasonLanguageForHC)
	}
	if !level.AtLeast(PassDiploma) {
		if !diplomaThreeAt40 {
			reasons = append(reasons, ReasonDiplomaThreeAt40)
		}
		if !diplomaTwoAt30 {
			reasons = append(reasons, ReasonDiplomaTwoAt30)
		}
	}
	if !level.AtLeast(PassBachelor) {
		if !bachelorFourAt50 {
			reasons = append(reasons, ReasonBachelorFourAt50)
		}
		if !bachelorTwoAt30 {
			reasons = append(reasons, ReasonBachelorTwoAt30)
		}
	}

	if reasons == nil {
		reasons = []string{}
	}
	return Result{
		MeetsBasicNSC: basic,
		PassLevel:     level,
		Reasons:       reasons,
	}
}

// hasInstructionLanguage reports whether the HL or FAL subject is English or Afrikaans.
func hasInstructionLanguage(subjects []subject.Subject, r roles) bool {
	for _, i := range []int{r.hl, r.fal} {
		if i < 0 {
			continue
		}
		switch subject.ParseLanguageLevel(subjects[i].Name).Family {
		case subject.English, subject.Afrikaans:
			return true
		}
	}
	return false
}

// String renders the result for logs and CLI output.
func (r Result) String() string {
	return fmt.Sprintf("pass_level=%s basic_nsc=%t reasons=%d", r.PassLevel, r.MeetsBasicNSC, len(r.Reasons))
}
