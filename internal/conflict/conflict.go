// Package conflict enforces the mutual-exclusivity rules between school
// subjects: one Home Language, one First Additional Language, and fixed
// groups such as Mathematics / Mathematical Literacy.
package conflict

import (
	"fmt"

	"github.com/garyellow/course-eligibility-go/internal/subject"
)

// groups lists the subjects that may not be taken together. Same-family
// Home / First Additional Language pairs are checked separately because they
// exist for every language.
var groups = [][]string{
	mathsGroup,
	{subject.InformationTechnology, subject.ComputerApplicationsTechnology},
}

// mathsGroup is the only fixed group that also invalidates an existing selection.
var mathsGroup = []string{subject.Mathematics, subject.MathematicalLiteracy}

// Validator answers conflict questions about a fixed set of chosen subjects.
// It is immutable; build a new one when the selection changes.
type Validator struct {
	chosen []choice
}

type choice struct {
	name      string
	canonical string
	language  subject.Language
}

// New snapshots the chosen subject names.
func New(chosen []string) *Validator {
	v := &Validator{chosen: make([]choice, 0, len(chosen))}
	for _, name := range chosen {
		canonical := subject.Normalize(name)
		if canonical == "" {
			continue
		}
		v.chosen = append(v.chosen, choice{
			name:      name,
			canonical: canonical,
			language:  subject.ParseLanguageLevel(name),
		})
	}
	return v
}

// IsSubjectDisabled reports whether candidate may not be added.
func (v *Validator) IsSubjectDisabled(candidate string) bool {
	_, disabled := v.DisabledReason(candidate)
	return disabled
}

// DisabledReason explains why candidate may not be added. The first matching
// rule wins: already selected, second home language, second first additional
// language, fixed conflict group.
func (v *Validator) DisabledReason(candidate string) (string, bool) {
	canonical := subject.Normalize(candidate)
	if canonical == "" {
		return "", false
	}
	lang := subject.ParseLanguageLevel(candidate)

	for _, c := range v.chosen {
		if c.canonical == canonical {
			return fmt.Sprintf("%s is already selected.", c.name), true
		}
	}

	if lang.Level == subject.HomeLanguage {
		if c, ok := v.firstWithLevel(subject.HomeLanguage); ok {
			return fmt.Sprintf("You can only take ONE home language. %s is already selected as your home language.", c.name), true
		}
	}

	if lang.Level == subject.FirstAdditional {
		if c, ok := v.firstWithLevel(subject.FirstAdditional); ok {
			return fmt.Sprintf("You can only take ONE first additional language. %s is already selected as your first additional language.", c.name), true
		}
	}

	if c, ok := v.groupConflict(canonical, lang); ok {
		return fmt.Sprintf("Cannot add %s because %s is already selected.", candidate, c.name), true
	}

	return "", false
}

// HasConflicts reports whether the chosen set itself is invalid: the same
// language at Home and First Additional level, or Mathematics together with
// Mathematical Literacy.
func (v *Validator) HasConflicts() bool {
	return len(v.Conflicts()) > 0
}

// Conflicts lists every conflict in the chosen set, in selection order.
func (v *Validator) Conflicts() []string {
	var out []string
	for i, a := range v.chosen {
		for _, b := range v.chosen[i+1:] {
			if sameLanguageAtHLAndFAL(a.language, b.language) {
				out = append(out, fmt.Sprintf("%s and %s are the same language at both home and first additional level.", a.name, b.name))
			}
			if inSameGroup(a.canonical, b.canonical, [][]string{mathsGroup}) {
				out = append(out, fmt.Sprintf("%s and %s cannot be taken together.", a.name, b.name))
			}
		}
	}
	return out
}

func (v *Validator) firstWithLevel(level subject.Level) (choice, bool) {
	for _, c := range v.chosen {
		if c.language.Level == level {
			return c, true
		}
	}
	return choice{}, false
}

func (v *Validator) groupConflict(canonical string, lang subject.Language) (choice, bool) {
	for _, c := range v.chosen {
		if inSameGroup(canonical, c.canonical, groups) || sameLanguageAtHLAndFAL(lang, c.language) {
			return c, true
		}
	}
	return choice{}, false
}

func inSameGroup(a, b string, groups [][]string) bool {
	for _, g := range groups {
		var hasA, hasB bool
		for _, name := range g {
			hasA = hasA || name == a
			hasB = hasB || name == b
		}
		if hasA && hasB && a != b {
			return true
		}
	}
	return false
}

func sameLanguageAtHLAndFAL(a, b subject.Language) bool {
	if a.Family == "" || a.Family != b.Family {
		return false
	}
	return (a.Level == subject.HomeLanguage && b.Level == subject.FirstAdditional) ||
		(a.Level == subject.FirstAdditional && b.Level == subject.HomeLanguage)
}
