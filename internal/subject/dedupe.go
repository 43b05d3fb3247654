package subject

import (
	"github.com/garyellow/course-eligibility-go/internal/sliceutil"
)

// Deduplicate collapses subjects that resolve to the same canonical name,
// keeping the record with the higher valid percentage. OCR and form input
// often repeat a subject under two spellings ("Maths" and "Mathematics").
// Order follows the first occurrence of each canonical subject.
func Deduplicate(subjects []Subject) []Subject {
	return sliceutil.DeduplicateBest(subjects, Subject.Canonical, func(current, candidate Subject) bool {
		if !candidate.Valid() {
			return false
		}
		if !current.Valid() {
			return true
		}
		return candidate.Percentage > current.Percentage
	})
}

// ValidOnly returns only the subjects with a usable percentage.
func ValidOnly(subjects []Subject) []Subject {
	out := make([]Subject, 0, len(subjects))
	for _, s := range subjects {
		if s.Valid() {
			out = append(out, s)
		}
	}
	return out
}
