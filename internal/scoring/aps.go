package scoring

import (
	"cmp"
	"slices"

	"github.com/garyellow/course-eligibility-go/internal/subject"
)

// APS defaults.
const (
	DefaultTopK = 6
	// DefaultExclusionMinSubjects is the smallest number of valid subjects for
	// which excluded subjects are dropped. Below it every subject counts.
	DefaultExclusionMinSubjects = 4
)

// DefaultExclude lists the subjects left out of the default APS.
var DefaultExclude = []string{subject.LifeOrientation}

// Options configures ComputeScore. The zero value selects the defaults.
type Options struct {
	// TopK is the number of best subjects summed. Zero means DefaultTopK.
	TopK int
	// Exclude names subjects left out of the score. Nil means DefaultExclude;
	// a non-nil empty slice excludes nothing.
	Exclude []string
	// ExclusionMinSubjects overrides DefaultExclusionMinSubjects when positive.
	ExclusionMinSubjects int
	// Scale converts percentages to levels. The zero Scale is Scale7.
	Scale Scale
}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.Exclude == nil {
		o.Exclude = DefaultExclude
	}
	if o.ExclusionMinSubjects <= 0 {
		o.ExclusionMinSubjects = DefaultExclusionMinSubjects
	}
	o.Scale = o.Scale.resolve()
	return o
}

// MaxScore returns the upper bound ComputeScore can reach with these options.
func (o Options) MaxScore() int {
	o = o.withDefaults()
	return o.TopK * o.Scale.Max()
}

// ComputeScore returns the APS of subjects: the sum of achievement levels of
// the TopK highest valid marks, excluded subjects removed. Missing, invalid
// and non-positive marks are ignored; fewer than TopK subjects are summed as
// they are. An empty list scores 0.
func ComputeScore(subjects []subject.Subject, opts Options) int {
	opts = opts.withDefaults()
	total := 0
	for _, s := range selectTop(subjects, opts) {
		total += opts.Scale.Level(s.Percentage)
	}
	return total
}

// selectTop filters, excludes and ranks subjects, returning at most TopK.
func selectTop(subjects []subject.Subject, opts Options) []subject.Subject {
	valid := make([]subject.Subject, 0, len(subjects))
	for _, s := range subjects {
		if s.Valid() && s.Percentage > 0 {
			valid = append(valid, s)
		}
	}

	if len(valid) >= opts.ExclusionMinSubjects && len(opts.Exclude) > 0 {
		excluded := make(map[string]bool, len(opts.Exclude))
		for _, name := range opts.Exclude {
			excluded[subject.Normalize(name)] = true
		}
		valid = slices.DeleteFunc(valid, func(s subject.Subject) bool {
			return excluded[s.Canonical()]
		})
	}

	slices.SortStableFunc(valid, func(a, b subject.Subject) int {
		return cmp.Compare(b.Percentage, a.Percentage)
	})

	if len(valid) > opts.TopK {
		valid = valid[:opts.TopK]
	}
	return valid
}
