package requirement

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/garyellow/course-eligibility-go/internal/scoring"
	"github.com/garyellow/course-eligibility-go/internal/subject"
)

// Kind classifies a free-text requirement.
type Kind string

const (
	// KindUnverifiable covers text that subject marks cannot confirm
	// (portfolio, interview, assessment). It counts as satisfied.
	KindUnverifiable Kind = "unverifiable"
	KindPercentage   Kind = "percentage"
	KindLevel        Kind = "level"
	KindAverage      Kind = "average"
)

var (
	percentRegex = regexp.MustCompile(`(\d{1,3}(?:[.,]\d+)?)\s*%`)
	levelRegex   = regexp.MustCompile(`(?i)\blevel\s*(\d)\b`)
	averageRegex = regexp.MustCompile(`(?i)\b(average|aggregate)\b`)
)

// Additional is a parsed free-text requirement.
type Additional struct {
	Text    string `json:"text"`
	Kind    Kind   `json:"kind"`
	Subject string `json:"subject,omitempty"`
	// Threshold is a percentage, or a level when ByLevel is set.
	Threshold float64 `json:"threshold,omitempty"`
	ByLevel   bool    `json:"by_level,omitempty"`
}

// Numeric reports whether the requirement can be checked against marks.
func (a Additional) Numeric() bool {
	return a.Kind != KindUnverifiable
}

// ParseAdditional extracts a "<subject> ... NN%" or "<subject> ... level n"
// condition from text. The subject is the one named closest before the
// threshold, else the first one after it, so "Life Orientation not counted;
// Mathematics 60%" checks Mathematics. Phrases naming an average or
// aggregate apply the threshold to the mean of the student's subjects.
// Anything else, including numeric text without a recognizable subject, is
// unverifiable.
func ParseAdditional(text string) Additional {
	a := Additional{Text: text, Kind: KindUnverifiable}

	threshold, byLevel, at, ok := extractThreshold(text)
	if !ok {
		return a
	}

	if averageRegex.MatchString(text) {
		a.Kind = KindAverage
		a.Threshold, a.ByLevel = threshold, byLevel
		return a
	}

	canonical, found := nearestMention(text, at)
	if !found {
		return a
	}
	a.Subject = canonical
	a.Threshold, a.ByLevel = threshold, byLevel
	if byLevel {
		a.Kind = KindLevel
	} else {
		a.Kind = KindPercentage
	}
	return a
}

// extractThreshold returns the first percentage, else the first level, and
// the byte span of its match in text.
func extractThreshold(text string) (float64, bool, [2]int, bool) {
	if m := percentRegex.FindStringSubmatchIndex(text); m != nil {
		raw := text[m[2]:m[3]]
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err == nil && subject.ValidPercentage(v) {
			return v, false, [2]int{m[0], m[1]}, true
		}
	}
	if m := levelRegex.FindStringSubmatchIndex(text); m != nil {
		v, err := strconv.Atoi(text[m[2]:m[3]])
		if err == nil && v >= 1 {
			return float64(v), true, [2]int{m[0], m[1]}, true
		}
	}
	return 0, false, [2]int{}, false
}

// nearestMention picks the subject a threshold at span applies to.
func nearestMention(text string, span [2]int) (string, bool) {
	if canonical, ok := subject.LastMention(text[:span[0]]); ok {
		return canonical, true
	}
	return subject.Mention(text[span[1]:])
}

// Satisfied checks a numeric requirement against prepared subjects.
// Unverifiable requirements are always satisfied.
func (a Additional) Satisfied(idx *subject.Index, scale scoring.Scale) bool {
	switch a.Kind {
	case KindPercentage, KindLevel:
		found, ok := idx.Find(a.Subject)
		if !ok || !found.Valid() {
			return false
		}
		if a.ByLevel {
			return float64(scale.Level(found.Percentage)) >= a.Threshold
		}
		return found.Percentage >= a.Threshold
	case KindAverage:
		mean, ok := average(idx, scale, a.ByLevel)
		return ok && mean >= a.Threshold
	default:
		return true
	}
}

// average is the mean of valid marks (or their levels), Life Orientation
// excluded.
func average(idx *subject.Index, scale scoring.Scale, byLevel bool) (float64, bool) {
	var sum float64
	var n int
	for i, s := range idx.Subjects() {
		if !s.Valid() || idx.Canonical(i) == subject.LifeOrientation {
			continue
		}
		if byLevel {
			sum += float64(scale.Level(s.Percentage))
		} else {
			sum += s.Percentage
		}
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
