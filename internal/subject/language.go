package subject

import (
	"regexp"
	"strings"
)

// Level is the proficiency tier of a language subject.
type Level string

// Language levels. AnyLevel marks a name without a level marker.
const (
	HomeLanguage     Level = "HL"
	FirstAdditional  Level = "FAL"
	SecondAdditional Level = "SAL"
	AnyLevel         Level = "ANY"
)

// rank orders levels for the inclusion rule HL ⊇ FAL ⊇ SAL.
func (l Level) rank() int {
	switch l {
	case HomeLanguage:
		return 3
	case FirstAdditional:
		return 2
	case SecondAdditional:
		return 1
	default:
		return 0
	}
}

// Satisfies reports whether a student holding level l meets a requirement
// for level required.
func (l Level) Satisfies(required Level) bool {
	if required == AnyLevel || required == "" {
		return true
	}
	if l == AnyLevel || l == "" {
		return false
	}
	return l.rank() >= required.rank()
}

// Language is a subject name split into its language family and level.
type Language struct {
	Family string `json:"family"`
	Level  Level  `json:"level"`
}

// levelMarkers matches level markers as whole words in a cleaned name.
// Longer spellings come first so "first additional language" wins over
// "first additional".
var levelMarkers = []struct {
	level Level
	re    *regexp.Regexp
}{
	{FirstAdditional, regexp.MustCompile(`\b(first additional language|1st additional language|first additional|1st additional|fal)\b`)},
	{SecondAdditional, regexp.MustCompile(`\b(second additional language|2nd additional language|second additional|2nd additional|sal)\b`)},
	{HomeLanguage, regexp.MustCompile(`\b(home language|hl)\b`)},
}

// ParseLanguageLevel splits name into a language family and a level.
// Names without a level marker get AnyLevel and their normalized name as
// the family.
func ParseLanguageLevel(name string) Language {
	return parseLanguage(Normalize(name))
}

// parseLanguage is ParseLanguageLevel for an already normalized name.
func parseLanguage(normalized string) Language {
	for _, m := range levelMarkers {
		loc := m.re.FindStringIndex(normalized)
		if loc == nil {
			continue
		}
		residual := normalized[:loc[0]] + " " + normalized[loc[1]:]
		return Language{
			Family: Normalize(residual),
			Level:  m.level,
		}
	}
	return Language{Family: normalized, Level: AnyLevel}
}

// IsLanguageFamily reports whether family is one of the official school languages.
func IsLanguageFamily(family string) bool {
	_, ok := languageFamilies[Normalize(family)]
	return ok
}

// LanguageMatches reports whether the student's subject satisfies the
// required one under language rules: families must match and the student's
// level must include the required level (HL covers FAL and SAL, FAL covers
// SAL). A requirement without a level matches any level of the family.
func LanguageMatches(studentName, requiredName string) bool {
	return ParseLanguageLevel(studentName).covers(ParseLanguageLevel(requiredName))
}

func (l Language) covers(required Language) bool {
	return l.Family != "" && l.Family == required.Family && l.Level.Satisfies(required.Level)
}

// FindMatchingSubject returns the first subject whose canonical name equals
// the required one, falling back to the first language-compatible subject.
// Callers looking up many requirements should build an Index instead.
func FindMatchingSubject(subjects []Subject, required string) (Subject, bool) {
	return NewIndex(subjects).Find(required)
}

// IsHomeLanguage reports whether name is a Home Language subject.
func IsHomeLanguage(name string) bool {
	return ParseLanguageLevel(name).Level == HomeLanguage
}

// IsFirstAdditional reports whether name is a First Additional Language subject.
func IsFirstAdditional(name string) bool {
	return ParseLanguageLevel(name).Level == FirstAdditional
}

// SameFamily reports whether two names belong to the same language family.
func SameFamily(a, b string) bool {
	fa := ParseLanguageLevel(a).Family
	return fa != "" && strings.EqualFold(fa, ParseLanguageLevel(b).Family)
}
