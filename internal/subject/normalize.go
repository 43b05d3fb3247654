package subject

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	separatorRegex   = regexp.MustCompile(`[-_/\\.,:;|]+`)
	punctuationRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)
	whitespaceRegex  = regexp.MustCompile(`\s+`)
)

// lookup maps every cleaned alias and canonical name to its canonical name.
// Built once at package initialization and never mutated afterwards.
var lookup = buildLookup()

// canonicalNames is the sorted list of canonical identifiers.
var canonicalNames = func() []string {
	seen := make(map[string]bool, len(lookup))
	for _, canonical := range lookup {
		seen[canonical] = true
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}()

func buildLookup() map[string]string {
	table := make(map[string]string, 512)
	add := func(canonical string, aliases ...string) {
		canonical = clean(canonical)
		table[canonical] = canonical
		for _, alias := range aliases {
			if a := clean(alias); a != "" {
				table[a] = canonical
			}
		}
	}

	for canonical, aliases := range subjectAliases {
		add(canonical, aliases...)
	}

	for family, short := range languageFamilies {
		add(family, short...)
		names := append([]string{family}, short...)
		for _, spellings := range levelSpellings {
			canonical := family + " " + spellings[0]
			aliases := make([]string, 0, len(names)*len(spellings))
			for _, n := range names {
				for _, sp := range spellings {
					aliases = append(aliases, n+" "+sp)
				}
			}
			add(canonical, aliases...)
		}
	}

	return table
}

// clean applies the textual normalization steps without alias resolution:
// trim, strip diacritics, Unicode case folding, "&" to "and", punctuation
// removal and whitespace collapsing.
func clean(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return ""
	}
	s = stripMarks(s)
	// Casers are stateful, so each call gets its own.
	s = cases.Fold().String(s)
	s = strings.ReplaceAll(s, "&", " and ")
	s = separatorRegex.ReplaceAllString(s, " ")
	s = punctuationRegex.ReplaceAllString(s, "")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// stripMarks removes combining marks so "Lewensoriëntering" and
// "Lewensorientering" clean to the same string.
func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Normalize resolves a subject name to its canonical identifier.
// Unrecognized names are returned in cleaned form so they can still be
// compared literally. Normalize is idempotent.
func Normalize(name string) string {
	c := clean(name)
	if canonical, ok := lookup[c]; ok {
		return canonical
	}
	return c
}

// IsRecognized reports whether name resolves to an entry of the alias table.
func IsRecognized(name string) bool {
	_, ok := lookup[clean(name)]
	return ok
}

// Canonicals returns all canonical subject identifiers in sorted order.
func Canonicals() []string {
	return slices.Clone(canonicalNames)
}

// DisplayName renders a canonical (or cleaned) name for people,
// e.g. "english home language" becomes "English Home Language".
func DisplayName(name string) string {
	canonical := Normalize(name)
	words := strings.Fields(canonical)
	for i, w := range words {
		if override, ok := displayOverrides[w]; ok {
			words[i] = override
			continue
		}
		if i > 0 && (w == "and" || w == "of") {
			continue
		}
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
