package subject

import (
	"cmp"
	"slices"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// minSuggestionSimilarity filters out suggestions that share little with the input.
const minSuggestionSimilarity = 0.6

// Suggestion is a canonical subject close to an unrecognized name.
type Suggestion struct {
	Canonical  string  `json:"canonical"`
	Display    string  `json:"display"`
	Similarity float64 `json:"similarity"`
}

// Suggest returns up to limit canonical subjects whose canonical name or an
// alias is close to name by edit distance. Recognized names return nil.
//
// Suggestions are advisory only. The matcher never uses them, so an
// unaliased subject stays a visible false negative instead of a guess.
func Suggest(name string, limit int) []Suggestion {
	c := clean(name)
	if c == "" || limit <= 0 {
		return nil
	}
	if _, ok := lookup[c]; ok {
		return nil
	}

	n := utf8.RuneCountInString(c)
	best := make(map[string]float64)
	for alias, canonical := range lookup {
		// The edit distance is at least the length difference.
		if !withinReach(n, utf8.RuneCountInString(alias)) {
			continue
		}
		sim := similarity(c, alias)
		if sim >= minSuggestionSimilarity && sim > best[canonical] {
			best[canonical] = sim
		}
	}

	out := make([]Suggestion, 0, len(best))
	for canonical, sim := range best {
		out = append(out, Suggestion{
			Canonical:  canonical,
			Display:    DisplayName(canonical),
			Similarity: sim,
		})
	}
	slices.SortFunc(out, func(a, b Suggestion) int {
		if n := cmp.Compare(b.Similarity, a.Similarity); n != 0 {
			return n
		}
		return cmp.Compare(a.Canonical, b.Canonical)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// similarity normalizes the Levenshtein distance to [0, 1] over rune counts.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	maxLen := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}

// withinReach reports whether strings of a and b runes can reach
// minSuggestionSimilarity at all.
func withinReach(a, b int) bool {
	longest := max(a, b)
	if longest == 0 {
		return true
	}
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return 1-float64(diff)/float64(longest) >= minSuggestionSimilarity
}
