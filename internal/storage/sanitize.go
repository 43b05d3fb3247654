package storage

import "strings"

// likeEscaper escapes LIKE wildcards for queries using ESCAPE '\'.
var likeEscaper = strings.NewReplacer(
	`\`, `\\`,
	`%`, `\%`,
	`_`, `\_`,
)

// namePattern turns a programme name query into a LIKE pattern. Words
// must appear in order but may be separated by other text, so "bachelor
// arts" finds "Bachelor of Arts". Wildcards typed by the user match
// literally. A blank query matches every name.
func namePattern(query string) string {
	words := strings.Fields(query)
	if len(words) == 0 {
		return "%"
	}
	for i, w := range words {
		words[i] = likeEscaper.Replace(w)
	}
	return "%" + strings.Join(words, "%") + "%"
}
