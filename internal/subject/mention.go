package subject

import (
	"strings"
	"unicode/utf8"
)

const (
	// maxAliasWords bounds the n-gram width scanned by Mention.
	maxAliasWords = 6
	// minMentionRunes ignores short single-word aliases ("it", "lo", "art")
	// that collide with ordinary English words in free text.
	minMentionRunes = 4
)

// Mention finds the leftmost, longest subject name mentioned inside free
// text such as "Mathematics: at least 60%" and returns its canonical name.
func Mention(text string) (string, bool) {
	found := mentions(text, true)
	if len(found) == 0 {
		return "", false
	}
	return found[0], true
}

// LastMention finds the rightmost subject name mentioned inside text.
// Matching still runs left to right and longest first, so "English Home
// Language" is never split into a shorter trailing alias.
func LastMention(text string) (string, bool) {
	found := mentions(text, false)
	if len(found) == 0 {
		return "", false
	}
	return found[len(found)-1], true
}

// mentions returns the canonical names of non-overlapping mentions in text
// order, stopping after the first one when firstOnly is set.
func mentions(text string, firstOnly bool) []string {
	words := strings.Fields(clean(text))
	var found []string
	for i := 0; i < len(words); {
		width := mentionAt(words, i)
		if width == 0 {
			i++
			continue
		}
		found = append(found, lookup[strings.Join(words[i:i+width], " ")])
		if firstOnly {
			break
		}
		i += width
	}
	return found
}

// mentionAt returns the word count of the longest alias starting at
// words[i], or 0.
func mentionAt(words []string, i int) int {
	for n := min(maxAliasWords, len(words)-i); n > 0; n-- {
		phrase := strings.Join(words[i:i+n], " ")
		if _, ok := lookup[phrase]; !ok {
			continue
		}
		if n == 1 && utf8.RuneCountInString(phrase) < minMentionRunes {
			continue
		}
		return n
	}
	return 0
}
