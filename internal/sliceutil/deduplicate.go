// Package sliceutil provides generic slice manipulation utilities.
package sliceutil

// Deduplicate removes duplicate items from a slice while preserving order.
// The keyFunc extracts a unique key from each item for comparison.
// Only the first occurrence of each key is kept.
//
// Example:
//
//	names := []string{"Maths", "Mathematics", "Geography"}
//	unique := sliceutil.Deduplicate(names, subject.Normalize)
//	// Result: ["Maths", "Geography"]
func Deduplicate[T any, K comparable](items []T, keyFunc func(T) K) []T {
	return DeduplicateBest(items, keyFunc, nil)
}

// DeduplicateBest removes duplicate items, keeping the best item per key.
// better reports whether candidate should replace current; a nil better keeps
// the first occurrence. The surviving item takes the position of the first
// occurrence of its key.
//
// Example:
//
//	marks := []Subject{{"Maths", 60}, {"Mathematics", 72}}
//	best := sliceutil.DeduplicateBest(marks, key, func(cur, cand Subject) bool {
//		return cand.Percentage > cur.Percentage
//	})
//	// Result: [{"Mathematics", 72}]
func DeduplicateBest[T any, K comparable](items []T, keyFunc func(T) K, better func(current, candidate T) bool) []T {
	if len(items) == 0 {
		return items
	}

	index := make(map[K]int, len(items))
	result := make([]T, 0, len(items))

	for _, item := range items {
		key := keyFunc(item)
		pos, seen := index[key]
		if !seen {
			index[key] = len(result)
			result = append(result, item)
			continue
		}
		if better != nil && better(result[pos], item) {
			result[pos] = item
		}
	}

	return result
}
