// Package subject resolves free-form school subject names into canonical
// identifiers. It owns the alias table, language-level parsing
// (Home / First Additional / Second Additional Language) and the
// language-aware subject lookup used by every matching step.
//
// All functions are pure and safe for concurrent use.
package subject

import (
	"math"
)

// Invalid is the percentage carried by a subject whose mark could not be read.
// Any level comparison against it fails.
const Invalid = -1.0

// Subject is a single reported subject result. The API rejects names
// longer than 120 characters.
type Subject struct {
	Name       string  `json:"name" yaml:"name" binding:"max=120"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// Valid reports whether the percentage lies in [0, 100].
func (s Subject) Valid() bool {
	return ValidPercentage(s.Percentage)
}

// Canonical returns the normalized subject identifier.
func (s Subject) Canonical() string {
	return Normalize(s.Name)
}

// ValidPercentage reports whether pct is a usable mark.
func ValidPercentage(pct float64) bool {
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return false
	}
	return pct >= 0 && pct <= 100
}

// Names returns the raw names of subjects in order.
func Names(subjects []Subject) []string {
	names := make([]string, len(subjects))
	for i, s := range subjects {
		names[i] = s.Name
	}
	return names
}
