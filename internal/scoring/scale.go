// Package scoring converts percentage marks into achievement levels and
// combines levels into an Admission Point Score (APS).
//
// Two achievement tables exist. Scale7 is the NSC 7-point table and is used
// for the default APS and for requirement level checks. Scale8 adds a 90%+
// tier and is only used where a scoring rule or matcher names it explicitly.
package scoring

import (
	"fmt"
	"strings"

	"github.com/garyellow/course-eligibility-go/internal/subject"
)

// Scale maps a percentage to an achievement level.
type Scale struct {
	name string
	// floors holds inclusive lower bounds, highest level first.
	floors []float64
}

var (
	// Scale7 is the NSC 7-point achievement table.
	Scale7 = Scale{name: "seven_point", floors: []float64{80, 70, 60, 50, 40, 30}}

	// Scale8 extends Scale7 with level 8 for 90% and above.
	Scale8 = Scale{name: "eight_point", floors: []float64{90, 80, 70, 60, 50, 40, 30}}
)

// Name returns the identifier used in configuration and catalog files.
func (s Scale) Name() string {
	if s.name == "" {
		return Scale7.name
	}
	return s.name
}

// Max returns the highest level of the scale.
func (s Scale) Max() int {
	return len(s.resolve().floors) + 1
}

// Level converts pct to a level. Invalid percentages yield 0 so they fail
// every level comparison.
func (s Scale) Level(pct float64) int {
	if !subject.ValidPercentage(pct) {
		return 0
	}
	floors := s.resolve().floors
	for i, floor := range floors {
		if pct >= floor {
			return len(floors) + 1 - i
		}
	}
	return 1
}

// resolve makes the zero Scale behave as Scale7.
func (s Scale) resolve() Scale {
	if len(s.floors) == 0 {
		return Scale7
	}
	return s
}

// PercentageToLevel converts pct with the 7-point table.
func PercentageToLevel(pct float64) int {
	return Scale7.Level(pct)
}

// ScaleByName looks up a scale by configuration name. Empty selects Scale7.
func ScaleByName(name string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "7", "seven_point", "seven-point":
		return Scale7, nil
	case "8", "eight_point", "eight-point":
		return Scale8, nil
	default:
		return Scale{}, fmt.Errorf("unknown achievement scale %q", name)
	}
}
