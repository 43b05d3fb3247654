package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/garyellow/course-eligibility-go/internal/subject"
)

// Scorer computes an APS for a set of subjects.
type Scorer interface {
	Score(subjects []subject.Subject) int
}

// ScorerFunc adapts a function to Scorer.
type ScorerFunc func(subjects []subject.Subject) int

// Score calls f.
func (f ScorerFunc) Score(subjects []subject.Subject) int { return f(subjects) }

// Default returns the Scorer for the default APS with opts.
func Default(opts Options) Scorer {
	return ScorerFunc(func(subjects []subject.Subject) int {
		return ComputeScore(subjects, opts)
	})
}

// Bonus awards extra points when a subject reaches a level.
type Bonus struct {
	Subject  string `json:"subject" yaml:"subject" validate:"required"`
	MinLevel int    `json:"min_level" yaml:"min_level" validate:"gte=1,lte=8"`
	Points   int    `json:"points" yaml:"points" validate:"gte=1"`
}

// Rule is a programme-specific scoring override. Zero fields fall back to
// the default APS options. An empty Exclude keeps the default exclusions;
// IncludeAll counts every subject.
type Rule struct {
	Name       string             `json:"name" yaml:"name" validate:"required"`
	TopK       int                `json:"top_k,omitempty" yaml:"top_k,omitempty" validate:"gte=0,lte=10"`
	Scale      string             `json:"scale,omitempty" yaml:"scale,omitempty"`
	Exclude    []string           `json:"exclude,omitempty" yaml:"exclude,omitempty"`
	IncludeAll bool               `json:"include_all,omitempty" yaml:"include_all,omitempty"`
	Weights    map[string]float64 `json:"weights,omitempty" yaml:"weights,omitempty" validate:"dive,gt=0"`
	Bonuses    []Bonus            `json:"bonuses,omitempty" yaml:"bonuses,omitempty" validate:"dive"`
}

// Options returns the APS options the rule implies.
func (r Rule) Options() (Options, error) {
	scale, err := ScaleByName(r.Scale)
	if err != nil {
		return Options{}, fmt.Errorf("rule %s: %w", r.Name, err)
	}
	opts := Options{TopK: r.TopK, Scale: scale}
	switch {
	case r.IncludeAll:
		opts.Exclude = []string{}
	case len(r.Exclude) > 0:
		opts.Exclude = r.Exclude
	}
	return opts, nil
}

// Score applies the rule. Weighted levels are rounded half up per subject;
// bonuses apply to any subject the student holds, inside the top K or not.
func (r Rule) Score(subjects []subject.Subject) int {
	opts, err := r.Options()
	if err != nil {
		opts = Options{}
	}
	opts = opts.withDefaults()

	weights := make(map[string]float64, len(r.Weights))
	for name, w := range r.Weights {
		weights[subject.Normalize(name)] = w
	}

	total := 0
	for _, s := range selectTop(subjects, opts) {
		level := float64(opts.Scale.Level(s.Percentage))
		if w, ok := weights[s.Canonical()]; ok {
			level *= w
		}
		total += int(math.Floor(level + 0.5))
	}

	valid := subject.ValidOnly(subjects)
	for _, b := range r.Bonuses {
		if s, ok := subject.FindMatchingSubject(valid, b.Subject); ok && opts.Scale.Level(s.Percentage) >= b.MinLevel {
			total += b.Points
		}
	}
	return total
}

// Rule names shipped with the engine.
const (
	RuleDefault                = "default"
	RuleEightPoint             = "eight_point"
	RuleMathsScienceWeighted   = "maths_science_weighted"
	RuleIncludeLifeOrientation = "include_life_orientation"
)

// BuiltinRules returns the rules every Registry starts with, besides default.
func BuiltinRules() []Rule {
	return []Rule{
		{Name: RuleEightPoint, Scale: Scale8.Name()},
		{
			Name:    RuleMathsScienceWeighted,
			Weights: map[string]float64{subject.Mathematics: 2, subject.PhysicalSciences: 2},
		},
		{Name: RuleIncludeLifeOrientation, TopK: 7, IncludeAll: true},
	}
}

// Registry resolves scoring rule names to Scorers. It is safe for concurrent
// use; rules are normally registered once at startup.
type Registry struct {
	mu      sync.RWMutex
	def     Scorer
	scorers map[string]Scorer
}

// NewRegistry creates a registry whose default scorer uses defaults and
// which already holds BuiltinRules.
func NewRegistry(defaults Options) *Registry {
	r := &Registry{
		def:     Default(defaults),
		scorers: make(map[string]Scorer),
	}
	for _, rule := range BuiltinRules() {
		r.scorers[rule.Name] = rule
	}
	return r
}

// Register adds or replaces a named scorer.
func (r *Registry) Register(name string, s Scorer) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || s == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scorers[key] = s
}

// RegisterRule validates and registers a declarative rule.
func (r *Registry) RegisterRule(rule Rule) error {
	if _, err := rule.Options(); err != nil {
		return err
	}
	r.Register(rule.Name, rule)
	return nil
}

// Lookup returns the scorer registered under name. Empty and "default"
// return the default scorer.
func (r *Registry) Lookup(name string) (Scorer, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" || key == RuleDefault {
		return r.def, true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.scorers[key]
	return s, ok
}

// Resolve returns the scorer for name, or the default scorer when the name is unknown.
func (r *Registry) Resolve(name string) Scorer {
	if s, ok := r.Lookup(name); ok {
		return s
	}
	return r.def
}

// Names lists the registered rule names including default, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.scorers)+1)
	names = append(names, RuleDefault)
	for name := range r.scorers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
