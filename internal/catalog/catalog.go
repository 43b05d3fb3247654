// Package catalog defines the institution and programme catalog consumed by
// the eligibility engine, and how it is read from and written to files.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/garyellow/course-eligibility-go/internal/requirement"
	"github.com/garyellow/course-eligibility-go/internal/scoring"
)

var validate = validator.New()

// Kind is the institution type. Universities form the primary match pool;
// colleges are the fallback pool.
type Kind string

const (
	KindUniversity Kind = "university"
	KindCollege    Kind = "college"
)

// Program is one admission programme offered by an institution.
type Program struct {
	ID           string                          `json:"id" yaml:"id" validate:"required"`
	Name         string                          `json:"name" yaml:"name" validate:"required"`
	Faculty      string                          `json:"faculty,omitempty" yaml:"faculty,omitempty"`
	ScoringRule  string                          `json:"scoring_rule,omitempty" yaml:"scoring_rule,omitempty"`
	Requirements requirement.ProgramRequirements `json:"requirements" yaml:"requirements"`
}

// Institution groups the programmes of one university or college.
type Institution struct {
	ID       string    `json:"id" yaml:"id" validate:"required"`
	Name     string    `json:"name" yaml:"name" validate:"required"`
	Kind     Kind      `json:"kind" yaml:"kind" validate:"required,oneof=university college"`
	Location string    `json:"location,omitempty" yaml:"location,omitempty"`
	Website  string    `json:"website,omitempty" yaml:"website,omitempty" validate:"omitempty,url"`
	Programs []Program `json:"programs" yaml:"programs" validate:"dive"`
}

// Catalog is a complete, immutable-after-load programme catalog.
type Catalog struct {
	Version      string         `json:"version,omitempty" yaml:"version,omitempty"`
	Rules        []scoring.Rule `json:"scoring_rules,omitempty" yaml:"scoring_rules,omitempty" validate:"dive"`
	Institutions []Institution  `json:"institutions" yaml:"institutions" validate:"dive"`
}

// Validate checks struct constraints, then cross-field rules: unique IDs,
// levels within 1..8 and non-empty alternatives. All problems are returned
// together. Programmes without a minimum score are valid; the engine skips
// them.
func (c *Catalog) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("catalog validation failed: %w", err)
	}

	var errs []error
	rules := make(map[string]bool, len(c.Rules))
	for _, r := range c.Rules {
		key := strings.ToLower(r.Name)
		if rules[key] {
			errs = append(errs, fmt.Errorf("scoring rule %q defined twice", r.Name))
		}
		rules[key] = true
		if _, err := r.Options(); err != nil {
			errs = append(errs, err)
		}
	}

	institutions := make(map[string]bool, len(c.Institutions))
	for _, inst := range c.Institutions {
		if institutions[inst.ID] {
			errs = append(errs, fmt.Errorf("institution %q defined twice", inst.ID))
		}
		institutions[inst.ID] = true

		programs := make(map[string]bool, len(inst.Programs))
		for _, p := range inst.Programs {
			if programs[p.ID] {
				errs = append(errs, fmt.Errorf("%s: program %q defined twice", inst.ID, p.ID))
			}
			programs[p.ID] = true
			errs = append(errs, validateRequirements(inst.ID+"/"+p.ID, p.Requirements.Subjects)...)
		}
	}
	return errors.Join(errs...)
}

func validateRequirements(where string, reqs requirement.Requirements) []error {
	var errs []error
	for i, r := range reqs {
		if !r.IsAlternatives() {
			if strings.TrimSpace(r.Subject) == "" {
				errs = append(errs, fmt.Errorf("%s: requirement %d has no subject", where, i))
			}
			if r.Level < 1 || r.Level > 8 {
				errs = append(errs, fmt.Errorf("%s: %s: level %d outside 1..8", where, r.Subject, r.Level))
			}
			continue
		}
		for _, alt := range r.Alternatives {
			if strings.TrimSpace(alt.Subject) == "" {
				errs = append(errs, fmt.Errorf("%s: %s: alternative has no subject", where, r.Key()))
			}
		}
	}
	return errs
}

// Count returns the number of institutions and programmes.
func (c *Catalog) Count() (institutions, programs int) {
	for _, inst := range c.Institutions {
		programs += len(inst.Programs)
	}
	return len(c.Institutions), programs
}

// Institution looks up an institution by ID.
func (c *Catalog) Institution(id string) (Institution, bool) {
	for _, inst := range c.Institutions {
		if inst.ID == id {
			return inst, true
		}
	}
	return Institution{}, false
}

// Program looks up a programme by institution and programme ID.
func (c *Catalog) Program(institutionID, programID string) (Program, bool) {
	inst, ok := c.Institution(institutionID)
	if !ok {
		return Program{}, false
	}
	for _, p := range inst.Programs {
		if p.ID == programID {
			return p, true
		}
	}
	return Program{}, false
}

// Registry returns the built-in scoring rules plus those declared in the
// catalog. Catalog rules override built-ins of the same name.
func (c *Catalog) Registry(defaults scoring.Options) (*scoring.Registry, error) {
	reg := scoring.NewRegistry(defaults)
	for _, r := range c.Rules {
		if err := reg.RegisterRule(r); err != nil {
			return nil, err
		}
	}
	return reg, nil
}
