// Package requirement checks a student's subjects against a programme's
// per-subject admission rules and free-text conditions.
package requirement

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Alternative is one acceptable subject inside an "any one of" requirement.
type Alternative struct {
	Subject string `json:"subject" yaml:"subject" validate:"required"`
	Level   int    `json:"level" yaml:"level" validate:"min=1,max=8"`
}

func (a Alternative) String() string {
	return fmt.Sprintf("%s (Level %d)", a.Subject, a.Level)
}

// Requirement is a single subject rule. With no Alternatives the student
// needs Subject at Level; otherwise any one alternative suffices and Subject
// is only the label reported back.
type Requirement struct {
	Subject      string        `json:"subject" yaml:"subject"`
	Level        int           `json:"level,omitempty" yaml:"level,omitempty" validate:"omitempty,min=1,max=8"`
	Alternatives []Alternative `json:"alternatives,omitempty" yaml:"alternatives,omitempty" validate:"omitempty,dive"`
}

// Key returns the label used in met lists.
func (r Requirement) Key() string {
	if r.Subject != "" || len(r.Alternatives) == 0 {
		return r.Subject
	}
	names := make([]string, len(r.Alternatives))
	for i, a := range r.Alternatives {
		names[i] = a.Subject
	}
	return strings.Join(names, " or ")
}

// String renders the requirement the way it is reported when unmet.
func (r Requirement) String() string {
	if len(r.Alternatives) == 0 {
		return fmt.Sprintf("%s (Level %d)", r.Subject, r.Level)
	}
	parts := make([]string, len(r.Alternatives))
	for i, a := range r.Alternatives {
		parts[i] = a.String()
	}
	return strings.Join(parts, " OR ")
}

// IsAlternatives reports whether the requirement is an "any one of" list.
func (r Requirement) IsAlternatives() bool {
	return len(r.Alternatives) > 0
}

// ProgramRequirements is everything a programme asks of an applicant.
// MinScore is checked by the orchestrator, not by the Matcher.
type ProgramRequirements struct {
	Subjects   Requirements `json:"subjects" yaml:"subjects" validate:"dive"`
	MinScore   int          `json:"min_score" yaml:"min_score"`
	Additional []string     `json:"additional,omitempty" yaml:"additional,omitempty"`
}

// Requirements keeps subject rules in declaration order.
//
// Besides a plain list it decodes the compact object form used by catalog
// files, preserving key order:
//
//	subjects:
//	  Mathematics: 5
//	  Science: [{subject: Physical Sciences, level: 4}, {subject: Life Sciences, level: 5}]
type Requirements []Requirement

// compactValue is the object-form value when it is neither a level nor a list.
type compactValue struct {
	Level        int           `json:"level" yaml:"level"`
	Alternatives []Alternative `json:"alternatives" yaml:"alternatives"`
}

// UnmarshalJSON accepts a list of requirements or an ordered object.
func (rs *Requirements) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*rs = nil
		return nil
	}
	if data[0] == '[' {
		var list []Requirement
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*rs = list
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("requirements: expected list or object, got %v", tok)
	}

	var out Requirements
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("requirements: unexpected key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("requirements: %s: %w", key, err)
		}
		req, err := compactJSON(key, raw)
		if err != nil {
			return err
		}
		out = append(out, req)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*rs = out
	return nil
}

func compactJSON(key string, raw json.RawMessage) (Requirement, error) {
	req := Requirement{Subject: key}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return req, fmt.Errorf("requirements: %s: empty value", key)
	}
	switch raw[0] {
	case '[':
		if err := json.Unmarshal(raw, &req.Alternatives); err != nil {
			return req, fmt.Errorf("requirements: %s: %w", key, err)
		}
	case '{':
		var v compactValue
		if err := json.Unmarshal(raw, &v); err != nil {
			return req, fmt.Errorf("requirements: %s: %w", key, err)
		}
		req.Level, req.Alternatives = v.Level, v.Alternatives
	default:
		if err := json.Unmarshal(raw, &req.Level); err != nil {
			return req, fmt.Errorf("requirements: %s: level must be an integer: %w", key, err)
		}
	}
	return req, nil
}

// UnmarshalYAML accepts a sequence of requirements or an ordered mapping.
func (rs *Requirements) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var list []Requirement
		if err := node.Decode(&list); err != nil {
			return err
		}
		*rs = list
		return nil
	case yaml.MappingNode:
	default:
		return fmt.Errorf("requirements: line %d: expected list or mapping", node.Line)
	}

	out := make(Requirements, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valNode := node.Content[i], node.Content[i+1]
		req := Requirement{Subject: keyNode.Value}
		var err error
		switch valNode.Kind {
		case yaml.ScalarNode:
			err = valNode.Decode(&req.Level)
		case yaml.SequenceNode:
			err = valNode.Decode(&req.Alternatives)
		case yaml.MappingNode:
			var v compactValue
			err = valNode.Decode(&v)
			req.Level, req.Alternatives = v.Level, v.Alternatives
		default:
			err = errors.New("unsupported value")
		}
		if err != nil {
			return fmt.Errorf("requirements: line %d: %s: %w", valNode.Line, keyNode.Value, err)
		}
		out = append(out, req)
	}
	*rs = out
	return nil
}
