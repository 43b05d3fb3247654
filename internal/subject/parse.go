package subject

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// ParsePercentage reads a mark as typed by a student or produced by OCR:
// "65", "65%", " 65.5 % ", "65,5". Anything unreadable yields Invalid.
func ParsePercentage(raw string) float64 {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return Invalid
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !ValidPercentage(v) {
		return Invalid
	}
	return v
}

// UnmarshalJSON accepts the percentage as a JSON number, a numeric string
// ("65%") or null. Unreadable marks decode to Invalid instead of failing the
// whole payload, since OCR output is noisy.
func (s *Subject) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name       string          `json:"name"`
		Percentage json.RawMessage `json:"percentage"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Name = raw.Name
	s.Percentage = Invalid

	p := bytes.TrimSpace(raw.Percentage)
	switch {
	case len(p) == 0 || bytes.Equal(p, []byte("null")):
	case p[0] == '"':
		var str string
		if err := json.Unmarshal(p, &str); err == nil {
			s.Percentage = ParsePercentage(str)
		}
	default:
		var f float64
		if err := json.Unmarshal(p, &f); err == nil && ValidPercentage(f) {
			s.Percentage = f
		}
	}
	return nil
}
