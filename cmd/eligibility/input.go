package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	domerrors "github.com/garyellow/course-eligibility-go/internal/errors"
	"github.com/garyellow/course-eligibility-go/internal/subject"
)

// maxSubjectsFileSize bounds subject files read from disk or stdin.
const maxSubjectsFileSize = 1 << 20

// readSubjects reads subject results from path ("-" for stdin). The file
// holds either a JSON array of subjects or an object with a "subjects"
// array, as posted to the HTTP API.
func readSubjects(path string, stdin io.Reader) ([]subject.Subject, error) {
	wrap := domerrors.NewWrapper("cli", "read subjects")
	if path == "" {
		return nil, domerrors.NewValidationError("subjects", "a subjects file is required")
	}

	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, wrap.Inputf(err, "cannot open %s", path)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	raw, err := io.ReadAll(io.LimitReader(r, maxSubjectsFileSize+1))
	if err != nil {
		return nil, wrap.Wrapf(err, "cannot read %s", path)
	}
	if len(raw) > maxSubjectsFileSize {
		return nil, domerrors.NewValidationError("subjects", fmt.Sprintf("file exceeds %d bytes", maxSubjectsFileSize))
	}

	subjects, err := decodeSubjects(raw)
	if err != nil {
		return nil, wrap.Inputf(err, "cannot parse %s", path)
	}
	if len(subjects) == 0 {
		return nil, domerrors.NewValidationError("subjects", "no subjects found")
	}
	return subjects, nil
}

func decodeSubjects(raw []byte) ([]subject.Subject, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '[' {
		var subjects []subject.Subject
		if err := json.Unmarshal(raw, &subjects); err != nil {
			return nil, err
		}
		return subjects, nil
	}

	var body struct {
		Subjects []subject.Subject `json:"subjects"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, err
	}
	return body.Subjects, nil
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
