package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/garyellow/course-eligibility-go/internal/errors"
	"github.com/garyellow/course-eligibility-go/internal/requirement"
	"github.com/garyellow/course-eligibility-go/internal/scoring"
	"github.com/garyellow/course-eligibility-go/internal/subject"
)

const sampleYAML = `
version: test
scoring_rules:
  - name: maths_bonus
    bonuses:
      - subject: Mathematics
        min_level: 6
        points: 3
institutions:
  - id: alpha
    name: Alpha University
    kind: university
    programs:
      - id: eng
        name: Engineering
        scoring_rule: maths_bonus
        requirements:
          min_score: 30
          subjects:
            Mathematics: 6
            Physical Sciences: 5
  - id: beta
    name: Beta College
    kind: college
    programs:
      - id: n4
        name: N4 Business
        requirements:
          min_score: 15
          subjects:
            - subject: English
              level: 3
`

func TestParse(t *testing.T) {
	t.Parallel()
	c, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	institutions, programs := c.Count()
	assert.Equal(t, 2, institutions)
	assert.Equal(t, 2, programs)

	p, ok := c.Program("alpha", "eng")
	require.True(t, ok)
	assert.Equal(t, 30, p.Requirements.MinScore)
	assert.Equal(t, "Mathematics", p.Requirements.Subjects[0].Subject)
	assert.Equal(t, "Physical Sciences", p.Requirements.Subjects[1].Subject)

	_, ok = c.Program("alpha", "nope")
	assert.False(t, ok)
	_, ok = c.Program("gamma", "eng")
	assert.False(t, ok)
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()
	_, err := Parse(nil)
	assert.ErrorIs(t, err, domerrors.ErrCatalogEmpty)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Catalog {
		return &Catalog{Institutions: []Institution{{
			ID: "a", Name: "A", Kind: KindUniversity,
			Programs: []Program{{
				ID: "p", Name: "P",
				Requirements: requirement.ProgramRequirements{
					MinScore: 20,
					Subjects: requirement.Requirements{{Subject: "Mathematics", Level: 4}},
				},
			}},
		}}}
	}

	tests := []struct {
		name    string
		mutate  func(c *Catalog)
		wantErr bool
	}{
		{"valid", func(*Catalog) {}, false},
		{"zero min score is kept", func(c *Catalog) { c.Institutions[0].Programs[0].Requirements.MinScore = 0 }, false},
		{"bad kind", func(c *Catalog) { c.Institutions[0].Kind = "school" }, true},
		{"missing name", func(c *Catalog) { c.Institutions[0].Name = "" }, true},
		{"bad website", func(c *Catalog) { c.Institutions[0].Website = "not a url" }, true},
		{"duplicate institution", func(c *Catalog) { c.Institutions = append(c.Institutions, c.Institutions[0]) }, true},
		{"duplicate program", func(c *Catalog) {
			c.Institutions[0].Programs = append(c.Institutions[0].Programs, c.Institutions[0].Programs[0])
		}, true},
		{"level too high", func(c *Catalog) { c.Institutions[0].Programs[0].Requirements.Subjects[0].Level = 9 }, true},
		{"level missing", func(c *Catalog) { c.Institutions[0].Programs[0].Requirements.Subjects[0].Level = 0 }, true},
		{"alternative without subject", func(c *Catalog) {
			c.Institutions[0].Programs[0].Requirements.Subjects[0] = requirement.Requirement{
				Subject:      "Maths",
				Alternatives: []requirement.Alternative{{Subject: " ", Level: 4}},
			}
		}, true},
		{"bad rule scale", func(c *Catalog) { c.Rules = []scoring.Rule{{Name: "x", Scale: "nine"}} }, true},
		{"duplicate rule", func(c *Catalog) { c.Rules = []scoring.Rule{{Name: "x"}, {Name: "X"}} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEncodeDecodeCompression(t *testing.T) {
	t.Parallel()
	orig, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	for _, compression := range []Compression{CompressionNone, CompressionGzip, CompressionZstd} {
		var buf bytes.Buffer
		require.NoError(t, Encode(&buf, orig, compression))

		got, err := Decode(&buf)
		require.NoError(t, err, "compression %d", compression)
		assert.Equal(t, orig, got, "compression %d", compression)
	}
}

func TestSaveLoad(t *testing.T) {
	t.Parallel()
	orig, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	dir := t.TempDir()
	for _, name := range []string{"catalog.yaml", "catalog.yaml.gz", "nested/catalog.yaml.zst"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Save(path, orig))

		got, err := Load(path)
		require.NoError(t, err, name)
		assert.Equal(t, orig, got, name)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "catalog.yaml.gz"))
	require.NoError(t, err)
	assert.Equal(t, gzipMagic, raw[:2])
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	var catErr *domerrors.CatalogError
	require.ErrorAs(t, err, &catErr)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("institutions: [{id: x, kind: moon}]"), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestCompressionFor(t *testing.T) {
	t.Parallel()
	assert.Equal(t, CompressionGzip, CompressionFor("a.yaml.GZ"))
	assert.Equal(t, CompressionZstd, CompressionFor("a.yaml.zst"))
	assert.Equal(t, CompressionNone, CompressionFor("a.yaml"))
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	c, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	reg, err := c.Registry(scoring.Options{})
	require.NoError(t, err)

	subjects := []subject.Subject{{Name: "Mathematics", Percentage: 75}}
	assert.Equal(t, 6+3, reg.Resolve("maths_bonus").Score(subjects))
	assert.Equal(t, 6, reg.Resolve("").Score(subjects))
}
