package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/course-eligibility-go/internal/catalog"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()
	c, err := DefaultCatalog()
	require.NoError(t, err)

	institutions, programs := c.Count()
	assert.Equal(t, 6, institutions)
	assert.Equal(t, 15, programs)

	var colleges int
	for _, inst := range c.Institutions {
		if inst.Kind == catalog.KindCollege {
			colleges++
		}
	}
	assert.Equal(t, 2, colleges)

	p, ok := c.Program("wits", "mbbch")
	require.True(t, ok)
	assert.Equal(t, "health_sciences", p.ScoringRule)
	assert.Equal(t, "Mathematics", p.Requirements.Subjects[0].Subject)
}
