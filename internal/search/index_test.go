package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyellow/course-eligibility-go/internal/catalog"
	"github.com/garyellow/course-eligibility-go/internal/logger"
	"github.com/garyellow/course-eligibility-go/internal/requirement"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{Institutions: []catalog.Institution{
		{
			ID: "zeta", Name: "Zeta University", Kind: catalog.KindUniversity, Location: "Durban",
			Programs: []catalog.Program{
				{
					ID: "eng", Name: "BSc Engineering", Faculty: "Engineering",
					Requirements: requirement.ProgramRequirements{
						MinScore: 36,
						Subjects: requirement.Requirements{{Subject: "Physical Sciences", Level: 5}},
					},
				},
				{ID: "ba", Name: "Bachelor of Arts", Faculty: "Humanities", Requirements: requirement.ProgramRequirements{MinScore: 26}},
			},
		},
		{
			ID: "alpha", Name: "Alpha TVET College", Kind: catalog.KindCollege, Location: "Polokwane",
			Programs: []catalog.Program{
				{ID: "nursing", Name: "Diploma in Nursing", Faculty: "Health", Requirements: requirement.ProgramRequirements{MinScore: 20}},
			},
		},
	}}
}

func newTestIndex(t *testing.T) *Index {
	t.Helper()
	idx := NewIndex(logger.New("error"))
	require.NoError(t, idx.Build(testCatalog()))
	return idx
}

func TestIndex_Build(t *testing.T) {
	t.Parallel()
	idx := newTestIndex(t)
	assert.Equal(t, 3, idx.Count())

	require.NoError(t, idx.Build(nil))
	assert.Equal(t, 0, idx.Count())

	hits, err := idx.Search("engineering", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndex_Search(t *testing.T) {
	t.Parallel()
	idx := newTestIndex(t)

	tests := []struct {
		query   string
		wantTop string
	}{
		{"engineering", "eng"},
		{"ENGINEERING degree", "eng"},
		{"nursing", "nursing"},
		{"polokwane", "nursing"},
		{"humanities", "ba"},
		{"physical sciences", "eng"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			t.Parallel()
			hits, err := idx.Search(tt.query, 10)
			require.NoError(t, err)
			require.NotEmpty(t, hits)
			assert.Equal(t, tt.wantTop, hits[0].ProgramID)
			assert.Equal(t, 1, hits[0].Rank)
			assert.InDelta(t, 0.952, hits[0].Confidence, 0.001)
		})
	}
}

func TestIndex_SearchMetadata(t *testing.T) {
	t.Parallel()
	idx := newTestIndex(t)

	hits, err := idx.Search("nursing", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "alpha", hits[0].InstitutionID)
	assert.Equal(t, "Alpha TVET College", hits[0].InstitutionName)
	assert.Equal(t, catalog.KindCollege, hits[0].Kind)
	assert.Equal(t, 20, hits[0].MinScore)
	assert.Positive(t, hits[0].Score)
}

func TestIndex_SearchEmpty(t *testing.T) {
	t.Parallel()
	idx := newTestIndex(t)

	for _, q := range []string{"", "   ", "a"} {
		hits, err := idx.Search(q, 5)
		require.NoError(t, err)
		assert.Nil(t, hits, "query %q", q)
	}

	var nilIdx *Index
	hits, err := nilIdx.Search("engineering", 5)
	require.NoError(t, err)
	assert.Nil(t, hits)
	assert.Equal(t, 0, nilIdx.Count())
}

func TestTokenize(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"n4", "business", "management"}, tokenize("N4 Business-Management"))
	assert.Equal(t, []string{"grade", "6"}, tokenize("Grade 6 a"))
	assert.Equal(t, []string{"économie"}, tokenize("Économie!"))
}

func TestComputeRankConfidence(t *testing.T) {
	t.Parallel()
	assert.Equal(t, float32(0), computeRankConfidence(0))
	assert.InDelta(t, 0.8, computeRankConfidence(5), 0.001)
	assert.InDelta(t, 0.5, computeRankConfidence(20), 0.001)
}
