// Package search provides BM25 keyword search over catalog programmes.
// Each programme is one document built from its name, faculty, institution
// and required subjects.
package search

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/iwilltry42/bm25-go/bm25"

	"github.com/garyellow/course-eligibility-go/internal/catalog"
	"github.com/garyellow/course-eligibility-go/internal/logger"
)

// BM25 parameters.
const (
	k1 = 1.5
	b  = 0.75
)

// Hit is one ranked search result.
type Hit struct {
	InstitutionID   string       `json:"institution_id"`
	InstitutionName string       `json:"institution_name"`
	Kind            catalog.Kind `json:"kind"`
	ProgramID       string       `json:"program_id"`
	ProgramName     string       `json:"program_name"`
	Faculty         string       `json:"faculty,omitempty"`
	MinScore        int          `json:"min_score"`
	Score           float64      `json:"score"`
	Rank            int          `json:"rank"`
	// Confidence is derived from the rank, not the raw score (0-1).
	Confidence float32 `json:"confidence"`
}

// Index is a BM25 index over the programmes of one catalog.
// It is safe for concurrent use.
type Index struct {
	mu     sync.RWMutex
	okapi  *bm25.BM25Okapi
	docs   []Hit
	logger *logger.Logger
}

// NewIndex creates an empty index.
func NewIndex(log *logger.Logger) *Index {
	return &Index{logger: log}
}

// Build replaces the indexed documents with the programmes of c.
func (idx *Index) Build(c *catalog.Catalog) error {
	if idx == nil {
		return nil
	}

	var (
		corpus []string
		docs   []Hit
	)
	if c != nil {
		for _, inst := range c.Institutions {
			for _, p := range inst.Programs {
				corpus = append(corpus, document(inst, p))
				docs = append(docs, Hit{
					InstitutionID:   inst.ID,
					InstitutionName: inst.Name,
					Kind:            inst.Kind,
					ProgramID:       p.ID,
					ProgramName:     p.Name,
					Faculty:         p.Faculty,
					MinScore:        p.Requirements.MinScore,
				})
			}
		}
	}

	var okapi *bm25.BM25Okapi
	if len(corpus) > 0 {
		var err error
		okapi, err = bm25.NewBM25Okapi(corpus, tokenize, k1, b, nil)
		if err != nil {
			return fmt.Errorf("failed to create BM25 index: %w", err)
		}
	}

	idx.mu.Lock()
	idx.okapi = okapi
	idx.docs = docs
	idx.mu.Unlock()

	if idx.logger != nil {
		idx.logger.WithField("docs", len(docs)).Info("Program search index built")
	}
	return nil
}

// document concatenates the searchable text of a programme.
func document(inst catalog.Institution, p catalog.Program) string {
	parts := []string{p.Name, p.Faculty, inst.Name, inst.Location}
	for _, r := range p.Requirements.Subjects {
		parts = append(parts, r.Key())
	}
	return strings.Join(parts, " ")
}

// Search returns up to limit programmes ranked by BM25 score. Documents
// with a zero score are dropped; ties keep catalog order.
func (idx *Index) Search(query string, limit int) ([]Hit, error) {
	if idx == nil || strings.TrimSpace(query) == "" {
		return nil, nil
	}

	tokens := tokenize(query)
	if len(tokens) == 0 {
		return nil, nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.okapi == nil {
		return nil, nil
	}

	scores, err := idx.okapi.GetScores(tokens)
	if err != nil {
		return nil, fmt.Errorf("BM25 scoring failed: %w", err)
	}

	hits := make([]Hit, 0, len(scores))
	for i, score := range scores {
		if score <= 0 || i >= len(idx.docs) {
			continue
		}
		h := idx.docs[i]
		h.Score = score
		hits = append(hits, h)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	for i := range hits {
		hits[i].Rank = i + 1
		hits[i].Confidence = computeRankConfidence(hits[i].Rank)
	}
	return hits, nil
}

// Count returns the number of indexed programmes.
func (idx *Index) Count() int {
	if idx == nil {
		return 0
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.docs)
}

// computeRankConfidence maps a rank to (0, 1). BM25 scores are unbounded
// and query-dependent, so rank is used as a proxy.
//
//	rank 1 → 0.95, rank 5 → 0.80, rank 10 → 0.67, rank 20 → 0.50
func computeRankConfidence(rank int) float32 {
	if rank <= 0 {
		return 0
	}
	return float32(1.0 / (1.0 + 0.05*float64(rank)))
}

// tokenize lowercases text and splits it on anything that is not a letter
// or digit. Single-rune tokens are dropped except digits, so "N4" and
// "Grade 6" stay searchable.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) == 1 && !unicode.IsDigit([]rune(f)[0]) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}
