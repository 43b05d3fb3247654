package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/garyellow/course-eligibility-go/internal/catalog"
	domerrors "github.com/garyellow/course-eligibility-go/internal/errors"
	"github.com/garyellow/course-eligibility-go/internal/requirement"
	"github.com/garyellow/course-eligibility-go/internal/scoring"
)

const (
	metaVersion    = "version"
	metaImportedAt = "imported_at"
)

// SaveCatalog replaces the stored catalog with c in a single transaction.
func (db *DB) SaveCatalog(ctx context.Context, c *catalog.Catalog) error {
	if c == nil {
		return fmt.Errorf("save catalog: %w", domerrors.ErrInvalidInput)
	}

	tx, err := db.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"programs", "institutions", "scoring_rules", "catalog_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	ruleStmt, err := tx.PrepareContext(ctx, `INSERT INTO scoring_rules (name, definition, position) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare rule insert: %w", err)
	}
	defer func() { _ = ruleStmt.Close() }()

	for i, r := range c.Rules {
		def, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshal rule %s: %w", r.Name, err)
		}
		if _, err := ruleStmt.ExecContext(ctx, r.Name, string(def), i); err != nil {
			return fmt.Errorf("insert rule %s: %w", r.Name, err)
		}
	}

	instStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO institutions (id, name, kind, location, website, position)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare institution insert: %w", err)
	}
	defer func() { _ = instStmt.Close() }()

	progStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO programs (institution_id, id, name, faculty, scoring_rule, min_score, requirements, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare program insert: %w", err)
	}
	defer func() { _ = progStmt.Close() }()

	for i, inst := range c.Institutions {
		if _, err := instStmt.ExecContext(ctx, inst.ID, inst.Name, string(inst.Kind), inst.Location, inst.Website, i); err != nil {
			return fmt.Errorf("insert institution %s: %w", inst.ID, err)
		}
		for j, p := range inst.Programs {
			reqs, err := json.Marshal(p.Requirements)
			if err != nil {
				return fmt.Errorf("marshal requirements %s/%s: %w", inst.ID, p.ID, err)
			}
			_, err = progStmt.ExecContext(ctx, inst.ID, p.ID, p.Name, p.Faculty, p.ScoringRule,
				p.Requirements.MinScore, string(reqs), j)
			if err != nil {
				return fmt.Errorf("insert program %s/%s: %w", inst.ID, p.ID, err)
			}
		}
	}

	meta := map[string]string{
		metaVersion:    c.Version,
		metaImportedAt: strconv.FormatInt(time.Now().UnixNano(), 10),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO catalog_meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("insert meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// LoadCatalog reads the stored catalog in its original order.
// Returns ErrCatalogEmpty when nothing has been imported.
func (db *DB) LoadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	c := &catalog.Catalog{}

	info, err := db.CatalogInfo(ctx)
	if err != nil && !errors.Is(err, domerrors.ErrNotFound) {
		return nil, err
	}
	c.Version = info.Version

	rules, err := db.loadRules(ctx)
	if err != nil {
		return nil, err
	}
	c.Rules = rules

	rows, err := db.reader.QueryContext(ctx, `
		SELECT id, name, kind, COALESCE(location, ''), COALESCE(website, '')
		FROM institutions ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("query institutions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	index := make(map[string]int)
	for rows.Next() {
		var inst catalog.Institution
		var kind string
		if err := rows.Scan(&inst.ID, &inst.Name, &kind, &inst.Location, &inst.Website); err != nil {
			return nil, fmt.Errorf("scan institution: %w", err)
		}
		inst.Kind = catalog.Kind(kind)
		inst.Programs = []catalog.Program{}
		index[inst.ID] = len(c.Institutions)
		c.Institutions = append(c.Institutions, inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate institutions: %w", err)
	}
	if len(c.Institutions) == 0 {
		return nil, domerrors.ErrCatalogEmpty
	}

	progRows, err := db.reader.QueryContext(ctx, `
		SELECT p.institution_id, p.id, p.name, COALESCE(p.faculty, ''), COALESCE(p.scoring_rule, ''), p.requirements
		FROM programs p
		JOIN institutions i ON i.id = p.institution_id
		ORDER BY i.position, p.position
	`)
	if err != nil {
		return nil, fmt.Errorf("query programs: %w", err)
	}
	defer func() { _ = progRows.Close() }()

	for progRows.Next() {
		var instID, reqs string
		var p catalog.Program
		if err := progRows.Scan(&instID, &p.ID, &p.Name, &p.Faculty, &p.ScoringRule, &reqs); err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		var pr requirement.ProgramRequirements
		if err := json.Unmarshal([]byte(reqs), &pr); err != nil {
			return nil, fmt.Errorf("decode requirements %s/%s: %w", instID, p.ID, err)
		}
		p.Requirements = pr
		i, ok := index[instID]
		if !ok {
			continue
		}
		c.Institutions[i].Programs = append(c.Institutions[i].Programs, p)
	}
	if err := progRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate programs: %w", err)
	}

	return c, nil
}

func (db *DB) loadRules(ctx context.Context) ([]scoring.Rule, error) {
	rows, err := db.reader.QueryContext(ctx, `SELECT definition FROM scoring_rules ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query scoring rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []scoring.Rule
	for rows.Next() {
		var def string
		if err := rows.Scan(&def); err != nil {
			return nil, fmt.Errorf("scan scoring rule: %w", err)
		}
		var r scoring.Rule
		if err := json.Unmarshal([]byte(def), &r); err != nil {
			return nil, fmt.Errorf("decode scoring rule: %w", err)
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// CatalogInfo returns the stored catalog version and import time.
// Returns ErrNotFound before the first import.
func (db *DB) CatalogInfo(ctx context.Context) (Info, error) {
	rows, err := db.reader.QueryContext(ctx, `SELECT key, value FROM catalog_meta`)
	if err != nil {
		return Info{}, fmt.Errorf("query catalog meta: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var info Info
	found := false
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return Info{}, fmt.Errorf("scan catalog meta: %w", err)
		}
		found = true
		switch k {
		case metaVersion:
			info.Version = v
		case metaImportedAt:
			if ts, err := strconv.ParseInt(v, 10, 64); err == nil {
				info.ImportedAt = time.Unix(0, ts).UTC()
			}
		}
	}
	if err := rows.Err(); err != nil {
		return Info{}, fmt.Errorf("iterate catalog meta: %w", err)
	}
	if !found {
		return Info{}, domerrors.ErrNotFound
	}
	return info, nil
}

// CountInstitutions returns the number of stored institutions.
func (db *DB) CountInstitutions(ctx context.Context) (int, error) {
	return db.count(ctx, "institutions")
}

// CountPrograms returns the number of stored programmes.
func (db *DB) CountPrograms(ctx context.Context) (int, error) {
	return db.count(ctx, "programs")
}

func (db *DB) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := db.reader.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

// SearchProgramsByName finds programmes whose name contains term,
// case-insensitively. LIKE wildcards in term match literally.
func (db *DB) SearchProgramsByName(ctx context.Context, term string) ([]ProgramRef, error) {
	rows, err := db.reader.QueryContext(ctx, `
		SELECT i.id, i.name, i.kind, p.id, p.name, p.min_score
		FROM programs p
		JOIN institutions i ON i.id = p.institution_id
		WHERE p.name LIKE ? ESCAPE '\'
		ORDER BY i.position, p.position
	`, namePattern(term))
	if err != nil {
		return nil, fmt.Errorf("search programs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var refs []ProgramRef
	for rows.Next() {
		var ref ProgramRef
		var kind string
		if err := rows.Scan(&ref.InstitutionID, &ref.InstitutionName, &kind, &ref.ProgramID, &ref.ProgramName, &ref.MinScore); err != nil {
			return nil, fmt.Errorf("scan program: %w", err)
		}
		ref.Kind = catalog.Kind(kind)
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate programs: %w", err)
	}
	return refs, nil
}
