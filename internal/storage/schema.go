package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if err := createMetaTable(ctx, db); err != nil {
		return err
	}
	if err := createScoringRulesTable(ctx, db); err != nil {
		return err
	}
	if err := createInstitutionsTable(ctx, db); err != nil {
		return err
	}
	return createProgramsTable(ctx, db)
}

func createMetaTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS catalog_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create catalog_meta table: %w", err)
	}
	return nil
}

func createScoringRulesTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS scoring_rules (
		name TEXT PRIMARY KEY,
		definition TEXT NOT NULL,
		position INTEGER NOT NULL
	);
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create scoring_rules table: %w", err)
	}
	return nil
}

func createInstitutionsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS institutions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		kind TEXT NOT NULL,
		location TEXT,
		website TEXT,
		position INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_institutions_kind ON institutions(kind);
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create institutions table: %w", err)
	}
	return nil
}

func createProgramsTable(ctx context.Context, db *sql.DB) error {
	// requirements holds the ProgramRequirements JSON; min_score is
	// duplicated so it can be filtered without decoding.
	query := `
	CREATE TABLE IF NOT EXISTS programs (
		institution_id TEXT NOT NULL REFERENCES institutions(id) ON DELETE CASCADE,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		faculty TEXT,
		scoring_rule TEXT,
		min_score INTEGER NOT NULL,
		requirements TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (institution_id, id)
	);
	CREATE INDEX IF NOT EXISTS idx_programs_name ON programs(name);
	CREATE INDEX IF NOT EXISTS idx_programs_min_score ON programs(min_score);
	`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create programs table: %w", err)
	}
	return nil
}
