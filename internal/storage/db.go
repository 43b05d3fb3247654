package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver for database/sql

	"github.com/garyellow/course-eligibility-go/internal/config"
)

// memoryPath opens a private in-memory database.
const memoryPath = ":memory:"

// DB wraps the SQLite catalog store. Writes go through a single connection;
// reads use a small pool. In-memory databases share one connection for both.
type DB struct {
	writer *sql.DB
	reader *sql.DB
	path   string
}

// connection pragmas applied to every pooled connection via the DSN.
var pragmas = []string{
	"journal_mode(WAL)",
	fmt.Sprintf("busy_timeout(%d)", config.DatabaseBusyTimeout.Milliseconds()),
	"foreign_keys(ON)",
	"synchronous(NORMAL)",
}

func dsn(dbPath string) string {
	params := make([]string, len(pragmas))
	for i, p := range pragmas {
		params[i] = "_pragma=" + p
	}
	return "file:" + dbPath + "?" + strings.Join(params, "&")
}

// New opens (creating if needed) the database at dbPath and initializes the schema.
func New(ctx context.Context, dbPath string) (*DB, error) {
	if dbPath != memoryPath {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	writer, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer at a time.
	writer.SetMaxOpenConns(1)
	writer.SetConnMaxLifetime(time.Hour)

	reader := writer
	if dbPath != memoryPath {
		reader, err = sql.Open("sqlite", dsn(dbPath))
		if err != nil {
			_ = writer.Close()
			return nil, fmt.Errorf("failed to open reader pool: %w", err)
		}
		reader.SetMaxOpenConns(8)
		reader.SetMaxIdleConns(4)
		reader.SetConnMaxLifetime(time.Hour)
	}

	db := &DB{writer: writer, reader: reader, path: dbPath}

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := InitSchema(ctx, writer); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes both connection pools.
func (db *DB) Close() error {
	var err error
	if db.reader != nil && db.reader != db.writer {
		err = db.reader.Close()
	}
	if db.writer != nil {
		if werr := db.writer.Close(); werr != nil {
			err = werr
		}
	}
	return err
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Ping checks that both pools can reach the database.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.writer.PingContext(ctx); err != nil {
		return err
	}
	return db.reader.PingContext(ctx)
}

// NewTestDB creates an in-memory database for testing.
func NewTestDB() (*DB, error) {
	return New(context.Background(), memoryPath)
}
