// Package duckdb persists typing results in a DuckDB database: one row
// per sample plus one row per locus call, queryable across runs.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/seqtyping/sbtyper/internal/sbt"
)

// Store manages a DuckDB connection holding typing results.
type Store struct {
	db      *sql.DB
	path    string
	pending []*sbt.SampleResult
}

// Open opens or creates a results database at the given path, creating
// parent directories as needed. An empty path opens an in-memory
// database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS sample_results (
		sample VARCHAR,
		st VARCHAR,
		classification VARCHAR,
		mode VARCHAR,
		flaa VARCHAR,
		pile VARCHAR,
		asd VARCHAR,
		mip VARCHAR,
		momps VARCHAR,
		proa VARCHAR,
		neua_neuah VARCHAR,
		created_at TIMESTAMP,
		PRIMARY KEY (sample)
	);

	CREATE TABLE IF NOT EXISTS locus_calls (
		sample VARCHAR,
		locus VARCHAR,
		state VARCHAR,
		allele VARCHAR,
		candidates VARCHAR,
		sequence VARCHAR,
		PRIMARY KEY (sample, locus)
	)`)
	return err
}
