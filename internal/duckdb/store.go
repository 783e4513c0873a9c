// Package duckdb persists scan result tables in a DuckDB database so that
// repeated runs stay queryable.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection for scan results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create results directory: %w", err)
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
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS criteria_lines (
		run VARCHAR,
		query VARCHAR,
		target VARCHAR,
		evalue DOUBLE,
		region_id INTEGER,
		aln_start INTEGER,
		aln_end INTEGER,
		region_good VARCHAR,
		start_good VARCHAR,
		end_good VARCHAR,
		extein_good VARCHAR
	)`); err != nil {
		return err
	}

	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS refined_regions (
		run VARCHAR,
		query VARCHAR,
		region_id INTEGER,
		start INTEGER,
		"end" INTEGER,
		len INTEGER,
		refining_target VARCHAR,
		refining_evalue DOUBLE
	)`)
	return err
}
