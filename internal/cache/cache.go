// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cache persists fetched publications between runs. Scholar
// rate-limits hard enough that refetching a long publication list on
// every run is not viable; authorship of a published paper does not
// change, so filled entries are reused indefinitely.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-coa/pkg/types"
)

const (
	dbFile      = "coauthors.db"
	profilesDir = "profiles"
)

// Store manages the publication cache SQLite database.
type Store struct {
	db  *sql.DB
	dir string
}

// NewStore opens or creates the cache database at dir/coauthors.db,
// creating the schema if it does not exist.
func NewStore(cfg types.CacheConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "cache"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening cache database: %w", err)
	}

	s := &Store{db: db, dir: dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating cache schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			name TEXT,
			affiliation TEXT,
			fetched_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS publications (
			scholar_id TEXT NOT NULL,
			id TEXT NOT NULL,
			title TEXT,
			year INTEGER,
			authors TEXT,
			filled INTEGER NOT NULL DEFAULT 0,
			fetched_at TEXT,
			PRIMARY KEY (scholar_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_publications_scholar ON publications(scholar_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Lookup returns the cached publication for (scholarID, pubID), or nil
// when the cache has no entry.
func (s *Store) Lookup(ctx context.Context, scholarID, pubID string) (*types.Publication, error) {
	if pubID == "" {
		return nil, nil
	}

	var (
		pub         types.Publication
		authorsJSON string
		filled      int
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, year, authors, filled FROM publications
		 WHERE scholar_id = ? AND id = ?`, scholarID, pubID,
	).Scan(&pub.ID, &pub.Title, &pub.Year, &authorsJSON, &filled)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying cache: %w", err)
	}

	if err := json.Unmarshal([]byte(authorsJSON), &pub.Authors); err != nil {
		return nil, fmt.Errorf("decoding cached authors for %s: %w", pubID, err)
	}
	pub.Filled = filled != 0
	return &pub, nil
}

// Store upserts a publication record.
func (s *Store) Store(ctx context.Context, scholarID string, pub types.Publication) error {
	if pub.ID == "" {
		return fmt.Errorf("publication %q has no ID", pub.Title)
	}

	authorsJSON, err := json.Marshal(pub.Authors)
	if err != nil {
		return fmt.Errorf("encoding authors: %w", err)
	}

	filled := 0
	if pub.Filled {
		filled = 1
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO publications (scholar_id, id, title, year, authors, filled, fetched_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(scholar_id, id) DO UPDATE SET
			title=excluded.title, year=excluded.year, authors=excluded.authors,
			filled=excluded.filled, fetched_at=excluded.fetched_at`,
		scholarID, pub.ID, pub.Title, pub.Year, string(authorsJSON), filled,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting publication %s: %w", pub.ID, err)
	}
	return nil
}

// SaveProfile upserts the profile row and writes a YAML snapshot to
// dir/profiles/[id].yaml for inspection outside the database.
func (s *Store) SaveProfile(ctx context.Context, profile *types.Profile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (id, name, affiliation, fetched_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, affiliation=excluded.affiliation,
			fetched_at=excluded.fetched_at`,
		profile.ID, profile.Name, profile.Affiliation,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting profile %s: %w", profile.ID, err)
	}

	snapDir := filepath.Join(s.dir, profilesDir)
	if err := os.MkdirAll(snapDir, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}
	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshaling profile snapshot: %w", err)
	}
	path := filepath.Join(snapDir, profile.ID+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing profile snapshot: %w", err)
	}
	return nil
}

// Entry summarizes one scholar's cached state for `cache list`.
type Entry struct {
	ScholarID    string
	Name         string
	Publications int
	Filled       int
	FetchedAt    string
}

// List returns a per-scholar summary of the cache contents.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.scholar_id,
			COALESCE(pr.name, ''),
			COUNT(*),
			SUM(p.filled),
			COALESCE(pr.fetched_at, '')
		 FROM publications p
		 LEFT JOIN profiles pr ON pr.id = p.scholar_id
		 GROUP BY p.scholar_id
		 ORDER BY p.scholar_id`)
	if err != nil {
		return nil, fmt.Errorf("querying cache summary: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ScholarID, &e.Name, &e.Publications, &e.Filled, &e.FetchedAt); err != nil {
			return nil, fmt.Errorf("scanning cache summary: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear deletes all cached publications and profiles.
func (s *Store) Clear(ctx context.Context) error {
	for _, stmt := range []string{`DELETE FROM publications`, `DELETE FROM profiles`} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clearing cache: %w", err)
		}
	}
	return nil
}
