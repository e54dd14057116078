// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"oficio/internal/casefile"
)

// SQLStore implements Store with SQLite. The UNIQUE constraint on
// (content_hash, source_url) is what makes the Exists-then-Record
// sequence safe under concurrent identical uploads.
type SQLStore struct {
	db *sql.DB
}

const manifestSchema = `
CREATE TABLE IF NOT EXISTS manifest (
	file_id        TEXT PRIMARY KEY,
	content_hash   TEXT NOT NULL,
	source_url     TEXT NOT NULL,
	stored_path    TEXT NOT NULL DEFAULT '',
	correlation_id TEXT NOT NULL DEFAULT '',
	size_bytes     INTEGER NOT NULL DEFAULT 0,
	ingested_at    TEXT NOT NULL,
	UNIQUE (content_hash, source_url)
);
`

// OpenSQLStore opens or creates the ledger database at path, creating
// the parent directory if needed.
func OpenSQLStore(path string) (*SQLStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(manifestSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create manifest table: %w", err)
	}
	return &SQLStore{db: db}, nil
}

// Close releases the database handle.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Exists implements Store.
func (s *SQLStore) Exists(contentHash, sourceURL string) (bool, error) {
	var one int
	err := s.db.QueryRow(
		`SELECT 1 FROM manifest WHERE content_hash = ? AND source_url = ?`,
		contentHash, sourceURL,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query manifest: %w", err)
	}
	return true, nil
}

// Record implements Store. INSERT OR IGNORE rides the unique constraint:
// the first writer wins, later identical writes are silent no-ops.
func (s *SQLStore) Record(entry casefile.ManifestEntry) error {
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO manifest
		 (file_id, content_hash, source_url, stored_path, correlation_id, size_bytes, ingested_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.FileID, entry.ContentHash, entry.SourceURL, entry.StoredPath,
		entry.CorrelationID, entry.SizeBytes, entry.IngestedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert manifest entry: %w", err)
	}
	return nil
}

// GetByKey implements Store.
func (s *SQLStore) GetByKey(contentHash, sourceURL string) (*casefile.ManifestEntry, error) {
	row := s.db.QueryRow(
		`SELECT file_id, content_hash, source_url, stored_path, correlation_id, size_bytes, ingested_at
		 FROM manifest WHERE content_hash = ? AND source_url = ?`,
		contentHash, sourceURL,
	)
	return scanEntry(row)
}

// GetByFileID implements Store.
func (s *SQLStore) GetByFileID(fileID string) (*casefile.ManifestEntry, error) {
	row := s.db.QueryRow(
		`SELECT file_id, content_hash, source_url, stored_path, correlation_id, size_bytes, ingested_at
		 FROM manifest WHERE file_id = ?`,
		fileID,
	)
	return scanEntry(row)
}

func scanEntry(row *sql.Row) (*casefile.ManifestEntry, error) {
	var entry casefile.ManifestEntry
	var ingestedAt string
	err := row.Scan(&entry.FileID, &entry.ContentHash, &entry.SourceURL, &entry.StoredPath,
		&entry.CorrelationID, &entry.SizeBytes, &ingestedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query manifest entry: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, ingestedAt); err == nil {
		entry.IngestedAt = t
	}
	return &entry, nil
}

// Count returns the number of ledger entries, for tooling and tests.
func (s *SQLStore) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM manifest`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count manifest: %w", err)
	}
	return n, nil
}
