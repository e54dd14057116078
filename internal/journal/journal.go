// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package journal is the content-hash ingestion ledger gating pipeline
// entry. Every source document is hashed and recorded against its source
// URL; re-submission of already-ingested content resolves to success
// without reprocessing, never to an error.
package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"oficio/internal/casefile"
	"oficio/internal/logging"
)

// Store is the storage port for manifest entries. The Exists-then-Record
// sequence is racy by nature; the store, not this package, must make
// Record atomic and idempotent on the (contentHash, sourceURL) pair —
// e.g. with a unique constraint.
type Store interface {
	// Exists reports whether an entry with this (hash, sourceURL) pair
	// was already recorded.
	Exists(contentHash, sourceURL string) (bool, error)

	// Record stores the entry. Recording an already-existing
	// (hash, sourceURL) pair is a no-op, not an error.
	Record(entry casefile.ManifestEntry) error

	// GetByKey returns the entry recorded under the (hash, sourceURL)
	// pair, or nil when none exists.
	GetByKey(contentHash, sourceURL string) (*casefile.ManifestEntry, error)

	// GetByFileID returns the entry with the given file id, or nil when
	// none exists.
	GetByFileID(fileID string) (*casefile.ManifestEntry, error)
}

// IngestResult reports one ingestion attempt.
type IngestResult struct {
	Entry casefile.ManifestEntry

	// Duplicate is true when the (hash, sourceURL) pair was already in
	// the ledger; Entry then carries the originally recorded entry,
	// ids included, so callers can correlate with the first ingestion.
	Duplicate bool
}

// Journal computes content hashes and gates entry through a Store.
type Journal struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// NewJournal builds a Journal over the given store.
func NewJournal(store Store) *Journal {
	return &Journal{
		store: store,
		log:   logging.New("journal"),
		now:   time.Now,
	}
}

// HashContent returns the hex SHA-256 digest of the document bytes.
func HashContent(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// Ingest hashes the content and records a manifest entry unless the
// (hash, sourceURL) pair is already in the ledger. correlationID may be
// empty; a fresh one is assigned.
func (j *Journal) Ingest(content []byte, sourceURL, storedPath, correlationID string) (IngestResult, error) {
	if sourceURL == "" {
		return IngestResult{}, fmt.Errorf("ingest: source URL is required")
	}

	hash := HashContent(content)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	entry := casefile.ManifestEntry{
		FileID:        uuid.NewString(),
		ContentHash:   hash,
		SourceURL:     sourceURL,
		StoredPath:    storedPath,
		CorrelationID: correlationID,
		SizeBytes:     int64(len(content)),
		IngestedAt:    j.now().UTC(),
	}

	exists, err := j.store.Exists(hash, sourceURL)
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest: existence check: %w", err)
	}
	if exists {
		// Hand back the recorded entry so the caller can correlate
		// with the original ingestion, not the ids minted above.
		stored, err := j.store.GetByKey(hash, sourceURL)
		if err != nil {
			return IngestResult{}, fmt.Errorf("ingest: duplicate lookup: %w", err)
		}
		if stored != nil {
			entry = *stored
		}
		j.log.Info("duplicate ingestion resolved without reprocessing",
			"file_id", entry.FileID, "content_hash", hash, "source_url", sourceURL)
		return IngestResult{Entry: entry, Duplicate: true}, nil
	}

	// Two concurrent identical uploads can both pass the check above;
	// the store's Record is the atomic arbiter.
	if err := j.store.Record(entry); err != nil {
		return IngestResult{}, fmt.Errorf("ingest: record: %w", err)
	}

	j.log.Info("document ingested",
		"file_id", entry.FileID, "content_hash", hash,
		"source_url", sourceURL, "size_bytes", entry.SizeBytes)
	return IngestResult{Entry: entry}, nil
}

// Lookup returns the manifest entry for a file id, or nil when unknown.
func (j *Journal) Lookup(fileID string) (*casefile.ManifestEntry, error) {
	return j.store.GetByFileID(fileID)
}
