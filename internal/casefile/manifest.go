// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package casefile

import "time"

// ManifestEntry is one append-only ingestion ledger record proving a
// source document entered the pipeline. The dedup key is the pair
// (ContentHash, SourceURL): identical content arriving from a different
// source URL is a distinct ingestion, because provenance matters for
// audit.
type ManifestEntry struct {
	FileID        string    `json:"file_id"`
	ContentHash   string    `json:"content_hash"`
	SourceURL     string    `json:"source_url"`
	StoredPath    string    `json:"stored_path"`
	CorrelationID string    `json:"correlation_id"`
	SizeBytes     int64     `json:"size_bytes"`
	IngestedAt    time.Time `json:"ingested_at"`
}

// DedupKey returns the (hash, url) composite key used for duplicate
// detection.
func (e ManifestEntry) DedupKey() string {
	return e.ContentHash + "|" + e.SourceURL
}
