// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"sync"

	"oficio/internal/casefile"
)

// MemStore is an in-memory Store for tests and single-process tooling.
// A single mutex covers the Exists/Record pair, so Record stays atomic
// and idempotent.
type MemStore struct {
	mu       sync.Mutex
	byKey    map[string]casefile.ManifestEntry
	byFileID map[string]casefile.ManifestEntry
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		byKey:    make(map[string]casefile.ManifestEntry),
		byFileID: make(map[string]casefile.ManifestEntry),
	}
}

// Exists implements Store.
func (s *MemStore) Exists(contentHash, sourceURL string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byKey[contentHash+"|"+sourceURL]
	return ok, nil
}

// Record implements Store. Re-recording an existing (hash, url) pair is
// a no-op; the first entry wins.
func (s *MemStore) Record(entry casefile.ManifestEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := entry.DedupKey()
	if _, ok := s.byKey[key]; ok {
		return nil
	}
	s.byKey[key] = entry
	s.byFileID[entry.FileID] = entry
	return nil
}

// GetByKey implements Store.
func (s *MemStore) GetByKey(contentHash, sourceURL string) (*casefile.ManifestEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.byKey[contentHash+"|"+sourceURL]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// GetByFileID implements Store.
func (s *MemStore) GetByFileID(fileID string) (*casefile.ManifestEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.byFileID[fileID]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

// Len returns the number of stored entries.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byKey)
}
