// Copyright the Oficio Authors. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package journal

import (
	"path/filepath"
	"testing"
	"time"

	"oficio/internal/casefile"
)

func openTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := OpenSQLStore(filepath.Join(t.TempDir(), "ledger", "journal.db"))
	if err != nil {
		t.Fatalf("OpenSQLStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLStore_RoundTrip(t *testing.T) {
	store := openTestStore(t)

	entry := casefile.ManifestEntry{
		FileID:        "file-1",
		ContentHash:   HashContent([]byte("oficio")),
		SourceURL:     "https://siara.example/doc/1",
		StoredPath:    "/data/doc1.pdf",
		CorrelationID: "corr-1",
		SizeBytes:     6,
		IngestedAt:    time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
	}
	if err := store.Record(entry); err != nil {
		t.Fatalf("Record: %v", err)
	}

	exists, err := store.Exists(entry.ContentHash, entry.SourceURL)
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("recorded entry must exist")
	}

	got, err := store.GetByFileID("file-1")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("expected an entry")
	}
	if got.SourceURL != entry.SourceURL || got.StoredPath != entry.StoredPath ||
		got.CorrelationID != entry.CorrelationID || got.SizeBytes != entry.SizeBytes {
		t.Errorf("round trip = %+v", got)
	}
	if !got.IngestedAt.Equal(entry.IngestedAt) {
		t.Errorf("ingested_at = %v, want %v", got.IngestedAt, entry.IngestedAt)
	}
}

func TestSQLStore_RecordIsIdempotent(t *testing.T) {
	store := openTestStore(t)

	entry := casefile.ManifestEntry{
		FileID:      "file-a",
		ContentHash: HashContent([]byte("contenido")),
		SourceURL:   "https://siara.example/doc/2",
		IngestedAt:  time.Now(),
	}
	if err := store.Record(entry); err != nil {
		t.Fatal(err)
	}

	// Same pair under a different file id: the unique constraint keeps
	// the first writer and silently drops the second.
	entry.FileID = "file-b"
	if err := store.Record(entry); err != nil {
		t.Fatalf("duplicate Record must be a no-op, got %v", err)
	}

	n, err := store.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("count = %d, want exactly 1", n)
	}
	if got, _ := store.GetByFileID("file-a"); got == nil {
		t.Error("first writer must win")
	}
	if got, _ := store.GetByFileID("file-b"); got != nil {
		t.Error("second writer must be dropped")
	}
}

func TestSQLStore_SameHashDifferentURL(t *testing.T) {
	store := openTestStore(t)
	hash := HashContent([]byte("compartido"))

	for i, url := range []string{"https://siara.example/a", "https://siara.example/b"} {
		err := store.Record(casefile.ManifestEntry{
			FileID:      "file-" + string(rune('a'+i)),
			ContentHash: hash,
			SourceURL:   url,
			IngestedAt:  time.Now(),
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	n, err := store.Count()
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2 distinct source URLs", n)
	}
}

func TestSQLStore_MissingFileID(t *testing.T) {
	store := openTestStore(t)
	got, err := store.GetByFileID("no-such-id")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestJournal_WithSQLStore(t *testing.T) {
	store := openTestStore(t)
	j := NewJournal(store)
	content := []byte("oficio ASEG/2026-0001")

	first, err := j.Ingest(content, "https://siara.example/doc/9", "", "")
	if err != nil {
		t.Fatal(err)
	}
	second, err := j.Ingest(content, "https://siara.example/doc/9", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if first.Duplicate || !second.Duplicate {
		t.Errorf("duplicate flags = %v, %v", first.Duplicate, second.Duplicate)
	}
	if second.Entry.FileID != first.Entry.FileID {
		t.Errorf("duplicate file id = %q, want original %q", second.Entry.FileID, first.Entry.FileID)
	}
	n, _ := store.Count()
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestSQLStore_GetByKey(t *testing.T) {
	store := openTestStore(t)
	entry := casefile.ManifestEntry{
		FileID:      "file-k",
		ContentHash: HashContent([]byte("clave")),
		SourceURL:   "https://siara.example/doc/7",
		IngestedAt:  time.Now(),
	}
	if err := store.Record(entry); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetByKey(entry.ContentHash, entry.SourceURL)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.FileID != "file-k" {
		t.Errorf("GetByKey = %+v", got)
	}

	missing, err := store.GetByKey(entry.ContentHash, "https://siara.example/other")
	if err != nil {
		t.Fatal(err)
	}
	if missing != nil {
		t.Errorf("expected nil for unrecorded pair, got %+v", missing)
	}
}
