package repository

import (
	"bytes"
	"errors"
	"log"
	"strings"
	"testing"

	"github.com/relic-vcs/relic-server/core"
	"github.com/relic-vcs/relic-server/internal/db/models"
)

// recordingIndex captures upserts in memory.
type recordingIndex struct {
	entries []*models.Blob
}

func (r *recordingIndex) Upsert(blob *models.Blob) error {
	r.entries = append(r.entries, blob)
	return nil
}

func (r *recordingIndex) DeleteByRepository(repoID uint) error { return nil }

// failingIndex rejects every write.
type failingIndex struct{}

func (failingIndex) Upsert(*models.Blob) error { return errors.New("connection refused") }

func (failingIndex) DeleteByRepository(uint) error { return nil }

func TestIndexBlobRecordsEntry(t *testing.T) {
	idx := &recordingIndex{}
	ix := NewIndexer(nil, idx, log.New(&bytes.Buffer{}, "", 0))

	info := &core.BlobInfo{OID: strings.Repeat("ab", 32), Size: 6, Binary: false, Sloc: 3}
	if err := ix.IndexBlob(&models.Repository{ID: 7}, info, "src/main.go"); err != nil {
		t.Fatalf("IndexBlob failed: %v", err)
	}

	if len(idx.entries) != 1 {
		t.Fatalf("Recorded %d entries, want 1", len(idx.entries))
	}
	entry := idx.entries[0]
	if entry.RepositoryID != 7 || entry.OID != info.OID || entry.Size != 6 || entry.Sloc != 3 {
		t.Errorf("Indexed entry = %+v, want fields from %+v", entry, info)
	}
	if entry.HintPath != "src/main.go" {
		t.Errorf("Indexed hint path = %q, want src/main.go", entry.HintPath)
	}
}

func TestIndexBlobLogsFailure(t *testing.T) {
	var buf bytes.Buffer
	ix := NewIndexer(nil, failingIndex{}, log.New(&buf, "", 0))

	info := &core.BlobInfo{OID: strings.Repeat("cd", 32), Size: 1}
	err := ix.IndexBlob(&models.Repository{ID: 3}, info, "")
	if err == nil {
		t.Fatal("Index write failure should be returned")
	}

	// Callers may drop the error; the failure has to show up in the log.
	if !strings.Contains(buf.String(), info.OID) {
		t.Errorf("Log output %q does not mention the failed blob", buf.String())
	}
}
