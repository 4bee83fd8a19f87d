package core

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCreateBlobFromBuffer(t *testing.T) {
	repo := newTestRepo(t, true)

	content := []byte("package main\n\nfunc main() {}\n")
	oid, err := repo.CreateBlobFromBuffer(content)
	if err != nil {
		t.Fatalf("Failed to create blob: %v", err)
	}
	if oid != HashBytes(ObjectTypeBlob, content) {
		t.Errorf("Blob ID does not match content hash")
	}

	data, err := repo.GetBlob(oid)
	if err != nil {
		t.Fatalf("Failed to read blob: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("Blob content = %q, want %q", data, content)
	}

	size, err := repo.BlobSize(oid)
	if err != nil {
		t.Fatalf("Failed to get blob size: %v", err)
	}
	if size != int64(len(content)) {
		t.Errorf("Blob size = %d, want %d", size, len(content))
	}
}

func TestStatBlob(t *testing.T) {
	repo := newTestRepo(t, true)

	oid, err := repo.CreateBlobFromBuffer([]byte("a\nb\nc\n"))
	if err != nil {
		t.Fatalf("Failed to create blob: %v", err)
	}

	info, err := repo.StatBlob(oid)
	if err != nil {
		t.Fatalf("Failed to stat blob: %v", err)
	}
	if info.OID != oid {
		t.Errorf("Info OID = %s, want %s", info.OID, oid)
	}
	if info.Size != 6 {
		t.Errorf("Info size = %d, want 6", info.Size)
	}
	if info.Binary {
		t.Error("Plain text blob reported as binary")
	}
	if info.Sloc != 3 {
		t.Errorf("Info sloc = %d, want 3", info.Sloc)
	}

	binOID, err := repo.CreateBlobFromBuffer([]byte("a\x00b"))
	if err != nil {
		t.Fatalf("Failed to create binary blob: %v", err)
	}
	binInfo, err := repo.StatBlob(binOID)
	if err != nil {
		t.Fatalf("Failed to stat binary blob: %v", err)
	}
	if !binInfo.Binary {
		t.Error("Blob with NUL byte not reported as binary")
	}
}

func TestGetBlobNotFound(t *testing.T) {
	repo := newTestRepo(t, true)

	_, err := repo.GetBlob(HashBytes(ObjectTypeBlob, []byte("missing")))
	if !IsErrNotFound(err) {
		t.Errorf("Missing blob should yield a not-found error, got: %v", err)
	}
}

func TestCreateBlobFromWorkdir(t *testing.T) {
	repo := newTestRepo(t, false)

	content := []byte("working tree file\n")
	if err := os.MkdirAll(filepath.Join(repo.Root, "src"), 0755); err != nil {
		t.Fatalf("Failed to create source directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(repo.Root, "src", "main.go"), content, 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	oid, err := repo.CreateBlobFromWorkdir(filepath.Join("src", "main.go"))
	if err != nil {
		t.Fatalf("Failed to create blob from workdir: %v", err)
	}
	data, err := repo.GetBlob(oid)
	if err != nil {
		t.Fatalf("Failed to read blob: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("Blob content = %q, want %q", data, content)
	}

	if _, err := repo.CreateBlobFromWorkdir("/etc/passwd"); err == nil {
		t.Error("Absolute path should be rejected")
	}
	if _, err := repo.CreateBlobFromWorkdir(filepath.Join("..", "outside")); err == nil {
		t.Error("Path escaping the working directory should be rejected")
	}
}

func TestCreateBlobFromWorkdirSiblingPrefix(t *testing.T) {
	repo := newTestRepo(t, false)

	// A sibling directory whose name starts with the workdir's last
	// component must not be reachable through "..".
	sibling := repo.Root + "-secrets"
	if err := os.MkdirAll(sibling, 0755); err != nil {
		t.Fatalf("Failed to create sibling directory: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(sibling) })
	if err := os.WriteFile(filepath.Join(sibling, "key.txt"), []byte("secret"), 0644); err != nil {
		t.Fatalf("Failed to write sibling file: %v", err)
	}

	escape := filepath.Join("..", filepath.Base(sibling), "key.txt")
	if _, err := repo.CreateBlobFromWorkdir(escape); err == nil {
		t.Errorf("Path %s reaching a sibling directory should be rejected", escape)
	}
}

func TestCreateBlobFromWorkdirBare(t *testing.T) {
	repo := newTestRepo(t, true)

	_, err := repo.CreateBlobFromWorkdir("anything")
	if !IsErrBareRepo(err) {
		t.Errorf("Workdir blob creation on a bare repo should fail with bare error, got: %v", err)
	}
}

func TestCreateBlobFromDisk(t *testing.T) {
	repo := newTestRepo(t, true)

	tmpDir, err := os.MkdirTemp("", "relic_disk_test")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	content := []byte("file outside any repository")
	path := filepath.Join(tmpDir, "blob.txt")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	oid, err := repo.CreateBlobFromDisk(path)
	if err != nil {
		t.Fatalf("Failed to create blob from disk: %v", err)
	}
	data, err := repo.GetBlob(oid)
	if err != nil {
		t.Fatalf("Failed to read blob: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("Blob content = %q, want %q", data, content)
	}

	// A second write of the same file short-circuits on the content
	// hash and yields the same ID.
	again, err := repo.CreateBlobFromDisk(path)
	if err != nil {
		t.Fatalf("Failed to re-create blob from disk: %v", err)
	}
	if again != oid {
		t.Errorf("Repeated disk blob = %s, want %s", again, oid)
	}

	if _, err := repo.CreateBlobFromDisk(filepath.Join(tmpDir, "no-such-file")); err == nil {
		t.Error("Missing file should fail blob creation")
	}
}

func TestCreateBlobFromChunks(t *testing.T) {
	repo := newTestRepo(t, true)

	content := bytes.Repeat([]byte("chunked blob data "), 1000)
	oid, err := repo.CreateBlobFromChunks("data/blob.txt", ReaderSource(bytes.NewReader(content)))
	if err != nil {
		t.Fatalf("Failed to create blob from chunks: %v", err)
	}

	data, err := repo.GetBlob(oid)
	if err != nil {
		t.Fatalf("Failed to read blob: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Errorf("Chunked blob content does not round-trip (%d vs %d bytes)", len(data), len(content))
	}
}

// failingSource returns one good chunk, then an error.
type failingSource struct {
	served bool
}

func (s *failingSource) ReadChunk(maxLen int) ([]byte, error) {
	if s.served {
		return nil, errors.New("read failed")
	}
	s.served = true
	return []byte("partial "), nil
}

func TestCreateBlobFromChunksPartial(t *testing.T) {
	repo := newTestRepo(t, true)

	// A source error ends the stream; the blob is created from the
	// data read before the failure.
	oid, err := repo.CreateBlobFromChunks("", &failingSource{})
	if err != nil {
		t.Fatalf("Chunk source failure should not fail blob creation: %v", err)
	}

	data, err := repo.GetBlob(oid)
	if err != nil {
		t.Fatalf("Failed to read blob: %v", err)
	}
	if string(data) != "partial " {
		t.Errorf("Partial blob content = %q, want %q", data, "partial ")
	}

	size, err := repo.BlobSize(oid)
	if err != nil {
		t.Fatalf("Failed to get blob size: %v", err)
	}
	if size != int64(len("partial ")) {
		t.Errorf("Partial blob size = %d, want %d", size, len("partial "))
	}
}

func TestCreateBlobFromChunksEmpty(t *testing.T) {
	repo := newTestRepo(t, true)

	oid, err := repo.CreateBlobFromChunks("", ReaderSource(strings.NewReader("")))
	if err != nil {
		t.Fatalf("Failed to create empty blob: %v", err)
	}

	size, err := repo.BlobSize(oid)
	if err != nil {
		t.Fatalf("Failed to get blob size: %v", err)
	}
	if size != 0 {
		t.Errorf("Empty blob size = %d, want 0", size)
	}
}
