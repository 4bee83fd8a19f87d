package core

import (
	"bytes"
	"os"
	"testing"
)

func newTestRepo(t *testing.T, bare bool) *Repository {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "relic_core_test")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tmpDir) })

	repo := NewRepository(tmpDir)
	if bare {
		err = CreateBareRepo(repo)
	} else {
		err = CreateRepo(repo)
	}
	if err != nil {
		t.Fatalf("Failed to create repository: %v", err)
	}
	return repo
}

func TestWriteAndReadObject(t *testing.T) {
	repo := newTestRepo(t, false)

	data := []byte("test blob content")
	hash, err := WriteObject(repo, ObjectTypeBlob, data)
	if err != nil {
		t.Fatalf("Failed to write object: %v", err)
	}
	if !IsValidOID(hash) {
		t.Fatalf("Invalid object ID returned: %s", hash)
	}
	if hash != HashBytes(ObjectTypeBlob, data) {
		t.Errorf("Object ID does not match content hash")
	}

	objectType, readData, err := ReadObject(repo, hash)
	if err != nil {
		t.Fatalf("Failed to read object: %v", err)
	}
	if objectType != ObjectTypeBlob {
		t.Errorf("Object type = %s, want blob", objectType)
	}
	if !bytes.Equal(readData, data) {
		t.Errorf("Object data = %q, want %q", readData, data)
	}

	// Writing the same content again is idempotent.
	hash2, err := WriteObject(repo, ObjectTypeBlob, data)
	if err != nil {
		t.Fatalf("Failed to rewrite object: %v", err)
	}
	if hash2 != hash {
		t.Errorf("Rewrite returned different ID: %s vs %s", hash2, hash)
	}
}

func TestReadObjectErrors(t *testing.T) {
	repo := newTestRepo(t, false)

	if _, _, err := ReadObject(repo, "not-a-hash"); err == nil {
		t.Error("Reading with an invalid hash should fail")
	}

	missing := HashBytes(ObjectTypeBlob, []byte("never written"))
	_, _, err := ReadObject(repo, missing)
	if err == nil {
		t.Fatal("Reading a missing object should fail")
	}
	if !IsErrNotFound(err) {
		t.Errorf("Missing object error should be a not-found error, got: %v", err)
	}
}

func TestObjectExists(t *testing.T) {
	repo := newTestRepo(t, false)

	hash, err := WriteObject(repo, ObjectTypeBlob, []byte("exists"))
	if err != nil {
		t.Fatalf("Failed to write object: %v", err)
	}

	if !ObjectExists(repo, hash) {
		t.Error("ObjectExists should report a written object")
	}
	if ObjectExists(repo, HashBytes(ObjectTypeBlob, []byte("absent"))) {
		t.Error("ObjectExists should not report an absent object")
	}
	if ObjectExists(repo, "bogus") {
		t.Error("ObjectExists should reject malformed hashes")
	}
}

func TestListObjects(t *testing.T) {
	repo := newTestRepo(t, true)

	want := make(map[string]bool)
	for _, content := range []string{"one", "two", "three"} {
		hash, err := WriteObject(repo, ObjectTypeBlob, []byte(content))
		if err != nil {
			t.Fatalf("Failed to write object: %v", err)
		}
		want[hash] = true
	}

	oids, err := ListObjects(repo)
	if err != nil {
		t.Fatalf("Failed to list objects: %v", err)
	}
	if len(oids) != len(want) {
		t.Fatalf("ListObjects returned %d objects, want %d", len(oids), len(want))
	}
	for _, oid := range oids {
		if !want[oid] {
			t.Errorf("ListObjects returned unexpected object %s", oid)
		}
	}
}

func TestRepositoryFlags(t *testing.T) {
	repo := newTestRepo(t, false)
	bare := newTestRepo(t, true)

	if isBare, err := repo.IsBare(); err != nil || isBare {
		t.Errorf("IsBare on working repo = %v, %v; want false", isBare, err)
	}
	if isBare, err := bare.IsBare(); err != nil || !isBare {
		t.Errorf("IsBare on bare repo = %v, %v; want true", isBare, err)
	}

	if _, err := repo.Workdir(); err != nil {
		t.Errorf("Workdir on working repo failed: %v", err)
	}
	if _, err := bare.Workdir(); !IsErrBareRepo(err) {
		t.Errorf("Workdir on bare repo should fail with bare error, got: %v", err)
	}
}

func TestOpenRepository(t *testing.T) {
	repo := newTestRepo(t, false)

	if _, err := OpenRepository(repo.Root); err != nil {
		t.Errorf("Failed to open existing repository: %v", err)
	}

	tmpDir, err := os.MkdirTemp("", "relic_open_test")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	if _, err := OpenRepository(tmpDir); !IsErrNotRepo(err) {
		t.Errorf("Opening a non-repository should fail with ErrNotARepository, got: %v", err)
	}
}
