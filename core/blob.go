package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/relic-vcs/relic-server/pkg/textutil"
)

// blobChunkSize is the maximum chunk length requested from a
// ChunkSource per read.
const blobChunkSize = 4096

// BlobInfo describes a stored blob: its ID, uncompressed size, and the
// content classification computed by pkg/textutil.
type BlobInfo struct {
	OID    string
	Size   int64
	Binary bool
	Sloc   int
}

// CreateBlobFromBuffer writes a blob with the given content and returns
// its object ID.
func (r *Repository) CreateBlobFromBuffer(content []byte) (string, error) {
	hash, err := r.WriteObject(ObjectTypeBlob, content)
	if err != nil {
		return "", BlobError("failed to create blob object", err)
	}
	return hash, nil
}

// CreateBlobFromWorkdir writes a blob from a file in the repository's
// working directory. The path must be relative to the working
// directory; the repository cannot be bare.
func (r *Repository) CreateBlobFromWorkdir(relPath string) (string, error) {
	workdir, err := r.Workdir()
	if err != nil {
		return "", err
	}

	if filepath.IsAbs(relPath) {
		return "", BlobError(fmt.Sprintf("path %s must be relative to the working directory", relPath), nil)
	}
	fullPath := filepath.Join(workdir, relPath)
	// A plain prefix check would accept sibling directories whose name
	// starts with the workdir's last component, so containment is
	// decided on the relative path instead.
	rel, err := filepath.Rel(workdir, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", BlobError(fmt.Sprintf("path %s escapes the working directory", relPath), nil)
	}

	content, err := ReadFileContent(fullPath)
	if err != nil {
		return "", FSError(fmt.Sprintf("failed to read %s", relPath), err)
	}
	return r.CreateBlobFromBuffer(content)
}

// CreateBlobFromDisk writes a blob from a file anywhere on the
// filesystem. The repository can be bare or not.
func (r *Repository) CreateBlobFromDisk(path string) (string, error) {
	hash, err := HashFile(path)
	if err != nil {
		return "", err
	}
	// Content already stored under this ID; skip the write.
	if ObjectExists(r, hash) {
		return hash, nil
	}

	content, err := ReadFileContent(path)
	if err != nil {
		return "", FSError(fmt.Sprintf("failed to read %s", path), err)
	}
	return r.CreateBlobFromBuffer(content)
}

// CreateBlobFromChunks writes a blob from a pull-based provider of data
// chunks. The repository can be bare or not.
//
// A failure raised by the source during a read ends the stream: the
// blob is created from the data read up to that point. Callers should
// compare the blob's size with the expected data size to check that all
// data was written.
//
// hintPath names the file the data came from. No filter pipeline runs
// here; the hint is carried for callers that index blobs by origin.
func (r *Repository) CreateBlobFromChunks(hintPath string, src ChunkSource) (string, error) {
	if src == nil {
		return "", BlobError("nil chunk source", nil)
	}

	var content []byte
	for {
		chunk, err := src.ReadChunk(blobChunkSize)
		if err != nil || len(chunk) == 0 {
			break
		}
		if len(chunk) > blobChunkSize {
			chunk = chunk[:blobChunkSize]
		}
		content = append(content, chunk...)
	}

	return r.CreateBlobFromBuffer(content)
}

// GetBlob retrieves a blob's raw content by its object ID.
func (r *Repository) GetBlob(hash string) ([]byte, error) {
	objectType, data, err := r.ReadObject(hash)
	if err != nil {
		if IsErrNotFound(err) {
			return nil, NotFoundError(ErrCategoryBlob, fmt.Sprintf("blob %s", hash))
		}
		return nil, BlobError(fmt.Sprintf("failed to read blob %s", hash), err)
	}

	if objectType != ObjectTypeBlob {
		return nil, BlobError(fmt.Sprintf("object %s is not a blob, but a %s", hash, objectType), nil)
	}

	return data, nil
}

// BlobSize returns the real, uncompressed size of a blob in bytes.
func (r *Repository) BlobSize(hash string) (int64, error) {
	data, err := r.GetBlob(hash)
	if err != nil {
		return 0, err
	}
	return int64(len(data)), nil
}

// StatBlob returns a blob's size and content classification.
func (r *Repository) StatBlob(hash string) (*BlobInfo, error) {
	data, err := r.GetBlob(hash)
	if err != nil {
		return nil, err
	}

	return &BlobInfo{
		OID:    hash,
		Size:   int64(len(data)),
		Binary: textutil.IsBinary(data),
		Sloc:   textutil.Sloc(data),
	}, nil
}
