package core

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zlib"
)

// ObjectTypeBlob is the only object type this server stores; the header
// format leaves room for others.
const ObjectTypeBlob = "blob"

// HashBytes calculates the SHA-256 hash of the given data, including
// the Relic object header. The hex form of this hash is the object ID.
func HashBytes(objectType string, data []byte) string {
	header := fmt.Sprintf("%s %d\x00", objectType, len(data))
	h := sha256.New()
	h.Write([]byte(header))
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HashFile calculates the object ID a file's content would receive as a
// blob, without writing anything.
func HashFile(filePath string) (string, error) {
	content, err := ReadFileContent(filePath)
	if err != nil {
		return "", err
	}
	return HashBytes(ObjectTypeBlob, content), nil
}

// IsValidHex checks if a string is a valid hexadecimal value.
func IsValidHex(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// IsValidOID checks if a string is a well-formed object ID.
func IsValidOID(oid string) bool {
	return len(oid) == 64 && IsValidHex(oid)
}

// GetObjectPath returns the path where an object is stored. Objects fan
// out into subdirectories named by the first two hash characters.
func GetObjectPath(repo *Repository, hash string) string {
	prefix := hash[:2]
	suffix := hash[2:]
	return filepath.Join(repo.ObjectsDir, prefix, suffix)
}

// WriteObject writes an object to the object store and returns its ID.
// The object is stored zlib-compressed with a "type size\x00" header.
// Writing an object that already exists is a no-op.
func WriteObject(repo *Repository, objectType string, data []byte) (string, error) {
	hash := HashBytes(objectType, data)
	objectPath := GetObjectPath(repo, hash)

	objectDir := filepath.Dir(objectPath)
	if err := EnsureDirExists(objectDir); err != nil {
		return "", FSError("failed to create object directory", err)
	}

	// Don't overwrite existing objects (idempotent operation)
	if FileExists(objectPath) {
		return hash, nil
	}

	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	header := fmt.Sprintf("%s %d\x00", objectType, len(data))
	if _, err := zw.Write([]byte(header)); err != nil {
		return "", ObjectError("failed to compress object header", err)
	}
	if _, err := zw.Write(data); err != nil {
		return "", ObjectError("failed to compress object data", err)
	}
	if err := zw.Close(); err != nil {
		return "", ObjectError("failed to finish object compression", err)
	}

	if err := os.WriteFile(objectPath, buf.Bytes(), 0444); err != nil {
		return "", FSError("failed to write object", err)
	}

	return hash, nil
}

// ReadObject reads an object from the object store, returning its type
// and data.
func ReadObject(repo *Repository, hash string) (string, []byte, error) {
	if !IsValidOID(hash) {
		return "", nil, ObjectError(fmt.Sprintf("invalid object hash: %s", hash), nil)
	}

	objectPath := GetObjectPath(repo, hash)
	file, err := os.Open(objectPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, NotFoundError(ErrCategoryObject, fmt.Sprintf("object %s", hash))
		}
		return "", nil, FSError(fmt.Sprintf("failed to open object %s", hash), err)
	}
	defer file.Close()

	zr, err := zlib.NewReader(file)
	if err != nil {
		return "", nil, ObjectError(fmt.Sprintf("object %s is not zlib-compressed", hash), err)
	}
	defer zr.Close()

	content, err := io.ReadAll(zr)
	if err != nil {
		return "", nil, ObjectError(fmt.Sprintf("failed to decompress object %s", hash), err)
	}

	headerEnd := bytes.IndexByte(content, '\x00')
	if headerEnd == -1 {
		return "", nil, ObjectError("invalid object format: header not found", nil)
	}

	var objectType string
	var size int
	if _, err := fmt.Sscanf(string(content[:headerEnd]), "%s %d", &objectType, &size); err != nil {
		return "", nil, ObjectError("invalid object header", err)
	}

	data := content[headerEnd+1:]
	if len(data) != size {
		return "", nil, ObjectError(fmt.Sprintf("object size mismatch: expected %d, got %d", size, len(data)), nil)
	}

	return objectType, data, nil
}

// ObjectExists checks if an object exists in the object store.
func ObjectExists(repo *Repository, hash string) bool {
	if !IsValidOID(hash) {
		return false
	}
	return FileExists(GetObjectPath(repo, hash))
}

// ListObjects returns the IDs of all objects in the store by walking
// the fan-out directories. Entries that don't look like object files
// are skipped.
func ListObjects(repo *Repository) ([]string, error) {
	if !FileExists(repo.ObjectsDir) {
		return nil, nil
	}

	prefixes, err := ReadDir(repo.ObjectsDir)
	if err != nil {
		return nil, err
	}

	var oids []string
	for _, prefix := range prefixes {
		if !prefix.IsDir() || len(prefix.Name()) != 2 || !IsValidHex(prefix.Name()) {
			continue
		}
		entries, err := ReadDir(filepath.Join(repo.ObjectsDir, prefix.Name()))
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			oid := prefix.Name() + entry.Name()
			if entry.IsDir() || !IsValidOID(oid) {
				continue
			}
			oids = append(oids, oid)
		}
	}
	return oids, nil
}
