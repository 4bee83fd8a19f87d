package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
)

// Blob describes a stored blob
type Blob struct {
	OID      string `json:"oid"`
	Size     int64  `json:"size"`
	Binary   bool   `json:"binary"`
	Sloc     int    `json:"sloc"`
	HintPath string `json:"hint_path,omitempty"`
}

// BlobText carries decoded blob text
type BlobText struct {
	OID      string `json:"oid"`
	Encoding string `json:"encoding,omitempty"`
	Content  string `json:"content"`
}

func blobsPath(username, repoName string) string {
	return fmt.Sprintf("/%s/%s/blobs", username, repoName)
}

func parseBlob(body []byte) (*Blob, error) {
	var blob Blob
	if err := json.Unmarshal(body, &blob); err != nil {
		return nil, fmt.Errorf("failed to parse blob response: %w", err)
	}
	return &blob, nil
}

// CreateBlob stores a byte buffer as a blob
func (c *Client) CreateBlob(ctx context.Context, username, repoName string, content []byte) (*Blob, error) {
	body, err := c.PostBinary(ctx, blobsPath(username, repoName), bytes.NewReader(content), ContentTypeBinary)
	if err != nil {
		return nil, err
	}
	return parseBlob(body)
}

// CreateBlobStream stores the contents of a reader as a blob. The
// server records hintPath, when non-empty, alongside the blob. If the
// stream fails partway, the server keeps the bytes it received; compare
// the returned size against the expected one.
func (c *Client) CreateBlobStream(ctx context.Context, username, repoName, hintPath string, r io.Reader) (*Blob, error) {
	p := blobsPath(username, repoName) + "/stream"
	if hintPath != "" {
		p += "?hint_path=" + url.QueryEscape(hintPath)
	}

	body, err := c.PostBinary(ctx, p, r, ContentTypeBinary)
	if err != nil {
		return nil, err
	}
	return parseBlob(body)
}

// CreateBlobFromFile streams a local file to the server as a blob,
// using its path as the hint path.
func (c *Client) CreateBlobFromFile(ctx context.Context, username, repoName, filePath string) (*Blob, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	return c.CreateBlobStream(ctx, username, repoName, filePath, f)
}

// CreateBlobFromWorkdir asks the server to store a file from the
// repository's working directory as a blob. Fails on bare repositories.
func (c *Client) CreateBlobFromWorkdir(ctx context.Context, username, repoName, relPath string) (*Blob, error) {
	body, err := c.Post(ctx, blobsPath(username, repoName)+"/from-workdir", map[string]string{"path": relPath})
	if err != nil {
		return nil, err
	}
	return parseBlob(body)
}

// CreateBlobFromDisk asks the server to store one of its own files as a
// blob. The path is resolved on the server host.
func (c *Client) CreateBlobFromDisk(ctx context.Context, username, repoName, path string) (*Blob, error) {
	body, err := c.Post(ctx, blobsPath(username, repoName)+"/from-disk", map[string]string{"path": path})
	if err != nil {
		return nil, err
	}
	return parseBlob(body)
}

// GetBlobContent retrieves raw blob content. A negative maxBytes
// retrieves the whole blob.
func (c *Client) GetBlobContent(ctx context.Context, username, repoName, oid string, maxBytes int) ([]byte, error) {
	p := blobsPath(username, repoName) + "/" + oid
	if maxBytes >= 0 {
		p += "?max_bytes=" + strconv.Itoa(maxBytes)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(p), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// GetBlobText retrieves blob content as decoded text. A negative
// maxLines retrieves all lines; an empty encoding means the content is
// already UTF-8.
func (c *Client) GetBlobText(ctx context.Context, username, repoName, oid string, maxLines int, encoding string) (*BlobText, error) {
	q := url.Values{}
	if maxLines >= 0 {
		q.Set("max_lines", strconv.Itoa(maxLines))
	}
	if encoding != "" {
		q.Set("encoding", encoding)
	}

	p := blobsPath(username, repoName) + "/" + oid + "/text"
	if len(q) > 0 {
		p += "?" + q.Encode()
	}

	body, err := c.Get(ctx, p)
	if err != nil {
		return nil, err
	}

	var text BlobText
	if err := json.Unmarshal(body, &text); err != nil {
		return nil, fmt.Errorf("failed to parse text response: %w", err)
	}
	return &text, nil
}

// GetBlobInfo retrieves blob metadata without its content
func (c *Client) GetBlobInfo(ctx context.Context, username, repoName, oid string) (*Blob, error) {
	body, err := c.Get(ctx, blobsPath(username, repoName)+"/"+oid+"/info")
	if err != nil {
		return nil, err
	}
	return parseBlob(body)
}

// ListBlobs lists indexed blobs for a repository
func (c *Client) ListBlobs(ctx context.Context, username, repoName string) ([]Blob, error) {
	body, err := c.Get(ctx, blobsPath(username, repoName))
	if err != nil {
		return nil, err
	}

	var blobs []Blob
	if err := json.Unmarshal(body, &blobs); err != nil {
		return nil, fmt.Errorf("failed to parse blob list: %w", err)
	}
	return blobs, nil
}

// ReindexBlobs asks the server to rebuild the blob index from the
// object store and returns the number of blobs indexed.
func (c *Client) ReindexBlobs(ctx context.Context, username, repoName string) (int, error) {
	body, err := c.Post(ctx, blobsPath(username, repoName)+"/reindex", nil)
	if err != nil {
		return 0, err
	}

	var resp struct {
		Indexed int `json:"indexed"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("failed to parse reindex response: %w", err)
	}
	return resp.Indexed, nil
}
