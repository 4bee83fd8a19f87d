package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCreateBlob(t *testing.T) {
	var gotBody []byte
	var gotPath string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Blob{OID: "abc123", Size: int64(len(gotBody)), Sloc: 1})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	blob, err := c.CreateBlob(context.Background(), "alice", "project", []byte("hello"))
	if err != nil {
		t.Fatalf("CreateBlob failed: %v", err)
	}

	if gotPath != "/alice/project/blobs" {
		t.Errorf("request path = %q, want /alice/project/blobs", gotPath)
	}
	if string(gotBody) != "hello" {
		t.Errorf("request body = %q, want hello", gotBody)
	}
	if blob.OID != "abc123" || blob.Size != 5 {
		t.Errorf("unexpected blob response: %+v", blob)
	}
}

func TestCreateBlobStreamHintPath(t *testing.T) {
	var gotHint string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHint = r.URL.Query().Get("hint_path")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(Blob{OID: "def456", Size: 4, HintPath: gotHint})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	blob, err := c.CreateBlobStream(context.Background(), "alice", "project", "src/main.go", strings.NewReader("data"))
	if err != nil {
		t.Fatalf("CreateBlobStream failed: %v", err)
	}

	if gotHint != "src/main.go" {
		t.Errorf("hint_path = %q, want src/main.go", gotHint)
	}
	if blob.HintPath != "src/main.go" {
		t.Errorf("blob.HintPath = %q, want src/main.go", blob.HintPath)
	}
}

func TestGetBlobContentMaxBytes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("max_bytes") != "5" {
			t.Errorf("max_bytes = %q, want 5", r.URL.Query().Get("max_bytes"))
		}
		w.Write([]byte("hello"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	data, err := c.GetBlobContent(context.Background(), "alice", "project", "abc123", 5)
	if err != nil {
		t.Fatalf("GetBlobContent failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("content = %q, want hello", data)
	}
}

func TestGetBlobContentUnlimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Has("max_bytes") {
			t.Error("max_bytes should not be sent for unlimited reads")
		}
		w.Write([]byte("full content"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	data, err := c.GetBlobContent(context.Background(), "alice", "project", "abc123", -1)
	if err != nil {
		t.Fatalf("GetBlobContent failed: %v", err)
	}
	if string(data) != "full content" {
		t.Errorf("content = %q, want full content", data)
	}
}

func TestGetBlobText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("max_lines") != "2" || q.Get("encoding") != "ISO-8859-1" {
			t.Errorf("unexpected query: %v", q)
		}
		json.NewEncoder(w).Encode(BlobText{OID: "abc123", Encoding: "ISO-8859-1", Content: "café\n"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	text, err := c.GetBlobText(context.Background(), "alice", "project", "abc123", 2, "ISO-8859-1")
	if err != nil {
		t.Fatalf("GetBlobText failed: %v", err)
	}
	if text.Content != "café\n" {
		t.Errorf("content = %q", text.Content)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, ErrNotFound},
		{http.StatusUnauthorized, ErrAuthenticationError},
		{http.StatusForbidden, ErrPermissionDenied},
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusConflict, ErrConflict},
		{http.StatusInternalServerError, ErrServerError},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", tt.status)
		}))

		c := NewClient(srv.URL)
		_, err := c.GetBlobInfo(context.Background(), "alice", "project", "abc123")
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: got %v, want %v", tt.status, err, tt.want)
		}
		srv.Close()
	}
}

func TestBasicAuthApplied(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "alice" || pass != "secret" {
			t.Errorf("basic auth = %q/%q ok=%v", user, pass, ok)
		}
		json.NewEncoder(w).Encode([]Blob{})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithBasicAuth("alice", "secret"))
	if _, err := c.ListBlobs(context.Background(), "alice", "project"); err != nil {
		t.Fatalf("ListBlobs failed: %v", err)
	}
}

func TestLoginSetsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/login":
			json.NewEncoder(w).Encode(map[string]interface{}{"token": "tok123", "expires_in": 3600})
		default:
			if got := r.Header.Get("Authorization"); got != "Bearer tok123" {
				t.Errorf("Authorization = %q, want Bearer tok123", got)
			}
			json.NewEncoder(w).Encode([]Blob{})
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	if err := c.Login(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := c.ListBlobs(context.Background(), "alice", "project"); err != nil {
		t.Fatalf("ListBlobs failed: %v", err)
	}
}
