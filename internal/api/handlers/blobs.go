package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/relic-vcs/relic-server/core"
	"github.com/relic-vcs/relic-server/internal/db/models"
	"github.com/relic-vcs/relic-server/internal/repository"
	"github.com/relic-vcs/relic-server/pkg/textutil"
)

// maxBlobUploadSize bounds buffered blob uploads at 64 MiB. Streamed
// uploads are not bounded; they spill to the object store chunk by chunk.
const maxBlobUploadSize = 64 << 20

// BlobResponse represents the response format for blob operations
type BlobResponse struct {
	OID      string `json:"oid"`
	Size     int64  `json:"size"`
	Binary   bool   `json:"binary"`
	Sloc     int    `json:"sloc"`
	HintPath string `json:"hint_path,omitempty"`
}

// BlobTextResponse carries decoded blob text
type BlobTextResponse struct {
	OID      string `json:"oid"`
	Encoding string `json:"encoding,omitempty"`
	Content  string `json:"content"`
}

// PathRequest represents a request referencing a file path
type PathRequest struct {
	Path string `json:"path"`
}

func blobResponse(info *core.BlobInfo, hintPath string) BlobResponse {
	return BlobResponse{
		OID:      info.OID,
		Size:     info.Size,
		Binary:   info.Binary,
		Sloc:     info.Sloc,
		HintPath: hintPath,
	}
}

// openRepo resolves the repository context into an on-disk object store.
// It writes the error response itself and returns nil on failure.
func openRepo(w http.ResponseWriter, r *http.Request, manager *repository.Manager) (*core.Repository, *middlewareRepoRef) {
	repoCtx := getRepositoryContext(r)
	if repoCtx == nil {
		http.Error(w, "Repository context missing", http.StatusInternalServerError)
		return nil, nil
	}

	repo, err := manager.Open(repoCtx.Owner.Username, repoCtx.Repository.Name)
	if err != nil {
		if core.IsErrNotRepo(err) || core.IsErrNotFound(err) {
			http.Error(w, "Repository data not found", http.StatusNotFound)
		} else {
			http.Error(w, "Failed to open repository: "+err.Error(), http.StatusInternalServerError)
		}
		return nil, nil
	}
	return repo, &middlewareRepoRef{Model: repoCtx.Repository, Owner: repoCtx.Owner}
}

// middlewareRepoRef pairs the database record with its owner for indexing.
type middlewareRepoRef struct {
	Model *models.Repository
	Owner *models.User
}

// finishBlobCreate stats the new blob, records it in the index, and
// writes the creation response. Index failures are reported by the
// indexer's own logging and do not fail the request; the object store
// is the source of truth.
func finishBlobCreate(w http.ResponseWriter, r *http.Request, repo *core.Repository, ref *middlewareRepoRef, indexer *repository.Indexer, oid, hintPath string) {
	info, err := repo.StatBlob(oid)
	if err != nil {
		http.Error(w, "Failed to stat blob: "+err.Error(), http.StatusInternalServerError)
		return
	}

	_ = indexer.IndexBlob(ref.Model, info, hintPath)

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, blobResponse(info, hintPath))
}

// CreateBlob stores the request body as a blob
func CreateBlob(manager *repository.Manager, indexer *repository.Indexer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, ref := openRepo(w, r, manager)
		if repo == nil {
			return
		}

		content, err := io.ReadAll(io.LimitReader(r.Body, maxBlobUploadSize+1))
		if err != nil {
			http.Error(w, "Failed to read request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(content) > maxBlobUploadSize {
			http.Error(w, "Blob exceeds maximum upload size", http.StatusRequestEntityTooLarge)
			return
		}

		unlock := manager.LockRepo(repo.Root)
		oid, err := repo.CreateBlobFromBuffer(content)
		unlock()
		if err != nil {
			http.Error(w, "Failed to create blob: "+err.Error(), http.StatusInternalServerError)
			return
		}

		finishBlobCreate(w, r, repo, ref, indexer, oid, "")
	}
}

// CreateBlobStream stores the request body as a blob by pulling it in
// chunks. If the client aborts mid-stream, the bytes received so far
// still become a blob; callers must verify the returned size.
func CreateBlobStream(manager *repository.Manager, indexer *repository.Indexer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, ref := openRepo(w, r, manager)
		if repo == nil {
			return
		}

		hintPath := r.URL.Query().Get("hint_path")

		unlock := manager.LockRepo(repo.Root)
		oid, err := repo.CreateBlobFromChunks(hintPath, core.ReaderSource(r.Body))
		unlock()
		if err != nil {
			http.Error(w, "Failed to create blob: "+err.Error(), http.StatusInternalServerError)
			return
		}

		finishBlobCreate(w, r, repo, ref, indexer, oid, hintPath)
	}
}

// CreateBlobFromWorkdir stores a working-directory file as a blob.
// Bare repositories have no working directory, which is a conflict.
func CreateBlobFromWorkdir(manager *repository.Manager, indexer *repository.Indexer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, ref := openRepo(w, r, manager)
		if repo == nil {
			return
		}

		var req PathRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}
		if req.Path == "" {
			http.Error(w, "Path is required", http.StatusBadRequest)
			return
		}

		unlock := manager.LockRepo(repo.Root)
		oid, err := repo.CreateBlobFromWorkdir(req.Path)
		unlock()
		if err != nil {
			switch {
			case core.IsErrBareRepo(err):
				http.Error(w, "Repository is bare and has no working directory", http.StatusConflict)
			case core.IsErrNotFound(err):
				http.Error(w, "File not found in working directory", http.StatusNotFound)
			default:
				http.Error(w, "Failed to create blob: "+err.Error(), http.StatusBadRequest)
			}
			return
		}

		finishBlobCreate(w, r, repo, ref, indexer, oid, req.Path)
	}
}

// CreateBlobFromDisk stores a server-side file as a blob. The path is
// resolved on the server host, not inside the repository.
func CreateBlobFromDisk(manager *repository.Manager, indexer *repository.Indexer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, ref := openRepo(w, r, manager)
		if repo == nil {
			return
		}

		var req PathRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}
		if req.Path == "" {
			http.Error(w, "Path is required", http.StatusBadRequest)
			return
		}

		unlock := manager.LockRepo(repo.Root)
		oid, err := repo.CreateBlobFromDisk(req.Path)
		unlock()
		if err != nil {
			if core.IsErrNotFound(err) {
				http.Error(w, "File not found", http.StatusNotFound)
			} else {
				http.Error(w, "Failed to create blob: "+err.Error(), http.StatusBadRequest)
			}
			return
		}

		finishBlobCreate(w, r, repo, ref, indexer, oid, req.Path)
	}
}

// GetBlobContent streams raw blob content, optionally truncated by the
// max_bytes query parameter.
func GetBlobContent(manager *repository.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, _ := openRepo(w, r, manager)
		if repo == nil {
			return
		}

		oid := chi.URLParam(r, "oid")
		if !core.IsValidOID(oid) {
			http.Error(w, "Invalid object ID", http.StatusBadRequest)
			return
		}

		maxBytes, ok := intQueryParam(r, "max_bytes", -1)
		if !ok {
			http.Error(w, "Invalid max_bytes parameter", http.StatusBadRequest)
			return
		}

		data, err := repo.GetBlob(oid)
		if err != nil {
			if core.IsErrNotFound(err) {
				http.Error(w, "Blob not found", http.StatusNotFound)
			} else {
				http.Error(w, "Failed to read blob: "+err.Error(), http.StatusInternalServerError)
			}
			return
		}

		data = textutil.Extract(data, textutil.MaxBytes(maxBytes))

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(data)
	}
}

// GetBlobText returns blob content decoded to UTF-8 text, optionally
// truncated to a number of lines and transcoded from a named encoding.
func GetBlobText(manager *repository.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, _ := openRepo(w, r, manager)
		if repo == nil {
			return
		}

		oid := chi.URLParam(r, "oid")
		if !core.IsValidOID(oid) {
			http.Error(w, "Invalid object ID", http.StatusBadRequest)
			return
		}

		maxLines, ok := intQueryParam(r, "max_lines", -1)
		if !ok {
			http.Error(w, "Invalid max_lines parameter", http.StatusBadRequest)
			return
		}
		encoding := r.URL.Query().Get("encoding")

		data, err := repo.GetBlob(oid)
		if err != nil {
			if core.IsErrNotFound(err) {
				http.Error(w, "Blob not found", http.StatusNotFound)
			} else {
				http.Error(w, "Failed to read blob: "+err.Error(), http.StatusInternalServerError)
			}
			return
		}

		data = textutil.Extract(data, textutil.MaxLines(maxLines))

		text, err := textutil.DecodeText(data, encoding)
		if err != nil {
			http.Error(w, "Unknown or unsupported encoding: "+encoding, http.StatusBadRequest)
			return
		}

		render.JSON(w, r, BlobTextResponse{
			OID:      oid,
			Encoding: encoding,
			Content:  text,
		})
	}
}

// GetBlobInfo returns metadata about a blob without its content
func GetBlobInfo(manager *repository.Manager, blobService *models.BlobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo, ref := openRepo(w, r, manager)
		if repo == nil {
			return
		}

		oid := chi.URLParam(r, "oid")
		if !core.IsValidOID(oid) {
			http.Error(w, "Invalid object ID", http.StatusBadRequest)
			return
		}

		info, err := repo.StatBlob(oid)
		if err != nil {
			if core.IsErrNotFound(err) {
				http.Error(w, "Blob not found", http.StatusNotFound)
			} else {
				http.Error(w, "Failed to stat blob: "+err.Error(), http.StatusInternalServerError)
			}
			return
		}

		// The hint path, when recorded, lives only in the index.
		hintPath := ""
		if indexed, err := blobService.GetByOID(ref.Model.ID, oid); err == nil {
			hintPath = indexed.HintPath
		}

		render.JSON(w, r, blobResponse(info, hintPath))
	}
}

// ListBlobs lists indexed blobs for a repository
func ListBlobs(blobService *models.BlobService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repoCtx := getRepositoryContext(r)
		if repoCtx == nil {
			http.Error(w, "Repository context missing", http.StatusInternalServerError)
			return
		}

		limit, offset := paginationParams(r)

		blobs, err := blobService.ListByRepository(repoCtx.Repository.ID, limit, offset)
		if err != nil {
			http.Error(w, "Failed to list blobs: "+err.Error(), http.StatusInternalServerError)
			return
		}

		resp := make([]BlobResponse, 0, len(blobs))
		for _, b := range blobs {
			resp = append(resp, BlobResponse{
				OID:      b.OID,
				Size:     b.Size,
				Binary:   b.Binary,
				Sloc:     b.Sloc,
				HintPath: b.HintPath,
			})
		}
		render.JSON(w, r, resp)
	}
}

// ReindexBlobs rebuilds the blob index from the object store
func ReindexBlobs(indexer *repository.Indexer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repoCtx := getRepositoryContext(r)
		if repoCtx == nil {
			http.Error(w, "Repository context missing", http.StatusInternalServerError)
			return
		}

		count, err := indexer.ReindexBlobs(repoCtx.Repository, repoCtx.Owner.Username)
		if err != nil {
			http.Error(w, "Failed to reindex blobs: "+err.Error(), http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, map[string]int{"indexed": count})
	}
}
