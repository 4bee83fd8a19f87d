package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/relic-vcs/relic-server/internal/auth"
	"github.com/relic-vcs/relic-server/internal/db/models"
	"github.com/relic-vcs/relic-server/internal/repository"
)

// RepoResponse represents the response format for repository operations
type RepoResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Owner     string `json:"owner"`
	OwnerID   uint   `json:"owner_id"`
	Private   bool   `json:"private"`
	Bare      bool   `json:"bare"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// RepoRequest represents the request format for repository creation/update
type RepoRequest struct {
	Name    string `json:"name"`
	Private bool   `json:"private"`
	Bare    bool   `json:"bare"`
}

func repoResponse(repo *models.Repository, ownerName string) RepoResponse {
	return RepoResponse{
		ID:        repo.ID,
		Name:      repo.Name,
		Owner:     ownerName,
		OwnerID:   repo.OwnerID,
		Private:   !repo.IsPublic,
		Bare:      repo.IsBare,
		CreatedAt: repo.CreatedAt.Format(http.TimeFormat),
		UpdatedAt: repo.UpdatedAt.Format(http.TimeFormat),
	}
}

// CreateRepository handles the creation of a new repository, both the
// database record and the on-disk object store.
func CreateRepository(repoService *models.RepositoryService, manager *repository.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.GetUserFromContext(r.Context())
		if user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		var req RepoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}

		if req.Name == "" {
			http.Error(w, "Repository name is required", http.StatusBadRequest)
			return
		}

		exists, err := manager.RepositoryExists(user.Username, req.Name)
		if err != nil {
			http.Error(w, "Invalid repository name: "+err.Error(), http.StatusBadRequest)
			return
		}
		if exists {
			http.Error(w, "Repository already exists", http.StatusConflict)
			return
		}

		path, err := manager.CreateRepo(user.Username, req.Name, req.Bare)
		if err != nil {
			http.Error(w, "Failed to initialize repository: "+err.Error(), http.StatusInternalServerError)
			return
		}

		repo := &models.Repository{
			Name:     req.Name,
			OwnerID:  user.ID,
			IsPublic: !req.Private,
			IsBare:   req.Bare,
			Path:     path,
		}

		if err := repoService.Create(repo); err != nil {
			// Roll back the on-disk store so a retry can succeed.
			_ = manager.DeleteRepo(user.Username, req.Name)
			http.Error(w, "Failed to create repository: "+err.Error(), http.StatusInternalServerError)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, repoResponse(repo, user.Username))
	}
}

// GetRepository retrieves repository metadata
func GetRepository(repoService *models.RepositoryService, permService *models.PermissionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repoName := chi.URLParam(r, "repoName")
		username := chi.URLParam(r, "username")

		repo, err := repoService.GetByUsername(username, repoName)
		if err != nil {
			http.Error(w, "Repository not found", http.StatusNotFound)
			return
		}

		if !canAccessRepository(r, repo, permService) {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		render.JSON(w, r, repoResponse(repo, repo.Owner.Username))
	}
}

// UpdateRepository updates repository settings
func UpdateRepository(repoService *models.RepositoryService, permService *models.PermissionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.GetUserFromContext(r.Context())
		if user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		repoName := chi.URLParam(r, "repoName")
		username := chi.URLParam(r, "username")

		repo, err := repoService.GetByUsername(username, repoName)
		if err != nil {
			http.Error(w, "Repository not found", http.StatusNotFound)
			return
		}

		if user.ID != repo.OwnerID {
			hasAdmin, _ := permService.HasPermission(user.ID, repo.ID, models.AdminPermission)
			if !hasAdmin {
				http.Error(w, "Admin permission required", http.StatusForbidden)
				return
			}
		}

		var req RepoRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}

		// Renaming and bare conversion are not supported over the API;
		// only the visibility flag can change.
		repo.IsPublic = !req.Private

		if err := repoService.Update(repo); err != nil {
			http.Error(w, "Failed to update repository: "+err.Error(), http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, repoResponse(repo, repo.Owner.Username))
	}
}

// DeleteRepository removes a repository record, its blob index, and the
// on-disk object store.
func DeleteRepository(repoService *models.RepositoryService, permService *models.PermissionService, blobService *models.BlobService, manager *repository.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := auth.GetUserFromContext(r.Context())
		if user == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		repoName := chi.URLParam(r, "repoName")
		username := chi.URLParam(r, "username")

		repo, err := repoService.GetByUsername(username, repoName)
		if err != nil {
			http.Error(w, "Repository not found", http.StatusNotFound)
			return
		}

		if user.ID != repo.OwnerID && !user.IsAdmin {
			http.Error(w, "Only the owner can delete a repository", http.StatusForbidden)
			return
		}

		if err := blobService.DeleteByRepository(repo.ID); err != nil {
			http.Error(w, "Failed to clear blob index: "+err.Error(), http.StatusInternalServerError)
			return
		}

		if err := repoService.Delete(repo.ID); err != nil {
			http.Error(w, "Failed to delete repository: "+err.Error(), http.StatusInternalServerError)
			return
		}

		if err := manager.DeleteRepo(username, repoName); err != nil {
			http.Error(w, "Failed to remove repository data: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ListPublicRepositories lists all public repositories
func ListPublicRepositories(repoService *models.RepositoryService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := paginationParams(r)

		repos, err := repoService.ListPublic(limit, offset)
		if err != nil {
			http.Error(w, "Failed to list repositories: "+err.Error(), http.StatusInternalServerError)
			return
		}

		resp := make([]RepoResponse, 0, len(repos))
		for _, repo := range repos {
			resp = append(resp, repoResponse(repo, repo.Owner.Username))
		}
		render.JSON(w, r, resp)
	}
}

// ListUserRepositories lists repositories owned by a user. Private
// repositories are included only for the owner themselves.
func ListUserRepositories(repoService *models.RepositoryService, userService *models.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		limit, offset := paginationParams(r)

		owner, err := userService.GetByUsername(username)
		if err != nil {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}

		repos, err := repoService.ListByOwner(owner.ID, limit, offset)
		if err != nil {
			http.Error(w, "Failed to list repositories: "+err.Error(), http.StatusInternalServerError)
			return
		}

		authUser := auth.GetUserFromContext(r.Context())
		includePrivate := authUser != nil && (authUser.ID == owner.ID || authUser.IsAdmin)

		resp := make([]RepoResponse, 0, len(repos))
		for _, repo := range repos {
			if !repo.IsPublic && !includePrivate {
				continue
			}
			resp = append(resp, repoResponse(repo, username))
		}
		render.JSON(w, r, resp)
	}
}
