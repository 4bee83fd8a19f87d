package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/relic-vcs/relic-server/internal/auth"
	"github.com/relic-vcs/relic-server/internal/db/models"
)

// PermissionRequest represents the request format for adding/updating collaborator permissions
type PermissionRequest struct {
	Username    string `json:"username"`
	AccessLevel string `json:"access_level"`
}

// PermissionResponse represents the response format for permission operations
type PermissionResponse struct {
	ID          uint   `json:"id"`
	Username    string `json:"username"`
	UserID      uint   `json:"user_id"`
	RepoID      uint   `json:"repo_id"`
	AccessLevel string `json:"access_level"`
	CreatedAt   string `json:"created_at"`
}

func permissionResponse(perm *models.Permission, username string) PermissionResponse {
	return PermissionResponse{
		ID:          perm.ID,
		Username:    username,
		UserID:      perm.UserID,
		RepoID:      perm.RepositoryID,
		AccessLevel: perm.AccessLevel,
		CreatedAt:   perm.CreatedAt.Format(http.TimeFormat),
	}
}

// requireRepoAdmin resolves the repository from URL params and verifies the
// authenticated user holds admin rights on it.
func requireRepoAdmin(w http.ResponseWriter, r *http.Request, repoService *models.RepositoryService, permService *models.PermissionService) *models.Repository {
	authUser := auth.GetUserFromContext(r.Context())
	if authUser == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return nil
	}

	username := chi.URLParam(r, "username")
	repoName := chi.URLParam(r, "repoName")

	repo, err := repoService.GetByUsername(username, repoName)
	if err != nil {
		http.Error(w, "Repository not found", http.StatusNotFound)
		return nil
	}

	if authUser.ID != repo.OwnerID {
		hasAdmin, err := permService.HasPermission(authUser.ID, repo.ID, models.AdminPermission)
		if err != nil || !hasAdmin {
			http.Error(w, "Admin permissions required", http.StatusForbidden)
			return nil
		}
	}
	return repo
}

// AddCollaborator adds a user to a repository with specified permissions
func AddCollaborator(userService *models.UserService, repoService *models.RepositoryService, permService *models.PermissionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo := requireRepoAdmin(w, r, repoService, permService)
		if repo == nil {
			return
		}

		var req PermissionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}

		if !models.IsValidAccessLevel(req.AccessLevel) {
			http.Error(w, "Access level must be one of read, write, admin", http.StatusBadRequest)
			return
		}

		collaborator, err := userService.GetByUsername(req.Username)
		if err != nil {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}

		if collaborator.ID == repo.OwnerID {
			http.Error(w, "Owner already has full access", http.StatusConflict)
			return
		}

		if _, err := permService.GetByUserAndRepo(collaborator.ID, repo.ID); err == nil {
			http.Error(w, "User is already a collaborator", http.StatusConflict)
			return
		}

		perm := &models.Permission{
			UserID:       collaborator.ID,
			RepositoryID: repo.ID,
			AccessLevel:  req.AccessLevel,
		}
		if err := permService.Create(perm); err != nil {
			http.Error(w, "Failed to add collaborator: "+err.Error(), http.StatusInternalServerError)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, permissionResponse(perm, collaborator.Username))
	}
}

// UpdateCollaboratorPermissions changes a collaborator's access level
func UpdateCollaboratorPermissions(userService *models.UserService, repoService *models.RepositoryService, permService *models.PermissionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo := requireRepoAdmin(w, r, repoService, permService)
		if repo == nil {
			return
		}

		collabName := chi.URLParam(r, "collaborator")
		collaborator, err := userService.GetByUsername(collabName)
		if err != nil {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}

		var req PermissionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}

		if !models.IsValidAccessLevel(req.AccessLevel) {
			http.Error(w, "Access level must be one of read, write, admin", http.StatusBadRequest)
			return
		}

		perm, err := permService.GetByUserAndRepo(collaborator.ID, repo.ID)
		if err != nil {
			http.Error(w, "User is not a collaborator", http.StatusNotFound)
			return
		}

		perm.AccessLevel = req.AccessLevel
		if err := permService.Update(perm); err != nil {
			http.Error(w, "Failed to update permission: "+err.Error(), http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, permissionResponse(perm, collaborator.Username))
	}
}

// RemoveCollaborator revokes a user's access to a repository
func RemoveCollaborator(userService *models.UserService, repoService *models.RepositoryService, permService *models.PermissionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo := requireRepoAdmin(w, r, repoService, permService)
		if repo == nil {
			return
		}

		collabName := chi.URLParam(r, "collaborator")
		collaborator, err := userService.GetByUsername(collabName)
		if err != nil {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}

		if err := permService.DeleteByUserAndRepo(collaborator.ID, repo.ID); err != nil {
			http.Error(w, "Failed to remove collaborator: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ListCollaborators lists all users with explicit access to a repository
func ListCollaborators(repoService *models.RepositoryService, permService *models.PermissionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		repo := requireRepoAdmin(w, r, repoService, permService)
		if repo == nil {
			return
		}

		perms, err := permService.ListByRepository(repo.ID)
		if err != nil {
			http.Error(w, "Failed to list collaborators: "+err.Error(), http.StatusInternalServerError)
			return
		}

		resp := make([]PermissionResponse, 0, len(perms))
		for _, p := range perms {
			resp = append(resp, permissionResponse(p, p.User.Username))
		}
		render.JSON(w, r, resp)
	}
}
