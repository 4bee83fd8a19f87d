package middleware

import (
	"net/http"

	"github.com/relic-vcs/relic-server/internal/auth"
	"github.com/relic-vcs/relic-server/internal/db/models"
)

// RequireAdmin ensures the user is a server admin
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := auth.GetUserFromContext(r.Context())
		if user == nil || !user.IsAdmin {
			http.Error(w, "Admin access required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequirePermission ensures the user has the specified permission level
// on the repository loaded into the request context.
func RequirePermission(permService *models.PermissionService, level string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			repoCtx := GetRepositoryFromContext(r.Context())
			if repoCtx == nil || repoCtx.Repository == nil {
				http.Error(w, "Repository context not found", http.StatusInternalServerError)
				return
			}

			user := auth.GetUserFromContext(r.Context())
			if user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			hasPermission, err := permService.HasPermission(user.ID, repoCtx.Repository.ID, level)
			if err != nil {
				http.Error(w, "Error checking permissions: "+err.Error(), http.StatusInternalServerError)
				return
			}
			if !hasPermission {
				http.Error(w, "Permission denied", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PublicReadOrRequirePermission allows unauthenticated read access to
// public repositories, otherwise requires authentication and the given
// permission level.
func PublicReadOrRequirePermission(permService *models.PermissionService, level string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			repoCtx := GetRepositoryFromContext(r.Context())
			if repoCtx == nil || repoCtx.Repository == nil {
				http.Error(w, "Repository context not found", http.StatusInternalServerError)
				return
			}

			if repoCtx.Repository.IsPublic && level == models.ReadPermission {
				next.ServeHTTP(w, r)
				return
			}

			user := auth.GetUserFromContext(r.Context())
			if user == nil {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			hasPermission, err := permService.HasPermission(user.ID, repoCtx.Repository.ID, level)
			if err != nil {
				http.Error(w, "Error checking permissions: "+err.Error(), http.StatusInternalServerError)
				return
			}
			if !hasPermission {
				http.Error(w, "Permission denied", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
