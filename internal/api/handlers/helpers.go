package handlers

import (
	"net/http"
	"strconv"

	"github.com/relic-vcs/relic-server/internal/api/middleware"
	"github.com/relic-vcs/relic-server/internal/auth"
	"github.com/relic-vcs/relic-server/internal/db/models"
)

// getRepositoryContext retrieves repository context from the request
func getRepositoryContext(r *http.Request) *middleware.RepositoryContext {
	repoCtx := middleware.GetRepositoryFromContext(r.Context())
	if repoCtx == nil || repoCtx.Repository == nil {
		return nil
	}
	return repoCtx
}

// canAccessRepository checks if the requesting user can read the repository
func canAccessRepository(r *http.Request, repo *models.Repository, permService *models.PermissionService) bool {
	if repo.IsPublic {
		return true
	}

	user := auth.GetUserFromContext(r.Context())
	if user == nil {
		return false
	}

	if user.ID == repo.OwnerID {
		return true
	}

	hasAccess, _ := permService.HasPermission(user.ID, repo.ID, models.ReadPermission)
	return hasAccess
}

// paginationParams reads limit/offset query parameters with defaults.
func paginationParams(r *http.Request) (limit, offset int) {
	limit, offset = 50, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// intQueryParam parses an optional integer query parameter. A missing
// parameter yields the default; a malformed one is a caller-contract
// violation reported as ok=false.
func intQueryParam(r *http.Request, name string, defaultVal int) (value int, ok bool) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return defaultVal, true
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}
