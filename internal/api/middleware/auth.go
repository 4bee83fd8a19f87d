package middleware

import (
	"context"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/relic-vcs/relic-server/internal/auth"
	"github.com/relic-vcs/relic-server/internal/config"
	"github.com/relic-vcs/relic-server/internal/db/models"
)

// contextKey is a custom type for keys local to this middleware package.
type contextKey string

// Context keys local to this middleware package
const (
	RepositoryContextKey contextKey = "repository_context"
	RequestIDKey         contextKey = "request_id"
)

// RepositoryContext contains repository-related data loaded by the
// repository middleware.
type RepositoryContext struct {
	Repository *models.Repository
	Owner      *models.User
}

// GetRepositoryFromContext retrieves the repository context from the context
func GetRepositoryFromContext(ctx context.Context) *RepositoryContext {
	if repo, ok := ctx.Value(RepositoryContextKey).(*RepositoryContext); ok {
		return repo
	}
	return nil
}

// GetRequestID retrieves the request ID from the context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return ""
}

// Authentication authenticates the user from the request and adds the
// user to the context. Requests without credentials pass through
// unauthenticated; route-level permission checks decide whether that is
// acceptable.
func Authentication(cfg *config.Config, db *gorm.DB) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := tryAuthMethods(r, cfg, db)
			if user != nil {
				next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// tryAuthMethods attempts to authenticate using various methods
func tryAuthMethods(r *http.Request, cfg *config.Config, db *gorm.DB) *models.User {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return nil
	}

	if strings.HasPrefix(authHeader, "Basic ") {
		return authenticateBasic(r, db)
	}
	if strings.HasPrefix(authHeader, "Bearer ") {
		return authenticateBearer(r, cfg, db)
	}
	return nil
}

// authenticateBasic attempts to authenticate using Basic auth
func authenticateBasic(r *http.Request, db *gorm.DB) *models.User {
	username, password, ok := r.BasicAuth()
	if !ok || username == "" || password == "" {
		return nil
	}

	userService := models.NewUserService(db)
	user, err := userService.GetByUsername(username)
	if err != nil {
		// Try to find by email if username not found
		user, err = userService.GetByEmail(username)
		if err != nil {
			return nil
		}
	}

	if !user.CheckPassword(password) {
		return nil
	}
	return user
}

// authenticateBearer attempts to authenticate using Bearer token
func authenticateBearer(r *http.Request, cfg *config.Config, db *gorm.DB) *models.User {
	authHeader := r.Header.Get("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	claims, err := auth.VerifyJWTToken(tokenString, cfg.JWTSecret)
	if err != nil {
		return nil
	}

	userService := models.NewUserService(db)
	user, err := userService.GetByID(claims.UserID)
	if err != nil {
		return nil
	}
	return user
}
