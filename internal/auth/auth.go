package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/relic-vcs/relic-server/internal/db/models"
)

var (
	// ErrInvalidCredentials is returned when authentication fails
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrTokenExpired is returned when a token has expired
	ErrTokenExpired = errors.New("token has expired")
	// ErrInvalidToken is returned when a token is invalid
	ErrInvalidToken = errors.New("invalid token")
)

// contextKey is a custom type for context keys local to this package.
type contextKey string

// AuthenticatedUserKey is the context key under which the
// authenticated user is stored.
const AuthenticatedUserKey contextKey = "authenticated_user"

// GetUserFromContext retrieves the authenticated user from the context
func GetUserFromContext(ctx context.Context) *models.User {
	if user, ok := ctx.Value(AuthenticatedUserKey).(*models.User); ok {
		return user
	}
	return nil
}

// WithUser returns a context carrying the authenticated user
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, AuthenticatedUserKey, user)
}

// HashPassword creates a bcrypt hash of the password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash compares a password with a hash
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
