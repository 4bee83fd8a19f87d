package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/relic-vcs/relic-server/internal/auth"
	"github.com/relic-vcs/relic-server/internal/config"
	"github.com/relic-vcs/relic-server/internal/db/models"
)

// UserResponse represents the response format for user operations
type UserResponse struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
}

// RegisterRequest represents the request format for user registration
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents the request format for token issuance
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// UpdateUserRequest represents the request format for user profile updates
type UpdateUserRequest struct {
	Email    string `json:"email,omitempty"`
	Password string `json:"password,omitempty"`
}

// RegisterUser handles user registration
func RegisterUser(userService *models.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}

		if req.Username == "" || req.Email == "" || req.Password == "" {
			http.Error(w, "Username, email, and password are required", http.StatusBadRequest)
			return
		}

		if !isValidUsername(req.Username) {
			http.Error(w, "Username may only contain letters, digits, '-' and '_'", http.StatusBadRequest)
			return
		}

		if !isValidEmail(req.Email) {
			http.Error(w, "Invalid email format", http.StatusBadRequest)
			return
		}

		if !isValidPassword(req.Password) {
			http.Error(w, "Password must be at least 8 characters, with uppercase, lowercase, and numbers", http.StatusBadRequest)
			return
		}

		user, err := models.NewUser(req.Username, req.Email, req.Password)
		if err != nil {
			http.Error(w, "Failed to create user: "+err.Error(), http.StatusInternalServerError)
			return
		}

		if err := userService.Create(user); err != nil {
			http.Error(w, "Failed to register user: "+err.Error(), http.StatusInternalServerError)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			IsAdmin:   user.IsAdmin,
			CreatedAt: user.CreatedAt.Format(http.TimeFormat),
		})
	}
}

// Login verifies credentials and issues a signed bearer token
func Login(userService *models.UserService, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}

		if req.Username == "" || req.Password == "" {
			http.Error(w, "Username and password are required", http.StatusBadRequest)
			return
		}

		user, err := userService.GetByUsername(req.Username)
		if err != nil {
			user, err = userService.GetByEmail(req.Username)
		}
		if err != nil || !user.CheckPassword(req.Password) {
			http.Error(w, "Invalid credentials", http.StatusUnauthorized)
			return
		}

		token, err := auth.GenerateJWTToken(user.ID, cfg.JWTSecret, cfg.TokenExpiry)
		if err != nil {
			http.Error(w, "Failed to issue token: "+err.Error(), http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, LoginResponse{
			Token:     token,
			ExpiresIn: int64(cfg.TokenExpiry.Seconds()),
		})
	}
}

// GetUserProfile retrieves user profile information
func GetUserProfile(userService *models.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")

		user, err := userService.GetByUsername(username)
		if err != nil {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}

		render.JSON(w, r, UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			IsAdmin:   user.IsAdmin,
			CreatedAt: user.CreatedAt.Format(http.TimeFormat),
		})
	}
}

// UpdateUserProfile updates user settings
func UpdateUserProfile(userService *models.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authUser := auth.GetUserFromContext(r.Context())
		if authUser == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		username := chi.URLParam(r, "username")

		if authUser.Username != username {
			http.Error(w, "You can only update your own profile", http.StatusForbidden)
			return
		}

		user, err := userService.GetByUsername(username)
		if err != nil {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}

		var req UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request payload", http.StatusBadRequest)
			return
		}

		if req.Email != "" && req.Email != user.Email {
			if !isValidEmail(req.Email) {
				http.Error(w, "Invalid email format", http.StatusBadRequest)
				return
			}
			user.Email = req.Email
		}

		if req.Password != "" {
			if !isValidPassword(req.Password) {
				http.Error(w, "Password must be at least 8 characters, with uppercase, lowercase, and numbers", http.StatusBadRequest)
				return
			}
			if err := user.UpdatePassword(req.Password); err != nil {
				http.Error(w, "Failed to update password: "+err.Error(), http.StatusInternalServerError)
				return
			}
		}

		if err := userService.Update(user); err != nil {
			http.Error(w, "Failed to update user: "+err.Error(), http.StatusInternalServerError)
			return
		}

		render.JSON(w, r, UserResponse{
			ID:        user.ID,
			Username:  user.Username,
			Email:     user.Email,
			IsAdmin:   user.IsAdmin,
			CreatedAt: user.CreatedAt.Format(http.TimeFormat),
		})
	}
}

// DeleteUser handles account deletion
func DeleteUser(userService *models.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authUser := auth.GetUserFromContext(r.Context())
		if authUser == nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		username := chi.URLParam(r, "username")

		if authUser.Username != username && !authUser.IsAdmin {
			http.Error(w, "You can only delete your own account unless you are an admin", http.StatusForbidden)
			return
		}

		user, err := userService.GetByUsername(username)
		if err != nil {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}

		if err := userService.Delete(user.ID); err != nil {
			http.Error(w, "Failed to delete user: "+err.Error(), http.StatusInternalServerError)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// ListUsers returns a paginated list of users (admin only)
func ListUsers(userService *models.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := paginationParams(r)

		users, err := userService.List(limit, offset)
		if err != nil {
			http.Error(w, "Failed to list users: "+err.Error(), http.StatusInternalServerError)
			return
		}

		resp := make([]UserResponse, 0, len(users))
		for _, u := range users {
			resp = append(resp, UserResponse{
				ID:        u.ID,
				Username:  u.Username,
				Email:     u.Email,
				IsAdmin:   u.IsAdmin,
				CreatedAt: u.CreatedAt.Format(http.TimeFormat),
			})
		}
		render.JSON(w, r, resp)
	}
}

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_\-]{1,38}$`)
)

func isValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func isValidUsername(username string) bool {
	return usernameRegex.MatchString(username)
}

// isValidPassword enforces minimum length plus mixed-case and digit content.
func isValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, c := range password {
		switch {
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= '0' && c <= '9':
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}
