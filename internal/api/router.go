package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"gorm.io/gorm"

	"github.com/relic-vcs/relic-server/internal/api/handlers"
	relicmiddleware "github.com/relic-vcs/relic-server/internal/api/middleware"
	"github.com/relic-vcs/relic-server/internal/config"
	"github.com/relic-vcs/relic-server/internal/db/models"
	"github.com/relic-vcs/relic-server/internal/repository"
)

// SetupRouter configures the HTTP router for the API
func SetupRouter(cfg *config.Config, repoManager *repository.Manager, indexer *repository.Indexer, db *gorm.DB) http.Handler {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(relicmiddleware.Logging())
	r.Use(relicmiddleware.RequestIDMiddleware())

	// CORS configuration
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(corsHandler.Handler)

	// Authentication middleware (attaches the user when credentials are
	// present; individual routes decide what they require)
	r.Use(relicmiddleware.Authentication(cfg, db))

	userService := models.NewUserService(db)
	repoService := models.NewRepositoryService(db)
	permService := models.NewPermissionService(db)
	blobService := models.NewBlobService(db)

	// Account routes
	r.Post("/users", handlers.RegisterUser(userService))
	r.Post("/login", handlers.Login(userService, cfg))
	r.With(relicmiddleware.RequireAdmin).Get("/users", handlers.ListUsers(userService))
	r.Route("/users/{username}", func(r chi.Router) {
		r.Get("/", handlers.GetUserProfile(userService))
		r.Put("/", handlers.UpdateUserProfile(userService))
		r.Delete("/", handlers.DeleteUser(userService))
	})

	// Repository creation and listing
	r.Get("/repos", handlers.ListPublicRepositories(repoService))
	r.Post("/repos", handlers.CreateRepository(repoService, repoManager))
	r.Get("/repos/{username}", handlers.ListUserRepositories(repoService, userService))

	// Repository-scoped routes
	r.Route("/{username}/{repoName}", func(r chi.Router) {
		r.Use(repositoryContext(db, repoManager))

		r.Get("/", handlers.GetRepository(repoService, permService))
		r.Put("/", handlers.UpdateRepository(repoService, permService))
		r.Delete("/", handlers.DeleteRepository(repoService, permService, blobService, repoManager))

		// Collaborator permissions
		r.Route("/permissions", func(r chi.Router) {
			r.Get("/", handlers.ListCollaborators(repoService, permService))
			r.Post("/", handlers.AddCollaborator(userService, repoService, permService))
			r.Put("/{collaborator}", handlers.UpdateCollaboratorPermissions(userService, repoService, permService))
			r.Delete("/{collaborator}", handlers.RemoveCollaborator(userService, repoService, permService))
		})

		// Blob object store
		r.Route("/blobs", func(r chi.Router) {
			read := relicmiddleware.PublicReadOrRequirePermission(permService, models.ReadPermission)
			write := relicmiddleware.RequirePermission(permService, models.WritePermission)

			r.With(read).Get("/", handlers.ListBlobs(blobService))
			r.With(write).Post("/", handlers.CreateBlob(repoManager, indexer))
			r.With(write).Post("/stream", handlers.CreateBlobStream(repoManager, indexer))
			r.With(write).Post("/from-workdir", handlers.CreateBlobFromWorkdir(repoManager, indexer))
			r.With(write).Post("/from-disk", handlers.CreateBlobFromDisk(repoManager, indexer))
			r.With(write).Post("/reindex", handlers.ReindexBlobs(indexer))

			r.With(read).Get("/{oid}", handlers.GetBlobContent(repoManager))
			r.With(read).Get("/{oid}/text", handlers.GetBlobText(repoManager))
			r.With(read).Get("/{oid}/info", handlers.GetBlobInfo(repoManager, blobService))
		})
	})

	return r
}

// repositoryContext loads the repository record and its owner from the
// database and adds both to the request context
func repositoryContext(db *gorm.DB, repoManager *repository.Manager) func(http.Handler) http.Handler {
	repoService := models.NewRepositoryService(db)
	userService := models.NewUserService(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username := chi.URLParam(r, "username")
			repoName := chi.URLParam(r, "repoName")

			if username == "" || repoName == "" {
				http.Error(w, "Invalid repository path", http.StatusBadRequest)
				return
			}

			repo, err := repoService.GetByUsername(username, repoName)
			if err != nil {
				http.Error(w, "Repository not found", http.StatusNotFound)
				return
			}

			owner, err := userService.GetByID(repo.OwnerID)
			if err != nil {
				http.Error(w, "Failed to get repository owner", http.StatusInternalServerError)
				return
			}

			if path, err := repoManager.GetRepoPath(username, repoName); err == nil {
				repo.Path = path
			}

			repoContext := &relicmiddleware.RepositoryContext{
				Repository: repo,
				Owner:      owner,
			}

			ctx := context.WithValue(r.Context(), relicmiddleware.RepositoryContextKey, repoContext)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
