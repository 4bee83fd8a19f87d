package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/relic-vcs/relic-server/internal/api"
	"github.com/relic-vcs/relic-server/internal/config"
	"github.com/relic-vcs/relic-server/internal/db"
	"github.com/relic-vcs/relic-server/internal/db/models"
	"github.com/relic-vcs/relic-server/internal/repository"
)

func main() {
	// Initialize logger with prefix and timestamps
	logger := log.New(os.Stdout, "relic-server: ", log.LstdFlags)
	logger.Println("Starting Relic Blob Server...")
	logger.Println("This server provides content-addressable blob storage for Relic repositories")

	// Load configuration
	cfg := config.LoadConfig()

	// Ensure repository base path exists
	if err := os.MkdirAll(cfg.RepoBasePath, cfg.RepoDirPerms); err != nil {
		logger.Fatalf("Failed to create repository base path %s: %v", cfg.RepoBasePath, err)
	}
	logger.Printf("Repository storage location: %s", cfg.RepoBasePath)

	// Connect to database
	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if sqlDB, err := database.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				logger.Printf("Failed to close database connection: %v", err)
			}
		}
	}()

	// Verify database connection
	sqlDB, err := database.DB()
	if err != nil {
		logger.Fatalf("Failed to get database connection: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		logger.Fatalf("Database ping failed: %v", err)
	}
	logger.Println("Connected to database")

	// Run database migrations
	if err := db.RunMigrations(database); err != nil {
		logger.Fatalf("Failed to run database migrations: %v", err)
	}
	logger.Println("Database migrations completed successfully")

	// Create repository manager and blob indexer
	repoManager := repository.NewManager(cfg, logger)
	blobService := models.NewBlobService(database)
	indexer := repository.NewIndexer(repoManager, blobService, logger)
	logger.Println("Repository manager and blob indexer initialized")

	// Create router
	router := api.SetupRouter(cfg, repoManager, indexer, database)
	logger.Println("Router configured for Relic blob operations")
	logger.Println("Endpoints: /{username}/{repoName}/blobs")
	logger.Println("           /{username}/{repoName}/blobs/{oid}")
	logger.Println("           /{username}/{repoName}/blobs/{oid}/text")

	// Configure HTTP server with timeouts
	server := &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:        router,
		ReadTimeout:    60 * time.Second,
		WriteTimeout:   60 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	// Channel to capture server errors
	serverErr := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		logger.Printf("Relic Blob Server listening on port %d", cfg.ServerPort)
		if cfg.IsTLSEnabled() {
			logger.Println("TLS enabled, starting HTTPS server")
			serverErr <- server.ListenAndServeTLS(cfg.TLSCertPath, cfg.TLSKeyPath)
		} else {
			logger.Println("TLS disabled, starting HTTP server")
			serverErr <- server.ListenAndServe()
		}
	}()

	// Wait for interrupt signal or server error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server failed: %v", err)
		}
	case sig := <-quit:
		logger.Printf("Received signal: %v", sig)
		if sig == syscall.SIGHUP {
			logger.Println("SIGHUP received, ignoring (config reload not implemented)")
			return
		}
	}

	logger.Println("Shutting down server...")

	// Create context with configurable shutdown timeout
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Shutdown the server
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Println("Blob server shutdown complete")
}
