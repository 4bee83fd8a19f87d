package repository

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/relic-vcs/relic-server/core"
	"github.com/relic-vcs/relic-server/internal/config"
)

// Errors for repository operations
var (
	ErrRepoNotFound      = errors.New("repository not found")
	ErrRepoAlreadyExists = errors.New("repository already exists")
	ErrInvalidRepoName   = errors.New("invalid repository name")
)

// repoLocks provides mutex locks for each repository to prevent concurrent modifications
var repoLocks = &sync.Map{}

// Manager handles filesystem operations for repositories using the core package.
type Manager struct {
	cfg    *config.Config
	logger *log.Logger
}

// NewManager creates a new repository manager.
func NewManager(cfg *config.Config, logger *log.Logger) *Manager {
	return &Manager{
		cfg:    cfg,
		logger: logger,
	}
}

// LockRepo acquires a lock for a repository
func (m *Manager) LockRepo(repoPath string) func() {
	value, _ := repoLocks.LoadOrStore(repoPath, &sync.Mutex{})
	mutex := value.(*sync.Mutex)
	mutex.Lock()
	return func() { mutex.Unlock() }
}

// GetRepoPath returns the filesystem path for a repository.
func (m *Manager) GetRepoPath(ownerName string, repoName string) (string, error) {
	// Validate owner and repo name
	if ownerName == "" || strings.ContainsAny(ownerName, "/\\:") || strings.Contains(ownerName, "..") {
		return "", fmt.Errorf("invalid owner: %s", ownerName)
	}
	if repoName == "" || strings.ContainsAny(repoName, "/\\:") || strings.Contains(repoName, "..") {
		return "", ErrInvalidRepoName
	}

	baseRepoPath := m.cfg.RepoBasePath
	if baseRepoPath == "" {
		return "", fmt.Errorf("repository base path is not configured")
	}

	repoPath := filepath.Join(baseRepoPath, ownerName, repoName)

	// filepath.Clean plus a prefix check keeps "../" constructions from
	// escaping the base path.
	cleanedRepoPath := filepath.Clean(repoPath)
	if !strings.HasPrefix(cleanedRepoPath, filepath.Clean(baseRepoPath)) {
		return "", fmt.Errorf("invalid repository path construction: %s attempts to escape base path %s", repoPath, baseRepoPath)
	}

	return cleanedRepoPath, nil
}

// RepositoryExists checks if a repository exists by looking for the .relic directory.
func (m *Manager) RepositoryExists(owner, repoName string) (bool, error) {
	repoPath, err := m.GetRepoPath(owner, repoName)
	if err != nil {
		return false, err
	}
	relicDirPath := filepath.Join(repoPath, core.RelicDirName)
	return core.FileExists(relicDirPath), nil
}

// Open returns the core repository for an owner/name pair, failing if
// it does not exist on disk.
func (m *Manager) Open(ownerName, repoName string) (*core.Repository, error) {
	repoPath, err := m.GetRepoPath(ownerName, repoName)
	if err != nil {
		return nil, err
	}

	repo, err := core.OpenRepository(repoPath)
	if err != nil {
		if core.IsErrNotRepo(err) {
			return nil, ErrRepoNotFound
		}
		return nil, err
	}
	return repo, nil
}

// CreateRepo creates a new repository on disk using core functionalities.
// Server-hosted repositories are bare unless a working tree is requested.
func (m *Manager) CreateRepo(ownerName string, repoName string, bare bool) (string, error) {
	repoPath, err := m.GetRepoPath(ownerName, repoName)
	if err != nil {
		return "", err
	}

	unlock := m.LockRepo(repoPath)
	defer unlock()

	exists, err := m.RepositoryExists(ownerName, repoName)
	if err != nil {
		return "", fmt.Errorf("failed to check repository existence: %w", err)
	}
	if exists {
		return "", ErrRepoAlreadyExists
	}

	// Ensure the owner directory exists before the repository itself.
	ownerPath := filepath.Dir(repoPath)
	if err := os.MkdirAll(ownerPath, m.cfg.RepoDirPerms); err != nil {
		return "", fmt.Errorf("failed to create owner directory %s: %w", ownerPath, err)
	}

	cr := core.NewRepository(repoPath)
	if bare {
		err = core.CreateBareRepo(cr)
	} else {
		err = core.CreateRepo(cr)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create repository using core: %w", err)
	}

	m.logger.Printf("Initialized empty Relic repository in %s", repoPath)
	return repoPath, nil
}

// DeleteRepo deletes a repository from the filesystem.
func (m *Manager) DeleteRepo(ownerName, repoName string) error {
	repoPath, err := m.GetRepoPath(ownerName, repoName)
	if err != nil {
		return err
	}

	unlock := m.LockRepo(repoPath)
	defer unlock()
	// Drop the lock entry as well so deleted repositories don't leak mutexes.
	defer repoLocks.Delete(repoPath)

	exists, _ := m.RepositoryExists(ownerName, repoName)
	if !exists {
		return ErrRepoNotFound
	}

	if err := os.RemoveAll(repoPath); err != nil {
		return fmt.Errorf("failed to delete repository directory %s: %w", repoPath, err)
	}

	m.logger.Printf("Deleted repository %s/%s", ownerName, repoName)
	return nil
}
