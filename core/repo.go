package core

import (
	"fmt"
	"path/filepath"
)

// Repository represents a Relic repository context
type Repository struct {
	Root       string
	RelicDir   string
	ObjectsDir string
	ConfigFile string
}

// NewRepository creates a new repository context with the given root
// directory. It only sets up paths; use OpenRepository to validate that
// a repository actually exists on disk.
func NewRepository(root string) *Repository {
	relicDir := filepath.Join(root, RelicDirName)

	return &Repository{
		Root:       root,
		RelicDir:   relicDir,
		ObjectsDir: filepath.Join(relicDir, "objects"),
		ConfigFile: filepath.Join(relicDir, "config"),
	}
}

// OpenRepository opens an existing repository, failing if the root does
// not contain one.
func OpenRepository(root string) (*Repository, error) {
	repo := NewRepository(root)
	if !FileExists(repo.RelicDir) {
		return nil, RepositoryError(fmt.Sprintf("no repository found at %s", root), ErrNotARepository)
	}
	return repo, nil
}

// CreateRepo initializes a new Relic repository with a working
// directory.
func CreateRepo(repo *Repository) error {
	return createRepo(repo, false)
}

// CreateBareRepo initializes a new bare Relic repository. A bare
// repository stores objects but has no working directory.
func CreateBareRepo(repo *Repository) error {
	return createRepo(repo, true)
}

func createRepo(repo *Repository, bare bool) error {
	if repo == nil {
		return RepositoryError("nil repository", nil)
	}
	if FileExists(repo.RelicDir) {
		return AlreadyExistsError(ErrCategoryRepository, fmt.Sprintf("repository at %s", repo.Root))
	}

	if err := EnsureDirExists(repo.RelicDir); err != nil {
		return FSError(fmt.Sprintf("failed to create %s directory at %s", RelicDirName, repo.RelicDir), err)
	}
	if err := EnsureDirExists(repo.ObjectsDir); err != nil {
		return FSError("failed to create objects directory", err)
	}

	config := "[core]\n\tbare = false\n"
	if bare {
		config = "[core]\n\tbare = true\n"
	}
	if err := WriteFileContent(repo.ConfigFile, []byte(config), 0644); err != nil {
		return FSError("failed to create config file", err)
	}

	return nil
}

// IsBare reports whether the repository is bare.
func (r *Repository) IsBare() (bool, error) {
	value, err := GetConfigValue(r, "core.bare")
	if err != nil {
		return false, err
	}
	return value == "true", nil
}

// Workdir returns the root of the working directory. It fails for bare
// repositories, which have none.
func (r *Repository) Workdir() (string, error) {
	bare, err := r.IsBare()
	if err != nil {
		return "", err
	}
	if bare {
		return "", RepositoryError(fmt.Sprintf("repository at %s has no working directory", r.Root), ErrBareRepository)
	}
	return r.Root, nil
}

// WriteObject writes an object to the repository
func (r *Repository) WriteObject(objectType string, data []byte) (string, error) {
	return WriteObject(r, objectType, data)
}

// ReadObject reads an object from the repository
func (r *Repository) ReadObject(hash string) (string, []byte, error) {
	return ReadObject(r, hash)
}

// GetConfig reads a configuration value
func (r *Repository) GetConfig(key string) (string, error) {
	return GetConfigValue(r, key)
}

// SetConfig writes a configuration value
func (r *Repository) SetConfig(key, value string) error {
	return SetConfigValue(r, key, value)
}
