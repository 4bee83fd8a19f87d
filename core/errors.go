package core

import (
	"errors"
	"fmt"
)

// Standard error categories for Relic operations
const (
	ErrCategoryRepository = "repository"
	ErrCategoryConfig     = "config"
	ErrCategoryObject     = "object"
	ErrCategoryBlob       = "blob"
	ErrCategoryFS         = "filesystem"
)

// Sentinel errors for common conditions
var (
	ErrDataNotFound   = errors.New("data not found")
	ErrNotARepository = errors.New("not a repository")
	ErrBareRepository = errors.New("repository is bare")
)

// NewError creates a standardized error with a category prefix
func NewError(category, message string, err error) error {
	if err != nil {
		return fmt.Errorf("%s error: %s: %w", category, message, err)
	}
	return fmt.Errorf("%s error: %s", category, message)
}

// RepositoryError creates a standardized repository error
func RepositoryError(message string, err error) error {
	return NewError(ErrCategoryRepository, message, err)
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, err error) error {
	return NewError(ErrCategoryConfig, message, err)
}

// ObjectError creates a standardized object error
func ObjectError(message string, err error) error {
	return NewError(ErrCategoryObject, message, err)
}

// BlobError creates a standardized blob error
func BlobError(message string, err error) error {
	return NewError(ErrCategoryBlob, message, err)
}

// FSError creates a standardized filesystem error
func FSError(message string, err error) error {
	return NewError(ErrCategoryFS, message, err)
}

// IsErrNotFound checks if an error is a "not found" error
func IsErrNotFound(err error) bool {
	return errors.Is(err, ErrDataNotFound)
}

// IsErrNotRepo checks if an error indicates "not a repository"
func IsErrNotRepo(err error) bool {
	return errors.Is(err, ErrNotARepository)
}

// IsErrBareRepo checks if an error indicates a bare-repository violation
func IsErrBareRepo(err error) bool {
	return errors.Is(err, ErrBareRepository)
}

// NotFoundError creates a standardized "not found" error
func NotFoundError(category, item string) error {
	return NewError(category, fmt.Sprintf("%s not found", item), ErrDataNotFound)
}

// AlreadyExistsError creates a standardized "already exists" error
func AlreadyExistsError(category, item string) error {
	return NewError(category, fmt.Sprintf("%s already exists", item), nil)
}
