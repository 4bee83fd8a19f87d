package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Permission types
const (
	ReadPermission  = "read"
	WritePermission = "write"
	AdminPermission = "admin"
)

// Permission represents a user's permission level on a repository
type Permission struct {
	ID           uint       `json:"id" gorm:"primarykey"`
	UserID       uint       `json:"user_id" gorm:"not null"`
	User         User       `json:"user" gorm:"foreignKey:UserID"`
	RepositoryID uint       `json:"repository_id" gorm:"not null"`
	Repository   Repository `json:"repository" gorm:"foreignKey:RepositoryID"`
	AccessLevel  string     `json:"access_level" gorm:"size:20;not null"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName sets the table name for the Permission model
func (Permission) TableName() string {
	return "permissions"
}

// IsValidAccessLevel checks whether a permission level is one of the
// known values
func IsValidAccessLevel(level string) bool {
	switch level {
	case ReadPermission, WritePermission, AdminPermission:
		return true
	}
	return false
}

// permissionRank orders access levels so a higher level implies the
// lower ones
func permissionRank(level string) int {
	switch level {
	case ReadPermission:
		return 1
	case WritePermission:
		return 2
	case AdminPermission:
		return 3
	}
	return 0
}

// PermissionService provides methods for interacting with permissions in the database
type PermissionService struct {
	db *gorm.DB
}

// NewPermissionService creates a new permission service with the given database connection
func NewPermissionService(db *gorm.DB) *PermissionService {
	return &PermissionService{db: db}
}

// Create inserts a new permission into the database
func (s *PermissionService) Create(perm *Permission) error {
	if !IsValidAccessLevel(perm.AccessLevel) {
		return errors.New("invalid access level")
	}
	return s.db.Create(perm).Error
}

// GetByUserAndRepo retrieves a permission by user ID and repository ID
func (s *PermissionService) GetByUserAndRepo(userID, repoID uint) (*Permission, error) {
	var perm Permission
	err := s.db.Where("user_id = ? AND repository_id = ?", userID, repoID).
		Preload("User").
		First(&perm).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("permission not found")
		}
		return nil, err
	}
	return &perm, nil
}

// Update updates an existing permission in the database
func (s *PermissionService) Update(perm *Permission) error {
	if !IsValidAccessLevel(perm.AccessLevel) {
		return errors.New("invalid access level")
	}
	return s.db.Save(perm).Error
}

// DeleteByUserAndRepo removes a user's permission on a repository
func (s *PermissionService) DeleteByUserAndRepo(userID, repoID uint) error {
	return s.db.Where("user_id = ? AND repository_id = ?", userID, repoID).
		Delete(&Permission{}).Error
}

// ListByRepository retrieves all permissions granted on a repository
func (s *PermissionService) ListByRepository(repoID uint) ([]*Permission, error) {
	var perms []*Permission
	err := s.db.Where("repository_id = ?", repoID).
		Preload("User").
		Find(&perms).Error
	return perms, err
}

// HasPermission checks whether a user holds at least the given access
// level on a repository. The repository owner implicitly holds admin.
func (s *PermissionService) HasPermission(userID, repoID uint, level string) (bool, error) {
	if !IsValidAccessLevel(level) {
		return false, errors.New("invalid access level")
	}

	var repo Repository
	if err := s.db.First(&repo, repoID).Error; err == nil && repo.OwnerID == userID {
		return true, nil
	}

	perm, err := s.GetByUserAndRepo(userID, repoID)
	if err != nil {
		return false, nil
	}
	return permissionRank(perm.AccessLevel) >= permissionRank(level), nil
}
