package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Blob is the database index entry for a blob stored on disk. The
// object store remains the source of truth; this index exists so blobs
// can be listed and searched without walking the loose-object fan-out.
type Blob struct {
	ID           uint       `json:"id" gorm:"primarykey"`
	RepositoryID uint       `json:"repository_id" gorm:"not null;uniqueIndex:idx_repo_oid"`
	Repository   Repository `json:"-" gorm:"foreignKey:RepositoryID"`
	OID          string     `json:"oid" gorm:"size:64;not null;uniqueIndex:idx_repo_oid"`
	Size         int64      `json:"size" gorm:"not null"`
	Binary       bool       `json:"binary"`
	Sloc         int        `json:"sloc"`
	HintPath     string     `json:"hint_path,omitempty" gorm:"size:1024"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName sets the table name for the Blob model
func (Blob) TableName() string {
	return "blobs"
}

// BlobService provides methods for interacting with the blob index in
// the database
type BlobService struct {
	db *gorm.DB
}

// NewBlobService creates a new blob service with the given database connection
func NewBlobService(db *gorm.DB) *BlobService {
	return &BlobService{db: db}
}

// Upsert inserts a blob index entry, or refreshes the existing entry
// for the same repository and OID
func (s *BlobService) Upsert(blob *Blob) error {
	var existing Blob
	err := s.db.Where("repository_id = ? AND oid = ?", blob.RepositoryID, blob.OID).
		First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return s.db.Create(blob).Error
		}
		return err
	}

	existing.Size = blob.Size
	existing.Binary = blob.Binary
	existing.Sloc = blob.Sloc
	if blob.HintPath != "" {
		existing.HintPath = blob.HintPath
	}
	return s.db.Save(&existing).Error
}

// GetByOID retrieves a blob index entry by repository and OID
func (s *BlobService) GetByOID(repoID uint, oid string) (*Blob, error) {
	var blob Blob
	err := s.db.Where("repository_id = ? AND oid = ?", repoID, oid).First(&blob).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("blob not found")
		}
		return nil, err
	}
	return &blob, nil
}

// ListByRepository retrieves blob index entries for a repository with
// pagination
func (s *BlobService) ListByRepository(repoID uint, limit, offset int) ([]*Blob, error) {
	var blobs []*Blob
	err := s.db.Where("repository_id = ?", repoID).
		Limit(limit).
		Offset(offset).
		Order("oid").
		Find(&blobs).Error
	return blobs, err
}

// DeleteByRepository removes all blob index entries for a repository
func (s *BlobService) DeleteByRepository(repoID uint) error {
	return s.db.Where("repository_id = ?", repoID).Delete(&Blob{}).Error
}
