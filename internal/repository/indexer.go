package repository

import (
	"fmt"
	"log"

	"github.com/relic-vcs/relic-server/core"
	"github.com/relic-vcs/relic-server/internal/db/models"
)

// BlobIndex is the subset of the blob service the indexer writes
// through. *models.BlobService satisfies it.
type BlobIndex interface {
	Upsert(blob *models.Blob) error
	DeleteByRepository(repoID uint) error
}

// Indexer keeps the database blob index in step with the on-disk
// object store. The store is the source of truth; the index is a
// queryable mirror.
type Indexer struct {
	manager     *Manager
	blobService BlobIndex
	logger      *log.Logger
}

// NewIndexer creates an indexer backed by the given manager and blob service.
func NewIndexer(manager *Manager, blobService BlobIndex, logger *log.Logger) *Indexer {
	return &Indexer{
		manager:     manager,
		blobService: blobService,
		logger:      logger,
	}
}

// IndexBlob records a single blob in the database index. hintPath may
// be empty.
func (ix *Indexer) IndexBlob(repoModel *models.Repository, info *core.BlobInfo, hintPath string) error {
	entry := &models.Blob{
		RepositoryID: repoModel.ID,
		OID:          info.OID,
		Size:         info.Size,
		Binary:       info.Binary,
		Sloc:         info.Sloc,
		HintPath:     hintPath,
	}
	if err := ix.blobService.Upsert(entry); err != nil {
		ix.logger.Printf("Failed to index blob %s for repository %d: %v", info.OID, repoModel.ID, err)
		return fmt.Errorf("failed to index blob %s: %w", info.OID, err)
	}
	return nil
}

// ReindexBlobs rebuilds the blob index of a repository from the object
// store. Stale entries are dropped; every blob on disk is re-analyzed
// and re-recorded.
func (ix *Indexer) ReindexBlobs(repoModel *models.Repository, ownerName string) (int, error) {
	repo, err := ix.manager.Open(ownerName, repoModel.Name)
	if err != nil {
		return 0, err
	}

	unlock := ix.manager.LockRepo(repo.Root)
	defer unlock()

	oids, err := core.ListObjects(repo)
	if err != nil {
		return 0, fmt.Errorf("failed to list objects for %s/%s: %w", ownerName, repoModel.Name, err)
	}

	if err := ix.blobService.DeleteByRepository(repoModel.ID); err != nil {
		return 0, fmt.Errorf("failed to clear blob index: %w", err)
	}

	indexed := 0
	for _, oid := range oids {
		info, err := repo.StatBlob(oid)
		if err != nil {
			// Non-blob objects are not indexed.
			ix.logger.Printf("Reindex: skipping object %s in %s/%s: %v", oid, ownerName, repoModel.Name, err)
			continue
		}
		if err := ix.IndexBlob(repoModel, info, ""); err != nil {
			return indexed, err
		}
		indexed++
	}

	ix.logger.Printf("Reindexed %d blobs for %s/%s", indexed, ownerName, repoModel.Name)
	return indexed, nil
}
