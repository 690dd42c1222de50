package services

import (
	"context"
	"errors"
	"net/http"

	"mdrive/logger"
	"mdrive/models"
	"mdrive/repositories"
	"mdrive/storage"
	"mdrive/telemetry"

	"gorm.io/gorm"
)

type FolderContents struct {
	Folder     models.Folder   `json:"folder"`
	Subfolders []models.Folder `json:"subfolders"`
	Files      []models.File   `json:"files"`
}

type MoveFolderOutput struct {
	Folder         models.Folder `json:"folder"`
	AlreadyPresent bool          `json:"already_present"`
}

type FolderService interface {
	CreateFolder(ctx context.Context, userID uint, name string, parentID *uint) (models.Folder, error)
	GetContents(ctx context.Context, userID uint, folderID *uint) (FolderContents, error)
	GetBreadcrumbs(ctx context.Context, userID uint, folderID *uint) ([]models.Folder, error)
	RenameFolder(ctx context.Context, userID uint, folderID uint, name string) (models.Folder, error)
	MoveFolder(ctx context.Context, userID uint, folderID uint, newParentID *uint) (MoveFolderOutput, error)
	DeleteFolder(ctx context.Context, userID uint, folderID uint) error
}

type folderService struct {
	txManager TxManager
	folders   repositories.FolderRepository
	files     repositories.FileRepository
	users     repositories.UserRepository
	blobs     storage.BlobStore
	resolver  folderResolver
}

func NewFolderService(
	txManager TxManager,
	users repositories.UserRepository,
	folders repositories.FolderRepository,
	files repositories.FileRepository,
	blobs storage.BlobStore,
) FolderService {
	return &folderService{
		txManager: txManager,
		folders:   folders,
		files:     files,
		users:     users,
		blobs:     blobs,
		resolver:  folderResolver{folders: folders},
	}
}

func (s *folderService) CreateFolder(ctx context.Context, userID uint, name string, parentID *uint) (models.Folder, error) {
	parent, err := s.resolver.resolveFolder(ctx, nil, userID, parentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Folder{}, newAppError(http.StatusBadRequest, "Invalid folder reference", nil)
		}
		return models.Folder{}, newAppError(http.StatusInternalServerError, "Failed to resolve parent folder", err)
	}

	count, err := s.folders.CountByParentAndName(ctx, nil, userID, &parent.ID, name, 0)
	if err != nil {
		return models.Folder{}, newAppError(http.StatusInternalServerError, "Failed to check folder name", err)
	}
	if count > 0 {
		return models.Folder{}, newAppError(http.StatusConflict, "A folder with this name already exists", nil)
	}

	parentIDVal := parent.ID
	folder := models.Folder{
		Name:     name,
		ParentID: &parentIDVal,
		UserID:   userID,
	}
	if err := s.folders.Create(ctx, nil, &folder); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Folder{}, newAppError(http.StatusConflict, "A folder with this name already exists", err)
		}
		return models.Folder{}, newAppError(http.StatusInternalServerError, "Failed to create folder", err)
	}

	return folder, nil
}

// GetContents reads subfolders and files inside one transaction so the two
// lists describe the folder at a single instant even while entries move
// concurrently.
func (s *folderService) GetContents(ctx context.Context, userID uint, folderID *uint) (FolderContents, error) {
	var out FolderContents
	err := s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		folder, err := s.resolver.resolveFolder(ctx, tx, userID, folderID)
		if err != nil {
			return err
		}
		subfolders, err := s.folders.ListByParent(ctx, tx, userID, folder.ID)
		if err != nil {
			return err
		}
		files, err := s.files.ListByFolder(ctx, tx, userID, folder.ID)
		if err != nil {
			return err
		}
		out = FolderContents{Folder: folder, Subfolders: subfolders, Files: files}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return FolderContents{}, newAppError(http.StatusNotFound, "Folder not found", nil)
		}
		return FolderContents{}, newAppError(http.StatusInternalServerError, "Failed to list folder contents", err)
	}
	return out, nil
}

// GetBreadcrumbs walks parent links from the folder up to the root and
// returns the chain in root-to-target order. The move invariant keeps the
// chain acyclic; a revisited id means corrupted data, not a longer walk.
func (s *folderService) GetBreadcrumbs(ctx context.Context, userID uint, folderID *uint) ([]models.Folder, error) {
	folder, err := s.resolver.resolveFolder(ctx, nil, userID, folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newAppError(http.StatusNotFound, "Folder not found", nil)
		}
		return nil, newAppError(http.StatusInternalServerError, "Failed to resolve folder", err)
	}

	crumbs := []models.Folder{folder}
	visited := map[uint]bool{folder.ID: true}

	current := folder
	for current.ParentID != nil {
		parent, err := s.folders.GetByIDAndUser(ctx, nil, *current.ParentID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, newAppError(http.StatusNotFound, "Folder not found", nil)
			}
			return nil, newAppError(http.StatusInternalServerError, "Failed to resolve folder ancestry", err)
		}
		if visited[parent.ID] {
			return nil, newAppError(http.StatusInternalServerError, "Folder tree is corrupted", nil)
		}
		visited[parent.ID] = true
		crumbs = append(crumbs, parent)
		current = parent
	}

	// Collected leaf-first; reverse into root-to-target order.
	for i, j := 0, len(crumbs)-1; i < j; i, j = i+1, j-1 {
		crumbs[i], crumbs[j] = crumbs[j], crumbs[i]
	}
	return crumbs, nil
}

func (s *folderService) RenameFolder(ctx context.Context, userID uint, folderID uint, name string) (models.Folder, error) {
	folder, err := s.folders.GetByIDAndUser(ctx, nil, folderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Folder{}, newAppError(http.StatusNotFound, "Folder not found", nil)
		}
		return models.Folder{}, newAppError(http.StatusInternalServerError, "Failed to load folder", err)
	}
	if folder.ParentID == nil {
		return models.Folder{}, newAppError(http.StatusBadRequest, "The root folder cannot be renamed", nil)
	}

	count, err := s.folders.CountByParentAndName(ctx, nil, userID, folder.ParentID, name, folder.ID)
	if err != nil {
		return models.Folder{}, newAppError(http.StatusInternalServerError, "Failed to check folder name", err)
	}
	if count > 0 {
		return models.Folder{}, newAppError(http.StatusConflict, "A folder with this name already exists", nil)
	}

	if err := s.folders.UpdateByIDAndUser(ctx, nil, folder.ID, userID, map[string]interface{}{"name": name}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.Folder{}, newAppError(http.StatusConflict, "A folder with this name already exists", err)
		}
		return models.Folder{}, newAppError(http.StatusInternalServerError, "Failed to rename folder", err)
	}

	folder.Name = name
	return folder, nil
}

func (s *folderService) MoveFolder(ctx context.Context, userID uint, folderID uint, newParentID *uint) (MoveFolderOutput, error) {
	folder, err := s.folders.GetByIDAndUser(ctx, nil, folderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MoveFolderOutput{}, newAppError(http.StatusNotFound, "Folder not found", nil)
		}
		return MoveFolderOutput{}, newAppError(http.StatusInternalServerError, "Failed to load folder", err)
	}
	if folder.ParentID == nil {
		return MoveFolderOutput{}, newAppError(http.StatusBadRequest, "The root folder cannot be moved", nil)
	}

	newParent, err := s.resolver.resolveFolder(ctx, nil, userID, newParentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MoveFolderOutput{}, newAppError(http.StatusBadRequest, "Invalid folder reference", nil)
		}
		return MoveFolderOutput{}, newAppError(http.StatusInternalServerError, "Failed to resolve destination folder", err)
	}

	if *folder.ParentID == newParent.ID {
		return MoveFolderOutput{Folder: folder, AlreadyPresent: true}, nil
	}

	descendant, err := s.isDescendant(ctx, userID, newParent, folderID)
	if err != nil {
		return MoveFolderOutput{}, err
	}
	if descendant {
		return MoveFolderOutput{}, newAppError(http.StatusConflict, "Cannot move a folder into itself or its descendants", nil)
	}

	count, err := s.folders.CountByParentAndName(ctx, nil, userID, &newParent.ID, folder.Name, folder.ID)
	if err != nil {
		return MoveFolderOutput{}, newAppError(http.StatusInternalServerError, "Failed to check folder name", err)
	}
	if count > 0 {
		return MoveFolderOutput{}, newAppError(http.StatusConflict, "A folder with this name already exists in the destination", nil)
	}

	if err := s.folders.UpdateByIDAndUser(ctx, nil, folder.ID, userID, map[string]interface{}{"parent_id": newParent.ID}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return MoveFolderOutput{}, newAppError(http.StatusConflict, "A folder with this name already exists in the destination", err)
		}
		return MoveFolderOutput{}, newAppError(http.StatusInternalServerError, "Failed to move folder", err)
	}

	newParentIDVal := newParent.ID
	folder.ParentID = &newParentIDVal
	return MoveFolderOutput{Folder: folder}, nil
}

// isDescendant reports whether folderID lies on the parent chain of start,
// start itself included (a node is its own descendant at distance zero).
func (s *folderService) isDescendant(ctx context.Context, userID uint, start models.Folder, folderID uint) (bool, error) {
	current := start
	for {
		if current.ID == folderID {
			return true, nil
		}
		if current.ParentID == nil {
			return false, nil
		}
		parent, err := s.folders.GetByIDAndUser(ctx, nil, *current.ParentID, userID)
		if err != nil {
			return false, newAppError(http.StatusInternalServerError, "Failed to check folder ancestry", err)
		}
		current = parent
	}
}

// DeleteFolder removes a folder and its whole subtree. Blob deletion runs
// before the metadata transaction and is best-effort: a failed blob delete
// leaves an orphan in the object store but never blocks the tree deletion.
func (s *folderService) DeleteFolder(ctx context.Context, userID uint, folderID uint) error {
	folder, err := s.folders.GetByIDAndUser(ctx, nil, folderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAppError(http.StatusNotFound, "Folder not found", nil)
		}
		return newAppError(http.StatusInternalServerError, "Failed to load folder", err)
	}
	if folder.ParentID == nil {
		return newAppError(http.StatusBadRequest, "The root folder cannot be deleted", nil)
	}

	folderIDs, err := s.collectSubtree(ctx, userID, folder.ID)
	if err != nil {
		return err
	}

	files, err := s.files.ListByFolderIDs(ctx, nil, userID, folderIDs)
	if err != nil {
		return newAppError(http.StatusInternalServerError, "Failed to collect folder files", err)
	}
	for _, file := range files {
		if err := s.blobs.Delete(ctx, file.ObjectKey, file.ResourceType); err != nil {
			telemetry.BlobDeleteFailures.Inc()
			logger.Warnf("blob delete failed for file %d (key %s): %v", file.ID, file.ObjectKey, err)
		}
	}

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		freed, err := s.files.SumSizeByFolderIDs(ctx, tx, userID, folderIDs)
		if err != nil {
			return err
		}
		if err := s.files.DeleteByFolderIDs(ctx, tx, userID, folderIDs); err != nil {
			return err
		}
		if err := s.folders.DeleteByIDs(ctx, tx, userID, folderIDs); err != nil {
			return err
		}
		return s.users.SubStorageUsed(ctx, tx, userID, freed)
	})
	if err != nil {
		return newAppError(http.StatusInternalServerError, "Failed to delete folder", err)
	}

	return nil
}

// collectSubtree gathers the ids of a folder and all its descendants with a
// breadth-first worklist over parent links; no recursion, no in-memory tree.
func (s *folderService) collectSubtree(ctx context.Context, userID uint, rootID uint) ([]uint, error) {
	all := []uint{rootID}
	frontier := []uint{rootID}
	for len(frontier) > 0 {
		children, err := s.folders.ListByParents(ctx, nil, userID, frontier)
		if err != nil {
			return nil, newAppError(http.StatusInternalServerError, "Failed to collect subtree", err)
		}
		frontier = frontier[:0]
		for _, child := range children {
			all = append(all, child.ID)
			frontier = append(frontier, child.ID)
		}
	}
	return all, nil
}
