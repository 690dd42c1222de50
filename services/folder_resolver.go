package services

import (
	"context"

	"mdrive/models"
	"mdrive/repositories"

	"gorm.io/gorm"
)

// folderResolver maps an optional folder reference to a concrete folder.
// A nil reference means the user's root folder, the single row with a NULL
// parent; it exists from registration on, so resolution is one lookup.
type folderResolver struct {
	folders repositories.FolderRepository
}

func (r folderResolver) rootFolder(ctx context.Context, tx *gorm.DB, userID uint) (models.Folder, error) {
	return r.folders.GetRootByUser(ctx, tx, userID)
}

func (r folderResolver) resolveFolder(ctx context.Context, tx *gorm.DB, userID uint, folderID *uint) (models.Folder, error) {
	if folderID == nil {
		return r.rootFolder(ctx, tx, userID)
	}
	return r.folders.GetByIDAndUser(ctx, tx, *folderID, userID)
}
