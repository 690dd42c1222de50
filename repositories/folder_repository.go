package repositories

import (
	"context"

	"mdrive/models"

	"gorm.io/gorm"
)

type GormFolderRepository struct {
	db *gorm.DB
}

func NewGormFolderRepository(db *gorm.DB) *GormFolderRepository {
	return &GormFolderRepository{db: db}
}

func (r *GormFolderRepository) Create(_ context.Context, tx *gorm.DB, folder *models.Folder) error {
	return useTx(r.db, tx).Create(folder).Error
}

func (r *GormFolderRepository) GetByIDAndUser(_ context.Context, tx *gorm.DB, folderID uint, userID uint) (models.Folder, error) {
	var folder models.Folder
	err := useTx(r.db, tx).Where("id = ? AND user_id = ?", folderID, userID).First(&folder).Error
	return folder, err
}

func (r *GormFolderRepository) GetRootByUser(_ context.Context, tx *gorm.DB, userID uint) (models.Folder, error) {
	var folder models.Folder
	err := useTx(r.db, tx).Where("user_id = ? AND parent_id IS NULL", userID).First(&folder).Error
	return folder, err
}

func (r *GormFolderRepository) ListByParent(_ context.Context, tx *gorm.DB, userID uint, parentID uint) ([]models.Folder, error) {
	var folders []models.Folder
	err := useTx(r.db, tx).
		Where("user_id = ? AND parent_id = ?", userID, parentID).
		Order("updated_at DESC").
		Find(&folders).Error
	return folders, err
}

func (r *GormFolderRepository) ListByParents(_ context.Context, tx *gorm.DB, userID uint, parentIDs []uint) ([]models.Folder, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var folders []models.Folder
	err := useTx(r.db, tx).
		Where("user_id = ? AND parent_id IN ?", userID, parentIDs).
		Find(&folders).Error
	return folders, err
}

func (r *GormFolderRepository) CountByParentAndName(_ context.Context, tx *gorm.DB, userID uint, parentID *uint, name string, excludeID uint) (int64, error) {
	db := useTx(r.db, tx).Model(&models.Folder{}).Where("user_id = ? AND name = ?", userID, name)
	if parentID != nil {
		db = db.Where("parent_id = ?", *parentID)
	} else {
		db = db.Where("parent_id IS NULL")
	}
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}
	var count int64
	err := db.Count(&count).Error
	return count, err
}

func (r *GormFolderRepository) UpdateByIDAndUser(_ context.Context, tx *gorm.DB, folderID uint, userID uint, updates map[string]interface{}) error {
	return useTx(r.db, tx).Model(&models.Folder{}).
		Where("id = ? AND user_id = ?", folderID, userID).
		Updates(updates).Error
}

func (r *GormFolderRepository) DeleteByIDs(_ context.Context, tx *gorm.DB, userID uint, folderIDs []uint) error {
	if len(folderIDs) == 0 {
		return nil
	}
	return useTx(r.db, tx).Where("user_id = ? AND id IN ?", userID, folderIDs).Delete(&models.Folder{}).Error
}

func (r *GormFolderRepository) DeleteByUser(_ context.Context, tx *gorm.DB, userID uint) error {
	return useTx(r.db, tx).Where("user_id = ?", userID).Delete(&models.Folder{}).Error
}

func (r *GormFolderRepository) SearchByName(_ context.Context, tx *gorm.DB, userID uint, query string) ([]models.Folder, error) {
	var folders []models.Folder
	err := useTx(r.db, tx).
		Where("user_id = ? AND name LIKE ?", userID, "%"+query+"%").
		Order("updated_at DESC").
		Find(&folders).Error
	return folders, err
}
