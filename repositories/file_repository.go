package repositories

import (
	"context"

	"mdrive/models"

	"gorm.io/gorm"
)

type GormFileRepository struct {
	db *gorm.DB
}

func NewGormFileRepository(db *gorm.DB) *GormFileRepository {
	return &GormFileRepository{db: db}
}

func (r *GormFileRepository) Create(_ context.Context, tx *gorm.DB, file *models.File) error {
	return useTx(r.db, tx).Create(file).Error
}

func (r *GormFileRepository) GetByIDAndUser(_ context.Context, tx *gorm.DB, fileID uint, userID uint) (models.File, error) {
	var file models.File
	err := useTx(r.db, tx).Where("id = ? AND user_id = ?", fileID, userID).First(&file).Error
	return file, err
}

func (r *GormFileRepository) ListByFolder(_ context.Context, tx *gorm.DB, userID uint, folderID uint) ([]models.File, error) {
	var files []models.File
	err := useTx(r.db, tx).
		Where("user_id = ? AND folder_id = ?", userID, folderID).
		Order("updated_at DESC").
		Find(&files).Error
	return files, err
}

func (r *GormFileRepository) ListByFolderIDs(_ context.Context, tx *gorm.DB, userID uint, folderIDs []uint) ([]models.File, error) {
	if len(folderIDs) == 0 {
		return nil, nil
	}
	var files []models.File
	err := useTx(r.db, tx).
		Where("user_id = ? AND folder_id IN ?", userID, folderIDs).
		Find(&files).Error
	return files, err
}

func (r *GormFileRepository) ListByUser(_ context.Context, tx *gorm.DB, userID uint) ([]models.File, error) {
	var files []models.File
	err := useTx(r.db, tx).Where("user_id = ?", userID).Find(&files).Error
	return files, err
}

func (r *GormFileRepository) CountByFolderAndName(_ context.Context, tx *gorm.DB, userID uint, folderID uint, name string, excludeID uint) (int64, error) {
	db := useTx(r.db, tx).Model(&models.File{}).
		Where("user_id = ? AND folder_id = ? AND name = ?", userID, folderID, name)
	if excludeID > 0 {
		db = db.Where("id <> ?", excludeID)
	}
	var count int64
	err := db.Count(&count).Error
	return count, err
}

func (r *GormFileRepository) UpdateByIDAndUser(_ context.Context, tx *gorm.DB, fileID uint, userID uint, updates map[string]interface{}) error {
	return useTx(r.db, tx).Model(&models.File{}).
		Where("id = ? AND user_id = ?", fileID, userID).
		Updates(updates).Error
}

func (r *GormFileRepository) DeleteByIDAndUser(_ context.Context, tx *gorm.DB, fileID uint, userID uint) error {
	return useTx(r.db, tx).Where("id = ? AND user_id = ?", fileID, userID).Delete(&models.File{}).Error
}

func (r *GormFileRepository) DeleteByFolderIDs(_ context.Context, tx *gorm.DB, userID uint, folderIDs []uint) error {
	if len(folderIDs) == 0 {
		return nil
	}
	return useTx(r.db, tx).Where("user_id = ? AND folder_id IN ?", userID, folderIDs).Delete(&models.File{}).Error
}

func (r *GormFileRepository) DeleteByUser(_ context.Context, tx *gorm.DB, userID uint) error {
	return useTx(r.db, tx).Where("user_id = ?", userID).Delete(&models.File{}).Error
}

func (r *GormFileRepository) SumSizeByFolderIDs(_ context.Context, tx *gorm.DB, userID uint, folderIDs []uint) (int64, error) {
	if len(folderIDs) == 0 {
		return 0, nil
	}
	var total int64
	err := useTx(r.db, tx).Model(&models.File{}).
		Where("user_id = ? AND folder_id IN ?", userID, folderIDs).
		Select("COALESCE(SUM(size), 0)").
		Scan(&total).Error
	return total, err
}

func (r *GormFileRepository) SearchByName(_ context.Context, tx *gorm.DB, userID uint, query string) ([]models.File, error) {
	var files []models.File
	err := useTx(r.db, tx).
		Where("user_id = ? AND name LIKE ?", userID, "%"+query+"%").
		Order("updated_at DESC").
		Find(&files).Error
	return files, err
}
