package repositories

import (
	"context"
	"time"

	"mdrive/models"

	"gorm.io/gorm"
)

type TxManager interface {
	WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type UserRepository interface {
	CountByUsername(ctx context.Context, username string) (int64, error)
	CountByEmail(ctx context.Context, email string) (int64, error)
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	GetByUsername(ctx context.Context, tx *gorm.DB, username string) (models.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, userID uint) (models.User, error)
	UpdateByID(ctx context.Context, tx *gorm.DB, userID uint, updates map[string]interface{}) error
	DeleteByID(ctx context.Context, tx *gorm.DB, userID uint) error
	AddStorageUsed(ctx context.Context, tx *gorm.DB, userID uint, delta int64) error
	SubStorageUsed(ctx context.Context, tx *gorm.DB, userID uint, delta int64) error
}

type FolderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, folder *models.Folder) error
	GetByIDAndUser(ctx context.Context, tx *gorm.DB, folderID uint, userID uint) (models.Folder, error)
	GetRootByUser(ctx context.Context, tx *gorm.DB, userID uint) (models.Folder, error)
	ListByParent(ctx context.Context, tx *gorm.DB, userID uint, parentID uint) ([]models.Folder, error)
	ListByParents(ctx context.Context, tx *gorm.DB, userID uint, parentIDs []uint) ([]models.Folder, error)
	CountByParentAndName(ctx context.Context, tx *gorm.DB, userID uint, parentID *uint, name string, excludeID uint) (int64, error)
	UpdateByIDAndUser(ctx context.Context, tx *gorm.DB, folderID uint, userID uint, updates map[string]interface{}) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, userID uint, folderIDs []uint) error
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) error
	SearchByName(ctx context.Context, tx *gorm.DB, userID uint, query string) ([]models.Folder, error)
}

type FileRepository interface {
	Create(ctx context.Context, tx *gorm.DB, file *models.File) error
	GetByIDAndUser(ctx context.Context, tx *gorm.DB, fileID uint, userID uint) (models.File, error)
	ListByFolder(ctx context.Context, tx *gorm.DB, userID uint, folderID uint) ([]models.File, error)
	ListByFolderIDs(ctx context.Context, tx *gorm.DB, userID uint, folderIDs []uint) ([]models.File, error)
	ListByUser(ctx context.Context, tx *gorm.DB, userID uint) ([]models.File, error)
	CountByFolderAndName(ctx context.Context, tx *gorm.DB, userID uint, folderID uint, name string, excludeID uint) (int64, error)
	UpdateByIDAndUser(ctx context.Context, tx *gorm.DB, fileID uint, userID uint, updates map[string]interface{}) error
	DeleteByIDAndUser(ctx context.Context, tx *gorm.DB, fileID uint, userID uint) error
	DeleteByFolderIDs(ctx context.Context, tx *gorm.DB, userID uint, folderIDs []uint) error
	DeleteByUser(ctx context.Context, tx *gorm.DB, userID uint) error
	SumSizeByFolderIDs(ctx context.Context, tx *gorm.DB, userID uint, folderIDs []uint) (int64, error)
	SearchByName(ctx context.Context, tx *gorm.DB, userID uint, query string) ([]models.File, error)
}

// TokenBlacklist records revoked JWT ids until their natural expiry.
type TokenBlacklist interface {
	Add(ctx context.Context, jti string, ttl time.Duration) error
	Contains(ctx context.Context, jti string) (bool, error)
}

type Container struct {
	TxManager      TxManager
	Users          UserRepository
	Folders        FolderRepository
	Files          FileRepository
	TokenBlacklist TokenBlacklist
}
