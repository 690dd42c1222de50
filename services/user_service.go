package services

import (
	"context"
	"errors"
	"net/http"

	"mdrive/logger"
	"mdrive/repositories"
	"mdrive/storage"
	"mdrive/telemetry"

	"gorm.io/gorm"
)

type StorageOutput struct {
	StorageQuota int64 `json:"storage_quota"`
	StorageUsed  int64 `json:"storage_used"`
	Available    int64 `json:"available"`
}

type UserService interface {
	GetStorage(ctx context.Context, userID uint) (StorageOutput, error)
	UpdateUsername(ctx context.Context, userID uint, newName string) (AuthUser, error)
	DeleteAccount(ctx context.Context, userID uint) error
}

type userService struct {
	txManager TxManager
	users     repositories.UserRepository
	folders   repositories.FolderRepository
	files     repositories.FileRepository
	blobs     storage.BlobStore
}

func NewUserService(
	txManager TxManager,
	users repositories.UserRepository,
	folders repositories.FolderRepository,
	files repositories.FileRepository,
	blobs storage.BlobStore,
) UserService {
	return &userService{txManager: txManager, users: users, folders: folders, files: files, blobs: blobs}
}

func (s *userService) GetStorage(ctx context.Context, userID uint) (StorageOutput, error) {
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StorageOutput{}, newAppError(http.StatusNotFound, "User not found", nil)
		}
		return StorageOutput{}, newAppError(http.StatusInternalServerError, "Failed to load user", err)
	}
	return StorageOutput{
		StorageQuota: user.StorageQuota,
		StorageUsed:  user.StorageUsed,
		Available:    user.StorageQuota - user.StorageUsed,
	}, nil
}

func (s *userService) UpdateUsername(ctx context.Context, userID uint, newName string) (AuthUser, error) {
	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthUser{}, newAppError(http.StatusNotFound, "User not found", nil)
		}
		return AuthUser{}, newAppError(http.StatusInternalServerError, "Failed to load user", err)
	}

	count, err := s.users.CountByUsername(ctx, newName)
	if err != nil {
		return AuthUser{}, newAppError(http.StatusInternalServerError, "Failed to check username", err)
	}
	if count > 0 && user.Username != newName {
		return AuthUser{}, newAppError(http.StatusConflict, "Username already exists", nil)
	}

	if err := s.users.UpdateByID(ctx, nil, userID, map[string]interface{}{"username": newName}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return AuthUser{}, newAppError(http.StatusConflict, "Username already exists", err)
		}
		return AuthUser{}, newAppError(http.StatusInternalServerError, "Failed to update username", err)
	}

	return AuthUser{ID: user.ID, Username: newName, Email: user.Email}, nil
}

// DeleteAccount removes the user with everything they own. Blob cleanup is
// best-effort, like folder deletion: the account removal must terminate even
// against a flaky object store.
func (s *userService) DeleteAccount(ctx context.Context, userID uint) error {
	if _, err := s.users.GetByID(ctx, nil, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAppError(http.StatusNotFound, "User not found", nil)
		}
		return newAppError(http.StatusInternalServerError, "Failed to load user", err)
	}

	files, err := s.files.ListByUser(ctx, nil, userID)
	if err != nil {
		return newAppError(http.StatusInternalServerError, "Failed to collect user files", err)
	}
	for _, file := range files {
		if err := s.blobs.Delete(ctx, file.ObjectKey, file.ResourceType); err != nil {
			telemetry.BlobDeleteFailures.Inc()
			logger.Warnf("blob delete failed for file %d (key %s): %v", file.ID, file.ObjectKey, err)
		}
	}

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.files.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		if err := s.folders.DeleteByUser(ctx, tx, userID); err != nil {
			return err
		}
		return s.users.DeleteByID(ctx, tx, userID)
	})
	if err != nil {
		return newAppError(http.StatusInternalServerError, "Failed to delete account", err)
	}

	return nil
}
