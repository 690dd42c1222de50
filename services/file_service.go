package services

import (
	"context"
	"errors"
	"io"
	"net/http"

	"mdrive/models"
	"mdrive/repositories"
	"mdrive/storage"
	"mdrive/telemetry"

	"gorm.io/gorm"
)

type UploadFileInput struct {
	FolderID     *uint
	Name         string
	OriginalName string
	MimeType     string
	Size         int64
	Content      io.Reader
}

type MoveFileOutput struct {
	File           models.File `json:"file"`
	AlreadyPresent bool        `json:"already_present"`
}

type FileService interface {
	Upload(ctx context.Context, userID uint, in UploadFileInput) (models.File, error)
	RenameFile(ctx context.Context, userID uint, fileID uint, name string) (models.File, error)
	MoveFile(ctx context.Context, userID uint, fileID uint, folderID *uint) (MoveFileOutput, error)
	DeleteFile(ctx context.Context, userID uint, fileID uint) error
}

type fileService struct {
	txManager TxManager
	users     repositories.UserRepository
	folders   repositories.FolderRepository
	files     repositories.FileRepository
	blobs     storage.BlobStore
	resolver  folderResolver
}

func NewFileService(
	txManager TxManager,
	users repositories.UserRepository,
	folders repositories.FolderRepository,
	files repositories.FileRepository,
	blobs storage.BlobStore,
) FileService {
	return &fileService{
		txManager: txManager,
		users:     users,
		folders:   folders,
		files:     files,
		blobs:     blobs,
		resolver:  folderResolver{folders: folders},
	}
}

// Upload stores the blob first and claims it in one metadata transaction
// (file row + quota increment). When the transaction fails the blob is
// removed again; the compensating delete runs once and never masks the
// original failure.
func (s *fileService) Upload(ctx context.Context, userID uint, in UploadFileInput) (models.File, error) {
	if in.Content == nil {
		return models.File{}, newAppError(http.StatusBadRequest, "No file uploaded", nil)
	}

	name := in.Name
	if name == "" {
		name = in.OriginalName
	}
	if name == "" {
		return models.File{}, newAppError(http.StatusBadRequest, "File name is required", nil)
	}

	folder, err := s.resolver.resolveFolder(ctx, nil, userID, in.FolderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.File{}, newAppError(http.StatusBadRequest, "Invalid folder reference", nil)
		}
		return models.File{}, newAppError(http.StatusInternalServerError, "Failed to resolve folder", err)
	}

	user, err := s.users.GetByID(ctx, nil, userID)
	if err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "Failed to load user", err)
	}
	if user.StorageUsed+in.Size >= user.StorageQuota {
		telemetry.QuotaRejections.Inc()
		return models.File{}, newAppErrorWithData(http.StatusBadRequest, "Not enough storage", map[string]interface{}{
			"storage_quota": user.StorageQuota,
			"storage_used":  user.StorageUsed,
			"required":      in.Size,
		}, nil)
	}

	count, err := s.files.CountByFolderAndName(ctx, nil, userID, folder.ID, name, 0)
	if err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "Failed to check file name", err)
	}
	if count > 0 {
		return models.File{}, newAppError(http.StatusConflict, "A file with this name already exists in this folder", nil)
	}

	action := newBlobUpload(s.blobs, in.Content, in.Size, in.MimeType)
	result, err := action.Forward(ctx)
	if err != nil {
		// Nothing was committed anywhere; no compensation needed.
		return models.File{}, newAppError(http.StatusInternalServerError, "Failed to store file", err)
	}

	record := models.File{
		Name:         name,
		OriginalName: in.OriginalName,
		FolderID:     folder.ID,
		UserID:       userID,
		Size:         in.Size,
		MimeType:     in.MimeType,
		ObjectKey:    result.Key,
		ResourceType: result.ResourceType,
		URL:          result.URL,
	}

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.files.Create(ctx, tx, &record); err != nil {
			return err
		}
		return s.users.AddStorageUsed(ctx, tx, userID, in.Size)
	})
	if err != nil {
		action.Compensate(ctx)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.File{}, newAppError(http.StatusConflict, "A file with this name already exists in this folder", err)
		}
		return models.File{}, newAppError(http.StatusInternalServerError, "Failed to save file record", err)
	}

	telemetry.UploadsTotal.Inc()
	telemetry.UploadBytesTotal.Add(float64(in.Size))
	return record, nil
}

func (s *fileService) RenameFile(ctx context.Context, userID uint, fileID uint, name string) (models.File, error) {
	file, err := s.files.GetByIDAndUser(ctx, nil, fileID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.File{}, newAppError(http.StatusNotFound, "File not found", nil)
		}
		return models.File{}, newAppError(http.StatusInternalServerError, "Failed to load file", err)
	}

	count, err := s.files.CountByFolderAndName(ctx, nil, userID, file.FolderID, name, file.ID)
	if err != nil {
		return models.File{}, newAppError(http.StatusInternalServerError, "Failed to check file name", err)
	}
	if count > 0 {
		return models.File{}, newAppError(http.StatusConflict, "A file with this name already exists in this folder", nil)
	}

	if err := s.files.UpdateByIDAndUser(ctx, nil, file.ID, userID, map[string]interface{}{"name": name}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.File{}, newAppError(http.StatusConflict, "A file with this name already exists in this folder", err)
		}
		return models.File{}, newAppError(http.StatusInternalServerError, "Failed to rename file", err)
	}

	file.Name = name
	return file, nil
}

func (s *fileService) MoveFile(ctx context.Context, userID uint, fileID uint, folderID *uint) (MoveFileOutput, error) {
	file, err := s.files.GetByIDAndUser(ctx, nil, fileID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MoveFileOutput{}, newAppError(http.StatusNotFound, "File not found", nil)
		}
		return MoveFileOutput{}, newAppError(http.StatusInternalServerError, "Failed to load file", err)
	}

	target, err := s.resolver.resolveFolder(ctx, nil, userID, folderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MoveFileOutput{}, newAppError(http.StatusBadRequest, "Invalid folder reference", nil)
		}
		return MoveFileOutput{}, newAppError(http.StatusInternalServerError, "Failed to resolve destination folder", err)
	}

	if file.FolderID == target.ID {
		return MoveFileOutput{File: file, AlreadyPresent: true}, nil
	}

	count, err := s.files.CountByFolderAndName(ctx, nil, userID, target.ID, file.Name, file.ID)
	if err != nil {
		return MoveFileOutput{}, newAppError(http.StatusInternalServerError, "Failed to check file name", err)
	}
	if count > 0 {
		return MoveFileOutput{}, newAppError(http.StatusConflict, "A file with this name already exists in the destination folder", nil)
	}

	if err := s.files.UpdateByIDAndUser(ctx, nil, file.ID, userID, map[string]interface{}{"folder_id": target.ID}); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return MoveFileOutput{}, newAppError(http.StatusConflict, "A file with this name already exists in the destination folder", err)
		}
		return MoveFileOutput{}, newAppError(http.StatusInternalServerError, "Failed to move file", err)
	}

	file.FolderID = target.ID
	return MoveFileOutput{File: file}, nil
}

// DeleteFile is fail-closed: the blob must be gone before any metadata is
// touched. When the object store refuses, the row and the quota stay as they
// are and the caller can retry.
func (s *fileService) DeleteFile(ctx context.Context, userID uint, fileID uint) error {
	file, err := s.files.GetByIDAndUser(ctx, nil, fileID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return newAppError(http.StatusNotFound, "File not found", nil)
		}
		return newAppError(http.StatusInternalServerError, "Failed to load file", err)
	}

	if err := s.blobs.Delete(ctx, file.ObjectKey, file.ResourceType); err != nil {
		return newAppError(http.StatusInternalServerError, "Failed to remove file from storage", err)
	}

	err = s.txManager.WithTransaction(ctx, func(tx *gorm.DB) error {
		if err := s.files.DeleteByIDAndUser(ctx, tx, file.ID, userID); err != nil {
			return err
		}
		return s.users.SubStorageUsed(ctx, tx, userID, file.Size)
	})
	if err != nil {
		return newAppError(http.StatusInternalServerError, "Failed to delete file record", err)
	}

	return nil
}
