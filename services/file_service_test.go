package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"mdrive/models"

	"gorm.io/gorm"
)

type fileTestEnv struct {
	users   *fakeUserRepo
	folders *fakeFolderRepo
	files   *fakeFileRepo
	blobs   *fakeBlobStore
	svc     FileService
	userID  uint
	rootID  uint
}

func newFileTestEnv(t *testing.T) *fileTestEnv {
	t.Helper()
	users := newFakeUserRepo()
	folders := newFakeFolderRepo()
	files := newFakeFileRepo()
	blobs := &fakeBlobStore{}

	user := users.addUser(models.User{Username: "alice", StorageQuota: 10000000})
	root := folders.addFolder(models.Folder{Name: "root", UserID: user.ID})

	svc := NewFileService(&fakeTxManager{}, users, folders, files, blobs)
	return &fileTestEnv{
		users:   users,
		folders: folders,
		files:   files,
		blobs:   blobs,
		svc:     svc,
		userID:  user.ID,
		rootID:  root.ID,
	}
}

func (e *fileTestEnv) upload(name string, size int64) (models.File, error) {
	return e.svc.Upload(context.Background(), e.userID, UploadFileInput{
		Name:         name,
		OriginalName: name,
		MimeType:     "text/plain",
		Size:         size,
		Content:      strings.NewReader("content"),
	})
}

func TestUploadFileIncrementsStorage(t *testing.T) {
	env := newFileTestEnv(t)

	file, err := env.upload("a.txt", 1234)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if file.ID == 0 {
		t.Fatalf("expected file id to be assigned")
	}
	if file.FolderID != env.rootID {
		t.Fatalf("expected file in root folder %d, got %d", env.rootID, file.FolderID)
	}
	if file.ObjectKey == "" || file.URL == "" {
		t.Fatalf("expected blob key and url to be recorded")
	}
	if used := env.users.users[env.userID].StorageUsed; used != 1234 {
		t.Fatalf("expected storage used 1234, got %d", used)
	}
}

func TestUploadNoContent(t *testing.T) {
	env := newFileTestEnv(t)

	_, err := env.svc.Upload(context.Background(), env.userID, UploadFileInput{
		Name: "a.txt",
		Size: 10,
	})
	appErr := assertAppError(t, err, http.StatusBadRequest)
	if appErr.Message != "No file uploaded" {
		t.Fatalf("unexpected message: %s", appErr.Message)
	}
}

func TestUploadNameDefaultsToOriginal(t *testing.T) {
	env := newFileTestEnv(t)

	file, err := env.svc.Upload(context.Background(), env.userID, UploadFileInput{
		OriginalName: "report.pdf",
		Size:         10,
		Content:      strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if file.Name != "report.pdf" {
		t.Fatalf("expected name report.pdf, got %s", file.Name)
	}
}

func TestUploadQuotaExceeded(t *testing.T) {
	env := newFileTestEnv(t)

	if _, err := env.upload("a.bin", 5000000); err != nil {
		t.Fatalf("first upload: %v", err)
	}

	_, err := env.upload("b.bin", 5000000)
	appErr := assertAppError(t, err, http.StatusBadRequest)
	if appErr.Message != "Not enough storage" {
		t.Fatalf("unexpected message: %s", appErr.Message)
	}
	if appErr.Data == nil {
		t.Fatalf("expected quota details in error data")
	}
	if used := env.users.users[env.userID].StorageUsed; used != 5000000 {
		t.Fatalf("expected storage used unchanged at 5000000, got %d", used)
	}
	if len(env.blobs.uploads) != 1 {
		t.Fatalf("rejected upload must not reach the object store, got %v", env.blobs.uploads)
	}
}

func TestUploadDuplicateNamePrecheck(t *testing.T) {
	env := newFileTestEnv(t)
	env.files.addFile(models.File{Name: "a.txt", FolderID: env.rootID, UserID: env.userID, Size: 10})

	_, err := env.upload("a.txt", 10)
	assertAppError(t, err, http.StatusConflict)
	if len(env.blobs.uploads) != 0 {
		t.Fatalf("duplicate upload must not reach the object store")
	}
}

func TestUploadInvalidFolder(t *testing.T) {
	env := newFileTestEnv(t)

	missing := uint(9999)
	_, err := env.svc.Upload(context.Background(), env.userID, UploadFileInput{
		FolderID: &missing,
		Name:     "a.txt",
		Size:     10,
		Content:  strings.NewReader("x"),
	})
	assertAppError(t, err, http.StatusBadRequest)
}

func TestUploadMetadataFailureCompensatesBlob(t *testing.T) {
	env := newFileTestEnv(t)
	env.files.createErr = errors.New("insert failed")

	_, err := env.upload("a.txt", 10)
	assertAppError(t, err, http.StatusInternalServerError)

	if len(env.blobs.uploads) != 1 {
		t.Fatalf("expected exactly one blob upload, got %v", env.blobs.uploads)
	}
	if len(env.blobs.deletes) != 1 || env.blobs.deletes[0] != env.blobs.uploads[0] {
		t.Fatalf("expected one compensating delete of %s, got %v", env.blobs.uploads[0], env.blobs.deletes)
	}
	if len(env.files.files) != 0 {
		t.Fatalf("expected no file record")
	}
	if used := env.users.users[env.userID].StorageUsed; used != 0 {
		t.Fatalf("expected storage used unchanged, got %d", used)
	}
}

func TestUploadDuplicateKeyDuringCommit(t *testing.T) {
	env := newFileTestEnv(t)
	env.files.createErr = gorm.ErrDuplicatedKey

	_, err := env.upload("a.txt", 10)
	assertAppError(t, err, http.StatusConflict)
	if len(env.blobs.deletes) != 1 {
		t.Fatalf("expected compensating delete, got %v", env.blobs.deletes)
	}
}

func TestUploadBlobFailure(t *testing.T) {
	env := newFileTestEnv(t)
	env.blobs.uploadErr = errDown

	_, err := env.upload("a.txt", 10)
	assertAppError(t, err, http.StatusInternalServerError)
	if len(env.blobs.deletes) != 0 {
		t.Fatalf("nothing to compensate when the upload itself failed")
	}
	if used := env.users.users[env.userID].StorageUsed; used != 0 {
		t.Fatalf("expected storage used unchanged, got %d", used)
	}
}

func TestDeleteFileReleasesStorage(t *testing.T) {
	env := newFileTestEnv(t)
	file, err := env.upload("a.txt", 500)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := env.svc.DeleteFile(context.Background(), env.userID, file.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := env.files.files[file.ID]; ok {
		t.Fatalf("expected file record to be removed")
	}
	if used := env.users.users[env.userID].StorageUsed; used != 0 {
		t.Fatalf("expected storage used 0, got %d", used)
	}
	if len(env.blobs.deletes) != 1 {
		t.Fatalf("expected one blob delete, got %v", env.blobs.deletes)
	}
}

func TestDeleteFileBlobFailureKeepsRecord(t *testing.T) {
	env := newFileTestEnv(t)
	file, err := env.upload("a.txt", 500)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	env.blobs.deleteErr = errDown

	err = env.svc.DeleteFile(context.Background(), env.userID, file.ID)
	assertAppError(t, err, http.StatusInternalServerError)

	if _, ok := env.files.files[file.ID]; !ok {
		t.Fatalf("file record must survive a failed blob delete")
	}
	if used := env.users.users[env.userID].StorageUsed; used != 500 {
		t.Fatalf("expected storage used unchanged at 500, got %d", used)
	}
}

func TestDeleteFileNotFound(t *testing.T) {
	env := newFileTestEnv(t)

	err := env.svc.DeleteFile(context.Background(), env.userID, 9999)
	assertAppError(t, err, http.StatusNotFound)
}

func TestRenameFileDuplicate(t *testing.T) {
	env := newFileTestEnv(t)
	env.files.addFile(models.File{Name: "a.txt", FolderID: env.rootID, UserID: env.userID})
	target := env.files.addFile(models.File{Name: "b.txt", FolderID: env.rootID, UserID: env.userID})

	_, err := env.svc.RenameFile(context.Background(), env.userID, target.ID, "a.txt")
	assertAppError(t, err, http.StatusConflict)
}

func TestRenameFile(t *testing.T) {
	env := newFileTestEnv(t)
	target := env.files.addFile(models.File{Name: "a.txt", FolderID: env.rootID, UserID: env.userID})

	file, err := env.svc.RenameFile(context.Background(), env.userID, target.ID, "renamed.txt")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if file.Name != "renamed.txt" {
		t.Fatalf("expected renamed.txt, got %s", file.Name)
	}
	if env.files.files[target.ID].Name != "renamed.txt" {
		t.Fatalf("rename not persisted")
	}
}

func TestMoveFileAlreadyPresent(t *testing.T) {
	env := newFileTestEnv(t)
	file := env.files.addFile(models.File{Name: "a.txt", FolderID: env.rootID, UserID: env.userID})

	out, err := env.svc.MoveFile(context.Background(), env.userID, file.ID, &env.rootID)
	if err != nil {
		t.Fatalf("move to same folder: %v", err)
	}
	if !out.AlreadyPresent {
		t.Fatalf("expected already-present result")
	}
}

func TestMoveFileDestinationDuplicate(t *testing.T) {
	env := newFileTestEnv(t)
	dest := env.folders.addFolder(models.Folder{Name: "docs", ParentID: &env.rootID, UserID: env.userID})
	env.files.addFile(models.File{Name: "a.txt", FolderID: dest.ID, UserID: env.userID})
	file := env.files.addFile(models.File{Name: "a.txt", FolderID: env.rootID, UserID: env.userID})

	_, err := env.svc.MoveFile(context.Background(), env.userID, file.ID, &dest.ID)
	assertAppError(t, err, http.StatusConflict)
}

func TestMoveFileUpdatesFolder(t *testing.T) {
	env := newFileTestEnv(t)
	dest := env.folders.addFolder(models.Folder{Name: "docs", ParentID: &env.rootID, UserID: env.userID})
	file := env.files.addFile(models.File{Name: "a.txt", FolderID: env.rootID, UserID: env.userID})

	out, err := env.svc.MoveFile(context.Background(), env.userID, file.ID, &dest.ID)
	if err != nil {
		t.Fatalf("move: %v", err)
	}
	if out.File.FolderID != dest.ID {
		t.Fatalf("expected folder %d, got %d", dest.ID, out.File.FolderID)
	}
	if env.files.files[file.ID].FolderID != dest.ID {
		t.Fatalf("move not persisted")
	}
}
