package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"mdrive/models"
	"mdrive/storage"

	"gorm.io/gorm"
)

var errDown = errors.New("object store unavailable")

type fakeTxManager struct {
	err   error
	calls int
}

func (m *fakeTxManager) WithTransaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	m.calls++
	if m.err != nil {
		return m.err
	}
	return fn(nil)
}

type fakeUserRepo struct {
	users     map[uint]models.User
	nextID    uint
	getErr    error
	createErr error
	updateErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uint]models.User{}, nextID: 1}
}

func (r *fakeUserRepo) addUser(user models.User) models.User {
	if user.ID == 0 {
		user.ID = r.nextID
		r.nextID++
	}
	r.users[user.ID] = user
	return user
}

func (r *fakeUserRepo) CountByUsername(_ context.Context, username string) (int64, error) {
	var count int64
	for _, user := range r.users {
		if user.Username == username {
			count++
		}
	}
	return count, nil
}

func (r *fakeUserRepo) CountByEmail(_ context.Context, email string) (int64, error) {
	var count int64
	for _, user := range r.users {
		if user.Email == email {
			count++
		}
	}
	return count, nil
}

func (r *fakeUserRepo) Create(_ context.Context, _ *gorm.DB, user *models.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	*user = r.addUser(*user)
	return nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, _ *gorm.DB, username string) (models.User, error) {
	if r.getErr != nil {
		return models.User{}, r.getErr
	}
	for _, user := range r.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByID(_ context.Context, _ *gorm.DB, userID uint) (models.User, error) {
	if r.getErr != nil {
		return models.User{}, r.getErr
	}
	user, ok := r.users[userID]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) UpdateByID(_ context.Context, _ *gorm.DB, userID uint, updates map[string]interface{}) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	user, ok := r.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["username"].(string); ok {
		user.Username = name
	}
	r.users[userID] = user
	return nil
}

func (r *fakeUserRepo) DeleteByID(_ context.Context, _ *gorm.DB, userID uint) error {
	delete(r.users, userID)
	return nil
}

func (r *fakeUserRepo) AddStorageUsed(_ context.Context, _ *gorm.DB, userID uint, delta int64) error {
	user := r.users[userID]
	user.StorageUsed += delta
	r.users[userID] = user
	return nil
}

func (r *fakeUserRepo) SubStorageUsed(_ context.Context, _ *gorm.DB, userID uint, delta int64) error {
	user := r.users[userID]
	user.StorageUsed -= delta
	if user.StorageUsed < 0 {
		user.StorageUsed = 0
	}
	r.users[userID] = user
	return nil
}

type fakeFolderRepo struct {
	folders   map[uint]models.Folder
	nextID    uint
	createErr error
	updateErr error
	listErr   error
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: map[uint]models.Folder{}, nextID: 1}
}

func (r *fakeFolderRepo) addFolder(folder models.Folder) models.Folder {
	if folder.ID == 0 {
		folder.ID = r.nextID
		r.nextID++
	}
	r.folders[folder.ID] = folder
	return folder
}

func (r *fakeFolderRepo) Create(_ context.Context, _ *gorm.DB, folder *models.Folder) error {
	if r.createErr != nil {
		return r.createErr
	}
	*folder = r.addFolder(*folder)
	return nil
}

func (r *fakeFolderRepo) GetByIDAndUser(_ context.Context, _ *gorm.DB, folderID uint, userID uint) (models.Folder, error) {
	folder, ok := r.folders[folderID]
	if !ok || folder.UserID != userID {
		return models.Folder{}, gorm.ErrRecordNotFound
	}
	return folder, nil
}

func (r *fakeFolderRepo) GetRootByUser(_ context.Context, _ *gorm.DB, userID uint) (models.Folder, error) {
	for _, folder := range r.folders {
		if folder.UserID == userID && folder.ParentID == nil {
			return folder, nil
		}
	}
	return models.Folder{}, gorm.ErrRecordNotFound
}

func (r *fakeFolderRepo) ListByParent(_ context.Context, _ *gorm.DB, userID uint, parentID uint) ([]models.Folder, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	out := make([]models.Folder, 0)
	for _, folder := range r.folders {
		if folder.UserID == userID && folder.ParentID != nil && *folder.ParentID == parentID {
			out = append(out, folder)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFolderRepo) ListByParents(ctx context.Context, tx *gorm.DB, userID uint, parentIDs []uint) ([]models.Folder, error) {
	out := make([]models.Folder, 0)
	for _, parentID := range parentIDs {
		children, err := r.ListByParent(ctx, tx, userID, parentID)
		if err != nil {
			return nil, err
		}
		out = append(out, children...)
	}
	return out, nil
}

func (r *fakeFolderRepo) CountByParentAndName(_ context.Context, _ *gorm.DB, userID uint, parentID *uint, name string, excludeID uint) (int64, error) {
	var count int64
	for _, folder := range r.folders {
		if folder.UserID != userID || folder.Name != name || folder.ID == excludeID {
			continue
		}
		switch {
		case parentID == nil && folder.ParentID == nil:
			count++
		case parentID != nil && folder.ParentID != nil && *folder.ParentID == *parentID:
			count++
		}
	}
	return count, nil
}

func (r *fakeFolderRepo) UpdateByIDAndUser(_ context.Context, _ *gorm.DB, folderID uint, userID uint, updates map[string]interface{}) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	folder, ok := r.folders[folderID]
	if !ok || folder.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		folder.Name = name
	}
	if parentID, ok := updates["parent_id"].(uint); ok {
		id := parentID
		folder.ParentID = &id
	}
	r.folders[folderID] = folder
	return nil
}

func (r *fakeFolderRepo) DeleteByIDs(_ context.Context, _ *gorm.DB, userID uint, folderIDs []uint) error {
	for _, id := range folderIDs {
		if folder, ok := r.folders[id]; ok && folder.UserID == userID {
			delete(r.folders, id)
		}
	}
	return nil
}

func (r *fakeFolderRepo) DeleteByUser(_ context.Context, _ *gorm.DB, userID uint) error {
	for id, folder := range r.folders {
		if folder.UserID == userID {
			delete(r.folders, id)
		}
	}
	return nil
}

func (r *fakeFolderRepo) SearchByName(_ context.Context, _ *gorm.DB, userID uint, query string) ([]models.Folder, error) {
	out := make([]models.Folder, 0)
	for _, folder := range r.folders {
		if folder.UserID == userID && strings.Contains(strings.ToLower(folder.Name), strings.ToLower(query)) {
			out = append(out, folder)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeFileRepo struct {
	files     map[uint]models.File
	nextID    uint
	createErr error
	updateErr error
	deleteErr error
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: map[uint]models.File{}, nextID: 1}
}

func (r *fakeFileRepo) addFile(file models.File) models.File {
	if file.ID == 0 {
		file.ID = r.nextID
		r.nextID++
	}
	r.files[file.ID] = file
	return file
}

func (r *fakeFileRepo) Create(_ context.Context, _ *gorm.DB, file *models.File) error {
	if r.createErr != nil {
		return r.createErr
	}
	*file = r.addFile(*file)
	return nil
}

func (r *fakeFileRepo) GetByIDAndUser(_ context.Context, _ *gorm.DB, fileID uint, userID uint) (models.File, error) {
	file, ok := r.files[fileID]
	if !ok || file.UserID != userID {
		return models.File{}, gorm.ErrRecordNotFound
	}
	return file, nil
}

func (r *fakeFileRepo) ListByFolder(_ context.Context, _ *gorm.DB, userID uint, folderID uint) ([]models.File, error) {
	out := make([]models.File, 0)
	for _, file := range r.files {
		if file.UserID == userID && file.FolderID == folderID {
			out = append(out, file)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFileRepo) ListByFolderIDs(ctx context.Context, tx *gorm.DB, userID uint, folderIDs []uint) ([]models.File, error) {
	out := make([]models.File, 0)
	for _, folderID := range folderIDs {
		files, err := r.ListByFolder(ctx, tx, userID, folderID)
		if err != nil {
			return nil, err
		}
		out = append(out, files...)
	}
	return out, nil
}

func (r *fakeFileRepo) ListByUser(_ context.Context, _ *gorm.DB, userID uint) ([]models.File, error) {
	out := make([]models.File, 0)
	for _, file := range r.files {
		if file.UserID == userID {
			out = append(out, file)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFileRepo) CountByFolderAndName(_ context.Context, _ *gorm.DB, userID uint, folderID uint, name string, excludeID uint) (int64, error) {
	var count int64
	for _, file := range r.files {
		if file.UserID == userID && file.FolderID == folderID && file.Name == name && file.ID != excludeID {
			count++
		}
	}
	return count, nil
}

func (r *fakeFileRepo) UpdateByIDAndUser(_ context.Context, _ *gorm.DB, fileID uint, userID uint, updates map[string]interface{}) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	file, ok := r.files[fileID]
	if !ok || file.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	if name, ok := updates["name"].(string); ok {
		file.Name = name
	}
	if folderID, ok := updates["folder_id"].(uint); ok {
		file.FolderID = folderID
	}
	r.files[fileID] = file
	return nil
}

func (r *fakeFileRepo) DeleteByIDAndUser(_ context.Context, _ *gorm.DB, fileID uint, userID uint) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if file, ok := r.files[fileID]; ok && file.UserID == userID {
		delete(r.files, fileID)
	}
	return nil
}

func (r *fakeFileRepo) DeleteByFolderIDs(_ context.Context, _ *gorm.DB, userID uint, folderIDs []uint) error {
	for id, file := range r.files {
		if file.UserID != userID {
			continue
		}
		for _, folderID := range folderIDs {
			if file.FolderID == folderID {
				delete(r.files, id)
				break
			}
		}
	}
	return nil
}

func (r *fakeFileRepo) DeleteByUser(_ context.Context, _ *gorm.DB, userID uint) error {
	for id, file := range r.files {
		if file.UserID == userID {
			delete(r.files, id)
		}
	}
	return nil
}

func (r *fakeFileRepo) SumSizeByFolderIDs(_ context.Context, _ *gorm.DB, userID uint, folderIDs []uint) (int64, error) {
	var sum int64
	for _, file := range r.files {
		if file.UserID != userID {
			continue
		}
		for _, folderID := range folderIDs {
			if file.FolderID == folderID {
				sum += file.Size
				break
			}
		}
	}
	return sum, nil
}

func (r *fakeFileRepo) SearchByName(_ context.Context, _ *gorm.DB, userID uint, query string) ([]models.File, error) {
	out := make([]models.File, 0)
	for _, file := range r.files {
		if file.UserID == userID && strings.Contains(strings.ToLower(file.Name), strings.ToLower(query)) {
			out = append(out, file)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// fakeBlobStore records every upload and delete so tests can assert on the
// exact sequence of object-store calls.
type fakeBlobStore struct {
	uploads   []string
	deletes   []string
	uploadErr error
	deleteErr error
	nextKey   int
}

func (s *fakeBlobStore) Upload(_ context.Context, _ io.Reader, _ int64, _ string) (storage.PutResult, error) {
	if s.uploadErr != nil {
		return storage.PutResult{}, s.uploadErr
	}
	s.nextKey++
	key := fmt.Sprintf("blob-%d", s.nextKey)
	s.uploads = append(s.uploads, key)
	return storage.PutResult{
		Key:          key,
		URL:          "https://blobs.example/" + key,
		ResourceType: "raw",
	}, nil
}

func (s *fakeBlobStore) Delete(_ context.Context, key string, _ string) error {
	s.deletes = append(s.deletes, key)
	if s.deleteErr != nil {
		return s.deleteErr
	}
	return nil
}

type fakeTokenBlacklist struct {
	entries map[string]time.Duration
	addErr  error
}

func newFakeTokenBlacklist() *fakeTokenBlacklist {
	return &fakeTokenBlacklist{entries: map[string]time.Duration{}}
}

func (b *fakeTokenBlacklist) Add(_ context.Context, jti string, ttl time.Duration) error {
	if b.addErr != nil {
		return b.addErr
	}
	b.entries[jti] = ttl
	return nil
}

func (b *fakeTokenBlacklist) Contains(_ context.Context, jti string) (bool, error) {
	_, ok := b.entries[jti]
	return ok, nil
}
