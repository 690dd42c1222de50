package services

import (
	"mdrive/repositories"
	"mdrive/storage"
)

type Container struct {
	Auth   AuthService
	User   UserService
	Folder FolderService
	File   FileService
	Search SearchService
}

func NewContainer(repos repositories.Container, blobs storage.BlobStore) *Container {
	return &Container{
		Auth:   NewAuthService(repos.TxManager, repos.Users, repos.Folders, repos.TokenBlacklist),
		User:   NewUserService(repos.TxManager, repos.Users, repos.Folders, repos.Files, blobs),
		Folder: NewFolderService(repos.TxManager, repos.Users, repos.Folders, repos.Files, blobs),
		File:   NewFileService(repos.TxManager, repos.Users, repos.Folders, repos.Files, blobs),
		Search: NewSearchService(repos.Folders, repos.Files),
	}
}
