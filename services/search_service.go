package services

import (
	"context"
	"net/http"
	"strings"

	"mdrive/models"
	"mdrive/repositories"
)

type SearchOutput struct {
	Folders []models.Folder `json:"folders"`
	Files   []models.File   `json:"files"`
}

// SearchService is a thin consumer of the folder/file read paths: substring
// match over names, no ranking, no pagination.
type SearchService interface {
	Search(ctx context.Context, userID uint, query string) (SearchOutput, error)
}

type searchService struct {
	folders repositories.FolderRepository
	files   repositories.FileRepository
}

func NewSearchService(folders repositories.FolderRepository, files repositories.FileRepository) SearchService {
	return &searchService{folders: folders, files: files}
}

func (s *searchService) Search(ctx context.Context, userID uint, query string) (SearchOutput, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return SearchOutput{}, newAppError(http.StatusBadRequest, "Search query is required", nil)
	}

	folders, err := s.folders.SearchByName(ctx, nil, userID, query)
	if err != nil {
		return SearchOutput{}, newAppError(http.StatusInternalServerError, "Failed to search folders", err)
	}
	files, err := s.files.SearchByName(ctx, nil, userID, query)
	if err != nil {
		return SearchOutput{}, newAppError(http.StatusInternalServerError, "Failed to search files", err)
	}

	return SearchOutput{Folders: folders, Files: files}, nil
}
