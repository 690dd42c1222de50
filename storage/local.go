package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStore keeps blobs on disk under basePath. Meant for development and
// single-node deployments; the key is the path relative to basePath.
type LocalStore struct {
	basePath string
	baseURL  string
}

func NewLocalStore(basePath string, baseURL string) *LocalStore {
	return &LocalStore{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *LocalStore) Upload(_ context.Context, content io.Reader, _ int64, mimeType string) (PutResult, error) {
	resourceType := resourceTypeFor(mimeType)
	relDir := filepath.Join("files", time.Now().Format("2006"), time.Now().Format("01"))
	if err := os.MkdirAll(filepath.Join(s.basePath, relDir), 0o755); err != nil {
		return PutResult{}, fmt.Errorf("create storage dir: %w", err)
	}

	key := filepath.Join(relDir, uuid.New().String())
	dst, err := os.Create(filepath.Join(s.basePath, key))
	if err != nil {
		return PutResult{}, fmt.Errorf("create blob file: %w", err)
	}
	if _, err := io.Copy(dst, content); err != nil {
		dst.Close()
		_ = os.Remove(filepath.Join(s.basePath, key))
		return PutResult{}, fmt.Errorf("write blob file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return PutResult{}, fmt.Errorf("close blob file: %w", err)
	}

	return PutResult{
		URL:          s.baseURL + "/" + filepath.ToSlash(key),
		Key:          key,
		ResourceType: resourceType,
	}, nil
}

func (s *LocalStore) Delete(_ context.Context, key string, _ string) error {
	if err := os.Remove(filepath.Join(s.basePath, key)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove blob file: %w", err)
	}
	return nil
}
