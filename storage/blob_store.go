package storage

import (
	"context"
	"io"
	"strings"
)

// PutResult locates a stored blob. Key and ResourceType together are what
// Delete needs to remove it again; URL is what clients download from.
type PutResult struct {
	URL          string
	Key          string
	ResourceType string
}

// BlobStore is the object-store boundary. It is not transactional with the
// database: callers reconcile the two sides explicitly.
type BlobStore interface {
	Upload(ctx context.Context, content io.Reader, size int64, mimeType string) (PutResult, error)
	Delete(ctx context.Context, key string, resourceType string) error
}

func resourceTypeFor(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	default:
		return "raw"
	}
}
