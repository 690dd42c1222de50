package services

import (
	"context"
	"io"

	"mdrive/logger"
	"mdrive/storage"
	"mdrive/telemetry"
)

// blobUpload is the object-store half of a file creation, kept as an explicit
// forward/compensate pair: Forward puts the blob, Compensate removes it again
// when the metadata transaction that should have claimed it fails.
type blobUpload struct {
	store       storage.BlobStore
	content     io.Reader
	size        int64
	mimeType    string
	result      storage.PutResult
	uploaded    bool
	compensated bool
}

func newBlobUpload(store storage.BlobStore, content io.Reader, size int64, mimeType string) *blobUpload {
	return &blobUpload{store: store, content: content, size: size, mimeType: mimeType}
}

func (a *blobUpload) Forward(ctx context.Context) (storage.PutResult, error) {
	result, err := a.store.Upload(ctx, a.content, a.size, a.mimeType)
	if err != nil {
		return storage.PutResult{}, err
	}
	a.result = result
	a.uploaded = true
	return result, nil
}

// Compensate deletes the uploaded blob. It runs at most once and swallows its
// own failure so it can never mask the error that triggered it; a failure
// here means an orphan blob, which is logged and counted.
func (a *blobUpload) Compensate(ctx context.Context) {
	if !a.uploaded || a.compensated {
		return
	}
	a.compensated = true

	if err := a.store.Delete(ctx, a.result.Key, a.result.ResourceType); err != nil {
		telemetry.BlobDeleteFailures.Inc()
		logger.Warnf("compensating blob delete failed, orphan blob %s: %v", a.result.Key, err)
	}
}
