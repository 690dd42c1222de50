package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStoreUploadAndDelete(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "http://localhost:8080/static/")

	result, err := store.Upload(context.Background(), strings.NewReader("hello"), 5, "text/plain")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if result.Key == "" {
		t.Fatalf("expected a key")
	}
	if result.ResourceType != "raw" {
		t.Fatalf("expected resource type raw for text/plain, got %s", result.ResourceType)
	}
	if !strings.HasPrefix(result.URL, "http://localhost:8080/static/") {
		t.Fatalf("unexpected url %s", result.URL)
	}

	data, err := os.ReadFile(filepath.Join(dir, result.Key))
	if err != nil {
		t.Fatalf("read stored blob: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected blob content hello, got %q", data)
	}

	if err := store.Delete(context.Background(), result.Key, result.ResourceType); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, result.Key)); !os.IsNotExist(err) {
		t.Fatalf("expected blob to be gone, stat err: %v", err)
	}
}

func TestLocalStoreDeleteMissingKey(t *testing.T) {
	store := NewLocalStore(t.TempDir(), "http://localhost")

	if err := store.Delete(context.Background(), "files/2026/01/missing", "raw"); err != nil {
		t.Fatalf("deleting a missing blob must be a no-op, got %v", err)
	}
}

func TestResourceTypeFor(t *testing.T) {
	cases := map[string]string{
		"image/png":                "image",
		"image/jpeg":               "image",
		"video/mp4":                "video",
		"application/pdf":          "raw",
		"text/plain":               "raw",
		"application/octet-stream": "raw",
		"":                         "raw",
	}
	for mimeType, want := range cases {
		if got := resourceTypeFor(mimeType); got != want {
			t.Errorf("resourceTypeFor(%q) = %q, want %q", mimeType, got, want)
		}
	}
}
