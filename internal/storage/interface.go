package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo represents metadata about a stored upload.
type FileInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Storage is where uploaded media lives. The core only requires that the
// currently assigned content's file stays retrievable; everything else
// (retention, backends) is deployment policy.
type Storage interface {
	// Write stores content from the reader under the given key.
	// The size parameter is the expected content size (-1 if unknown).
	Write(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Read retrieves content for the given key.
	// The caller is responsible for closing the returned ReadCloser.
	Read(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the content with the given key.
	Delete(ctx context.Context, key string) error

	// List returns metadata for every stored upload.
	List(ctx context.Context) ([]FileInfo, error)

	// URL returns the URL displays use to fetch the content.
	URL(ctx context.Context, key string) (string, error)
}
