package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("storage: object not found")

// FileStorage keeps archived case documents.
type FileStorage interface {
	// Upload writes file at path, replacing any previous content, and returns the stored key.
	Upload(ctx context.Context, file io.Reader, path string, contentType string) (string, error)

	// Download opens a stored object; ErrNotFound when it is missing.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether path holds an object.
	Exists(ctx context.Context, path string) (bool, error)
}
