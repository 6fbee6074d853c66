// Package storage abstracts the file store behind report artifacts,
// blueprints, task attachments and application binaries. Two backends
// exist: MinIO for deployments and the local filesystem for single-host
// installs and tests.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned when no object exists under the given key.
var ErrNotFound = errors.New("object not found")

// Storage stores and retrieves objects by slash-separated keys.
type Storage interface {
	// Put writes the object under key, replacing any existing one.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Get opens the object for reading. The caller closes the reader.
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// Stat returns the object size.
	Stat(ctx context.Context, key string) (int64, error)
	// Delete removes the object. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns the keys under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
