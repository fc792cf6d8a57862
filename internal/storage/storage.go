// Package storage contains object storage abstractions and S3-compatible backends.
// Implementations never touch local disk and rely on streaming I/O only.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"filevault/internal/config"
	"filevault/internal/model"
)

var (
	// ErrObjectNotFound is returned when the backend has no object under the key.
	ErrObjectNotFound = errors.New("object not found")
	// ErrInvalidRange is returned when the backend refuses the requested byte range.
	ErrInvalidRange = errors.New("invalid range")
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
// For a ranged Get, Size is the length of the returned span.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is an S3-compatible object storage client interface.
// Implementations are safe for concurrent use.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Stat returns the object's metadata without transferring its content.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// Get opens a read stream over the whole object, or over rng when it is not nil.
	// The request has been issued by the time Get returns, so a missing key or a
	// refused range is reported here rather than on the first Read.
	Get(ctx context.Context, key string, rng *model.ByteRange) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
}

// New builds the backend selected by cfg.Driver.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Driver {
	case "", "minio":
		return NewMinIO(ctx, cfg.MinIO)
	case "s3":
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
