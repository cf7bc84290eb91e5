package storage

import (
	"context"
	"io"
)

// ObjectStorage is the subset of an S3-compatible store the system uses.
type ObjectStorage interface {
	// Upload stores size bytes from reader under bucket/key.
	Upload(ctx context.Context, bucket, key string, reader io.Reader, size int64) error

	// Download opens bucket/key for reading. A missing object yields ErrNotFound.
	Download(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}
