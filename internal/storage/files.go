package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/timmy/retweets/internal/domain"
	"github.com/timmy/retweets/internal/logger"
)

// Files moves artifacts between local paths and s3:// paths. Paths without
// the s3:// scheme are local files.
type Files struct {
	store ObjectStorage
}

// NewFiles wraps store. A nil store restricts Files to local paths.
func NewFiles(store ObjectStorage) *Files {
	return &Files{store: store}
}

func (f *Files) remote(path string) (string, string, error) {
	bucket, key, err := ParseS3Path(path)
	if err != nil {
		return "", "", err
	}
	if f.store == nil {
		return "", "", fmt.Errorf("no object storage configured for %s: %w", path, domain.ErrInvalidInput)
	}
	return bucket, key, nil
}

// UploadFile copies the local file at localPath to s3Path.
func (f *Files) UploadFile(ctx context.Context, localPath, s3Path string) error {
	bucket, key, err := f.remote(s3Path)
	if err != nil {
		return err
	}

	file, err := os.Open(localPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("local file %s: %w", localPath, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", localPath, err)
	}

	start := time.Now()
	if err := f.store.Upload(ctx, bucket, key, file, info.Size()); err != nil {
		logFailure(ctx, s3Path, err)
		return err
	}
	logger.Since(start).With(logger.Fields{logger.FieldPath: s3Path, logger.FieldSize: info.Size()}).
		Info(ctx, "Uploaded %s", localPath)
	return nil
}

// DownloadFile copies s3Path to localPath, creating parent directories.
func (f *Files) DownloadFile(ctx context.Context, localPath, s3Path string) error {
	start := time.Now()
	body, err := f.Open(ctx, s3Path)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", localPath, err)
	}
	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", localPath, err)
	}
	n, err := io.Copy(out, body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", localPath, err)
	}

	logger.Since(start).With(logger.Fields{logger.FieldPath: s3Path, logger.FieldSize: n}).
		Info(ctx, "Downloaded to %s", localPath)
	return nil
}

// Open opens a local or s3:// path for reading. Missing files and objects
// yield ErrNotFound.
func (f *Files) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	if !IsS3Path(path) {
		file, err := os.Open(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("file %s: %w", path, domain.ErrNotFound)
			}
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		return file, nil
	}

	bucket, key, err := f.remote(path)
	if err != nil {
		return nil, err
	}
	body, err := f.store.Download(ctx, bucket, key)
	if err != nil {
		logFailure(ctx, path, err)
		return nil, err
	}
	return body, nil
}

// WriteFile writes data to a local or s3:// path.
func (f *Files) WriteFile(ctx context.Context, path string, data []byte) error {
	if !IsS3Path(path) {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", path, err)
		}
		return os.WriteFile(path, data, 0644)
	}

	bucket, key, err := f.remote(path)
	if err != nil {
		return err
	}
	if err := f.store.Upload(ctx, bucket, key, bytes.NewReader(data), int64(len(data))); err != nil {
		logFailure(ctx, path, err)
		return err
	}
	return nil
}

func logFailure(ctx context.Context, path string, err error) {
	log := logger.FromContext(ctx).WithField(logger.FieldPath, path).WithError(err)
	if errors.Is(err, domain.ErrMissingCredentials) {
		log.Error("Storage credentials missing; set AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY")
		return
	}
	log.Warn("Storage request failed")
}
