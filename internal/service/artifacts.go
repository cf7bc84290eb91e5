package service

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/timmy/retweets/internal/dataset"
	"github.com/timmy/retweets/internal/storage"
	"github.com/timmy/retweets/internal/tokenizer"
)

// FileStore reads and writes local or s3:// paths. storage.Files satisfies it.
type FileStore interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	WriteFile(ctx context.Context, path string, data []byte) error
}

// LoadVocabulary reads a vocabulary from a local or s3:// path.
// Missing artifacts yield ErrNotFound and undecodable ones ErrCorrupt.
func LoadVocabulary(ctx context.Context, files FileStore, path string) (*tokenizer.Vocabulary, error) {
	if !storage.IsS3Path(path) {
		return tokenizer.Load(path)
	}

	body, err := files.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("vocabulary %s: %w", path, err)
	}
	defer body.Close()

	vocab, err := tokenizer.Read(body)
	if err != nil {
		return nil, fmt.Errorf("vocabulary %s: %w", path, err)
	}
	return vocab, nil
}

// SaveVocabulary writes vocab to a local or s3:// path. Local files are
// replaced atomically so a running server never reads a partial file.
func SaveVocabulary(ctx context.Context, files FileStore, path string, vocab *tokenizer.Vocabulary) error {
	if !storage.IsS3Path(path) {
		return vocab.Save(path)
	}

	var buf bytes.Buffer
	if err := vocab.Write(&buf); err != nil {
		return fmt.Errorf("failed to encode vocabulary: %w", err)
	}
	return files.WriteFile(ctx, path, buf.Bytes())
}

func readFrame(ctx context.Context, files FileStore, path string) (*dataset.Frame, error) {
	body, err := files.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	f, err := dataset.ReadCSV(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return f, nil
}

func writeFrame(ctx context.Context, files FileStore, path string, f *dataset.Frame) error {
	var buf bytes.Buffer
	if err := f.WriteCSV(&buf); err != nil {
		return err
	}
	if err := files.WriteFile(ctx, path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
