package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/timmy/retweets/internal/config"
	"github.com/timmy/retweets/internal/dataset"
	"github.com/timmy/retweets/internal/domain"
	"github.com/timmy/retweets/internal/repository"
)

type memFiles struct {
	mu    sync.Mutex
	files map[string][]byte
}

func newMemFiles() *memFiles {
	return &memFiles{files: map[string][]byte{}}
}

func (m *memFiles) Open(_ context.Context, path string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memFiles) WriteFile(_ context.Context, path string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = append([]byte(nil), data...)
	return nil
}

type staticSource struct {
	frame *dataset.Frame
	err   error
}

func (s staticSource) ID() string { return "static" }

func (s staticSource) Fetch(context.Context) (*dataset.Frame, error) {
	return s.frame, s.err
}

// scorePredictor returns the sum of the non-padding entries of each row
// plus offset, or err when set.
type scorePredictor struct {
	offset float64
	err    error
	calls  [][][]int
}

func (p *scorePredictor) Predict(_ context.Context, sequences [][]int) ([]float64, error) {
	p.calls = append(p.calls, sequences)
	if p.err != nil {
		return nil, p.err
	}
	out := make([]float64, len(sequences))
	for i, seq := range sequences {
		for _, v := range seq {
			if v != 0 {
				out[i]++
			}
		}
		out[i] += p.offset
	}
	return out, nil
}

type memTweets struct {
	tweets []domain.Tweet
	err    error
}

func (m *memTweets) Create(_ context.Context, t *domain.Tweet) error {
	if m.err != nil {
		return m.err
	}
	m.tweets = append(m.tweets, *t)
	return nil
}

func (m *memTweets) CreateBatch(_ context.Context, tweets []domain.Tweet) error {
	if m.err != nil {
		return m.err
	}
	m.tweets = append(m.tweets, tweets...)
	return nil
}

func (m *memTweets) Count(context.Context) (int64, error) {
	return int64(len(m.tweets)), m.err
}

func newSQLiteTweets(t *testing.T) *repository.TweetRepository {
	t.Helper()
	db, err := repository.InitDB(context.Background(), &config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "tweets.db"),
		MaxOpenConns: 1,
		AutoMigrate:  true,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close(db) })
	return repository.NewTweetRepository(db)
}
