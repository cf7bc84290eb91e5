package repository

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/retweets/internal/config"
	"github.com/timmy/retweets/internal/domain"
)

func newTestRepo(t *testing.T) *TweetRepository {
	t.Helper()
	db, err := InitDB(context.Background(), &config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         filepath.Join(t.TempDir(), "db", "tweets.db"),
		MaxOpenConns: 1,
		AutoMigrate:  true,
		LogLevel:     "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })
	return NewTweetRepository(db)
}

func tweet(id string, day int, retweets int64) domain.Tweet {
	return domain.Tweet{
		ID:       id,
		Date:     time.Date(2020, 1, day, 12, 0, 0, 0, time.UTC),
		Content:  "tweet " + id,
		Retweets: retweets,
	}
}

func TestTweetRepository_CreateAndGet(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tw := tweet("1", 1, 10)
	require.NoError(t, repo.Create(ctx, &tw))

	got, err := repo.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "tweet 1", got.Content)
	assert.Equal(t, int64(10), got.Retweets)
	assert.True(t, tw.Date.Equal(got.Date))

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTweetRepository_DuplicateID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	first := tweet("dup", 1, 1)
	require.NoError(t, repo.Create(ctx, &first))

	second := tweet("dup", 2, 2)
	assert.ErrorIs(t, repo.Create(ctx, &second), domain.ErrInvalidInput)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestTweetRepository_Validation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	long := tweet("long", 1, 1)
	long.Content = strings.Repeat("x", domain.MaxContentLength+1)
	assert.ErrorIs(t, repo.Create(ctx, &long), domain.ErrInvalidInput)

	noID := tweet("", 1, 1)
	assert.ErrorIs(t, repo.Create(ctx, &noID), domain.ErrInvalidInput)

	exact := tweet("exact", 1, 1)
	exact.Content = strings.Repeat("é", domain.MaxContentLength)
	assert.NoError(t, repo.Create(ctx, &exact))
}

func TestTweetRepository_CreateBatchAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateBatch(ctx, []domain.Tweet{tweet("a", 1, 1), tweet("b", 3, 2), tweet("c", 2, 3)}))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	recent, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "b", recent[0].ID)
	assert.Equal(t, "c", recent[1].ID)
}

func TestTweetRepository_CreateBatchIsAtomic(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	long := tweet("y", 2, 1)
	long.Content = strings.Repeat("x", domain.MaxContentLength+1)
	err := repo.CreateBatch(ctx, []domain.Tweet{tweet("x", 1, 1), long})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTweetRepository_CreateBatchSkipsStoredIDs(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateBatch(ctx, []domain.Tweet{tweet("a", 1, 1), tweet("b", 2, 2)}))

	again := tweet("a", 5, 99)
	require.NoError(t, repo.CreateBatch(ctx, []domain.Tweet{again, tweet("c", 3, 3)}))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	kept, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), kept.Retweets)
}

func TestTweetRepository_NegativeRetweetsStored(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	tw := tweet("neg", 1, -3)
	require.NoError(t, repo.Create(ctx, &tw))

	got, err := repo.GetByID(ctx, "neg")
	require.NoError(t, err)
	assert.Equal(t, int64(-3), got.Retweets)
}

func TestInitDB_UnknownDriver(t *testing.T) {
	_, err := InitDB(context.Background(), &config.DatabaseConfig{Driver: "oracle"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
