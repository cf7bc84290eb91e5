package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/retweets/internal/domain"
	"github.com/timmy/retweets/internal/textproc"
	"github.com/timmy/retweets/internal/tokenizer"
)

func newPredictionService(t *testing.T, vocab *tokenizer.Vocabulary, p *scorePredictor) *PredictionService {
	t.Helper()
	svc, err := NewPredictionService(textproc.NewNormalizer(), vocab, p, &PredictionConfig{
		PadSide:   tokenizer.PadAfter,
		MaxLength: 10,
	})
	require.NoError(t, err)
	return svc
}

func TestPredictionService_Predict(t *testing.T) {
	vocab := tokenizer.Fit([]string{"great rally crowd"}, tokenizer.DefaultOOVToken)
	p := &scorePredictor{offset: 0.5}
	svc := newPredictionService(t, vocab, p)

	// "The GREAT rallies!" normalizes to "great rally": two tokens, 2.5 rounds to 2.
	got, err := svc.Predict(context.Background(), "The GREAT rallies! https://t.co/x")
	require.NoError(t, err)
	assert.Equal(t, int64(2), got)

	require.Len(t, p.calls, 1)
	require.Len(t, p.calls[0], 1)
	assert.Len(t, p.calls[0][0], 10)
	assert.Equal(t, []int{2, 3, 0, 0, 0, 0, 0, 0, 0, 0}, p.calls[0][0])
}

func TestPredictionService_EmptyTextStillPredicts(t *testing.T) {
	vocab := tokenizer.Fit([]string{"a"}, tokenizer.DefaultOOVToken)
	svc := newPredictionService(t, vocab, &scorePredictor{offset: 3.5})

	got, err := svc.Predict(context.Background(), "!!! www.example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(4), got)
}

func TestPredictionService_NegativeScoreIsZero(t *testing.T) {
	vocab := tokenizer.Fit([]string{"sad"}, tokenizer.DefaultOOVToken)
	svc := newPredictionService(t, vocab, &scorePredictor{offset: -5})

	got, err := svc.PredictBatch(context.Background(), []string{"Sad!", "sad sad"})
	require.NoError(t, err)
	assert.Equal(t, []int64{0, 0}, got)
}

func TestPredictionService_Degraded(t *testing.T) {
	ctx := context.Background()

	_, err := newPredictionService(t, nil, &scorePredictor{}).Predict(ctx, "hello")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	vocab := tokenizer.Fit([]string{"hello"}, tokenizer.DefaultOOVToken)
	failing := &scorePredictor{err: domain.ErrNotFound}
	_, err = newPredictionService(t, vocab, failing).Predict(ctx, "hello")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestNewPredictionService_Invalid(t *testing.T) {
	_, err := NewPredictionService(textproc.NewNormalizer(), nil, nil, &PredictionConfig{PadSide: tokenizer.PadAfter})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewPredictionService(textproc.NewNormalizer(), nil, nil, &PredictionConfig{PadSide: "middle", MaxLength: 3})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

type fixedPredictor struct {
	value int64
	err   error
}

func (p fixedPredictor) Predict(context.Context, string) (int64, error) {
	return p.value, p.err
}

func TestSubmissionService_Submit(t *testing.T) {
	store := &memTweets{}
	svc := NewSubmissionService(fixedPredictor{value: 42}, store)
	svc.now = func() time.Time { return time.Date(2021, 5, 1, 0, 0, 0, 0, time.UTC) }

	got, err := svc.Submit(context.Background(), "Make America great")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Retweets)
	assert.NotEmpty(t, got.TweetID)

	require.Len(t, store.tweets, 1)
	stored := store.tweets[0]
	assert.Equal(t, got.TweetID, stored.ID)
	assert.Equal(t, "Make America great", stored.Content)
	assert.Equal(t, int64(42), stored.Retweets)
	assert.Equal(t, 2021, stored.Date.Year())
}

func TestSubmissionService_Errors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		svc     *SubmissionService
		content string
		want    error
	}{
		{name: "blank", svc: NewSubmissionService(fixedPredictor{}, nil), content: "  ", want: domain.ErrInvalidInput},
		{name: "too long", svc: NewSubmissionService(fixedPredictor{}, nil), content: strings.Repeat("a", 281), want: domain.ErrInvalidInput},
		{name: "model missing", svc: NewSubmissionService(fixedPredictor{err: domain.ErrNotFound}, nil), content: "hi", want: domain.ErrNotFound},
		{name: "store down", svc: NewSubmissionService(fixedPredictor{}, &memTweets{err: domain.ErrExternalService}), content: "hi", want: domain.ErrExternalService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.Submit(ctx, tt.content)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestSubmissionService_NegativePredictionStored(t *testing.T) {
	repo := newSQLiteTweets(t)
	ctx := context.Background()

	got, err := NewSubmissionService(fixedPredictor{value: -3}, repo).Submit(ctx, "Sad!")
	require.NoError(t, err)
	assert.Equal(t, int64(-3), got.Retweets)

	stored, err := repo.GetByID(ctx, got.TweetID)
	require.NoError(t, err)
	assert.Equal(t, "Sad!", stored.Content)
	assert.Equal(t, int64(-3), stored.Retweets)
}

func TestSubmissionService_StoreRejectionIsNotUserError(t *testing.T) {
	store := &memTweets{err: fmt.Errorf("duplicate tweet id x: %w", domain.ErrInvalidInput)}
	_, err := NewSubmissionService(fixedPredictor{value: 1}, store).Submit(context.Background(), "hi")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestSubmissionService_NoStore(t *testing.T) {
	got, err := NewSubmissionService(fixedPredictor{value: 7}, nil).Submit(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Retweets)
	assert.Empty(t, got.TweetID)
}
