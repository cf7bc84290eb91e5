package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/timmy/retweets/internal/domain"
	"github.com/timmy/retweets/internal/logger"
)

// Predictor predicts the retweet count of one raw tweet.
type Predictor interface {
	Predict(ctx context.Context, text string) (int64, error)
}

// TweetStore persists a single tweet.
type TweetStore interface {
	Create(ctx context.Context, tweet *domain.Tweet) error
}

// SubmissionService handles tweets typed into the web form: it predicts
// their retweets and records the tweet with the prediction.
type SubmissionService struct {
	predictor Predictor
	store     TweetStore
	now       func() time.Time
}

// NewSubmissionService creates a submission service. A nil store skips persistence.
func NewSubmissionService(predictor Predictor, store TweetStore) *SubmissionService {
	return &SubmissionService{
		predictor: predictor,
		store:     store,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit predicts retweets for content and stores the result.
// Parameters:
//   - ctx: request context.
//   - content: tweet text; must be non-blank and at most 280 characters.
// Returns:
//   - *domain.Prediction: the stored tweet ID and predicted count.
//   - error: ErrInvalidInput for unusable content, otherwise the
//     prediction or storage failure.
func (s *SubmissionService) Submit(ctx context.Context, content string) (*domain.Prediction, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("tweet content is empty: %w", domain.ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(content); n > domain.MaxContentLength {
		return nil, fmt.Errorf("tweet content has %d characters, limit %d: %w", n, domain.MaxContentLength, domain.ErrInvalidInput)
	}

	retweets, err := s.predictor.Predict(ctx, content)
	if err != nil {
		return nil, err
	}

	result := &domain.Prediction{Content: content, Retweets: retweets}
	if s.store == nil {
		return result, nil
	}

	tweet := &domain.Tweet{
		ID:       uuid.NewString(),
		Date:     s.now(),
		Content:  content,
		Retweets: retweets,
	}
	if err := s.store.Create(ctx, tweet); err != nil {
		logger.CtxWarn(ctx, "Unable to add tweet to database: %v", err)
		// Content was validated above, so a rejected record is a server fault.
		if errors.Is(err, domain.ErrInvalidInput) {
			return nil, fmt.Errorf("failed to store tweet: %v", err)
		}
		return nil, fmt.Errorf("failed to store tweet: %w", err)
	}
	result.TweetID = tweet.ID

	logger.With(logger.Fields{"tweet_id": tweet.ID, logger.FieldScore: retweets}).Info(ctx, "Tweet stored")
	return result, nil
}
