package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/timmy/retweets/internal/domain"
)

const batchSize = 500

// TweetRepository stores tweet records. Records are insert-only.
type TweetRepository struct {
	db *gorm.DB
}

// NewTweetRepository creates a new TweetRepository.
func NewTweetRepository(db *gorm.DB) *TweetRepository {
	return &TweetRepository{db: db}
}

// Create inserts one tweet and commits it. A duplicate id yields ErrInvalidInput.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tweet: record to persist; must pass Validate.
// Returns:
//   - error: non-nil if validation or the insert fails.
func (r *TweetRepository) Create(ctx context.Context, tweet *domain.Tweet) error {
	if err := tweet.Validate(); err != nil {
		return err
	}
	return classify(r.db.WithContext(ctx).Create(tweet).Error, tweet.ID)
}

// CreateBatch inserts tweets in one transaction. Tweets whose id is already
// stored are left untouched; on any other failure nothing is written.
func (r *TweetRepository) CreateBatch(ctx context.Context, tweets []domain.Tweet) error {
	if len(tweets) == 0 {
		return nil
	}
	for i := range tweets {
		if err := tweets[i].Validate(); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return classify(tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(tweets, batchSize).Error, "")
	})
}

// GetByID retrieves a tweet by its ID. A missing tweet yields ErrNotFound.
func (r *TweetRepository) GetByID(ctx context.Context, id string) (*domain.Tweet, error) {
	var tweet domain.Tweet
	if err := r.db.WithContext(ctx).First(&tweet, "id = ?", id).Error; err != nil {
		return nil, classify(err, id)
	}
	return &tweet, nil
}

// Count returns the number of stored tweets.
func (r *TweetRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&domain.Tweet{}).Count(&n).Error; err != nil {
		return 0, classify(err, "")
	}
	return n, nil
}

// ListRecent returns up to limit tweets, newest first.
func (r *TweetRepository) ListRecent(ctx context.Context, limit int) ([]domain.Tweet, error) {
	var tweets []domain.Tweet
	err := r.db.WithContext(ctx).
		Order("date DESC").
		Limit(limit).
		Find(&tweets).Error
	if err != nil {
		return nil, classify(err, "")
	}
	return tweets, nil
}

func classify(err error, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound) && id == "":
		return fmt.Errorf("tweet: %w", domain.ErrNotFound)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("tweet %s: %w", id, domain.ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey) && id == "":
		return fmt.Errorf("duplicate tweet id: %w", domain.ErrInvalidInput)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("duplicate tweet id %s: %w", id, domain.ErrInvalidInput)
	default:
		return joinExternal(err)
	}
}
