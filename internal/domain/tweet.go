package domain

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// MaxContentLength is the maximum number of characters stored for a tweet.
const MaxContentLength = 280

// Tweet represents a tweet together with its (observed or predicted) retweet count.
// Records are created on ingestion and never updated.
type Tweet struct {
	ID       string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	Date     time.Time `gorm:"not null" json:"date"`
	Content  string    `gorm:"type:varchar(280);not null" json:"content"`
	Retweets int64     `gorm:"not null" json:"retweets"`
}

// TableName returns the database table name for Tweet.
func (Tweet) TableName() string {
	return "tweets"
}

// Prediction is the outcome of a single form submission.
type Prediction struct {
	TweetID  string `json:"tweet_id,omitempty"`
	Content  string `json:"content"`
	Retweets int64  `json:"retweets"`
}

// Validate checks the stored-record constraints.
func (t *Tweet) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("tweet id is empty: %w", ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(t.Content); n > MaxContentLength {
		return fmt.Errorf("tweet content has %d characters, limit %d: %w", n, MaxContentLength, ErrInvalidInput)
	}
	return nil
}
