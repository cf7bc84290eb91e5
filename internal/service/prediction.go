package service

import (
	"context"
	"fmt"
	"time"

	"github.com/timmy/retweets/internal/domain"
	"github.com/timmy/retweets/internal/logger"
	"github.com/timmy/retweets/internal/model"
	"github.com/timmy/retweets/internal/textproc"
	"github.com/timmy/retweets/internal/tokenizer"
)

// PredictionService turns raw tweet text into a retweet count. Its
// normalizer, vocabulary and model client are loaded once and shared
// read-only between requests.
type PredictionService struct {
	normalizer *textproc.Normalizer
	vocab      *tokenizer.Vocabulary
	predictor  model.Predictor
	padSide    tokenizer.PadSide
	maxLength  int
}

// PredictionConfig holds the sequence shape the model was trained with.
type PredictionConfig struct {
	PadSide   tokenizer.PadSide
	MaxLength int
}

// NewPredictionService creates a prediction service. A nil vocabulary is
// accepted so the web app can start without artifacts; Predict then fails
// with ErrNotFound.
func NewPredictionService(
	normalizer *textproc.Normalizer,
	vocab *tokenizer.Vocabulary,
	predictor model.Predictor,
	cfg *PredictionConfig,
) (*PredictionService, error) {
	if cfg.MaxLength <= 0 {
		return nil, fmt.Errorf("max length %d: %w", cfg.MaxLength, domain.ErrInvalidInput)
	}
	side, err := tokenizer.ParsePadSide(string(cfg.PadSide))
	if err != nil {
		return nil, err
	}
	return &PredictionService{
		normalizer: normalizer,
		vocab:      vocab,
		predictor:  predictor,
		padSide:    side,
		maxLength:  cfg.MaxLength,
	}, nil
}

// Predict normalizes text, tokenizes it, scores it with the model and
// rounds the score half to even.
// Parameters:
//   - ctx: request context.
//   - text: raw tweet text as typed by the user.
// Returns:
//   - int64: predicted retweet count.
//   - error: ErrNotFound when the vocabulary or model is missing,
//     ErrExternalService when the model server fails.
func (s *PredictionService) Predict(ctx context.Context, text string) (int64, error) {
	counts, err := s.PredictBatch(ctx, []string{text})
	if err != nil {
		return 0, err
	}
	return counts[0], nil
}

// PredictBatch scores several texts with one model call. Scores below zero
// are reported as zero retweets.
func (s *PredictionService) PredictBatch(ctx context.Context, texts []string) ([]int64, error) {
	if s.vocab == nil {
		return nil, fmt.Errorf("vocabulary not loaded: %w", domain.ErrNotFound)
	}
	if s.predictor == nil {
		return nil, fmt.Errorf("model not configured: %w", domain.ErrNotFound)
	}
	start := time.Now()

	processed := make([]string, len(texts))
	for i, t := range texts {
		processed[i] = s.normalizer.Normalize(t)
	}

	sequences, err := tokenizer.Tokenize(processed, s.vocab, s.padSide, s.maxLength)
	if err != nil {
		return nil, err
	}

	scores, err := s.predictor.Predict(ctx, sequences)
	if err != nil {
		return nil, fmt.Errorf("prediction failed: %w", err)
	}
	if len(scores) != len(texts) {
		return nil, fmt.Errorf("model returned %d scores for %d texts: %w", len(scores), len(texts), domain.ErrExternalService)
	}

	counts := make([]int64, len(scores))
	for i, score := range scores {
		counts[i] = max(model.Round(score), 0)
	}

	logger.Since(start).WithCount(len(texts)).Debug(ctx, "Predicted retweets")
	return counts, nil
}
