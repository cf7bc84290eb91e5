package model

import (
	"fmt"
	"math"

	"github.com/timmy/retweets/internal/domain"
)

// Round rounds a model score to a retweet count, halves to even.
func Round(v float64) int64 {
	return int64(math.RoundToEven(v))
}

// MAPE returns the mean absolute percentage error of rounded predictions
// against labels. Labels must be non-zero.
func MAPE(predictions []float64, labels []int64) (float64, error) {
	if len(predictions) != len(labels) {
		return 0, fmt.Errorf("%d predictions for %d labels: %w", len(predictions), len(labels), domain.ErrInvalidInput)
	}
	if len(labels) == 0 {
		return 0, fmt.Errorf("no samples: %w", domain.ErrInvalidInput)
	}

	var sum float64
	for i, label := range labels {
		if label == 0 {
			return 0, fmt.Errorf("zero label at row %d: %w", i, domain.ErrInvalidInput)
		}
		diff := math.Abs(float64(Round(predictions[i]) - label))
		sum += diff / math.Abs(float64(label))
	}
	return sum / float64(len(labels)) * 100, nil
}
