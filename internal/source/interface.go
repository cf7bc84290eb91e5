package source

import (
	"context"

	"github.com/timmy/retweets/internal/dataset"
)

// Source supplies one raw tweet table for the pipeline.
type Source interface {
	// ID returns a stable identifier used in logs.
	ID() string

	// Fetch reads the table and returns the selected columns in order.
	// Parameters:
	//   - ctx: context for cancellation and deadlines.
	// Returns:
	//   - *dataset.Frame: table restricted to the configured columns.
	//   - error: ErrNotFound for a missing file or object, ErrCorrupt for
	//     unreadable content, ErrInvalidInput for an absent column.
	Fetch(ctx context.Context) (*dataset.Frame, error)
}
