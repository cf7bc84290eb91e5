package csvfile

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/timmy/retweets/internal/dataset"
	"github.com/timmy/retweets/internal/logger"
	"github.com/timmy/retweets/internal/source"
)

// Files opens local or s3:// paths. storage.Files satisfies it.
type Files interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Adapter implements source.Source for a CSV file with a header row.
type Adapter struct {
	files   Files
	path    string
	columns []string
}

var _ source.Source = (*Adapter)(nil)

// NewAdapter creates a CSV source.
// Parameters:
//   - files: opener for local and s3:// paths.
//   - path: location of the CSV file.
//   - columns: columns to keep, in output order.
// Returns:
//   - *Adapter: initialized adapter.
func NewAdapter(files Files, path string, columns []string) *Adapter {
	return &Adapter{files: files, path: path, columns: columns}
}

// ID returns the path of the file.
func (a *Adapter) ID() string {
	return "csv:" + a.path
}

// Fetch reads the file and selects the configured columns.
func (a *Adapter) Fetch(ctx context.Context) (*dataset.Frame, error) {
	start := time.Now()

	body, err := a.files.Open(ctx, a.path)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	frame, err := dataset.ReadCSV(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", a.path, err)
	}
	if len(a.columns) > 0 {
		if frame, err = frame.Select(a.columns...); err != nil {
			return nil, fmt.Errorf("source %s: %w", a.path, err)
		}
	}

	logger.Since(start).With(logger.Fields{logger.FieldPath: a.path, logger.FieldCount: frame.Len()}).
		Info(ctx, "Source loaded")
	return frame, nil
}
