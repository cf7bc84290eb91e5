package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/timmy/retweets/internal/config"
	"github.com/timmy/retweets/internal/dataset"
	"github.com/timmy/retweets/internal/domain"
	"github.com/timmy/retweets/internal/logger"
	"github.com/timmy/retweets/internal/model"
	"github.com/timmy/retweets/internal/source"
	"github.com/timmy/retweets/internal/textproc"
	"github.com/timmy/retweets/internal/tokenizer"
)

// tweetNamespace seeds deterministic IDs for tweets loaded without one.
var tweetNamespace = uuid.MustParse("6f1c8a52-3b7e-4f0e-9d55-2a4be0c1d7a3")

// TweetBatchStore persists many tweets at once.
type TweetBatchStore interface {
	CreateBatch(ctx context.Context, tweets []domain.Tweet) error
	Count(ctx context.Context) (int64, error)
}

// PipelineDeps are the collaborators of the ETL pipeline. Only the ones a
// stage uses need to be set.
type PipelineDeps struct {
	Files      FileStore
	First      source.Source
	Second     source.Source
	Normalizer *textproc.Normalizer
	Predictor  model.Predictor
	Tweets     TweetBatchStore
}

// PipelineService runs the data preparation stages. Each stage reads the
// previous stage's output path and writes its own.
type PipelineService struct {
	deps PipelineDeps
	cfg  config.PipelineConfig
	tok  config.TokenizerConfig
}

// NewPipelineService creates a pipeline service.
func NewPipelineService(deps PipelineDeps, cfg config.PipelineConfig, tok config.TokenizerConfig) *PipelineService {
	return &PipelineService{deps: deps, cfg: cfg, tok: tok}
}

func stageContext(ctx context.Context, stage string) (context.Context, time.Time) {
	return logger.SetStage(ctx, stage), time.Now()
}

// Acquire fetches both sources concurrently, combines them within the
// configured date window and writes the combined table.
func (s *PipelineService) Acquire(ctx context.Context) (*dataset.Frame, error) {
	ctx, start := stageContext(ctx, "acquire")

	from, err := dataset.ParseDate(s.cfg.Combine.Start)
	if err != nil {
		return nil, fmt.Errorf("combine start: %w", err)
	}
	to, err := dataset.ParseDate(s.cfg.Combine.End)
	if err != nil {
		return nil, fmt.Errorf("combine end: %w", err)
	}

	var first, second *dataset.Frame
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		first, err = s.deps.First.Fetch(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		second, err = s.deps.Second.Fetch(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	combined, err := dataset.Combine(first, second, s.cfg.Combine.Columns, s.cfg.Combine.DateColumn, from, to)
	if err != nil {
		return nil, err
	}
	if err := writeFrame(ctx, s.deps.Files, s.cfg.Output.Combined, combined); err != nil {
		return nil, err
	}

	logger.Since(start).WithCount(combined.Len()).Info(ctx, "Combined %d rows from %s and %d rows from %s",
		first.Len(), s.deps.First.ID(), second.Len(), s.deps.Second.ID())
	return combined, nil
}

// CleanFrame removes label outliers, empty content and non-English content, in that order.
func CleanFrame(f *dataset.Frame, cfg config.CleanConfig) (*dataset.Frame, error) {
	out, err := dataset.RemoveOutliers(f, cfg.LabelColumn, cfg.OutlierCutoff, cfg.LeftTail)
	if err != nil {
		return nil, err
	}
	if out, err = dataset.DropEmptyContent(out, cfg.ContentColumn); err != nil {
		return nil, err
	}
	return dataset.DropNonEnglish(out, cfg.ContentColumn)
}

// Clean reads the combined table, cleans it and writes the result.
func (s *PipelineService) Clean(ctx context.Context) (*dataset.Frame, error) {
	ctx, start := stageContext(ctx, "clean")

	f, err := readFrame(ctx, s.deps.Files, s.cfg.Output.Combined)
	if err != nil {
		return nil, err
	}
	cleaned, err := CleanFrame(f, s.cfg.Clean)
	if err != nil {
		return nil, err
	}
	if err := writeFrame(ctx, s.deps.Files, s.cfg.Output.Cleaned, cleaned); err != nil {
		return nil, err
	}

	logger.Since(start).WithCount(cleaned.Len()).Info(ctx, "Dropped %d rows", f.Len()-cleaned.Len())
	return cleaned, nil
}

// Process normalizes the content column of the cleaned table.
func (s *PipelineService) Process(ctx context.Context) (*dataset.Frame, error) {
	ctx, start := stageContext(ctx, "process")

	f, err := readFrame(ctx, s.deps.Files, s.cfg.Output.Cleaned)
	if err != nil {
		return nil, err
	}
	processed, err := f.MapColumn(s.cfg.Clean.ContentColumn, s.deps.Normalizer.Normalize)
	if err != nil {
		return nil, err
	}
	if err := writeFrame(ctx, s.deps.Files, s.cfg.Output.Processed, processed); err != nil {
		return nil, err
	}

	logger.Since(start).WithCount(processed.Len()).Info(ctx, "Normalized tweet content")
	return processed, nil
}

// FitResult summarizes a tokenizer fit.
type FitResult struct {
	VocabSize int
	TrainRows int
	TestRows  int
}

// trainingSet is the padded training data handed to the external trainer.
type trainingSet struct {
	VocabSize int     `json:"vocab_size"`
	MaxLength int     `json:"max_length"`
	PadSide   string  `json:"pad_side"`
	Sequences [][]int `json:"sequences"`
	Labels    []int64 `json:"labels"`
}

// FitTokenizer splits the processed table, fits the vocabulary on the
// training contents and writes the vocabulary, both splits and the padded
// training sequences.
func (s *PipelineService) FitTokenizer(ctx context.Context) (*FitResult, error) {
	ctx, start := stageContext(ctx, "fit-tokenizer")

	side, err := tokenizer.ParsePadSide(s.tok.PadSide)
	if err != nil {
		return nil, err
	}
	f, err := readFrame(ctx, s.deps.Files, s.cfg.Output.Processed)
	if err != nil {
		return nil, err
	}

	content, label := s.cfg.Clean.ContentColumn, s.cfg.Clean.LabelColumn
	train, test, err := model.TrainTestSplit(f, content, label, s.cfg.Split.TestSize, s.cfg.Split.Seed)
	if err != nil {
		return nil, err
	}
	logger.With(logger.Fields{"train": len(train.Labels), "test": len(test.Labels)}).
		Info(ctx, "Split dataset")

	vocab := tokenizer.Fit(train.Contents, s.tok.OOVToken)
	if err := SaveVocabulary(ctx, s.deps.Files, s.tok.Path, vocab); err != nil {
		return nil, err
	}

	sequences, err := tokenizer.Tokenize(train.Contents, vocab, side, s.tok.MaxLength)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(trainingSet{
		VocabSize: vocab.Size(),
		MaxLength: s.tok.MaxLength,
		PadSide:   string(side),
		Sequences: sequences,
		Labels:    train.Labels,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode training sequences: %w", err)
	}
	if err := s.deps.Files.WriteFile(ctx, s.cfg.Output.TrainSequences, data); err != nil {
		return nil, err
	}
	if err := writeFrame(ctx, s.deps.Files, s.cfg.Output.Train, train.Frame(content, label)); err != nil {
		return nil, err
	}
	if err := writeFrame(ctx, s.deps.Files, s.cfg.Output.Test, test.Frame(content, label)); err != nil {
		return nil, err
	}

	result := &FitResult{VocabSize: vocab.Size(), TrainRows: len(train.Labels), TestRows: len(test.Labels)}
	logger.Since(start).With(logger.Fields{"vocab_size": result.VocabSize}).Info(ctx, "Tokenizer fitted")
	return result, nil
}

// Evaluate scores the test split with the model server and returns its MAPE.
func (s *PipelineService) Evaluate(ctx context.Context) (float64, error) {
	ctx, start := stageContext(ctx, "evaluate")

	side, err := tokenizer.ParsePadSide(s.tok.PadSide)
	if err != nil {
		return 0, err
	}
	vocab, err := LoadVocabulary(ctx, s.deps.Files, s.tok.Path)
	if err != nil {
		return 0, err
	}
	f, err := readFrame(ctx, s.deps.Files, s.cfg.Output.Test)
	if err != nil {
		return 0, err
	}

	contents, err := f.Column(s.cfg.Clean.ContentColumn)
	if err != nil {
		return 0, err
	}
	labels, err := int64Column(f, s.cfg.Clean.LabelColumn)
	if err != nil {
		return 0, err
	}

	sequences, err := tokenizer.Tokenize(contents, vocab, side, s.tok.MaxLength)
	if err != nil {
		return 0, err
	}
	predictions, err := s.deps.Predictor.Predict(ctx, sequences)
	if err != nil {
		return 0, err
	}
	mape, err := model.MAPE(predictions, labels)
	if err != nil {
		return 0, err
	}

	logger.Since(start).WithCount(len(labels)).With(logger.Fields{logger.FieldScore: mape}).
		Info(ctx, "Test MAPE: %.4f", mape)
	return mape, nil
}

// LoadTweets inserts the tweets of the table at path. Tweets without an
// id column get a deterministic ID derived from date and content, so
// loading the same table twice stores each tweet once. Over-long rows and
// repeated ids are skipped.
// Returns:
//   - int: number of tweets inserted.
//   - error: ErrInvalidInput for bad dates or counts, or the store failure.
func (s *PipelineService) LoadTweets(ctx context.Context, path string) (int, error) {
	ctx, start := stageContext(ctx, "load-tweets")

	f, err := readFrame(ctx, s.deps.Files, path)
	if err != nil {
		return 0, err
	}
	tweets, skipped, err := TweetsFromFrame(f, s.cfg.Combine.DateColumn, s.cfg.Clean.ContentColumn, s.cfg.Clean.LabelColumn)
	if err != nil {
		return 0, err
	}
	if skipped > 0 {
		logger.With(logger.Fields{logger.FieldCount: skipped}).Warn(ctx, "Skipped over-long or repeated tweets")
	}
	if err := s.deps.Tweets.CreateBatch(ctx, tweets); err != nil {
		return 0, err
	}
	total, err := s.deps.Tweets.Count(ctx)
	if err != nil {
		return 0, err
	}

	logger.Since(start).WithCount(len(tweets)).Info(ctx, "Loaded tweets, %d stored in total", total)
	return len(tweets), nil
}

// TweetsFromFrame converts table rows into tweet records. Rows longer than a
// tweet and repeats of an earlier id are skipped; the second return value
// counts them.
func TweetsFromFrame(f *dataset.Frame, dateColumn, contentColumn, labelColumn string) ([]domain.Tweet, int, error) {
	dateIdx, err := f.ColumnIndex(dateColumn)
	if err != nil {
		return nil, 0, err
	}
	contentIdx, err := f.ColumnIndex(contentColumn)
	if err != nil {
		return nil, 0, err
	}
	labelIdx, err := f.ColumnIndex(labelColumn)
	if err != nil {
		return nil, 0, err
	}
	idIdx, idErr := f.ColumnIndex("id")

	tweets := make([]domain.Tweet, 0, f.Len())
	seen := make(map[string]struct{}, f.Len())
	skipped := 0
	for i, row := range f.Rows() {
		date, err := dataset.ParseDate(row[dateIdx])
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: %w", i, err)
		}
		retweets, err := dataset.ParseCount(row[labelIdx])
		if err != nil {
			return nil, 0, fmt.Errorf("row %d: %w", i, err)
		}
		content := row[contentIdx]
		if utf8.RuneCountInString(content) > domain.MaxContentLength {
			skipped++
			continue
		}

		id := ""
		if idErr == nil {
			id = row[idIdx]
		}
		if id == "" {
			id = uuid.NewSHA1(tweetNamespace, []byte(row[dateIdx]+"\x00"+content)).String()
		}
		if _, dup := seen[id]; dup {
			skipped++
			continue
		}
		seen[id] = struct{}{}

		tweets = append(tweets, domain.Tweet{
			ID:       id,
			Date:     date,
			Content:  content,
			Retweets: retweets,
		})
	}
	return tweets, skipped, nil
}

func int64Column(f *dataset.Frame, column string) ([]int64, error) {
	cells, err := f.Column(column)
	if err != nil {
		return nil, err
	}
	out := make([]int64, len(cells))
	for i, cell := range cells {
		v, err := dataset.ParseCount(cell)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}
