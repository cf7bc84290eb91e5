package model

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"

	"github.com/timmy/retweets/internal/dataset"
	"github.com/timmy/retweets/internal/domain"
)

// Split holds contents and labels for one side of a train/test split.
type Split struct {
	Contents []string
	Labels   []int64
}

// TrainTestSplit shuffles f deterministically by seed and holds out
// ceil(testSize*n) rows for testing, always leaving at least one training row.
// Parameters:
//   - f: frame holding the content and label columns.
//   - contentColumn, labelColumn: column names; labels must be integers.
//   - testSize: fraction in (0, 1).
//   - seed: shuffle seed, the same seed gives the same split.
// Returns:
//   - train, test: the two sides of the split.
//   - error: ErrInvalidInput on a bad fraction, fewer than two rows, a missing
//     column or a non-integer label.
func TrainTestSplit(f *dataset.Frame, contentColumn, labelColumn string, testSize float64, seed uint64) (Split, Split, error) {
	if testSize <= 0 || testSize >= 1 {
		return Split{}, Split{}, fmt.Errorf("test size %v outside (0, 1): %w", testSize, domain.ErrInvalidInput)
	}
	contents, err := f.Column(contentColumn)
	if err != nil {
		return Split{}, Split{}, err
	}
	raw, err := f.Column(labelColumn)
	if err != nil {
		return Split{}, Split{}, err
	}

	labels := make([]int64, len(raw))
	for i, cell := range raw {
		v, err := dataset.ParseCount(cell)
		if err != nil {
			return Split{}, Split{}, fmt.Errorf("label row %d: %w", i, err)
		}
		labels[i] = v
	}

	n := len(contents)
	if n < 2 {
		return Split{}, Split{}, fmt.Errorf("%d rows cannot be split, need at least 2: %w", n, domain.ErrInvalidInput)
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })

	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}

	var train, test Split
	for k, idx := range order {
		dst := &train
		if k < nTest {
			dst = &test
		}
		dst.Contents = append(dst.Contents, contents[idx])
		dst.Labels = append(dst.Labels, labels[idx])
	}
	return train, test, nil
}

// Frame renders the split as a two-column frame.
func (s Split) Frame(contentColumn, labelColumn string) *dataset.Frame {
	rows := make([][]string, len(s.Contents))
	for i := range s.Contents {
		rows[i] = []string{s.Contents[i], strconv.FormatInt(s.Labels[i], 10)}
	}
	return dataset.MustNew([]string{contentColumn, labelColumn}, rows)
}
