package dataset

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/timmy/retweets/internal/domain"
	"github.com/timmy/retweets/internal/textproc"
)

// RemoveOutliers drops one tail of a numeric column's distribution.
// With leftTail set the left tail is removed and rows with value > cutoff are
// kept; otherwise the right tail is removed and rows with value < cutoff are
// kept. The cutoff itself is dropped either way. A cell that is not a number
// fails the whole call with ErrInvalidInput.
func RemoveOutliers(f *Frame, column string, cutoff float64, leftTail bool) (*Frame, error) {
	idx, err := f.ColumnIndex(column)
	if err != nil {
		return nil, err
	}
	return f.FilterErr(func(row []string) (bool, error) {
		v, err := ParseNumber(row[idx])
		if err != nil {
			return false, err
		}
		if leftTail {
			return v > cutoff, nil
		}
		return v < cutoff, nil
	})
}

// DropEmptyContent drops rows whose cell in column is the empty string.
func DropEmptyContent(f *Frame, column string) (*Frame, error) {
	idx, err := f.ColumnIndex(column)
	if err != nil {
		return nil, err
	}
	return f.Filter(func(row []string) bool {
		return row[idx] != ""
	}), nil
}

// DropNonEnglish keeps rows whose cell in column passes textproc.IsEnglish.
func DropNonEnglish(f *Frame, column string) (*Frame, error) {
	idx, err := f.ColumnIndex(column)
	if err != nil {
		return nil, err
	}
	return f.Filter(func(row []string) bool {
		return textproc.IsEnglish(row[idx])
	}), nil
}

// ParseCount parses a whole-number cell such as a retweet count. "12" and
// "12.0" are accepted; fractional values fail with ErrInvalidInput.
func ParseCount(cell string) (int64, error) {
	v, err := ParseNumber(cell)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.Abs(v) >= 1<<63 {
		return 0, fmt.Errorf("%q is not a whole number: %w", cell, domain.ErrInvalidInput)
	}
	return int64(v), nil
}

// ParseNumber parses an integer or decimal cell. Surrounding whitespace is ignored.
func ParseNumber(cell string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not numeric: %w", cell, domain.ErrInvalidInput)
	}
	return v, nil
}
