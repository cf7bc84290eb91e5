package dataset

import (
	"fmt"
	"strings"
	"time"

	"github.com/timmy/retweets/internal/domain"
)

// dateLayouts are the timestamp formats accepted in date columns, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"01-02-2006 15:04:05",
	"01-02-2006",
}

// ParseDate parses a date cell using the accepted layouts. Times without a
// zone are read as UTC.
func ParseDate(cell string) (time.Time, error) {
	s := strings.TrimSpace(cell)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a date: %w", cell, domain.ErrInvalidInput)
}

// Combine merges two sources into one schema and restricts the result to a
// date window.
//
// Columns are renamed by position, not by name: column i of each input becomes
// columns[i], so both inputs must already be ordered to match columns. Rows of
// a are followed by rows of b, then rows with start <= date < end are kept in
// that order. The date column stays in the output.
func Combine(a, b *Frame, columns []string, dateColumn string, start, end time.Time) (*Frame, error) {
	ra, err := a.Rename(columns)
	if err != nil {
		return nil, fmt.Errorf("first input: %w", err)
	}
	rb, err := b.Rename(columns)
	if err != nil {
		return nil, fmt.Errorf("second input: %w", err)
	}

	stacked, err := Concat(ra, rb)
	if err != nil {
		return nil, err
	}

	idx, err := stacked.ColumnIndex(dateColumn)
	if err != nil {
		return nil, err
	}

	return stacked.FilterErr(func(row []string) (bool, error) {
		d, err := ParseDate(row[idx])
		if err != nil {
			return false, err
		}
		return !d.Before(start) && d.Before(end), nil
	})
}
