package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/timmy/retweets/internal/domain"
)

// ReadCSV parses a CSV stream whose first record is the header.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("csv has no header: %w", domain.ErrCorrupt)
		}
		return nil, fmt.Errorf("failed to read csv header: %w", errors.Join(err, domain.ErrCorrupt))
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv records: %w", errors.Join(err, domain.ErrCorrupt))
	}

	return New(header, records)
}

// WriteCSV writes the header followed by every row.
func (f *Frame) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.columns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := writer.WriteAll(f.rows); err != nil {
		return fmt.Errorf("failed to write csv rows: %w", err)
	}
	return nil
}
