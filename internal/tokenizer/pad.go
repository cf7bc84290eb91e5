package tokenizer

import (
	"fmt"

	"github.com/timmy/retweets/internal/domain"
)

// PadSide selects where zero padding goes.
type PadSide string

const (
	PadBefore PadSide = "before"
	PadAfter  PadSide = "after"
)

// ParsePadSide accepts "before"/"after" and the "pre"/"post" spellings used
// by training configs.
func ParsePadSide(s string) (PadSide, error) {
	switch s {
	case "before", "pre":
		return PadBefore, nil
	case "after", "post":
		return PadAfter, nil
	default:
		return "", fmt.Errorf("pad side %q: %w", s, domain.ErrInvalidInput)
	}
}

// Pad returns a copy of seq with exactly maxLength entries. Sequences that
// are too long lose entries from the end opposite side; short ones get
// zeros on side.
func Pad(seq []int, side PadSide, maxLength int) []int {
	if len(seq) > maxLength {
		if side == PadAfter {
			seq = seq[len(seq)-maxLength:]
		} else {
			seq = seq[:maxLength]
		}
	}
	out := make([]int, maxLength)
	if side == PadAfter {
		copy(out, seq)
	} else {
		copy(out[maxLength-len(seq):], seq)
	}
	return out
}

// Tokenize converts texts into a matrix of len(texts) rows, each exactly
// maxLength indices long.
func Tokenize(texts []string, vocab *Vocabulary, side PadSide, maxLength int) ([][]int, error) {
	if maxLength <= 0 {
		return nil, fmt.Errorf("max length %d: %w", maxLength, domain.ErrInvalidInput)
	}
	if side != PadBefore && side != PadAfter {
		return nil, fmt.Errorf("pad side %q: %w", side, domain.ErrInvalidInput)
	}
	out := make([][]int, len(texts))
	for i, text := range texts {
		out[i] = Pad(vocab.Sequence(text), side, maxLength)
	}
	return out, nil
}
