package textproc

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/timmy/retweets/internal/domain"
)

//go:embed stopwords_en.txt
var englishStopwords string

// StopwordSet is an immutable set of lower-cased stopwords.
type StopwordSet map[string]struct{}

// EnglishStopwords returns the built-in English stopword set.
func EnglishStopwords() StopwordSet {
	set, _ := ParseStopwords(strings.NewReader(englishStopwords))
	return set
}

// ParseStopwords reads one stopword per line. Blank lines and lines starting
// with '#' are ignored; words are lower-cased.
func ParseStopwords(r io.Reader) (StopwordSet, error) {
	set, err := parseWordList(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read stopwords: %w", err)
	}
	return StopwordSet(set), nil
}

func parseWordList(r io.Reader) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		set[strings.ToLower(word)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return set, nil
}

// LoadStopwords reads a stopword file from disk.
func LoadStopwords(path string) (StopwordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("stopword file %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open stopword file: %w", err)
	}
	defer f.Close()
	return ParseStopwords(f)
}

// Contains reports whether word is a stopword. word must already be lower-cased.
func (s StopwordSet) Contains(word string) bool {
	_, ok := s[word]
	return ok
}
