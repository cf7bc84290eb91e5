package tokenizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/timmy/retweets/internal/domain"
)

const formatVersion = "retweets-vocabulary/v1"

type vocabularyFile struct {
	Format    string         `json:"format"`
	OOVToken  string         `json:"oov_token"`
	WordIndex map[string]int `json:"word_index"`
}

// Write encodes the vocabulary as JSON.
func (v *Vocabulary) Write(w io.Writer) error {
	enc := json.NewEncoder(w)
	return enc.Encode(vocabularyFile{
		Format:    formatVersion,
		OOVToken:  v.oovToken,
		WordIndex: v.index,
	})
}

// Save writes the vocabulary to path, creating parent directories. The file
// is written to a temporary name first and renamed into place.
func (v *Vocabulary) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create vocabulary directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".vocab-*")
	if err != nil {
		return fmt.Errorf("failed to create vocabulary file: %w", err)
	}
	if err := v.Write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to encode vocabulary: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write vocabulary: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// Read decodes a vocabulary written by Write. Malformed content yields ErrCorrupt.
func Read(r io.Reader) (*Vocabulary, error) {
	var file vocabularyFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode vocabulary: %w", errors.Join(err, domain.ErrCorrupt))
	}
	if file.Format != formatVersion {
		return nil, fmt.Errorf("vocabulary format %q: %w", file.Format, domain.ErrCorrupt)
	}
	if file.OOVToken == "" {
		return nil, fmt.Errorf("vocabulary has no oov token: %w", domain.ErrCorrupt)
	}
	if _, ok := file.WordIndex[file.OOVToken]; !ok {
		return nil, fmt.Errorf("vocabulary does not index oov token %q: %w", file.OOVToken, domain.ErrCorrupt)
	}
	for w, i := range file.WordIndex {
		if i <= 0 {
			return nil, fmt.Errorf("word %q has index %d: %w", w, i, domain.ErrCorrupt)
		}
	}
	return &Vocabulary{oovToken: file.OOVToken, index: file.WordIndex}, nil
}

// Load reads the vocabulary stored at path. A missing file yields ErrNotFound.
func Load(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("vocabulary %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to open vocabulary: %w", err)
	}
	defer f.Close()
	return Read(f)
}
