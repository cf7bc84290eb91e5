// Package tokenizer maps normalized text to fixed-length integer sequences
// using a vocabulary fitted once on the training corpus.
package tokenizer

import (
	"sort"
	"strings"
)

// DefaultOOVToken is the placeholder word used for out-of-vocabulary tokens.
const DefaultOOVToken = "<OOV>"

// filterChars are replaced by spaces before splitting, matching the
// tokenizer the model was trained with.
const filterChars = "!\"#$%&()*+,-./:;<=>?@[\\]^_`{|}~\t\n"

// Vocabulary maps words to 1-based indices. Index 0 is reserved for padding
// and the OOV token always holds index 1. A Vocabulary is read-only after
// Fit or Load and safe for concurrent use.
type Vocabulary struct {
	oovToken string
	index    map[string]int
}

// Fit builds a vocabulary from corpus. Words are ranked by frequency, ties
// broken by first appearance, and numbered from 2 after the OOV token.
func Fit(corpus []string, oovToken string) *Vocabulary {
	counts := make(map[string]int)
	var order []string
	for _, text := range corpus {
		for _, w := range Split(text) {
			if w == oovToken {
				continue
			}
			if _, seen := counts[w]; !seen {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	index := make(map[string]int, len(order)+1)
	index[oovToken] = 1
	for i, w := range order {
		index[w] = i + 2
	}
	return &Vocabulary{oovToken: oovToken, index: index}
}

// Split lower-cases text, replaces filter characters with spaces and splits
// on spaces, dropping empty tokens.
func Split(text string) []string {
	text = strings.ToLower(text)
	text = strings.Map(func(r rune) rune {
		if strings.ContainsRune(filterChars, r) {
			return ' '
		}
		return r
	}, text)
	return strings.Fields(text)
}

// Size is the embedding input dimension: the number of indexed words,
// including the OOV token, plus one for the padding index.
func (v *Vocabulary) Size() int {
	return len(v.index) + 1
}

// OOVToken returns the out-of-vocabulary placeholder word.
func (v *Vocabulary) OOVToken() string {
	return v.oovToken
}

// OOVIndex returns the index assigned to unknown words.
func (v *Vocabulary) OOVIndex() int {
	return v.index[v.oovToken]
}

// Index returns the index of word, or false if the word is unknown.
func (v *Vocabulary) Index(word string) (int, bool) {
	i, ok := v.index[word]
	return i, ok
}

// Sequence maps the words of text to indices, substituting the OOV index for
// unknown words.
func (v *Vocabulary) Sequence(text string) []int {
	words := Split(text)
	seq := make([]int, len(words))
	oov := v.OOVIndex()
	for i, w := range words {
		if idx, ok := v.index[w]; ok {
			seq[i] = idx
		} else {
			seq[i] = oov
		}
	}
	return seq
}
