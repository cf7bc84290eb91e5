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

// Lemmatizer reduces a lower-cased word to its dictionary base form.
type Lemmatizer interface {
	Lemma(word string) string
}

// nounExceptions are irregular plurals and words whose trailing "s" is not
// a plural marker. Format mirrors WordNet's noun.exc: inflected -> base.
var nounExceptions = map[string]string{
	"children":  "child",
	"men":       "man",
	"women":     "woman",
	"mice":      "mouse",
	"geese":     "goose",
	"feet":      "foot",
	"teeth":     "tooth",
	"oxen":      "ox",
	"data":      "datum",
	"criteria":  "criterion",
	"media":     "medium",
	"leaves":    "leaf",
	"lives":     "life",
	"wives":     "wife",
	"knives":    "knife",
	"wolves":    "wolf",
	"halves":    "half",
	"selves":    "self",
	"thieves":   "thief",
	"shelves":   "shelf",
	"news":      "news",
	"series":    "series",
	"species":   "species",
	"politics":  "politics",
	"economics": "economics",
	"physics":   "physics",
	"jeans":     "jeans",
	"always":    "always",
	"perhaps":   "perhaps",
	"whereas":   "whereas",
	"thanks":    "thanks",
	"congress":  "congress",
}

// suffixRule rewrites a trailing suffix.
type suffixRule struct {
	suffix      string
	replacement string
}

// nounRules are WordNet's noun detachment rules. Every matching rule yields
// a candidate.
var nounRules = []suffixRule{
	{suffix: "s", replacement: ""},
	{suffix: "ses", replacement: "s"},
	{suffix: "xes", replacement: "x"},
	{suffix: "zes", replacement: "z"},
	{suffix: "ches", replacement: "ch"},
	{suffix: "shes", replacement: "sh"},
	{suffix: "men", replacement: "man"},
	{suffix: "ies", replacement: "y"},
}

//go:embed nouns_en.txt
var englishNouns string

// RuleLemmatizer is a noun lemmatizer built from an exception table,
// WordNet's detachment rules and a noun lexicon. A detached form is only
// used when the lexicon lists it, so words like "texas" are left alone.
// Its output is a fixed point: lemmatizing a lemma returns it unchanged.
type RuleLemmatizer struct {
	exceptions map[string]string
	nouns      map[string]struct{}
}

// NewRuleLemmatizer returns a lemmatizer with the built-in exception table
// and noun lexicon.
func NewRuleLemmatizer() *RuleLemmatizer {
	exc := make(map[string]string, len(nounExceptions))
	for k, v := range nounExceptions {
		exc[k] = v
	}
	nouns, _ := parseWordList(strings.NewReader(englishNouns))
	return &RuleLemmatizer{exceptions: exc, nouns: nouns}
}

// LoadExceptions merges a WordNet-style exception file ("inflected base" per
// line) into the lemmatizer. Later entries override built-in ones.
func (l *RuleLemmatizer) LoadExceptions(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("lemma exceptions %s: %w", path, domain.ErrNotFound)
		}
		return fmt.Errorf("failed to open lemma exceptions: %w", err)
	}
	defer f.Close()
	return l.ReadExceptions(f)
}

// ReadExceptions merges exception lines read from r.
func (l *RuleLemmatizer) ReadExceptions(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		if len(fields) < 2 {
			return fmt.Errorf("lemma exceptions line %d: %w", line, domain.ErrCorrupt)
		}
		l.exceptions[strings.ToLower(fields[0])] = strings.ToLower(fields[1])
	}
	return scanner.Err()
}

// Lemma returns the base form of word: the shortest of word and its
// detached forms that the lexicon lists, or word itself when none is.
func (l *RuleLemmatizer) Lemma(word string) string {
	if base, ok := l.exceptions[word]; ok {
		return base
	}
	lemma := ""
	if _, ok := l.nouns[word]; ok {
		lemma = word
	}
	for _, rule := range nounRules {
		if len(word) <= len(rule.suffix) || !strings.HasSuffix(word, rule.suffix) {
			continue
		}
		candidate := strings.TrimSuffix(word, rule.suffix) + rule.replacement
		if _, ok := l.nouns[candidate]; !ok {
			continue
		}
		if lemma == "" || len(candidate) < len(lemma) {
			lemma = candidate
		}
	}
	if lemma == "" {
		return word
	}
	return lemma
}
