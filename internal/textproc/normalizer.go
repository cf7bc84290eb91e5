package textproc

import "strings"

// Normalizer turns raw tweet text into the space-separated token form the
// tokenizer and the model were trained on. A Normalizer is immutable and safe
// for concurrent use once built.
type Normalizer struct {
	stopwords  StopwordSet
	lemmatizer Lemmatizer
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithStopwords replaces the built-in English stopword set.
func WithStopwords(set StopwordSet) Option {
	return func(n *Normalizer) {
		n.stopwords = set
	}
}

// WithLemmatizer replaces the built-in rule lemmatizer.
func WithLemmatizer(l Lemmatizer) Option {
	return func(n *Normalizer) {
		n.lemmatizer = l
	}
}

// NewNormalizer builds a Normalizer with English stopwords and the rule
// lemmatizer unless overridden by opts.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{
		stopwords:  EnglishStopwords(),
		lemmatizer: NewRuleLemmatizer(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// RemoveStopwords lower-cases s, splits it on whitespace and drops stopwords.
func (n *Normalizer) RemoveStopwords(s string) []string {
	words := strings.Fields(strings.ToLower(s))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if !n.stopwords.Contains(w) {
			out = append(out, w)
		}
	}
	return out
}

// Lemmatize maps every word to its lemma and joins the result with single
// spaces. A word whose lemma is a stopword keeps its surface form so that
// normalizing already-normalized text is a no-op.
func (n *Normalizer) Lemmatize(words []string) string {
	lemmas := make([]string, len(words))
	for i, w := range words {
		lemma := n.lemmatizer.Lemma(w)
		if n.stopwords.Contains(lemma) {
			lemma = w
		}
		lemmas[i] = lemma
	}
	return strings.Join(lemmas, " ")
}

// Normalize applies, in order: URL removal, punctuation removal,
// lower-casing with stopword removal, and lemmatization.
func (n *Normalizer) Normalize(text string) string {
	s := RemoveURLs(text)
	s = RemovePunctuation(s)
	return n.Lemmatize(n.RemoveStopwords(s))
}

// LoadNormalizer builds a Normalizer from optional resource files. An empty
// stopwordsPath keeps the built-in list; exceptionsPath entries are merged
// into the built-in lemma exceptions.
func LoadNormalizer(stopwordsPath, exceptionsPath string) (*Normalizer, error) {
	var opts []Option
	if stopwordsPath != "" {
		set, err := LoadStopwords(stopwordsPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, WithStopwords(set))
	}
	if exceptionsPath != "" {
		l := NewRuleLemmatizer()
		if err := l.LoadExceptions(exceptionsPath); err != nil {
			return nil, err
		}
		opts = append(opts, WithLemmatizer(l))
	}
	return NewNormalizer(opts...), nil
}
