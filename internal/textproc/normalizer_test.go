package textproc

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/retweets/internal/domain"
)

func TestRemoveURLs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "www host", input: "www.URL.com", want: " "},
		{name: "https url in sentence", input: "read https://t.co/abc123 now", want: "read   now"},
		{name: "bare domain with path", input: "see example.com/path today", want: "see   today"},
		{name: "no url", input: "plain text", want: "plain text"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveURLs(tt.input))
		})
	}
}

func TestRemovePunctuation(t *testing.T) {
	assert.Equal(t, "    ", RemovePunctuation(",.!?"))
	assert.Equal(t, "don t stop_me", RemovePunctuation("don't stop_me"))
	assert.Equal(t, "café 2", RemovePunctuation("café#2"))
}

func TestIsEnglish(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{input: "This is English", want: true},
		{input: "a", want: true},
		{input: "9 lives", want: true},
		{input: "0 means zero", want: false},
		{input: "%", want: false},
		{input: "!", want: false},
		{input: "", want: false},
		{input: " leading space", want: false},
		{input: "Ünïcode", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEnglish(tt.input))
		})
	}
}

func TestNormalizer_RemoveStopwords(t *testing.T) {
	n := NewNormalizer()
	assert.Equal(t, []string{"unit", "test"}, n.RemoveStopwords("This is a unit test"))
	assert.Empty(t, n.RemoveStopwords("   "))
}

func TestNormalizer_Lemmatize(t *testing.T) {
	n := NewNormalizer()
	assert.Equal(t, "test", n.Lemmatize([]string{"tests"}))
	assert.Equal(t, "party child box class", n.Lemmatize([]string{"parties", "children", "boxes", "classes"}))
	assert.Equal(t, "", n.Lemmatize(nil))
}

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "stopwords removed", input: "This is a unit test", want: "unit test"},
		{name: "trailing punctuation", input: "This is a unit test!", want: "unit test"},
		{name: "emoticon", input: "This is a unit test too:)", want: "unit test"},
		{name: "url and hashtag", input: "Great rally tonight! https://t.co/xyz #MAGA", want: "great rally tonight maga"},
		{name: "only url", input: "https://example.com/a", want: ""},
		{name: "only punctuation", input: "?!...", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.input))
		})
	}
}

func TestNormalizer_NormalizeIsIdempotent(t *testing.T) {
	n := NewNormalizer()

	inputs := []string{
		"This is a unit test",
		"The FAKE NEWS media is going crazy!!! www.example.com",
		"Thank you to all of our great supporters in the swing states.",
		"Classes, buses, boxes and parties... wills & cans",
		"Big crowds 2day: https://t.co/abc (see pic.twitter.com/xyz)",
		"İstanbul café",
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		assert.Equal(t, once, n.Normalize(once), "input %q", in)
	}
}

func TestRuleLemmatizer_FixedPoint(t *testing.T) {
	l := NewRuleLemmatizer()
	for _, w := range []string{"gases", "lenses", "glasses", "wolves", "tests", "bus", "news", "ideas", "churches", "dishes"} {
		lemma := l.Lemma(w)
		assert.Equal(t, lemma, l.Lemma(lemma), "word %q", w)
	}
}

func TestRuleLemmatizer_Lemma(t *testing.T) {
	l := NewRuleLemmatizer()

	tests := []struct {
		word string
		want string
	}{
		{word: "texas", want: "texas"},
		{word: "christmas", want: "christmas"},
		{word: "kansas", want: "kansas"},
		{word: "angeles", want: "angeles"},
		{word: "buses", want: "bus"},
		{word: "gases", want: "gas"},
		{word: "glasses", want: "glass"},
		{word: "rallies", want: "rally"},
		{word: "churches", want: "church"},
		{word: "congressmen", want: "congressman"},
		{word: "houses", want: "house"},
		{word: "axes", want: "ax"},
		{word: "status", want: "status"},
		{word: "children", want: "child"},
		{word: "news", want: "news"},
		{word: "obama", want: "obama"},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			assert.Equal(t, tt.want, l.Lemma(tt.word))
		})
	}
}

func TestNormalizer_NormalizeKeepsProperNouns(t *testing.T) {
	n := NewNormalizer()
	assert.Equal(t, "texas", n.Normalize("Texas"))
	assert.Equal(t, "merry christmas los angeles", n.Normalize("Merry Christmas, Los Angeles!"))
	assert.Equal(t, "bus", n.Normalize("buses"))
}

func TestRuleLemmatizer_ReadExceptions(t *testing.T) {
	l := NewRuleLemmatizer()
	require.NoError(t, l.ReadExceptions(strings.NewReader("# comment\ncacti cactus\n\nfungi fungus\n")))
	assert.Equal(t, "cactus", l.Lemma("cacti"))
	assert.Equal(t, "fungus", l.Lemma("fungi"))

	err := l.ReadExceptions(strings.NewReader("lonely\n"))
	require.Error(t, err)
}

func TestParseStopwords(t *testing.T) {
	set, err := ParseStopwords(strings.NewReader("# header\nThe\n\nrt\n"))
	require.NoError(t, err)
	assert.True(t, set.Contains("the"))
	assert.True(t, set.Contains("rt"))
	assert.Len(t, set, 2)

	n := NewNormalizer(WithStopwords(set))
	assert.Equal(t, "is unit test", n.Normalize("RT the is unit tests"))
}

func TestEnglishStopwords(t *testing.T) {
	set := EnglishStopwords()
	assert.Len(t, set, 179)
	assert.True(t, set.Contains("this"))
	assert.False(t, set.Contains("unit"))
}

func TestLoadNormalizer(t *testing.T) {
	dir := t.TempDir()
	stop := filepath.Join(dir, "stop.txt")
	exc := filepath.Join(dir, "noun.exc")
	require.NoError(t, os.WriteFile(stop, []byte("# custom\nunit\n"), 0644))
	require.NoError(t, os.WriteFile(exc, []byte("cacti cactus\n"), 0644))

	n, err := LoadNormalizer(stop, exc)
	require.NoError(t, err)
	assert.Equal(t, "this is cactus test", n.Normalize("This is unit cacti test"))

	_, err = LoadNormalizer(filepath.Join(dir, "missing.txt"), "")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	def, err := LoadNormalizer("", "")
	require.NoError(t, err)
	assert.Equal(t, "unit test", def.Normalize("This is a unit test"))
}
