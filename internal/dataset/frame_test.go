package dataset

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timmy/retweets/internal/domain"
)

func TestNew_RaggedRows(t *testing.T) {
	_, err := New([]string{"a", "b"}, [][]string{{"1", "2"}, {"3"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFrame_SelectAndMap(t *testing.T) {
	f := MustNew([]string{"id", "content", "retweets"}, [][]string{
		{"1", "Hello", "10"},
		{"2", "World", "20"},
	})

	sel, err := f.Select("content", "retweets")
	require.NoError(t, err)
	assert.Equal(t, []string{"content", "retweets"}, sel.Columns())
	assert.Equal(t, []string{"Hello", "10"}, sel.Row(0))

	mapped, err := sel.MapColumn("content", strings.ToUpper)
	require.NoError(t, err)
	assert.Equal(t, []string{"HELLO", "10"}, mapped.Row(0))
	assert.Equal(t, []string{"Hello", "10"}, sel.Row(0), "receiver must be unchanged")

	_, err = f.Select("missing")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCSVRoundTrip(t *testing.T) {
	input := "date,content,retweets\n2020-01-01,\"Hello, world\",5\n2020-01-02,Bye,7\n"

	f, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"2020-01-01", "Hello, world", "5"}, f.Row(0))

	var buf bytes.Buffer
	require.NoError(t, f.WriteCSV(&buf))
	assert.Equal(t, input, buf.String())
}

func TestReadCSV_Errors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrCorrupt)

	_, err = ReadCSV(strings.NewReader("a,b\n1\n"))
	assert.ErrorIs(t, err, domain.ErrCorrupt)
}
