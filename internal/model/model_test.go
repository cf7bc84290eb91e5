package model

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/retweets/internal/dataset"
	"github.com/timmy/retweets/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(&ClientConfig{BaseURL: srv.URL, Name: "retweets"})
	require.NoError(t, err)
	return c
}

func TestClient_Predict(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/models/retweets:predict", r.URL.Path)

		var req predictRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, [][]int{{2, 3, 0}, {4, 0, 0}}, req.Instances)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"predictions": [[12.4], [7.6]]}`))
	})

	got, err := c.Predict(context.Background(), [][]int{{2, 3, 0}, {4, 0, 0}})
	require.NoError(t, err)
	assert.Equal(t, []float64{12.4, 7.6}, got)
}

func TestClient_PredictErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "model missing", status: http.StatusNotFound, body: `{"error":"Servable not found"}`, want: domain.ErrNotFound},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"boom"}`, want: domain.ErrExternalService},
		{name: "short response", status: http.StatusOK, body: `{"predictions": []}`, want: domain.ErrExternalService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			_, err := c.Predict(context.Background(), [][]int{{1}})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c, err := NewClient(&ClientConfig{BaseURL: srv.URL, Name: "retweets"})
	require.NoError(t, err)

	_, err = c.Predict(context.Background(), [][]int{{1}})
	assert.ErrorIs(t, err, domain.ErrExternalService)
}

func TestClient_Status(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{name: "available", status: http.StatusOK, body: `{"model_version_status":[{"version":"1","state":"AVAILABLE"}]}`},
		{name: "loading", status: http.StatusOK, body: `{"model_version_status":[{"version":"1","state":"LOADING"}]}`, want: domain.ErrNotFound},
		{name: "unknown model", status: http.StatusNotFound, body: `{"error":"not found"}`, want: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/models/retweets", r.URL.Path)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			err := c.Status(context.Background())
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewClient_RequiresConfig(t *testing.T) {
	_, err := NewClient(&ClientConfig{Name: "retweets"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMAPE(t *testing.T) {
	// rounded predictions 10 and 30 against 10 and 20: (0 + 0.5) / 2 * 100
	got, err := MAPE([]float64{10.4, 29.6}, []int64{10, 20})
	require.NoError(t, err)
	assert.InDelta(t, 25.0, got, 1e-9)

	_, err = MAPE([]float64{1}, []int64{1, 2})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = MAPE([]float64{1}, []int64{0})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRound(t *testing.T) {
	assert.Equal(t, int64(2), Round(2.5))
	assert.Equal(t, int64(4), Round(3.5))
	assert.Equal(t, int64(3), Round(2.6))
}

func splitFrame(n int) *dataset.Frame {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{string(rune('a' + i)), "1" + string(rune('0'+i))}
	}
	return dataset.MustNew([]string{"content", "retweets"}, rows)
}

func TestTrainTestSplit(t *testing.T) {
	f := splitFrame(10)

	train, test, err := TrainTestSplit(f, "content", "retweets", 0.25, 42)
	require.NoError(t, err)
	assert.Len(t, test.Contents, 3)
	assert.Len(t, train.Contents, 7)
	assert.Len(t, test.Labels, 3)

	seen := map[string]bool{}
	for _, c := range append(append([]string{}, train.Contents...), test.Contents...) {
		assert.False(t, seen[c], "duplicate %s", c)
		seen[c] = true
	}
	assert.Len(t, seen, 10)

	again, againTest, err := TrainTestSplit(f, "content", "retweets", 0.25, 42)
	require.NoError(t, err)
	assert.Equal(t, train, again)
	assert.Equal(t, test, againTest)
}

func TestTrainTestSplit_Invalid(t *testing.T) {
	f := splitFrame(4)

	_, _, err := TrainTestSplit(f, "content", "retweets", 1.5, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = TrainTestSplit(f, "missing", "retweets", 0.5, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	bad := dataset.MustNew([]string{"content", "retweets"}, [][]string{{"a", "many"}, {"b", "2"}})
	_, _, err = TrainTestSplit(bad, "content", "retweets", 0.5, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	fractional := dataset.MustNew([]string{"content", "retweets"}, [][]string{{"a", "2.5"}, {"b", "2"}})
	_, _, err = TrainTestSplit(fractional, "content", "retweets", 0.5, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = TrainTestSplit(splitFrame(1), "content", "retweets", 0.5, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTrainTestSplit_TwoRows(t *testing.T) {
	train, test, err := TrainTestSplit(splitFrame(2), "content", "retweets", 0.9, 3)
	require.NoError(t, err)
	assert.Len(t, train.Contents, 1)
	assert.Len(t, test.Contents, 1)
}

func TestSplit_Frame(t *testing.T) {
	s := Split{Contents: []string{"x", "y"}, Labels: []int64{3, 4}}
	f := s.Frame("content", "retweets")
	assert.Equal(t, []string{"content", "retweets"}, f.Columns())
	assert.Equal(t, []string{"y", "4"}, f.Row(1))
}
