package strategies

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChartKeyword(baseURL string) *ChartKeyword {
	s := NewChartKeyword("jp", 10, time.Second)
	s.urlTemplate = baseURL + "/%s/%d"
	return s
}

func TestChartKeywordExtractsDedupedTerms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"feed":{"results":[
			{"name":"Song A","artistName":"Artist X"},
			{"name":"Song B","artistName":"Artist X"}
		]}}`))
	}))
	defer srv.Close()

	s := newTestChartKeyword(srv.URL)
	params, err := s.GenerateParams(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Artist X", "Song A", "Song B"}, params.Terms)
}

func TestChartKeywordFailsOnEmptyFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"feed":{"results":[]}}`))
	}))
	defer srv.Close()

	s := newTestChartKeyword(srv.URL)
	_, err := s.GenerateParams(context.Background())
	assert.ErrorIs(t, err, ErrNoChartTerms)
}
