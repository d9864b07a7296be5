package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchReturnsRecords(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "music", r.URL.Query().Get("media"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[{"trackId":1,"trackName":"Song","artistName":"Artist","previewUrl":"http://p","artworkUrl100":"http://a/100x100bb.jpg"}]}`))
	}))
	defer srv.Close()

	c := New(Config{Country: "JP", Lang: "ja_jp", BaseURL: srv.URL})
	records, err := c.Search(context.Background(), Params{Term: "rock"}, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Song", records[0].TrackName)
}

func Test4xxReturnsEmptyResultNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, RetryMax: 2})
	records, err := c.Search(context.Background(), Params{Term: "x"}, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func Test5xxIsRetriedThenFails(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, RetryMax: 2})
	start := time.Now()
	_, err := c.Search(context.Background(), Params{Term: "x"}, 10)
	require.Error(t, err)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(3))
	assert.Greater(t, time.Since(start), 700*time.Millisecond)
}

func TestSearchRetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL, RetryMax: 2})
	records, err := c.Search(context.Background(), Params{Term: "x"}, 10)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}
