package worker

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/is0692vs/otodoki2/internal/catalog"
	"github.com/is0692vs/otodoki2/internal/keywordbuffer"
	"github.com/is0692vs/otodoki2/internal/models"
	"github.com/is0692vs/otodoki2/internal/normalizer"
	"github.com/is0692vs/otodoki2/internal/queue"
	"github.com/is0692vs/otodoki2/internal/strategies"
)

type staticStrategy struct{ term string }

func (s *staticStrategy) GenerateParams(_ context.Context) (strategies.Params, error) {
	p := strategies.Params{Term: s.term}
	p.Normalize()
	return p, nil
}

func newTestWorker(t *testing.T, searchURL string) (*Worker, *queue.Queue) {
	t.Helper()
	q := queue.New(300, 30, nil)
	kb := keywordbuffer.New(20)
	reg := strategies.NewRegistry()
	reg.Register("static", func() strategies.Strategy { return &staticStrategy{term: "rock"} })
	rotator := strategies.NewRotator(reg.Build([]string{"static"}))
	cat := catalog.New(catalog.Config{BaseURL: searchURL})
	norm := normalizer.New(time.Minute)

	cfg := Config{MinThreshold: 30, BatchSize: 5, MaxCap: 300, PollInterval: 10 * time.Millisecond, InterAttemptGap: time.Millisecond}
	w := New(cfg, q, kb, rotator, cat, norm, nil)
	return w, q
}

func TestAttemptRefillFillsQueueFromCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":[
			{"trackId":1,"trackName":"A","artistName":"Artist","previewUrl":"http://p","artworkUrl100":"http://a/100x100bb.jpg"},
			{"trackId":2,"trackName":"B","artistName":"Artist","previewUrl":"http://p","artworkUrl100":"http://a/100x100bb.jpg"}
		]}`))
	}))
	defer srv.Close()

	w, q := newTestWorker(t, srv.URL)
	ok := w.attemptRefill(context.Background())
	require.True(t, ok)
	assert.Equal(t, 2, q.Size())
}

func TestAttemptRefillReturnsTrueWhenQueueAlreadyFull(t *testing.T) {
	w, q := newTestWorker(t, "http://unused")
	w.cfg.MaxCap = 1
	q.Enqueue([]models.Track{{ID: "1", Title: "A", Artist: "B"}})
	assert.True(t, w.attemptRefill(context.Background()))
}

func TestTriggerRefillRejectsWhenAlreadyInFlight(t *testing.T) {
	w, _ := newTestWorker(t, "http://unused")
	w.refillSlot = make(chan struct{}) // drain to simulate held slot

	ok := w.TriggerRefill(context.Background())
	assert.False(t, ok)
}

func TestCircuitTripsAfterMaxFailures(t *testing.T) {
	w, _ := newTestWorker(t, "http://unused")
	w.cfg.MaxFailures = 2
	fixedNow := time.Now()
	w.now = func() time.Time { return fixedNow }

	w.recordOutcome(false)
	w.recordOutcome(false)

	tripped, remaining := w.isTripped()
	assert.True(t, tripped)
	assert.Greater(t, remaining, time.Duration(0))
}

func TestCircuitResetsOnSuccess(t *testing.T) {
	w, _ := newTestWorker(t, "http://unused")
	w.cfg.MaxFailures = 2
	w.recordOutcome(false)
	w.recordOutcome(false)
	w.recordOutcome(true)

	tripped, _ := w.isTripped()
	assert.False(t, tripped)
}
