// Package normalizer turns raw catalog records into canonical Tracks,
// suppressing duplicates seen within a rolling dedupe window and rewriting
// artwork URLs to the high-resolution variant.
package normalizer

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/is0692vs/otodoki2/internal/models"
)

const defaultDedupeWindow = 60 * time.Second

// Normalizer converts models.RawRecord into models.Track, dropping records
// missing required fields and suppressing ids seen within the dedupe window.
type Normalizer struct {
	mu          sync.Mutex
	seen        map[string]struct{}
	lastCleanup time.Time
	window      time.Duration
	now         func() time.Time
}

// New constructs a Normalizer with the given dedupe window. A zero window
// uses the spec default (60s).
func New(window time.Duration) *Normalizer {
	if window <= 0 {
		window = defaultDedupeWindow
	}
	return &Normalizer{
		seen:        make(map[string]struct{}),
		lastCleanup: time.Now(),
		window:      window,
		now:         time.Now,
	}
}

// Normalize processes a batch of raw records in order, returning the Tracks
// that survive field validation and deduplication.
func (n *Normalizer) Normalize(records []models.RawRecord) []models.Track {
	out := make([]models.Track, 0, len(records))
	for _, r := range records {
		if track, ok := n.normalizeOne(r); ok {
			out = append(out, track)
		}
	}
	return out
}

func (n *Normalizer) normalizeOne(r models.RawRecord) (models.Track, bool) {
	if !hasRequiredFields(r) {
		return models.Track{}, false
	}

	id := fmt.Sprintf("%v", r.TrackID)

	n.mu.Lock()
	defer n.mu.Unlock()

	now := n.now()
	if now.Sub(n.lastCleanup) >= n.window {
		n.seen = make(map[string]struct{})
		n.lastCleanup = now
	}

	if _, dup := n.seen[id]; dup {
		return models.Track{}, false
	}

	track := models.Track{
		ID:         id,
		Title:      r.TrackName,
		Artist:     r.ArtistName,
		Album:      r.CollectionName,
		Genre:      r.PrimaryGenreName,
		ArtworkURL: rewriteArtwork(r.ArtworkURL100),
		PreviewURL: r.PreviewURL,
		DurationMs: r.TrackTimeMillis,
	}

	n.seen[id] = struct{}{}

	return track, true
}

func hasRequiredFields(r models.RawRecord) bool {
	if r.TrackID == nil {
		return false
	}
	if id, ok := r.TrackID.(string); ok && strings.TrimSpace(id) == "" {
		return false
	}
	return strings.TrimSpace(r.TrackName) != "" &&
		strings.TrimSpace(r.ArtistName) != "" &&
		strings.TrimSpace(r.PreviewURL) != "" &&
		strings.TrimSpace(r.ArtworkURL100) != ""
}

func rewriteArtwork(url string) string {
	return strings.Replace(url, "100x100", "600x600", 1)
}
