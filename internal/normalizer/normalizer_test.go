package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/is0692vs/otodoki2/internal/models"
)

func rawRecord(id any) models.RawRecord {
	return models.RawRecord{
		TrackID:       id,
		TrackName:     "Song",
		ArtistName:    "Artist",
		PreviewURL:    "https://example.com/preview.m4a",
		ArtworkURL100: "https://example.com/art/100x100bb.jpg",
	}
}

func TestNormalizeDropsIncompleteRecords(t *testing.T) {
	n := New(time.Minute)
	tracks := n.Normalize([]models.RawRecord{
		{TrackID: 1, TrackName: "Song"}, // missing artist/preview/artwork
	})
	assert.Empty(t, tracks)
}

func TestNormalizeRewritesArtworkURL(t *testing.T) {
	n := New(time.Minute)
	tracks := n.Normalize([]models.RawRecord{rawRecord(1001)})
	require.Len(t, tracks, 1)
	assert.Equal(t, "https://example.com/art/600x600bb.jpg", tracks[0].ArtworkURL)
	assert.Equal(t, "1001", tracks[0].ID)
}

func TestNormalizeSuppressesDuplicateIDsWithinWindow(t *testing.T) {
	n := New(time.Minute)
	first := n.Normalize([]models.RawRecord{rawRecord(1001)})
	second := n.Normalize([]models.RawRecord{rawRecord(1001)})
	require.Len(t, first, 1)
	assert.Empty(t, second)
}

func TestNormalizeClearsDedupeAfterWindowElapses(t *testing.T) {
	n := New(10 * time.Millisecond)
	first := n.Normalize([]models.RawRecord{rawRecord(1001)})
	require.Len(t, first, 1)

	time.Sleep(20 * time.Millisecond)
	second := n.Normalize([]models.RawRecord{rawRecord(1001)})
	require.Len(t, second, 1, "dedupe set should have been cleared wholesale")
}

func TestNormalizeIsIdempotentWithinWindowForIdenticalRecord(t *testing.T) {
	n := New(time.Minute)
	rec := rawRecord(42)
	n.Normalize([]models.RawRecord{rec})
	got := n.Normalize([]models.RawRecord{rec})
	assert.Empty(t, got)
}
