// Package models holds the data shapes shared across the candidate supply
// pipeline: the Track itself plus the small value objects each stage
// produces (raw catalog records, search parameters, stats snapshots).
package models

import "strings"

// Track is a single playable candidate surfaced to clients for swipe-style
// evaluation. Title/Artist/ID must be present before a Track is allowed into
// the Track Queue; Playable reports whether PreviewURL is non-empty.
type Track struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
	Album      string `json:"album,omitempty"`
	Genre      string `json:"genre,omitempty"`
	ArtworkURL string `json:"artwork_url,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
	DurationMs int    `json:"duration_ms,omitempty"`
}

// Valid reports whether the required (id, title, artist) triple is present.
func (t Track) Valid() bool {
	return strings.TrimSpace(t.ID) != "" &&
		strings.TrimSpace(t.Title) != "" &&
		strings.TrimSpace(t.Artist) != ""
}

// Playable reports whether this Track carries a usable preview.
func (t Track) Playable() bool {
	return strings.TrimSpace(t.PreviewURL) != ""
}

// RawRecord is a catalog search result before normalization, keyed exactly
// as the iTunes Search API names its fields.
type RawRecord struct {
	TrackID          any    `json:"trackId"`
	TrackName        string `json:"trackName"`
	ArtistName       string `json:"artistName"`
	PreviewURL       string `json:"previewUrl"`
	ArtworkURL100    string `json:"artworkUrl100"`
	CollectionName   string `json:"collectionName"`
	TrackTimeMillis  int    `json:"trackTimeMillis"`
	PrimaryGenreName string `json:"primaryGenreName"`
}

// QueueStats has the same JSON shape as queue.Stats, which is what
// GET /queue/stats serves.
type QueueStats struct {
	Size         int `json:"size"`
	Capacity     int `json:"capacity"`
	Enqueued     int `json:"enqueued"`
	Dequeued     int `json:"dequeued"`
	Dropped      int `json:"dropped"`
	LowWatermark int `json:"low_watermark"`
}
