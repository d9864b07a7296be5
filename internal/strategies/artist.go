package strategies

import (
	"context"
	"math/rand"
)

// defaultArtists is the fallback roster used when no configured artist list
// is supplied, biased toward J-POP per the source's default.
var defaultArtists = []string{"J-POP", "米津玄師", "YOASOBI", "あいみょん", "King Gnu"}

// ArtistSearch rotates through a configured (or default) list of artist
// names, issuing a search scoped to the musicTrack entity (no attribute).
type ArtistSearch struct {
	artists []string
	rng     *rand.Rand
}

// NewArtistSearch constructs an ArtistSearch. An empty or nil list falls
// back to defaultArtists.
func NewArtistSearch(artists []string) *ArtistSearch {
	if len(artists) == 0 {
		artists = defaultArtists
	}
	return &ArtistSearch{artists: artists, rng: rand.New(rand.NewSource(rand.Int63()))}
}

func (s *ArtistSearch) GenerateParams(_ context.Context) (Params, error) {
	name := s.artists[s.rng.Intn(len(s.artists))]
	p := Params{Term: name, Entity: "musicTrack"}
	p.Normalize()
	return p, nil
}
