package strategies

import (
	"context"
	"math/rand"
)

// defaultGenres mirrors the source's fallback genre roster, anchored on
// J-POP when no configured list is supplied.
var defaultGenres = []string{"J-POP", "ロック", "アニメ", "ヒップホップ", "ジャズ"}

// GenreSearch rotates through a configured (or default) list of genre
// names, issuing an attribute-scoped search against genreIndex.
type GenreSearch struct {
	genres []string
	rng    *rand.Rand
}

// NewGenreSearch constructs a GenreSearch. An empty or nil list falls back
// to defaultGenres.
func NewGenreSearch(genres []string) *GenreSearch {
	if len(genres) == 0 {
		genres = defaultGenres
	}
	return &GenreSearch{genres: genres, rng: rand.New(rand.NewSource(rand.Int63()))}
}

func (s *GenreSearch) GenerateParams(_ context.Context) (Params, error) {
	genre := s.genres[s.rng.Intn(len(s.genres))]
	p := Params{Term: genre, Entity: "song", Attribute: "genreIndex"}
	p.Normalize()
	return p, nil
}
