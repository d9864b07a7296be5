package strategies

import (
	"context"
	"math/rand"
)

// defaultYears mirrors the source's fallback release-year roster when no
// configured list is supplied.
var defaultYears = []string{"1990", "1995", "2000", "2005", "2010", "2015", "2020"}

// ReleaseYearSearch picks one configured release year and searches the
// catalog for that year scoped to the song entity and the releaseYearTerm
// attribute, mirroring the source's release-year strategy
// (`random.choice(self.years)`).
type ReleaseYearSearch struct {
	years []string
	rng   *rand.Rand
}

// NewReleaseYearSearch constructs a ReleaseYearSearch. An empty or nil list
// falls back to defaultYears.
func NewReleaseYearSearch(years []string) *ReleaseYearSearch {
	if len(years) == 0 {
		years = defaultYears
	}
	return &ReleaseYearSearch{years: years, rng: rand.New(rand.NewSource(rand.Int63()))}
}

func (s *ReleaseYearSearch) GenerateParams(_ context.Context) (Params, error) {
	year := s.years[s.rng.Intn(len(s.years))]
	p := Params{Term: year, Entity: "song", Attribute: "releaseYearTerm"}
	p.Normalize()
	return p, nil
}
