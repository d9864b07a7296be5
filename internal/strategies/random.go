package strategies

import (
	"context"
	"math/rand"
)

// randomKeywordTerms mirrors the bilingual static term list the source keeps
// for its random-keyword strategy: broad genre and mood words likely to
// surface a wide catalog slice.
var randomKeywordTerms = []string{
	"J-POP", "ロック", "アニメ", "シティポップ", "バラード",
	"pop", "rock", "jazz", "indie", "anime",
	"love", "夏", "ドライブ", "chill", "acoustic",
}

// RandomKeyword picks a uniformly random term from a static list on every
// call. It never fails.
type RandomKeyword struct {
	terms []string
	rng   *rand.Rand
}

// NewRandomKeyword constructs a RandomKeyword strategy using the package
// default term list.
func NewRandomKeyword() *RandomKeyword {
	return &RandomKeyword{
		terms: randomKeywordTerms,
		rng:   rand.New(rand.NewSource(rand.Int63())),
	}
}

func (s *RandomKeyword) GenerateParams(_ context.Context) (Params, error) {
	term := s.terms[s.rng.Intn(len(s.terms))]
	p := Params{Term: term}
	p.Normalize()
	return p, nil
}
