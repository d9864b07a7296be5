package strategies

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsNormalizeTrimsAndValidates(t *testing.T) {
	p := Params{Term: "  rock  "}
	assert.True(t, p.Normalize())
	assert.Equal(t, "rock", p.Term)

	p = Params{Terms: []string{" a ", "", "b"}}
	assert.True(t, p.Normalize())
	assert.Equal(t, []string{"a", "b"}, p.Terms)

	p = Params{Terms: []string{"  ", ""}}
	assert.False(t, p.Normalize())
}

func TestRegistryBuildSkipsUnknownNames(t *testing.T) {
	reg := NewRegistry()
	reg.Register("random", func() Strategy { return NewRandomKeyword() })

	built := reg.Build([]string{"random", "nonexistent"})
	assert.Len(t, built, 1)
	assert.Equal(t, "random", built[0].name)
}
