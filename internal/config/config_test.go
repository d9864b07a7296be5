package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppliesDefaultsWhenUnset(t *testing.T) {
	t.Setenv("OTODOKI_ENV_FILE", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.QueueMaxCapacity)
	assert.Equal(t, 30, cfg.MinThreshold)
	assert.Equal(t, "JP", cfg.Country)
	assert.Equal(t, 50, cfg.SuggestionsMaxLimit)
}

func TestLoadReadsOverridesFromEnv(t *testing.T) {
	t.Setenv("QUEUE_MAX_CAPACITY", "2000")
	t.Setenv("OTODOKI_COUNTRY", "US")
	t.Setenv("OTODOKI_ITUNES_TERMS", "rock, pop ,jazz")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.QueueMaxCapacity)
	assert.Equal(t, "US", cfg.Country)
	assert.Equal(t, []string{"rock", "pop", "jazz"}, cfg.ItunesTerms)
}

func TestLoadFallsBackOnMalformedInt(t *testing.T) {
	t.Setenv("QUEUE_MAX_CAPACITY", "not-a-number")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.QueueMaxCapacity)
}

func TestLoadStrategyRosterReturnsZeroValueForMissingFile(t *testing.T) {
	roster, err := LoadStrategyRoster("/nonexistent/path.yaml")
	require.NoError(t, err)
	assert.Empty(t, roster.Strategies)
}
