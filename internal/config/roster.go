package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StrategyRoster is an optional YAML override of which strategies
// participate in rotation, and in what order, beyond the single
// OTODOKI_SEARCH_STRATEGY env var.
type StrategyRoster struct {
	Strategies []string `yaml:"strategies"`
	Artists    []string `yaml:"artists"`
	Genres     []string `yaml:"genres"`
	Years      []string `yaml:"years"`
}

// LoadStrategyRoster reads path as YAML. A missing path is not an error:
// it returns a zero-value roster so callers fall back to env-derived
// defaults.
func LoadStrategyRoster(path string) (StrategyRoster, error) {
	if path == "" {
		return StrategyRoster{}, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return StrategyRoster{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return StrategyRoster{}, fmt.Errorf("config: read strategy roster: %w", err)
	}
	var roster StrategyRoster
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return StrategyRoster{}, fmt.Errorf("config: parse strategy roster: %w", err)
	}
	return roster, nil
}
