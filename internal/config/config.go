// Package config loads process configuration from the environment (with
// optional .env file support), applying the defaults the spec names for
// every recognized variable.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the fully-resolved runtime configuration, assembled once at
// startup and threaded through the composition root via explicit
// constructor arguments (no package-level globals).
type Config struct {
	ListenAddr string

	QueueMaxCapacity  int
	QueueDequeueN     int
	QueueLowWatermark int

	MinThreshold   int
	BatchSize      int
	MaxCap         int
	PollIntervalMS int
	HTTPTimeoutS   float64
	RetryMax       int
	Country        string

	SearchStrategy string
	ItunesTerms    []string
	SearchGenres   []string
	SearchYears    []string

	SuggestionsDefaultLimit int
	SuggestionsMaxLimit     int
	RateLimitPerSec         int

	GeminiAPIKey    string
	GeminiModel     string
	GeminiTemp      float64
	GeminiTopP      float64
	GeminiTopK      int
	GeminiMaxTokens int

	StrategyConfigPath string
}

// Load reads OTODOKI_ENV_FILE (if set) via godotenv, then resolves every
// recognized environment variable, falling back to spec-mandated defaults
// when unset or malformed.
func Load() (Config, error) {
	if path := os.Getenv("OTODOKI_ENV_FILE"); path != "" {
		if err := godotenv.Load(path); err != nil {
			return Config{}, err
		}
	} else {
		_ = godotenv.Load() // best-effort; a missing .env is not an error
	}

	cfg := Config{
		ListenAddr: getString("OTODOKI_LISTEN_ADDR", ":8080"),

		QueueMaxCapacity:  getInt("QUEUE_MAX_CAPACITY", 1000),
		QueueDequeueN:     getInt("QUEUE_DEQUEUE_DEFAULT_N", 10),
		QueueLowWatermark: getInt("QUEUE_LOW_WATERMARK", 100),

		MinThreshold:   getInt("OTODOKI_MIN_THRESHOLD", 30),
		BatchSize:      getInt("OTODOKI_BATCH_SIZE", 30),
		MaxCap:         getInt("OTODOKI_MAX_CAP", 300),
		PollIntervalMS: getInt("OTODOKI_POLL_INTERVAL_MS", 1500),
		HTTPTimeoutS:   getFloat("OTODOKI_HTTP_TIMEOUT_S", 5.0),
		RetryMax:       getInt("OTODOKI_RETRY_MAX", 3),
		Country:        getString("OTODOKI_COUNTRY", "JP"),

		SearchStrategy: getString("OTODOKI_SEARCH_STRATEGY", "gemini_keyword"),
		ItunesTerms:    getCSV("OTODOKI_ITUNES_TERMS"),
		SearchGenres:   getCSV("OTODOKI_SEARCH_GENRES"),
		SearchYears:    getCSV("OTODOKI_SEARCH_YEARS"),

		SuggestionsDefaultLimit: getInt("OTODOKI_SUGGESTIONS_DEFAULT_LIMIT", 10),
		SuggestionsMaxLimit:     getInt("OTODOKI_SUGGESTIONS_MAX_LIMIT", 50),
		RateLimitPerSec:         getInt("OTODOKI_RATE_LIMIT_PER_SEC", 20),

		GeminiAPIKey:    getString("GEMINI_API_KEY", ""),
		GeminiModel:     getString("GEMINI_MODEL", "gemini-1.5-flash"),
		GeminiTemp:      getFloat("GEMINI_TEMPERATURE", 0.9),
		GeminiTopP:      getFloat("GEMINI_TOP_P", 0.95),
		GeminiTopK:      getInt("GEMINI_TOP_K", 40),
		GeminiMaxTokens: getInt("GEMINI_MAX_TOKENS", 256),

		StrategyConfigPath: getString("OTODOKI_STRATEGY_CONFIG_PATH", ""),
	}

	return cfg, nil
}

// PollInterval is PollIntervalMS as a time.Duration.
func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMS) * time.Millisecond
}

// HTTPTimeout is HTTPTimeoutS as a time.Duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutS * float64(time.Second))
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

func getCSV(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
