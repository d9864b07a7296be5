// Command otodokid is the composition root for the candidate supply
// pipeline: it loads configuration, wires the track queue, replenishment
// worker, search strategies, and suggestions service together, and serves
// them over HTTP until an interrupt asks for graceful shutdown.
package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/is0692vs/otodoki2/internal/catalog"
	"github.com/is0692vs/otodoki2/internal/config"
	"github.com/is0692vs/otodoki2/internal/httpapi"
	"github.com/is0692vs/otodoki2/internal/keywordbuffer"
	"github.com/is0692vs/otodoki2/internal/llm"
	"github.com/is0692vs/otodoki2/internal/normalizer"
	"github.com/is0692vs/otodoki2/internal/queue"
	"github.com/is0692vs/otodoki2/internal/ratelimit"
	"github.com/is0692vs/otodoki2/internal/strategies"
	"github.com/is0692vs/otodoki2/internal/suggestions"
	"github.com/is0692vs/otodoki2/internal/telemetry/health"
	"github.com/is0692vs/otodoki2/internal/telemetry/logging"
	"github.com/is0692vs/otodoki2/internal/telemetry/metrics"
	"github.com/is0692vs/otodoki2/internal/worker"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	corrLogger := logging.New(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	roster, err := config.LoadStrategyRoster(cfg.StrategyConfigPath)
	if err != nil {
		log.Fatalf("load strategy roster: %v", err)
	}

	q := queue.New(cfg.QueueMaxCapacity, cfg.QueueLowWatermark, logger)
	kb := keywordbuffer.New(cfg.BatchSize)

	registry := buildRegistry(cfg, roster)
	names := strategyNames(cfg, roster)
	rotator := strategies.NewRotator(registry.Build(names))

	catClient := catalog.New(catalog.Config{
		Country:     cfg.Country,
		HTTPTimeout: cfg.HTTPTimeout(),
		RetryMax:    cfg.RetryMax,
	})
	norm := normalizer.New(time.Hour)

	m := metrics.New()
	rotator.OnFailure = func(strategyName string, _ error) {
		m.StrategyFailures.WithLabelValues(strategyName).Inc()
	}

	w := worker.New(worker.Config{
		MinThreshold: cfg.MinThreshold,
		BatchSize:    cfg.BatchSize,
		MaxCap:       cfg.MaxCap,
		PollInterval: cfg.PollInterval(),
	}, q, kb, rotator, catClient, norm, corrLogger)

	svc := suggestions.New(q, w, cfg.SuggestionsMaxLimit, corrLogger)

	limiter := ratelimit.New(cfg.RateLimitPerSec, time.Second)

	evaluator := health.NewEvaluator(5 * time.Second)
	evaluator.Register("queue", queueProbe(q))
	evaluator.Register("worker", workerProbe(w))

	router := httpapi.NewRouter(httpapi.Deps{
		Queue:               q,
		Worker:              w,
		Suggestions:         svc,
		RateLimiter:         limiter,
		Metrics:             m,
		Health:              evaluator,
		DefaultSuggestLimit: cfg.SuggestionsDefaultLimit,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 2)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logger.Info("signal received; shutting down")
		cancel()
		<-sigCh
		logger.Error("second signal received; forcing exit")
		os.Exit(1)
	}()

	go w.Run(ctx)
	go syncMetrics(ctx, q, w, m)

	srv := &http.Server{Addr: cfg.ListenAddr, Handler: router}
	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("otodokid listening", "addr", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("serve: %v", err)
	}
}

// buildRegistry registers every known strategy constructor, preferring
// roster-supplied term lists over config CSVs when present.
func buildRegistry(cfg config.Config, roster config.StrategyRoster) *strategies.Registry {
	artists := firstNonEmpty(roster.Artists, cfg.ItunesTerms)
	genres := firstNonEmpty(roster.Genres, cfg.SearchGenres)
	years := firstNonEmpty(roster.Years, cfg.SearchYears)

	registry := strategies.NewRegistry()
	registry.Register("random_keyword", func() strategies.Strategy {
		return strategies.NewRandomKeyword()
	})
	registry.Register("artist_search", func() strategies.Strategy {
		return strategies.NewArtistSearch(artists)
	})
	registry.Register("genre_search", func() strategies.Strategy {
		return strategies.NewGenreSearch(genres)
	})
	registry.Register("release_year_search", func() strategies.Strategy {
		return strategies.NewReleaseYearSearch(years)
	})
	registry.Register("chart_keyword", func() strategies.Strategy {
		return strategies.NewChartKeyword(cfg.Country, 50, cfg.HTTPTimeout())
	})
	if cfg.GeminiAPIKey != "" {
		llmClient := llm.New(llm.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel, Timeout: cfg.HTTPTimeout()})
		registry.Register("gemini_keyword", func() strategies.Strategy {
			return strategies.NewLLMKeyword(llmClient, 2*time.Second)
		})
	}
	return registry
}

// strategyNames resolves the active strategy roster from config/roster,
// falling back to the full built-in set when neither names one.
func strategyNames(cfg config.Config, roster config.StrategyRoster) []string {
	if len(roster.Strategies) > 0 {
		return roster.Strategies
	}
	if cfg.SearchStrategy != "" {
		return []string{cfg.SearchStrategy, "random_keyword", "artist_search", "genre_search", "release_year_search", "chart_keyword"}
	}
	return []string{"random_keyword", "artist_search", "genre_search", "release_year_search", "chart_keyword"}
}

func firstNonEmpty(a, b []string) []string {
	if len(a) > 0 {
		return a
	}
	return b
}

func queueProbe(q *queue.Queue) health.ProbeFunc {
	return func(ctx context.Context) health.ProbeResult {
		stats := q.Stats()
		status := health.Healthy
		if stats.Size <= stats.LowWatermark {
			status = health.Degraded
		}
		return health.ProbeResult{Name: "queue", Status: status, Metadata: map[string]interface{}{"size": stats.Size}}
	}
}

// syncMetrics polls the queue and worker every second and mirrors their
// counters/gauges into Prometheus, translating the queue's monotonic totals
// into per-tick deltas for the Counter collectors.
func syncMetrics(ctx context.Context, q *queue.Queue, w *worker.Worker, m *metrics.Metrics) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastEnqueued, lastDequeued, lastDropped int
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			qs := q.Stats()
			m.QueueSize.Set(float64(qs.Size))
			m.QueueEnqueued.Add(float64(qs.Enqueued - lastEnqueued))
			m.QueueDequeued.Add(float64(qs.Dequeued - lastDequeued))
			m.QueueDropped.Add(float64(qs.Dropped - lastDropped))
			lastEnqueued, lastDequeued, lastDropped = qs.Enqueued, qs.Dequeued, qs.Dropped

			ws := w.Stats()
			m.KeywordBufferSize.Set(float64(ws.KeywordBufferSize))
			if ws.CircuitTripped {
				m.CircuitOpen.Set(1)
			} else {
				m.CircuitOpen.Set(0)
			}
		}
	}
}

func workerProbe(w *worker.Worker) health.ProbeFunc {
	return func(ctx context.Context) health.ProbeResult {
		stats := w.Stats()
		status := health.Healthy
		if stats.CircuitTripped {
			status = health.Unhealthy
		}
		return health.ProbeResult{Name: "worker", Status: status, Metadata: map[string]interface{}{"consecutive_failures": stats.ConsecutiveFailures}}
	}
}
