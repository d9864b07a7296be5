// Package httpapi wires the candidate supply pipeline's HTTP surface: the
// suggestions endpoint, queue/worker introspection, metrics and health
// checks, and 501 stubs for the conventional CRUD surfaces (auth,
// evaluations, playback settings, history, export) that live outside this
// system's scope.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/is0692vs/otodoki2/internal/queue"
	"github.com/is0692vs/otodoki2/internal/ratelimit"
	"github.com/is0692vs/otodoki2/internal/suggestions"
	"github.com/is0692vs/otodoki2/internal/telemetry/health"
	"github.com/is0692vs/otodoki2/internal/telemetry/metrics"
	"github.com/is0692vs/otodoki2/internal/worker"
)

// WorkerHandle is the subset of *worker.Worker the HTTP layer needs for
// introspection and manual trigger endpoints.
type WorkerHandle interface {
	Stats() worker.Stats
	TriggerRefill(ctx context.Context) bool
}

// Deps are the components the router dispatches to.
type Deps struct {
	Queue       *queue.Queue
	Worker      WorkerHandle
	Suggestions *suggestions.Service
	RateLimiter *ratelimit.Limiter
	Metrics     *metrics.Metrics
	Health      *health.Evaluator

	// DefaultSuggestLimit is used for GET /api/suggestions when the
	// caller omits the limit query parameter. 0 falls back to 10.
	DefaultSuggestLimit int
}

// NewRouter assembles the full HTTP mux.
func NewRouter(deps Deps) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/suggestions", handleSuggestions(deps))
	mux.HandleFunc("GET /queue/stats", handleQueueStats(deps))
	mux.HandleFunc("GET /queue/health", handleQueueHealth(deps))
	mux.HandleFunc("GET /worker/stats", handleWorkerStats(deps))
	mux.HandleFunc("POST /worker/trigger-refill", handleTriggerRefill(deps))
	mux.HandleFunc("GET /healthz", handleHealthz(deps))

	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics.Handler())
	}

	for _, route := range outOfScopeRoutes {
		mux.HandleFunc(route, handleNotImplemented)
	}

	return mux
}

// outOfScopeRoutes are conventional persisted-record endpoints explicitly
// out of scope: interfaces only, never implemented here.
var outOfScopeRoutes = []string{
	"POST /api/auth/login",
	"POST /api/auth/logout",
	"GET /api/evaluations",
	"POST /api/evaluations",
	"GET /api/playback-settings",
	"PUT /api/playback-settings",
	"GET /api/history",
	"GET /api/history/export",
}

func handleNotImplemented(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "not implemented: out of scope for this service", http.StatusNotImplemented)
}

func handleSuggestions(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		if deps.RateLimiter != nil && !deps.RateLimiter.Allow() {
			w.Header().Set("Retry-After", formatRetryAfter(deps.RateLimiter.RetryAfter()))
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			if deps.Metrics != nil {
				deps.Metrics.RateLimitRejected.Inc()
			}
			return
		}

		defaultLimit := deps.DefaultSuggestLimit
		if defaultLimit <= 0 {
			defaultLimit = 10
		}
		limit := parseIntQuery(r, "limit", defaultLimit)
		exclude := parseCSVQuery(r, "exclude")

		resp := deps.Suggestions.GetSuggestions(r.Context(), limit, exclude)

		if deps.Metrics != nil {
			deps.Metrics.ObserveSuggestionsLatency("ok", time.Since(start))
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func handleQueueStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, deps.Queue.Stats())
	}
}

func handleQueueHealth(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := deps.Queue.Stats()
		status := "healthy"
		if stats.Size <= stats.LowWatermark {
			status = "degraded"
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": status, "stats": stats})
	}
}

func handleWorkerStats(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Worker == nil {
			http.Error(w, "worker not configured", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, deps.Worker.Stats())
	}
}

func handleTriggerRefill(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Worker == nil {
			http.Error(w, "worker not configured", http.StatusServiceUnavailable)
			return
		}
		triggered := deps.Worker.TriggerRefill(r.Context())
		writeJSON(w, http.StatusAccepted, map[string]any{"triggered": triggered})
	}
}

func handleHealthz(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Health == nil {
			writeJSON(w, http.StatusOK, map[string]any{"status": "healthy"})
			return
		}
		snap := deps.Health.Evaluate(r.Context())
		status := http.StatusOK
		if snap.Overall == health.Unhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, snap)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseIntQuery(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func parseCSVQuery(r *http.Request, key string) []string {
	v := r.URL.Query().Get(key)
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

func formatRetryAfter(d time.Duration) string {
	secs := int(d.Seconds())
	if secs < 0 {
		secs = 0
	}
	return strconv.Itoa(secs)
}
