// Package worker implements the background replenishment loop that keeps
// the track queue topped up: it pulls search parameters from the strategy
// rotator (via a keyword buffer that amortizes rotator invocations), fetches
// and normalizes catalog results, and enqueues them, all behind a circuit
// breaker that backs off after repeated failures.
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/is0692vs/otodoki2/internal/catalog"
	"github.com/is0692vs/otodoki2/internal/keywordbuffer"
	"github.com/is0692vs/otodoki2/internal/normalizer"
	"github.com/is0692vs/otodoki2/internal/queue"
	"github.com/is0692vs/otodoki2/internal/strategies"
	"github.com/is0692vs/otodoki2/internal/telemetry/logging"
)

// Config controls the worker's pacing and sizing.
type Config struct {
	MinThreshold    int
	BatchSize       int
	MaxCap          int
	PollInterval    time.Duration
	MaxFailures     int
	RefillAttempts  int
	InterAttemptGap time.Duration
	SearchLimit     int
}

func (c *Config) setDefaults() {
	if c.MinThreshold <= 0 {
		c.MinThreshold = 30
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 30
	}
	if c.MaxCap <= 0 {
		c.MaxCap = 300
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 1500 * time.Millisecond
	}
	if c.MaxFailures <= 0 {
		c.MaxFailures = 5
	}
	if c.RefillAttempts <= 0 {
		c.RefillAttempts = 3
	}
	if c.InterAttemptGap <= 0 {
		c.InterAttemptGap = 2 * time.Second
	}
	if c.SearchLimit <= 0 {
		c.SearchLimit = 500
	}
}

// circuitState tracks consecutive attempt_refill failures.
type circuitState struct {
	consecutiveFailures int
	lastFailureAt       time.Time
}

// Worker is the long-running replenishment loop. Construct with New and
// start it with Run in its own goroutine.
type Worker struct {
	cfg        Config
	queue      *queue.Queue
	keywords   *keywordbuffer.Buffer
	rotator    *strategies.Rotator
	catalog    *catalog.Client
	normalizer *normalizer.Normalizer
	logger     logging.Logger

	refillSlot chan struct{} // capacity 1; held <=> empty

	mu      sync.Mutex
	circuit circuitState
	running atomic.Bool

	now func() time.Time
}

// New constructs a Worker. logger defaults to a wrapper over slog.Default()
// when nil.
func New(
	cfg Config,
	q *queue.Queue,
	kb *keywordbuffer.Buffer,
	rotator *strategies.Rotator,
	cat *catalog.Client,
	norm *normalizer.Normalizer,
	logger logging.Logger,
) *Worker {
	cfg.setDefaults()
	if logger == nil {
		logger = logging.New(nil)
	}
	w := &Worker{
		cfg:        cfg,
		queue:      q,
		keywords:   kb,
		rotator:    rotator,
		catalog:    cat,
		normalizer: norm,
		logger:     logger,
		refillSlot: make(chan struct{}, 1),
		now:        time.Now,
	}
	w.refillSlot <- struct{}{}
	return w
}

// Run blocks, executing the poll loop until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	w.running.Store(true)
	defer w.running.Store(false)

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		sleep := w.cfg.PollInterval
		if tripped, remaining := w.isTripped(); tripped {
			if remaining > sleep {
				sleep = remaining
			}
			if !w.sleepCtx(ctx, sleep) {
				return
			}
			continue
		}

		size := w.queue.Size()
		threshold := int(0.7 * float64(w.cfg.MaxCap))
		if size >= threshold {
			if !w.sleepCtx(ctx, sleep) {
				return
			}
			continue
		}

		if w.acquireRefillSlot() {
			ok := w.attemptRefill(ctx)
			w.releaseRefillSlot()
			w.recordOutcome(ok)
		}

		if !w.sleepCtx(ctx, sleep) {
			return
		}
	}
}

// TriggerRefill attempts a single, non-blocking one-shot refill. It returns
// false immediately if a refill (periodic or another one-shot) is already
// in progress.
func (w *Worker) TriggerRefill(ctx context.Context) bool {
	if !w.acquireRefillSlot() {
		return false
	}
	go func() {
		defer w.releaseRefillSlot()
		ok := w.attemptRefill(ctx)
		w.recordOutcome(ok)
	}()
	return true
}

func (w *Worker) acquireRefillSlot() bool {
	select {
	case <-w.refillSlot:
		return true
	default:
		return false
	}
}

func (w *Worker) releaseRefillSlot() {
	w.refillSlot <- struct{}{}
}

// attemptRefill fetches and enqueues up to the batch need, making up to
// cfg.RefillAttempts tries. Returns true if the queue already has no room
// to fill, otherwise true iff at least one track was accepted.
func (w *Worker) attemptRefill(ctx context.Context) bool {
	size := w.queue.Size()
	need := w.cfg.BatchSize
	if room := w.cfg.MaxCap - size; room < need {
		need = room
	}
	if need <= 0 {
		return true
	}

	filled := 0
	lowWatermark := int(0.7 * float64(w.keywords.Capacity()))

	for attempts := 0; attempts < w.cfg.RefillAttempts && filled < need; attempts++ {
		if w.keywords.Size() <= lowWatermark {
			params, err := w.rotator.Next(ctx)
			if err != nil {
				w.logger.WarnCtx(ctx, "replenishment: strategy rotator exhausted", "error", err)
				continue
			}
			if params.Term != "" {
				w.keywords.Push(params.Term)
			}
			w.keywords.PushAll(params.Terms)
		}

		term, ok := w.keywords.Pop()
		if !ok {
			continue
		}

		records, err := w.catalog.Search(ctx, catalog.Params{Term: term}, w.cfg.SearchLimit)
		if err != nil {
			w.logger.WarnCtx(ctx, "replenishment: catalog search failed", "term", term, "error", err)
			continue
		}

		tracks := w.normalizer.Normalize(records)
		remaining := need - filled
		if remaining < len(tracks) {
			tracks = tracks[:remaining]
		}
		filled += w.queue.Enqueue(tracks)

		if filled < need {
			if !w.sleepCtx(ctx, w.cfg.InterAttemptGap) {
				return filled > 0
			}
		}
	}

	return filled > 0
}

func (w *Worker) recordOutcome(success bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if success {
		w.circuit.consecutiveFailures = 0
		return
	}
	w.circuit.consecutiveFailures++
	w.circuit.lastFailureAt = w.now()
}

// isTripped reports whether the circuit breaker is currently open, and if
// so, how much longer the caller should wait before checking again.
func (w *Worker) isTripped() (bool, time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.circuit.consecutiveFailures < w.cfg.MaxFailures {
		return false, 0
	}
	tier := w.circuit.consecutiveFailures - w.cfg.MaxFailures
	if tier > 5 {
		tier = 5
	}
	backoff := time.Duration(1<<uint(tier)) * 60 * time.Second
	elapsed := w.now().Sub(w.circuit.lastFailureAt)
	if elapsed >= backoff {
		return false, 0
	}
	return true, backoff - elapsed
}

func (w *Worker) sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Stats is a point-in-time snapshot of worker state for introspection.
type Stats struct {
	Running             bool                              `json:"running"`
	ConsecutiveFailures int                               `json:"consecutive_failures"`
	LastFailureAt       time.Time                         `json:"last_failure_at"`
	CircuitTripped      bool                              `json:"circuit_tripped"`
	QueueSize           int                               `json:"queue_size"`
	KeywordBufferSize   int                               `json:"keyword_buffer_size"`
	StrategyFailures    map[string]strategies.FailureInfo `json:"strategy_failures"`
}

// MinThreshold returns the configured minimum queue size below which the
// suggestions service should request a one-shot refill.
func (w *Worker) MinThreshold() int { return w.cfg.MinThreshold }

// Stats returns a snapshot of current worker/circuit state.
func (w *Worker) Stats() Stats {
	tripped, _ := w.isTripped()
	w.mu.Lock()
	cf := w.circuit.consecutiveFailures
	lf := w.circuit.lastFailureAt
	w.mu.Unlock()
	return Stats{
		Running:             w.running.Load(),
		ConsecutiveFailures: cf,
		LastFailureAt:       lf,
		CircuitTripped:      tripped,
		QueueSize:           w.queue.Size(),
		KeywordBufferSize:   w.keywords.Size(),
		StrategyFailures:    w.rotator.Snapshot(),
	}
}
