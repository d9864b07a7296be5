package strategies

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/is0692vs/otodoki2/internal/catalog"
)

// Rotator cycles through a fixed set of named strategies, skipping any that
// are in cooldown, and tracks consecutive-failure counts per strategy to
// compute that cooldown. A strategy that errors out with a quota-class
// error (catalog.QuotaExceededError) jumps straight to failures=2, since a
// single quota rejection already signals the backend is exhausted; any
// other error increments failures by one. A success resets the counter to
// zero.
type Rotator struct {
	mu          sync.Mutex
	entries     []namedStrategy
	cursor      int
	failures    map[string]int
	cooldown    map[string]time.Time
	lastFailure map[string]time.Time
	now         func() time.Time

	// OnFailure, if set, is called whenever a strategy attempt fails,
	// after cooldown bookkeeping. Intended for metrics reporting.
	OnFailure func(strategyName string, err error)
}

// NewRotator constructs a Rotator over entries in the given order. The
// caller obtains entries via Registry.Build.
func NewRotator(entries []namedStrategy) *Rotator {
	return &Rotator{
		entries:     entries,
		failures:    make(map[string]int),
		cooldown:    make(map[string]time.Time),
		lastFailure: make(map[string]time.Time),
		now:         time.Now,
	}
}

// Next advances through the roster, skipping strategies currently in
// cooldown, and returns the params produced by the first strategy that
// succeeds. It tries at most len(entries) strategies before giving up.
func (r *Rotator) Next(ctx context.Context) (Params, error) {
	r.mu.Lock()
	n := len(r.entries)
	r.mu.Unlock()
	if n == 0 {
		return Params{}, fmt.Errorf("strategies: rotator has no strategies registered")
	}

	var lastErr error
	for i := 0; i < n; i++ {
		entry, ok := r.takeNext()
		if !ok {
			continue
		}
		params, err := entry.strategy.GenerateParams(ctx)
		if err == nil {
			r.recordSuccess(entry.name)
			return params, nil
		}
		lastErr = err
		r.recordFailure(entry.name, err)
		if r.OnFailure != nil {
			r.OnFailure(entry.name, err)
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("strategies: all strategies are in cooldown")
	}
	return Params{}, lastErr
}

// takeNext returns the next strategy in round-robin order that is not
// currently in cooldown, advancing the cursor regardless of whether one was
// found.
func (r *Rotator) takeNext() (namedStrategy, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.entries)
	entry := r.entries[r.cursor]
	until, inCooldown := r.cooldown[entry.name]
	r.cursor = (r.cursor + 1) % n
	if inCooldown && r.now().Before(until) {
		return namedStrategy{}, false
	}
	return entry, true
}

func (r *Rotator) recordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.failures, name)
	delete(r.cooldown, name)
	delete(r.lastFailure, name)
}

func (r *Rotator) recordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if catalog.IsQuota(err) {
		r.failures[name] = 2
	} else {
		r.failures[name]++
	}

	tier := r.failures[name]
	if tier > 5 {
		tier = 5
	}
	backoff := time.Duration(1<<uint(tier)) * 60 * time.Second
	now := r.now()
	r.cooldown[name] = now.Add(backoff)
	r.lastFailure[name] = now
}

// FailureInfo is a named strategy's current failure/cooldown state, as
// reported by Snapshot.
type FailureInfo struct {
	Failures      int       `json:"failures"`
	LastFailureAt time.Time `json:"last_failure_at"`
}

// Snapshot returns the current failure count and last-failure timestamp
// for every strategy that has failed at least once. Strategies that have
// never failed (or have since succeeded) are absent.
func (r *Rotator) Snapshot() map[string]FailureInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]FailureInfo, len(r.failures))
	for name, failures := range r.failures {
		out[name] = FailureInfo{Failures: failures, LastFailureAt: r.lastFailure[name]}
	}
	return out
}
