package health

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateReducesToWorstStatus(t *testing.T) {
	e := NewEvaluator(0)
	e.Register("queue", func(context.Context) ProbeResult {
		return ProbeResult{Name: "queue", Status: Healthy}
	})
	e.Register("worker", func(context.Context) ProbeResult {
		return ProbeResult{Name: "worker", Status: Degraded}
	})

	snap := e.Evaluate(context.Background())
	assert.Equal(t, Degraded, snap.Overall)
	assert.Len(t, snap.Probes, 2)
}

func TestEvaluateCachesWithinTTL(t *testing.T) {
	calls := 0
	e := NewEvaluator(time.Minute)
	fixedNow := time.Now()
	e.now = func() time.Time { return fixedNow }
	e.Register("probe", func(context.Context) ProbeResult {
		calls++
		return ProbeResult{Name: "probe", Status: Healthy}
	})

	e.Evaluate(context.Background())
	e.Evaluate(context.Background())
	assert.Equal(t, 1, calls, "second call within TTL should be served from cache")

	e.now = func() time.Time { return fixedNow.Add(2 * time.Minute) }
	e.Evaluate(context.Background())
	assert.Equal(t, 2, calls, "call past TTL should re-run probes")
}

func TestUnhealthyOutranksDegraded(t *testing.T) {
	e := NewEvaluator(0)
	e.Register("a", func(context.Context) ProbeResult { return ProbeResult{Status: Degraded} })
	e.Register("b", func(context.Context) ProbeResult { return ProbeResult{Status: Unhealthy} })

	snap := e.Evaluate(context.Background())
	assert.Equal(t, Unhealthy, snap.Overall)
}
