// Package suggestions implements the request-side counterpart to the
// replenishment worker: it drains the track queue for a single request,
// honors per-request exclusions, preserves the FIFO invariant for anything
// it doesn't deliver, and conditionally asks the worker for a refill.
package suggestions

import (
	"context"
	"strings"
	"time"

	"github.com/is0692vs/otodoki2/internal/models"
	"github.com/is0692vs/otodoki2/internal/queue"
	"github.com/is0692vs/otodoki2/internal/telemetry/logging"
)

const (
	defaultMaxLimit  = 50
	dequeueMultiple  = 3
	dequeueLookahead = 5
)

// Refiller is the subset of *worker.Worker the service depends on.
type Refiller interface {
	TriggerRefill(ctx context.Context) bool
	MinThreshold() int
}

// Meta accompanies the delivered tracks in a suggestions response.
type Meta struct {
	Requested       int       `json:"requested"`
	Delivered       int       `json:"delivered"`
	QueueSizeAfter  int       `json:"queue_size_after"`
	RefillTriggered bool      `json:"refill_triggered"`
	Timestamp       time.Time `json:"ts"`
}

// Response is the full suggestions payload.
type Response struct {
	Data []models.Track `json:"data"`
	Meta Meta           `json:"meta"`
}

// Service answers get_suggestions requests against a shared track queue.
type Service struct {
	queue    *queue.Queue
	worker   Refiller
	maxLimit int
	logger   logging.Logger
	now      func() time.Time
}

// New constructs a Service. maxLimit<=0 uses the default of 50. worker may
// be nil, in which case refill is never triggered. logger defaults to a
// wrapper over slog.Default() when nil.
func New(q *queue.Queue, w Refiller, maxLimit int, logger logging.Logger) *Service {
	if maxLimit <= 0 {
		maxLimit = defaultMaxLimit
	}
	if logger == nil {
		logger = logging.New(nil)
	}
	return &Service{queue: q, worker: w, maxLimit: maxLimit, logger: logger, now: time.Now}
}

// GetSuggestions delivers up to limit tracks, excluding any whose id
// appears in excludeIDs, and re-enqueues everything it dequeued but did not
// deliver.
func (s *Service) GetSuggestions(ctx context.Context, limit int, excludeIDs []string) Response {
	requested := limit
	limit = clipLimit(limit, s.maxLimit)
	excludes := normalizeExcludes(excludeIDs)

	delivered := make([]models.Track, 0, limit)
	unused := make([]models.Track, 0)

	maxTotalDequeue := dequeueMultiple * limit
	totalDequeued := 0

	for len(delivered) < limit && totalDequeued < maxTotalDequeue {
		need := limit - len(delivered)
		budget := maxTotalDequeue - totalDequeued
		batch := need + dequeueLookahead
		if batch > budget {
			batch = budget
		}

		items := s.queue.Dequeue(batch)
		if len(items) == 0 {
			break
		}
		totalDequeued += len(items)

		for _, track := range items {
			switch {
			case len(delivered) >= limit:
				unused = append(unused, track)
			case excludes[track.ID]:
				unused = append(unused, track)
			default:
				delivered = append(delivered, track)
			}
		}
	}

	if len(unused) > 0 {
		s.queue.ReEnqueue(unused)
	}

	queueSizeAfter := s.queue.Size()
	refillTriggered := false
	if s.worker != nil && queueSizeAfter < s.worker.MinThreshold() {
		refillTriggered = s.worker.TriggerRefill(ctx)
		if refillTriggered {
			s.logger.InfoCtx(ctx, "suggestions: queue below threshold, refill triggered", "queue_size", queueSizeAfter)
		}
	}

	return Response{
		Data: delivered,
		Meta: Meta{
			Requested:       requested,
			Delivered:       len(delivered),
			QueueSizeAfter:  queueSizeAfter,
			RefillTriggered: refillTriggered,
			Timestamp:       s.now().UTC(),
		},
	}
}

// clipLimit clamps limit into [1, max]. A non-positive limit (including the
// zero value from an omitted query param) clips to 1.
func clipLimit(limit, max int) int {
	if limit < 1 {
		return 1
	}
	if limit > max {
		return max
	}
	return limit
}

// normalizeExcludes trims and drops empty entries, returning a membership
// set for O(1) lookup.
func normalizeExcludes(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id != "" {
			set[id] = true
		}
	}
	return set
}
