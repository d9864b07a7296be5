package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/is0692vs/otodoki2/internal/models"
)

func track(id string) models.Track {
	return models.Track{ID: id, Title: "title-" + id, Artist: "artist-" + id}
}

func TestEnqueueDropsInvalidItems(t *testing.T) {
	q := New(10, 2, nil)
	n := q.Enqueue([]models.Track{
		track("1"),
		{ID: "2", Title: "", Artist: "missing title"},
		{ID: "", Title: "missing id", Artist: "x"},
		track("2"),
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, q.Size())
}

func TestDropOldestOnOverflow(t *testing.T) {
	q := New(3, 0, nil)
	n := q.Enqueue([]models.Track{track("a"), track("b"), track("c"), track("d"), track("e")})
	require.Equal(t, 5, n)

	items := q.Dequeue(10)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"c", "d", "e"}, []string{items[0].ID, items[1].ID, items[2].ID})

	stats := q.Stats()
	assert.Equal(t, 2, stats.Dropped)
}

func TestDequeueFIFOOrder(t *testing.T) {
	q := New(10, 0, nil)
	q.Enqueue([]models.Track{track("a"), track("b"), track("c")})

	first := q.Dequeue(2)
	require.Len(t, first, 2)
	assert.Equal(t, "a", first[0].ID)
	assert.Equal(t, "b", first[1].ID)

	second := q.Dequeue(5)
	require.Len(t, second, 1)
	assert.Equal(t, "c", second[0].ID)

	assert.Empty(t, q.Dequeue(1))
}

func TestContainsAndClear(t *testing.T) {
	q := New(10, 0, nil)
	q.Enqueue([]models.Track{track("a"), track("b")})

	assert.True(t, q.Contains("a"))
	assert.False(t, q.Contains("missing"))

	q.Clear()
	assert.Equal(t, 0, q.Size())
	assert.False(t, q.Contains("a"))
}

func TestStatsCountersAreMonotonic(t *testing.T) {
	q := New(5, 0, nil)
	q.Enqueue([]models.Track{track("a"), track("b"), track("c")})
	q.Dequeue(1)
	q.ReEnqueue([]models.Track{track("d")})

	stats := q.Stats()
	assert.Equal(t, 4, stats.Enqueued)
	assert.Equal(t, 1, stats.Dequeued)
	assert.Equal(t, stats.Enqueued, stats.Dequeued+q.Size()+stats.Dropped)
}

func TestEnqueueEmptyBatchReturnsZero(t *testing.T) {
	q := New(5, 0, nil)
	assert.Equal(t, 0, q.Enqueue(nil))
	assert.Equal(t, 0, q.Size())
}
