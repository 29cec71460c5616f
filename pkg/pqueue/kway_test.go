package pqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hypart/internal/hprandom"
)

// S5: insert ten (id, part, key) triples across 3 parts, disable part 1,
// DeleteMax returns the max among parts {0,2}; re-enabling part 1 makes its
// previously disabled maximum reachable again.
func TestS5_EnableDisablePartitions(t *testing.T) {
	pq := New(3, false, hprandom.New(1))

	triples := []struct {
		id, part int32
		key      float64
	}{
		{0, 0, 5}, {1, 0, 9}, {2, 0, 3},
		{3, 1, 100}, {4, 1, 7},
		{5, 2, 8}, {6, 2, 2}, {7, 2, 6},
		{8, 0, 1}, {9, 1, 50},
	}
	for _, tr := range triples {
		pq.Insert(tr.id, tr.part, tr.key)
	}

	pq.DisablePart(1)

	id, key, part, ok := pq.DeleteMax()
	require.True(t, ok)
	assert.Equal(t, int32(1), id) // key 9, part 0, the max among {0,2}
	assert.Equal(t, float64(9), key)
	assert.Equal(t, int32(0), part)

	pq.EnablePart(1)
	id, key, part, ok = pq.DeleteMax()
	require.True(t, ok)
	assert.Equal(t, int32(3), id) // key 100, part 1 — the reenabled max
	assert.Equal(t, float64(100), key)
	assert.Equal(t, int32(1), part)
}

// P8: DeleteMax returns a move whose key equals the max over all enabled
// heaps; empty heaps are never considered; the emptied heap becomes unused.
func TestP8_DeleteMaxIsGlobalMaxAmongEnabled(t *testing.T) {
	pq := New(2, false, hprandom.New(1))
	pq.Insert(0, 0, 3)
	pq.Insert(1, 1, 10)

	id, key, part, ok := pq.DeleteMax()
	require.True(t, ok)
	assert.Equal(t, int32(1), id)
	assert.Equal(t, float64(10), key)
	assert.Equal(t, int32(1), part)

	// part 1's heap is now empty -> unused, not considered even though enabled.
	_, _, _, ok = pq.DeleteMax()
	require.True(t, ok) // part 0 still has an entry
	_, _, _, ok = pq.DeleteMax()
	assert.False(t, ok) // both heaps empty now
}

func TestRemoveTransitionsHeapToUnused(t *testing.T) {
	pq := New(2, false, hprandom.New(1))
	pq.Insert(0, 0, 1)
	pq.Remove(0, 0)
	assert.Equal(t, -1, pq.activePos[0])
	_, _, _, ok := pq.DeleteMax()
	assert.False(t, ok)
}
