package pqueue

import "hypart/internal/hprandom"

// KWayPriorityQueue holds k independent max-heaps, one per block. Only
// "active" heaps — enabled and non-empty — participate in DeleteMax. The
// active set is a permutation of part ids with each part's current slot
// tracked in activePos, so insertion/removal from the active set is O(1)
// via swap-with-last: the heap that just emptied (or was disabled) is
// swapped into the position vacated by the last active slot and the active
// count shrinks by one — the "reset to unused" move §4.2 requires to happen
// in the same operation that empties a heap.
type KWayPriorityQueue struct {
	k                  int
	heaps              []*maxHeap
	enabled            []bool
	active             []int32 // part ids with enabled && !empty, active[:numActive]
	activePos          []int   // part -> index in active, -1 if not present
	useRandomTieBreak  bool
	rng                *hprandom.Random
}

func New(k int, useRandomTieBreak bool, rng *hprandom.Random) *KWayPriorityQueue {
	pq := &KWayPriorityQueue{
		k:                 k,
		heaps:             make([]*maxHeap, k),
		enabled:           make([]bool, k),
		activePos:         make([]int, k),
		useRandomTieBreak: useRandomTieBreak,
		rng:               rng,
	}
	for i := 0; i < k; i++ {
		pq.heaps[i] = newMaxHeap()
		pq.enabled[i] = true
		pq.activePos[i] = -1
	}
	return pq
}

func (pq *KWayPriorityQueue) addToActive(part int32) {
	if pq.activePos[part] != -1 {
		return
	}
	pq.activePos[part] = len(pq.active)
	pq.active = append(pq.active, part)
}

func (pq *KWayPriorityQueue) removeFromActive(part int32) {
	i := pq.activePos[part]
	if i == -1 {
		return
	}
	last := len(pq.active) - 1
	pq.active[i] = pq.active[last]
	pq.activePos[pq.active[i]] = i
	pq.active = pq.active[:last]
	pq.activePos[part] = -1
}

func (pq *KWayPriorityQueue) Size() int {
	total := 0
	for _, h := range pq.heaps {
		total += h.Len()
	}
	return total
}

func (pq *KWayPriorityQueue) Insert(id int32, part int32, key float64) {
	pq.heaps[part].Push(id, key)
	if pq.enabled[part] {
		pq.addToActive(part)
	}
}

func (pq *KWayPriorityQueue) UpdateKey(id int32, part int32, key float64) {
	pq.heaps[part].UpdateKey(id, key)
}

func (pq *KWayPriorityQueue) Key(id int32, part int32) float64 {
	return pq.heaps[part].KeyOf(id)
}

func (pq *KWayPriorityQueue) Contains(id int32, part int32) bool {
	return pq.heaps[part].Contains(id)
}

func (pq *KWayPriorityQueue) Remove(id int32, part int32) {
	pq.heaps[part].Remove(id)
	if pq.heaps[part].Empty() {
		pq.removeFromActive(part)
	}
}

func (pq *KWayPriorityQueue) EnablePart(part int32) {
	pq.enabled[part] = true
	if !pq.heaps[part].Empty() {
		pq.addToActive(part)
	}
}

func (pq *KWayPriorityQueue) DisablePart(part int32) {
	pq.enabled[part] = false
	pq.removeFromActive(part)
}

func (pq *KWayPriorityQueue) IsEnabled(part int32) bool { return pq.enabled[part] }

// Empty reports whether every heap is empty (disabled ones included).
func (pq *KWayPriorityQueue) Empty() bool {
	return pq.Size() == 0
}

// DeleteMax returns the id/key/part of the maximum-key entry across every
// active heap. When UseRandomTieBreaking is set, every heap tied for the
// maximum top key is collected and one is chosen uniformly at random;
// otherwise the first one encountered wins. Cost is O(k_enabled · log n):
// a linear scan of the active set to find the max, then one O(log n) pop.
func (pq *KWayPriorityQueue) DeleteMax() (id int32, key float64, part int32, ok bool) {
	if len(pq.active) == 0 {
		return 0, 0, 0, false
	}
	best := pq.active[0]
	_, bestKey := pq.heaps[best].Top()
	ties := []int32{best}
	for _, p := range pq.active[1:] {
		_, k := pq.heaps[p].Top()
		if k > bestKey {
			bestKey = k
			ties = ties[:0]
			ties = append(ties, p)
			best = p
		} else if k == bestKey {
			ties = append(ties, p)
		}
	}
	if pq.useRandomTieBreak && len(ties) > 1 {
		best = ties[pq.rng.Intn(len(ties))]
	}
	id, key = pq.heaps[best].PopMax()
	if pq.heaps[best].Empty() {
		pq.removeFromActive(best)
	}
	return id, key, best, true
}

// DeleteMaxFromPartition pops the maximum of one specific heap, bypassing
// the cross-heap scan. The heap must be non-empty.
func (pq *KWayPriorityQueue) DeleteMaxFromPartition(part int32) (id int32, key float64, ok bool) {
	if pq.heaps[part].Empty() {
		return 0, 0, false
	}
	id, key = pq.heaps[part].PopMax()
	if pq.heaps[part].Empty() {
		pq.removeFromActive(part)
	}
	return id, key, true
}

func (pq *KWayPriorityQueue) Clear() {
	for i := 0; i < pq.k; i++ {
		pq.heaps[i] = newMaxHeap()
		pq.enabled[i] = true
		pq.activePos[i] = -1
	}
	pq.active = nil
}
