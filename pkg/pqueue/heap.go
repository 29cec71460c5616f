// Package pqueue implements the k-way priority queue (C2): k independent
// indexed max-heaps, one per block, with enable/disable and random
// tie-breaking across heaps tied for the global maximum.
//
// Each heap below is a binary max-heap that tracks every element's array
// position in a side map so a key can be looked up and updated in O(log n)
// without a linear scan — the same self-tracking-position idiom as a d-ary
// heap whose nodes remember their own slot, generalized here to a max-heap
// keyed by an externally assigned element id rather than a pointer.
package pqueue

type entry struct {
	id  int32
	key float64
}

type maxHeap struct {
	items []entry
	pos   map[int32]int // id -> index in items
}

func newMaxHeap() *maxHeap {
	return &maxHeap{pos: make(map[int32]int)}
}

func (h *maxHeap) Len() int { return len(h.items) }

func (h *maxHeap) Empty() bool { return len(h.items) == 0 }

func (h *maxHeap) Top() (int32, float64) {
	return h.items[0].id, h.items[0].key
}

func (h *maxHeap) Contains(id int32) bool {
	_, ok := h.pos[id]
	return ok
}

func (h *maxHeap) KeyOf(id int32) float64 {
	return h.items[h.pos[id]].key
}

func (h *maxHeap) Push(id int32, key float64) {
	h.items = append(h.items, entry{id: id, key: key})
	i := len(h.items) - 1
	h.pos[id] = i
	h.siftUp(i)
}

// UpdateKey changes id's key and restores heap order in either direction.
func (h *maxHeap) UpdateKey(id int32, key float64) {
	i, ok := h.pos[id]
	if !ok {
		return
	}
	old := h.items[i].key
	h.items[i].key = key
	if key > old {
		h.siftUp(i)
	} else if key < old {
		h.siftDown(i)
	}
}

func (h *maxHeap) Remove(id int32) {
	i, ok := h.pos[id]
	if !ok {
		return
	}
	last := len(h.items) - 1
	h.swap(i, last)
	h.items = h.items[:last]
	delete(h.pos, id)
	if i < last {
		h.siftDown(i)
		h.siftUp(i)
	}
}

// PopMax removes and returns the maximum entry.
func (h *maxHeap) PopMax() (int32, float64) {
	id, key := h.items[0].id, h.items[0].key
	h.Remove(id)
	return id, key
}

func (h *maxHeap) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.pos[h.items[i].id] = i
	h.pos[h.items[j].id] = j
}

func (h *maxHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.items[parent].key >= h.items[i].key {
			break
		}
		h.swap(parent, i)
		i = parent
	}
}

func (h *maxHeap) siftDown(i int) {
	n := len(h.items)
	for {
		left, right := 2*i+1, 2*i+2
		largest := i
		if left < n && h.items[left].key > h.items[largest].key {
			largest = left
		}
		if right < n && h.items[right].key > h.items[largest].key {
			largest = right
		}
		if largest == i {
			break
		}
		h.swap(i, largest)
		i = largest
	}
}
