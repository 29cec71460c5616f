// Package quotient implements C9: the quotient graph over blocks, whose
// nodes are blocks and whose edges are "this pair of blocks shares at least
// one cut hyperedge" — the structure the flow-refinement driver schedules
// active block-pairs from instead of trying every pair every round.
package quotient

import "hypart/pkg/hypergraph"

// Graph tracks, for every pair of blocks, the set of hyperedges currently
// cut between them, kept incrementally as ChangeNodePart moves vertices.
type Graph struct {
	k         int
	cutEdges  map[[2]int32]map[int32]bool
	active    []([2]int32)
	activeSet map[[2]int32]bool
	cursor    int
}

func Build(h *hypergraph.Hypergraph) *Graph {
	g := &Graph{
		k:         h.K(),
		cutEdges:  make(map[[2]int32]map[int32]bool),
		activeSet: make(map[[2]int32]bool),
	}
	for e := int32(0); e < int32(h.NumEdges()); e++ {
		if h.IsDisabled(e) {
			continue
		}
		present := presentBlocks(h, e)
		for i := 0; i < len(present); i++ {
			for j := i + 1; j < len(present); j++ {
				g.markCut(present[i], present[j], e)
			}
		}
	}
	return g
}

func presentBlocks(h *hypergraph.Hypergraph, e int32) []int32 {
	var blocks []int32
	for b := int32(0); b < int32(h.K()); b++ {
		if h.PinCountInPart(e, b) > 0 {
			blocks = append(blocks, b)
		}
	}
	return blocks
}

func pairKey(a, b int32) [2]int32 {
	if a < b {
		return [2]int32{a, b}
	}
	return [2]int32{b, a}
}

func (g *Graph) markCut(a, b, e int32) {
	key := pairKey(a, b)
	set, ok := g.cutEdges[key]
	if !ok {
		set = make(map[int32]bool)
		g.cutEdges[key] = set
	}
	set[e] = true
	g.enqueue(key)
}

func (g *Graph) enqueue(key [2]int32) {
	if g.activeSet[key] {
		return
	}
	g.activeSet[key] = true
	g.active = append(g.active, key)
}

// Update must be called after every ChangeNodePart(v, from, to): it
// recomputes the cut-edge sets for every hyperedge incident to v and
// re-queues any block pair whose cut set just became non-empty.
func (g *Graph) Update(h *hypergraph.Hypergraph, v, from, to int32) {
	for _, e := range h.IncidentEdges(v) {
		if h.IsDisabled(e) {
			g.clearEdgeEverywhere(e)
			continue
		}
		present := presentBlocks(h, e)
		g.clearEdgeEverywhere(e)
		for i := 0; i < len(present); i++ {
			for j := i + 1; j < len(present); j++ {
				g.markCut(present[i], present[j], e)
			}
		}
	}
}

func (g *Graph) clearEdgeEverywhere(e int32) {
	for key, set := range g.cutEdges {
		delete(set, e)
		if len(set) == 0 {
			delete(g.cutEdges, key)
		}
	}
}

// CutEdges returns the current cut-hyperedge set between blocks a and b.
func (g *Graph) CutEdges(a, b int32) []int32 {
	set := g.cutEdges[pairKey(a, b)]
	out := make([]int32, 0, len(set))
	for e := range set {
		out = append(out, e)
	}
	return out
}

// NextActivePair pops the next block pair off the round-robin active queue
// that still has a nonempty cut set, skipping any that emptied out since
// being queued. Returns ok=false once the queue is exhausted.
func (g *Graph) NextActivePair() (a, b int32, ok bool) {
	for g.cursor < len(g.active) {
		key := g.active[g.cursor]
		g.cursor++
		delete(g.activeSet, key)
		if set, present := g.cutEdges[key]; present && len(set) > 0 {
			return key[0], key[1], true
		}
	}
	g.active = nil
	g.cursor = 0
	return 0, 0, false
}

// Requeue re-adds a pair to the back of the active queue — used when a
// refinement pass over (a,b) improved the cut and the scheduler should
// revisit it before moving on to pairs that haven't improved recently.
func (g *Graph) Requeue(a, b int32) {
	g.enqueue(pairKey(a, b))
}
