package multilevel

import (
	"hypart/pkg/hypergraph"
)

// runRecursive partitions h into targetK blocks by repeated bisection: start
// with the whole vertex set assigned to one block, and whenever a block
// still needs to become more than one final block, bisect the sub-
// hypergraph induced on its vertices and recurse on each half — the same
// BFS-queue-of-subgraphs shape recursive_bisection.go uses, generalised from
// "always split until a size threshold" to "split until each block's target
// share reaches 1".
func (d *Driver) runRecursive(h *hypergraph.Hypergraph, targetK int) {
	for v := int32(0); v < int32(h.NumVertices()); v++ {
		h.SetNodePart(v, 0)
	}

	type pending struct {
		vertices []int32
		block    int32
		kShare   int // how many final blocks this subset must still split into
	}

	allVertices := make([]int32, h.NumVertices())
	for i := range allVertices {
		allVertices[i] = int32(i)
	}

	queue := []pending{{vertices: allVertices, block: 0, kShare: targetK}}
	nextBlock := int32(0)

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.kShare <= 1 {
			assignBlock(h, cur.vertices, cur.block)
			continue
		}

		sub, toOriginal := induceSubHypergraph(h, cur.vertices)
		bisectCfg := *d.cfg
		bisectCfg.K = 2
		bisectCfg.Mode = "direct"
		bisectDriver := New(&bisectCfg, d.rng, d.logger)
		bisectDriver.runOnePass(sub, nil)

		var sideA, sideB []int32
		for localV := 0; localV < sub.NumVertices(); localV++ {
			if sub.Part(int32(localV)) == 0 {
				sideA = append(sideA, toOriginal[localV])
			} else {
				sideB = append(sideB, toOriginal[localV])
			}
		}

		shareA := cur.kShare / 2
		shareB := cur.kShare - shareA
		blockA := cur.block
		blockB := allocateBlock(&nextBlock, cur.block, shareA)

		queue = append(queue,
			pending{vertices: sideA, block: blockA, kShare: shareA},
			pending{vertices: sideB, block: blockB, kShare: shareB},
		)
	}
}

// allocateBlock returns the first block id the second half of a bisection
// should use: base+shareA, the same "left half keeps its numbering, right
// half starts where it ends" convention recursive bisection trees use.
func allocateBlock(nextBlock *int32, base int32, shareA int) int32 {
	return base + int32(shareA)
}

func assignBlock(h *hypergraph.Hypergraph, vertices []int32, block int32) {
	for _, v := range vertices {
		if cur := h.Part(v); cur != block {
			_ = h.ChangeNodePart(v, cur, block)
		}
	}
}

// induceSubHypergraph builds a fresh hypergraph over exactly `vertices`,
// keeping only hyperedges with at least one pin among them and dropping
// pins outside the subset — the sub-hypergraph a bisection runs against —
// and returns the local-index -> original-vertex-id mapping needed to carry
// the bisection's result back.
func induceSubHypergraph(h *hypergraph.Hypergraph, vertices []int32) (*hypergraph.Hypergraph, []int32) {
	localOf := make(map[int32]int32, len(vertices))
	toOriginal := make([]int32, len(vertices))
	for i, v := range vertices {
		localOf[v] = int32(i)
		toOriginal[i] = v
	}

	sub := hypergraph.New(len(vertices), 2)
	for i, v := range vertices {
		sub.SetVertexWeight(int32(i), h.Weight(v))
		sub.SetFixed(int32(i), h.IsFixed(v))
	}

	seenEdge := make(map[int32]bool)
	for _, v := range vertices {
		for _, e := range h.IncidentEdges(v) {
			if seenEdge[e] || h.IsDisabled(e) {
				continue
			}
			seenEdge[e] = true
			var localPins []int32
			for _, p := range h.Pins(e) {
				if local, ok := localOf[p]; ok {
					localPins = append(localPins, local)
				}
			}
			if len(localPins) >= 2 {
				sub.AddHyperedge(h.EdgeWeight(e), localPins)
			}
		}
	}
	return sub, toOriginal
}
