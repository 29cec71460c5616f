package gaincache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hypart/pkg/context"
	"hypart/pkg/hypergraph"
)

func buildS1() *hypergraph.Hypergraph {
	h := hypergraph.New(7, 2)
	h.AddHyperedge(1, []int32{0, 2})
	h.AddHyperedge(1000, []int32{0, 1, 3, 4})
	h.AddHyperedge(1, []int32{3, 4, 6})
	h.AddHyperedge(1000, []int32{2, 5, 6})
	assign := []int32{0, 0, 1, 0, 0, 1, 1}
	for v, b := range assign {
		h.SetNodePart(int32(v), b)
	}
	return h
}

// buildK3 gives every vertex 3 candidate blocks (block 2 starts empty) and
// four hyperedges that each span blocks 0 and 1 (λ=2), so moves toward the
// empty block make cut and km1 gains diverge (they coincide for k=2, which
// is why an all-k=2 fixture can't distinguish the two formulas).
func buildK3() *hypergraph.Hypergraph {
	h := hypergraph.New(6, 3)
	h.AddHyperedge(1, []int32{0, 1, 2}) // spans blocks 0,1: λ=2
	h.AddHyperedge(1, []int32{1, 2, 3}) // spans blocks 0,1: λ=2
	h.AddHyperedge(1, []int32{3, 4, 5}) // spans blocks 0,1: λ=2
	h.AddHyperedge(1, []int32{0, 4, 5}) // spans blocks 0,1: λ=2
	assign := []int32{0, 0, 1, 1, 0, 1}
	for v, b := range assign {
		h.SetNodePart(int32(v), b)
	}
	return h
}

func freshGain(h *hypergraph.Hypergraph, v, t int32, objective context.Objective) float64 {
	gc := New(h, objective)
	gc.InitVertex(v)
	return gc.Gain(v, t)
}

// P7: for every (v,t) stored, key(v,t) equals the fresh recomputation of
// g(v,t); delta-update must preserve this after every changeNodePart.
func TestP7_DeltaUpdateMatchesFreshRecompute(t *testing.T) {
	h := buildS1()
	gc := New(h, context.ObjectiveKm1)
	for v := int32(0); v < 7; v++ {
		gc.InitVertex(v)
	}

	// move vertex 2 from block 1 to block 0.
	v, from, to := int32(2), int32(1), int32(0)
	before := CaptureBeforeCounts(h, v, from, to)
	require.NoError(t, h.ChangeNodePart(v, from, to))
	gc.Update(v, from, to, before)
	gc.Forget(v)
	gc.InitVertex(v) // v's own cache entry is refreshed post-move.

	for _, w := range []int32{0, 1, 3, 4, 5, 6} {
		for target := int32(0); target < 2; target++ {
			if target == h.Part(w) {
				continue
			}
			want := freshGain(h, w, target, context.ObjectiveKm1)
			got := gc.Gain(w, target)
			assert.InDelta(t, want, got, 1e-9, "vertex %d target %d", w, target)
		}
	}
}

// Same property as above, but for the cut objective's λ(e)-gated delta rule
// on a k=3 hypergraph where cut and km1 gains differ.
func TestP7_CutObjectiveDeltaUpdateMatchesFreshRecompute(t *testing.T) {
	h := buildK3()
	gc := New(h, context.ObjectiveCut)
	for v := int32(0); v < 6; v++ {
		gc.InitVertex(v)
	}

	v, from, to := int32(1), int32(0), int32(1)
	before := CaptureBeforeCounts(h, v, from, to)
	require.NoError(t, h.ChangeNodePart(v, from, to))
	gc.Update(v, from, to, before)
	gc.Forget(v)
	gc.InitVertex(v)

	for _, w := range []int32{0, 2, 3, 4, 5} {
		for target := int32(0); target < 3; target++ {
			if target == h.Part(w) {
				continue
			}
			want := freshGain(h, w, target, context.ObjectiveCut)
			got := gc.Gain(w, target)
			assert.InDelta(t, want, got, 1e-9, "vertex %d target %d", w, target)
		}
	}
}

// The cut and km1 gain formulas coincide at k=2 (every edge's λ∈{1,2} by
// construction) but diverge once an edge can reach λ=3: moving the lone pin
// off a λ=3 edge changes km1 (every unit of λ counts) without changing cut
// membership (the edge stays cut at λ=2 either way).
func TestCutAndKm1GainsDivergeOnHighConnectivityEdge(t *testing.T) {
	h := hypergraph.New(3, 3)
	h.AddHyperedge(1, []int32{0, 1, 2}) // one pin per block: λ=3
	h.SetNodePart(0, 0)
	h.SetNodePart(1, 1)
	h.SetNodePart(2, 2)

	km1Gain := freshGain(h, int32(0), int32(1), context.ObjectiveKm1)
	cutGain := freshGain(h, int32(0), int32(1), context.ObjectiveCut)
	assert.NotEqual(t, km1Gain, cutGain)
}

func TestBestTargetPicksHighestGain(t *testing.T) {
	h := buildS1()
	gc := New(h, context.ObjectiveKm1)
	gc.InitVertex(0)
	target, _, ok := gc.BestTarget(0, nil)
	require.True(t, ok)
	assert.Equal(t, int32(1), target) // only other block with k=2
}
