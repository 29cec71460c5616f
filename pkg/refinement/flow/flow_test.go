package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hypart/pkg/context"
	"hypart/pkg/hypergraph"
)

func s1Partitioned(assign []int32) *hypergraph.Hypergraph {
	h := hypergraph.New(7, 2)
	h.AddHyperedge(1, []int32{0, 2})
	h.AddHyperedge(1000, []int32{0, 1, 3, 4})
	h.AddHyperedge(1, []int32{3, 4, 6})
	h.AddHyperedge(1000, []int32{2, 5, 6})
	for v, b := range assign {
		h.SetNodePart(int32(v), b)
	}
	return h
}

func baseCfg() *context.Context {
	c := context.Default()
	c.HypergraphFile = "s1"
	c.Epsilon = 1
	c.Refinement.MaxFlowEngine = "edmondkarp"
	c.Refinement.FlowNetworkPolicy = "hybrid"
	c.Refinement.FlowRegionAlpha = 4
	return c
}

func TestExtractRegionFindsCutHyperedges(t *testing.T) {
	h := s1Partitioned([]int32{0, 0, 1, 0, 0, 1, 1})
	cfg := baseCfg()
	r := New(&cfg.Refinement)

	reg, outcome := r.extractRegion(h, 0, 1, cfg.MaxPartWeight(0, h.TotalWeight()))
	// alpha 4 with max part weight 8 gives block 0 (weight 4) a budget of
	// 4*(8-4) = 16, so the BFS takes the whole block.
	require.Equal(t, EntireBlockExtracted, outcome)
	assert.NotEmpty(t, reg.cutEdges)
}

func TestExtractRegionReturnsEmptyCutWhenNoCutEdges(t *testing.T) {
	h := hypergraph.New(4, 2)
	h.AddHyperedge(1, []int32{0, 1})
	h.AddHyperedge(1, []int32{2, 3})
	h.SetNodePart(0, 0)
	h.SetNodePart(1, 0)
	h.SetNodePart(2, 1)
	h.SetNodePart(3, 1)

	cfg := baseCfg()
	r := New(&cfg.Refinement)
	_, outcome := r.extractRegion(h, 0, 1, cfg.MaxPartWeight(0, h.TotalWeight()))
	assert.Equal(t, EmptyCut, outcome)
}

func TestRefinePairNeverIncreasesTotalWeight(t *testing.T) {
	h := s1Partitioned([]int32{0, 0, 1, 0, 0, 1, 1})
	total := h.TotalWeight()
	cfg := baseCfg()
	r := New(&cfg.Refinement)

	r.RefinePair(h, cfg, 0, 1)

	var sum int64
	for b := int32(0); b < 2; b++ {
		sum += h.BlockWeight(b)
	}
	assert.Equal(t, total, sum)
}

func TestRefinePairWithMostBalancedMinCut(t *testing.T) {
	h := s1Partitioned([]int32{0, 0, 1, 0, 0, 1, 1})
	cfg := baseCfg()
	cfg.Refinement.UseMostBalancedMinCut = true
	r := New(&cfg.Refinement)

	outcome := r.RefinePair(h, cfg, 0, 1)
	assert.NotEqual(t, EmptyCut, outcome)
}
