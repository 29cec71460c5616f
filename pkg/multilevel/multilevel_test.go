package multilevel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hypart/internal/hplog"
	"hypart/internal/hprandom"
	"hypart/pkg/context"
	"hypart/pkg/hypergraph"
)

func s1() *hypergraph.Hypergraph {
	h := hypergraph.New(7, 2)
	h.AddHyperedge(1, []int32{0, 2})
	h.AddHyperedge(1000, []int32{0, 1, 3, 4})
	h.AddHyperedge(1, []int32{3, 4, 6})
	h.AddHyperedge(1000, []int32{2, 5, 6})
	return h
}

func baseCfg(k int) *context.Context {
	c := context.Default()
	c.HypergraphFile = "s1"
	c.K = k
	c.Epsilon = 0.5
	c.Coarsening.ContractionLimitMultiplier = 1.5
	c.InitialPartitioning.NumRuns = 3
	c.Refinement.MaxFlowEngine = "edmondkarp"
	return c
}

func TestRunDirectAssignsEveryVertex(t *testing.T) {
	h := s1()
	cfg := baseCfg(2)
	d := New(cfg, hprandom.New(1), hplog.Nop())

	d.Run(h)

	for v := int32(0); v < 7; v++ {
		assert.GreaterOrEqual(t, h.Part(v), int32(0))
		assert.Less(t, h.Part(v), int32(2))
	}
}

func TestRunDirectPreservesTotalWeight(t *testing.T) {
	h := s1()
	cfg := baseCfg(2)
	total := h.TotalWeight()
	d := New(cfg, hprandom.New(2), hplog.Nop())

	d.Run(h)

	var sum int64
	for b := int32(0); b < int32(cfg.K); b++ {
		sum += h.BlockWeight(b)
	}
	assert.Equal(t, total, sum)
}

func TestRunWithVCyclesStaysFeasible(t *testing.T) {
	h := s1()
	cfg := baseCfg(2)
	cfg.VCycles = 1
	d := New(cfg, hprandom.New(3), hplog.Nop())

	d.Run(h)
	for v := int32(0); v < 7; v++ {
		assert.True(t, h.IsActive(v))
	}
}

func TestRunRecursiveAssignsEveryVertexToOneOfFourBlocks(t *testing.T) {
	h := s1()
	cfg := baseCfg(4)
	cfg.Mode = context.ModeRecursive
	d := New(cfg, hprandom.New(4), hplog.Nop())

	d.Run(h)

	seen := make(map[int32]bool)
	for v := int32(0); v < 7; v++ {
		b := h.Part(v)
		require.GreaterOrEqual(t, b, int32(0))
		require.Less(t, b, int32(4))
		seen[b] = true
	}
	assert.NotEmpty(t, seen)
}
