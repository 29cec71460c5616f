package fm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"hypart/internal/hprandom"
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

func TestRefineNeverWorsensCutBelowStart(t *testing.T) {
	h := s1Partitioned([]int32{0, 0, 1, 0, 0, 1, 1})
	startCut := h.CutWeight()

	cfg := context.Default()
	cfg.HypergraphFile = "s1"
	cfg.K = 2
	cfg.Epsilon = 1 // generous cap so feasibility never blocks a move in this tiny fixture

	r := New(&cfg.Refinement, hprandom.New(1))
	r.Refine(h, cfg)

	assert.LessOrEqual(t, h.CutWeight(), startCut)
}

func TestRefinePreservesTotalVertexWeight(t *testing.T) {
	h := s1Partitioned([]int32{0, 1, 0, 1, 0, 1, 0})
	total := h.TotalWeight()

	cfg := context.Default()
	cfg.HypergraphFile = "s1"
	cfg.K = 2
	cfg.Epsilon = 1

	r := New(&cfg.Refinement, hprandom.New(2))
	r.Refine(h, cfg)

	var sum int64
	for b := int32(0); b < 2; b++ {
		sum += h.BlockWeight(b)
	}
	assert.Equal(t, total, sum)
}

func TestRefineRespectsFixedVertices(t *testing.T) {
	h := s1Partitioned([]int32{0, 0, 1, 0, 0, 1, 1})
	h.SetFixed(2, true)

	cfg := context.Default()
	cfg.HypergraphFile = "s1"
	cfg.K = 2
	cfg.Epsilon = 1

	r := New(&cfg.Refinement, hprandom.New(3))
	r.Refine(h, cfg)

	assert.Equal(t, int32(1), h.Part(2))
}
