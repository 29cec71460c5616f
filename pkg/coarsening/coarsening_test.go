package coarsening

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
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

func TestCoarsenStopsAtContractionLimit(t *testing.T) {
	h := s1()
	ctx := &context.CoarseningContext{
		Algorithm:                  "heavy_lazy",
		RatingFunction:             "heavy_edge",
		AcceptancePolicy:           "prefer_unmatched",
		HeavyNodePenalty:           "multiplicative",
		ContractionLimitMultiplier: 1.5, // limit = 1.5*2 = 3
		MaxAllowedWeightMultiplier: 10,
	}
	c := New(ctx, hprandom.New(1))
	hier := c.Coarsen(h, 2, nil)

	active := 0
	for v := int32(0); v < int32(h.NumVertices()); v++ {
		if h.IsActive(v) {
			active++
		}
	}
	assert.LessOrEqual(t, active, 3)
	assert.NotEmpty(t, hier.Records)
}

func TestCoarsenRespectsMaxVertexWeight(t *testing.T) {
	h := s1()
	ctx := &context.CoarseningContext{
		Algorithm:                  "heavy_lazy",
		RatingFunction:             "heavy_edge",
		AcceptancePolicy:           "random",
		HeavyNodePenalty:           "no_penalty",
		ContractionLimitMultiplier: 1,
		MaxAllowedWeightMultiplier: 1.0 / 3.25, // forces a tiny cap relative to default
	}
	c := New(ctx, hprandom.New(7))
	_ = c.Coarsen(h, 2, nil)

	for v := int32(0); v < int32(h.NumVertices()); v++ {
		if h.IsActive(v) {
			assert.LessOrEqual(t, h.Weight(v), c.maxVertexWeight(h, 2, 7))
		}
	}
}

func TestCoarsenNeverContractsFixedVertices(t *testing.T) {
	h := s1()
	h.SetFixed(0, true)
	ctx := &context.CoarseningContext{
		Algorithm:                  "heavy_lazy",
		RatingFunction:             "heavy_edge",
		AcceptancePolicy:           "prefer_unmatched",
		HeavyNodePenalty:           "multiplicative",
		ContractionLimitMultiplier: 1,
		MaxAllowedWeightMultiplier: 10,
	}
	c := New(ctx, hprandom.New(3))
	hier := c.Coarsen(h, 2, nil)

	for _, rec := range hier.Records {
		assert.NotEqual(t, int32(0), rec.U)
		assert.NotEqual(t, int32(0), rec.V)
	}
	require.True(t, h.IsActive(0))
}

func TestFixedVertexAllowedLetsFreeVertexAbsorbIntoFixedOne(t *testing.T) {
	h := hypergraph.New(2, 2)
	h.AddHyperedge(1, []int32{0, 1})
	h.SetNodePart(0, 0) // fixes vertex 0 to block 0 the way ReadFixedVertices would
	h.SetFixed(0, true)
	ctx := &context.CoarseningContext{
		Algorithm:                  "heavy_lazy",
		RatingFunction:             "heavy_edge",
		AcceptancePolicy:           "prefer_unmatched",
		HeavyNodePenalty:           "multiplicative",
		FixedVertexAcceptance:      "fixed_vertex_allowed",
		ContractionLimitMultiplier: 0.5, // limit = 1, forces vertex 0 and 1 to merge
		MaxAllowedWeightMultiplier: 10,
	}
	c := New(ctx, hprandom.New(3))
	hier := c.Coarsen(h, 2, nil)

	require.Len(t, hier.Records, 1)
	rec := hier.Records[0]
	assert.True(t, h.IsFixed(rec.U))
	assert.Equal(t, int32(0), h.Part(rec.U))
	assert.Equal(t, int64(2), h.BlockWeight(0))
}

func TestEquivalentVerticesMergesTwoFixedVerticesOnSameBlock(t *testing.T) {
	h := hypergraph.New(3, 2)
	h.AddHyperedge(1, []int32{0, 1, 2})
	h.SetNodePart(0, 0)
	h.SetFixed(0, true)
	h.SetNodePart(1, 0)
	h.SetFixed(1, true)
	ctx := &context.CoarseningContext{
		Algorithm:                  "heavy_lazy",
		RatingFunction:             "heavy_edge",
		AcceptancePolicy:           "prefer_unmatched",
		HeavyNodePenalty:           "multiplicative",
		FixedVertexAcceptance:      "equivalent_vertices",
		ContractionLimitMultiplier: 1,
		MaxAllowedWeightMultiplier: 10,
	}
	c := New(ctx, hprandom.New(5))
	hier := c.Coarsen(h, 2, nil)

	merged := false
	for _, rec := range hier.Records {
		if (rec.U == 0 && rec.V == 1) || (rec.U == 1 && rec.V == 0) {
			merged = true
		}
	}
	assert.True(t, merged, "equivalent_vertices should merge two fixed vertices already agreeing on block 0")
	assert.Equal(t, int64(2), h.BlockWeight(0))
}

func TestUncontractAllRestoresOriginalVertexCount(t *testing.T) {
	h := s1()
	ctx := &context.CoarseningContext{
		Algorithm:                  "heavy_lazy",
		RatingFunction:             "heavy_edge",
		AcceptancePolicy:           "prefer_unmatched",
		HeavyNodePenalty:           "multiplicative",
		ContractionLimitMultiplier: 1,
		MaxAllowedWeightMultiplier: 10,
	}
	c := New(ctx, hprandom.New(2))
	hier := c.Coarsen(h, 2, nil)

	for i := len(hier.Records) - 1; i >= 0; i-- {
		h.Uncontract(hier.Records[i])
	}
	for v := int32(0); v < int32(h.NumVertices()); v++ {
		assert.True(t, h.IsActive(v))
	}
}
