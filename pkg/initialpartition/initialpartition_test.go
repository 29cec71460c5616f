package initialpartition

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

func baseCtx() *context.Context {
	c := context.Default()
	c.HypergraphFile = "s1"
	c.InitialPartitioning.NumRuns = 5
	return c
}

func TestRunAssignsEveryVertex(t *testing.T) {
	h := s1()
	ctx := baseCtx()
	r := Run(h, ctx, hprandom.New(1))
	require.Len(t, r.Part, 7)
	for _, b := range r.Part {
		assert.GreaterOrEqual(t, b, int32(0))
		assert.Less(t, b, int32(ctx.K))
	}
}

func TestRunParallelProducesValidPartition(t *testing.T) {
	h := s1()
	ctx := baseCtx()
	ctx.InitialPartitioning.Parallel = true
	r := Run(h, ctx, hprandom.New(2))
	require.Len(t, r.Part, 7)
}

func TestCommitWritesPartitionIntoHypergraph(t *testing.T) {
	h := s1()
	ctx := baseCtx()
	r := Run(h, ctx, hprandom.New(3))
	Commit(h, r)
	for v := int32(0); v < 7; v++ {
		assert.Equal(t, r.Part[v], h.Part(v))
	}
}
