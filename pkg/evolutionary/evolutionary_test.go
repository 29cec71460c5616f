package evolutionary

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

func baseCfg() *context.Context {
	c := context.Default()
	c.HypergraphFile = "s1"
	c.K = 2
	c.Epsilon = 0.5
	c.Coarsening.ContractionLimitMultiplier = 1.5
	c.InitialPartitioning.NumRuns = 2
	c.Refinement.MaxFlowEngine = "edmondkarp"
	return c
}

func TestRunWithNoTimeLimitProducesOneGeneration(t *testing.T) {
	h := s1()
	cfg := baseCfg()
	cfg.Evolutionary.PopulationSize = 3

	d := New(cfg, hprandom.New(1), hplog.Nop())
	best := d.Run(h)

	require.NotNil(t, best)
	for v := int32(0); v < 7; v++ {
		assert.GreaterOrEqual(t, h.Part(v), int32(0))
		assert.Less(t, h.Part(v), int32(2))
	}
}

func TestRunPreservesTotalWeight(t *testing.T) {
	h := s1()
	cfg := baseCfg()
	cfg.Evolutionary.PopulationSize = 3
	total := h.TotalWeight()

	d := New(cfg, hprandom.New(2), hplog.Nop())
	d.Run(h)

	var sum int64
	for b := int32(0); b < int32(cfg.K); b++ {
		sum += h.BlockWeight(b)
	}
	assert.Equal(t, total, sum)
}

func TestCombineAgreesWhereParentsAgree(t *testing.T) {
	h := s1()
	cfg := baseCfg()
	d := New(cfg, hprandom.New(3), hplog.Nop())

	a := &Individual{Partition: []int32{0, 0, 1, 0, 0, 1, 1}}
	b := &Individual{Partition: []int32{0, 1, 1, 0, 1, 1, 0}}

	child := d.combine(h, a, b)
	assert.Equal(t, int32(0), child.Partition[0])
	assert.Equal(t, int32(1), child.Partition[2])
}

func TestMutateWithVCycleKeepsPartitionFeasible(t *testing.T) {
	h := s1()
	cfg := baseCfg()
	cfg.Evolutionary.MutateStrategy = "vcycle"
	d := New(cfg, hprandom.New(4), hplog.Nop())

	parent := &Individual{Partition: []int32{0, 0, 1, 0, 0, 1, 1}}
	child := d.mutate(h, parent)

	require.Len(t, child.Partition, 7)
	for _, b := range child.Partition {
		assert.True(t, b == 0 || b == 1)
	}
}

func TestMutateWithFreshInitialPartitioningIgnoresParent(t *testing.T) {
	h := s1()
	cfg := baseCfg()
	cfg.Evolutionary.MutateStrategy = "new_initial_partitioning_vcycle"
	d := New(cfg, hprandom.New(5), hplog.Nop())

	parent := &Individual{Partition: []int32{0, 0, 1, 0, 0, 1, 1}}
	child := d.mutate(h, parent)

	require.Len(t, child.Partition, 7)
	for _, b := range child.Partition {
		assert.True(t, b == 0 || b == 1)
	}
}

func TestReplaceWorstKeepsBetterIndividual(t *testing.T) {
	cfg := baseCfg()
	d := New(cfg, hprandom.New(6), hplog.Nop())

	population := []*Individual{
		{Objective: 10, Imbalance: 0},
		{Objective: 20, Imbalance: 0},
	}
	better := &Individual{Objective: 1, Imbalance: 0}
	d.replace(population, better)

	found := false
	for _, ind := range population {
		if ind == better {
			found = true
		}
	}
	assert.True(t, found)
}

func TestPopulationSizeFallsBackToConfiguredWhenNotDynamic(t *testing.T) {
	h := s1()
	cfg := baseCfg()
	cfg.Evolutionary.PopulationSize = 5
	d := New(cfg, hprandom.New(7), hplog.Nop())

	assert.Equal(t, 5, d.populationSize(h))
}
