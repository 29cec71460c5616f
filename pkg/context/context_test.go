package context

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validContext() *Context {
	c := Default()
	c.HypergraphFile = "test.hgr"
	return c
}

func TestDefaultPassesValidate(t *testing.T) {
	c := validContext()
	require.NoError(t, c.Validate())
}

func TestValidateRejectsRecursiveWithVCycles(t *testing.T) {
	c := validContext()
	c.Mode = ModeRecursive
	c.VCycles = 2
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vcycles")
}

func TestValidateRejectsMissingHypergraphFile(t *testing.T) {
	c := Default()
	err := c.Validate()
	require.Error(t, err)
}

func TestValidateRejectsBadObjective(t *testing.T) {
	c := validContext()
	c.Objective = "not-a-real-objective"
	require.Error(t, c.Validate())
}

func TestIndividualBlockWeightsForcesEpsilonZero(t *testing.T) {
	c := validContext()
	c.UseIndividualBlockWeights = true
	c.BlockWeights = []int64{10, 10}
	c.Epsilon = 0.2
	require.NoError(t, c.Validate())
	assert.Equal(t, 0.0, c.Epsilon)
}

func TestIndividualBlockWeightsRequiresKWeights(t *testing.T) {
	c := validContext()
	c.UseIndividualBlockWeights = true
	c.BlockWeights = []int64{10}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blockweights")
}

func TestMaxPartWeightUsesEpsilonByDefault(t *testing.T) {
	c := validContext()
	c.K = 2
	c.Epsilon = 0.1
	w := c.MaxPartWeight(0, 100)
	assert.Equal(t, int64(55), w) // ceil(100/2)=50, *1.1=55
}

func TestMaxPartWeightUsesIndividualWeights(t *testing.T) {
	c := validContext()
	c.UseIndividualBlockWeights = true
	c.BlockWeights = []int64{30, 70}
	assert.Equal(t, int64(30), c.MaxPartWeight(0, 100))
	assert.Equal(t, int64(70), c.MaxPartWeight(1, 100))
}

func TestFlagSetParsesOverridesAndDefaults(t *testing.T) {
	fset := NewFlagSet("hypart")
	c, err := fset.Parse([]string{"-h", "graph.hgr", "-k", "4", "-e", "0.05"})
	require.NoError(t, err)
	assert.Equal(t, "graph.hgr", c.HypergraphFile)
	assert.Equal(t, 4, c.K)
	assert.Equal(t, 0.05, c.Epsilon)
	assert.Equal(t, "heavy_lazy", c.Coarsening.Algorithm) // untouched default
}

func TestFlagSetRequiresHypergraphFile(t *testing.T) {
	fset := NewFlagSet("hypart")
	_, err := fset.Parse([]string{"-k", "4"})
	require.Error(t, err)
}

func TestFlagSetRejectsRecursiveWithVCycles(t *testing.T) {
	fset := NewFlagSet("hypart")
	_, err := fset.Parse([]string{"-h", "graph.hgr", "-m", "recursive", "-vcycles", "2"})
	require.Error(t, err)
}
