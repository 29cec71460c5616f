package maxflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// classic textbook network: 0 source, 5 sink, max flow 23.
func textbookNetwork() *Network {
	n := NewNetwork(6)
	n.AddEdge(0, 1, 16)
	n.AddEdge(0, 2, 13)
	n.AddEdge(1, 2, 10)
	n.AddEdge(1, 3, 12)
	n.AddEdge(2, 1, 4)
	n.AddEdge(2, 4, 14)
	n.AddEdge(3, 2, 9)
	n.AddEdge(3, 5, 20)
	n.AddEdge(4, 3, 7)
	n.AddEdge(4, 5, 4)
	return n
}

func TestEdmondKarpMatchesKnownMaxFlow(t *testing.T) {
	n := textbookNetwork()
	res := EdmondKarpEngine{}.MaxFlow(n, 0, 5)
	assert.Equal(t, int64(23), res.MaxFlow)
	assert.True(t, res.ReachableFromSource[0])
	assert.False(t, res.ReachableFromSource[5])
}

func TestGoldbergTarjanMatchesEdmondKarp(t *testing.T) {
	n1 := textbookNetwork()
	n2 := textbookNetwork()
	ek := EdmondKarpEngine{}.MaxFlow(n1, 0, 5)
	gt := GoldbergTarjanEngine{}.MaxFlow(n2, 0, 5)
	assert.Equal(t, ek.MaxFlow, gt.MaxFlow)
}

func TestCutEdgesCrossSourceSinkBoundary(t *testing.T) {
	n := textbookNetwork()
	res := EdmondKarpEngine{}.MaxFlow(n, 0, 5)
	cut := CutEdges(n, res)
	require.NotEmpty(t, cut)
	for _, e := range cut {
		assert.True(t, res.ReachableFromSource[e[0]])
		assert.False(t, res.ReachableFromSource[e[1]])
	}
}

func TestForNameResolvesKnownEngines(t *testing.T) {
	for _, name := range []string{"edmondkarp", "pushrelabel", "bk", "ibfs"} {
		eng, err := ForName(name)
		require.NoError(t, err)
		assert.NotNil(t, eng)
	}
	_, err := ForName("nonexistent")
	require.Error(t, err)
}

func TestBoykovKolmogorovEngineIsUnimplemented(t *testing.T) {
	defer func() {
		r := recover()
		assert.NotNil(t, r)
	}()
	n := textbookNetwork()
	BoykovKolmogorovEngine{}.MaxFlow(n, 0, 5)
}

func TestMostBalancedMinCutProducesValidCut(t *testing.T) {
	n := textbookNetwork()
	res := EdmondKarpEngine{}.MaxFlow(n, 0, 5)
	reachable := MostBalancedMinCut(n, 0, 5, nil)
	assert.Equal(t, res.ReachableFromSource[0], reachable[0])
	assert.NotEqual(t, reachable[0], reachable[5])
}
