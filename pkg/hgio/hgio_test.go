package hgio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, dir, name, contents string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

// S1 fixture in hMetis form: 4 hyperedges, 7 vertices, weighted edges.
const s1HMetis = `4 7 10
1 1 3
1000 1 2 4 5
1 4 5 7
1000 3 6 7
`

func TestReadHypergraphParsesS1(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "s1.hgr", s1HMetis)

	h, err := ReadHypergraph(path, 2)
	require.NoError(t, err)
	assert.Equal(t, 7, h.NumVertices())
	assert.Equal(t, 4, h.NumEdges())
	assert.Equal(t, int64(1), h.EdgeWeight(0))
	assert.Equal(t, int64(1000), h.EdgeWeight(1))
	assert.ElementsMatch(t, []int32{0, 2}, h.Pins(0))
	assert.ElementsMatch(t, []int32{0, 1, 3, 4}, h.Pins(1))
}

func TestReadHypergraphRejectsTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "truncated.hgr", "4 7 10\n1 1 3\n")
	_, err := ReadHypergraph(path, 2)
	require.Error(t, err)
}

func TestWritePartitionRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := writeTemp(t, dir, "s1.hgr", s1HMetis)
	h, err := ReadHypergraph(path, 2)
	require.NoError(t, err)

	for v := int32(0); v < int32(h.NumVertices()); v++ {
		h.SetNodePart(v, v%2)
	}

	outPath := filepath.Join(dir, "out.part")
	require.NoError(t, WritePartition(outPath, h))

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "0\n1\n0\n1\n0\n1\n0\n", string(data))
}

func TestPartitionFilenameMatchesConvention(t *testing.T) {
	name := PartitionFilename("graph.hgr", 4, 0.03, 42)
	assert.Equal(t, "graph.hgr.part4.epsilon0.03.seed42.KaHyPar", name)
}

func TestReadFixedVerticesAppliesBlocks(t *testing.T) {
	dir := t.TempDir()
	hgrPath := writeTemp(t, dir, "s1.hgr", s1HMetis)
	h, err := ReadHypergraph(hgrPath, 2)
	require.NoError(t, err)

	fixedPath := writeTemp(t, dir, "s1.fix", "0\n-1\n1\n-1\n-1\n-1\n-1\n")
	applied := map[int32]int32{}
	require.NoError(t, ReadFixedVertices(fixedPath, h, func(v, block int32) { applied[v] = block }))

	assert.True(t, h.IsFixed(0))
	assert.False(t, h.IsFixed(1))
	assert.True(t, h.IsFixed(2))
	assert.Equal(t, int32(0), applied[0])
	assert.Equal(t, int32(1), applied[2])
}
