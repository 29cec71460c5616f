// Package hgio implements C15: reading hMetis-format hypergraphs and fixed-
// vertex files, and writing partition files under the
// <input>.part<k>.epsilon<ε>.seed<seed>.KaHyPar naming convention.
//
// The line-oriented read/write style here is grounded on
// pkg/partitioner/partitioner_io.go's writeMLPToMLPFile: open the file once,
// walk fields in a fixed order, fmt.Sprintf each line. Reading uses
// bufio.Scanner over that same line-oriented convention instead of the
// single-pass byte counting a streaming binary format would need, since
// hMetis files are whitespace-delimited text.
package hgio

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"hypart/internal/hperrors"
	"hypart/pkg/hypergraph"
)

// ReadHypergraph parses an hMetis-format file:
//
//	<numHyperedges> <numVertices> [fmt]
//	<optional edge weight> <pin> <pin> ...   (one line per hyperedge)
//	[<vertex weight>]                        (one line per vertex, if fmt has weights)
//
// fmt is "10" for weighted hyperedges, "1" for weighted vertices, "11" for
// both, absent/"0" for unweighted. k is the caller's Context.K — the hMetis
// format itself carries no notion of block count, so it is supplied rather
// than inferred.
func ReadHypergraph(path string, k int) (*hypergraph.Hypergraph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, hperrors.WrapIOError(err, "opening hypergraph file %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)

	line, ok := nextNonCommentLine(scanner)
	if !ok {
		return nil, hperrors.NewIOError("%s: empty hypergraph file", path)
	}
	header := strings.Fields(line)
	if len(header) < 2 {
		return nil, hperrors.NewIOError("%s: malformed header %q", path, line)
	}
	numEdges, err := strconv.Atoi(header[0])
	if err != nil {
		return nil, hperrors.WrapIOError(err, "%s: bad hyperedge count", path)
	}
	numVertices, err := strconv.Atoi(header[1])
	if err != nil {
		return nil, hperrors.WrapIOError(err, "%s: bad vertex count", path)
	}
	weightedEdges, weightedVertices := false, false
	if len(header) >= 3 {
		switch header[2] {
		case "1":
			weightedVertices = true
		case "10":
			weightedEdges = true
		case "11":
			weightedEdges, weightedVertices = true, true
		}
	}

	h := hypergraph.New(numVertices, k)

	for i := 0; i < numEdges; i++ {
		line, ok := nextNonCommentLine(scanner)
		if !ok {
			return nil, hperrors.NewIOError("%s: expected %d hyperedges, found %d", path, numEdges, i)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			return nil, hperrors.NewIOError("%s: empty hyperedge line %d", path, i+1)
		}
		weight := int64(1)
		pinFields := fields
		if weightedEdges {
			w, err := strconv.ParseInt(fields[0], 10, 64)
			if err != nil {
				return nil, hperrors.WrapIOError(err, "%s: bad edge weight on line %d", path, i+1)
			}
			weight = w
			pinFields = fields[1:]
		}
		pins := make([]int32, 0, len(pinFields))
		for _, pf := range pinFields {
			id, err := strconv.Atoi(pf)
			if err != nil {
				return nil, hperrors.WrapIOError(err, "%s: bad pin id on line %d", path, i+1)
			}
			pins = append(pins, int32(id-1)) // hMetis vertices are 1-indexed
		}
		h.AddHyperedge(weight, pins)
	}

	if weightedVertices {
		for v := 0; v < numVertices; v++ {
			line, ok := nextNonCommentLine(scanner)
			if !ok {
				return nil, hperrors.NewIOError("%s: expected %d vertex weights, found %d", path, numVertices, v)
			}
			w, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
			if err != nil {
				return nil, hperrors.WrapIOError(err, "%s: bad vertex weight on line %d", path, v+1)
			}
			h.SetVertexWeight(int32(v), w)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, hperrors.WrapIOError(err, "reading %s", path)
	}
	return h, nil
}

// ReadFixedVertices parses one block id per line, one line per vertex
// (hMetis fixed-vertex file convention), applying h.SetFixed/block directly.
// Lines containing "-1" leave the corresponding vertex free.
func ReadFixedVertices(path string, h *hypergraph.Hypergraph, apply func(v, block int32)) error {
	f, err := os.Open(path)
	if err != nil {
		return hperrors.WrapIOError(err, "opening fixed-vertex file %s", path)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	v := int32(0)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		block, err := strconv.Atoi(line)
		if err != nil {
			return hperrors.WrapIOError(err, "%s: bad block id on line %d", path, v+1)
		}
		if block >= 0 {
			h.SetFixed(v, true)
			apply(v, int32(block))
		}
		v++
	}
	if err := scanner.Err(); err != nil {
		return hperrors.WrapIOError(err, "reading %s", path)
	}
	if int(v) != h.NumVertices() {
		return hperrors.NewIOError("%s: expected %d lines, found %d", path, h.NumVertices(), v)
	}
	return nil
}

// WritePartition writes one block id per line, one line per vertex, in
// vertex-id order — the same fmt.Sprintf-per-line convention
// partitioner_io.go uses for its MLP file.
func WritePartition(path string, h *hypergraph.Hypergraph) error {
	f, err := os.Create(path)
	if err != nil {
		return hperrors.WrapIOError(err, "creating partition file %s", path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	for v := 0; v < h.NumVertices(); v++ {
		if _, err := fmt.Fprintf(w, "%d\n", h.Part(int32(v))); err != nil {
			return hperrors.WrapIOError(err, "writing partition file %s", path)
		}
	}
	return w.Flush()
}

// PartitionFilename builds the <input>.part<k>.epsilon<ε>.seed<seed>.KaHyPar
// output name from the input hypergraph path and the run's parameters.
func PartitionFilename(inputPath string, k int, epsilon float64, seed int64) string {
	return fmt.Sprintf("%s.part%d.epsilon%g.seed%d.KaHyPar", inputPath, k, epsilon, seed)
}

func nextNonCommentLine(scanner *bufio.Scanner) (string, bool) {
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		return line, true
	}
	return "", false
}
